// internal/poller/runner.go
package poller

import (
	"context"
	"time"

	"github.com/tamzrod/saunum-bridge/internal/command"
)

// Run starts the ticker loop and emits PollResult on the provided channel.
// One goroutine per unit. No overlap. No retries.
//
// Commands are applied on this goroutine, so the device is never used
// concurrently. Each command is followed by an immediate poll.
// A nil cmds channel disables commands.
func (p *Poller) Run(ctx context.Context, out chan<- PollResult, cmds <-chan command.Command) {
	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	emit := func() bool {
		select {
		case out <- p.PollOnce(ctx):
			return true
		case <-ctx.Done():
			return false
		}
	}

	// first poll does not wait a full interval
	if !emit() {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case c, ok := <-cmds:
			if !ok {
				cmds = nil
				continue
			}
			_ = p.Apply(ctx, c)
			if !emit() {
				return
			}
		case <-ticker.C:
			if !emit() {
				return
			}
		}
	}
}
