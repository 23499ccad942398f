// internal/poller/poller.go
package poller

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tamzrod/saunum-bridge/internal/command"
	"github.com/tamzrod/saunum-bridge/internal/saunum"
)

// Device is the session surface the poller drives.
type Device interface {
	Connect(ctx context.Context) error
	IsConnected() bool
	GetData(ctx context.Context) (saunum.Snapshot, error)
	command.Device
}

// Config is the minimal runtime config the poller needs.
type Config struct {
	UnitID   string
	Interval time.Duration
	Logger   zerolog.Logger
}

// Poller is a clock-driven reader that owns its device.
type Poller struct {
	cfg    Config
	device Device
}

// New creates a poller with immutable config.
func New(cfg Config, device Device) (*Poller, error) {
	if cfg.UnitID == "" {
		return nil, errors.New("poller: unit id required")
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("poller: interval must be > 0")
	}
	if device == nil {
		return nil, errors.New("poller: device required")
	}
	return &Poller{cfg: cfg, device: device}, nil
}

// PollOnce performs exactly one poll cycle.
// A disconnected device gets one reconnect attempt; no retries.
func (p *Poller) PollOnce(ctx context.Context) PollResult {
	res := PollResult{
		UnitID: p.cfg.UnitID,
		At:     time.Now(),
	}

	if !p.device.IsConnected() {
		if err := p.device.Connect(ctx); err != nil {
			res.Err = err
			return res
		}
		p.cfg.Logger.Info().Str("unit", p.cfg.UnitID).Msg("reconnected")
	}

	snap, err := p.device.GetData(ctx)
	if err != nil {
		res.Err = err
		return res
	}

	res.Snapshot = snap
	return res
}

// Apply runs one command against the device.
// A disconnected device is not reconnected here; the next poll does that.
func (p *Poller) Apply(ctx context.Context, c command.Command) error {
	err := c.Apply(ctx, p.device)
	ev := p.cfg.Logger.Info()
	if err != nil {
		ev = p.cfg.Logger.Warn().Err(err)
	}
	ev.Str("unit", p.cfg.UnitID).Stringer("command", c).Msg("command applied")
	return err
}
