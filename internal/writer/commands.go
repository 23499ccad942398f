// internal/writer/commands.go
package writer

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tamzrod/saunum-bridge/internal/command"
)

// ErrCommandQueueFull is returned when the unit has not drained earlier commands.
var ErrCommandQueueFull = errors.New("writer: command queue full")

type subscriber interface {
	Subscribe(topic string, qos byte, handler func(topic string, payload []byte) error) error
}

// CommandHandler turns set-topic messages into commands for one unit.
// Commands are queued without blocking; the queue owner applies them.
func CommandHandler(plan Plan, out chan<- command.Command, log zerolog.Logger) func(topic string, payload []byte) error {
	return func(topic string, payload []byte) error {
		param, ok := plan.ParamFromTopic(topic)
		if !ok {
			return fmt.Errorf("%w: unexpected topic %q", command.ErrInvalidCommand, topic)
		}

		c, err := command.Parse(param, payload)
		if err != nil {
			return err
		}

		select {
		case out <- c:
			log.Debug().Str("unit", plan.UnitID).Stringer("command", c).Msg("command queued")
			return nil
		default:
			return fmt.Errorf("%w: unit %s dropped %s", ErrCommandQueueFull, plan.UnitID, c)
		}
	}
}

// SubscribeCommands subscribes the unit's set filter.
func SubscribeCommands(sub subscriber, plan Plan, out chan<- command.Command, log zerolog.Logger) error {
	return sub.Subscribe(plan.SetFilter(), plan.QoS, CommandHandler(plan, out, log))
}
