// internal/writer/writer.go
package writer

import (
	"errors"
	"fmt"

	"github.com/tamzrod/saunum-bridge/internal/poller"
)

type mqttWriter struct {
	plan Plan
	cli  endpointClient
}

// New returns a Writer publishing to the plan's state topic.
func New(plan Plan, cli endpointClient) Writer {
	return &mqttWriter{
		plan: plan,
		cli:  cli,
	}
}

// Write publishes the snapshot of a successful poll.
// Failed polls publish nothing; the last retained state stays in place
// and the status writer reports the failure.
func (w *mqttWriter) Write(res poller.PollResult) error {
	if res.Err != nil {
		return nil
	}
	if w.cli == nil {
		return errors.New("writer: missing client")
	}

	payload, err := encodeState(w.plan.UnitID, res.At, res.Snapshot)
	if err != nil {
		return fmt.Errorf("writer: encode state: %w", err)
	}

	topic := w.plan.StateTopic()
	if err := w.cli.Publish(topic, payload, w.plan.QoS, w.plan.Retain); err != nil {
		return fmt.Errorf("writer: topic=%s err=%w", topic, err)
	}
	return nil
}
