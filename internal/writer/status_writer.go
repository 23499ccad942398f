// internal/writer/status_writer.go
package writer

import (
	"errors"
	"fmt"
	"time"

	"github.com/tamzrod/saunum-bridge/internal/status"
)

// StatusWriter is the delivery-only contract for device status.
// It receives a snapshot and publishes it verbatim.
type StatusWriter interface {
	WriteStatus(s status.Snapshot) error
}

// deviceStatusWriter publishes the unit status document.
type deviceStatusWriter struct {
	plan Plan
	cli  endpointClient
	now  func() time.Time

	needFull bool
	last     status.Snapshot
}

// NewDeviceStatusWriter builds the status writer for a unit.
func NewDeviceStatusWriter(plan Plan, cli endpointClient) *deviceStatusWriter {
	return &deviceStatusWriter{
		plan:     plan,
		cli:      cli,
		now:      time.Now,
		needFull: true, // full re-assert on first write
		last:     status.Snapshot{Health: status.HealthUnknown},
	}
}

// WriteStatus publishes s when it differs from the last delivered snapshot.
// On any publish failure, the next call re-asserts regardless of change.
func (sw *deviceStatusWriter) WriteStatus(s status.Snapshot) error {
	if sw == nil {
		return errors.New("status writer: disabled")
	}
	if sw.cli == nil {
		return fmt.Errorf("status writer: missing client for unit %s", sw.plan.UnitID)
	}

	if !sw.needFull && sw.last == s {
		return nil
	}

	payload, err := status.Encode(sw.plan.UnitID, s, sw.now())
	if err != nil {
		return fmt.Errorf("status writer: encode: %w", err)
	}

	if err := sw.cli.Publish(sw.plan.StatusTopic(), payload, sw.plan.QoS, sw.plan.Retain); err != nil {
		// delivery in doubt; re-assert next time
		sw.needFull = true
		return fmt.Errorf("status writer: publish failed: %w", err)
	}

	sw.needFull = false
	sw.last = s
	return nil
}
