// internal/writer/status_writer_test.go
package writer

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/tamzrod/saunum-bridge/internal/status"
)

func newTestStatusWriter(cli endpointClient) *deviceStatusWriter {
	sw := NewDeviceStatusWriter(testPlan(), cli)
	sw.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }
	return sw
}

func TestStatusWriter_FirstWriteAlwaysPublishes(t *testing.T) {
	cli := &fakeEndpointClient{}
	sw := newTestStatusWriter(cli)

	// identical to the initial "last" snapshot, still published
	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthUnknown}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cli.publishes) != 1 {
		t.Fatalf("expected full assert, got %d publishes", len(cli.publishes))
	}

	p := cli.publishes[0]
	if p.topic != "saunum/garden/status" || !p.retained {
		t.Fatalf("unexpected publish %+v", p)
	}

	var doc status.Document
	if err := json.Unmarshal(p.payload, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if doc.Unit != "garden" || doc.HealthName != "unknown" {
		t.Fatalf("unexpected document %+v", doc)
	}
}

func TestStatusWriter_OnlyOnChange(t *testing.T) {
	cli := &fakeEndpointClient{}
	sw := newTestStatusWriter(cli)

	ok := status.Snapshot{Health: status.HealthOK}
	_ = sw.WriteStatus(ok)
	_ = sw.WriteStatus(ok)
	if len(cli.publishes) != 1 {
		t.Fatalf("unchanged snapshot should not publish, got %d", len(cli.publishes))
	}

	_ = sw.WriteStatus(status.Snapshot{Health: status.HealthError, LastErrorCode: 2})
	_ = sw.WriteStatus(status.Snapshot{Health: status.HealthError, LastErrorCode: 2, SecondsInError: 1})
	if len(cli.publishes) != 3 {
		t.Fatalf("expected 3 publishes, got %d", len(cli.publishes))
	}
}

func TestStatusWriter_FailureForcesReassert(t *testing.T) {
	cli := &fakeEndpointClient{}
	sw := newTestStatusWriter(cli)

	ok := status.Snapshot{Health: status.HealthOK}
	if err := sw.WriteStatus(ok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cli.err = errors.New("broker down")
	bad := status.Snapshot{Health: status.HealthError, LastErrorCode: 1}
	if err := sw.WriteStatus(bad); err == nil {
		t.Fatalf("expected publish error")
	}

	cli.err = nil
	// back to the last delivered value, but delivery was in doubt
	if err := sw.WriteStatus(ok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cli.publishes) != 2 {
		t.Fatalf("expected re-assert after failure, got %d publishes", len(cli.publishes))
	}

	_ = sw.WriteStatus(ok)
	if len(cli.publishes) != 2 {
		t.Fatalf("re-assert flag should clear after success")
	}
}

func TestStatusWriter_NilAndMissingClient(t *testing.T) {
	var sw *deviceStatusWriter
	if err := sw.WriteStatus(status.Snapshot{}); err == nil {
		t.Fatalf("nil writer should error")
	}
	if err := NewDeviceStatusWriter(testPlan(), nil).WriteStatus(status.Snapshot{}); err == nil {
		t.Fatalf("missing client should error")
	}
}
