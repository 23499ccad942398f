// internal/poller/types.go
package poller

import (
	"time"

	"github.com/tamzrod/saunum-bridge/internal/saunum"
)

// PollResult is produced by one poll cycle.
type PollResult struct {
	UnitID string
	At     time.Time

	// Snapshot is valid only when Err is nil.
	Snapshot saunum.Snapshot
	Err      error // non-nil means the poll cycle failed
}
