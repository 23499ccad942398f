// internal/status/encode.go
package status

import (
	"encoding/json"
	"time"
)

// Document is the published form of a Snapshot.
type Document struct {
	Unit           string    `json:"unit"`
	Health         uint16    `json:"health"`
	HealthName     string    `json:"health_name"`
	LastErrorCode  uint16    `json:"last_error_code"`
	SecondsInError uint16    `json:"seconds_in_error"`
	At             time.Time `json:"at"`
}

// Encode converts a Snapshot into the status document payload.
// No IO. No side effects.
func Encode(unit string, s Snapshot, at time.Time) ([]byte, error) {
	return json.Marshal(Document{
		Unit:           unit,
		Health:         s.Health,
		HealthName:     HealthName(s.Health),
		LastErrorCode:  s.LastErrorCode,
		SecondsInError: s.SecondsInError,
		At:             at.UTC(),
	})
}
