// internal/status/constants.go
package status

// Health codes published in the unit status document.
// These values are part of the published contract and MUST NOT be configurable.

// ---- HEALTH CODES ----

// HealthUnknown represents an unknown or boot state.
const HealthUnknown uint16 = 0

// HealthOK represents a healthy device.
const HealthOK uint16 = 1

// HealthError represents a device error state.
const HealthError uint16 = 2

// HealthStale and HealthDisabled are reserved in the published code space so
// consumers can decode them. Tracker only ever produces Unknown, OK and Error.

// HealthStale represents a stale data state. Reserved.
const HealthStale uint16 = 3

// HealthDisabled represents a disabled device state. Reserved.
const HealthDisabled uint16 = 4

// ---- LIMITS ----

// MaxSecondsInError is where the seconds-in-error counter saturates.
const MaxSecondsInError uint16 = 65535

// ErrorCodeGeneric is reported for errors that expose no code.
const ErrorCodeGeneric uint16 = 1

// HealthName returns the lower-case name of a health code.
func HealthName(h uint16) string {
	switch h {
	case HealthUnknown:
		return "unknown"
	case HealthOK:
		return "ok"
	case HealthError:
		return "error"
	case HealthStale:
		return "stale"
	case HealthDisabled:
		return "disabled"
	default:
		return "invalid"
	}
}
