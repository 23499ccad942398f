// internal/saunum/validate.go
package saunum

// Validate* check one writable parameter each.
// They are pure predicates and MUST run before any I/O.
// A nil return means accept.

// ValidateTargetTemperature accepts 0 (type default) or [MinTemperature, MaxTemperature].
func ValidateTargetTemperature(c int) error {
	switch {
	case c < 0:
		return &ValidationError{Param: "target temperature", Value: c, Reason: "must not be negative"}
	case c == 0:
		return nil
	case c < MinTemperature || c > MaxTemperature:
		return &ValidationError{Param: "target temperature", Value: c, Reason: "out of range (0 or 40-100 °C)"}
	}
	return nil
}

// ValidateSaunaDuration accepts [0, 720] minutes. 0 means type default.
func ValidateSaunaDuration(minutes int) error {
	if minutes < MinSaunaDuration || minutes > MaxSaunaDuration {
		return &ValidationError{Param: "sauna duration", Value: minutes, Reason: "out of range (0-720 min)"}
	}
	return nil
}

// ValidateFanDuration accepts [0, 30] minutes. 0 means type default.
func ValidateFanDuration(minutes int) error {
	if minutes < MinFanDuration || minutes > MaxFanDuration {
		return &ValidationError{Param: "fan duration", Value: minutes, Reason: "out of range (0-30 min)"}
	}
	return nil
}

// ValidateFanSpeed accepts the four fan stages only.
func ValidateFanSpeed(s FanSpeed) error {
	if !s.Valid() {
		return &ValidationError{Param: "fan speed", Value: int(s), Reason: "must be 0-3"}
	}
	return nil
}

// ValidateSaunaType accepts the three known type codes only.
// Reads tolerate unknown codes; writes do not.
func ValidateSaunaType(t SaunaType) error {
	if !t.Valid() {
		return &ValidationError{Param: "sauna type", Value: int(t), Reason: "unknown type code"}
	}
	return nil
}
