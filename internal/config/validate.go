// internal/config/validate.go
package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config: nil config")
	}

	// ------------------------------------------------------------
	// LOGGING
	// ------------------------------------------------------------

	switch strings.ToLower(cfg.Bridge.Logging.Format) {
	case "", "json", "console":
	default:
		return fmt.Errorf("logging.format %q: must be json or console", cfg.Bridge.Logging.Format)
	}

	switch strings.ToLower(cfg.Bridge.Logging.Output) {
	case "", "stdout", "stderr":
	default:
		return fmt.Errorf("logging.output %q: must be stdout or stderr", cfg.Bridge.Logging.Output)
	}

	// ------------------------------------------------------------
	// MQTT
	// ------------------------------------------------------------

	m := cfg.Bridge.MQTT
	if m.Broker == "" {
		return errors.New("mqtt.broker is required")
	}
	if m.QoS < 0 || m.QoS > 2 {
		return fmt.Errorf("mqtt.qos %d: must be 0, 1 or 2", m.QoS)
	}
	if m.TimeoutMs < 0 {
		return fmt.Errorf("mqtt.timeout_ms %d: must not be negative", m.TimeoutMs)
	}
	if strings.ContainsAny(m.TopicPrefix, "+#") {
		return fmt.Errorf("mqtt.topic_prefix %q: wildcards not allowed", m.TopicPrefix)
	}

	// ------------------------------------------------------------
	// UNITS
	// ------------------------------------------------------------

	if len(cfg.Bridge.Units) == 0 {
		return errors.New("at least one unit is required")
	}

	seen := make(map[string]struct{})

	for _, u := range cfg.Bridge.Units {
		if u.ID == "" {
			return errors.New("unit id is required")
		}
		// id becomes an MQTT topic level
		if strings.ContainsAny(u.ID, "/+#") {
			return fmt.Errorf("unit %q: id must not contain '/', '+' or '#'", u.ID)
		}
		if _, dup := seen[u.ID]; dup {
			return fmt.Errorf("unit %q: duplicate id", u.ID)
		}
		seen[u.ID] = struct{}{}

		if err := validateSource(u.ID, u.Source); err != nil {
			return err
		}

		if u.Poll.IntervalMs < 0 {
			return fmt.Errorf("unit %q: poll.interval_ms must not be negative", u.ID)
		}
	}

	return nil
}

func validateSource(unit string, s SourceConfig) error {
	switch strings.ToLower(s.Mode) {
	case "", "tcp":
		if s.Host == "" {
			return fmt.Errorf("unit %q: source.host is required for tcp", unit)
		}
		if s.Port < 0 || s.Port > 65535 {
			return fmt.Errorf("unit %q: source.port %d out of range", unit, s.Port)
		}

	case "rtu":
		if s.Device == "" {
			return fmt.Errorf("unit %q: source.device is required for rtu", unit)
		}
		switch strings.ToUpper(s.Serial.Parity) {
		case "", "N", "E", "O":
		default:
			return fmt.Errorf("unit %q: source.serial.parity %q: must be N, E or O", unit, s.Serial.Parity)
		}
		if s.Serial.BaudRate < 0 {
			return fmt.Errorf("unit %q: source.serial.baud_rate must not be negative", unit)
		}
		if s.Serial.DataBits != 0 && (s.Serial.DataBits < 5 || s.Serial.DataBits > 8) {
			return fmt.Errorf("unit %q: source.serial.data_bits %d: must be 5-8", unit, s.Serial.DataBits)
		}
		if s.Serial.StopBits != 0 && s.Serial.StopBits != 1 && s.Serial.StopBits != 2 {
			return fmt.Errorf("unit %q: source.serial.stop_bits %d: must be 1 or 2", unit, s.Serial.StopBits)
		}

	default:
		return fmt.Errorf("unit %q: source.mode %q: must be tcp or rtu", unit, s.Mode)
	}

	// Modbus unit ids 248-255 are reserved
	if s.UnitID > 247 {
		return fmt.Errorf("unit %q: source.unit_id %d out of range (1-247)", unit, s.UnitID)
	}
	if s.TimeoutMs < 0 {
		return fmt.Errorf("unit %q: source.timeout_ms must not be negative", unit)
	}
	if s.WriteSettleMs < 0 {
		return fmt.Errorf("unit %q: source.write_settle_ms must not be negative", unit)
	}
	return nil
}
