// internal/config/normalize.go
package config

import "strings"

// Defaults applied by Normalize.
const (
	DefaultPort         = 502
	DefaultUnitID       = 1
	DefaultTimeoutMs    = 10000
	DefaultIntervalMs   = 5000
	DefaultBaudRate     = 9600
	DefaultDataBits     = 8
	DefaultParity       = "N"
	DefaultStopBits     = 1
	DefaultTopicPrefix  = "saunum"
	DefaultClientID     = "saunum-bridge"
	DefaultMQTTTimeout  = 5000
	DefaultLoggingLevel = "info"
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	l := &cfg.Bridge.Logging
	if l.Level == "" {
		l.Level = DefaultLoggingLevel
	}
	l.Format = strings.ToLower(l.Format)
	if l.Format == "" {
		l.Format = "json"
	}
	l.Output = strings.ToLower(l.Output)
	if l.Output == "" {
		l.Output = "stdout"
	}

	m := &cfg.Bridge.MQTT
	if m.ClientID == "" {
		m.ClientID = DefaultClientID
	}
	m.TopicPrefix = strings.Trim(m.TopicPrefix, "/")
	if m.TopicPrefix == "" {
		m.TopicPrefix = DefaultTopicPrefix
	}
	if m.Retain == nil {
		retain := true
		m.Retain = &retain
	}
	if m.TimeoutMs == 0 {
		m.TimeoutMs = DefaultMQTTTimeout
	}

	for ui := range cfg.Bridge.Units {
		u := &cfg.Bridge.Units[ui]
		s := &u.Source

		s.Mode = strings.ToLower(s.Mode)
		if s.Mode == "" {
			s.Mode = "tcp"
		}

		// Serial settings only matter for rtu; port only for tcp.
		switch s.Mode {
		case "tcp":
			if s.Port == 0 {
				s.Port = DefaultPort
			}
		case "rtu":
			if s.Serial.BaudRate == 0 {
				s.Serial.BaudRate = DefaultBaudRate
			}
			if s.Serial.DataBits == 0 {
				s.Serial.DataBits = DefaultDataBits
			}
			s.Serial.Parity = strings.ToUpper(s.Serial.Parity)
			if s.Serial.Parity == "" {
				s.Serial.Parity = DefaultParity
			}
			if s.Serial.StopBits == 0 {
				s.Serial.StopBits = DefaultStopBits
			}
		}

		if s.UnitID == 0 {
			s.UnitID = DefaultUnitID
		}
		if s.TimeoutMs == 0 {
			s.TimeoutMs = DefaultTimeoutMs
		}
		if u.Poll.IntervalMs == 0 {
			u.Poll.IntervalMs = DefaultIntervalMs
		}
	}
}
