// internal/config/load_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
)

const sample = `
bridge:
  logging:
    level: debug
    format: console
  mqtt:
    broker: tcp://broker:1883
    topic_prefix: /home/sauna/
    qos: 1
  units:
    - id: garden
      source:
        host: 192.168.1.100
        timeout_ms: 3000
      poll:
        interval_ms: 2000
    - id: cabin
      source:
        mode: RTU
        device: /dev/ttyUSB0
        unit_id: 2
`

func TestLoad_ParseValidateNormalize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bridge.yaml")
	if err := os.WriteFile(path, []byte(sample), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load err=%v", err)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate err=%v", err)
	}
	Normalize(cfg)

	if cfg.Bridge.MQTT.TopicPrefix != "home/sauna" {
		t.Fatalf("topic prefix not trimmed: %q", cfg.Bridge.MQTT.TopicPrefix)
	}
	if cfg.Bridge.MQTT.Retain == nil || !*cfg.Bridge.MQTT.Retain {
		t.Fatalf("retain should default to true")
	}
	if cfg.Bridge.MQTT.ClientID != DefaultClientID {
		t.Fatalf("client id default not applied")
	}

	g := cfg.Bridge.Units[0]
	if g.Source.Mode != "tcp" || g.Source.Port != DefaultPort || g.Source.UnitID != DefaultUnitID {
		t.Fatalf("tcp defaults not applied: %+v", g.Source)
	}
	if g.Source.TimeoutMs != 3000 || g.Poll.IntervalMs != 2000 {
		t.Fatalf("explicit values overwritten: %+v", g)
	}

	c := cfg.Bridge.Units[1]
	if c.Source.Mode != "rtu" || c.Source.Port != 0 {
		t.Fatalf("rtu mode not normalized: %+v", c.Source)
	}
	if c.Source.Serial.BaudRate != DefaultBaudRate || c.Source.Serial.Parity != "N" {
		t.Fatalf("serial defaults not applied: %+v", c.Source.Serial)
	}
	if c.Source.UnitID != 2 || c.Source.TimeoutMs != DefaultTimeoutMs || c.Poll.IntervalMs != DefaultIntervalMs {
		t.Fatalf("unexpected rtu unit: %+v", c)
	}
}

func TestParse_UnknownField(t *testing.T) {
	_, err := Parse([]byte("bridge:\n  mqtt:\n    brokr: tcp://x:1883\n"))
	if err == nil {
		t.Fatalf("expected unknown field error")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected read error")
	}
}
