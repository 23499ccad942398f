// internal/config/config.go
package config

type Config struct {
	Bridge BridgeConfig `yaml:"bridge"`
}

type BridgeConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	MQTT    MQTTConfig    `yaml:"mqtt"`
	Units   []UnitConfig  `yaml:"units"`
}

// ---- LOGGING ----

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // json | console
	Output string `yaml:"output"` // stdout | stderr
}

// ---- MQTT ----

type MQTTConfig struct {
	Broker      string `yaml:"broker"` // tcp://host:1883, ssl://host:8883
	ClientID    string `yaml:"client_id"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	TopicPrefix string `yaml:"topic_prefix"`
	QoS         int    `yaml:"qos"`
	Retain      *bool  `yaml:"retain"` // default true
	TimeoutMs   int    `yaml:"timeout_ms"`
}

// ---- UNIT ----

type UnitConfig struct {
	ID     string       `yaml:"id"`
	Source SourceConfig `yaml:"source"`
	Poll   PollConfig   `yaml:"poll"`
}

// ---- SOURCE ----

type SourceConfig struct {
	Mode      string `yaml:"mode"` // tcp | rtu
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	Device    string `yaml:"device"` // rtu serial device
	UnitID    uint8  `yaml:"unit_id"`
	TimeoutMs int    `yaml:"timeout_ms"`

	Serial SerialConfig `yaml:"serial"`

	// Optional post-write settle delay
	WriteSettleMs int  `yaml:"write_settle_ms"`
	TraceFrames   bool `yaml:"trace_frames"`
}

type SerialConfig struct {
	BaudRate int    `yaml:"baud_rate"`
	DataBits int    `yaml:"data_bits"`
	Parity   string `yaml:"parity"` // N | E | O
	StopBits int    `yaml:"stop_bits"`
}

// ---- POLL ----

type PollConfig struct {
	IntervalMs int `yaml:"interval_ms"`
}
