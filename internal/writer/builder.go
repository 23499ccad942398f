// internal/writer/builder.go
package writer

import (
	"errors"

	cfg "github.com/tamzrod/saunum-bridge/internal/config"
)

// BuildPlan converts one unit config into a Writer Plan.
// Assumes config has already passed Validate and Normalize.
func BuildPlan(u cfg.UnitConfig, m cfg.MQTTConfig) (Plan, error) {
	if u.ID == "" {
		return Plan{}, errors.New("writer: unit.id required")
	}
	if m.TopicPrefix == "" {
		return Plan{}, errors.New("writer: mqtt.topic_prefix required")
	}
	if m.QoS < 0 || m.QoS > 2 {
		return Plan{}, errors.New("writer: qos out of range")
	}

	retain := true
	if m.Retain != nil {
		retain = *m.Retain
	}

	return Plan{
		UnitID:      u.ID,
		TopicPrefix: m.TopicPrefix,
		QoS:         byte(m.QoS),
		Retain:      retain,
	}, nil
}
