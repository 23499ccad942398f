// internal/writer/types.go
package writer

import "github.com/tamzrod/saunum-bridge/internal/poller"

// Plan is the fully-built publish plan for one unit.
type Plan struct {
	UnitID      string
	TopicPrefix string
	QoS         byte
	Retain      bool
}

// Writer publishes poll snapshots.
type Writer interface {
	Write(res poller.PollResult) error
}

// endpointClient is the exact contract the writers use.
type endpointClient interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}
