// internal/writer/topics.go
package writer

import "strings"

// ---- TOPIC LAYOUT ----
//
//   <prefix>/<unit>/state        decoded snapshot (retained)
//   <prefix>/<unit>/status       unit health (retained)
//   <prefix>/<unit>/set/<param>  inbound commands
//   <prefix>/bridge/availability online/offline (retained, last will)

const (
	levelState  = "state"
	levelStatus = "status"
	levelSet    = "set"
)

func (p Plan) base() string { return p.TopicPrefix + "/" + p.UnitID }

// StateTopic carries the decoded snapshot.
func (p Plan) StateTopic() string { return p.base() + "/" + levelState }

// StatusTopic carries the unit health document.
func (p Plan) StatusTopic() string { return p.base() + "/" + levelStatus }

// SetTopic is where a command for param is published.
func (p Plan) SetTopic(param string) string { return p.base() + "/" + levelSet + "/" + param }

// SetFilter matches every command topic of the unit.
func (p Plan) SetFilter() string { return p.base() + "/" + levelSet + "/+" }

// ParamFromTopic extracts the parameter from a command topic.
func (p Plan) ParamFromTopic(topic string) (string, bool) {
	param, ok := strings.CutPrefix(topic, p.base()+"/"+levelSet+"/")
	if !ok || param == "" || strings.Contains(param, "/") {
		return "", false
	}
	return param, true
}

// AvailabilityTopic is the bridge-wide online/offline flag.
func AvailabilityTopic(prefix string) string { return prefix + "/bridge/availability" }
