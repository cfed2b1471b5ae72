package advisor

import "time"

// AgentMetadata describes who answered and when.
type AgentMetadata struct {
	AgentName string `json:"agent_name,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// ReadMetadata pulls metadata.agent_name and metadata.timestamp out of a raw reply.
// Missing values fall back to defaultName and now.
func ReadMetadata(raw any, defaultName string, now time.Time) AgentMetadata {
	meta := AgentMetadata{AgentName: defaultName, Timestamp: now.UTC().Format(time.RFC3339)}

	obj, ok := canonical(raw).(map[string]any)
	if !ok {
		return meta
	}
	md := objectField("metadata", obj)
	if name, ok := textField("agent_name", md); ok {
		meta.AgentName = name
	}
	if ts, ok := textField("timestamp", md); ok {
		meta.Timestamp = ts
	}
	return meta
}
