package models

// AgentStatusReport is the latest health report of one agent
type AgentStatusReport struct {
	CPUUsage     float64 `json:"cpu_usage"`
	MemoryUsage  float64 `json:"memory_usage"` // megabytes
	RequestCount int64   `json:"request_count"`
	Timestamp    string  `json:"timestamp"`
}

// StatusMap maps a service ID to its most recent report.
// Each successful fetch replaces the whole map.
type StatusMap map[string]AgentStatusReport

// Clone returns an independent copy. A nil map clones to an empty one.
func (m StatusMap) Clone() StatusMap {
	out := make(StatusMap, len(m))
	for id, report := range m {
		out[id] = report
	}

	return out
}
