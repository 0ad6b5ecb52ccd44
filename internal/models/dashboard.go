package models

// DisplayTree is the rendered form of the two state cells. It holds only
// display strings; it is rebuilt from scratch on every render.
type DisplayTree struct {
	Agents AgentPanel `json:"agents"`
	Alerts AlertPanel `json:"alerts"`
}

type AgentPanel struct {
	Rows        []AgentRow `json:"rows"`
	Placeholder string     `json:"placeholder,omitempty"`
}

type AgentRow struct {
	ServiceID string `json:"service_id"`
	CPU       string `json:"cpu"`
	Memory    string `json:"memory"`
	Requests  string `json:"requests"`
	UpdatedAt string `json:"updated_at"`
}

type AlertPanel struct {
	Rows        []AlertRow `json:"rows"`
	Placeholder string     `json:"placeholder,omitempty"`
}

type AlertRow struct {
	ID          string `json:"id"`
	ServiceName string `json:"service_name"`
	Metric      string `json:"metric"`
	Value       string `json:"value"`
	TriggeredAt string `json:"triggered_at"`
}
