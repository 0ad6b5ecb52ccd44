package models

// ProcessStatus is the resource usage of the dashboard process itself
type ProcessStatus struct {
	PID        int32   `json:"pid"`
	Name       string  `json:"name"`
	CPUPercent float64 `json:"cpu_percent"`
	MemPercent float32 `json:"mem_percent"`
	RSSMB      float64 `json:"rss_mb"`
	Goroutines int     `json:"goroutines"`
}
