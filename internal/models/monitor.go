package models

// RealtimeSample is one instant snapshot from the VPS monitor API.
type RealtimeSample struct {
	CPUPercent  float64 `json:"cpu_percent"`
	RAMPercent  float64 `json:"ram_percent"`
	DiskPercent float64 `json:"disk_percent"`
	NetInMbps   float64 `json:"net_in_mbps"`
	NetOutMbps  float64 `json:"net_out_mbps"`
	PingMs      float64 `json:"ping_ms"`
}

// HistoryPoint is one timestamped entry of the monitor's history series.
type HistoryPoint struct {
	Timestamp     string  `json:"timestamp"`
	CPUPercent    float64 `json:"cpu_percent"`
	RAMPercent    float64 `json:"ram_percent"`
	DiskPercent   float64 `json:"disk_percent"`
	DiskReadMbps  float64 `json:"disk_read_mbps"`
	DiskWriteMbps float64 `json:"disk_write_mbps"`
	NetInMbps     float64 `json:"net_in_mbps"`
	NetOutMbps    float64 `json:"net_out_mbps"`
}

// HistoryResult wraps the history series with its provenance, so the
// dashboard can tell real data from the simulated fallback.
type HistoryResult struct {
	Points    []HistoryPoint `json:"points"`
	Simulated bool           `json:"simulated"`
}
