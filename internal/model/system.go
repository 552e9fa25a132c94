package model

// SystemStats Dashboard 运维指标快照
type SystemStats struct {
	QueueLength  int64 `json:"queue_length"`
	SuccessToday int64 `json:"success_today"`
	FailedToday  int64 `json:"failed_today"`
	DeadCount    int64 `json:"dead_count"`
}
