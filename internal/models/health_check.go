package models

import "time"

// HealthCheck reports per-dependency status (provider, database, cache).
type HealthCheck struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
}
