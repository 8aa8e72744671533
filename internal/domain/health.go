package domain

import "time"

// HealthStatus is the response body for GET /health. It is recomputed on
// every call, never cached.
type HealthStatus struct {
	Status        string            `json:"status"` // healthy, unhealthy
	Services      map[string]string `json:"services"`
	Capabilities  map[string]bool   `json:"capabilities"`
	Configuration map[string]string `json:"configuration"`
	Timestamp     time.Time         `json:"timestamp"`
}

// Healthy reports whether every probed service is reachable.
func (h *HealthStatus) Healthy() bool {
	return h.Status == "healthy"
}
