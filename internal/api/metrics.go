package api

import (
	"runtime"
	"time"
)

// bytesPerMB converts byte counts to megabytes.
const bytesPerMB = 1024 * 1024

// StatusResponse is the body of GET /api/v1/status.
type StatusResponse struct {
	Timestamp     string `json:"timestamp"`
	Version       string `json:"version"`
	UptimeSeconds int64  `json:"uptime_seconds"`

	ClientID  string `json:"client_id,omitempty"`
	TopicBase string `json:"topic_base,omitempty"`

	StatusSnapshot

	WebSocket WSMetrics      `json:"websocket"`
	Runtime   RuntimeMetrics `json:"runtime"`
}

// RuntimeMetrics contains Go runtime statistics.
type RuntimeMetrics struct {
	Goroutines    int     `json:"goroutines"`
	MemoryAllocMB float64 `json:"memory_alloc_mb"`
	MemoryTotalMB float64 `json:"memory_total_mb"`
	NumGC         uint32  `json:"num_gc"`
}

// WSMetrics contains WebSocket hub statistics.
type WSMetrics struct {
	ConnectedClients int `json:"connected_clients"`
}

// processStart is used for the uptime figure.
var processStart = time.Now()

func (s *Server) collectStatus() StatusResponse {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return StatusResponse{
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
		Version:        s.version,
		UptimeSeconds:  int64(time.Since(processStart).Seconds()),
		ClientID:       s.clientID,
		TopicBase:      s.topicBase,
		StatusSnapshot: s.status.Snapshot(),
		WebSocket: WSMetrics{
			ConnectedClients: s.hub.ClientCount(),
		},
		Runtime: RuntimeMetrics{
			Goroutines:    runtime.NumGoroutine(),
			MemoryAllocMB: float64(memStats.Alloc) / bytesPerMB,
			MemoryTotalMB: float64(memStats.TotalAlloc) / bytesPerMB,
			NumGC:         memStats.NumGC,
		},
	}
}
