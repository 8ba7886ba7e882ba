package handlers

import (
	"net/http"
	"time"

	"github.com/6529-Collections/salesbot/pkg/sales"
)

type StatsProvider interface {
	Stats() sales.Stats
}

type StatusResponse struct {
	Status        string      `json:"status"`
	Version       string      `json:"version"`
	UptimeSeconds int64       `json:"uptime_seconds"`
	Pipeline      sales.Stats `json:"pipeline"`
}

// StatusGetHandler reports liveness plus the pipeline counters. stats may be
// nil, e.g. before the pipeline is wired.
func StatusGetHandler(stats StatsProvider, version string, startedAt time.Time) func(r *http.Request) (any, error) {
	return func(r *http.Request) (any, error) {
		resp := StatusResponse{
			Status:        "OK",
			Version:       version,
			UptimeSeconds: int64(time.Since(startedAt).Seconds()),
		}
		if stats != nil {
			resp.Pipeline = stats.Stats()
		}
		return resp, nil
	}
}
