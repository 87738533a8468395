package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusUnhealthy = "unhealthy"
)

type HealthResponse struct {
	Status    string            `json:"status"`
	Time      string            `json:"time"`
	Version   string            `json:"version,omitempty"`
	Checks    map[string]string `json:"checks"`
	Snapshots *SnapshotHealth   `json:"snapshots,omitempty"`
}

// SnapshotHealth summarizes the snapshot scheduler when it is enabled.
type SnapshotHealth struct {
	Running   bool       `json:"running"`
	NextRun   *time.Time `json:"next_run,omitempty"`
	LastRun   *time.Time `json:"last_run,omitempty"`
	LastBooks int        `json:"last_books,omitempty"`
	LastError string     `json:"last_error,omitempty"`
}

// HealthController reports the catalog store and the optional background
// subsystems. Only a store failure makes the service unhealthy; a failed
// snapshot run degrades it.
type HealthController struct {
	db        Pinger
	queue     TaskQueue
	snapshots SnapshotRunner
	version   string
}

func NewHealthController(db Pinger, queue TaskQueue, snapshots SnapshotRunner, version string) *HealthController {
	return &HealthController{
		db:        db,
		queue:     queue,
		snapshots: snapshots,
		version:   version,
	}
}

func (h *HealthController) Status(c *gin.Context) {
	checks := map[string]string{
		"database":    h.checkDatabase(c.Request.Context()),
		"import_jobs": "disabled",
		"snapshots":   "disabled",
	}
	status := statusHealthy
	if checks["database"] != "ok" && checks["database"] != "not configured" {
		status = statusUnhealthy
	}

	if h.queue != nil {
		checks["import_jobs"] = "enabled"
	}

	var snapshots *SnapshotHealth
	if h.snapshots != nil {
		snapshots = h.snapshotHealth()
		switch {
		case snapshots.LastError != "":
			checks["snapshots"] = "last run failed"
			if status == statusHealthy {
				status = statusDegraded
			}
		case snapshots.Running:
			checks["snapshots"] = "scheduled"
		default:
			checks["snapshots"] = "stopped"
		}
	}

	statusCode := http.StatusOK
	if status == statusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, HealthResponse{
		Status:    status,
		Time:      time.Now().Format(time.RFC3339),
		Version:   h.version,
		Checks:    checks,
		Snapshots: snapshots,
	})
}

func (h *HealthController) checkDatabase(ctx context.Context) string {
	if h.db == nil {
		return "not configured"
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := h.db.Ping(ctx); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}

func (h *HealthController) snapshotHealth() *SnapshotHealth {
	out := &SnapshotHealth{
		Running: h.snapshots.IsRunning(),
		NextRun: h.snapshots.NextRun(),
	}
	if last := h.snapshots.LastRun(); last != nil {
		started := last.Started
		out.LastRun = &started
		out.LastBooks = last.Books
		out.LastError = last.Err
	}
	return out
}
