package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SnapshotsController exposes the periodic catalog snapshot job.
type SnapshotsController struct {
	runner SnapshotRunner
}

func NewSnapshotsController(runner SnapshotRunner) *SnapshotsController {
	return &SnapshotsController{runner: runner}
}

// Status handles GET /api/v1/exports/snapshots/status
func (sc *SnapshotsController) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"scheduled": sc.runner.IsRunning(),
		"next_run":  sc.runner.NextRun(),
		"last_run":  sc.runner.LastRun(),
	})
}

// RunNow handles POST /api/v1/exports/snapshots
func (sc *SnapshotsController) RunNow(c *gin.Context) {
	path, err := sc.runner.RunNow(c.Request.Context())
	if err != nil {
		respondError(c, err, "export snapshot")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"path": path})
}
