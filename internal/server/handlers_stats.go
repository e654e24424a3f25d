package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// handleStats returns the current traffic snapshot plus per-model usage
// totals for the last 24 hours.
func (s *Server) handleStats(c *gin.Context) {
	out := gin.H{"metrics": s.metrics.Snapshot()}
	if s.usage != nil {
		totals, err := s.usage.TotalsByModel(time.Now().Add(-24 * time.Hour))
		if err == nil {
			out["models"] = totals
		}
	}
	c.JSON(http.StatusOK, out)
}

// handleStatsStream pushes metric snapshots as SSE until the client goes
// away. Snapshots arrive at the publisher's pace, roughly 3 Hz.
func (s *Server) handleStatsStream(c *gin.Context) {
	w := newSSEWriter(c, false)
	snapshots := s.metrics.Subscribe()
	defer s.metrics.Unsubscribe(snapshots)
	for {
		select {
		case <-c.Request.Context().Done():
			return
		case snap, ok := <-snapshots:
			if !ok {
				return
			}
			if err := w.WriteData(snap); err != nil {
				return
			}
		}
	}
}
