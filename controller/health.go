package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Health reports service liveness and snapshot freshness. It always
// returns 200: a stale snapshot degrades answers but does not make the
// service unhealthy.
func (s *Server) Health(c *gin.Context) {
	snap := s.store.Current()

	data := gin.H{
		"status":    "ok",
		"freshness": string(s.refresher.State()),
		"records":   snap.Len(),
	}
	if !snap.Empty() {
		data["fetched_at"] = snap.FetchedAt.UTC().Format(time.RFC3339)
	}
	if lastErr, at := s.refresher.LastError(); lastErr != nil {
		data["last_refresh_error"] = lastErr.Error()
		data["last_refresh_error_at"] = at.UTC().Format(time.RFC3339)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "",
		"data":    data,
	})
}
