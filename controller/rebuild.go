package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v7"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/Laisky/openrouter-mcp/catalog"
	"github.com/Laisky/openrouter-mcp/common/config"
)

// RebuildDatabase serves POST /rebuild-database: force a refresh from the
// upstream catalog and wait for it to finish. Concurrent requests share a
// single upstream fetch.
func (s *Server) RebuildDatabase(c *gin.Context) {
	ctx, cancel := context.WithTimeout(gmw.Ctx(c), config.RebuildWaitTimeout)
	defer cancel()

	result, err := s.refresher.Rebuild(ctx, true)
	if err != nil {
		if errors.Is(err, catalog.ErrRebuildTimeout) {
			// The fetch keeps running; only this waiter gave up.
			c.JSON(http.StatusGatewayTimeout, gin.H{
				"success": false,
				"message": "rebuild is still running, retry later",
			})
			return
		}
		gmw.GetLogger(c).Error("rebuild catalog", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "",
		"data": gin.H{
			"fetched_at": result.FetchedAt.UTC().Format(time.RFC3339),
			"records":    result.Records,
		},
	})
}
