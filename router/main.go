package router

import (
	"net/http"

	"github.com/Laisky/errors/v2"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Laisky/openrouter-mcp/common/config"
	"github.com/Laisky/openrouter-mcp/controller"
	"github.com/Laisky/openrouter-mcp/mcp"
	"github.com/Laisky/openrouter-mcp/middleware"
)

// SetRouter registers every HTTP route of the service.
//
// The MCP endpoint shares the same middleware stack as the REST routes,
// so protocol traffic shows up in logs and metrics like any other
// request.
func SetRouter(router *gin.Engine, api *controller.Server, mcpServer *mcp.Server) {
	router.Use(middleware.Metrics())

	router.GET("/health", api.Health)
	router.GET("/models", api.ListModels)
	router.GET("/models/*id", api.GetModel)
	router.POST("/rebuild-database", api.RebuildDatabase)

	router.POST("/mcp", mcp.NewGinStreamableHTTPHandler(mcpServer))

	if config.EnablePrometheusMetrics {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	router.NoRoute(func(c *gin.Context) {
		middleware.AbortWithError(c, http.StatusNotFound,
			errors.Errorf("no route for %s %s", c.Request.Method, c.Request.URL.Path))
	})
}
