package mcp

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewGinStreamableHTTPHandler wraps the MCP SDK's StreamableHTTPHandler in
// a Gin handler so the MCP endpoint can share the router's middleware
// stack (logging, metrics, recovery).
func NewGinStreamableHTTPHandler(server *Server) gin.HandlerFunc {
	mcpHandler := mcp.NewStreamableHTTPHandler(
		func(req *http.Request) *mcp.Server {
			return server.server
		},
		nil,
	)

	return func(c *gin.Context) {
		mcpHandler.ServeHTTP(c.Writer, c.Request)
	}
}
