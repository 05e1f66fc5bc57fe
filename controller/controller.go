package controller

import (
	"github.com/Laisky/openrouter-mcp/catalog"
)

// Server bundles the handlers of the HTTP API around the shared snapshot
// store and refresher. Handlers never mutate the snapshot directly; all
// writes go through the refresher.
type Server struct {
	store     *catalog.Store
	refresher *catalog.Refresher
}

// NewServer creates the HTTP handler set.
func NewServer(store *catalog.Store, refresher *catalog.Refresher) *Server {
	return &Server{
		store:     store,
		refresher: refresher,
	}
}
