package mcp

import (
	"github.com/Laisky/errors/v2"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Laisky/openrouter-mcp/catalog"
)

// Server wraps the official MCP SDK server and exposes the catalog tools
// over the MCP protocol.
type Server struct {
	server    *mcp.Server
	store     *catalog.Store
	refresher *catalog.Refresher
	options   *ServerOptions
}

// ServerOptions configures the MCP server identity.
type ServerOptions struct {
	// Name is the implementation name announced during initialize.
	Name string
	// Version is the implementation version announced during initialize.
	Version string
}

// DefaultServerOptions returns the options used by NewServer.
func DefaultServerOptions() *ServerOptions {
	return &ServerOptions{
		Name:    "openrouter-mcp",
		Version: "1.0.0",
	}
}

// WithName sets the implementation name.
func (o *ServerOptions) WithName(name string) *ServerOptions {
	o.Name = name
	return o
}

// WithVersion sets the implementation version.
func (o *ServerOptions) WithVersion(version string) *ServerOptions {
	o.Version = version
	return o
}

// Validate checks that the options are usable.
func (o *ServerOptions) Validate() error {
	if o == nil {
		return errors.New("options must not be nil")
	}
	if o.Name == "" {
		return errors.New("server name must not be empty")
	}
	if o.Version == "" {
		return errors.New("server version must not be empty")
	}
	return nil
}

// NewServer creates an MCP server exposing the search_models and
// rebuild_database_tool tools backed by the given store and refresher.
func NewServer(store *catalog.Store, refresher *catalog.Refresher) *Server {
	return NewServerWithOptions(store, refresher, DefaultServerOptions())
}

// NewServerWithOptions creates an MCP server with a custom identity.
func NewServerWithOptions(store *catalog.Store, refresher *catalog.Refresher, options *ServerOptions) *Server {
	if err := options.Validate(); err != nil {
		options = DefaultServerOptions()
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    options.Name,
		Version: options.Version,
	}, nil)

	s := &Server{
		server:    server,
		store:     store,
		refresher: refresher,
		options:   options,
	}
	s.addCatalogTools()

	return s
}
