package config

import (
	"os"
	"strings"
	"time"

	"github.com/Laisky/openrouter-mcp/common/env"
)

// DebugEnabled switches the service into verbose logging mode.
var DebugEnabled = strings.ToLower(os.Getenv("DEBUG")) == "true"

// ServerAddress is the externally visible base URL of this service. It is
// only used for self-referencing output such as MCP tool descriptions.
var ServerAddress = env.String("SERVER_ADDRESS", "http://localhost:3000")

// Port is the TCP port the HTTP server listens on.
var Port = env.Int("PORT", 3000)

// CatalogURL is the upstream model catalog endpoint.
var CatalogURL = env.String("CATALOG_URL", "https://openrouter.ai/api/v1/models")

// CatalogProxy optionally routes upstream catalog fetches through a proxy.
var CatalogProxy = env.String("CATALOG_PROXY", "")

// CatalogMaxAge is how old the published snapshot may grow before it is
// considered stale and a refresh is triggered on the next read.
var CatalogMaxAge = time.Duration(env.Int("CATALOG_MAX_AGE_SECONDS", 24*60*60)) * time.Second

// RefreshInterval is the period of the background refresh cycle.
var RefreshInterval = time.Duration(env.Int("REFRESH_INTERVAL_SECONDS", 24*60*60)) * time.Second

// FetchTimeout bounds a single upstream catalog fetch.
var FetchTimeout = time.Duration(env.Int("FETCH_TIMEOUT_SECONDS", 30)) * time.Second

// RebuildWaitTimeout bounds how long a synchronous rebuild caller waits for
// the in-flight fetch. The fetch itself keeps running after the caller gives
// up so other waiters still benefit from its result.
var RebuildWaitTimeout = time.Duration(env.Int("REBUILD_WAIT_TIMEOUT_SECONDS", 60)) * time.Second

// SQLitePath is the warm-start database location.
var SQLitePath = env.String("SQLITE_PATH", "openrouter.db")

// DisablePersistence turns off the warm-start database entirely; the
// snapshot then lives in memory only.
var DisablePersistence = env.Bool("DISABLE_PERSISTENCE", false)

// RedisConnString enables the optional snapshot payload cache when set,
// e.g. "redis://localhost:6379/0".
var RedisConnString = env.String("REDIS_CONN_STRING", "")

// RedisKeyPrefix namespaces the cache keys of this instance.
var RedisKeyPrefix = env.String("REDIS_KEY_PREFIX", "openrouter-mcp")

// EnablePrometheusMetrics exposes /metrics and turns on the prometheus
// recorder.
var EnablePrometheusMetrics = env.Bool("ENABLE_PROMETHEUS_METRICS", true)

// MaxItemsPerPage caps the page size of search results.
var MaxItemsPerPage = env.Int("MAX_ITEMS_PER_PAGE", 100)

// DefaultItemsPerPage is the page size applied when the caller does not ask
// for one.
var DefaultItemsPerPage = env.Int("DEFAULT_ITEMS_PER_PAGE", 50)
