package client

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/Laisky/zap"

	"github.com/Laisky/openrouter-mcp/common/config"
	"github.com/Laisky/openrouter-mcp/common/logger"
)

// HTTPClient is the outbound client used for upstream catalog fetches. Its
// timeout bounds a whole fetch attempt, after which the attempt is treated
// as a failure by the refresher.
var HTTPClient *http.Client

// ImpatientHTTPClient is a short-timeout client for quick metadata requests.
var ImpatientHTTPClient *http.Client

// Init builds the shared HTTP clients with proxy and timeout settings
// derived from configuration.
func Init() {
	// HTTP/2 is disabled to avoid stream errors against some upstream
	// load balancers.
	createTransport := func(proxyURL *url.URL) *http.Transport {
		dialer := &net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}
		transport := &http.Transport{
			DialContext:  dialer.DialContext,
			TLSNextProto: make(map[string]func(authority string, c *tls.Conn) http.RoundTripper),
		}
		if proxyURL != nil {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
		return transport
	}

	var transport http.RoundTripper
	if config.CatalogProxy != "" {
		logger.Logger.Info("using proxy for catalog fetches", zap.String("proxy", config.CatalogProxy))
		proxyURL, err := url.Parse(config.CatalogProxy)
		if err != nil {
			logger.Logger.Fatal(fmt.Sprintf("CATALOG_PROXY set but invalid: %s", config.CatalogProxy))
		}
		transport = createTransport(proxyURL)
	} else {
		transport = createTransport(nil)
	}

	HTTPClient = &http.Client{
		Timeout:   config.FetchTimeout,
		Transport: transport,
	}

	ImpatientHTTPClient = &http.Client{
		Timeout:   5 * time.Second,
		Transport: transport,
	}
}
