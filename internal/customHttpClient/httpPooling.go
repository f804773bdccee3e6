package customHttpClient

import (
	"net/http"

	"github.com/nitivista/policyqa/internal/config"
)

var customTransport = &http.Transport{
	MaxIdleConns:        config.MaxIdleConns,
	MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	IdleConnTimeout:     config.IdleConnTimeout,
}

// GetPooledClient returns a client sharing the process-wide connection pool.
// Per-call deadlines come from the request context, not a client timeout.
func GetPooledClient() *http.Client {
	return &http.Client{Transport: customTransport}
}
