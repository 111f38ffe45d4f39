package customHttpClient

import (
	"net/http"
	"sync"

	"github.com/akolanti/DocFlowAPI/internal/config"
)

var (
	client *http.Client
	once   sync.Once
)

// Pooled returns the client every completion provider shares, so repeated
// calls to the same endpoint reuse idle connections.
func Pooled() *http.Client {
	once.Do(func() {
		client = &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        config.MaxIdleConns,
				MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
				IdleConnTimeout:     config.IdleConnTimeout,
				ForceAttemptHTTP2:   true,
			},
		}
	})
	return client
}
