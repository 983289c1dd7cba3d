package httputil

import (
	"net/http"
	"time"
)

// DefaultTimeout bounds a single request. Rigorous simulations can take
// tens of seconds.
const DefaultTimeout = 2 * time.Minute

// NewClient returns an HTTP client with the given overall request timeout.
// A zero timeout selects [DefaultTimeout].
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConnsPerHost: 4,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}
