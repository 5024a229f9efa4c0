// Package httpclient holds the process wide HTTP client shared by every
// provider that builds its own SDK client. Sharing one client shares one
// connection pool.
package httpclient

import (
	"net"
	"net/http"
	"sync"
	"time"
)

var (
	once   sync.Once
	shared *http.Client
)

// Shared returns the process wide HTTP client, creating it on first use.
// Every call returns the identical instance.
func Shared() *http.Client {
	once.Do(func() {
		shared = New()
	})
	return shared
}

// New builds a pooled HTTP client tuned for long running model requests.
// No overall client timeout is set since streaming responses can stay open
// for minutes; request deadlines come from the caller's context.
func New() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext
	transport.MaxIdleConns = 1000
	transport.MaxIdleConnsPerHost = 100
	transport.IdleConnTimeout = time.Minute
	return &http.Client{Transport: transport}
}
