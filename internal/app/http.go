package app

import (
	"net"
	"net/http"
	"time"
)

// newHTTPClient returns the client used for page fetches. Dial and TLS
// handshakes are bounded; the overall request is bounded only by the fetch
// client's per-request timeout. An explicit --proxy replaces the environment
// proxy inside the fetch client.
func newHTTPClient() *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          16,
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{Transport: transport}
}
