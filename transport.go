package jiraquery

import (
	"net"
	"net/http"
	"time"
)

// defaultClient builds the http.Client an Instance uses unless the caller
// brings their own via WithClient.
func defaultClient() *http.Client {
	return &http.Client{
		Timeout:   15 * time.Second, // hard per-request cap
		Transport: defaultTransport(),
	}
}

// defaultTransport returns a tuned Transport. Pooling keeps a chunked search
// on warm connections instead of redialing per page.
func defaultTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,

		// connection pooling defaults
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,

		// TCP settings
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 60 * time.Second,
		}).DialContext,

		// timeouts on TLS handshake / expect-continue help with slow remotes
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}
