// Package transport builds the HTTP clients used for all outbound calls.
// TLS verification is a per-client policy set at construction time; nothing
// here mutates process-wide state.
package transport

import (
	"crypto/tls"
	"net/http"
	"time"
)

// Options controls how an outbound HTTP client is built.
type Options struct {
	// VerifyTLS enables certificate and hostname verification. The default
	// deployment talks to an internal vLLM endpoint with a self-signed
	// certificate, so this is frequently false.
	VerifyTLS bool
	// Timeout bounds each request end to end. Zero means no client timeout;
	// callers are then expected to pass a context deadline.
	Timeout time.Duration
}

// NewClient returns an *http.Client with its own transport. Connections are
// pooled per client and safe for concurrent use; the client carries no
// per-request state.
func NewClient(opts Options) *http.Client {
	t := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
	if !opts.VerifyTLS {
		t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return &http.Client{
		Transport: t,
		Timeout:   opts.Timeout,
	}
}
