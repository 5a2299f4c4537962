// Package httpprobe performs bounded HTTP GET probes against the services
// under audit.
package httpprobe

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/stackaudit/stackaudit/internal/domain"
)

// maxBodyBytes caps how much of a response body the prober will read. The
// policy only validates small JSON documents.
const maxBodyBytes = 1 << 20

// Prober implements domain.HTTPProber.
type Prober struct {
	client *http.Client
	log    *logrus.Logger
}

func New(log *logrus.Logger) *Prober {
	return &Prober{
		// Per-request deadlines come from the probe context; the client
		// itself stays unbounded.
		client: &http.Client{},
		log:    log,
	}
}

// Probe issues one GET with the given timeout. A transport failure (including
// timeout) is recorded in the facts, never returned as an error: it is an
// audit observation. A non-2xx response is a normal result with a status code.
func (p *Prober) Probe(ctx context.Context, url string, timeout time.Duration) *domain.EndpointFacts {
	facts := &domain.EndpointFacts{URL: url}

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		facts.TransportErr = err.Error()
		return facts
	}

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		facts.Elapsed = time.Since(start)
		facts.TransportErr = err.Error()
		p.log.WithField("url", url).WithError(err).Debug("probe transport failure")
		return facts
	}
	defer resp.Body.Close()

	facts.StatusCode = resp.StatusCode
	facts.ContentType = resp.Header.Get("Content-Type")
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	// Elapsed covers the full exchange including the body read, so a server
	// that streams its body slowly is measured against the ceiling too.
	facts.Elapsed = time.Since(start)
	if err != nil {
		facts.TransportErr = err.Error()
		return facts
	}
	facts.Body = body

	p.log.WithField("url", url).
		WithField("status", facts.StatusCode).
		WithField("elapsed_ms", facts.Elapsed.Milliseconds()).
		Debug("probe complete")
	return facts
}
