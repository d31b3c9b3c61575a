// Package gateway resolves content-addressed metadata URIs through an
// ordered list of public IPFS gateways and normalizes the fetched JSON
// documents into the canonical item metadata record.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"pulse-backend/metrics"
)

// ErrGatewayExhausted is returned when every candidate endpoint failed for
// a URI. Callers skip the affected token and continue the pass.
var ErrGatewayExhausted = errors.New("gateway: all gateways failed")

const ipfsScheme = "ipfs://"

// Resolved is the outcome of a successful resolution: the raw JSON body and
// the base URL it was served from, used to resolve sibling references such
// as image filenames stored next to the metadata document.
type Resolved struct {
	JSON       []byte
	SourceBase string
}

// Resolver fetches content-addressed documents with per-attempt timeouts
// and gateway fallback.
type Resolver struct {
	gateways []string
	timeout  time.Duration
	client   *http.Client
	log      *zap.Logger
}

// NewResolver creates a resolver over the given ordered gateway base URLs.
// Each fetch attempt is bounded by timeout; a request still pending past it
// is abandoned and the next candidate is tried.
func NewResolver(gateways []string, timeout time.Duration, log *zap.Logger) *Resolver {
	normalized := make([]string, 0, len(gateways))
	for _, g := range gateways {
		normalized = append(normalized, strings.TrimRight(g, "/")+"/")
	}
	return &Resolver{
		gateways: normalized,
		timeout:  timeout,
		// No client-level timeout: cancellation is per attempt via context.
		client: &http.Client{},
		log:    log,
	}
}

// Candidates expands a URI into the ordered list of URLs to try. An
// ipfs:// URI maps to one URL per configured gateway, preserving the CID
// and path suffix; anything else is tried as-is.
func (r *Resolver) Candidates(uri string) []string {
	if !strings.HasPrefix(uri, ipfsScheme) {
		return []string{uri}
	}
	cidPath := strings.TrimPrefix(uri, ipfsScheme)
	urls := make([]string, 0, len(r.gateways))
	for _, g := range r.gateways {
		urls = append(urls, g+cidPath)
	}
	return urls
}

// Resolve fetches the document behind uri, trying each candidate once in
// order. The first candidate answering 2xx with a valid JSON body wins.
func (r *Resolver) Resolve(ctx context.Context, uri string) (*Resolved, error) {
	candidates := r.Candidates(uri)
	for _, url := range candidates {
		body, err := r.fetch(ctx, url)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			metrics.GatewayAttempts.WithLabelValues("error").Inc()
			r.log.Warn("gateway candidate failed", zap.String("url", url), zap.Error(err))
			continue
		}
		metrics.GatewayAttempts.WithLabelValues("ok").Inc()
		return &Resolved{JSON: body, SourceBase: baseOf(url)}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrGatewayExhausted, uri)
}

func (r *Resolver) fetch(ctx context.Context, url string) ([]byte, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("http %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("invalid json body")
	}
	return body, nil
}

// baseOf truncates a URL at its last path separator, yielding the prefix
// sibling files share with the document.
func baseOf(url string) string {
	if i := strings.LastIndex(url, "/"); i >= 0 {
		return url[:i]
	}
	return url
}
