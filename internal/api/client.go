package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"tmc/pkg/logging"
)

// Doer captures the subset of *http.Client the query path relies on. Tests
// inject fakes of this interface so they run without outbound requests.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client issues requests against one API base URL. Authorization rides on
// the injected Doer's transport; Extra headers are applied to every request
// verbatim.
type Client struct {
	base  string
	doer  Doer
	extra map[string]string
}

// NewClient builds a client for the given base URL, e.g.
// https://myorg.tmc.cloud.vmware.com. Extra headers may be nil.
func NewClient(base string, doer Doer, extra map[string]string) *Client {
	return &Client{
		base:  strings.TrimRight(base, "/"),
		doer:  doer,
		extra: extra,
	}
}

// Get fetches one request and decodes its JSON body into an untyped value.
// A status outside the request's allowed set returns an *UpstreamError with
// the raw body; an unparseable body returns a *DecodeError. There are no
// retries.
func (c *Client) Get(ctx context.Context, req Request) (any, error) {
	target := c.base + req.Path
	if !strings.HasPrefix(req.Path, "/") {
		target = c.base + "/" + req.Path
	}
	if len(req.Params) > 0 {
		q := url.Values{}
		for k, v := range req.Params {
			q.Set(k, v)
		}
		target += "?" + q.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", req.Path, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	for k, v := range c.extra {
		httpReq.Header.Set(k, v)
	}

	logging.Debug("api", "GET %s", target)

	resp, err := c.doer.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("calling %s: %w", req.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", req.Path, err)
	}

	if !req.Allowed(resp.StatusCode) {
		return nil, &UpstreamError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, &DecodeError{Path: req.Path, Reason: err}
	}
	return decoded, nil
}
