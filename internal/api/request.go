// Package api issues GET requests against the Tanzu Mission Control REST API
// and decodes their JSON bodies into untyped values.
package api

import (
	"net/http"
	"sort"
	"strings"
)

// Request describes one GET: a path relative to the API base URL plus its
// query parameters. Requests are value-immutable; the With helpers return
// copies so pagination can derive follow-up requests without aliasing the
// original.
type Request struct {
	// Path is the URL path, e.g. /v1alpha1/clusters.
	Path string
	// Params are the query parameters sent with the request.
	Params map[string]string
	// AllowedStatuses are the response codes treated as success.
	// Empty means 200 only.
	AllowedStatuses []int
}

// NewRequest builds a request for the given path with no parameters.
func NewRequest(path string) Request {
	return Request{Path: path}
}

// WithParam returns a copy of the request with one parameter set.
func (r Request) WithParam(key, value string) Request {
	return r.WithParams(map[string]string{key: value})
}

// WithParams returns a copy of the request with the given parameters merged
// over the existing ones.
func (r Request) WithParams(params map[string]string) Request {
	merged := make(map[string]string, len(r.Params)+len(params))
	for k, v := range r.Params {
		merged[k] = v
	}
	for k, v := range params {
		merged[k] = v
	}
	out := r
	out.Params = merged
	return out
}

// Allow returns a copy of the request that also treats the given response
// codes as success.
func (r Request) Allow(statuses ...int) Request {
	out := r
	out.AllowedStatuses = append(append([]int(nil), r.AllowedStatuses...), statuses...)
	return out
}

// Allowed reports whether a response status counts as success for this
// request.
func (r Request) Allowed(status int) bool {
	if len(r.AllowedStatuses) == 0 {
		return status == http.StatusOK
	}
	for _, s := range r.AllowedStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Signature renders the request as a deterministic string: the method and
// path followed by the parameters in sorted key order. Two requests for the
// same data always produce the same signature, which makes it usable as a
// cache key.
func (r Request) Signature() string {
	var b strings.Builder
	b.WriteString("GET ")
	b.WriteString(r.Path)
	if len(r.Params) > 0 {
		keys := make([]string, 0, len(r.Params))
		for k := range r.Params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for i, k := range keys {
			if i == 0 {
				b.WriteByte('?')
			} else {
				b.WriteByte('&')
			}
			b.WriteString(k)
			b.WriteByte('=')
			b.WriteString(r.Params[k])
		}
	}
	return b.String()
}
