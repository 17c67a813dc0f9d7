// Package query drives fetches against the API, serving each request through
// the response cache and following continuation tokens until a result set is
// complete.
package query

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"tmc/internal/api"
	"tmc/internal/cache"
	"tmc/internal/fieldpath"
	"tmc/pkg/logging"
)

// DefaultPageSize is the page size requested from the API.
const DefaultPageSize = 100

// DefaultMaxPages bounds how many pages one fetch may follow before it is
// treated as a runaway loop.
const DefaultMaxPages = 1000

// Pagination describes how a collection endpoint pages its records.
type Pagination struct {
	// Items is the response field holding each page's records. Empty means
	// the response is not paginated.
	Items string
	// TokenField is the dotted path to the continuation token in a page.
	TokenField string
	// TokenParam is the query parameter that carries the token upstream.
	TokenParam string
	// SizeParam is the query parameter that carries the page size.
	SizeParam string
	// Size is the page size requested from the API.
	Size int
	// MaxPages bounds the number of pages followed per fetch.
	MaxPages int
}

func (p Pagination) withDefaults() Pagination {
	if p.TokenField == "" {
		p.TokenField = "pagination.next"
	}
	if p.TokenParam == "" {
		p.TokenParam = "pagination.start"
	}
	if p.SizeParam == "" {
		p.SizeParam = "pagination.size"
	}
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	if p.MaxPages <= 0 {
		p.MaxPages = DefaultMaxPages
	}
	return p
}

// Merge fills this pagination's unset token, size, and bound settings from
// another. Items stays as-is: which field holds the records is a property of
// the request, not of the session.
func (p Pagination) Merge(d Pagination) Pagination {
	if p.TokenField == "" {
		p.TokenField = d.TokenField
	}
	if p.TokenParam == "" {
		p.TokenParam = d.TokenParam
	}
	if p.SizeParam == "" {
		p.SizeParam = d.SizeParam
	}
	if p.Size <= 0 {
		p.Size = d.Size
	}
	if p.MaxPages <= 0 {
		p.MaxPages = d.MaxPages
	}
	return p
}

// OverrunError indicates a fetch followed more pages than its safety bound
// allows. The API kept returning continuation tokens.
type OverrunError struct {
	// Path is the request path that overran.
	Path string
	// Pages is the bound that was hit.
	Pages int
}

func (e *OverrunError) Error() string {
	return fmt.Sprintf("pagination overrun on %s: more than %d pages", e.Path, e.Pages)
}

// Getter fetches one request. *api.Client implements it.
type Getter interface {
	Get(ctx context.Context, req api.Request) (any, error)
}

// Session runs requests through the cache. Requests execute one at a time,
// in order; there is no concurrent fan-out.
type Session struct {
	client   Getter
	store    cache.Store
	defaults Pagination
}

// NewSession wires a client to a cache store. The defaults fill in whatever
// pagination settings an individual fetch leaves unset.
func NewSession(client Getter, store cache.Store, defaults Pagination) *Session {
	return &Session{client: client, store: store, defaults: defaults}
}

// FetchValue retrieves one request's body, serving it from the cache when a
// fresh entry exists and recording it otherwise.
func (s *Session) FetchValue(ctx context.Context, req api.Request) (any, error) {
	sig := req.Signature()
	if body, ok := s.store.Get(sig); ok {
		logging.Debug("query", "cache hit: %s", sig)
		return body, nil
	}
	logging.Debug("query", "cache miss: %s", sig)

	body, err := s.client.Get(ctx, req)
	if err != nil {
		return nil, err
	}
	s.store.Put(sig, body)
	return body, nil
}

// Fetch retrieves the records a request yields. With pagination configured it
// accumulates the items of every page, follows the continuation token, and
// stops when the token is gone, when limit records have been collected (the
// final page is truncated so exactly limit come back), or when MaxPages is
// exceeded, which returns an *OverrunError. Records keep arrival order; a
// limit of zero means unlimited.
func (s *Session) Fetch(ctx context.Context, req api.Request, page Pagination, limit int) ([]any, error) {
	page = page.Merge(s.defaults).withDefaults()

	if page.Items == "" {
		body, err := s.FetchValue(ctx, req)
		if err != nil {
			return nil, err
		}
		if list, ok := body.([]any); ok {
			return list, nil
		}
		return []any{body}, nil
	}

	size := page.Size
	if limit > 0 && limit < size {
		size = limit
	}
	req = req.WithParam(page.SizeParam, strconv.Itoa(size))

	var records []any
	for pages := 0; ; pages++ {
		if pages >= page.MaxPages {
			return nil, &OverrunError{Path: req.Path, Pages: page.MaxPages}
		}

		body, err := s.FetchValue(ctx, req)
		if err != nil {
			return nil, err
		}

		// An absent or null items field is an empty page, not an error.
		items, _ := fieldpath.Lookup(body, page.Items)
		list, _ := items.([]any)
		records = append(records, list...)

		if limit > 0 && len(records) >= limit {
			return records[:limit], nil
		}

		token, _ := fieldpath.Lookup(body, page.TokenField)
		next := tokenString(token)
		if next == "" {
			return records, nil
		}
		req = req.WithParam(page.TokenParam, next)
	}
}

// tokenString renders a continuation token as a query parameter value. Tokens
// are opaque strings on most endpoints, but offset-style endpoints return
// numbers, so any scalar converts to its literal form. Absent or non-scalar
// values read as the end of the collection.
func tokenString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}
