// Package apitest provides an offline stand-in for the HTTP client used by
// the api package.
package apitest

import (
	"io"
	"net/http"
	"strings"
	"testing"
)

// FakeDoer implements api.Doer, answering each Do call with the next queued
// response while recording the requests it saw.
type FakeDoer struct {
	t         testing.TB
	responses []*http.Response
	requests  []*http.Request
}

// NewFakeDoer returns a FakeDoer seeded with the responses to hand out, in
// order. Running out of responses fails the test.
func NewFakeDoer(t testing.TB, responses ...*http.Response) *FakeDoer {
	return &FakeDoer{
		t:         t,
		responses: append([]*http.Response(nil), responses...),
	}
}

// Do records the request and pops the next queued response.
func (f *FakeDoer) Do(req *http.Request) (*http.Response, error) {
	f.requests = append(f.requests, req)
	if len(f.responses) == 0 {
		f.t.Fatalf("no responses left for request %s %s", req.Method, req.URL)
	}
	resp := f.responses[0]
	f.responses = f.responses[1:]
	return resp, nil
}

// Requests returns the requests captured so far.
func (f *FakeDoer) Requests() []*http.Request {
	return append([]*http.Request(nil), f.requests...)
}

// CallCount returns how many requests have been made.
func (f *FakeDoer) CallCount() int {
	return len(f.requests)
}

// JSONResponse builds a response with the given status and JSON body.
func JSONResponse(status int, body string) *http.Response {
	resp := &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
	resp.Header.Set("Content-Type", "application/json")
	return resp
}
