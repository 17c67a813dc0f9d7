package api

import "fmt"

// UpstreamError indicates the API answered with a status outside the
// request's allowed set. The body is carried verbatim for diagnosis.
type UpstreamError struct {
	// Status is the HTTP status code of the response.
	Status int
	// Body is the raw response body, trimmed.
	Body string
}

func (e *UpstreamError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("upstream API error: status %d", e.Status)
	}
	return fmt.Sprintf("upstream API error: status %d: %s", e.Status, e.Body)
}

// DecodeError indicates a response body that could not be parsed as JSON.
type DecodeError struct {
	// Path is the request path whose response failed to decode.
	Path string
	// Reason is the underlying error.
	Reason error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding response from %s: %v", e.Path, e.Reason)
}

func (e *DecodeError) Unwrap() error {
	return e.Reason
}
