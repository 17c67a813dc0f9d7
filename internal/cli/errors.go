package cli

import (
	"fmt"
	"strings"
)

// UsageError indicates invalid command-line input, as opposed to a failure
// while talking to the API. It maps to its own exit code so scripts can tell
// the two apart.
type UsageError struct {
	// Message describes what was wrong with the input.
	Message string
}

func (e *UsageError) Error() string {
	return e.Message
}

// ParseHTTPHeaders parses raw "Key: Value" strings into a header map.
func ParseHTTPHeaders(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	headers := make(map[string]string, len(raw))
	for _, h := range raw {
		key, value, ok := strings.Cut(h, ":")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, &UsageError{Message: fmt.Sprintf("invalid HTTP header %q: want 'Key: Value'", h)}
		}
		headers[key] = strings.TrimSpace(value)
	}
	return headers, nil
}
