// Package cache stores raw API response bodies keyed by request signature,
// so repeating a query within the TTL serves it without touching the API.
package cache

// Store is the response cache consulted before every request. Implementations
// never fail a query: a broken entry is simply a miss.
type Store interface {
	// Get returns the cached body for a signature, if present and fresh.
	Get(signature string) (any, bool)
	// Put records the body for a signature.
	Put(signature string, body any)
}

// Nop never hits and never stores. It backs --no-cache, which bypasses the
// cache in both directions.
type Nop struct{}

func (Nop) Get(string) (any, bool) { return nil, false }

func (Nop) Put(string, any) {}

// Memory is a map-backed store scoped to one process run.
type Memory struct {
	entries map[string]any
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]any)}
}

func (m *Memory) Get(signature string) (any, bool) {
	body, ok := m.entries[signature]
	return body, ok
}

func (m *Memory) Put(signature string, body any) {
	m.entries[signature] = body
}
