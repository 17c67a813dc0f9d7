// Package pdq holds pre-defined queries: named multi-step fetch plans that
// join records across API endpoints. A plan's steps run strictly in order,
// one request at a time; values extracted from one step's records bind by
// name into the requests of the next.
package pdq

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"tmc/internal/api"
	"tmc/internal/fieldpath"
	"tmc/internal/query"
	"tmc/pkg/logging"
)

// Bindings carries the values extracted from one upstream record, keyed by
// the last segment of the extract path (fullName.name binds as "name").
type Bindings map[string]string

// Get returns a binding value, or an error naming the gap. Records missing
// an extracted field produce requests that fail here instead of silently
// querying a malformed path.
func (b Bindings) Get(name string) (string, error) {
	v, ok := b[name]
	if !ok || v == "" {
		return "", fmt.Errorf("missing binding %q", name)
	}
	return v, nil
}

// Step is one fetch in a plan.
type Step struct {
	// Request builds the step's request from the previous step's bindings.
	// The first step runs with empty bindings.
	Request func(b Bindings) (api.Request, error)
	// Page describes how the step's records are paginated.
	Page query.Pagination
	// Extract names the field paths whose values bind into the next step.
	Extract []string
}

// PDQ is a named plan plus the table headers its records render with.
type PDQ struct {
	Name    string
	Headers []string
	Steps   []Step
}

// NotFoundError indicates an unknown pre-defined query name.
type NotFoundError struct {
	// Name is the query that was requested.
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no pre-defined query named %q (use 'pdqs' to list them)", e.Name)
}

// Registry resolves pre-defined query names. It is seeded with the built-in
// plans; user-defined plans from the config file register on top.
type Registry struct {
	pdqs map[string]PDQ
}

// NewRegistry returns a registry holding the built-in queries.
func NewRegistry() *Registry {
	r := &Registry{pdqs: make(map[string]PDQ)}
	for _, p := range builtins() {
		r.pdqs[p.Name] = p
	}
	return r
}

// Resolve looks up a plan by name. The lookup has no side effects; an
// unknown name returns a *NotFoundError.
func (r *Registry) Resolve(name string) (PDQ, error) {
	p, ok := r.pdqs[name]
	if !ok {
		return PDQ{}, &NotFoundError{Name: name}
	}
	return p, nil
}

// Contains reports whether a plan with this name is registered.
func (r *Registry) Contains(name string) bool {
	_, ok := r.pdqs[name]
	return ok
}

// Names returns the registered query names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.pdqs))
	for name := range r.pdqs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Register adds a plan. Empty plans and name collisions are rejected so a
// config file cannot shadow a built-in.
func (r *Registry) Register(p PDQ) error {
	if p.Name == "" {
		return fmt.Errorf("pre-defined query has no name")
	}
	if len(p.Steps) == 0 {
		return fmt.Errorf("pre-defined query %q has no steps", p.Name)
	}
	if _, exists := r.pdqs[p.Name]; exists {
		return fmt.Errorf("pre-defined query %q already registered", p.Name)
	}
	r.pdqs[p.Name] = p
	return nil
}

// Execute runs a plan through the session. Every step issues one fetch per
// binding set produced by the step before it, sequentially and in record
// order; the final step's records are the result. A positive limit caps the
// final record count.
func Execute(ctx context.Context, s *query.Session, p PDQ, limit int) ([]any, error) {
	sets := []Bindings{{}}
	var out []any

	for i, step := range p.Steps {
		last := i == len(p.Steps)-1
		var collected []any

		for _, b := range sets {
			remaining := 0
			if last && limit > 0 {
				remaining = limit - len(collected)
				if remaining <= 0 {
					break
				}
			}

			req, err := step.Request(b)
			if err != nil {
				return nil, fmt.Errorf("pre-defined query %q step %d: %w", p.Name, i+1, err)
			}
			records, err := s.Fetch(ctx, req, step.Page, remaining)
			if err != nil {
				return nil, err
			}
			collected = append(collected, records...)
		}

		logging.Debug("pdq", "%s step %d: %d records", p.Name, i+1, len(collected))
		if last {
			out = collected
			break
		}
		sets = bind(collected, step.Extract)
	}
	return out, nil
}

// bind turns a step's records into the binding sets that parameterize the
// next step, one set per record.
func bind(records []any, extract []string) []Bindings {
	sets := make([]Bindings, 0, len(records))
	for _, record := range records {
		b := Bindings{}
		for _, path := range extract {
			v, ok := fieldpath.Lookup(record, path)
			if !ok {
				continue
			}
			b[bindingName(path)] = fmt.Sprintf("%v", v)
		}
		sets = append(sets, b)
	}
	return sets
}

func bindingName(path string) string {
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		return path[i+1:]
	}
	return path
}
