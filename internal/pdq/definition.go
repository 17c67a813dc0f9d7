package pdq

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"tmc/internal/api"
	"tmc/internal/query"
)

// Definition is the declarative form of a plan, as written under pdqs: in
// the config file. It compiles into the same step shape the built-ins use.
type Definition struct {
	Name    string           `yaml:"name"`
	Headers []string         `yaml:"headers"`
	Steps   []StepDefinition `yaml:"steps"`
}

// StepDefinition is one declarative step. The path and parameter values may
// hold {binding} placeholders, filled from the previous step's extracted
// fields.
type StepDefinition struct {
	Path     string            `yaml:"path"`
	Params   map[string]string `yaml:"params"`
	Items    string            `yaml:"items"`
	Extract  []string          `yaml:"extract"`
	Allow404 bool              `yaml:"allow404"`
}

// Compile turns a definition into an executable plan.
func (d Definition) Compile() (PDQ, error) {
	if d.Name == "" {
		return PDQ{}, fmt.Errorf("pdq definition has no name")
	}
	if len(d.Steps) == 0 {
		return PDQ{}, fmt.Errorf("pdq %q has no steps", d.Name)
	}

	steps := make([]Step, 0, len(d.Steps))
	for i, sd := range d.Steps {
		if sd.Path == "" {
			return PDQ{}, fmt.Errorf("pdq %q step %d has no path", d.Name, i+1)
		}
		steps = append(steps, compileStep(sd))
	}
	return PDQ{Name: d.Name, Headers: d.Headers, Steps: steps}, nil
}

func compileStep(sd StepDefinition) Step {
	return Step{
		Request: func(b Bindings) (api.Request, error) {
			path, err := expand(sd.Path, b)
			if err != nil {
				return api.Request{}, err
			}
			req := api.NewRequest(path)
			for key, tmpl := range sd.Params {
				v, err := expand(tmpl, b)
				if err != nil {
					return api.Request{}, err
				}
				req = req.WithParam(key, v)
			}
			if sd.Allow404 {
				req = req.Allow(http.StatusOK, http.StatusNotFound)
			}
			return req, nil
		},
		Page:    query.Pagination{Items: sd.Items},
		Extract: sd.Extract,
	}
}

var placeholderPattern = regexp.MustCompile(`\{([^{}]+)\}`)

// expand fills {binding} placeholders from the binding set.
func expand(tmpl string, b Bindings) (string, error) {
	var missing []string
	out := placeholderPattern.ReplaceAllStringFunc(tmpl, func(m string) string {
		v, err := b.Get(m[1 : len(m)-1])
		if err != nil {
			missing = append(missing, m[1:len(m)-1])
			return m
		}
		return v
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("unresolved bindings: %s", strings.Join(missing, ", "))
	}
	return out, nil
}
