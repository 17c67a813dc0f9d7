package pdq

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefinition_CompileValidation(t *testing.T) {
	_, err := Definition{}.Compile()
	assert.ErrorContains(t, err, "no name")

	_, err = Definition{Name: "x"}.Compile()
	assert.ErrorContains(t, err, "no steps")

	_, err = Definition{Name: "x", Steps: []StepDefinition{{Items: "items"}}}.Compile()
	assert.ErrorContains(t, err, "no path")
}

func TestDefinition_CompiledStepExpandsBindings(t *testing.T) {
	d := Definition{
		Name:    "cluster-groups",
		Headers: []string{"fullName.name"},
		Steps: []StepDefinition{
			{
				Path:    "/v1alpha1/clustergroups",
				Items:   "clusterGroups",
				Extract: []string{"fullName.name"},
			},
			{
				Path:     "/v1alpha1/clustergroups/{name}/policies",
				Params:   map[string]string{"searchScope.name": "{name}"},
				Items:    "policies",
				Allow404: true,
			},
		},
	}

	p, err := d.Compile()
	require.NoError(t, err)
	require.Len(t, p.Steps, 2)
	assert.Equal(t, []string{"fullName.name"}, p.Steps[0].Extract)
	assert.Equal(t, "clusterGroups", p.Steps[0].Page.Items)

	req, err := p.Steps[1].Request(Bindings{"name": "prod"})
	require.NoError(t, err)
	assert.Equal(t, "/v1alpha1/clustergroups/prod/policies", req.Path)
	assert.Equal(t, "prod", req.Params["searchScope.name"])
	assert.True(t, req.Allowed(http.StatusNotFound))
}

func TestDefinition_UnresolvedBindingFails(t *testing.T) {
	d := Definition{
		Name:  "broken",
		Steps: []StepDefinition{{Path: "/v1alpha1/things/{missing}"}},
	}

	p, err := d.Compile()
	require.NoError(t, err)

	_, err = p.Steps[0].Request(Bindings{})
	assert.ErrorContains(t, err, "unresolved bindings: missing")
}

func TestDefinition_UnmarshalsFromYAML(t *testing.T) {
	src := `
name: workspace-iam
headers: [fullName.name]
steps:
  - path: /v1alpha1/workspaces
    items: workspaces
    extract: [fullName.name]
  - path: /v1alpha1/workspaces/{name}/iam
    items: policyList
    allow404: true
`
	var d Definition
	require.NoError(t, yaml.Unmarshal([]byte(src), &d))

	p, err := d.Compile()
	require.NoError(t, err)
	assert.Equal(t, "workspace-iam", p.Name)
	require.Len(t, p.Steps, 2)
	assert.True(t, p.Steps[1].Page.Items == "policyList")
}

func TestBindingName_LastSegment(t *testing.T) {
	assert.Equal(t, "name", bindingName("fullName.name"))
	assert.Equal(t, "plain", bindingName("plain"))
}
