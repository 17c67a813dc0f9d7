package pdq

import (
	"net/http"

	"tmc/internal/api"
	"tmc/internal/query"
)

// staticRequest builds a step request that ignores bindings.
func staticRequest(path string) func(Bindings) (api.Request, error) {
	return func(Bindings) (api.Request, error) {
		return api.NewRequest(path), nil
	}
}

// builtins returns the built-in query plans. Join steps tolerate 404 because
// the policies endpoints answer it for entities that never had a policy
// attached; such steps simply contribute no records.
func builtins() []PDQ {
	return []PDQ{
		{
			Name: "workspace-policies",
			Headers: []string{
				"fullName.workspaceName", "fullName.name",
				"spec.type", "spec.recipe",
			},
			Steps: []Step{
				{
					Request: staticRequest("/v1alpha1/workspaces"),
					Page:    query.Pagination{Items: "workspaces"},
					Extract: []string{"fullName.name"},
				},
				{
					Request: func(b Bindings) (api.Request, error) {
						name, err := b.Get("name")
						if err != nil {
							return api.Request{}, err
						}
						req := api.NewRequest("/v1alpha1/workspaces/" + name + "/policies")
						return req.Allow(http.StatusOK, http.StatusNotFound), nil
					},
					Page: query.Pagination{Items: "policies"},
				},
			},
		},
		{
			Name:    "cluster-policies",
			Headers: []string{"fullName.clusterName", "spec.type", "spec.recipe"},
			Steps: []Step{
				{
					Request: staticRequest("/v1alpha1/clusters"),
					Page:    query.Pagination{Items: "clusters"},
					Extract: []string{
						"fullName.name",
						"fullName.provisionerName",
						"fullName.managementClusterName",
					},
				},
				{
					Request: func(b Bindings) (api.Request, error) {
						name, err := b.Get("name")
						if err != nil {
							return api.Request{}, err
						}
						provisioner, err := b.Get("provisionerName")
						if err != nil {
							return api.Request{}, err
						}
						mgmt, err := b.Get("managementClusterName")
						if err != nil {
							return api.Request{}, err
						}
						req := api.NewRequest("/v1alpha1/clusters/" + name + "/policies").
							WithParams(map[string]string{
								"searchScope.provisionerName":       provisioner,
								"searchScope.managementClusterName": mgmt,
							})
						return req.Allow(http.StatusOK, http.StatusNotFound), nil
					},
					Page: query.Pagination{Items: "policies"},
				},
			},
		},
		{
			Name:    "policy-recipes",
			Headers: []string{"fullName.typeName", "fullName.name"},
			Steps: []Step{
				{
					Request: staticRequest("/v1alpha1/policy/types/*/recipes"),
					Page:    query.Pagination{Items: "recipes"},
				},
			},
		},
		{
			Name:    "organization-policies",
			Headers: []string{"fullName.name", "spec.type", "spec.recipe"},
			Steps: []Step{
				{
					Request: staticRequest("/v1alpha1/organization/policies"),
					Page:    query.Pagination{Items: "policies"},
				},
			},
		},
	}
}
