package pdq_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tmc/internal/api"
	"tmc/internal/api/apitest"
	"tmc/internal/cache"
	"tmc/internal/pdq"
	"tmc/internal/query"
)

func TestRegistry_ResolvesBuiltins(t *testing.T) {
	r := pdq.NewRegistry()

	p, err := r.Resolve("workspace-policies")

	require.NoError(t, err)
	assert.Equal(t, "workspace-policies", p.Name)
	assert.Len(t, p.Steps, 2)
	assert.Equal(t, []string{
		"fullName.workspaceName", "fullName.name", "spec.type", "spec.recipe",
	}, p.Headers)
}

func TestRegistry_AllPlansHaveSteps(t *testing.T) {
	r := pdq.NewRegistry()

	for _, name := range r.Names() {
		p, err := r.Resolve(name)
		require.NoError(t, err, name)
		assert.NotEmpty(t, p.Steps, name)
		assert.NotEmpty(t, p.Headers, name)
	}
}

func TestRegistry_UnknownName(t *testing.T) {
	r := pdq.NewRegistry()

	_, err := r.Resolve("nope")

	var notFound *pdq.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "nope", notFound.Name)
}

func TestRegistry_NamesSorted(t *testing.T) {
	r := pdq.NewRegistry()

	assert.Equal(t, []string{
		"cluster-policies",
		"organization-policies",
		"policy-recipes",
		"workspace-policies",
	}, r.Names())
}

func TestRegistry_RejectsNameCollision(t *testing.T) {
	r := pdq.NewRegistry()

	err := r.Register(pdq.PDQ{Name: "cluster-policies", Steps: make([]pdq.Step, 1)})

	assert.Error(t, err)
}

func TestRegistry_RejectsEmptyPlan(t *testing.T) {
	r := pdq.NewRegistry()

	assert.Error(t, r.Register(pdq.PDQ{Name: "empty"}))
	assert.Error(t, r.Register(pdq.PDQ{Steps: make([]pdq.Step, 1)}))
}

func TestExecute_SingleStepPlan(t *testing.T) {
	doer := apitest.NewFakeDoer(t,
		apitest.JSONResponse(200, `{"policies": [{"fullName": {"name": "org-default"}}]}`),
	)
	s := query.NewSession(api.NewClient("https://example.test", doer, nil), cache.Nop{}, query.Pagination{})
	r := pdq.NewRegistry()
	p, err := r.Resolve("organization-policies")
	require.NoError(t, err)

	records, err := pdq.Execute(context.Background(), s, p, 0)

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 1, doer.CallCount())
	assert.Equal(t, "/v1alpha1/organization/policies", doer.Requests()[0].URL.Path)
}

func TestExecute_JoinBindsFieldsByName(t *testing.T) {
	doer := apitest.NewFakeDoer(t,
		apitest.JSONResponse(200, `{"clusters": [
			{"fullName": {"name": "c1", "provisionerName": "prov-a", "managementClusterName": "mgmt-a"}},
			{"fullName": {"name": "c2", "provisionerName": "prov-b", "managementClusterName": "mgmt-b"}}
		]}`),
		apitest.JSONResponse(200, `{"policies": [{"spec": {"type": "security"}}]}`),
		apitest.JSONResponse(200, `{"policies": [{"spec": {"type": "quota"}}]}`),
	)
	s := query.NewSession(api.NewClient("https://example.test", doer, nil), cache.Nop{}, query.Pagination{})
	r := pdq.NewRegistry()
	p, err := r.Resolve("cluster-policies")
	require.NoError(t, err)

	records, err := pdq.Execute(context.Background(), s, p, 0)

	require.NoError(t, err)
	assert.Len(t, records, 2)

	reqs := doer.Requests()
	require.Len(t, reqs, 3)

	// Joins run after the listing, one per record, in record order.
	assert.Equal(t, "/v1alpha1/clusters", reqs[0].URL.Path)
	assert.Equal(t, "/v1alpha1/clusters/c1/policies", reqs[1].URL.Path)
	assert.Equal(t, "/v1alpha1/clusters/c2/policies", reqs[2].URL.Path)

	// Each scope parameter carries its own field, not a positional neighbor.
	q1 := reqs[1].URL.Query()
	assert.Equal(t, "prov-a", q1.Get("searchScope.provisionerName"))
	assert.Equal(t, "mgmt-a", q1.Get("searchScope.managementClusterName"))
	q2 := reqs[2].URL.Query()
	assert.Equal(t, "prov-b", q2.Get("searchScope.provisionerName"))
	assert.Equal(t, "mgmt-b", q2.Get("searchScope.managementClusterName"))
}

func TestExecute_ToleratedNotFoundContributesNoRecords(t *testing.T) {
	doer := apitest.NewFakeDoer(t,
		apitest.JSONResponse(200, `{"workspaces": [
			{"fullName": {"name": "empty-ws"}},
			{"fullName": {"name": "busy-ws"}}
		]}`),
		apitest.JSONResponse(404, `{"error": "workspace has no policies"}`),
		apitest.JSONResponse(200, `{"policies": [{"fullName": {"name": "p1"}}]}`),
	)
	s := query.NewSession(api.NewClient("https://example.test", doer, nil), cache.Nop{}, query.Pagination{})
	r := pdq.NewRegistry()
	p, err := r.Resolve("workspace-policies")
	require.NoError(t, err)

	records, err := pdq.Execute(context.Background(), s, p, 0)

	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestExecute_LimitCapsFinalStep(t *testing.T) {
	doer := apitest.NewFakeDoer(t,
		apitest.JSONResponse(200, `{"workspaces": [
			{"fullName": {"name": "ws1"}},
			{"fullName": {"name": "ws2"}},
			{"fullName": {"name": "ws3"}}
		]}`),
		apitest.JSONResponse(200, `{"policies": [{"n": 1}, {"n": 2}]}`),
		apitest.JSONResponse(200, `{"policies": [{"n": 3}, {"n": 4}]}`),
	)
	s := query.NewSession(api.NewClient("https://example.test", doer, nil), cache.Nop{}, query.Pagination{})
	r := pdq.NewRegistry()
	p, err := r.Resolve("workspace-policies")
	require.NoError(t, err)

	records, err := pdq.Execute(context.Background(), s, p, 3)

	require.NoError(t, err)
	assert.Len(t, records, 3)
	// The third workspace is never queried; the limit was already met.
	assert.Equal(t, 3, doer.CallCount())
}
