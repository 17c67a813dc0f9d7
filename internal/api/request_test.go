package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequest_Signature_SortsParams(t *testing.T) {
	req := NewRequest("/v1alpha1/clusters").WithParams(map[string]string{
		"pagination.size": "100",
		"includeTotal":    "true",
	})

	assert.Equal(t, "GET /v1alpha1/clusters?includeTotal=true&pagination.size=100", req.Signature())
}

func TestRequest_Signature_NoParams(t *testing.T) {
	assert.Equal(t, "GET /v1alpha1/workspaces", NewRequest("/v1alpha1/workspaces").Signature())
}

func TestRequest_Signature_DeterministicAcrossCopies(t *testing.T) {
	a := NewRequest("/p").WithParam("b", "2").WithParam("a", "1")
	b := NewRequest("/p").WithParam("a", "1").WithParam("b", "2")

	// Same data, same signature, regardless of insertion order.
	assert.Equal(t, a.Signature(), b.Signature())
}

func TestRequest_WithParam_DoesNotMutateOriginal(t *testing.T) {
	base := NewRequest("/p").WithParam("a", "1")
	derived := base.WithParam("b", "2")

	assert.NotContains(t, base.Params, "b")
	assert.Equal(t, "2", derived.Params["b"])
	assert.Equal(t, "1", derived.Params["a"])
}

func TestRequest_Allowed_DefaultsTo200(t *testing.T) {
	req := NewRequest("/p")

	assert.True(t, req.Allowed(http.StatusOK))
	assert.False(t, req.Allowed(http.StatusNotFound))
}

func TestRequest_Allow_WidensSuccessSet(t *testing.T) {
	req := NewRequest("/p").Allow(http.StatusOK, http.StatusNotFound)

	assert.True(t, req.Allowed(http.StatusOK))
	assert.True(t, req.Allowed(http.StatusNotFound))
	assert.False(t, req.Allowed(http.StatusForbidden))
}
