package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkarlsen/orgscan/telemetry"
	"github.com/mkarlsen/orgscan/types"
)

type stubService struct {
	resp *types.InventoryResponse
	err  error
	got  *types.InventoryRequest
}

func (s *stubService) Run(_ context.Context, req *types.InventoryRequest) (*types.InventoryResponse, error) {
	s.got = req
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

func TestAPIHandlerRunsRequest(t *testing.T) {
	svc := &stubService{resp: &types.InventoryResponse{
		Status:            "delivered 2 artifacts (3 rows) for 1 accounts",
		AccountsProcessed: 1,
		ArtifactCount:     2,
		RowsCount:         3,
	}}
	handler := apiHandler(svc, telemetry.NewLogger("test"))

	body := `{"scope":"Account","target":"acct-prod","resourceKinds":["EC2","S3"],"recipient":"a@b.com"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/inventory", strings.NewReader(body))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.got)
	assert.Equal(t, types.ScopeAccount, svc.got.Scope)
	assert.Equal(t, "acct-prod", svc.got.Target)

	var resp types.InventoryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.ArtifactCount)
	assert.Equal(t, 3, resp.RowsCount)
}

func TestAPIHandlerRejectsBadJSON(t *testing.T) {
	handler := apiHandler(&stubService{}, telemetry.NewLogger("test"))

	req := httptest.NewRequest(http.MethodPost, "/v1/inventory", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPIHandlerRejectsGet(t *testing.T) {
	handler := apiHandler(&stubService{}, telemetry.NewLogger("test"))

	req := httptest.NewRequest(http.MethodGet, "/v1/inventory", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid request", &types.InvalidRequestError{Field: "target"}, http.StatusBadRequest},
		{"not found", &types.NotFoundError{Scope: types.ScopeAccount, Target: "x"}, http.StatusNotFound},
		{"delivery", &types.DeliveryError{Recipient: "a@b.com", Err: assert.AnError}, http.StatusBadGateway},
		{"other", assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestBuildRequestFromFlags(t *testing.T) {
	runRequestFile = ""
	runScope = "Group"
	runTarget = "workloads"
	runKinds = []string{"EC2", "RDS"}
	runRecipient = "ops@example.com"
	t.Cleanup(func() {
		runScope = string(types.ScopeAccount)
		runTarget = ""
		runKinds = nil
		runRecipient = ""
	})

	req, err := buildRequest()
	require.NoError(t, err)
	assert.Equal(t, types.ScopeGroup, req.Scope)
	assert.Equal(t, "workloads", req.Target)
	assert.Equal(t, []string{"EC2", "RDS"}, req.ResourceKinds)
	assert.Equal(t, "ops@example.com", req.Recipient)
}
