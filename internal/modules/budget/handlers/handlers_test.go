package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/aristath/budgetopt/internal/modules/budget"
	"github.com/aristath/budgetopt/internal/respond"
	testingpkg "github.com/aristath/budgetopt/internal/testing"
)

func newTestHandler() *Handler {
	logger := zerolog.Nop()
	service := budget.NewService(budget.NewOptimizer(logger), nil, nil, nil, logger)
	return NewHandler(service, logger)
}

func newTestRouter() chi.Router {
	router := chi.NewRouter()
	newTestHandler().RegisterRoutes(router)
	return router
}

func postJSON(t *testing.T, router http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", respond.ContentTypeJSON)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandleGetCategories(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/budget/categories", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var response CategoriesResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Len(t, response.Categories, 9)
	assert.Len(t, response.Needs, 5)
	assert.Equal(t, "monthly_take_home", response.IncomeKey)
	assert.Equal(t, budget.DefaultRules(), response.Rules)
	assert.Equal(t, int64(1000), response.Scale)
}

func TestHandleOptimize_Reference(t *testing.T) {
	router := newTestRouter()

	w := postJSON(t, router, "/budget/optimize", map[string]interface{}{
		"current": testingpkg.ReferenceInput(),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var response struct {
		RunID      string           `json:"run_id"`
		Status     string           `json:"status"`
		Allocation map[string]int64 `json:"allocation"`
		Loss       *int64           `json:"loss"`
		Limits     budget.Limits    `json:"limits"`
		Weights    map[string]int64 `json:"weights"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.NotEmpty(t, response.RunID)
	assert.Equal(t, "OPTIMAL", response.Status)
	assert.Equal(t, testingpkg.ReferenceOptimum(), response.Allocation)
	require.NotNil(t, response.Loss)
	assert.Equal(t, int64(20000), *response.Loss)
	assert.Equal(t, int64(800), response.Limits.SavingsFloor)
	assert.Len(t, response.Weights, 9)
}

func TestHandleOptimize_InfeasibleIsNotAnError(t *testing.T) {
	router := newTestRouter()

	w := postJSON(t, router, "/budget/optimize", map[string]interface{}{
		"current": map[string]interface{}{"monthly_take_home": 10},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "INFEASIBLE", response["status"])
	assert.Nil(t, response["allocation"])
	assert.Nil(t, response["loss"])
}

func TestHandleOptimize_BadRequests(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"malformed json", `{"current":`, ""},
		{"missing current", `{}`, "current"},
		{"negative income", `{"current": {"monthly_take_home": -5}}`, "monthly_take_home"},
		{"non-numeric amount", `{"current": {"food_expenditure": "lots"}}`, "food_expenditure"},
		{"scale out of range", `{"current": {"monthly_take_home": 100}, "scale": 0}`, "scale"},
		{"time limit out of range", `{"current": {"monthly_take_home": 100}, "time_limit_seconds": 0}`, "time_limit_seconds"},
		{"rules out of range", `{"current": {"monthly_take_home": 100}, "rules": {"savings_floor_pct": 101}}`, "savings_floor_pct"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter()
			req := httptest.NewRequest(http.MethodPost, "/budget/optimize", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)

			var response struct {
				Error   string            `json:"error"`
				Details map[string]string `json:"details"`
			}
			require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
			assert.NotEmpty(t, response.Error)
			if tt.field != "" {
				assert.Equal(t, tt.field, response.Details["field"])
			}
		})
	}
}

func TestHandleOptimize_Msgpack(t *testing.T) {
	router := newTestRouter()

	raw, err := msgpack.Marshal(map[string]interface{}{
		"current": testingpkg.ReferenceInput(),
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/budget/optimize", bytes.NewReader(raw))
	req.Header.Set("Content-Type", respond.ContentTypeMsgpack)
	req.Header.Set("Accept", respond.ContentTypeMsgpack)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, respond.ContentTypeMsgpack, w.Header().Get("Content-Type"))

	var response struct {
		Status     string           `msgpack:"status"`
		Allocation map[string]int64 `msgpack:"allocation"`
		Loss       *int64           `msgpack:"loss"`
	}
	require.NoError(t, msgpack.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "OPTIMAL", response.Status)
	assert.Equal(t, testingpkg.ReferenceOptimum(), response.Allocation)
	require.NotNil(t, response.Loss)
	assert.Equal(t, int64(20000), *response.Loss)
}

func TestHandleWeights(t *testing.T) {
	router := newTestRouter()

	w := postJSON(t, router, "/budget/weights", map[string]interface{}{
		"current": testingpkg.ReferenceInput(),
		"scale":   10000,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var report budget.WeightsReport
	require.NoError(t, json.NewDecoder(w.Body).Decode(&report))
	assert.Equal(t, int64(10000), report.Scale)
	assert.Equal(t, int64(99), report.Weights["food_expenditure"])
	assert.Equal(t, int64(2000), report.Current["total_needs"])
}

func TestHandleCheck(t *testing.T) {
	router := newTestRouter()

	proposal := map[string]interface{}{}
	for k, v := range testingpkg.ReferenceOptimum() {
		proposal[k] = v
	}

	w := postJSON(t, router, "/budget/check", map[string]interface{}{
		"current":  testingpkg.ReferenceInput(),
		"proposal": proposal,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var report budget.CheckReport
	require.NoError(t, json.NewDecoder(w.Body).Decode(&report))
	assert.True(t, report.Valid)
	require.NotNil(t, report.Loss)
	assert.Equal(t, int64(20000), *report.Loss)

	proposal["total_wants"] = 1250
	w = postJSON(t, router, "/budget/check", map[string]interface{}{
		"current":  testingpkg.ReferenceInput(),
		"proposal": proposal,
	})
	require.Equal(t, http.StatusOK, w.Code)
	report = budget.CheckReport{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&report))
	assert.False(t, report.Valid)
	assert.NotEmpty(t, report.Violations)
	assert.Nil(t, report.Loss)
}
