package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Alloy/internal/dataset"
	"github.com/MikeSquared-Agency/Alloy/internal/hermes"
	"github.com/MikeSquared-Agency/Alloy/internal/report"
	"github.com/MikeSquared-Agency/Alloy/internal/selection"
)

type MockHermes struct {
	mock.Mock
}

func (m *MockHermes) Publish(subject string, data interface{}) error {
	args := m.Called(subject, data)
	return args.Error(0)
}

func (m *MockHermes) Subscribe(subject string, handler func(string, []byte)) error {
	args := m.Called(subject, handler)
	return args.Error(0)
}

func (m *MockHermes) Close() {}

type staticSource []selection.Record

func (s staticSource) Load(context.Context) ([]selection.Record, error) { return s, nil }

const testAdminToken = "s3cret"

func twoGrades() []selection.Record {
	return []selection.Record{
		{ID: 0, Grade: "S275", YieldStrength: 250, UTS: 400, Density: selection.DefaultDensity},
		{ID: 1, Grade: "S500", YieldStrength: 500, UTS: 600, Density: selection.DefaultDensity},
	}
}

func newTestRouter(t *testing.T, records []selection.Record, h hermes.Client) (http.Handler, *dataset.Registry) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := dataset.NewRegistry(staticSource(records), "test.xlsx", logger)
	if records != nil {
		require.NoError(t, reg.Reload(context.Background()))
	}
	return NewRouter(reg, h, selection.DefaultBounds(), testAdminToken, 0, logger), reg
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	router := NewMetricsRouter()
	w := do(t, router, "GET", "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "ok", resp["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	w := do(t, NewMetricsRouter(), "GET", "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDatasetSummary(t *testing.T) {
	router, _ := newTestRouter(t, twoGrades(), nil)
	w := do(t, router, "GET", "/api/v1/dataset", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp DatasetSummary
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, int64(1), resp.Version)
	assert.Equal(t, 2, resp.Records)
	assert.Equal(t, "test.xlsx", resp.Source)
	assert.Equal(t, 250.0, resp.Limits.MinYield)
	assert.Equal(t, 500.0, resp.Limits.MaxYield)
	assert.Equal(t, selection.Requirement{RequiredYield: 250, RequiredUTS: 400, FactorOfSafety: 1.7}, resp.DefaultRequirement)
}

func TestDatasetNotLoaded(t *testing.T) {
	router, _ := newTestRouter(t, nil, nil)

	assert.Equal(t, http.StatusServiceUnavailable, do(t, router, "GET", "/api/v1/dataset", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(t, router, "POST", "/api/v1/selection/evaluate", "").Code)
}

func TestDatasetLimits(t *testing.T) {
	router, _ := newTestRouter(t, twoGrades(), nil)

	w := do(t, router, "GET", "/api/v1/dataset/limits?factor_of_safety=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp LimitsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 2.0, resp.FactorOfSafety)
	require.NotNil(t, resp.MinAllowable)
	require.NotNil(t, resp.MaxAllowable)
	assert.Equal(t, 125.0, *resp.MinAllowable)
	assert.Equal(t, 250.0, *resp.MaxAllowable)

	assert.Equal(t, http.StatusBadRequest, do(t, router, "GET", "/api/v1/dataset/limits?factor_of_safety=0", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, router, "GET", "/api/v1/dataset/limits?factor_of_safety=abc", "").Code)
}

func TestEvaluate(t *testing.T) {
	h := &MockHermes{}
	h.On("Publish", hermes.SubjectSelectionEvaluated, mock.AnythingOfType("hermes.SelectionEvaluatedEvent")).Return(nil)
	router, _ := newTestRouter(t, twoGrades(), h)

	w := do(t, router, "POST", "/api/v1/selection/evaluate",
		`{"required_yield":200,"required_uts":300,"factor_of_safety":1.5}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp EvaluationResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.NotEmpty(t, resp.EvaluationID)
	assert.False(t, resp.NoMatches)
	assert.Empty(t, resp.Message)
	assert.Equal(t, 2, resp.AdmittedCount)
	assert.Equal(t, 2, resp.Total)
	require.NotNil(t, resp.AllowableStress)
	assert.InDelta(t, 133.333, *resp.AllowableStress, 1e-3)

	require.Len(t, resp.Admitted, 2)
	assert.Equal(t, 1, resp.Admitted[0].ID)
	assert.Equal(t, 0, resp.Admitted[1].ID)
	require.NotNil(t, resp.Admitted[0].AshbyIndex)
	assert.InDelta(t, 0.0637, *resp.Admitted[0].AshbyIndex, 1e-4)

	require.Len(t, resp.All, 2)
	assert.Equal(t, 0, resp.All[0].ID, "all keeps input order")

	h.AssertExpectations(t)
	ev := h.Calls[0].Arguments.Get(1).(hermes.SelectionEvaluatedEvent)
	assert.Equal(t, resp.EvaluationID, ev.EvaluationID)
	require.NotNil(t, ev.TopGradeID)
	assert.Equal(t, 1, *ev.TopGradeID)
}

func TestEvaluateNoMatches(t *testing.T) {
	router, _ := newTestRouter(t, twoGrades(), nil)

	w := do(t, router, "POST", "/api/v1/selection/evaluate",
		`{"required_yield":600,"required_uts":300,"factor_of_safety":1.5}`)
	require.Equal(t, http.StatusOK, w.Code)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	assert.Equal(t, true, raw["no_matches"])
	assert.Equal(t, report.NoMatchesMessage, raw["message"])
	assert.Equal(t, []interface{}{}, raw["admitted"], "admitted encodes as an empty array")
	assert.Len(t, raw["all"], 2)
}

func TestEvaluateDefaultsAndClamp(t *testing.T) {
	router, _ := newTestRouter(t, twoGrades(), nil)

	w := do(t, router, "POST", "/api/v1/selection/evaluate", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp EvaluationResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, selection.Requirement{RequiredYield: 250, RequiredUTS: 400, FactorOfSafety: 1.7}, resp.Requirement)

	w = do(t, router, "POST", "/api/v1/selection/evaluate",
		`{"required_yield":9000,"factor_of_safety":10,"clamp":true}`)
	require.Equal(t, http.StatusOK, w.Code)
	resp = EvaluationResponse{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, selection.Requirement{RequiredYield: 500, RequiredUTS: 400, FactorOfSafety: 3.0}, resp.Requirement)
}

func TestEvaluateRejectsBadInput(t *testing.T) {
	router, _ := newTestRouter(t, twoGrades(), nil)

	tests := []struct {
		name string
		body string
	}{
		{"malformed body", `{`},
		{"zero factor of safety", `{"required_yield":200,"required_uts":300,"factor_of_safety":0}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, "POST", "/api/v1/selection/evaluate", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestGradeLookup(t *testing.T) {
	router, _ := newTestRouter(t, twoGrades(), nil)
	body := `{"required_yield":300,"required_uts":300,"factor_of_safety":1.5}`

	w := do(t, router, "POST", "/api/v1/selection/grades/0", body)
	require.Equal(t, http.StatusOK, w.Code)
	var grade GradeResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&grade))
	assert.Equal(t, 0, grade.ID)
	assert.Equal(t, "S275", grade.Grade)
	assert.False(t, grade.Admitted, "lookup covers rejected grades")
	assert.False(t, grade.StrengthOK)

	w = do(t, router, "POST", "/api/v1/selection/grades/7", body)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"grade not found"}`, w.Body.String())

	assert.Equal(t, http.StatusBadRequest, do(t, router, "POST", "/api/v1/selection/grades/abc", body).Code)
}

func TestMapEncodesInfiniteAsNull(t *testing.T) {
	records := []selection.Record{
		{ID: 0, YieldStrength: 250, UTS: 0, Density: selection.DefaultDensity},
		{ID: 1, YieldStrength: 500, UTS: 600, Density: selection.DefaultDensity},
	}
	router, _ := newTestRouter(t, records, nil)

	w := do(t, router, "POST", "/api/v1/selection/map", `{"required_yield":100,"required_uts":0,"factor_of_safety":1.5}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp MapResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, selection.MapXLabel, resp.XLabel)
	assert.Equal(t, selection.MapYLabel, resp.YLabel)
	require.Len(t, resp.Points, 2)
	assert.Nil(t, resp.Points[0].Y)
	require.NotNil(t, resp.Points[0].X)
	require.NotNil(t, resp.Points[1].Y)
	assert.InDelta(t, 500.0/600.0, *resp.Points[1].Y, 1e-12)
}

func TestReports(t *testing.T) {
	router, _ := newTestRouter(t, twoGrades(), nil)
	body := `{"required_yield":200,"required_uts":300,"factor_of_safety":1.5,"project":"Bridge"}`

	w := do(t, router, "POST", "/api/v1/selection/report.pdf", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, contentTypePDF, w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))

	w = do(t, router, "POST", "/api/v1/selection/report.xlsx", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, contentTypeXLSX, w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")), "xlsx is a zip archive")

	assert.Equal(t, http.StatusBadRequest, do(t, router, "POST", "/api/v1/selection/report.pdf", `{"factor_of_safety":0}`).Code)
}

func TestReloadRequiresAdminToken(t *testing.T) {
	router, reg := newTestRouter(t, twoGrades(), nil)

	w := do(t, router, "POST", "/api/v1/dataset/reload", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, int64(1), reg.Current().Version)

	req := httptest.NewRequest("POST", "/api/v1/dataset/reload", nil)
	req.Header.Set("Authorization", "Bearer "+testAdminToken)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp DatasetSummary
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, int64(2), resp.Version)
	assert.Equal(t, int64(2), reg.Current().Version)
}
