package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/chunkmul/internal/logger"
	"github.com/samcharles93/chunkmul/internal/report"
)

func newTestEcho(cfg Config) *echo.Echo {
	server := NewServer(nil, cfg, logger.Discard())
	server.clock = func() time.Time {
		return time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	}
	e := echo.New()
	server.Register(e)
	return e
}

func doJSON(t *testing.T, e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestMultiplyRunLifecycle(t *testing.T) {
	t.Parallel()

	e := newTestEcho(Config{Workers: 2, ChunkSize: 1})
	rec := doJSON(t, e, http.MethodPost, "/v1/multiply", `{"a":[[1,2],[3,4]],"b":[[5,6],[7,8]]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("multiply status: got %d body=%s", rec.Code, rec.Body.String())
	}

	var created MultiplyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode multiply response: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected run id")
	}
	if created.Workers != 2 || created.Chunk != 1 {
		t.Fatalf("expected server defaults, got workers=%d chunk=%d", created.Workers, created.Chunk)
	}
	want := [][]float64{{19, 22}, {43, 50}}
	for i := range want {
		for j := range want[i] {
			if created.C[i][j] != want[i][j] {
				t.Fatalf("C = %v, want %v", created.C, want)
			}
		}
	}
	if created.Checksum != 134 {
		t.Fatalf("checksum = %v, want 134", created.Checksum)
	}

	getRec := doJSON(t, e, http.MethodGet, "/v1/runs/"+created.ID, "")
	if getRec.Code != http.StatusOK {
		t.Fatalf("get status: got %d body=%s", getRec.Code, getRec.Body.String())
	}
	var run report.Report
	if err := json.Unmarshal(getRec.Body.Bytes(), &run); err != nil {
		t.Fatalf("decode run: %v", err)
	}
	if run.ID != created.ID || run.Rows != 2 || run.Cols != 2 {
		t.Fatalf("unexpected run: %+v", run)
	}

	listRec := doJSON(t, e, http.MethodGet, "/v1/runs", "")
	var list RunList
	if err := json.Unmarshal(listRec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list.Data) != 1 || list.Data[0].ID != created.ID {
		t.Fatalf("unexpected list: %+v", list)
	}

	delRec := doJSON(t, e, http.MethodDelete, "/v1/runs/"+created.ID, "")
	if delRec.Code != http.StatusOK || !strings.Contains(delRec.Body.String(), `"deleted":true`) {
		t.Fatalf("delete: got %d body=%s", delRec.Code, delRec.Body.String())
	}

	gone := doJSON(t, e, http.MethodGet, "/v1/runs/"+created.ID, "")
	if gone.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d body=%s", gone.Code, gone.Body.String())
	}
}

func TestMultiplyExplicitOptions(t *testing.T) {
	t.Parallel()

	e := newTestEcho(Config{})
	body := `{"a":[[1,0,0],[0,1,0],[0,0,1]],"b":[[1,2],[3,4],[5,6]],"workers":3,"chunk_size":2}`
	rec := doJSON(t, e, http.MethodPost, "/v1/multiply", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d body=%s", rec.Code, rec.Body.String())
	}
	var resp MultiplyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Workers != 3 || resp.Chunk != 2 || resp.Inner != 3 {
		t.Fatalf("unexpected response: %+v", resp.Report)
	}
	if resp.C[2][1] != 6 {
		t.Fatalf("C = %v", resp.C)
	}
}

func TestMultiplyEmptyMatrices(t *testing.T) {
	t.Parallel()

	e := newTestEcho(Config{})
	rec := doJSON(t, e, http.MethodPost, "/v1/multiply", `{"a":[],"b":[]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"c":[]`) {
		t.Fatalf("expected empty result, got %s", rec.Body.String())
	}
}

func TestMultiplyValidationErrors(t *testing.T) {
	t.Parallel()

	e := newTestEcho(Config{MaxElements: 20})
	tests := []struct {
		name, body, want string
	}{
		{"malformed", `{"a":`, "invalid_request_error"},
		{"unknown field", `{"a":[[1]],"b":[[1]],"alpha":2}`, "alpha"},
		{"ragged", `{"a":[[1,2],[3]],"b":[[1],[2]]}`, "ragged row"},
		{"mismatch", `{"a":[[1,2]],"b":[[1,2]]}`, "dimension mismatch"},
		{"zero workers", `{"a":[[1]],"b":[[1]],"workers":0}`, "worker count"},
		{"zero chunk", `{"a":[[1]],"b":[[1]],"chunk_size":0}`, "chunk size"},
		{"too large", `{"a":[[1,2,3],[4,5,6]],"b":[[1,2,3],[4,5,6],[7,8,9]]}`, "limit is 20"},
	}
	for _, tc := range tests {
		rec := doJSON(t, e, http.MethodPost, "/v1/multiply", tc.body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d body=%s", tc.name, rec.Code, rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), tc.want) {
			t.Fatalf("%s: expected %q in body %s", tc.name, tc.want, rec.Body.String())
		}
	}

	list := doJSON(t, e, http.MethodGet, "/v1/runs", "")
	if !strings.Contains(list.Body.String(), `"data":[]`) {
		t.Fatalf("failed requests must not be stored: %s", list.Body.String())
	}
}

func TestPlanEndpoint(t *testing.T) {
	t.Parallel()

	e := newTestEcho(Config{Workers: 4})
	rec := doJSON(t, e, http.MethodPost, "/v1/plan", `{"rows":25,"workers":2,"chunk_size":5}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d body=%s", rec.Code, rec.Body.String())
	}
	var plan PlanResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &plan); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(plan.Ranges) != 5 || plan.RowCounts[0] != 15 || plan.RowCounts[1] != 10 {
		t.Fatalf("unexpected plan: %+v", plan)
	}

	defaults := doJSON(t, e, http.MethodPost, "/v1/plan", `{"rows":800}`)
	if err := json.Unmarshal(defaults.Body.Bytes(), &plan); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if plan.Workers != 4 || plan.ChunkSize != 10 {
		t.Fatalf("expected defaults 4/10, got %d/%d", plan.Workers, plan.ChunkSize)
	}

	bad := doJSON(t, e, http.MethodPost, "/v1/plan", `{"rows":-1}`)
	if bad.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative rows, got %d", bad.Code)
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	e := newTestEcho(Config{Workers: 3, ChunkSize: 7})
	rec := doJSON(t, e, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"workers":3`) {
		t.Fatalf("health: %d %s", rec.Code, rec.Body.String())
	}
}

func TestRunStoreEvictsOldest(t *testing.T) {
	t.Parallel()

	s := NewRunStore(2)
	for _, id := range []string{"a", "b", "c"} {
		s.Put(report.Report{ID: id})
	}
	if _, ok := s.Get("a"); ok {
		t.Fatal("oldest run should be evicted")
	}
	list := s.List()
	if len(list) != 2 || list[0].ID != "b" || list[1].ID != "c" {
		t.Fatalf("unexpected list: %+v", list)
	}
	if !s.Delete("b") || s.Delete("b") {
		t.Fatal("delete should succeed once")
	}
	if got := s.List(); len(got) != 1 || got[0].ID != "c" {
		t.Fatalf("unexpected list after delete: %+v", got)
	}
}
