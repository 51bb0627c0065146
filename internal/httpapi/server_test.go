package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"stepstore/internal/storage"
	"stepstore/internal/storage/sqlite"
)

func newTestServer(tb testing.TB) (*Server, *storage.Manager) {
	tb.Helper()
	m, err := storage.NewManager(storage.Config{Kind: sqlite.Kind, URI: ":memory:"})
	if err != nil {
		tb.Fatalf("NewManager() error = %v", err)
	}
	if _, err := m.Connect(context.Background()); err != nil {
		tb.Fatalf("Connect() error = %v", err)
	}
	tb.Cleanup(func() {
		if m.Connected() {
			_ = m.Close()
		}
	})
	return New(m), m
}

func do(tb testing.TB, s *Server, method, target, body string) *httptest.ResponseRecorder {
	tb.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

type queryBody struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

func decodeQuery(tb testing.TB, rec *httptest.ResponseRecorder) queryBody {
	tb.Helper()
	if rec.Code != http.StatusOK {
		tb.Fatalf("query status = %d, want 200; body = %s", rec.Code, rec.Body)
	}
	var got queryBody
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		tb.Fatalf("decode query body: %v", err)
	}
	return got
}

const owner = "/tables/ANNOTATIONMAPPING/owners/t1/s1"

func TestSchemaSaveQueryDelete(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/tables/ANNOTATIONMAPPING/schema",
		`{"columns":[{"name":"PROPERTY","type":"VARCHAR(100)"}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("schema status = %d, want 200; body = %s", rec.Code, rec.Body)
	}

	rec = do(t, s, http.MethodPut, owner,
		`{"columns":[{"name":"PROPERTY","type":"VARCHAR(100)"}],"rows":[["fuseki:dataset"],[""]]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("save status = %d, want 200; body = %s", rec.Code, rec.Body)
	}

	got := decodeQuery(t, do(t, s, http.MethodGet, owner+"?columns=PROPERTY", ""))
	want := queryBody{Columns: []string{"PROPERTY"}, Rows: [][]any{{"fuseki:dataset"}}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("query = %+v, want %+v", got, want)
	}

	other := decodeQuery(t, do(t, s, http.MethodGet, "/tables/ANNOTATIONMAPPING/owners/t1/s2?columns=PROPERTY", ""))
	if len(other.Rows) != 0 {
		t.Fatalf("other owner rows = %v, want none", other.Rows)
	}

	if rec := do(t, s, http.MethodDelete, owner, ""); rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d, want 200; body = %s", rec.Code, rec.Body)
	}
	after := decodeQuery(t, do(t, s, http.MethodGet, owner+"?columns=PROPERTY", ""))
	if after.Rows == nil || len(after.Rows) != 0 {
		t.Fatalf("rows after delete = %#v, want empty array", after.Rows)
	}
}

func TestIntegerCellsRoundTrip(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodPut, "/tables/RANKS/owners/t/s",
		`{"columns":[{"name":"key","type":"VARCHAR(50)"},{"name":"rank","type":"INTEGER"}],"rows":[["a",1],["b",20]]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("save status = %d, want 200; body = %s", rec.Code, rec.Body)
	}
	got := decodeQuery(t, do(t, s, http.MethodGet, "/tables/RANKS/owners/t/s?columns=RANK,KEY", ""))
	want := [][]any{{float64(1), "a"}, {float64(20), "b"}}
	if !reflect.DeepEqual(got.Rows, want) {
		t.Fatalf("rows = %v, want %v", got.Rows, want)
	}
}

func TestErrorStatus(t *testing.T) {
	t.Parallel()

	cols := `"columns":[{"name":"PROPERTY","type":"VARCHAR(100)"}]`
	tests := []struct {
		name   string
		method string
		target string
		body   string
		want   int
	}{
		{name: "malformed body", method: http.MethodPut, target: owner, body: `{`, want: http.StatusBadRequest},
		{name: "unknown field", method: http.MethodPost, target: "/tables/T/schema", body: `{"cols":[]}`, want: http.StatusBadRequest},
		{name: "fractional cell", method: http.MethodPut, target: owner, body: `{` + cols + `,"rows":[[1.5]]}`, want: http.StatusBadRequest},
		{name: "boolean cell", method: http.MethodPut, target: owner, body: `{` + cols + `,"rows":[[true]]}`, want: http.StatusBadRequest},
		{name: "null cell", method: http.MethodPut, target: owner, body: `{` + cols + `,"rows":[[null]]}`, want: http.StatusBadRequest},
		{name: "arity mismatch", method: http.MethodPut, target: owner, body: `{` + cols + `,"rows":[["a","b"]]}`, want: http.StatusBadRequest},
		{name: "no columns declared", method: http.MethodPost, target: "/tables/T/schema", body: `{"columns":[]}`, want: http.StatusBadRequest},
		{name: "no columns requested", method: http.MethodGet, target: owner, want: http.StatusBadRequest},
		{name: "missing table", method: http.MethodGet, target: "/tables/NOPE/owners/t/s?columns=A", want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s, _ := newTestServer(t)
			rec := do(t, s, tt.method, tt.target, tt.body)
			if rec.Code != tt.want {
				t.Fatalf("%s %s status = %d, want %d; body = %s", tt.method, tt.target, rec.Code, tt.want, rec.Body)
			}
		})
	}
}

func TestPartialSaveReportsCommittedRows(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodPut, owner,
		`{"columns":[{"name":"PROPERTY","type":"VARCHAR(100)"}],"rows":[["a"],[""],["b"],["a"],["c"]]}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("save status = %d, want 500; body = %s", rec.Code, rec.Body)
	}
	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body.Row == nil || *body.Row != 3 {
		t.Fatalf("row = %v, want 3", body.Row)
	}
	if !reflect.DeepEqual(body.Committed, []int{0, 2}) {
		t.Fatalf("committed = %v, want [0 2]", body.Committed)
	}
}

func TestClosedConnectionIsUnavailable(t *testing.T) {
	t.Parallel()
	s, m := newTestServer(t)
	if err := m.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	rec := do(t, s, http.MethodDelete, owner, "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("delete status = %d, want 503; body = %s", rec.Code, rec.Body)
	}
}

func TestRequestID(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodGet, owner+"?columns=PROPERTY", "")
	if id := rec.Header().Get(echo.HeaderXRequestID); len(id) != 36 {
		t.Fatalf("request id = %q, want a uuid", id)
	}
}

func TestRunShutsDownAndClosesManager(t *testing.T) {
	t.Parallel()
	s, m := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, "127.0.0.1:0") }()

	deadline := time.Now().Add(5 * time.Second)
	for s.e.ListenerAddr() == nil {
		if time.Now().After(deadline) {
			t.Fatalf("server did not start listening")
		}
		time.Sleep(10 * time.Millisecond)
	}
	resp, err := http.Get("http://" + s.e.ListenerAddr().String() + owner + "?columns=PROPERTY")
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	case <-time.After(15 * time.Second):
		t.Fatalf("Run() did not return after cancel")
	}
	if m.Connected() {
		t.Fatalf("Connected() = true after Run returned")
	}
}
