package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	gojson "github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"

	sf "github.com/reoring/shapefix"
	"github.com/reoring/shapefix/dsl"
	"github.com/reoring/shapefix/middleware"
)

func schema() sf.Schema {
	return dsl.Object(
		dsl.Field("name", dsl.String()),
		dsl.Field("tags", dsl.Array(dsl.String())),
	)
}

func serve(t *testing.T, opt middleware.Options, body string) (*httptest.ResponseRecorder, middleware.Body, bool) {
	t.Helper()
	var (
		got    middleware.Body
		called bool
	)
	h := middleware.Handler(schema(), opt)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, called = middleware.BodyFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
	return rec, got, called
}

func issues(t *testing.T, rec *httptest.ResponseRecorder) []middleware.Issue {
	t.Helper()
	var payload struct {
		Issues []middleware.Issue `json:"issues"`
	}
	if err := gojson.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode payload %q: %v", rec.Body.String(), err)
	}
	return payload.Issues
}

func TestHandler_Valid(t *testing.T) {
	rec, body, called := serve(t, middleware.DefaultOptions(), `{"name":"a","tags":["x"]}`)
	if !called || rec.Code != http.StatusNoContent {
		t.Fatalf("handler not reached: %d %s", rec.Code, rec.Body)
	}
	if d := cmp.Diff(map[string]any{"name": "a", "tags": []any{"x"}}, body.Value); d != "" {
		t.Fatalf("body (-want +got):\n%s", d)
	}
}

func TestHandler_Rejects(t *testing.T) {
	rec, _, called := serve(t, middleware.DefaultOptions(), `{"name":1,"tags":["x",2]}`)
	if called {
		t.Fatalf("handler must not run for invalid bodies")
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	want := []middleware.Issue{
		{Path: "/name", Code: sf.CodeInvalidType, Message: "Expected string but got number"},
		{Path: "/tags/1", Code: sf.CodeInvalidType, Message: "Expected string but got number"},
	}
	if d := cmp.Diff(want, issues(t, rec)); d != "" {
		t.Fatalf("issues (-want +got):\n%s", d)
	}
}

func TestHandler_ParseErrors(t *testing.T) {
	rec, _, _ := serve(t, middleware.DefaultOptions(), `{"name":"a","name":"b","tags":[]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate keys: status = %d", rec.Code)
	}
	if got := issues(t, rec); len(got) != 1 || got[0].Code != sf.CodeParseError || got[0].Path != "/name" {
		t.Fatalf("duplicate keys: %+v", got)
	}

	opt := middleware.DefaultOptions()
	opt.Source.MaxBytes = 8
	rec, _, _ = serve(t, opt, `{"name":"too long","tags":[]}`)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("oversized: status = %d", rec.Code)
	}
}

func TestHandler_Repair(t *testing.T) {
	opt := middleware.DefaultOptions()
	opt.Mode = sf.ModeRepair
	rec, body, called := serve(t, opt, `{"name":1}`)
	if !called {
		t.Fatalf("repair mode must reach the handler: %d %s", rec.Code, rec.Body)
	}
	if d := cmp.Diff(map[string]any{"name": "", "tags": []any{}}, body.Value); d != "" {
		t.Fatalf("repaired (-want +got):\n%s", d)
	}
	if d := cmp.Diff([]string{"$.name: Expected string but got number", "$: Missing key tags"}, body.Repaired.Strings()); d != "" {
		t.Fatalf("repaired errors (-want +got):\n%s", d)
	}
}
