package agent

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/morphohq/morpho/internal/engine"
	"github.com/morphohq/morpho/internal/model"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func writeRoot(t *testing.T, parent, name string, files map[string]string) string {
	t.Helper()
	root := filepath.Join(parent, name)
	for rel, src := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("MkdirAll: %v", err)
		}
		if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}
	return root
}

func newServer(t *testing.T, blacklist []string, rootDirs ...string) *Server {
	t.Helper()
	roots := make([]model.SourceRoot, len(rootDirs))
	for i, dir := range rootDirs {
		roots[i] = model.SourceRoot{Name: filepath.Base(dir), Path: dir, Rank: i}
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(engine.New(roots, log), blacklist, log)
}

func fixtureServer(t *testing.T) *Server {
	t.Helper()
	root := writeRoot(t, t.TempDir(), "app", map[string]string{
		"src/lib.rs": "pub fn outer() { inner(); }\nfn inner() {}\n",
	})
	return newServer(t, nil, root)
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func postTool(t *testing.T, s *Server, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func resultOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}
	var resp struct {
		Result string `json:"result"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshaling response: %v", err)
	}
	return resp.Result
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 (body %s)", w.Code, w.Body.String())
	}
	var resp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshaling response: %v", err)
	}
	if resp.Error == "" {
		t.Fatal("error field is empty")
	}
	return resp.Error
}

func TestInfoEndpoint(t *testing.T) {
	t.Parallel()

	parent := t.TempDir()
	app := writeRoot(t, parent, "app", map[string]string{"src/lib.rs": "pub fn run() {}\n"})
	dep := writeRoot(t, parent, "dep", map[string]string{"src/lib.rs": "pub fn util() {}\n"})
	s := newServer(t, nil, app, dep)

	w := get(t, s, "/info")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var info struct {
		Primary struct {
			Name string `json:"name"`
			Path string `json:"path"`
		} `json:"primary_project"`
		Dependencies []struct {
			Name string `json:"name"`
		} `json:"dependencies"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &info); err != nil {
		t.Fatalf("unmarshaling response: %v", err)
	}
	if info.Primary.Name != "app" || info.Primary.Path != app {
		t.Errorf("primary_project = %+v, want app at %s", info.Primary, app)
	}
	if len(info.Dependencies) != 1 || info.Dependencies[0].Name != "dep" {
		t.Errorf("dependencies = %+v, want [dep]", info.Dependencies)
	}
}

func TestInfoDependenciesNeverNull(t *testing.T) {
	t.Parallel()

	w := get(t, fixtureServer(t), "/info")
	if !strings.Contains(w.Body.String(), `"dependencies":[]`) {
		t.Errorf("body = %s, want empty dependencies array", w.Body.String())
	}
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	w := get(t, fixtureServer(t), "/healthz")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Errorf("body = %s, want status ok", w.Body.String())
	}
}

func TestListAllTool(t *testing.T) {
	t.Parallel()

	s := fixtureServer(t)

	out := resultOf(t, postTool(t, s, "/tool/list_all", `{}`))
	for _, want := range []string{"=== ./src/lib.rs ===", "pub fn ./src/lib.rs::outer() -> ()", "fn ./src/lib.rs::inner() -> ()"} {
		if !strings.Contains(out, want) {
			t.Errorf("result missing %q:\n%s", want, out)
		}
	}

	out = resultOf(t, postTool(t, s, "/tool/list_all", `{"public_only": true}`))
	if strings.Contains(out, "inner") {
		t.Errorf("public_only result still lists inner:\n%s", out)
	}
}

func TestListAllDirectoryScope(t *testing.T) {
	t.Parallel()

	parent := t.TempDir()
	app := writeRoot(t, parent, "app", map[string]string{"src/lib.rs": "pub fn app_run() {}\n"})
	dep := writeRoot(t, parent, "dep", map[string]string{"src/lib.rs": "pub fn dep_util() {}\n"})
	s := newServer(t, nil, app, dep)

	out := resultOf(t, postTool(t, s, "/tool/list_all", `{"directory": "dep"}`))
	if !strings.Contains(out, "dep_util") {
		t.Errorf("scoped result missing dep_util:\n%s", out)
	}
	if strings.Contains(out, "app_run") {
		t.Errorf("scoped result still lists app_run:\n%s", out)
	}
}

func TestCallGraphTool(t *testing.T) {
	t.Parallel()

	out := resultOf(t, postTool(t, fixtureServer(t), "/tool/generate_call_graph", `{"root_function": "outer"}`))
	if !strings.Contains(out, "pub fn ./src/lib.rs::outer() -> ()") {
		t.Errorf("result missing root signature:\n%s", out)
	}
	if !strings.Contains(out, "└── inner") {
		t.Errorf("result missing inner branch:\n%s", out)
	}
}

func TestCallGraphRequiresRootFunction(t *testing.T) {
	t.Parallel()

	msg := errorOf(t, postTool(t, fixtureServer(t), "/tool/generate_call_graph", `{}`))
	if !strings.Contains(msg, "root_function") {
		t.Errorf("error = %q, want mention of root_function", msg)
	}
}

func TestCallGraphUnknownFunction(t *testing.T) {
	t.Parallel()

	msg := errorOf(t, postTool(t, fixtureServer(t), "/tool/generate_call_graph", `{"root_function": "nope"}`))
	if !strings.Contains(msg, "not found") {
		t.Errorf("error = %q, want not found", msg)
	}
}

func TestGetSourceTool(t *testing.T) {
	t.Parallel()

	out := resultOf(t, postTool(t, fixtureServer(t), "/tool/get_source", `{"function": "outer"}`))
	if !strings.Contains(out, "=== ./src/lib.rs ===") {
		t.Errorf("result missing file header:\n%s", out)
	}
	if !strings.Contains(out, "pub fn outer()") {
		t.Errorf("result missing declaration:\n%s", out)
	}
}

func TestGetSourceRequiresFunction(t *testing.T) {
	t.Parallel()

	msg := errorOf(t, postTool(t, fixtureServer(t), "/tool/get_source", `{}`))
	if !strings.Contains(msg, "function") {
		t.Errorf("error = %q, want mention of function", msg)
	}
}

func TestMalformedBodyRejected(t *testing.T) {
	t.Parallel()

	msg := errorOf(t, postTool(t, fixtureServer(t), "/tool/list_all", `{"public_only":`))
	if !strings.Contains(msg, "decoding request") {
		t.Errorf("error = %q, want decoding request", msg)
	}
}

func TestServerBlacklistMergedWithRequest(t *testing.T) {
	t.Parallel()

	root := writeRoot(t, t.TempDir(), "app", map[string]string{
		"src/lib.rs":  "pub fn keep() {}\n",
		"src/skip.rs": "pub fn dropped() {}\n",
		"src/gen.rs":  "pub fn generated() {}\n",
	})
	s := newServer(t, []string{"skip"}, root)

	out := resultOf(t, postTool(t, s, "/tool/list_all", `{"blacklist": ["gen"]}`))
	if !strings.Contains(out, "keep") {
		t.Errorf("result missing keep:\n%s", out)
	}
	if strings.Contains(out, "dropped") || strings.Contains(out, "generated") {
		t.Errorf("blacklisted items leaked:\n%s", out)
	}
}

func TestMetricsExposed(t *testing.T) {
	t.Parallel()

	s := fixtureServer(t)
	resultOf(t, postTool(t, s, "/tool/list_all", `{}`))

	w := get(t, s, "/metrics")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, `morpho_agent_requests_total{status="ok",tool="list_all"} 1`) {
		t.Errorf("metrics missing list_all counter:\n%s", body)
	}
	if !strings.Contains(body, "morpho_agent_request_duration_seconds") {
		t.Errorf("metrics missing duration histogram:\n%s", body)
	}
}

func TestRequestIDHeader(t *testing.T) {
	t.Parallel()

	w := get(t, fixtureServer(t), "/healthz")
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header not set")
	}
}
