package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/geocoder89/siteis/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func newStaticRouter(root string) *gin.Engine {
	r := gin.New()
	r.NoRoute(handlers.NewStaticHandler(root, nil).Serve)
	return r
}

func get(r http.Handler, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestStatic_ServesFilesAndFallback(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "index.html"), "<html>home</html>")
	writeFile(t, filepath.Join(root, "css", "site.css"), "body{}")
	writeFile(t, filepath.Join(root, "docs", "index.html"), "<html>docs</html>")
	writeFile(t, filepath.Join(root, "notes"), "%PDF-1.4 fake")

	r := newStaticRouter(root)

	tests := []struct {
		path     string
		wantBody string
		wantType string
	}{
		{"/css/site.css", "body{}", "text/css"},
		{"/", "<html>home</html>", "text/html"},
		{"/docs", "<html>docs</html>", "text/html"},
		{"/dashboard", "<html>home</html>", "text/html"},
		{"/deep/client/route", "<html>home</html>", "text/html"},
		{"/../../etc/passwd", "<html>home</html>", "text/html"},
		{"/notes", "%PDF-1.4 fake", "application/pdf"},
	}

	for _, tt := range tests {
		w := get(r, http.MethodGet, tt.path)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: got %d", tt.path, w.Code)
		}
		if w.Body.String() != tt.wantBody {
			t.Fatalf("%s: got body %q", tt.path, w.Body.String())
		}
		if !strings.HasPrefix(w.Header().Get("Content-Type"), tt.wantType) {
			t.Fatalf("%s: got content type %q", tt.path, w.Header().Get("Content-Type"))
		}
	}
}

func TestStatic_ConditionalGet(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "app.js"), "console.log(1)")
	r := newStaticRouter(root)

	w := get(r, http.MethodGet, "/app.js")
	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatalf("missing ETag")
	}

	req := httptest.NewRequest(http.MethodGet, "/app.js", nil)
	req.Header.Set("If-None-Match", etag)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotModified {
		t.Fatalf("got %d, want 304", w.Code)
	}
}

func TestStatic_NotFoundWithoutIndex(t *testing.T) {
	r := newStaticRouter(t.TempDir())

	w := get(r, http.MethodGet, "/anything")
	if w.Code != http.StatusNotFound {
		t.Fatalf("got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"error"`) {
		t.Fatalf("expected JSON error body, got %s", w.Body.String())
	}
}

func TestStatic_OnlyGetAndHead(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "index.html"), "<html></html>")
	r := newStaticRouter(root)

	if w := get(r, http.MethodHead, "/"); w.Code != http.StatusOK {
		t.Fatalf("HEAD: got %d", w.Code)
	}
	if w := get(r, http.MethodPost, "/"); w.Code != http.StatusNotFound {
		t.Fatalf("POST: got %d", w.Code)
	}
}
