package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/geocoder89/siteis/internal/domain/user"
	"github.com/geocoder89/siteis/internal/repo/jsonfile"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestLogger_AddsTraceIDsFromContext(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerTo(&buf, "prod")

	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	log.InfoContext(ctx, "with span")
	span.End()

	log.InfoContext(context.Background(), "without span")
	log.Debug("hidden in prod")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %s", len(lines), buf.String())
	}

	var first, second map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if first["trace_id"] != span.SpanContext().TraceID().String() {
		t.Fatalf("trace_id missing or wrong: %v", first)
	}
	if _, ok := second["trace_id"]; ok {
		t.Fatalf("unexpected trace_id without span: %v", second)
	}
	if first["service"] != "siteis" {
		t.Fatalf("service attribute missing: %v", first)
	}
}

func TestProm_ObserveStoreClassifiesErrors(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPromWith(reg, reg)

	_ = p.ObserveStore("users.create", func() error { return nil })
	_ = p.ObserveStore("users.create", func() error { return user.ErrEmailAlreadyUsed })
	_ = p.ObserveStore("users.create", func() error { return jsonfile.ErrCorrupt })
	err := p.ObserveStore("users.create", func() error { return errors.New("disk full") })

	if err == nil || err.Error() != "disk full" {
		t.Fatalf("error should pass through, got %v", err)
	}

	for class, want := range map[string]float64{"conflict": 1, "corrupt": 1, "io": 1} {
		if got := testutil.ToFloat64(p.StoreErrorsTotal.WithLabelValues("users.create", class)); got != want {
			t.Fatalf("class %s: got %v want %v", class, got, want)
		}
	}
}

func TestProm_GinMiddlewareAndHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPromWith(reg, reg)

	r := gin.New()
	r.Use(p.GinHandleMiddleware())
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", gin.WrapH(p.Handler()))

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere.css", nil))

	if got := testutil.ToFloat64(p.RequestsTotal.WithLabelValues("GET", "/health", "200")); got != 3 {
		t.Fatalf("health count: got %v want 3", got)
	}
	if got := testutil.ToFloat64(p.RequestsTotal.WithLabelValues("GET", "static", "404")); got != 1 {
		t.Fatalf("static count: got %v want 1", got)
	}

	p.ObserveAuth("login", "success")
	p.ObserveGate("redirect")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := w.Body.String()
	for _, want := range []string{
		"siteis_http_requests_total",
		`siteis_auth_attempts_total{action="login",result="success"} 1`,
		`siteis_session_gate_decisions_total{decision="redirect"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics output missing %q:\n%s", want, body)
		}
	}
}

func TestInitTracer_DisabledWithoutEndpoint(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), TracerConfig{ServiceName: "siteis"})
	if err != nil {
		t.Fatalf("InitTracer: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}
