package status

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/danmuck/edgerealm/internal/observability"
	"github.com/danmuck/edgerealm/internal/testutil/testlog"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func get(t *testing.T, s *Server, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	s.HTTPRouter().ServeHTTP(rr, req)
	if !strings.HasPrefix(rr.Header().Get("Content-Type"), "application/json") {
		return rr, nil
	}
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode %s body: %v", path, err)
	}
	return rr, body
}

func TestHealthAndReadyReportRealm(t *testing.T) {
	testlog.Start(t)

	s := New("realm-a", "127.0.0.1:0", nil)
	if s.Kind() != "realm" || s.NodeID() != "realm-a" {
		t.Fatalf("unexpected node identity %s/%s", s.Kind(), s.NodeID())
	}

	for _, path := range []string{"/health", "/ready"} {
		rr, body := get(t, s, path)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d body=%s", path, rr.Code, rr.Body.String())
		}
		if body["realm"] != "realm-a" || body["version"] != Version {
			t.Fatalf("%s: unexpected body %#v", path, body)
		}
	}
}

func TestHealthReportsInstance(t *testing.T) {
	testlog.Start(t)

	a := New("realm-a", "127.0.0.1:0", nil)
	b := New("realm-a", "127.0.0.1:0", nil)
	if a.Instance == "" || a.Instance == b.Instance {
		t.Fatalf("expected distinct instances, got %q and %q", a.Instance, b.Instance)
	}
	_, body := get(t, a, "/health")
	if body["instance"] != a.Instance {
		t.Fatalf("unexpected instance %#v", body["instance"])
	}
}

func TestReadyFollowsReadyFunc(t *testing.T) {
	testlog.Start(t)

	var down atomic.Bool
	s := New("realm-b", "127.0.0.1:0", func() bool { return !down.Load() })

	down.Store(true)
	rr, body := get(t, s, "/ready")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
	if body["ready"] != false {
		t.Fatalf("expected ready=false, got %#v", body)
	}
}

func TestMetricsExposeRealmCounters(t *testing.T) {
	testlog.Start(t)

	s := New("realm-c", "127.0.0.1:0", nil)
	observability.RecordDispatch("realm-c", nil)
	get(t, s, "/health")

	rr, _ := get(t, s, "/metrics")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	text := rr.Body.String()
	for _, name := range []string{"edgerealm_realm_dispatch_total", "edgerealm_http_requests_total"} {
		if !strings.Contains(text, name) {
			t.Fatalf("metrics output missing %s", name)
		}
	}
}

func TestServeListenerStopsOnCancel(t *testing.T) {
	testlog.Start(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	s := New("realm-d", ln.Addr().String(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ServeListener(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	if err != nil {
		t.Fatalf("get health: %v", err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("status server did not stop")
	}
}

func TestNewWarnsOnRejectedTrustedProxies(t *testing.T) {
	testlog.Start(t)

	prevProxies, prevLogger := trustedProxies, log.Logger
	defer func() { trustedProxies, log.Logger = prevProxies, prevLogger }()

	var buf bytes.Buffer
	log.Logger = zerolog.New(&buf)
	trustedProxies = []string{"not-an-ip"}

	s := New("realm-e", "127.0.0.1:0", nil)
	if !strings.Contains(buf.String(), "status trusted proxies rejected") {
		t.Fatalf("expected trusted proxy warning, got %s", buf.String())
	}
	if rr, _ := get(t, s, "/health"); rr.Code != http.StatusOK {
		t.Fatalf("expected router to keep serving, got %d", rr.Code)
	}
}
