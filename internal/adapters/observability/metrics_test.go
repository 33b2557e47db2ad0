package observability_test

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"staybook/internal/adapters/observability"
)

func TestMetricsRegistryAndHandler(t *testing.T) {
	reg := observability.InitRegistry()

	// record samples so counters are non-zero
	observability.ObserveHTTP("/test", "GET", 200, 12*time.Millisecond)
	observability.ObserveBooking("create", "ok")

	mh := observability.MetricsHandler(reg)
	req := httptest.NewRequest("GET", "/metrics", nil)
	rr := httptest.NewRecorder()
	mh.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	out := string(body)
	if !strings.Contains(out, "staybook_http_requests_total") {
		t.Fatalf("expected staybook_http_requests_total in output")
	}
	if !strings.Contains(out, "staybook_booking_events_total") {
		t.Fatalf("expected staybook_booking_events_total in output")
	}
}

// The standalone listener must expose the same registry the application
// collectors are registered into, not the default one.
func TestServeExposesCollectors(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("reserve port: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	observability.ObserveCache("hotel", "hit")
	observability.Serve(addr, observability.InitRegistry())

	var body string
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		res, err := http.Get(fmt.Sprintf("http://%s/metrics", addr))
		if err != nil {
			time.Sleep(20 * time.Millisecond)
			continue
		}
		b, _ := io.ReadAll(res.Body)
		res.Body.Close()
		if res.StatusCode != http.StatusOK {
			t.Fatalf("metrics status: %d", res.StatusCode)
		}
		body = string(b)
		break
	}
	if !strings.Contains(body, "staybook_cache_events_total") {
		t.Fatalf("expected staybook_cache_events_total from standalone listener, got: %.200s", body)
	}

	// empty addr keeps the listener disabled
	observability.Serve("", observability.InitRegistry())
}
