package mw

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/MrSnakeDoc/navspec/internal/logger"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func serve(h http.Handler, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func TestEnforceHost(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		host    string
		want    int
	}{
		{"passthrough", nil, "anything:1234", http.StatusOK},
		{"exact", []string{"dash.local"}, "dash.local", http.StatusOK},
		{"any port", []string{"dash.local"}, "dash.local:7777", http.StatusOK},
		{"case insensitive", []string{"Dash.Local"}, "DASH.local:7777", http.StatusOK},
		{"port pinned", []string{"dash.local:7777"}, "dash.local:8080", http.StatusForbidden},
		{"wildcard", []string{"*.example.com"}, "nav.example.com:443", http.StatusOK},
		{"wildcard needs subdomain", []string{"*.example.com"}, "example.com", http.StatusForbidden},
		{"other host", []string{"dash.local"}, "evil.local", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Host = tt.host
			rec := serve(EnforceHost(tt.allowed, logger.Nop())(okHandler), req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestAllowOnlyCIDRS(t *testing.T) {
	tests := []struct {
		name       string
		allowed    []string
		trustProxy bool
		remote     string
		xff        string
		want       int
	}{
		{"passthrough", nil, false, "203.0.113.9:1000", "", http.StatusOK},
		{"inside", []string{"10.0.0.0/8"}, false, "10.1.2.3:1000", "", http.StatusOK},
		{"outside", []string{"10.0.0.0/8"}, false, "192.168.1.1:1000", "", http.StatusForbidden},
		{"forwarded ignored", []string{"10.0.0.0/8"}, false, "192.168.1.1:1000", "10.1.2.3", http.StatusForbidden},
		{"forwarded trusted", []string{"10.0.0.0/8"}, true, "192.168.1.1:1000", "10.1.2.3", http.StatusOK},
		{"single ip", []string{"127.0.0.1"}, false, "127.0.0.1:5555", "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			rec := serve(AllowOnlyCIDRS(tt.allowed, tt.trustProxy, logger.Nop())(okHandler), req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestRateLimit(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	h := RateLimit(RateLimitConfig{Burst: 2, RefillPerIPPerMin: 60, Now: clock.Now})(okHandler)

	request := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = remote
		return serve(h, req)
	}

	for i, wantRemaining := range []string{"1", "0"} {
		rec := request("10.0.0.1:1000")
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d", i, rec.Code)
		}
		if got := rec.Header().Get("X-RateLimit-Remaining"); got != wantRemaining {
			t.Errorf("request %d: remaining = %q, want %q", i, got, wantRemaining)
		}
		if got := rec.Header().Get("X-RateLimit-Limit"); got != "2" {
			t.Errorf("request %d: limit = %q, want 2", i, got)
		}
	}

	rec := request("10.0.0.1:1000")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "1" {
		t.Errorf("Retry-After = %q, want 1", got)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q", got)
	}

	if rec := request("10.0.0.2:1000"); rec.Code != http.StatusOK {
		t.Errorf("other client: status = %d, want 200", rec.Code)
	}

	clock.Advance(time.Second)
	if rec := request("10.0.0.1:1000"); rec.Code != http.StatusOK {
		t.Errorf("after refill: status = %d, want 200", rec.Code)
	}
}

func TestRateLimitSweepsIdleClients(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := newClientLimiter(RateLimitConfig{Burst: 1, RefillPerIPPerMin: 1, IdleTTL: time.Minute, Now: clock.Now})

	l.take("a")
	l.take("b")
	clock.Advance(2 * time.Minute)
	l.take("c")

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.clients["a"]; ok {
		t.Error("idle client a still tracked")
	}
	if len(l.clients) != 1 {
		t.Errorf("clients = %d, want 1", len(l.clients))
	}
}

func TestRateLimitMaxEntries(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := newClientLimiter(RateLimitConfig{Burst: 1, MaxEntries: 2, IdleTTL: time.Second, SweepInterval: time.Hour, Now: clock.Now})

	l.take("a")
	l.take("b")
	clock.Advance(2 * time.Second)
	if d := l.take("c"); !d.allowed {
		t.Fatal("new client rejected")
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.clients) != 1 {
		t.Errorf("clients = %d, want early sweep down to 1", len(l.clients))
	}
}

func TestLogKeepsStatus(t *testing.T) {
	h := Log(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	if rec := serve(h, httptest.NewRequest(http.MethodGet, "/brew", nil)); rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want 418", rec.Code)
	}
}
