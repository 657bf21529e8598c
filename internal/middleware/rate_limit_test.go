package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func TestIPRateLimiter(t *testing.T) {
	rl := NewIPRateLimiter(0.001, 2)
	if !rl.Allow("10.0.0.1") || !rl.Allow("10.0.0.1") {
		t.Fatal("burst not honoured")
	}
	if rl.Allow("10.0.0.1") {
		t.Fatal("third request allowed past the burst")
	}
	if !rl.Allow("10.0.0.2") {
		t.Fatal("buckets are shared between addresses")
	}

	time.Sleep(time.Millisecond)
	rl.Cleanup(time.Nanosecond)
	if !rl.Allow("10.0.0.1") {
		t.Fatal("idle visitor not forgotten")
	}
}

func TestRateLimitMiddlewareSkipsReads(t *testing.T) {
	rl := NewIPRateLimiter(0.001, 1)
	e := echo.New()
	h := RateLimitMiddleware(rl)(func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	call := func(method string) error {
		req := httptest.NewRequest(method, "/", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		return h(e.NewContext(req, httptest.NewRecorder()))
	}

	for i := 0; i < 5; i++ {
		if err := call(http.MethodGet); err != nil {
			t.Fatalf("GET limited: %v", err)
		}
	}
	if err := call(http.MethodPost); err != nil {
		t.Fatalf("first POST limited: %v", err)
	}
	err := call(http.MethodPost)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusTooManyRequests {
		t.Fatalf("second POST err = %v, want 429", err)
	}
}
