package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func TestClientLimiterPerClientAndSweep(t *testing.T) {
	l := newClientLimiter(rate.Every(time.Minute), 1, time.Minute)
	now := time.Now()

	if !l.allow("10.0.0.1", now) {
		t.Fatalf("first attempt must pass")
	}
	if l.allow("10.0.0.1", now) {
		t.Fatalf("second attempt must be limited")
	}
	if !l.allow("10.0.0.2", now) {
		t.Fatalf("other clients are not limited")
	}

	later := now.Add(3 * time.Minute)
	l.allow("10.0.0.3", later)
	if _, ok := l.clients["10.0.0.1"]; ok {
		t.Fatalf("idle client should be swept")
	}
}

func TestBearerToken(t *testing.T) {
	cases := map[string]bool{
		"Bearer abc": true,
		"bearer abc": true,
		"Basic abc":  false,
		"Bearer ":    false,
		"":           false,
	}
	for header, want := range cases {
		r := httptest.NewRequest(http.MethodPost, "/", nil)
		if header != "" {
			r.Header.Set("Authorization", header)
		}
		if _, ok := bearerToken(r); ok != want {
			t.Fatalf("bearerToken(%q) = %v, want %v", header, ok, want)
		}
	}
}

func TestClientHost(t *testing.T) {
	if got := clientHost("192.0.2.1:5555"); got != "192.0.2.1" {
		t.Fatalf("unexpected host %q", got)
	}
	if got := clientHost("192.0.2.1"); got != "192.0.2.1" {
		t.Fatalf("unexpected host %q", got)
	}
}
