package handlers

import (
	"fmt"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func newTestLimiter() *rateLimiter {
	return &rateLimiter{
		attempts: make(map[string]*attemptData),
		blocked:  make(map[string]time.Time),
	}
}

func TestRateLimiter(t *testing.T) {
	rl := newTestLimiter()
	ip := "192.168.1.100"

	// Fresh IP is allowed
	if !rl.Allow(ip) {
		t.Error("Fresh IP should be allowed")
	}

	// Below the threshold stays allowed
	for i := 0; i < maxAttempts-1; i++ {
		rl.RecordFailure(ip)
	}
	if !rl.Allow(ip) {
		t.Error("IP below the threshold should be allowed")
	}

	// Hitting the threshold blocks
	rl.RecordFailure(ip)
	if rl.Allow(ip) {
		t.Error("IP at the threshold should be blocked")
	}

	// Other IPs are unaffected
	if !rl.Allow("192.168.1.101") {
		t.Error("A different IP should be allowed")
	}

	// Reset clears the block
	rl.Reset(ip)
	if !rl.Allow(ip) {
		t.Error("IP should be allowed after a reset")
	}
}

func TestRateLimiterExpiredBlock(t *testing.T) {
	rl := newTestLimiter()
	ip := "10.0.0.1"

	rl.blocked[ip] = time.Now().Add(-time.Minute)
	if !rl.Allow(ip) {
		t.Error("Expired block should be cleaned up and allowed")
	}
	if _, still := rl.blocked[ip]; still {
		t.Error("Expired block entry should be removed")
	}
}

func TestRateLimiterParallel(t *testing.T) {
	rl := newTestLimiter()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			ip := fmt.Sprintf("172.16.0.%d", n)
			for j := 0; j < maxAttempts; j++ {
				rl.Allow(ip)
				rl.RecordFailure(ip)
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < 20; i++ {
		ip := fmt.Sprintf("172.16.0.%d", i)
		if rl.Allow(ip) {
			t.Errorf("%s should be blocked after %d failures", ip, maxAttempts)
		}
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		remoteAddr string
		want       string
	}{
		{"192.0.2.1:1234", "192.0.2.1"},
		{"[::1]:8080", "::1"},
		{"10.0.0.5", "10.0.0.5"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = tt.remoteAddr
		if got := getClientIP(req); got != tt.want {
			t.Errorf("getClientIP(%q) = %q, want %q", tt.remoteAddr, got, tt.want)
		}
	}
}
