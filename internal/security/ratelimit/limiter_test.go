package ratelimit

import (
	"testing"
	"time"
)

func TestAllowWithinLimit(t *testing.T) {
	l := NewLimiter(3, time.Minute)
	defer l.Stop()

	for i := 0; i < 3; i++ {
		if !l.Allow("user-1") {
			t.Fatalf("request %d should be allowed", i)
		}
	}
	if l.Allow("user-1") {
		t.Fatalf("fourth request should be rejected")
	}

	// Another user has an independent bucket.
	if !l.Allow("user-2") {
		t.Fatalf("other user should be allowed")
	}
}

func TestAllowEmptyIdentifier(t *testing.T) {
	l := NewLimiter(1, time.Minute)
	defer l.Stop()

	// Unauthenticated requests are not throttled here.
	for i := 0; i < 5; i++ {
		if !l.Allow("") {
			t.Fatalf("empty identifier must always pass")
		}
	}
}

func TestWindowSlides(t *testing.T) {
	l := NewLimiter(1, 20*time.Millisecond)
	defer l.Stop()

	if !l.Allow("user-1") {
		t.Fatalf("first request should be allowed")
	}
	if l.Allow("user-1") {
		t.Fatalf("second request should be rejected")
	}

	time.Sleep(30 * time.Millisecond)
	if !l.Allow("user-1") {
		t.Fatalf("request after window should be allowed")
	}
}

func TestAllowStrictSeparateBucket(t *testing.T) {
	l := NewLimiter(100, time.Minute)
	defer l.Stop()

	if !l.AllowStrict("1.2.3.4", 1, time.Minute) {
		t.Fatalf("first strict request should be allowed")
	}
	if l.AllowStrict("1.2.3.4", 1, time.Minute) {
		t.Fatalf("second strict request should be rejected")
	}
	// The regular bucket is untouched.
	if !l.Allow("1.2.3.4") {
		t.Fatalf("regular limit should be independent")
	}
}
