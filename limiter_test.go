package portfolio

import (
	"testing"
	"time"
)

func TestLoginLimiterBlocksAfterMax(t *testing.T) {
	l := NewLoginLimiter(3, time.Minute)
	for i := 0; i < 3; i++ {
		if !l.Check("1.2.3.4") {
			t.Fatalf("attempt %d blocked early", i)
		}
		l.Record("1.2.3.4")
	}
	if l.Check("1.2.3.4") {
		t.Error("fourth attempt should be blocked")
	}
	if !l.Check("5.6.7.8") {
		t.Error("other IPs must not be affected")
	}
}

func TestLoginLimiterWindowExpires(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewLoginLimiter(2, time.Minute)
	l.now = func() time.Time { return now }

	l.Record("ip")
	l.Record("ip")
	if l.Check("ip") {
		t.Fatal("should be blocked inside the window")
	}
	now = now.Add(61 * time.Second)
	if !l.Check("ip") {
		t.Error("should be allowed once the window passed")
	}
	if _, ok := l.attempts["ip"]; ok {
		t.Error("expired entries should be dropped")
	}
}

func TestLoginLimiterReset(t *testing.T) {
	l := NewLoginLimiter(1, time.Minute)
	l.Record("ip")
	if l.Check("ip") {
		t.Fatal("should be blocked")
	}
	l.Reset("ip")
	if !l.Check("ip") {
		t.Error("Reset should clear failures")
	}
}

func TestLoginLimiterSweepsIdleIPs(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewLoginLimiter(5, time.Minute)
	l.now = func() time.Time { return now }

	l.Record("a")
	l.Record("b")
	now = now.Add(2 * time.Minute)
	l.Check("c")
	if len(l.attempts) != 0 {
		t.Errorf("attempts = %v, want empty after sweep", l.attempts)
	}
}
