package middleware

import (
	"testing"
	"time"

	"github.com/use-agent/scout/config"
)

func newTestAdmission(perMinute int, cooldown time.Duration) (*Admission, *time.Time) {
	a := NewAdmission(config.AdmissionConfig{PerMinute: perMinute, Cooldown: cooldown})
	clock := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return clock }
	return a, &clock
}

func TestAdmissionWindow(t *testing.T) {
	a, clock := newTestAdmission(3, time.Minute)

	for i := 0; i < 3; i++ {
		if _, ok := a.Allow("client"); !ok {
			t.Fatalf("request %d refused inside budget", i+1)
		}
		*clock = clock.Add(time.Second)
	}

	retryAfter, ok := a.Allow("client")
	if ok {
		t.Fatal("fourth request within a minute must be refused")
	}
	if retryAfter != time.Minute {
		t.Errorf("retryAfter = %v, want the full cooldown", retryAfter)
	}
}

func TestAdmissionCooldownHolds(t *testing.T) {
	a, clock := newTestAdmission(1, time.Minute)

	a.Allow("client")
	if _, ok := a.Allow("client"); ok {
		t.Fatal("second request must trigger cooldown")
	}

	// Still refused mid-cooldown even though the window itself expired.
	*clock = clock.Add(59 * time.Second)
	if _, ok := a.Allow("client"); ok {
		t.Fatal("request during cooldown must be refused")
	}

	*clock = clock.Add(2 * time.Second)
	if _, ok := a.Allow("client"); !ok {
		t.Fatal("request after cooldown must pass")
	}
}

func TestAdmissionSlidingWindowExpires(t *testing.T) {
	a, clock := newTestAdmission(2, time.Minute)

	a.Allow("client")
	a.Allow("client")

	// Both admissions age out of the one-minute window.
	*clock = clock.Add(61 * time.Second)
	if _, ok := a.Allow("client"); !ok {
		t.Fatal("request after window expiry must pass")
	}
}

func TestAdmissionIsolatesClients(t *testing.T) {
	a, _ := newTestAdmission(1, time.Minute)

	a.Allow("alice")
	if _, ok := a.Allow("alice"); ok {
		t.Fatal("alice should be in cooldown")
	}
	if _, ok := a.Allow("bob"); !ok {
		t.Fatal("bob must not share alice's window")
	}
}
