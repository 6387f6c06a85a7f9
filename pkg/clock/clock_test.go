package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRealClock_Now(t *testing.T) {
	before := time.Now()
	got := RealClock{}.Now()
	after := time.Now()

	assert.False(t, got.Before(before))
	assert.False(t, got.After(after))
}

func TestFixedClock_Now(t *testing.T) {
	fixed := time.Date(2026, 11, 6, 10, 30, 0, 0, time.UTC)
	c := NewFixed(fixed)

	assert.Equal(t, fixed, c.Now())
	assert.Equal(t, c.Now(), c.Now())
}

func TestTicking_AdvancesPerCall(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := Ticking(start, 250*time.Millisecond)

	assert.Equal(t, start, c.Now())
	assert.Equal(t, start.Add(250*time.Millisecond), c.Now())
	assert.Equal(t, start.Add(500*time.Millisecond), c.Now())
}

func TestFunc_ImplementsClock(t *testing.T) {
	want := time.Unix(1700000000, 0)
	var c Clock = Func(func() time.Time { return want })
	assert.Equal(t, want, c.Now())
}
