package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func TestFrameClockHoldsValueWithinInterval(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	fc := NewFrameClockWithSource(clock.Now)

	for i := 0; i < 30; i++ {
		clock.Advance(10 * time.Millisecond)
		require.Zero(t, fc.Tick())
	}

	require.Equal(t, 30, fc.FrameCount())
	require.Zero(t, fc.FPS())
}

func TestFrameClockRefreshesAfterInterval(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	fc := NewFrameClockWithSource(clock.Now)

	for i := 0; i < 59; i++ {
		clock.Advance(16 * time.Millisecond)
		fc.Tick()
	}
	require.Zero(t, fc.FPS())

	// 60th frame lands at 1.25s
	clock.Advance(306 * time.Millisecond)
	fps := fc.Tick()

	require.InDelta(t, 60/1.25, fps, 1e-9)
	require.Equal(t, fps, fc.FPS())
	require.Zero(t, fc.FrameCount())

	// the next frames keep the smoothed value
	clock.Advance(16 * time.Millisecond)
	require.Equal(t, fps, fc.Tick())
	require.Equal(t, 1, fc.FrameCount())
}

func TestFrameClockExactInterval(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	fc := NewFrameClockWithSource(clock.Now)

	clock.Advance(FPSInterval)

	require.InDelta(t, 1.0, fc.Tick(), 1e-9)
}
