package core

import "time"

// FPSInterval is how often the smoothed frame rate is recomputed
const FPSInterval = time.Second

// FrameClock counts frames and refreshes the frame rate once per interval.
// Between refreshes FPS keeps its previous value.
type FrameClock struct {
	frameCount    int
	lastFPSUpdate time.Time
	fps           float64

	now func() time.Time
}

// NewFrameClock starts a clock on the wall clock
func NewFrameClock() *FrameClock {
	return NewFrameClockWithSource(time.Now)
}

// NewFrameClockWithSource starts a clock reading time from now
func NewFrameClockWithSource(now func() time.Time) *FrameClock {
	return &FrameClock{
		lastFPSUpdate: now(),
		now:           now,
	}
}

// Tick counts one rendered frame and returns the current smoothed rate
func (c *FrameClock) Tick() float64 {
	c.frameCount++

	current := c.now()
	elapsed := current.Sub(c.lastFPSUpdate)
	if elapsed >= FPSInterval {
		c.fps = float64(c.frameCount) / elapsed.Seconds()
		c.frameCount = 0
		c.lastFPSUpdate = current
	}

	return c.fps
}

// FPS returns the last computed frame rate
func (c *FrameClock) FPS() float64 {
	return c.fps
}

// FrameCount returns the frames counted since the last refresh
func (c *FrameClock) FrameCount() int {
	return c.frameCount
}
