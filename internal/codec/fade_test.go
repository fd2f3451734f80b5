package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestPlanFadeZeroDelta(t *testing.T) {
	interval, step := PlanFade(128, 128, 2000)
	assert.Equal(t, 1, interval)
	assert.Equal(t, 1, step)
}

func TestPlanFadeWorkedExample(t *testing.T) {
	interval, step := PlanFade(0, 255, 500)
	assert.Equal(t, 1, interval)
	assert.Equal(t, 6, step)
}

func TestPlanFadeLongDurationClampsInterval(t *testing.T) {
	// A tiny delta over a very long duration wants an interval far beyond
	// 255; it clamps to 255 and keeps step at 1 rather than failing.
	interval, step := PlanFade(0, 1, 100000)
	assert.Equal(t, 255, interval)
	assert.Equal(t, 1, step)
}

func TestPlanFadeRangeProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.IntRange(0, 255).Draw(t, "s")
		target := rapid.IntRange(0, 255).Draw(t, "t")
		duration := rapid.IntRange(0, 120000).Draw(t, "duration")

		interval, step := PlanFade(s, target, duration)
		assert.GreaterOrEqual(t, interval, 1)
		assert.LessOrEqual(t, interval, 255)
		assert.GreaterOrEqual(t, step, 1)
		assert.LessOrEqual(t, step, 127)

		if s == target {
			assert.Equal(t, 1, interval)
			assert.Equal(t, 1, step)
		}
	})
}

func TestPlanRGBFadeIndependentChannels(t *testing.T) {
	r, g, b := PlanRGBFade(0, 255, 128, 255, 0, 128, 1000)
	assert.NotEqual(t, r, g)
	assert.Equal(t, 1, b.Interval)
	assert.Equal(t, 1, b.Step)
	assert.Equal(t, 255, r.Level)
	assert.Equal(t, 0, g.Level)
	assert.Equal(t, 128, b.Level)
}
