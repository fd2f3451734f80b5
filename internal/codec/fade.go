package codec

import "math"

// FadeParams is an on-device fade descriptor: ramp to Level over Interval
// (units of 10ms) hundredths-of-a-second ticks, Step PWM units per tick.
type FadeParams struct {
	Level    int
	Interval int
	Step     int
}

// PlanFade converts a human fade intent (from level s to level t over
// durationMs milliseconds) into on-device (interval, step) parameters such
// that |t-s|*10/step ≈ durationMs, subject to 1 ≤ interval ≤ 255 and
// 1 ≤ step ≤ 127.
func PlanFade(s, t, durationMs int) (interval, step int) {
	delta := t - s
	if delta < 0 {
		delta = -delta
	}
	if delta == 0 {
		return 1, 1
	}

	u := float64(durationMs) / 10.0 // hundredths of a second
	step = 1
	interval = roundHalfAwayFromZero(u / float64(delta))

	if interval > 255 {
		interval = 255
		// step stays 1: a longer fade than requested is accepted.
	} else if interval < 1 {
		interval = 1
		if u <= 0 {
			step = 127
		} else {
			step = int(math.Ceil(float64(delta) / u))
		}
		if step > 127 {
			step = 127
		}
		if step < 1 {
			step = 1
		}
	}

	if interval < 1 {
		interval = 1
	}
	if interval > 255 {
		interval = 255
	}
	if step < 1 {
		step = 1
	}
	if step > 127 {
		step = 127
	}
	return interval, step
}

// PlanFadeParams is PlanFade wrapped into a FadeParams for a single target
// level.
func PlanFadeParams(s, t, durationMs int) FadeParams {
	interval, step := PlanFade(s, t, durationMs)
	return FadeParams{Level: t, Interval: interval, Step: step}
}

// PlanRGBFade plans each channel independently from its own source level to
// its own target level, as required for RGB_FADE.
func PlanRGBFade(sr, sg, sb, tr, tg, tb, durationMs int) (r, g, b FadeParams) {
	r = PlanFadeParams(sr, tr, durationMs)
	g = PlanFadeParams(sg, tg, durationMs)
	b = PlanFadeParams(sb, tb, durationMs)
	return
}

func roundHalfAwayFromZero(v float64) int {
	if v >= 0 {
		return int(v + 0.5)
	}
	return -int(-v + 0.5)
}
