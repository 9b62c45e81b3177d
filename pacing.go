package main

import "time"

// Pacer spaces iterations out so generated load looks like organic traffic
// instead of a tight loop. It is stateless; each delay is a fresh draw.
type Pacer struct {
	base time.Duration
	rng  Rng
}

func NewPacer(base time.Duration, rng Rng) *Pacer {
	return &Pacer{base: base, rng: rng}
}

// Next returns the delay to take before the following iteration: a uniform
// draw from [0.5x, 1.5x] the base delay. A burst gets an extra 1x-2x cooldown
// on top so the spike visibly separates from baseline traffic.
func (p *Pacer) Next(after Scenario) time.Duration {
	if p.base <= 0 {
		return 0
	}
	d := p.rng.Duration(p.base/2, p.base+p.base/2)
	if after == ScenarioBurst {
		d += p.rng.Duration(p.base, 2*p.base)
	}
	return d
}
