package main

import "time"

// Runner owns the per-run state: the seeded random source, the pool of
// previously minted root identifiers, and the bounded iteration loop. Each
// iteration picks a scenario, dispatches it, maybe emits a continuation
// request, then waits out the pacing delay.
type Runner struct {
	count        int
	weights      Weights
	continuation float64
	rng          Rng
	disp         *Dispatcher
	pacer        *Pacer
	rep          Reporter
	log          Logger
	roots        rootPool
}

func NewRunner(count int, weights Weights, continuation float64, rng Rng, disp *Dispatcher, pacer *Pacer, rep Reporter, log Logger) *Runner {
	return &Runner{
		count:        count,
		weights:      weights,
		continuation: continuation,
		rng:          rng,
		disp:         disp,
		pacer:        pacer,
		rep:          rep,
		log:          log,
	}
}

// Run executes up to count top-level iterations, returning how many were
// attempted. Closing stop ends the run early between iterations; per-request
// failures never do.
func (r *Runner) Run(stop chan struct{}) int {
	iterations := 0
	for i := 0; i < r.count; i++ {
		select {
		case <-stop:
			r.log.Warn("stopping after %d iterations\n", iterations)
			r.rep.Done(iterations)
			return iterations
		default:
		}

		scenario := ChooseScenario(r.rng, r.weights)
		r.log.Debug("iteration %d: %s (%d roots seen)\n", i, scenario, r.roots.len())
		r.disp.Dispatch(scenario, &r.roots)

		if r.rng.Chance(r.continuation) {
			r.disp.Continuation(&r.roots)
		}
		iterations++

		if delay := r.pacer.Next(scenario); delay > 0 {
			select {
			case <-stop:
			case <-time.After(delay):
			}
		}
	}
	r.rep.Done(iterations)
	return iterations
}
