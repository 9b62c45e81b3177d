package main

import (
	"fmt"
	"math"
)

// A Scenario names one traffic pattern with its own parameter distribution.
// The scenario decides which endpoints get hit, what failure and latency
// parameters ride along, and whether follow-up or concurrent requests are
// issued.
type Scenario string

const (
	ScenarioStandard Scenario = "standard"
	ScenarioError    Scenario = "error"
	ScenarioSlow     Scenario = "slow"
	ScenarioTrace    Scenario = "trace"
	ScenarioBurst    Scenario = "burst"
)

// scenarioOrder fixes the order a weighted draw walks the table, so a given
// seed always resolves to the same scenario.
var scenarioOrder = []Scenario{
	ScenarioStandard,
	ScenarioError,
	ScenarioSlow,
	ScenarioTrace,
	ScenarioBurst,
}

// Weights is the share of iterations each scenario gets. The defaults skew
// toward standard and error traffic so the telemetry stores downstream see a
// realistic mix dominated by plain successes and failures, while the slow and
// multi-hop paths still fire often enough to populate dashboards.
type Weights struct {
	Standard float64 `yaml:"standard"`
	Error    float64 `yaml:"error"`
	Slow     float64 `yaml:"slow"`
	Trace    float64 `yaml:"trace"`
	Burst    float64 `yaml:"burst"`
}

func (w Weights) of(s Scenario) float64 {
	switch s {
	case ScenarioStandard:
		return w.Standard
	case ScenarioError:
		return w.Error
	case ScenarioSlow:
		return w.Slow
	case ScenarioTrace:
		return w.Trace
	case ScenarioBurst:
		return w.Burst
	}
	return 0
}

// Validate rejects weight tables that don't describe a probability
// distribution. This runs once at startup; a bad table is not recoverable
// mid-run.
func (w Weights) Validate() error {
	sum := 0.0
	for _, s := range scenarioOrder {
		v := w.of(s)
		if v < 0 {
			return fmt.Errorf("scenario weight %s is negative (%v)", s, v)
		}
		sum += v
	}
	if math.Abs(sum-1.0) > 1e-6 {
		return fmt.Errorf("scenario weights must sum to 1.0, got %v", sum)
	}
	return nil
}

// ChooseScenario makes one weighted draw over the scenario table. It is a
// pure function of the random source and the weights.
func ChooseScenario(rng Rng, w Weights) Scenario {
	roll := rng.Float64()
	for _, s := range scenarioOrder {
		roll -= w.of(s)
		if roll < 0 {
			return s
		}
	}
	return scenarioOrder[len(scenarioOrder)-1]
}

// errorProfile pairs an induced failure probability with a server-side sleep
// the error-prone endpoints are asked to take before (maybe) failing.
type errorProfile struct {
	Probability float64
	SleepSec    float64
}

// Hand-tuned defaults; the exact values only shape the telemetry mix.
var errorProfiles = []errorProfile{
	{Probability: 1.0, SleepSec: 0},
	{Probability: 0.9, SleepSec: 1.5},
	{Probability: 0.7, SleepSec: 0.2},
	{Probability: 0.95, SleepSec: 2.5},
	{Probability: 0.85, SleepSec: 1.8},
}

// latencyTier pairs an injected latency band with the failure probability the
// slow endpoint should apply at that band. Slower tiers fail more.
type latencyTier struct {
	MinSec, MaxSec   float64
	ErrorProbability float64
}

var latencyTiers = []latencyTier{
	{MinSec: 0.5, MaxSec: 1.0, ErrorProbability: 0.05},
	{MinSec: 1.0, MaxSec: 2.0, ErrorProbability: 0.1},
	{MinSec: 2.0, MaxSec: 3.0, ErrorProbability: 0.2},
	{MinSec: 3.0, MaxSec: 4.0, ErrorProbability: 0.4},
}

// errorTypes are free-form labels attached to induced failures so they can be
// told apart in the log store.
var errorTypes = []string{
	"database_timeout",
	"upstream_unavailable",
	"validation_failed",
	"quota_exceeded",
	"internal",
}
