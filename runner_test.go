package main

import (
	"bytes"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRunner(t *testing.T, seed string, count int, w Weights, continuation float64, rep Reporter) *Runner {
	t.Helper()
	srv, _ := newStubTarget(t)
	rng := NewRng(seed)
	log := NewLogger(0)
	disp := NewDispatcher(srv.URL, rng, log, rep)
	pacer := NewPacer(0, rng)
	return NewRunner(count, w, continuation, rng, disp, pacer, rep, log)
}

func TestRunnerIterationCount(t *testing.T) {
	// all standard, no continuations: one attempt per iteration
	w := Weights{Standard: 1.0}
	rep := &recordingReporter{}
	r := newTestRunner(t, "count", 25, w, 0, rep)

	got := r.Run(make(chan struct{}))
	require.Equal(t, 25, got)
	assert.Equal(t, 25, rep.iterations)
	assert.Len(t, rep.attempts, 25)
}

func TestRunnerStopEndsEarly(t *testing.T) {
	w := Weights{Standard: 1.0}
	rep := &recordingReporter{}
	r := newTestRunner(t, "stop", 1000, w, 0, rep)

	stop := make(chan struct{})
	close(stop)
	got := r.Run(stop)
	assert.Equal(t, 0, got)
	assert.Equal(t, 0, rep.iterations)
}

func TestRunnerContinuationNeedsRoots(t *testing.T) {
	// continuation always fires, but only trace/burst iterations mint roots;
	// an all-standard run never has one to reuse
	w := Weights{Standard: 1.0}
	rep := &recordingReporter{}
	r := newTestRunner(t, "noroots", 20, w, 1.0, rep)

	r.Run(make(chan struct{}))
	for _, a := range rep.attempts {
		require.NotEqual(t, scenarioContinuation, a.Scenario)
	}
}

func TestRunnerContinuationAfterTrace(t *testing.T) {
	// all trace iterations with continuation forced on: every iteration after
	// the first root exists must emit a continuation attempt
	w := Weights{Trace: 1.0}
	rep := &recordingReporter{}
	r := newTestRunner(t, "roots", 3, w, 1.0, rep)

	r.Run(make(chan struct{}))
	var continuations int
	for _, a := range rep.attempts {
		if a.Scenario == scenarioContinuation {
			continuations++
		}
	}
	assert.Equal(t, 3, continuations)
}

func TestRunnerEndToEndErrorScenario(t *testing.T) {
	var buf bytes.Buffer
	rep := NewPrintReporter(&buf)
	r := newTestRunner(t, "e2e-error", 1, Weights{Error: 1.0}, 0, rep)

	got := r.Run(make(chan struct{}))
	require.Equal(t, 1, got)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2, "one attempt line plus the summary")
	assert.True(t, strings.HasPrefix(lines[0], "error "), "line: %s", lines[0])
	assert.Regexp(t, `status=(4|5)\d\d`, lines[0])
	assert.Contains(t, lines[1], "done generating traffic: 1 iterations")
}

func TestRunnerEndToEndBurstScenario(t *testing.T) {
	var buf bytes.Buffer
	rep := NewPrintReporter(&buf)
	r := newTestRunner(t, "e2e-burst", 1, Weights{Burst: 1.0}, 0, rep)

	got := r.Run(make(chan struct{}))
	require.Equal(t, 1, got)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.True(t, strings.HasPrefix(lines[0], "burst "), "burst banner first, got: %s", lines[0])

	// banner format: "burst <group-id> starting <n> concurrent requests"
	fields := strings.Fields(lines[0])
	require.Len(t, fields, 6)
	groupID := fields[1]
	size, err := strconv.Atoi(fields[3])
	require.NoError(t, err)

	members := lines[1 : len(lines)-1]
	require.Len(t, members, size)
	require.GreaterOrEqual(t, len(members), 5)
	require.LessOrEqual(t, len(members), 10)
	for _, line := range members {
		assert.Contains(t, line, "burst="+groupID)
	}
}

func TestRunnerDeterministicAcrossRuns(t *testing.T) {
	w := Weights{Standard: 0.5, Error: 0.3, Slow: 0.1, Trace: 0.1}

	run := func() []Attempt {
		rep := &recordingReporter{}
		r := newTestRunner(t, "repeatable", 15, w, 0.15, rep)
		r.Run(make(chan struct{}))
		return rep.attempts
	}

	first := run()
	second := run()
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Scenario, second[i].Scenario, "attempt %d", i)
		assert.Equal(t, first[i].Method, second[i].Method, "attempt %d", i)
		assert.Equal(t, first[i].Path, second[i].Path, "attempt %d", i)
		assert.Equal(t, first[i].RequestID, second[i].RequestID, "attempt %d", i)
	}
}
