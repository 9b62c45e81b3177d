package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintReporterAttemptLine(t *testing.T) {
	var buf bytes.Buffer
	rep := NewPrintReporter(&buf)

	rep.Report(Attempt{
		Scenario:         ScenarioError,
		Method:           "GET",
		Path:             "/demo/error-prone",
		RequestID:        "req-1",
		Step:             -1,
		Seq:              -1,
		ErrorProbability: 0.9,
		SleepSec:         1.5,
		Timeout:          3 * time.Second,
		Status:           500,
		Elapsed:          12 * time.Millisecond,
	})

	line := buf.String()
	assert.Contains(t, line, "error GET /demo/error-prone")
	assert.Contains(t, line, "id=req-1")
	assert.Contains(t, line, "error_probability=0.90")
	assert.Contains(t, line, "sleep=1.50s")
	assert.Contains(t, line, "status=500")
}

func TestPrintReporterChainAndBurstFields(t *testing.T) {
	var buf bytes.Buffer
	rep := NewPrintReporter(&buf)

	rep.Report(Attempt{
		Scenario: ScenarioTrace, Method: "GET", Path: "/health",
		RequestID: "child-1", ParentID: "root-1", Step: 2, Seq: -1, Status: 200,
	})
	rep.Report(Attempt{
		Scenario: ScenarioBurst, Method: "GET", Path: "/demo/fast",
		RequestID: "m-3", BurstID: "grp-1", Seq: 3, Step: -1, Status: 200,
	})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "parent=root-1 step=2")
	assert.Contains(t, lines[1], "burst=grp-1 seq=3")
}

func TestPrintReporterFailureLine(t *testing.T) {
	var buf bytes.Buffer
	rep := NewPrintReporter(&buf)

	rep.Report(Attempt{
		Scenario: ScenarioStandard, Method: "GET", Path: "/health",
		RequestID: "req-1", Step: -1, Seq: -1,
		Err: "connection refused",
	})

	assert.Contains(t, buf.String(), `failed="connection refused"`)
	assert.NotContains(t, buf.String(), "status=")
}

func TestPrintReporterSummary(t *testing.T) {
	var buf bytes.Buffer
	rep := NewPrintReporter(&buf)

	rep.Report(Attempt{Scenario: ScenarioStandard, Status: 200, Step: -1, Seq: -1})
	rep.Report(Attempt{Scenario: ScenarioError, Status: 500, Step: -1, Seq: -1})
	rep.Report(Attempt{Scenario: ScenarioStandard, Err: "timeout", Step: -1, Seq: -1})
	rep.Done(3)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	last := lines[len(lines)-1]
	assert.Equal(t, "done generating traffic: 3 iterations, 3 requests, 1 failed, 1 non-2xx", last)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 50))
	long := strings.Repeat("x", 80)
	got := truncate(long, 50)
	assert.Len(t, got, 53)
	assert.True(t, strings.HasSuffix(got, "..."))
}
