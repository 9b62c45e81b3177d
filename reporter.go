package main

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// An Attempt records one HTTP request the dispatcher made, successful or not.
// One report line per attempt is the generator's audit trail.
type Attempt struct {
	Scenario  Scenario
	Method    string
	Path      string
	RequestID string

	// trace-chain bookkeeping; Step is -1 outside chains
	ParentID string
	Step     int

	// burst bookkeeping; Seq is -1 outside bursts
	BurstID string
	Seq     int

	// parameters sent to the target, zero when not applicable
	ErrorProbability float64
	SleepSec         float64
	Timeout          time.Duration

	Status  int    // 0 when the request never completed
	Err     string // truncated transport error, empty on completion
	Elapsed time.Duration
}

// Failed reports whether the request never produced an HTTP response.
func (a Attempt) Failed() bool {
	return a.Status == 0
}

// A Reporter receives every attempt the dispatcher makes. Report must be safe
// for concurrent use; burst members call it from multiple goroutines.
type Reporter interface {
	Report(a Attempt)
	BurstStarted(groupID string, size int)
	Done(iterations int)
}

// make sure it implements Reporter
var _ Reporter = (*PrintReporter)(nil)

// PrintReporter writes one line per attempt to w, plus a burst banner per
// burst group and a final summary line.
type PrintReporter struct {
	mut      sync.Mutex
	w        io.Writer
	attempts int
	failed   int
	non2xx   int
}

func NewPrintReporter(w io.Writer) *PrintReporter {
	return &PrintReporter{w: w}
}

func (p *PrintReporter) Report(a Attempt) {
	p.mut.Lock()
	defer p.mut.Unlock()
	p.attempts++

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s id=%s", a.Scenario, a.Method, a.Path, a.RequestID)
	if a.ParentID != "" {
		fmt.Fprintf(&b, " parent=%s step=%d", a.ParentID, a.Step)
	}
	if a.BurstID != "" {
		fmt.Fprintf(&b, " burst=%s seq=%d", a.BurstID, a.Seq)
	}
	if a.ErrorProbability > 0 {
		fmt.Fprintf(&b, " error_probability=%.2f", a.ErrorProbability)
	}
	if a.SleepSec > 0 {
		fmt.Fprintf(&b, " sleep=%.2fs", a.SleepSec)
	}
	if a.Timeout > 0 {
		fmt.Fprintf(&b, " timeout=%s", a.Timeout.Round(time.Millisecond))
	}
	switch {
	case a.Failed():
		p.failed++
		fmt.Fprintf(&b, " failed=%q", a.Err)
	default:
		if a.Status < 200 || a.Status > 299 {
			p.non2xx++
		}
		fmt.Fprintf(&b, " status=%d", a.Status)
	}
	fmt.Fprintf(&b, " elapsed=%s", a.Elapsed.Round(time.Millisecond))
	fmt.Fprintln(p.w, b.String())
}

func (p *PrintReporter) BurstStarted(groupID string, size int) {
	p.mut.Lock()
	defer p.mut.Unlock()
	fmt.Fprintf(p.w, "burst %s starting %d concurrent requests\n", groupID, size)
}

func (p *PrintReporter) Done(iterations int) {
	p.mut.Lock()
	defer p.mut.Unlock()
	fmt.Fprintf(p.w, "done generating traffic: %d iterations, %d requests, %d failed, %d non-2xx\n",
		iterations, p.attempts, p.failed, p.non2xx)
}

// truncate keeps report lines readable when transport errors carry long
// wrapped messages.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
