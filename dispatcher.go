package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"
)

// scenarioContinuation labels the extra request emitted when a prior root
// identifier is revisited. It is not part of the weighted scenario table.
const scenarioContinuation Scenario = "continuation"

type endpoint struct {
	method string
	path   string
}

// safeEndpoints succeed under normal conditions. The echo endpoint takes a
// small JSON body; everything else is a plain GET.
var safeEndpoints = []endpoint{
	{http.MethodGet, "/health"},
	{http.MethodGet, "/demo/fast"},
	{http.MethodGet, "/demo/random"},
	{http.MethodGet, "/demo/metrics"},
	{http.MethodPost, "/demo/echo"},
}

// errorEndpoints are expected to fail. Only the error-prone endpoint honors
// the failure-shaping query parameters; not-found fails on its own.
var errorEndpoints = []endpoint{
	{http.MethodGet, "/demo/error-prone"},
	{http.MethodGet, "/demo/not-found"},
}

const (
	errorPronePath = "/demo/error-prone"
	slowPath       = "/demo/slow"
)

// chainEndpoints is the combined pool trace children and continuation
// requests draw from.
var chainEndpoints = append(append([]endpoint{}, safeEndpoints...), errorEndpoints...)

// requestSpec is everything needed to issue one request. Burst members are
// fully drawn up front so the worker goroutines never touch the random
// source.
type requestSpec struct {
	scenario  Scenario
	method    string
	path      string
	requestID string
	query     url.Values
	headers   map[string]string
	body      []byte
	timeout   time.Duration

	// carried through to the report line
	errorProbability float64
	sleepSec         float64
	parentID         string
	step             int
	burstID          string
	seq              int
}

// rootPool remembers previously minted root identifiers so later iterations
// can simulate a user returning to a prior session.
type rootPool struct {
	ids []string
}

func (p *rootPool) add(id string) {
	p.ids = append(p.ids, id)
}

func (p *rootPool) pick(rng Rng) (string, bool) {
	if len(p.ids) == 0 {
		return "", false
	}
	return p.ids[rng.Intn(len(p.ids))], true
}

func (p *rootPool) len() int {
	return len(p.ids)
}

// Dispatcher turns a scenario choice into one or more decorated HTTP requests
// against the target. Failures are contained per request; the dispatcher
// never retries and never aborts the run.
type Dispatcher struct {
	baseURL string
	client  *http.Client
	rng     Rng
	log     Logger
	rep     Reporter
}

func NewDispatcher(baseURL string, rng Rng, log Logger, rep Reporter) *Dispatcher {
	return &Dispatcher{
		baseURL: baseURL,
		client:  &http.Client{},
		rng:     rng,
		log:     log,
		rep:     rep,
	}
}

// Dispatch executes one iteration of the given scenario. Trace and burst
// iterations register their root identifier with the pool.
func (d *Dispatcher) Dispatch(s Scenario, roots *rootPool) {
	switch s {
	case ScenarioStandard:
		d.standard()
	case ScenarioError:
		d.errorProne()
	case ScenarioSlow:
		d.slow()
	case ScenarioTrace:
		d.traceChain(roots)
	case ScenarioBurst:
		d.burst(roots)
	default:
		d.log.Error("unknown scenario %q\n", s)
	}
}

func (d *Dispatcher) standard() {
	ep := safeEndpoints[d.rng.Intn(len(safeEndpoints))]
	rs := requestSpec{
		scenario:  ScenarioStandard,
		method:    ep.method,
		path:      ep.path,
		requestID: d.rng.UUID(),
		timeout:   2 * time.Second,
		step:      -1,
		seq:       -1,
	}
	if ep.method == http.MethodPost {
		rs.body = echoPayload()
	}
	d.send(rs)
}

func (d *Dispatcher) errorProne() {
	ep := errorEndpoints[d.rng.Intn(len(errorEndpoints))]
	prof := errorProfiles[d.rng.Intn(len(errorProfiles))]

	rs := requestSpec{
		scenario:  ScenarioError,
		method:    ep.method,
		path:      ep.path,
		requestID: d.rng.UUID(),
		step:      -1,
		seq:       -1,
	}
	sleep := 0.0
	if prof.SleepSec > 0 {
		sleep = d.rng.Jitter(prof.SleepSec, 0.3)
	}
	rs.timeout = timeoutForSleep(sleep)
	if ep.path == errorPronePath {
		rs.errorProbability = prof.Probability
		rs.sleepSec = sleep
		rs.query = url.Values{}
		rs.query.Set("error_probability", formatFloat(prof.Probability))
		rs.query.Set("error_type", d.rng.Choice(errorTypes))
		rs.query.Set("sleep", formatFloat(sleep))
	}
	d.send(rs)
}

func (d *Dispatcher) slow() {
	tier := latencyTiers[d.rng.Intn(len(latencyTiers))]
	latency := d.rng.Float(tier.MinSec, tier.MaxSec)

	// the server draws its own delay from [delay_min, delay_max]; pinning both
	// ends to our draw keeps the timeout below from cutting off healthy
	// responses
	q := url.Values{}
	q.Set("delay_min", formatFloat(latency))
	q.Set("delay_max", formatFloat(latency))
	q.Set("error_probability", formatFloat(tier.ErrorProbability))

	d.send(requestSpec{
		scenario:         ScenarioSlow,
		method:           http.MethodGet,
		path:             slowPath,
		requestID:        d.rng.UUID(),
		query:            q,
		timeout:          time.Duration(latency * 1.5 * float64(time.Second)),
		errorProbability: tier.ErrorProbability,
		sleepSec:         latency,
		step:             -1,
		seq:              -1,
	})
}

// traceChain issues one primary request and 1-4 correlated follow-ups. The
// primary always completes (or fails) before the first child goes out, and
// children go out strictly in step order.
func (d *Dispatcher) traceChain(roots *rootPool) {
	rootID := d.rng.UUID()
	roots.add(rootID)

	primary := safeEndpoints[d.rng.Intn(len(safeEndpoints))]
	rs := requestSpec{
		scenario:  ScenarioTrace,
		method:    primary.method,
		path:      primary.path,
		requestID: rootID,
		headers: map[string]string{
			"X-Trace-Type": "root",
			"X-Trace-Step": "0",
		},
		timeout: 2 * time.Second,
		step:    -1,
		seq:     -1,
	}
	if primary.method == http.MethodPost {
		rs.body = echoPayload()
	}
	d.send(rs)

	nchildren := d.rng.IntBetween(1, 4)
	for i := 0; i < nchildren; i++ {
		time.Sleep(d.rng.Duration(50*time.Millisecond, 200*time.Millisecond))

		child := requestSpec{
			scenario:  ScenarioTrace,
			requestID: d.rng.UUID(),
			parentID:  rootID,
			step:      i + 1,
			seq:       -1,
			timeout:   3 * time.Second,
		}
		if (i+1)%3 == 0 {
			// force some failing spans inside every long chain
			child.method = http.MethodGet
			child.path = errorPronePath
			child.errorProbability = d.rng.Float(0.75, 1.0)
			child.query = url.Values{}
			child.query.Set("error_probability", formatFloat(child.errorProbability))
			child.query.Set("error_type", d.rng.Choice(errorTypes))
			child.query.Set("sleep", "0")
		} else {
			ep := chainEndpoints[d.rng.Intn(len(chainEndpoints))]
			child.method = ep.method
			child.path = ep.path
			if ep.method == http.MethodPost {
				child.body = echoPayload()
			}
		}
		child.headers = map[string]string{
			"X-Parent-Trace-ID": rootID,
			"X-Trace-Type":      "child",
			"X-Trace-Step":      strconv.Itoa(i + 1),
		}
		d.send(child)
	}
}

// burst fires 5-10 concurrent requests against one endpoint and blocks until
// every member completes or times out. Member parameters are drawn before any
// goroutine starts; completions land in whatever order the pool yields them.
func (d *Dispatcher) burst(roots *rootPool) {
	groupID := d.rng.UUID()
	roots.add(groupID)

	size := d.rng.IntBetween(5, 10)
	ep := chainEndpoints[d.rng.Intn(len(chainEndpoints))]

	elevated := 0.0
	if ep.path == errorPronePath && d.rng.Chance(0.6) {
		elevated = d.rng.Float(0.5, 0.95)
	}

	specs := make([]requestSpec, size)
	for i := range specs {
		specs[i] = requestSpec{
			scenario:  ScenarioBurst,
			method:    ep.method,
			path:      ep.path,
			requestID: d.rng.UUID(),
			burstID:   groupID,
			seq:       i,
			step:      -1,
			timeout:   3 * time.Second,
			headers: map[string]string{
				"X-Burst-ID":       groupID,
				"X-Burst-Sequence": strconv.Itoa(i),
			},
		}
		if elevated > 0 {
			specs[i].errorProbability = elevated
			specs[i].query = url.Values{}
			specs[i].query.Set("error_probability", formatFloat(elevated))
			specs[i].query.Set("error_type", "burst_overload")
			specs[i].query.Set("sleep", "0")
		}
		if ep.method == http.MethodPost {
			specs[i].body = echoPayload()
		}
	}

	d.rep.BurstStarted(groupID, size)

	var wg sync.WaitGroup
	for i := range specs {
		wg.Add(1)
		go func(rs requestSpec) {
			defer wg.Done()
			d.send(rs)
		}(specs[i])
	}
	wg.Wait()
}

// Continuation reuses a previously minted root identifier for one more
// request, simulating a user returning to a prior session. It does nothing
// until at least one trace or burst iteration has run.
func (d *Dispatcher) Continuation(roots *rootPool) {
	rootID, ok := roots.pick(d.rng)
	if !ok {
		return
	}
	ep := chainEndpoints[d.rng.Intn(len(chainEndpoints))]
	rs := requestSpec{
		scenario:  scenarioContinuation,
		method:    ep.method,
		path:      ep.path,
		requestID: rootID,
		timeout:   2 * time.Second,
		step:      -1,
		seq:       -1,
	}
	if ep.method == http.MethodPost {
		rs.body = echoPayload()
	}
	d.send(rs)
}

// send issues one request and reports the attempt. Transport failures are
// logged and swallowed; a non-2xx status is a perfectly good outcome.
func (d *Dispatcher) send(rs requestSpec) Attempt {
	a := Attempt{
		Scenario:         rs.scenario,
		Method:           rs.method,
		Path:             rs.path,
		RequestID:        rs.requestID,
		ParentID:         rs.parentID,
		Step:             rs.step,
		BurstID:          rs.burstID,
		Seq:              rs.seq,
		ErrorProbability: rs.errorProbability,
		SleepSec:         rs.sleepSec,
		Timeout:          rs.timeout,
	}

	ctx, cancel := context.WithTimeout(context.Background(), rs.timeout)
	defer cancel()

	target := d.baseURL + rs.path
	if len(rs.query) > 0 {
		target += "?" + rs.query.Encode()
	}
	var body io.Reader
	if rs.body != nil {
		body = bytes.NewReader(rs.body)
	}
	req, err := http.NewRequestWithContext(ctx, rs.method, target, body)
	if err != nil {
		a.Err = truncate(err.Error(), 50)
		d.rep.Report(a)
		return a
	}
	req.Header.Set("X-Request-ID", rs.requestID)
	req.Header.Set("X-Test-Type", string(rs.scenario))
	if rs.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range rs.headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := d.client.Do(req)
	a.Elapsed = time.Since(start)
	if err != nil {
		a.Err = truncate(err.Error(), 50)
		d.log.Debug("request to %s failed: %s\n", rs.path, a.Err)
	} else {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		a.Status = resp.StatusCode
	}
	d.rep.Report(a)
	return a
}

// timeoutForSleep gives requests that asked the server to sleep enough room
// to come back, with a 3s floor.
func timeoutForSleep(sleepSec float64) time.Duration {
	t := sleepSec * 1.5
	if t < 3 {
		t = 3
	}
	return time.Duration(t * float64(time.Second))
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func echoPayload() []byte {
	b, _ := json.Marshal(map[string]any{
		"message":    "synthetic traffic",
		"emitted_at": time.Now().UnixMilli(),
	})
	return b
}
