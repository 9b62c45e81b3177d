package main

// trafficgen populates an observability stack with realistic sample data by
// firing randomized HTTP traffic at a demo API. Each top-level iteration
// draws one of five scenarios from a weighted table:
//
//   - standard (0.35): one request against a safe endpoint, GET or a small
//     JSON POST for the echo endpoint.
//   - error (0.35): one request against an error-prone endpoint, carrying one
//     of five predefined failure profiles (induced-error probability plus a
//     server-side sleep with ±30% jitter).
//   - slow (0.15): one request against the latency-injecting endpoint, drawn
//     from four latency tiers with increasing failure probability.
//   - trace (0.10): a primary request followed by 1-4 children, each carrying
//     its own identifier plus a back-reference to the root; every third child
//     is forced into an elevated error mode so chains contain failing spans.
//   - burst (0.05): 5-10 concurrent requests sharing a group identifier, with
//     a join barrier and a longer cooldown afterwards.
//
// Every request carries exactly one correlation identifier in X-Request-ID
// and the scenario name in X-Test-Type; chain children add X-Parent-Trace-ID,
// X-Trace-Type and X-Trace-Step, burst members add X-Burst-ID and
// X-Burst-Sequence. Root identifiers accumulate in a pool, and 15% of
// iterations emit one extra "continuation" request under a previously seen
// root to simulate a user returning to a prior session.
//
// Randomness all flows from one source seeded by a string (--seed), so a run
// is exactly reproducible. Network failures are logged and contained per
// request; the run always proceeds to its configured iteration count.
//
// cmd/demoapi is the matching target: a small API with safe, slow and
// error-prone endpoints whose failure behavior is steered by query
// parameters, instrumented with structured logs, Prometheus metrics and
// OpenTelemetry traces.
