package main

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDTrackerDistinctCounts(t *testing.T) {
	tracker := newIDTracker()

	for i := 0; i < 100; i++ {
		tracker.Observe(fmt.Sprintf("req-%d", i), "", "")
	}
	// duplicates must not inflate the count
	for i := 0; i < 100; i++ {
		tracker.Observe(fmt.Sprintf("req-%d", i), "", "")
	}
	tracker.Observe("child-1", "root-1", "")
	tracker.Observe("child-2", "root-1", "")
	tracker.Observe("m-0", "", "grp-1")
	tracker.Observe("m-1", "", "grp-1")

	reqs, roots, bursts := tracker.Counts()
	assert.Equal(t, uint(104), reqs)
	assert.Equal(t, uint(1), roots)
	assert.Equal(t, uint(1), bursts)
}

func TestIDTrackerIgnoresEmptyIDs(t *testing.T) {
	tracker := newIDTracker()
	tracker.Observe("", "", "")

	reqs, roots, bursts := tracker.Counts()
	assert.Zero(t, reqs)
	assert.Zero(t, roots)
	assert.Zero(t, bursts)
}
