package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRngSameSeedSameDraws(t *testing.T) {
	a := NewRng("hello")
	b := NewRng("hello")
	for i := 0; i < 500; i++ {
		require.Equal(t, a.Intn(1000), b.Intn(1000))
		require.Equal(t, a.Float64(), b.Float64())
		require.Equal(t, a.UUID(), b.UUID())
	}
}

func TestRngDifferentSeedsDiverge(t *testing.T) {
	a := NewRng("hello")
	b := NewRng("goodbye")
	same := 0
	for i := 0; i < 100; i++ {
		if a.Intn(1 << 30) == b.Intn(1<<30) {
			same++
		}
	}
	assert.Less(t, same, 5)
}

func TestRngBounds(t *testing.T) {
	rng := NewRng("bounds")
	for i := 0; i < 1000; i++ {
		v := rng.IntBetween(5, 10)
		require.GreaterOrEqual(t, v, 5)
		require.LessOrEqual(t, v, 10)

		f := rng.Float(0.5, 1.0)
		require.GreaterOrEqual(t, f, 0.5)
		require.Less(t, f, 1.0)

		d := rng.Duration(50*time.Millisecond, 200*time.Millisecond)
		require.GreaterOrEqual(t, d, 50*time.Millisecond)
		require.Less(t, d, 200*time.Millisecond)

		j := rng.Jitter(2.0, 0.3)
		require.GreaterOrEqual(t, j, 1.4)
		require.Less(t, j, 2.6)
	}
}

func TestRngDurationDegenerateRange(t *testing.T) {
	rng := NewRng("degenerate")
	require.Equal(t, time.Second, rng.Duration(time.Second, time.Second))
	require.Equal(t, time.Second, rng.Duration(time.Second, 0))
}

func TestRngChanceExtremes(t *testing.T) {
	rng := NewRng("chance")
	for i := 0; i < 100; i++ {
		require.False(t, rng.Chance(0))
		require.True(t, rng.Chance(1))
	}
}

func TestRngUUIDWellFormed(t *testing.T) {
	rng := NewRng("uuid")
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := rng.UUID()
		require.Len(t, id, 36)
		require.False(t, seen[id], "duplicate uuid %s", id)
		seen[id] = true
	}
}
