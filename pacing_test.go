package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPacerDelayBand(t *testing.T) {
	base := 100 * time.Millisecond
	p := NewPacer(base, NewRng("pacer"))
	for i := 0; i < 1000; i++ {
		d := p.Next(ScenarioStandard)
		require.GreaterOrEqual(t, d, 50*time.Millisecond)
		require.Less(t, d, 150*time.Millisecond)
	}
}

func TestPacerBurstCooldown(t *testing.T) {
	base := 100 * time.Millisecond
	p := NewPacer(base, NewRng("cooldown"))
	for i := 0; i < 1000; i++ {
		d := p.Next(ScenarioBurst)
		// jittered base plus 1x-2x cooldown
		require.GreaterOrEqual(t, d, 150*time.Millisecond)
		require.Less(t, d, 350*time.Millisecond)
	}
}

func TestPacerZeroBase(t *testing.T) {
	p := NewPacer(0, NewRng("zero"))
	assert.Equal(t, time.Duration(0), p.Next(ScenarioStandard))
	assert.Equal(t, time.Duration(0), p.Next(ScenarioBurst))
}
