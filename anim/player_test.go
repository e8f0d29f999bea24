package anim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vaultDef() MontageDef {
	return MontageDef{
		Name:   "vault_short",
		Frames: 24,
		FPS:    24,
		Events: []Event{
			{Frame: 3, Type: EventSound, Payload: "step"},
			{Frame: 20, Type: EventNotify},
		},
	}
}

func TestPlayMontageDuration(t *testing.T) {
	p := NewPlayer(vaultDef(), MontageDef{Name: "slow", Frames: 30, FPS: 12})

	assert.InDelta(t, 1.0, p.PlayMontage("vault_short", nil), 1e-12)
	assert.InDelta(t, 2.5, p.PlayMontage("slow", nil), 1e-12)
	assert.Zero(t, p.PlayMontage("missing", nil))
}

func TestNotifyFiresOnceAtFrame(t *testing.T) {
	p := NewPlayer(vaultDef())
	var sounds []string
	p.Handlers = append(p.Handlers, func(_ string, _ int, evt Event) {
		sounds = append(sounds, evt.Payload)
	})

	notified := 0
	p.PlayMontage("vault_short", func() { notified++ })

	const dt = 1.0 / 60
	elapsed := 0.0
	for notified == 0 && elapsed < 2 {
		p.Update(dt)
		elapsed += dt
	}
	require.Equal(t, 1, notified)
	assert.InDelta(t, 20.0/24, elapsed, dt+1e-9)
	assert.Equal(t, []string{"step"}, sounds)

	for i := 0; i < 60; i++ {
		p.Update(dt)
	}
	assert.Equal(t, 1, notified)
	_, _, playing := p.Current()
	assert.False(t, playing)
}

func TestReplacingMontageDropsNotify(t *testing.T) {
	p := NewPlayer(vaultDef())
	first, second := 0, 0
	p.PlayMontage("vault_short", func() { first++ })
	p.Update(0.5)
	p.PlayMontage("vault_short", func() { second++ })
	p.Update(2)

	assert.Zero(t, first)
	assert.Equal(t, 1, second)
}

func TestNotifyPastLastFrameFiresAtEnd(t *testing.T) {
	p := NewPlayer(MontageDef{Name: "climb", Frames: 10, FPS: 10, Events: []Event{{Frame: 99, Type: EventNotify}}})
	fired := false
	p.PlayMontage("climb", func() { fired = true })
	p.Update(0.85)
	assert.False(t, fired)
	p.Update(0.2)
	assert.True(t, fired)
}
