package scenario

import (
	"go.uber.org/zap"

	"github.com/milk9111/parkour/common"
	"github.com/milk9111/parkour/component"
)

// Effects records audio and tether feedback for a headless run. It
// implements component.Effects.
type Effects struct {
	log *zap.Logger

	Sounds map[string]int
	loops  map[component.LoopHandle]string
	next   component.LoopHandle

	Tether bool
	Anchor common.Vec3
}

func NewEffects(log *zap.Logger) *Effects {
	if log == nil {
		log = zap.NewNop()
	}
	return &Effects{
		log:    log,
		Sounds: map[string]int{},
		loops:  map[component.LoopHandle]string{},
	}
}

func (e *Effects) PlaySoundAt(name string, position common.Vec3) {
	e.Sounds[name]++
	e.log.Debug("sound", zap.String("name", name), zap.Stringer("at", position))
}

func (e *Effects) StartLoop(name string) component.LoopHandle {
	e.next++
	e.loops[e.next] = name
	e.log.Debug("loop started", zap.String("name", name), zap.Uint64("handle", uint64(e.next)))
	return e.next
}

func (e *Effects) StopLoop(h component.LoopHandle) {
	name, ok := e.loops[h]
	if !ok {
		return
	}
	delete(e.loops, h)
	e.log.Debug("loop stopped", zap.String("name", name), zap.Uint64("handle", uint64(h)))
}

func (e *Effects) SetTether(visible bool, anchor common.Vec3) {
	e.Tether = visible
	e.Anchor = anchor
}

// Loops lists the names of the loops still playing.
func (e *Effects) Loops() []string {
	out := make([]string, 0, len(e.loops))
	for _, name := range e.loops {
		out = append(out, name)
	}
	return out
}
