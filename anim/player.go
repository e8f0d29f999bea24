package anim

import "math"

// EventType identifies a montage frame event.
type EventType string

const (
	// EventNotify is the scripted completion point handed to PlayMontage.
	EventNotify EventType = "notify"
	EventSound  EventType = "sound"
)

// Event fires once when playback reaches Frame.
type Event struct {
	Frame   int       `yaml:"frame"`
	Type    EventType `yaml:"type"`
	Payload string    `yaml:"payload"`
}

// MontageDef describes a one-shot animation.
type MontageDef struct {
	Name   string  `yaml:"name"`
	Frames int     `yaml:"frames"`
	FPS    int     `yaml:"fps"`
	Events []Event `yaml:"events"`
}

// Duration is the playback length in seconds.
func (d MontageDef) Duration() float64 {
	if d.Frames <= 0 || d.FPS <= 0 {
		return 0
	}
	return float64(d.Frames) / float64(d.FPS)
}

// EventHandler receives non-notify frame events.
type EventHandler func(montage string, frame int, evt Event)

type playback struct {
	def       MontageDef
	elapsed   float64
	lastFrame int
	onNotify  func()
}

// Player plays one montage at a time. It implements component.Animator.
type Player struct {
	defs     map[string]MontageDef
	current  *playback
	Handlers []EventHandler
}

func NewPlayer(defs ...MontageDef) *Player {
	p := &Player{defs: make(map[string]MontageDef, len(defs))}
	for _, d := range defs {
		p.Add(d)
	}
	return p
}

// Add registers or replaces a montage definition.
func (p *Player) Add(def MontageDef) {
	if p == nil || def.Name == "" {
		return
	}
	if def.FPS <= 0 {
		def.FPS = 12
	}
	p.defs[def.Name] = def
}

func (p *Player) Def(name string) (MontageDef, bool) {
	if p == nil {
		return MontageDef{}, false
	}
	d, ok := p.defs[name]
	return d, ok
}

// PlayMontage starts name, replacing any montage in progress along with its
// pending notify. Unknown montages return 0 and never notify.
func (p *Player) PlayMontage(name string, onNotify func()) float64 {
	if p == nil {
		return 0
	}
	def, ok := p.defs[name]
	if !ok || def.Frames <= 0 {
		return 0
	}
	p.current = &playback{def: def, lastFrame: -1, onNotify: onNotify}
	return def.Duration()
}

// Stop drops the current montage without notifying.
func (p *Player) Stop() {
	if p == nil {
		return
	}
	p.current = nil
}

// Current reports the playing montage and its progress in [0,1].
func (p *Player) Current() (string, float64, bool) {
	if p == nil || p.current == nil {
		return "", 0, false
	}
	d := p.current.def.Duration()
	if d <= 0 {
		return p.current.def.Name, 1, true
	}
	return p.current.def.Name, math.Min(p.current.elapsed/d, 1), true
}

// Update advances playback and fires every frame event passed.
func (p *Player) Update(dt float64) {
	if p == nil || p.current == nil || dt <= 0 {
		return
	}
	pb := p.current
	pb.elapsed += dt
	last := pb.def.Frames - 1
	frame := int(pb.elapsed * float64(pb.def.FPS))
	finished := frame > last
	if frame > last {
		frame = last
	}
	for f := pb.lastFrame + 1; f <= frame; f++ {
		for _, evt := range pb.def.Events {
			at := evt.Frame
			if at > last {
				at = last
			}
			if at != f {
				continue
			}
			p.fire(pb, f, evt)
			if p.current != pb {
				// a callback replaced the montage
				return
			}
		}
	}
	pb.lastFrame = frame
	if finished {
		p.current = nil
	}
}

func (p *Player) fire(pb *playback, frame int, evt Event) {
	if evt.Type == EventNotify {
		if fn := pb.onNotify; fn != nil {
			pb.onNotify = nil
			fn()
		}
		return
	}
	for _, h := range p.Handlers {
		if h != nil {
			h(pb.def.Name, frame, evt)
		}
	}
}
