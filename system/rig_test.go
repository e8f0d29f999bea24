package system

import (
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/milk9111/parkour/anim"
	"github.com/milk9111/parkour/clock"
	"github.com/milk9111/parkour/common"
	"github.com/milk9111/parkour/component"
	"github.com/milk9111/parkour/locomotion"
	"github.com/milk9111/parkour/scene"
)

const frame = 1.0 / 60

type recordingEffects struct {
	sounds   []string
	loops    map[component.LoopHandle]string
	nextLoop component.LoopHandle
	tether   bool
}

func (e *recordingEffects) PlaySoundAt(name string, _ common.Vec3) {
	e.sounds = append(e.sounds, name)
}

func (e *recordingEffects) StartLoop(name string) component.LoopHandle {
	if e.loops == nil {
		e.loops = map[component.LoopHandle]string{}
	}
	e.nextLoop++
	e.loops[e.nextLoop] = name
	return e.nextLoop
}

func (e *recordingEffects) StopLoop(h component.LoopHandle) { delete(e.loops, h) }

func (e *recordingEffects) SetTether(visible bool, _ common.Vec3) { e.tether = visible }

// eyeView looks along a fixed control rotation from the character's head.
type eyeView struct {
	body *locomotion.Body
	rot  common.Rotator
}

func (v *eyeView) ViewPoint() (common.Vec3, common.Rotator) {
	return v.body.Location().Add(common.Vec3{Z: 60}), v.rot
}

type rig struct {
	t     *testing.T
	scene *scene.Scene
	body  *locomotion.Body
	clock *clock.Clock
	anim  *anim.Player
	fx    *recordingEffects
	view  *eyeView
	ctx   *component.TraversalContext
	coord *Coordinator
}

var testMontages = []anim.MontageDef{
	{Name: "vault_short", Frames: 24, FPS: 24, Events: []anim.Event{{Frame: 23, Type: anim.EventNotify}}},
	{Name: "vault_tall", Frames: 30, FPS: 24, Events: []anim.Event{{Frame: 29, Type: anim.EventNotify}}},
	{Name: "climb_short", Frames: 24, FPS: 24, Events: []anim.Event{{Frame: 23, Type: anim.EventNotify}}},
	{Name: "climb_tall", Frames: 36, FPS: 24, Events: []anim.Event{{Frame: 35, Type: anim.EventNotify}}},
}

// newRig builds a character standing on a large floor at the origin,
// facing +X.
func newRig(t *testing.T) *rig {
	t.Helper()
	s := scene.New()
	s.AddBox(scene.Box{Name: "floor", Min: common.V3(-5000, -5000, -100), Max: common.V3(5000, 5000, 0)})

	body := locomotion.NewBody(locomotion.DefaultConfig(), s, 0)
	body.SetLocation(common.V3(0, 0, 96))
	body.SetMode(component.ModeWalking)
	body.Events.Drain()

	r := &rig{
		t:     t,
		scene: s,
		body:  body,
		clock: clock.New(),
		anim:  anim.NewPlayer(testMontages...),
		fx:    &recordingEffects{},
	}
	r.view = &eyeView{body: body}
	r.ctx = &component.TraversalContext{
		Locomotion: body,
		Pose:       body,
		View:       r.view,
		Scene:      s,
		Animator:   r.anim,
		Scheduler:  r.clock,
		Effects:    r.fx,
	}
	r.coord = NewCoordinator(r.ctx, component.DefaultTuning(), zaptest.NewLogger(t))
	return r
}

// step runs one frame in the same order as the scenario runner.
func (r *rig) step(dt float64) {
	r.anim.Update(dt)
	r.coord.Tick(dt)
	r.body.Step(dt)
	r.drain()
	r.clock.Advance(dt)
}

func (r *rig) drain() {
	for _, e := range r.body.Events.Drain() {
		switch e.Kind {
		case locomotion.EventHit:
			r.coord.OnHit(e.Hit)
		case locomotion.EventLanded:
			r.coord.OnLanded(e.Hit)
		case locomotion.EventModeChanged:
			r.coord.OnModeChanged(e.Prev, e.Next, e.VelocityZ)
		}
	}
}

// runUntil steps until done returns true or the frame budget runs out.
func (r *rig) runUntil(maxFrames int, done func() bool) int {
	for i := 0; i < maxFrames; i++ {
		if done() {
			return i
		}
		r.step(frame)
	}
	r.t.Fatalf("condition not reached within %d frames", maxFrames)
	return maxFrames
}

func (r *rig) wall(minX, maxX, height float64) component.ActorID {
	return r.scene.AddBox(scene.Box{Name: "wall", Min: common.V3(minX, -500, 0), Max: common.V3(maxX, 500, height)})
}

// airborne puts the character mid-air with velocity v.
func (r *rig) airborne(loc, v common.Vec3) {
	r.body.SetLocation(loc)
	r.body.SetVelocity(v)
	r.body.SetMode(component.ModeFalling)
	r.drain()
}

func sceneBox(minX, maxX, minZ, maxZ float64) scene.Box {
	return scene.Box{Min: common.V3(minX, -500, minZ), Max: common.V3(maxX, 500, maxZ)}
}

func montage(name string, frames, fps, notifyAt int) anim.MontageDef {
	return anim.MontageDef{Name: name, Frames: frames, FPS: fps, Events: []anim.Event{{Frame: notifyAt, Type: anim.EventNotify}}}
}
