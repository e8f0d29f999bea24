package scenario

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"

	"github.com/milk9111/parkour/anim"
	"github.com/milk9111/parkour/clock"
	"github.com/milk9111/parkour/common"
	"github.com/milk9111/parkour/component"
	"github.com/milk9111/parkour/locomotion"
	"github.com/milk9111/parkour/prefabs"
	"github.com/milk9111/parkour/scene"
	"github.com/milk9111/parkour/system"
)

const (
	DefaultDT = 1.0 / 60
	eyeHeight = 60
)

// Input is one frame of player intent.
type Input struct {
	Move   common.Vec3
	Sprint bool
	// Look replaces the control rotation from this frame on.
	Look *common.Rotator

	Jump    bool
	Vault   bool
	Grapple bool
	Release bool
	Grab    bool
	Drop    bool
}

// view follows the body's facing until an explicit look is set.
type view struct {
	body *locomotion.Body
	look *common.Rotator
}

func (v *view) ViewPoint() (common.Vec3, common.Rotator) {
	loc := v.body.Location().Add(common.Vec3{Z: eyeHeight})
	if v.look != nil {
		return loc, *v.look
	}
	return loc, common.Rotator{Yaw: v.body.Rotation().Yaw}
}

type Config struct {
	Course   prefabs.CourseSpec
	Tuning   component.Tuning
	Montages []anim.MontageDef
	Body     locomotion.Config
	DT       float64
}

// Runner drives one character through a course at a fixed time step.
type Runner struct {
	cfg Config
	log *zap.Logger

	Scene   *scene.Scene
	Shapes  map[component.ActorID]prefabs.ShapeSpec
	Body    *locomotion.Body
	Clock   *clock.Clock
	Anim    *anim.Player
	Effects *Effects
	Coord   *system.Coordinator

	view  *view
	frame int
	hash  *xxhash.Digest
}

func NewRunner(cfg Config, log *zap.Logger) (*Runner, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.DT <= 0 {
		cfg.DT = DefaultDT
	}
	if cfg.Body == (locomotion.Config{}) {
		cfg.Body = locomotion.DefaultConfig()
	}
	log = log.With(zap.String("course", cfg.Course.Name))

	s, shapes, err := prefabs.BuildScene(cfg.Course)
	if err != nil {
		return nil, err
	}

	body := locomotion.NewBody(cfg.Body, s, 0)
	start := cfg.Course.Start
	body.SetLocation(start.Location)
	body.SetRotation(common.Rotator{Yaw: start.Yaw})
	if start.Airborne {
		body.SetMode(component.ModeFalling)
	} else {
		body.SetMode(component.ModeWalking)
	}
	body.Events.Drain()

	r := &Runner{
		cfg:     cfg,
		log:     log,
		Scene:   s,
		Shapes:  shapes,
		Body:    body,
		Clock:   clock.New(),
		Anim:    anim.NewPlayer(cfg.Montages...),
		Effects: NewEffects(log.Named("fx")),
		view:    &view{body: body},
		hash:    xxhash.New(),
	}
	r.Anim.Handlers = append(r.Anim.Handlers, r.onAnimEvent)

	ctx := &component.TraversalContext{
		Locomotion: body,
		Pose:       body,
		View:       r.view,
		Scene:      s,
		Animator:   r.Anim,
		Scheduler:  r.Clock,
		Effects:    r.Effects,
	}
	r.Coord = system.NewCoordinator(ctx, cfg.Tuning, log.Named("traversal"))
	if err := r.Coord.Err(); err != nil {
		return nil, fmt.Errorf("scenario: %s: %w", cfg.Course.Name, err)
	}
	return r, nil
}

func (r *Runner) onAnimEvent(montage string, frame int, evt anim.Event) {
	if evt.Type != anim.EventSound || evt.Payload == "" {
		return
	}
	r.Effects.PlaySoundAt(evt.Payload, r.Body.Location())
}

func (r *Runner) Frame() int                 { return r.frame }
func (r *Runner) DT() float64                { return r.cfg.DT }
func (r *Runner) Time() float64              { return r.Clock.Now() }
func (r *Runner) Checksum() uint64           { return r.hash.Sum64() }
func (r *Runner) Course() prefabs.CourseSpec { return r.cfg.Course }

// ViewPoint reports the camera the abilities aim with.
func (r *Runner) ViewPoint() (common.Vec3, common.Rotator) { return r.view.ViewPoint() }

// SetTuning swaps the traversal constants between frames.
func (r *Runner) SetTuning(t component.Tuning) {
	r.cfg.Tuning = t
	r.Coord.SetTuning(t)
}

// Step applies in and advances the world by one frame: input, animation,
// traversal, locomotion, collision events, then timers.
func (r *Runner) Step(in Input) {
	dt := r.cfg.DT
	if in.Look != nil {
		look := *in.Look
		r.view.look = &look
	}
	r.Body.SetMoveInput(in.Move)
	r.Body.SetSprinting(in.Sprint)

	if in.Release {
		r.Coord.ReleaseGrapple()
	}
	if in.Drop {
		r.Coord.Drop()
	}
	if in.Grapple {
		r.Coord.TryShoot()
	}
	if in.Grab {
		r.Coord.TryGrab()
	}
	if in.Vault {
		r.Coord.TryVault(in.Sprint)
	}
	if in.Jump {
		r.Coord.Jump(in.Sprint)
	}

	r.Anim.Update(dt)
	r.Coord.Tick(dt)
	r.Body.Step(dt)
	r.drain()
	r.Clock.Advance(dt)

	r.record()
	r.frame++
}

func (r *Runner) drain() {
	for _, e := range r.Body.Events.Drain() {
		switch e.Kind {
		case locomotion.EventHit:
			r.Coord.OnHit(e.Hit)
		case locomotion.EventLanded:
			r.Coord.OnLanded(e.Hit)
		case locomotion.EventModeChanged:
			r.Coord.OnModeChanged(e.Prev, e.Next, e.VelocityZ)
		}
	}
}

// record folds the frame's location and session kind into the checksum.
func (r *Runner) record() {
	var buf [25]byte
	loc := r.Body.Location()
	binary.LittleEndian.PutUint64(buf[0:], math.Float64bits(loc.X))
	binary.LittleEndian.PutUint64(buf[8:], math.Float64bits(loc.Y))
	binary.LittleEndian.PutUint64(buf[16:], math.Float64bits(loc.Z))
	buf[24] = byte(r.Coord.ActiveKind())
	_, _ = r.hash.Write(buf[:])
}
