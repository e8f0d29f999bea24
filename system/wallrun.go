package system

import (
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/milk9111/parkour/common"
	"github.com/milk9111/parkour/component"
)

// WallRun attaches a falling character to a qualifying wall and owns the
// camera tilt that follows it.
type WallRun struct {
	cfg component.WallRunTuning
	log *zap.Logger

	lastAttempt float64
	attempted   bool
	lastWall    component.ActorID

	running    bool
	side       component.WallSide
	tilt       float64
	tiltActive bool
}

func NewWallRun(cfg component.WallRunTuning, log *zap.Logger) *WallRun {
	if log == nil {
		log = zap.NewNop()
	}
	return &WallRun{cfg: cfg, log: log}
}

func (w *WallRun) SetTuning(cfg component.WallRunTuning) { w.cfg = cfg }

// TryWallRun is rate limited; repeated hits against the wall last attached
// to are ignored until Reset.
func (w *WallRun) TryWallRun(ctx *component.TraversalContext, hit component.Hit, timeout SessionCallback) (*component.WallRunSession, bool) {
	now := ctx.Scheduler.Now()
	if w.attempted && now-w.lastAttempt < w.cfg.AttemptCooldown {
		return nil, false
	}
	w.attempted = true
	w.lastAttempt = now

	side, ok := w.CheckForWall(ctx, hit)
	if !ok {
		return nil, false
	}
	if hit.Actor == w.lastWall {
		w.log.Debug("wall run rejected: same wall", zap.Uint32("actor", uint32(hit.Actor)))
		return nil, false
	}
	w.lastWall = hit.Actor
	return w.Start(ctx, hit, side, timeout), true
}

// CheckForWall validates a collision as a wall-run surface and picks the side.
func (w *WallRun) CheckForWall(ctx *component.TraversalContext, hit component.Hit) (component.WallSide, bool) {
	if !ctx.Locomotion.IsFalling() {
		return component.WallSideNone, false
	}
	if ctx.Locomotion.Velocity().HorizontalSpeed() < w.cfg.MinSpeed {
		w.log.Debug("wall run rejected: too slow")
		return component.WallSideNone, false
	}
	dot := hit.Normal.Dot(ctx.Right())
	side := component.WallSideRight
	if dot > 0 {
		side = component.WallSideLeft
	}
	if math.Abs(dot) < w.cfg.MinWallAngleDot {
		w.log.Debug("wall run rejected: wall angle", zap.Float64("dot", dot))
		return component.WallSideNone, false
	}
	if d := w.FloorDistance(ctx); d <= w.cfg.MinWallHeight {
		w.log.Debug("wall run rejected: too close to the floor", zap.Float64("floor", d))
		return component.WallSideNone, false
	}
	return side, true
}

// FloorDistance is the gap between the capsule bottom and the floor below,
// +Inf when no floor is within the probe.
func (w *WallRun) FloorDistance(ctx *component.TraversalContext) float64 {
	loc := ctx.Location()
	hit, ok := ctx.Trace(loc, loc.Add(common.Vec3{Z: -w.cfg.FloorProbe}))
	if !ok || hit.StartInside {
		return math.Inf(1)
	}
	return ctx.Feet().Z - hit.Point.Z
}

func (w *WallRun) Start(ctx *component.TraversalContext, hit component.Hit, side component.WallSide, timeout SessionCallback) *component.WallRunSession {
	loco := ctx.Locomotion
	plane, planeSet := loco.PlaneConstraint()
	s := &component.WallRunSession{
		SessionID:    uuid.New(),
		Normal:       hit.Normal,
		Side:         side,
		Wall:         hit.Actor,
		Duration:     w.cfg.Duration,
		PrevGravity:  loco.GravityScale(),
		PrevPlane:    plane,
		PrevPlaneSet: planeSet,
	}

	vel := loco.Velocity()
	vel.Z = math.Max(0, vel.Z*0.5)
	loco.SetVelocity(vel)
	loco.SetPlaneConstraint(hit.Normal, true)
	loco.SetGravityScale(w.cfg.GravityScale)

	id := s.SessionID
	s.AutoStop = ctx.Scheduler.After(w.cfg.Duration, func() {
		if timeout != nil {
			timeout(id)
		}
	})

	w.running = true
	w.side = side
	w.tiltActive = true

	w.log.Info("wall run started",
		zap.String("session", id.String()),
		zap.Stringer("side", side),
		zap.Uint32("wall", uint32(hit.Actor)))
	return s
}

// Tick reports whether the run should end because speed decayed.
func (w *WallRun) Tick(ctx *component.TraversalContext, s *component.WallRunSession, dt float64) bool {
	if s == nil {
		return true
	}
	s.Elapsed += dt
	return ctx.Locomotion.Velocity().HorizontalSpeed() < w.cfg.MinSpeed
}

// Stop detaches from the wall. The tilt keeps easing back to zero afterwards.
func (w *WallRun) Stop(ctx *component.TraversalContext, s *component.WallRunSession) {
	if s == nil {
		return
	}
	ctx.Scheduler.Cancel(s.AutoStop)
	s.AutoStop = 0
	ctx.Locomotion.SetPlaneConstraint(s.PrevPlane, s.PrevPlaneSet)
	ctx.Locomotion.SetGravityScale(s.PrevGravity)
	w.running = false
	w.tiltActive = true
	w.log.Debug("wall run stopped", zap.String("session", s.SessionID.String()), zap.Float64("elapsed", s.Elapsed))
}

// Jump stops the run and launches away from the wall along the look direction.
func (w *WallRun) Jump(ctx *component.TraversalContext, s *component.WallRunSession) {
	if s == nil {
		return
	}
	w.Stop(ctx, s)

	force := ctx.Locomotion.Velocity().Length() * w.cfg.JumpForceMult
	dir := ctx.LookDirection().Add(s.Normal.Scale(w.cfg.JumpNormalBlend)).SafeNormal()
	dir.Z = w.cfg.JumpLift
	dir = dir.SafeNormal()
	launch := dir.Scale(force)
	launch.Z += w.cfg.JumpHeightBoost
	ctx.Locomotion.Launch(launch, true, true)

	w.log.Info("wall run jump", zap.String("session", s.SessionID.String()), zap.Stringer("launch", launch))
}

// Reset clears timers, side, tilt and wall memory. s may be nil.
func (w *WallRun) Reset(ctx *component.TraversalContext, s *component.WallRunSession) {
	if s != nil {
		w.Stop(ctx, s)
	}
	w.running = false
	w.side = component.WallSideNone
	w.tilt = 0
	w.tiltActive = false
	w.lastWall = 0
}

// UpdateTilt eases the camera roll toward the side target while running and
// back to zero afterwards, then goes idle once converged.
func (w *WallRun) UpdateTilt(dt float64) {
	if !w.tiltActive {
		return
	}
	target := w.TiltTarget()
	w.tilt = common.FInterpTo(w.tilt, target, dt, w.cfg.TiltSpeed)
	if math.Abs(w.tilt-target) < w.cfg.TiltTolerance {
		w.tilt = target
		w.tiltActive = false
	}
}

// TiltTarget is the roll to ease toward. The camera leans away from the
// wall: positive with the wall on the left, negative on the right.
func (w *WallRun) TiltTarget() float64 {
	if !w.running {
		return 0
	}
	if w.side == component.WallSideLeft {
		return w.cfg.TiltAngle
	}
	return -w.cfg.TiltAngle
}

func (w *WallRun) Tilt() float64               { return w.tilt }
func (w *WallRun) TiltActive() bool            { return w.tiltActive }
func (w *WallRun) Side() component.WallSide    { return w.side }
func (w *WallRun) LastWall() component.ActorID { return w.lastWall }
