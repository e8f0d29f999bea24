package system

import (
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/milk9111/parkour/common"
	"github.com/milk9111/parkour/component"
)

// SessionCallback is scheduled work bound to the session that scheduled it.
type SessionCallback func(id uuid.UUID)

// VaultClimb detects obstacles ahead and blends the character over or onto them.
type VaultClimb struct {
	cfg component.VaultTuning
	log *zap.Logger
}

func NewVaultClimb(cfg component.VaultTuning, log *zap.Logger) *VaultClimb {
	if log == nil {
		log = zap.NewNop()
	}
	return &VaultClimb{cfg: cfg, log: log}
}

func (v *VaultClimb) SetTuning(cfg component.VaultTuning) { v.cfg = cfg }

// TryVault scans for an obstacle and starts a session on success. done is
// invoked with the session id at the montage notify point and by the watchdog.
func (v *VaultClimb) TryVault(ctx *component.TraversalContext, wasSprinting bool, done SessionCallback) (*component.VaultSession, bool) {
	if !ctx.Locomotion.IsGrounded() {
		v.log.Debug("vault rejected: not grounded")
		return nil, false
	}
	hit, ok := v.FindObstacle(ctx, wasSprinting)
	if !ok {
		return nil, false
	}
	obstacle, ok := v.AnalyzeObstacle(ctx, hit)
	if !ok {
		return nil, false
	}
	return v.start(ctx, obstacle, done), true
}

// FindObstacle casts parallel forward rays between the trace heights and
// keeps the hit nearest the character.
func (v *VaultClimb) FindObstacle(ctx *component.TraversalContext, wasSprinting bool) (component.Hit, bool) {
	loc := ctx.Location()
	feet := ctx.Feet()
	forward := ctx.Forward()
	distance := v.cfg.TraceDistance
	if wasSprinting {
		distance *= v.cfg.SprintTraceMult
	}
	rays := max(v.cfg.RayCount, 2)

	var best component.Hit
	bestDist := math.Inf(1)
	for i := 0; i < rays; i++ {
		h := common.Lerp(v.cfg.MinTraceHeight, v.cfg.MaxTraceHeight, float64(i)/float64(rays-1))
		start := feet.Add(common.Vec3{Z: h})
		hit, ok := ctx.Trace(start, start.Add(forward.Scale(distance)))
		if !ok || hit.StartInside {
			continue
		}
		if d := loc.DistSq(hit.Point); d < bestDist {
			bestDist = d
			best = hit
		}
	}
	return best, !math.IsInf(bestDist, 1)
}

// AnalyzeObstacle classifies a hit and applies the height gate and the
// landing space check.
func (v *VaultClimb) AnalyzeObstacle(ctx *component.TraversalContext, hit component.Hit) (component.ObstacleDescriptor, bool) {
	feetZ := ctx.Feet().Z
	isWall := hit.Normal.Z < v.cfg.WallNormalMaxZ

	top := hit.Point
	if isWall {
		var ok bool
		if top, ok = v.FindWallTop(ctx, hit); !ok {
			v.log.Debug("vault rejected: wall top not found", zap.Stringer("hit", hit.Point))
			return component.ObstacleDescriptor{}, false
		}
	}
	height := math.Abs(top.Z - feetZ)
	if height < v.cfg.MinShortVaultHeight || height > v.cfg.MaxTraverseHeight {
		v.log.Debug("vault rejected: height out of range",
			zap.Float64("height", height),
			zap.Float64("min", v.cfg.MinShortVaultHeight),
			zap.Float64("max", v.cfg.MaxTraverseHeight))
		return component.ObstacleDescriptor{}, false
	}
	if !v.ValidateLandingSpace(ctx, top) {
		v.log.Debug("vault rejected: landing space blocked", zap.Stringer("top", top))
		return component.ObstacleDescriptor{}, false
	}
	return component.ObstacleDescriptor{
		Top:     top,
		Normal:  hit.Normal,
		Height:  height,
		IsWall:  isWall,
		IsThick: isWall && v.IsObstacleThick(ctx, hit, top),
	}, true
}

// FindWallTop probes down just inside the wall face. A probe that starts
// inside geometry means the wall is taller than the probe.
func (v *VaultClimb) FindWallTop(ctx *component.TraversalContext, hit component.Hit) (common.Vec3, bool) {
	feetZ := ctx.Feet().Z
	start := hit.Point.Sub(hit.Normal.WithZ(0).SafeNormal().Scale(v.cfg.WallTopInset))
	start.Z = feetZ + v.cfg.WallTopProbeHeight
	end := start.WithZ(math.Min(hit.Point.Z, feetZ) - v.cfg.WallTopInset)
	top, ok := ctx.Trace(start, end)
	if !ok || top.StartInside {
		return common.Vec3{}, false
	}
	return top.Point, true
}

// IsObstacleThick probes down through the wall one thickness behind the face.
// Any geometry above the floor the character stands on counts; the floor
// behind a thin wall does not.
func (v *VaultClimb) IsObstacleThick(ctx *component.TraversalContext, hit component.Hit, top common.Vec3) bool {
	inward := hit.Normal.WithZ(0).SafeNormal().Neg()
	start := top.Add(common.Vec3{Z: v.cfg.ThickProbeLift}).Add(inward.Scale(v.cfg.ThicknessForClimb))
	end := start.Add(common.Vec3{Z: -v.cfg.ThickProbeDepth})
	probe, ok := ctx.Trace(start, end)
	if !ok || probe.StartInside {
		return false
	}
	return probe.Point.Z > ctx.Feet().Z+v.cfg.ThickFloorClearance
}

// ValidateLandingSpace tests a shrunken capsule standing just past the top.
func (v *VaultClimb) ValidateLandingSpace(ctx *component.TraversalContext, top common.Vec3) bool {
	return landingClear(ctx, top, ctx.Locomotion.CapsuleHalfHeight(),
		v.cfg.LandingMargin, v.cfg.LandingRadiusMult, v.cfg.LandingHeightMult)
}

func landingClear(ctx *component.TraversalContext, top common.Vec3, halfHeight, margin, radiusMult, heightMult float64) bool {
	r := ctx.Locomotion.CapsuleRadius()
	pos := top.Add(ctx.Forward().Scale(r + margin)).Add(common.Vec3{Z: halfHeight})
	shape := component.CapsuleShape{Radius: r * radiusMult, HalfHeight: halfHeight * heightMult}
	return !ctx.Scene.ShapeOverlapAny(pos, common.Rotator{}, shape, ctx.Self)
}

// Classify picks the vault kind for an analysed obstacle.
func (v *VaultClimb) Classify(o component.ObstacleDescriptor) component.VaultKind {
	short := o.Height <= v.cfg.MaxShortVaultHeight
	switch {
	case o.IsWall && !o.IsThick && short:
		return component.ShortVault
	case o.IsWall && !o.IsThick:
		return component.TallVault
	case short:
		return component.ShortClimb
	default:
		return component.TallClimb
	}
}

// Targets computes the end pose and arc peak for an obstacle.
func (v *VaultClimb) Targets(ctx *component.TraversalContext, o component.ObstacleDescriptor, kind component.VaultKind) (target common.Vec3, peak float64) {
	loc := ctx.Location()
	r := ctx.Locomotion.CapsuleRadius()
	hh := ctx.Locomotion.CapsuleHalfHeight()

	if kind.IsClimb() {
		target = o.Top.Add(ctx.Forward().Scale(r + v.cfg.ClimbForward))
		target.Z = o.Top.Z + hh + v.cfg.ClimbLift
		return target, o.Top.Z + v.cfg.ArcTargetClearance
	}

	target = o.Top.Sub(o.Normal.WithZ(0).SafeNormal().Scale(r + v.cfg.VaultOvershoot))
	target.Z = loc.Z
	probeStart := target.WithZ(o.Top.Z + hh)
	if floor, ok := ctx.Trace(probeStart, probeStart.Add(common.Vec3{Z: -v.cfg.LandingFloorDepth})); ok && !floor.StartInside {
		target.Z = floor.Point.Z + hh
	}
	peak = math.Max(o.Top.Z+v.cfg.ArcClearance, target.Z+v.cfg.ArcTargetClearance)
	return target, peak
}

func (v *VaultClimb) start(ctx *component.TraversalContext, o component.ObstacleDescriptor, done SessionCallback) *component.VaultSession {
	kind := v.Classify(o)
	target, peak := v.Targets(ctx, o, kind)
	loc := ctx.Location()

	s := &component.VaultSession{
		SessionID:      uuid.New(),
		VaultKind:      kind,
		Obstacle:       o,
		Start:          loc,
		Target:         target,
		StartRotation:  ctx.Pose.Rotation(),
		TargetRotation: target.Sub(loc).SafeNormal2D().Rotation(),
		ArcPeak:        peak,
	}

	ctx.Locomotion.SetCollisionEnabled(false)
	ctx.Locomotion.SetMode(component.ModeFlying)
	ctx.Locomotion.SetVelocity(common.Vec3{})

	id := s.SessionID
	notify := func() {
		if done != nil {
			done(id)
		}
	}
	if ctx.Animator != nil {
		s.Duration = ctx.Animator.PlayMontage(v.cfg.Montage(kind), notify)
	}
	if s.Duration <= 0 {
		s.Duration = v.cfg.MinDuration
	}
	if v.cfg.WatchdogFactor > 0 {
		s.Watchdog = ctx.Scheduler.After(s.Duration*v.cfg.WatchdogFactor, notify)
	}
	ctx.PlaySound(v.cfg.VaultStartSound, loc)

	v.log.Info("vault started",
		zap.String("session", id.String()),
		zap.Stringer("kind", kind),
		zap.Float64("height", o.Height),
		zap.Bool("wall", o.IsWall),
		zap.Bool("thick", o.IsThick),
		zap.Stringer("target", target),
		zap.Float64("duration", s.Duration))
	return s
}

// Tick advances the blend and reports whether progress reached 1.
func (v *VaultClimb) Tick(ctx *component.TraversalContext, s *component.VaultSession, dt float64) bool {
	if s == nil || s.Done {
		return true
	}
	s.Alpha = common.Clamp01(s.Alpha + dt/s.Duration)
	if s.VaultKind.IsClimb() {
		v.updateClimb(ctx, s, dt)
	} else {
		v.updateVault(ctx, s, dt)
	}
	return s.Alpha >= 1
}

func (v *VaultClimb) updateVault(ctx *component.TraversalContext, s *component.VaultSession, dt float64) {
	loc := ctx.Location()
	if s.Alpha >= v.cfg.SnapAlpha {
		ctx.Pose.SetLocation(common.VInterpTo(loc, s.Target, dt, v.cfg.VaultInterp))
		ctx.Locomotion.SetVelocity(common.Vec3{})
	} else {
		want := common.LerpVec(s.Start, s.Target, s.Alpha)
		want.Z += arcOffset(s)
		remaining := s.Duration * (1 - s.Alpha + 0.01)
		speed := math.Min(loc.Dist(want)/remaining, v.cfg.MaxBlendSpeed)
		ctx.Locomotion.SetVelocity(want.Sub(loc).SafeNormal().Scale(speed))
	}
	ctx.Pose.SetRotation(common.RInterpTo(ctx.Pose.Rotation(), s.TargetRotation, dt, v.cfg.VaultInterp))
}

// arcOffset is the parabolic lift above the straight start→target line.
func arcOffset(s *component.VaultSession) float64 {
	rise := s.ArcPeak - math.Max(s.Start.Z, s.Target.Z)
	return 4 * rise * s.Alpha * (1 - s.Alpha)
}

func (v *VaultClimb) updateClimb(ctx *component.TraversalContext, s *component.VaultSession, dt float64) {
	ctx.Locomotion.SetVelocity(common.Vec3{})
	if s.Alpha >= v.cfg.SnapAlpha {
		ctx.Pose.SetLocation(s.Target)
		ctx.Pose.SetRotation(s.TargetRotation)
		return
	}
	var amount float64
	if s.Alpha > v.cfg.ClimbSlowAlpha {
		amount = common.Lerp(0.3, 0.9, (s.Alpha-v.cfg.ClimbSlowAlpha)/(v.cfg.SnapAlpha-v.cfg.ClimbSlowAlpha))
	} else {
		amount = s.Alpha * 0.3
	}
	offset := s.Target.Sub(s.Start).WithZ(0).Scale(amount)
	next := s.Start.Add(offset)
	next.Z = ctx.Location().Z
	ctx.Pose.SetLocation(next)
	ctx.Pose.SetRotation(common.RInterpTo(ctx.Pose.Rotation(), s.TargetRotation, dt, v.cfg.ClimbInterp))
}

// Finish completes the session exactly once: the character is placed on the
// target, collision comes back and walking resumes.
func (v *VaultClimb) Finish(ctx *component.TraversalContext, s *component.VaultSession) {
	if s == nil || s.Done {
		return
	}
	s.Done = true
	s.Alpha = 1
	ctx.Scheduler.Cancel(s.Watchdog)
	ctx.Pose.SetLocation(s.Target)
	ctx.Pose.SetRotation(s.TargetRotation)
	ctx.Locomotion.SetVelocity(common.Vec3{})
	ctx.Locomotion.SetCollisionEnabled(true)
	ctx.Locomotion.SetMode(component.ModeWalking)
	v.log.Info("vault finished", zap.String("session", s.SessionID.String()), zap.Stringer("kind", s.VaultKind))
}
