package system

import (
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/milk9111/parkour/common"
	"github.com/milk9111/parkour/component"
)

// GrapplingHook anchors a tether, pulls the character in and mantles onto
// the anchor.
type GrapplingHook struct {
	cfg      component.GrappleTuning
	log      *zap.Logger
	cooldown float64
}

func NewGrapplingHook(cfg component.GrappleTuning, log *zap.Logger) *GrapplingHook {
	if log == nil {
		log = zap.NewNop()
	}
	return &GrapplingHook{cfg: cfg, log: log, cooldown: cfg.Cooldown}
}

func (g *GrapplingHook) SetTuning(cfg component.GrappleTuning) { g.cfg = cfg }

// TryShoot casts from the view point along the look direction. A miss only
// re-arms the cooldown.
func (g *GrapplingHook) TryShoot(ctx *component.TraversalContext) (*component.GrappleSession, bool) {
	loc := ctx.Location()
	ctx.PlaySound(g.cfg.StartSound, loc)

	origin, rot := loc, ctx.Pose.Rotation()
	if ctx.View != nil {
		origin, rot = ctx.View.ViewPoint()
	}
	end := origin.Add(rot.Vector().Scale(g.cfg.Range))
	hit, ok := ctx.Trace(origin, end)
	g.cooldown = g.cfg.Cooldown
	if !ok || hit.StartInside {
		g.log.Debug("grapple missed", zap.Stringer("origin", origin), zap.Stringer("end", end))
		return nil, false
	}
	return g.Start(ctx, hit.Point), true
}

func (g *GrapplingHook) Start(ctx *component.TraversalContext, anchor common.Vec3) *component.GrappleSession {
	loco := ctx.Locomotion
	s := &component.GrappleSession{
		SessionID:          uuid.New(),
		Anchor:             anchor,
		Distance:           anchor.Dist(ctx.Location()),
		CooldownRemaining:  g.cooldown,
		Phase:              component.GrapplePulling,
		OriginalHalfHeight: loco.CapsuleHalfHeight(),
	}

	ctx.PlaySound(g.cfg.AttachSound, anchor)
	if ctx.Effects != nil {
		s.PullLoop = ctx.Effects.StartLoop(g.cfg.PullLoop)
		ctx.Effects.SetTether(true, anchor)
	}
	loco.SetCapsuleHalfHeight(s.OriginalHalfHeight * g.cfg.CrouchFactor)
	loco.Launch(common.Vec3{Z: g.cfg.InitialUpwardBoost}, true, true)
	loco.SetMode(component.ModeFlying)

	g.log.Info("grapple attached",
		zap.String("session", s.SessionID.String()),
		zap.Stringer("anchor", anchor),
		zap.Float64("distance", s.Distance))
	return s
}

// PullStrength is the base pull scaled up for anchors below the character and
// by a clamped inverse-distance factor.
func (g *GrapplingHook) PullStrength(toAnchor common.Vec3) float64 {
	strength := g.cfg.BasePull
	if toAnchor.Z < 0 {
		strength *= g.cfg.DownwardPullMult
	}
	distance := toAnchor.Length()
	mult := g.cfg.MaxDistanceMult
	if distance > common.SmallNumber {
		mult = common.Clamp(g.cfg.DistanceScaleReference/distance, g.cfg.MinDistanceMult, g.cfg.MaxDistanceMult)
	}
	return strength * mult
}

func (g *GrapplingHook) ShouldApplyAntiGravity(toAnchor common.Vec3) bool {
	return math.Abs(toAnchor.Z) < g.cfg.HorizontalThreshold && toAnchor.Length() > g.cfg.MinAntiGravityDistance
}

// Tick runs the pull at the reduced tick rate and the mantle every frame.
// It reports whether the session is over.
func (g *GrapplingHook) Tick(ctx *component.TraversalContext, s *component.GrappleSession, dt float64) bool {
	if s == nil {
		return true
	}
	if s.Phase == component.GrappleMantling {
		return g.tickMantle(ctx, s, dt)
	}
	step := g.cfg.TickInterval
	if step <= 0 {
		step = dt
	}
	s.Pending += dt
	for s.Pending >= step {
		s.Pending -= step
		if g.pull(ctx, s, step) {
			return !g.ClimbAtEnd(ctx, s)
		}
	}
	return false
}

func (g *GrapplingHook) pull(ctx *component.TraversalContext, s *component.GrappleSession, step float64) bool {
	s.CooldownRemaining -= step
	toAnchor := s.Anchor.Sub(ctx.Location())
	s.Distance = toAnchor.Length()

	ctx.Locomotion.AddImpulse(toAnchor.SafeNormal().Scale(g.PullStrength(toAnchor) * step))
	if g.ShouldApplyAntiGravity(toAnchor) {
		ctx.Locomotion.AddImpulse(common.Vec3{Z: g.cfg.AntiGravity * step})
	}
	return s.CooldownRemaining <= 0 || s.Distance < g.cfg.ReleaseDistance
}

// ClimbAtEnd resolves the pull into a mantle above the anchor. When there is
// no room it releases instead and reports false.
func (g *GrapplingHook) ClimbAtEnd(ctx *component.TraversalContext, s *component.GrappleSession) bool {
	if s == nil || s.Phase != component.GrapplePulling {
		return s != nil
	}
	g.cooldown = g.cfg.Cooldown
	if !landingClear(ctx, s.Anchor, s.OriginalHalfHeight, g.cfg.LandingMargin, g.cfg.LandingRadiusMult, g.cfg.LandingHeightMult) {
		g.log.Debug("grapple mantle blocked, releasing", zap.String("session", s.SessionID.String()))
		g.Release(ctx, s)
		return false
	}

	loc := ctx.Location()
	r := ctx.Locomotion.CapsuleRadius()
	dir := s.Anchor.Sub(loc).SafeNormal2D()
	if dir == (common.Vec3{}) {
		dir = ctx.Forward()
	}
	target := s.Anchor.Add(dir.Scale(r + g.cfg.MantleForward))
	target.Z += s.OriginalHalfHeight + g.cfg.MantleLift
	s.Mantle = &component.MantleSession{
		Start:    loc,
		Target:   target,
		Duration: math.Max(g.cfg.MantleDuration, common.SmallNumber),
	}
	s.Phase = component.GrappleMantling

	g.detach(ctx, s)
	ctx.Locomotion.SetMode(component.ModeNone)
	ctx.Locomotion.SetVelocity(common.Vec3{})

	g.log.Info("grapple mantle", zap.String("session", s.SessionID.String()), zap.Stringer("target", target))
	return true
}

func (g *GrapplingHook) tickMantle(ctx *component.TraversalContext, s *component.GrappleSession, dt float64) bool {
	m := s.Mantle
	if m == nil {
		return true
	}
	m.Alpha = common.Clamp01(m.Alpha + dt/m.Duration)
	if m.Alpha >= 1 {
		ctx.Pose.SetLocation(m.Target)
		ctx.Locomotion.SetMode(component.ModeWalking)
		return true
	}
	ctx.Pose.SetLocation(common.LerpVec(m.Start, m.Target, m.Alpha))
	return false
}

// detach restores the capsule and drops the tether and pull loop.
func (g *GrapplingHook) detach(ctx *component.TraversalContext, s *component.GrappleSession) {
	ctx.Locomotion.SetCapsuleHalfHeight(s.OriginalHalfHeight)
	if ctx.Effects != nil {
		ctx.Effects.SetTether(false, s.Anchor)
		if s.PullLoop != 0 {
			ctx.Effects.StopLoop(s.PullLoop)
			s.PullLoop = 0
		}
	}
}

// Release forcibly exits the grapple at any point.
func (g *GrapplingHook) Release(ctx *component.TraversalContext, s *component.GrappleSession) {
	if s == nil {
		return
	}
	if s.Phase == component.GrapplePulling {
		g.detach(ctx, s)
	}
	ctx.Locomotion.SetMode(component.ModeWalking)
	g.log.Debug("grapple released", zap.String("session", s.SessionID.String()))
}
