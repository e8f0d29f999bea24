package system

import (
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/milk9111/parkour/common"
	"github.com/milk9111/parkour/component"
)

// LedgeSwing grabs ledges and poles. Ledges are a static hang; poles swing.
type LedgeSwing struct {
	cfg component.LedgeTuning
	log *zap.Logger
}

func NewLedgeSwing(cfg component.LedgeTuning, log *zap.Logger) *LedgeSwing {
	if log == nil {
		log = zap.NewNop()
	}
	return &LedgeSwing{cfg: cfg, log: log}
}

func (l *LedgeSwing) SetTuning(cfg component.LedgeTuning) { l.cfg = cfg }

// TryGrab prefers a ledge over a pole.
func (l *LedgeSwing) TryGrab(ctx *component.TraversalContext) (*component.HangSession, bool) {
	if anchor, normal, wall, ok := l.DetectLedge(ctx); ok {
		return l.StartHang(ctx, component.HangLedge, anchor, normal, wall), true
	}
	if anchor, normal, ok := l.DetectPole(ctx); ok {
		return l.StartHang(ctx, component.HangPole, anchor, normal, common.Vec3{}), true
	}
	l.log.Debug("grab rejected: nothing to hold")
	return nil, false
}

// DetectLedge finds a wall at chest height, then a flat top above it.
func (l *LedgeSwing) DetectLedge(ctx *component.TraversalContext) (anchor, normal, wallNormal common.Vec3, ok bool) {
	loc := ctx.Location()
	start := loc.Add(common.Vec3{Z: l.cfg.ChestHeight})
	face, hit := ctx.Trace(start, start.Add(ctx.Forward().Scale(l.cfg.ForwardReach)))
	if !hit || face.StartInside {
		return
	}
	wallNormal = face.Normal.WithZ(0).SafeNormal()
	downStart := face.Point.Sub(wallNormal.Scale(l.cfg.LedgeInset)).Add(common.Vec3{Z: l.cfg.UpwardReach})
	top, hit := ctx.Trace(downStart, downStart.Add(common.Vec3{Z: -l.cfg.DownProbe}))
	if !hit || top.StartInside {
		return
	}
	if top.Normal.Z < l.cfg.LedgeNormalZ {
		l.log.Debug("ledge rejected: not flat", zap.Float64("normalZ", top.Normal.Z))
		return
	}
	if top.Point.Z-loc.Z < l.cfg.MinGrabHeight {
		l.log.Debug("ledge rejected: too low", zap.Float64("height", top.Point.Z-loc.Z))
		return
	}
	return top.Point, top.Normal, wallNormal, true
}

// DetectPole casts straight up and accepts side hits only.
func (l *LedgeSwing) DetectPole(ctx *component.TraversalContext) (anchor, normal common.Vec3, ok bool) {
	loc := ctx.Location()
	hit, found := ctx.Trace(loc, loc.Add(common.Vec3{Z: l.cfg.UpwardReach}))
	if !found || hit.StartInside {
		return
	}
	if math.Abs(hit.Normal.Z) > l.cfg.PoleSideMaxZ {
		l.log.Debug("pole rejected: cap hit", zap.Float64("normalZ", hit.Normal.Z))
		return
	}
	if hit.Point.Z-loc.Z < l.cfg.MinGrabHeight {
		return
	}
	return hit.Point, hit.Normal, true
}

func (l *LedgeSwing) StartHang(ctx *component.TraversalContext, kind component.HangKind, anchor, normal, wallNormal common.Vec3) *component.HangSession {
	forward := ctx.Forward()
	s := &component.HangSession{
		SessionID:  uuid.New(),
		HangKind:   kind,
		Anchor:     anchor,
		Normal:     normal,
		WallNormal: wallNormal,
		Forward:    forward,
	}
	if kind == component.HangPole {
		s.InitialMomentum = math.Abs(ctx.Locomotion.Velocity().Dot(forward))
		s.SwingVelocity = common.Clamp(s.InitialMomentum*l.cfg.MomentumToSwing, -l.cfg.MaxSwingAngle, l.cfg.MaxSwingAngle)
	}
	ctx.Locomotion.SetMode(component.ModeNone)
	ctx.Locomotion.SetVelocity(common.Vec3{})
	l.UpdateHangPosition(ctx, s)
	ctx.PlaySound(l.cfg.GrabSound, anchor)

	l.log.Info("hang started",
		zap.String("session", s.SessionID.String()),
		zap.Stringer("kind", kind),
		zap.Stringer("anchor", anchor),
		zap.Float64("momentum", s.InitialMomentum))
	return s
}

// Tick swings poles and keeps the character pinned to the hang point.
func (l *LedgeSwing) Tick(ctx *component.TraversalContext, s *component.HangSession, dt float64) {
	if s == nil {
		return
	}
	if s.HangKind == component.HangPole {
		l.UpdateSwing(s, dt)
	}
	l.UpdateHangPosition(ctx, s)
}

// UpdateSwing integrates the swing. Gravity pushes the angle away from
// vertical, so the swing is carried out to a limit, where it clamps and
// reverses the incoming velocity with energy loss.
func (l *LedgeSwing) UpdateSwing(s *component.HangSession, dt float64) {
	prev := s.SwingVelocity
	accel := math.Sin(common.DegToRad(s.SwingAngle)) * l.cfg.SwingGravity
	v := prev + accel*dt
	s.SwingAngle += v * dt
	v *= l.cfg.SwingDecay

	limit := l.cfg.MaxSwingAngle
	if math.Abs(s.SwingAngle) >= limit {
		s.SwingAngle = common.Clamp(s.SwingAngle, -limit, limit)
		v = -prev * l.cfg.SwingDecay * l.cfg.SwingBounce
	}
	s.SwingVelocity = v
}

func (l *LedgeSwing) HangPosition(ctx *component.TraversalContext, s *component.HangSession) common.Vec3 {
	if s.HangKind == component.HangPole {
		swing := math.Sin(common.DegToRad(s.SwingAngle)) * l.cfg.SwingRadius
		return s.Anchor.Add(s.Forward.Scale(swing)).Add(common.Vec3{Z: -l.cfg.SwingRadius})
	}
	r := ctx.Locomotion.CapsuleRadius()
	pos := s.Anchor.Sub(s.Normal.Scale(r + l.cfg.HangClearance))
	pos.Z -= l.cfg.HangDrop
	return pos.Add(s.WallNormal.Scale(r + l.cfg.LedgeInset))
}

func (l *LedgeSwing) UpdateHangPosition(ctx *component.TraversalContext, s *component.HangSession) {
	ctx.Pose.SetLocation(l.HangPosition(ctx, s))
}

// Jump swings off a pole or mantles up from a ledge.
func (l *LedgeSwing) Jump(ctx *component.TraversalContext, s *component.HangSession) {
	if s == nil {
		return
	}
	if s.HangKind == component.HangPole {
		l.SwingJump(ctx, s)
		return
	}
	l.MantleUp(ctx, s)
}

func (l *LedgeSwing) SwingMomentum(s *component.HangSession) float64 {
	return math.Abs(s.SwingVelocity) + s.InitialMomentum*l.cfg.InitialMomentumW
}

func (l *LedgeSwing) SwingJump(ctx *component.TraversalContext, s *component.HangSession) {
	momentum := l.SwingMomentum(s)
	launch := s.Forward.Scale(momentum * l.cfg.SwingJumpMult).Add(common.Vec3{Z: l.cfg.SwingJumpUp})
	l.release(ctx)
	ctx.Locomotion.Launch(launch, false, true)
	l.log.Info("swing jump", zap.String("session", s.SessionID.String()), zap.Float64("momentum", momentum))
}

// MantleUp launches toward a point above and behind the ledge lip.
func (l *LedgeSwing) MantleUp(ctx *component.TraversalContext, s *component.HangSession) {
	target := s.Anchor.Sub(s.WallNormal.Scale(l.cfg.MantleForward)).Add(common.Vec3{Z: l.cfg.MantleHeight})
	dir := target.Sub(ctx.Location()).SafeNormal()
	l.release(ctx)
	ctx.Locomotion.Launch(dir.Scale(l.cfg.MantleSpeed), false, true)
	l.log.Info("ledge mantle", zap.String("session", s.SessionID.String()), zap.Stringer("target", target))
}

// Drop lets go without a launch.
func (l *LedgeSwing) Drop(ctx *component.TraversalContext, s *component.HangSession) {
	if s == nil {
		return
	}
	l.release(ctx)
	l.log.Debug("hang dropped", zap.String("session", s.SessionID.String()))
}

func (l *LedgeSwing) release(ctx *component.TraversalContext) {
	ctx.Locomotion.SetMode(component.ModeWalking)
}
