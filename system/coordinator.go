package system

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/milk9111/parkour/component"
)

// Stats counts session activations by kind.
type Stats struct {
	Vaults    int
	Climbs    int
	WallRuns  int
	Grapples  int
	Mantles   int
	Hangs     int
	Jumps     int
	Rejected  int
	Completed int
}

// Coordinator owns the single active traversal session for one character
// and routes input and collision events to the abilities.
type Coordinator struct {
	ctx    *component.TraversalContext
	tuning component.Tuning
	log    *zap.Logger
	err    error

	Vault   *VaultClimb
	WallRun *WallRun
	Grapple *GrapplingHook
	Ledge   *LedgeSwing

	active component.Session

	canJump      bool
	jumpCooldown component.TimerHandle
	coyote       float64

	stats Stats
}

// NewCoordinator validates ctx once. A coordinator with missing collaborators
// logs the problem and stays inert: every request is refused.
func NewCoordinator(ctx *component.TraversalContext, tuning component.Tuning, log *zap.Logger) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Coordinator{
		ctx:     ctx,
		tuning:  tuning,
		log:     log,
		Vault:   NewVaultClimb(tuning.Vault, log.Named("vault")),
		WallRun: NewWallRun(tuning.WallRun, log.Named("wallrun")),
		Grapple: NewGrapplingHook(tuning.Grapple, log.Named("grapple")),
		Ledge:   NewLedgeSwing(tuning.Ledge, log.Named("ledge")),
		canJump: true,
	}
	if err := ctx.Validate(); err != nil {
		c.err = err
		log.Error("traversal coordinator is inert", zap.Error(err))
	}
	return c
}

// Err reports the configuration error that made the coordinator inert.
func (c *Coordinator) Err() error { return c.err }

func (c *Coordinator) Inert() bool { return c.err != nil }

// SetTuning swaps constants for subsequent operations; live sessions keep
// the values they were created with where they copied them.
func (c *Coordinator) SetTuning(t component.Tuning) {
	c.tuning = t
	c.Vault.SetTuning(t.Vault)
	c.WallRun.SetTuning(t.WallRun)
	c.Grapple.SetTuning(t.Grapple)
	c.Ledge.SetTuning(t.Ledge)
}

func (c *Coordinator) Tuning() component.Tuning { return c.tuning }
func (c *Coordinator) Stats() Stats             { return c.stats }

// Active returns the live session, nil when default locomotion is in control.
func (c *Coordinator) Active() component.Session { return c.active }

func (c *Coordinator) ActiveKind() component.SessionKind { return component.KindOf(c.active) }

func (c *Coordinator) IsVaulting() bool { return c.ActiveKind() == component.SessionVault }

func (c *Coordinator) IsWallRunning() bool { return c.ActiveKind() == component.SessionWallRun }

func (c *Coordinator) IsHanging() bool { return c.ActiveKind() == component.SessionHang }

func (c *Coordinator) IsGrappling() bool {
	g, ok := c.active.(*component.GrappleSession)
	return ok && g.Phase == component.GrapplePulling
}

func (c *Coordinator) IsMantling() bool {
	g, ok := c.active.(*component.GrappleSession)
	return ok && g.Phase == component.GrappleMantling
}

func (c *Coordinator) CameraTilt() float64 { return c.WallRun.Tilt() }

func (c *Coordinator) CanJump() bool { return c.canJump }

func (c *Coordinator) InCoyoteTime() bool { return c.coyote > 0 }

// admit reports whether a new session may start.
func (c *Coordinator) admit(what string) bool {
	if c.err != nil {
		return false
	}
	if c.active != nil {
		c.stats.Rejected++
		c.log.Debug("activation rejected: session active",
			zap.String("request", what),
			zap.Stringer("active", c.active.Kind()),
			zap.String("session", c.active.ID().String()))
		return false
	}
	return true
}

func (c *Coordinator) begin(s component.Session) {
	c.active = s
	c.coyote = 0
}

func (c *Coordinator) end(reason string) {
	if c.active == nil {
		return
	}
	c.log.Debug("session ended",
		zap.Stringer("kind", c.active.Kind()),
		zap.String("session", c.active.ID().String()),
		zap.String("reason", reason))
	c.active = nil
	c.stats.Completed++
}

// owns reports whether id is the live session; stale callbacks are dropped.
func (c *Coordinator) owns(id uuid.UUID) bool {
	return c.active != nil && c.active.ID() == id
}

func (c *Coordinator) TryVault(wasSprinting bool) bool {
	if !c.admit("vault") {
		return false
	}
	s, ok := c.Vault.TryVault(c.ctx, wasSprinting, c.finishVaultSession)
	if !ok {
		return false
	}
	c.begin(s)
	if s.VaultKind.IsClimb() {
		c.stats.Climbs++
	} else {
		c.stats.Vaults++
	}
	return true
}

// FinishVault is the external completion signal for the active vault.
func (c *Coordinator) FinishVault() {
	if s, ok := c.active.(*component.VaultSession); ok {
		c.completeVault(s, "finish")
	}
}

func (c *Coordinator) finishVaultSession(id uuid.UUID) {
	if s, ok := c.active.(*component.VaultSession); ok && c.owns(id) {
		c.completeVault(s, "notify")
	}
}

func (c *Coordinator) completeVault(s *component.VaultSession, reason string) {
	c.Vault.Finish(c.ctx, s)
	c.end(reason)
}

func (c *Coordinator) TryWallRun(hit component.Hit) bool {
	if !c.admit("wallrun") {
		return false
	}
	s, ok := c.WallRun.TryWallRun(c.ctx, hit, c.wallRunTimeout)
	if !ok {
		return false
	}
	c.begin(s)
	c.stats.WallRuns++
	return true
}

func (c *Coordinator) wallRunTimeout(id uuid.UUID) {
	if s, ok := c.active.(*component.WallRunSession); ok && c.owns(id) {
		s.AutoStop = 0
		c.WallRun.Stop(c.ctx, s)
		c.end("timeout")
	}
}

// ResetWallRun hard-resets the wall run, ending an active run.
func (c *Coordinator) ResetWallRun() {
	if c.err != nil {
		return
	}
	s, running := c.active.(*component.WallRunSession)
	if !running {
		s = nil
	}
	c.WallRun.Reset(c.ctx, s)
	if running {
		c.end("reset")
	}
}

func (c *Coordinator) TryShoot() bool {
	if !c.admit("grapple") {
		return false
	}
	s, ok := c.Grapple.TryShoot(c.ctx)
	if !ok {
		return false
	}
	c.begin(s)
	c.stats.Grapples++
	return true
}

func (c *Coordinator) ReleaseGrapple() {
	if s, ok := c.active.(*component.GrappleSession); ok {
		c.Grapple.Release(c.ctx, s)
		c.end("release")
	}
}

func (c *Coordinator) TryGrab() bool {
	if !c.admit("grab") {
		return false
	}
	s, ok := c.Ledge.TryGrab(c.ctx)
	if !ok {
		return false
	}
	c.begin(s)
	c.stats.Hangs++
	return true
}

func (c *Coordinator) Drop() {
	if s, ok := c.active.(*component.HangSession); ok {
		c.Ledge.Drop(c.ctx, s)
		c.end("drop")
	}
}

// Jump routes the jump input: wall-run jump, hang jump, vault attempt, then
// the default jump gated by the cooldown and coyote time.
func (c *Coordinator) Jump(sprinting bool) bool {
	if c.err != nil {
		return false
	}
	switch s := c.active.(type) {
	case *component.WallRunSession:
		c.WallRun.Jump(c.ctx, s)
		c.end("jump")
		c.armJumpCooldown(c.tuning.Character.JumpCooldown)
		c.stats.Jumps++
		return true
	case *component.HangSession:
		c.Ledge.Jump(c.ctx, s)
		c.end("jump")
		c.stats.Jumps++
		return true
	case nil:
		if c.TryVault(sprinting) {
			return true
		}
	default:
		return false
	}

	if !c.canJump {
		c.log.Debug("jump rejected: cooldown")
		return false
	}
	if !c.ctx.Locomotion.IsGrounded() && c.coyote <= 0 {
		c.log.Debug("jump rejected: airborne")
		return false
	}
	c.ctx.Locomotion.Jump()
	c.coyote = 0
	cooldown := c.tuning.Character.JumpCooldown
	if sprinting {
		cooldown *= c.tuning.Character.SprintCooldownMult
	}
	c.startJumpCooldown(cooldown)
	c.stats.Jumps++
	return true
}

func (c *Coordinator) startJumpCooldown(d float64) {
	c.canJump = false
	c.armJumpCooldown(d)
}

// armJumpCooldown replaces the pending re-enable timer without touching canJump.
func (c *Coordinator) armJumpCooldown(d float64) {
	c.ctx.Scheduler.Cancel(c.jumpCooldown)
	var h component.TimerHandle
	h = c.ctx.Scheduler.After(d, func() {
		if c.jumpCooldown == h {
			c.canJump = true
			c.jumpCooldown = 0
		}
	})
	c.jumpCooldown = h
}

// OnHit routes a blocking collision: a grapple pull striking a static
// surface mantles, otherwise an idle character tries to wall run.
func (c *Coordinator) OnHit(hit component.Hit) {
	if c.err != nil || !hit.Blocking {
		return
	}
	switch s := c.active.(type) {
	case *component.GrappleSession:
		if s.Phase == component.GrapplePulling && !hit.Simulated {
			if !c.Grapple.ClimbAtEnd(c.ctx, s) {
				c.end("release")
			} else {
				c.stats.Mantles++
			}
		}
	case nil:
		c.TryWallRun(hit)
	}
}

func (c *Coordinator) OnLanded(component.Hit) {
	c.ResetWallRun()
}

// OnModeChanged opens the coyote window when default locomotion walks off
// an edge and closes it once grounded or flying.
func (c *Coordinator) OnModeChanged(prev, next component.MovementMode, velocityZ float64) {
	switch next {
	case component.ModeFalling:
		if (prev == component.ModeWalking || prev == component.ModeFlying) && velocityZ <= 0 && c.active == nil {
			c.coyote = c.tuning.Character.CoyoteTime
		}
	case component.ModeWalking, component.ModeFlying:
		c.coyote = 0
	}
}

// Tick advances the coyote window, the camera tilt and the active session.
func (c *Coordinator) Tick(dt float64) {
	if c.err != nil {
		return
	}
	if c.coyote > 0 {
		c.coyote -= dt
		if c.coyote < 0 {
			c.coyote = 0
		}
	}
	c.WallRun.UpdateTilt(dt)

	switch s := c.active.(type) {
	case *component.VaultSession:
		if c.Vault.Tick(c.ctx, s, dt) {
			c.completeVault(s, "complete")
		}
	case *component.WallRunSession:
		if c.WallRun.Tick(c.ctx, s, dt) {
			c.WallRun.Stop(c.ctx, s)
			c.end("speed")
		}
	case *component.GrappleSession:
		wasPulling := s.Phase == component.GrapplePulling
		ended := c.Grapple.Tick(c.ctx, s, dt)
		if wasPulling && s.Phase == component.GrappleMantling {
			c.stats.Mantles++
		}
		if ended {
			c.end("grapple")
		}
	case *component.HangSession:
		c.Ledge.Tick(c.ctx, s, dt)
	}
}
