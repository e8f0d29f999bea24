package system

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/milk9111/parkour/common"
	"github.com/milk9111/parkour/component"
)

func TestInertWithoutCollaborators(t *testing.T) {
	r := newRig(t)
	ctx := &component.TraversalContext{Locomotion: r.body, Pose: r.body}
	c := NewCoordinator(ctx, component.DefaultTuning(), zaptest.NewLogger(t))

	require.True(t, c.Inert())
	assert.ErrorIs(t, c.Err(), component.ErrMissingScene)
	assert.ErrorIs(t, c.Err(), component.ErrMissingScheduler)
	assert.NotErrorIs(t, c.Err(), component.ErrMissingPose)

	assert.False(t, c.TryVault(false))
	assert.False(t, c.TryShoot())
	assert.False(t, c.TryGrab())
	assert.False(t, c.TryWallRun(component.Hit{Blocking: true}))
	assert.False(t, c.Jump(false))
	c.OnHit(component.Hit{Blocking: true})
	c.OnLanded(component.Hit{})
	c.ResetWallRun()
	c.Tick(frame)
	assert.Nil(t, c.Active())
	assert.Equal(t, Stats{}, c.Stats())
}

func TestNilContextIsInert(t *testing.T) {
	c := NewCoordinator(nil, component.DefaultTuning(), nil)
	assert.ErrorIs(t, c.Err(), component.ErrMissingLocomotion)
	assert.False(t, c.Jump(true))
}

func TestOneSessionAtATime(t *testing.T) {
	r := newRig(t)
	r.wall(100, 120, 40)
	require.True(t, r.coord.TryVault(false))

	assert.False(t, r.coord.TryShoot())
	assert.False(t, r.coord.TryGrab())
	assert.False(t, r.coord.TryVault(false))
	assert.False(t, r.coord.Jump(false), "vaulting ignores jump")
	assert.True(t, r.coord.IsVaulting())
	assert.Equal(t, 3, r.coord.Stats().Rejected)

	// a refused grapple does not touch the character
	assert.Equal(t, 96.0, r.body.CapsuleHalfHeight())
	assert.False(t, r.fx.tether)
}

func TestHitsWhileHangingDoNotStartWallRuns(t *testing.T) {
	r := newRig(t)
	wall := r.sideWall(-100, true)
	r.scene.AddBox(sceneBox(100, 300, 0, 250))
	r.airborne(common.V3(0, 0, 150), common.Vec3{})
	require.True(t, r.coord.TryGrab())

	r.body.SetVelocity(common.V3(600, 0, 0))
	r.coord.OnHit(sideHit(wall, common.V3(0, 1, 0)))
	assert.True(t, r.coord.IsHanging())
	assert.Zero(t, r.coord.Stats().WallRuns)
}

func TestJumpCooldown(t *testing.T) {
	tests := []struct {
		name      string
		sprinting bool
		cooldown  float64
	}{
		{"walking", false, 1},
		{"sprinting", true, 1.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRig(t)
			require.True(t, r.coord.Jump(tt.sprinting))
			assert.Equal(t, 520.0, r.body.Velocity().Z)
			assert.False(t, r.coord.CanJump())

			r.body.SetMode(component.ModeWalking)
			assert.False(t, r.coord.Jump(tt.sprinting), "cooling down")

			r.clock.Advance(tt.cooldown - 0.05)
			assert.False(t, r.coord.CanJump())
			r.clock.Advance(0.1)
			assert.True(t, r.coord.CanJump())
			assert.True(t, r.coord.Jump(tt.sprinting))
			assert.Equal(t, 2, r.coord.Stats().Jumps)
		})
	}
}

func TestJumpIntoWallVaults(t *testing.T) {
	r := newRig(t)
	r.wall(100, 120, 40)

	require.True(t, r.coord.Jump(false))
	assert.True(t, r.coord.IsVaulting())
	assert.Zero(t, r.coord.Stats().Jumps)
	assert.Equal(t, 1, r.coord.Stats().Vaults)
	assert.True(t, r.coord.CanJump())
}

func TestAirborneJumpNeedsCoyoteTime(t *testing.T) {
	t.Run("walked off an edge", func(t *testing.T) {
		r := newRig(t)
		r.airborne(common.V3(0, 0, 400), common.Vec3{})
		require.True(t, r.coord.InCoyoteTime())
		r.coord.Tick(0.1)
		assert.True(t, r.coord.Jump(false))
		assert.False(t, r.coord.InCoyoteTime(), "consumed")
	})
	t.Run("window expired", func(t *testing.T) {
		r := newRig(t)
		r.airborne(common.V3(0, 0, 400), common.Vec3{})
		r.coord.Tick(0.2)
		assert.False(t, r.coord.InCoyoteTime())
		assert.False(t, r.coord.Jump(false))
	})
	t.Run("rising", func(t *testing.T) {
		r := newRig(t)
		r.airborne(common.V3(0, 0, 400), common.V3(0, 0, 200))
		assert.False(t, r.coord.InCoyoteTime())
		assert.False(t, r.coord.Jump(false))
	})
	t.Run("closed on landing", func(t *testing.T) {
		r := newRig(t)
		r.airborne(common.V3(0, 0, 100), common.Vec3{})
		require.True(t, r.coord.InCoyoteTime())
		r.runUntil(30, r.body.IsGrounded)
		assert.False(t, r.coord.InCoyoteTime())
	})
	t.Run("not after a session", func(t *testing.T) {
		r := newRig(t)
		r.coord.OnModeChanged(component.ModeWalking, component.ModeFalling, 0)
		assert.True(t, r.coord.InCoyoteTime())
		r.coord.OnModeChanged(component.ModeFalling, component.ModeFlying, 0)
		assert.False(t, r.coord.InCoyoteTime())

		r.wall(100, 120, 40)
		require.True(t, r.coord.TryVault(false))
		r.coord.OnModeChanged(component.ModeFlying, component.ModeFalling, 0)
		assert.False(t, r.coord.InCoyoteTime())
	})
}

func TestWallRunJumpRestartsCooldown(t *testing.T) {
	r := newRig(t)
	wall := r.sideWall(-100, true)
	require.True(t, r.coord.Jump(false))

	r.clock.Advance(0.5)
	r.airborne(common.V3(0, 0, 400), common.V3(600, 0, 0))
	require.True(t, r.coord.TryWallRun(sideHit(wall, common.V3(0, 1, 0))))
	require.True(t, r.coord.Jump(false))

	r.clock.Advance(0.6)
	assert.False(t, r.coord.CanJump(), "the first cooldown was replaced")
	r.clock.Advance(0.5)
	assert.True(t, r.coord.CanJump())
}

func TestWallRunJumpKeepsJumpAvailable(t *testing.T) {
	r := newRig(t)
	wall := r.sideWall(-100, true)
	r.airborne(common.V3(0, 0, 400), common.V3(600, 0, 0))
	require.True(t, r.coord.CanJump())
	require.True(t, r.coord.TryWallRun(sideHit(wall, common.V3(0, 1, 0))))

	require.True(t, r.coord.Jump(false))
	assert.Nil(t, r.coord.Active())
	assert.True(t, r.coord.CanJump())
	r.clock.Advance(1.1)
	assert.True(t, r.coord.CanJump())
}

func TestLandingResetsWallRun(t *testing.T) {
	r := newRig(t)
	wall := r.sideWall(-100, true)
	r.airborne(common.V3(0, 0, 400), common.V3(600, 0, 0))
	require.True(t, r.coord.TryWallRun(sideHit(wall, common.V3(0, 1, 0))))

	r.coord.OnLanded(component.Hit{Normal: common.Up, Blocking: true})
	assert.Nil(t, r.coord.Active())
	assert.Zero(t, r.coord.WallRun.LastWall())
	assert.Equal(t, component.WallSideNone, r.coord.WallRun.Side())
	assert.Zero(t, r.clock.Len())
}

func TestSetTuningAppliesToNextActivation(t *testing.T) {
	r := newRig(t)
	r.wall(100, 120, 40)
	tuning := component.DefaultTuning()
	tuning.Vault.MaxTraverseHeight = 30
	tuning.Character.JumpCooldown = 0.25
	r.coord.SetTuning(tuning)

	assert.False(t, r.coord.TryVault(false), "wall is now too tall")
	assert.Equal(t, 30.0, r.coord.Tuning().Vault.MaxTraverseHeight)

	require.True(t, r.coord.Jump(false))
	r.clock.Advance(0.25)
	assert.True(t, r.coord.CanJump())
}
