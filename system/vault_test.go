package system

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/parkour/common"
	"github.com/milk9111/parkour/component"
	"github.com/milk9111/parkour/scene"
)

func TestShortVaultOverFortyUnitWall(t *testing.T) {
	r := newRig(t)
	r.wall(100, 120, 40)

	require.True(t, r.coord.TryVault(false))
	s, ok := r.coord.Active().(*component.VaultSession)
	require.True(t, ok)
	assert.Equal(t, component.ShortVault, s.VaultKind)
	assert.InDelta(t, 40, s.Obstacle.Height, 1e-9)
	assert.False(t, s.Obstacle.IsThick)
	assert.False(t, r.body.CollisionEnabled())
	assert.Equal(t, component.ModeFlying, r.body.Mode())

	// beyond the wall by radius + 80 from the inset top, standing on the floor
	want := common.V3(100+10+42+80, 0, 96)
	require.True(t, s.Target.NearlyEqual(want, 1e-9), "target %v", s.Target)
	assert.InDelta(t, 1.0, s.Duration, 1e-9)

	alphas := []float64{s.Alpha}
	r.runUntil(240, func() bool {
		alphas = append(alphas, s.Alpha)
		return !r.coord.IsVaulting()
	})

	for i := 1; i < len(alphas); i++ {
		assert.GreaterOrEqual(t, alphas[i], alphas[i-1], "progress decreased at tick %d", i)
	}
	assert.Equal(t, 1.0, s.Alpha)
	assert.True(t, s.Done)
	assert.True(t, r.body.Location().NearlyEqual(want, 1e-6), "final %v", r.body.Location())
	assert.True(t, r.body.CollisionEnabled())
	assert.Equal(t, component.ModeWalking, r.body.Mode())
	assert.Nil(t, r.coord.Active())
	assert.Zero(t, r.clock.Len(), "watchdog cancelled")
}

func TestVaultHeightGate(t *testing.T) {
	tests := []struct {
		height float64
		accept bool
	}{
		{1, false},
		{1.9, false},
		{2.5, true},
		{40, true},
		{120, true},
		{215, true},
		{217, false},
		{260, false},
	}

	for _, tt := range tests {
		for _, platform := range []bool{false, true} {
			name := "wall"
			if platform {
				name = "platform"
			}
			t.Run(name, func(t *testing.T) {
				r := newRig(t)
				r.wall(100, 120, tt.height)

				hit := component.Hit{
					Point:    common.V3(100, 0, tt.height/2),
					Normal:   common.V3(-1, 0, 0),
					Blocking: true,
				}
				if platform {
					hit = component.Hit{Point: common.V3(110, 0, tt.height), Normal: common.Up, Blocking: true}
				}
				o, ok := r.coord.Vault.AnalyzeObstacle(r.ctx, hit)
				assert.Equal(t, tt.accept, ok, "height %v", tt.height)
				if ok {
					assert.InDelta(t, tt.height, o.Height, 1e-9)
					assert.Equal(t, !platform, o.IsWall)
				}
			})
		}
	}
}

func TestThickWallOnlyClimbs(t *testing.T) {
	tests := []struct {
		name   string
		depth  float64
		height float64
		behind *scene.Box
		want   component.VaultKind
	}{
		{"thin short", 20, 30, nil, component.ShortVault},
		{"thin tall", 20, 120, nil, component.TallVault},
		{"thick short", 100, 30, nil, component.ShortClimb},
		{"thick tall", 100, 120, nil, component.TallClimb},
		{"thick at the limit", 100, 210, nil, component.TallClimb},
		{"thin tall over a lower block", 20, 120, &scene.Box{Name: "block", Min: common.V3(150, -500, 0), Max: common.V3(300, 500, 80)}, component.TallClimb},
		{"thin short over a step", 20, 30, &scene.Box{Name: "step", Min: common.V3(150, -500, 0), Max: common.V3(300, 500, 3)}, component.ShortVault},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRig(t)
			r.wall(100, 100+tt.depth, tt.height)
			if tt.behind != nil {
				r.scene.AddBox(*tt.behind)
			}

			require.True(t, r.coord.TryVault(false))
			s := r.coord.Active().(*component.VaultSession)
			assert.Equal(t, tt.want, s.VaultKind)
			assert.Equal(t, tt.want.IsClimb(), s.Obstacle.IsThick)
		})
	}
}

func TestClimbEndsOnTop(t *testing.T) {
	r := newRig(t)
	r.wall(100, 300, 120)

	require.True(t, r.coord.TryVault(false))
	s := r.coord.Active().(*component.VaultSession)
	require.Equal(t, component.TallClimb, s.VaultKind)
	want := common.V3(110+42+40, 0, 120+96+5)
	require.True(t, s.Target.NearlyEqual(want, 1e-9), "target %v", s.Target)

	r.runUntil(240, func() bool { return !r.coord.IsVaulting() })
	assert.InDelta(t, want.X, r.body.Location().X, 1e-6)
	assert.Equal(t, component.ModeWalking, r.body.Mode())

	// the character settles onto the top after the blend
	r.runUntil(60, func() bool { return r.body.IsGrounded() && r.body.Location().Z < 120+96+0.5 })
	assert.InDelta(t, 216, r.body.Location().Z, 1e-6)
}

func TestSprintExtendsTraceDistance(t *testing.T) {
	r := newRig(t)
	r.wall(250, 270, 40)

	assert.False(t, r.coord.TryVault(false))
	assert.True(t, r.coord.TryVault(true))
}

func TestVaultRejections(t *testing.T) {
	t.Run("airborne", func(t *testing.T) {
		r := newRig(t)
		r.wall(100, 120, 40)
		r.airborne(common.V3(0, 0, 96), common.Vec3{})
		assert.False(t, r.coord.TryVault(false))
	})
	t.Run("nothing ahead", func(t *testing.T) {
		r := newRig(t)
		assert.False(t, r.coord.TryVault(false))
		assert.Equal(t, component.ModeWalking, r.body.Mode())
		assert.True(t, r.body.CollisionEnabled())
	})
	t.Run("landing blocked", func(t *testing.T) {
		r := newRig(t)
		r.wall(100, 120, 40)
		r.scene.AddBox(sceneBox(150, 250, 60, 300))
		assert.False(t, r.coord.TryVault(false))
		assert.Nil(t, r.coord.Active())
	})
	t.Run("taller than the probe", func(t *testing.T) {
		r := newRig(t)
		r.wall(100, 120, 400)
		assert.False(t, r.coord.TryVault(false))
	})
}

func TestMontageNotifyFinishesVaultEarly(t *testing.T) {
	r := newRig(t)
	r.wall(100, 120, 40)
	r.anim.Add(montage("vault_short", 24, 24, 12))

	require.True(t, r.coord.TryVault(false))
	s := r.coord.Active().(*component.VaultSession)

	frames := r.runUntil(240, func() bool { return !r.coord.IsVaulting() })
	assert.Less(t, frames, 40, "ended by the notify at half time")
	assert.True(t, s.Done)
	assert.Equal(t, 1.0, s.Alpha)
	assert.True(t, r.body.CollisionEnabled())
	assert.True(t, r.body.Location().NearlyEqual(s.Target, 1e-6))
}

func TestVaultWatchdogWithoutAnimation(t *testing.T) {
	r := newRig(t)
	r.wall(100, 120, 40)
	r.ctx.Animator = nil

	require.True(t, r.coord.TryVault(false))
	s := r.coord.Active().(*component.VaultSession)
	assert.Equal(t, component.DefaultTuning().Vault.MinDuration, s.Duration)
	require.NotZero(t, s.Watchdog)

	// ticks stall; only the clock moves
	r.clock.Advance(1.4)
	assert.True(t, r.coord.IsVaulting())
	r.clock.Advance(0.2)
	assert.False(t, r.coord.IsVaulting())
	assert.True(t, r.body.CollisionEnabled())
	assert.Equal(t, component.ModeWalking, r.body.Mode())
}

func TestFinishVaultIsIdempotent(t *testing.T) {
	r := newRig(t)
	r.wall(100, 120, 40)
	require.True(t, r.coord.TryVault(false))
	s := r.coord.Active().(*component.VaultSession)

	r.coord.FinishVault()
	r.coord.FinishVault()
	r.coord.Vault.Finish(r.ctx, s)
	assert.Equal(t, 1, r.coord.Stats().Completed)

	// a stale notify for the finished session must not touch a new one
	r.body.SetLocation(common.V3(0, 0, 96))
	r.body.SetRotation(common.Rotator{})
	require.True(t, r.coord.TryVault(false))
	second := r.coord.Active()
	r.coord.finishVaultSession(s.SessionID)
	assert.Equal(t, second, r.coord.Active())
}
