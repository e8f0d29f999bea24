package system

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/parkour/common"
	"github.com/milk9111/parkour/component"
	"github.com/milk9111/parkour/scene"
)

// leaningPole is a thin bar tilted toward +X so an upward probe meets its side.
func (r *rig) leaningPole() component.ActorID {
	return r.scene.AddBar(scene.Bar{Name: "pole", A: common.V3(0, 0, 150), B: common.V3(52, 0, 445), Radius: 5})
}

func TestGrabLedge(t *testing.T) {
	r := newRig(t)
	r.scene.AddBox(sceneBox(100, 300, 0, 250))
	r.airborne(common.V3(0, 0, 150), common.V3(0, 0, -100))

	require.True(t, r.coord.TryGrab())
	s := r.coord.Active().(*component.HangSession)
	assert.Equal(t, component.HangLedge, s.HangKind)
	assert.True(t, s.Anchor.NearlyEqual(common.V3(105, 0, 250), 1e-9), "anchor %v", s.Anchor)
	assert.True(t, s.WallNormal.NearlyEqual(common.V3(-1, 0, 0), 1e-9))
	assert.Equal(t, component.ModeNone, r.body.Mode())
	assert.Equal(t, common.Vec3{}, r.body.Velocity())
	assert.Equal(t, []string{"grab"}, r.fx.sounds)

	// pinned below the lip with the capsule front against the face
	want := common.V3(105-42-5, 0, 250-42-30-70)
	assert.True(t, r.body.Location().NearlyEqual(want, 1e-9), "hang at %v", r.body.Location())
	for i := 0; i < 30; i++ {
		r.step(frame)
	}
	assert.True(t, r.body.Location().NearlyEqual(want, 1e-9))
	assert.True(t, r.coord.IsHanging())
}

func TestGrabRejections(t *testing.T) {
	t.Run("ledge too low", func(t *testing.T) {
		r := newRig(t)
		r.scene.AddBox(sceneBox(100, 300, 0, 140))
		assert.False(t, r.coord.TryGrab())
		assert.Equal(t, component.ModeWalking, r.body.Mode())
	})
	t.Run("sloped top", func(t *testing.T) {
		r := newRig(t)
		// a round beam: the face is found but its top is too steep to hold
		r.scene.AddBar(scene.Bar{A: common.V3(140, -500, 200), B: common.V3(140, 500, 200), Radius: 40})
		r.airborne(common.V3(0, 0, 150), common.Vec3{})
		assert.False(t, r.coord.TryGrab())
	})
	t.Run("nothing in reach", func(t *testing.T) {
		r := newRig(t)
		r.airborne(common.V3(0, 0, 150), common.Vec3{})
		assert.False(t, r.coord.TryGrab())
		assert.Equal(t, component.ModeFalling, r.body.Mode())
	})
	t.Run("flat underside", func(t *testing.T) {
		r := newRig(t)
		r.scene.AddBox(sceneBox(-10, 10, 250, 260))
		r.airborne(common.V3(0, 0, 180), common.Vec3{})
		assert.False(t, r.coord.TryGrab())
	})
}

func TestGrabPole(t *testing.T) {
	r := newRig(t)
	r.leaningPole()
	r.airborne(common.V3(20, 0, 170), common.V3(300, 0, -50))

	require.True(t, r.coord.TryGrab())
	s := r.coord.Active().(*component.HangSession)
	assert.Equal(t, component.HangPole, s.HangKind)
	assert.LessOrEqual(t, math.Abs(s.Normal.Z), 0.3)
	assert.Equal(t, 300.0, s.InitialMomentum)
	assert.InDelta(t, 3, s.SwingVelocity, 1e-9)
	assert.True(t, s.Forward.NearlyEqual(common.V3(1, 0, 0), 1e-9))
	assert.True(t, r.body.Location().NearlyEqual(s.Anchor.Add(common.Vec3{Z: -80}), 1e-9))

	for i := 0; i < 10; i++ {
		r.step(frame)
	}
	assert.NotZero(t, s.SwingAngle)
	assert.Greater(t, r.body.Location().X, s.Anchor.X, "swung forward")
	assert.Equal(t, 1, r.coord.Stats().Hangs)
}

func TestSwingBouncesAtTheLimit(t *testing.T) {
	l := NewLedgeSwing(component.DefaultTuning().Ledge, nil)

	tests := []struct {
		name     string
		angle    float64
		velocity float64
	}{
		{"forward limit", 44, 100},
		{"backward limit", -44, -100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &component.HangSession{HangKind: component.HangPole, SwingAngle: tt.angle, SwingVelocity: tt.velocity}
			l.UpdateSwing(s, 0.1)
			assert.Equal(t, math.Copysign(45, tt.angle), s.SwingAngle)
			assert.Less(t, s.SwingVelocity*tt.velocity, 0.0, "reversed")
			assert.Less(t, math.Abs(s.SwingVelocity), math.Abs(tt.velocity))
		})
	}
}

func TestSwingFallsAwayFromVertical(t *testing.T) {
	l := NewLedgeSwing(component.DefaultTuning().Ledge, nil)

	tests := []struct {
		name  string
		angle float64
	}{
		{"forward", 10},
		{"backward", -10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &component.HangSession{HangKind: component.HangPole, SwingAngle: tt.angle}
			l.UpdateSwing(s, 0.1)
			want := math.Sin(common.DegToRad(tt.angle)) * 20 * 0.1 * 0.95
			assert.InDelta(t, want, s.SwingVelocity, 1e-9)
			assert.Greater(t, s.SwingVelocity*tt.angle, 0.0, "same sign as the angle")
			assert.Greater(t, math.Abs(s.SwingAngle), math.Abs(tt.angle))
		})
	}
}

func TestSwingStaysWithinLimitsAndDecays(t *testing.T) {
	l := NewLedgeSwing(component.DefaultTuning().Ledge, nil)
	s := &component.HangSession{HangKind: component.HangPole, SwingVelocity: 45}

	peak := 0.0
	for i := 0; i < 600; i++ {
		l.UpdateSwing(s, frame)
		require.LessOrEqual(t, math.Abs(s.SwingAngle), 45.0)
		peak = math.Max(peak, math.Abs(s.SwingAngle))
	}
	assert.Greater(t, peak, 0.0)
	assert.Less(t, math.Abs(s.SwingVelocity), 45.0)
}

func TestHangJumps(t *testing.T) {
	t.Run("ledge mantles up and over", func(t *testing.T) {
		r := newRig(t)
		r.scene.AddBox(sceneBox(100, 300, 0, 250))
		r.airborne(common.V3(0, 0, 150), common.Vec3{})
		require.True(t, r.coord.TryGrab())

		require.True(t, r.coord.Jump(false))
		assert.Nil(t, r.coord.Active())
		v := r.body.Velocity()
		assert.InDelta(t, 600, v.Length(), 1e-6)
		assert.Greater(t, v.X, 0.0)
		assert.Greater(t, v.Z, v.X)
		assert.Equal(t, component.ModeFalling, r.body.Mode())
		assert.True(t, r.coord.CanJump(), "hang jumps skip the cooldown")
	})
	t.Run("pole swing jump", func(t *testing.T) {
		r := newRig(t)
		r.leaningPole()
		r.airborne(common.V3(20, 0, 170), common.V3(300, 0, 0))
		require.True(t, r.coord.TryGrab())
		s := r.coord.Active().(*component.HangSession)

		momentum := r.coord.Ledge.SwingMomentum(s)
		assert.InDelta(t, 3+150, momentum, 1e-9)
		require.True(t, r.coord.Jump(false))
		assert.Equal(t, common.V3(2*momentum, 0, 400), r.body.Velocity())
		assert.Equal(t, component.ModeFalling, r.body.Mode())
		assert.Equal(t, 1, r.coord.Stats().Jumps)
	})
}

func TestDrop(t *testing.T) {
	r := newRig(t)
	r.scene.AddBox(sceneBox(100, 300, 0, 250))
	r.airborne(common.V3(0, 0, 150), common.Vec3{})
	require.True(t, r.coord.TryGrab())

	r.coord.Drop()
	assert.Nil(t, r.coord.Active())
	r.runUntil(60, func() bool { return r.body.IsGrounded() && r.body.Location().Z < 97 })
	assert.InDelta(t, 96, r.body.Location().Z, 1e-6)
	assert.Less(t, r.body.Location().X, 100.0)
}
