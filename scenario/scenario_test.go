package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/milk9111/parkour/common"
	"github.com/milk9111/parkour/component"
	"github.com/milk9111/parkour/prefabs"
)

func TestCoursesMeetExpectations(t *testing.T) {
	names, err := prefabs.Courses()
	require.NoError(t, err)
	require.NotEmpty(t, names)

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			course, err := prefabs.LoadCourse(name)
			require.NoError(t, err)

			res, err := RunCourse(name, Options{}, zaptest.NewLogger(t))
			require.NoError(t, err)
			assert.Equal(t, course.Frames, res.Frames)
			assert.NoError(t, res.Check(course.Expect))
		})
	}
}

func TestRunsAreDeterministic(t *testing.T) {
	first, err := RunCourse("wallrun", Options{}, nil)
	require.NoError(t, err)
	second, err := RunCourse("wallrun", Options{}, nil)
	require.NoError(t, err)

	assert.Equal(t, first.Checksum, second.Checksum)
	assert.Equal(t, first.Final, second.Final)
	assert.Equal(t, first.Stats, second.Stats)
}

func TestVaultCoursePlaysMontageSounds(t *testing.T) {
	res, err := RunCourse("vault", Options{}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.Equal(t, 1, res.Sounds["vault_step"])
	assert.Equal(t, 2, res.Sounds["climb_grip"])
	assert.Equal(t, 2, res.Sounds[component.DefaultTuning().Vault.VaultStartSound])
}

func TestCheckReportsShortfalls(t *testing.T) {
	res := Result{Course: "x"}
	res.Stats.Vaults = 1

	assert.NoError(t, res.Check(prefabs.ExpectSpec{Vaults: 1}))
	err := res.Check(prefabs.ExpectSpec{Vaults: 2, Hangs: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vaults 1, want at least 2")
	assert.Contains(t, err.Error(), "hangs 0, want at least 1")
}

func flatCourse() prefabs.CourseSpec {
	return prefabs.CourseSpec{
		Name:   "flat",
		Frames: 60,
		Start:  prefabs.StartSpec{Location: common.V3(0, 0, 96)},
		Shapes: []prefabs.ShapeSpec{{
			Name: "floor",
			Kind: "box",
			Spec: map[string]any{
				"min": map[string]any{"x": -5000, "y": -5000, "z": -100},
				"max": map[string]any{"x": 5000, "y": 5000, "z": 0},
			},
		}},
	}
}

func newFlatRunner(t *testing.T) *Runner {
	t.Helper()
	r, err := NewRunner(Config{Course: flatCourse(), Tuning: component.DefaultTuning()}, zaptest.NewLogger(t))
	require.NoError(t, err)
	return r
}

func TestScriptDrivesInput(t *testing.T) {
	r := newFlatRunner(t)
	script, err := CompileScript("inline", []byte(`
update := func(engine, state) {
	if is_undefined(state.seen) {
		state.seen = 0
	}
	state.seen = state.seen + 1
	engine.move(0, 1)
	if engine.frame == 2 {
		engine.jump()
	}
	if engine.frame == 5 {
		engine.log("airborne", engine.position())
		engine.finish()
	}
}
`), zaptest.NewLogger(t))
	require.NoError(t, err)

	res, err := Run(r, script, 0)
	require.NoError(t, err)

	assert.True(t, script.Finished())
	assert.Equal(t, 5, res.Frames)
	assert.Equal(t, 1, res.Stats.Jumps)
	assert.Equal(t, component.ModeFalling, res.Mode)
	assert.InDelta(t, 0, res.Final.X, 1e-9)
	assert.InDelta(t, 50, res.Final.Y, 1e-6)
	assert.Greater(t, res.Final.Z, 96.0)
}

func TestScriptLookAimsTheView(t *testing.T) {
	r := newFlatRunner(t)
	script, err := CompileScript("look", []byte(`
update := func(engine, state) {
	if engine.frame == 0 {
		engine.look(-30, 90)
	}
}
`), nil)
	require.NoError(t, err)

	loc, rot := r.ViewPoint()
	assert.Equal(t, common.V3(0, 0, 96+eyeHeight), loc)
	assert.Equal(t, common.Rotator{}, rot)

	_, err = Run(r, script, 3)
	require.NoError(t, err)
	_, rot = r.ViewPoint()
	assert.Equal(t, common.Rotator{Pitch: -30, Yaw: 90}, rot)
}

func TestScriptErrors(t *testing.T) {
	_, err := CompileScript("broken", []byte(`update := func(engine, state) {`), nil)
	assert.Error(t, err)

	_, err = CompileScript("no_update", []byte(`x := 1`), nil)
	assert.Error(t, err)

	r := newFlatRunner(t)
	script, err := CompileScript("bad_call", []byte(`
update := func(engine, state) {
	engine.missing()
}
`), nil)
	require.NoError(t, err)
	_, err = script.Update(r)
	assert.ErrorContains(t, err, "bad_call")

	_, err = LoadScript("", nil)
	assert.Error(t, err)
}

func TestRunnerRejectsBadCourse(t *testing.T) {
	course := flatCourse()
	course.Shapes[0].Kind = "cone"
	_, err := NewRunner(Config{Course: course, Tuning: component.DefaultTuning()}, nil)
	assert.ErrorIs(t, err, prefabs.ErrUnknownShape)
}

func TestStartAirborne(t *testing.T) {
	course := flatCourse()
	course.Start = prefabs.StartSpec{Location: common.V3(0, 0, 300), Yaw: 90, Airborne: true}
	r, err := NewRunner(Config{Course: course, Tuning: component.DefaultTuning()}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.Equal(t, component.ModeFalling, r.Body.Mode())
	assert.Equal(t, 90.0, r.Body.Rotation().Yaw)
	for i := 0; i < 120 && !r.Body.IsGrounded(); i++ {
		r.Step(Input{})
	}
	assert.True(t, r.Body.IsGrounded())
	assert.InDelta(t, 96, r.Body.Location().Z, 1e-6)
}

func TestEffectsTrackLoops(t *testing.T) {
	fx := NewEffects(zaptest.NewLogger(t))
	a := fx.StartLoop("pull")
	b := fx.StartLoop("wind")
	assert.NotEqual(t, a, b)
	fx.StopLoop(a)
	fx.StopLoop(a)
	assert.Equal(t, []string{"wind"}, fx.Loops())

	fx.SetTether(true, common.V3(1, 2, 3))
	assert.True(t, fx.Tether)
	assert.Equal(t, common.V3(1, 2, 3), fx.Anchor)
}
