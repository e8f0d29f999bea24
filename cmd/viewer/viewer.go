package main

import (
	"fmt"
	"path/filepath"
	"slices"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"go.uber.org/zap"

	"github.com/milk9111/parkour/common"
	"github.com/milk9111/parkour/component"
	"github.com/milk9111/parkour/prefabs"
	"github.com/milk9111/parkour/scenario"
)

const (
	baseWidth  = 1280
	baseHeight = 720

	lookRate = 90.0
)

// Viewer plays a course interactively in a side view (X right, Z up).
type Viewer struct {
	log *zap.Logger

	courses    []string
	course     int
	tuningFile string
	tuning     component.Tuning

	runner   *scenario.Runner
	script   *scenario.Script
	autoplay bool

	look    common.Rotator
	lookSet bool

	watcher *prefabs.Watcher
	status  string
	paused  bool
}

func NewViewer(course, tuningFile string, autoplay bool, log *zap.Logger) (*Viewer, error) {
	courses, err := prefabs.Courses()
	if err != nil {
		return nil, err
	}
	idx := slices.Index(courses, course)
	if idx < 0 {
		return nil, fmt.Errorf("unknown course %q (have %v)", course, courses)
	}
	v := &Viewer{
		log:        log,
		courses:    courses,
		course:     idx,
		tuningFile: tuningFile,
		autoplay:   autoplay,
	}
	if v.tuning, err = prefabs.LoadTuning(tuningFile); err != nil {
		log.Warn("tuning load failed, using defaults", zap.Error(err))
	}
	if err := v.restart(); err != nil {
		return nil, err
	}
	return v, nil
}

// Watch starts hot reload of prefabs under dir.
func (v *Viewer) Watch(dir string) error {
	w, err := prefabs.NewWatcher(dir, filepath.Join(dir, "scripts"))
	if err != nil {
		return err
	}
	v.watcher = w
	return nil
}

func (v *Viewer) Close() {
	if v.watcher != nil {
		_ = v.watcher.Close()
	}
}

func (v *Viewer) restart() error {
	name := v.courses[v.course]
	course, err := prefabs.LoadCourse(name)
	if err != nil {
		return err
	}
	montages, err := prefabs.LoadMontages()
	if err != nil {
		return err
	}
	runner, err := scenario.NewRunner(scenario.Config{Course: course, Tuning: v.tuning, Montages: montages}, v.log)
	if err != nil {
		return err
	}
	v.runner = runner
	v.script = nil
	if v.autoplay {
		if v.script, err = scenario.LoadScript(course.Script, v.log); err != nil {
			return err
		}
	}
	v.lookSet = false
	v.status = fmt.Sprintf("loaded %s", name)
	return nil
}

func (v *Viewer) Update() error {
	v.pollChanges()

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		return ebiten.Termination
	case inpututil.IsKeyJustPressed(ebiten.KeyTab):
		v.course = (v.course + 1) % len(v.courses)
		return v.restartOrReport()
	case inpututil.IsKeyJustPressed(ebiten.KeyEnter):
		return v.restartOrReport()
	case inpututil.IsKeyJustPressed(ebiten.KeyP):
		v.autoplay = !v.autoplay
		return v.restartOrReport()
	case inpututil.IsKeyJustPressed(ebiten.KeyBackquote):
		v.paused = !v.paused
	}
	if v.paused && !inpututil.IsKeyJustPressed(ebiten.KeyPeriod) {
		return nil
	}

	in, err := v.input()
	if err != nil {
		v.status = err.Error()
		v.script = nil
		return nil
	}
	v.runner.Step(in)
	return nil
}

func (v *Viewer) restartOrReport() error {
	if err := v.restart(); err != nil {
		v.status = err.Error()
		v.log.Warn("restart failed", zap.Error(err))
	}
	return nil
}

func (v *Viewer) input() (scenario.Input, error) {
	if v.script != nil {
		return v.script.Update(v.runner)
	}

	var in scenario.Input
	if ebiten.IsKeyPressed(ebiten.KeyD) {
		in.Move.X++
	}
	if ebiten.IsKeyPressed(ebiten.KeyA) {
		in.Move.X--
	}
	if ebiten.IsKeyPressed(ebiten.KeyW) {
		in.Move.Y++
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) {
		in.Move.Y--
	}
	in.Sprint = ebiten.IsKeyPressed(ebiten.KeyShift)

	in.Jump = inpututil.IsKeyJustPressed(ebiten.KeySpace)
	in.Vault = inpututil.IsKeyJustPressed(ebiten.KeyV)
	in.Grab = inpututil.IsKeyJustPressed(ebiten.KeyE)
	in.Drop = inpututil.IsKeyJustPressed(ebiten.KeyQ)
	in.Grapple = inpututil.IsKeyJustPressed(ebiten.KeyF)
	in.Release = inpututil.IsKeyJustPressed(ebiten.KeyR)

	step := lookRate * v.runner.DT()
	if !v.lookSet {
		_, v.look = v.runner.ViewPoint()
	}
	turned := false
	for _, k := range []struct {
		key   ebiten.Key
		delta common.Rotator
	}{
		{ebiten.KeyArrowUp, common.Rotator{Pitch: step}},
		{ebiten.KeyArrowDown, common.Rotator{Pitch: -step}},
		{ebiten.KeyArrowLeft, common.Rotator{Yaw: step}},
		{ebiten.KeyArrowRight, common.Rotator{Yaw: -step}},
	} {
		if delta := k.delta; ebiten.IsKeyPressed(k.key) {
			v.look = common.Rotator{
				Pitch: common.Clamp(v.look.Pitch+delta.Pitch, -89, 89),
				Yaw:   common.NormalizeAxis(v.look.Yaw + delta.Yaw),
			}
			turned = true
		}
	}
	if turned || v.lookSet {
		v.lookSet = true
		look := v.look
		in.Look = &look
	}
	return in, nil
}

// pollChanges applies any pending prefab edits without blocking.
func (v *Viewer) pollChanges() {
	if v.watcher == nil {
		return
	}
	for {
		select {
		case change, ok := <-v.watcher.Events:
			if !ok {
				v.watcher = nil
				return
			}
			v.applyChange(change)
		case err, ok := <-v.watcher.Errors:
			if ok {
				v.log.Warn("prefab watch error", zap.Error(err))
			}
		default:
			return
		}
	}
}

func (v *Viewer) applyChange(change prefabs.Change) {
	v.log.Info("prefab changed", zap.String("path", change.Path))
	switch change.Kind {
	case prefabs.ChangeTuning:
		if filepath.Base(change.Path) != filepath.Base(v.tuningFile) {
			return
		}
		tuning, err := prefabs.LoadTuning(v.tuningFile)
		if err != nil {
			v.status = err.Error()
			return
		}
		v.tuning = tuning
		v.runner.SetTuning(tuning)
		v.status = "tuning reloaded"
	case prefabs.ChangeCourse, prefabs.ChangeMontages:
		_ = v.restartOrReport()
	case prefabs.ChangeScript:
		if v.autoplay {
			_ = v.restartOrReport()
		}
	}
}

func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return baseWidth, baseHeight
}
