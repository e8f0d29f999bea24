package scenario

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/milk9111/parkour/anim"
	"github.com/milk9111/parkour/common"
	"github.com/milk9111/parkour/component"
	"github.com/milk9111/parkour/prefabs"
	"github.com/milk9111/parkour/system"
)

// Result summarises a scripted run.
type Result struct {
	Course   string
	Frames   int
	Final    common.Vec3
	Mode     component.MovementMode
	Stats    system.Stats
	Checksum uint64
	Sounds   map[string]int
}

// Run steps r with script for frames frames, or the course's frame count
// when frames <= 0. A script calling finish() ends the run before that
// frame's input is applied.
func Run(r *Runner, script *Script, frames int) (Result, error) {
	if frames <= 0 {
		frames = r.Course().Frames
	}
	for i := 0; i < frames; i++ {
		in, err := script.Update(r)
		if err != nil {
			return r.Result(), err
		}
		if script.Finished() {
			break
		}
		r.Step(in)
	}
	res := r.Result()
	r.log.Info("course finished",
		zap.Int("frames", res.Frames),
		zap.Stringer("final", res.Final),
		zap.Stringer("mode", res.Mode),
		zap.Uint64("checksum", res.Checksum))
	return res, nil
}

func (r *Runner) Result() Result {
	sounds := make(map[string]int, len(r.Effects.Sounds))
	for k, v := range r.Effects.Sounds {
		sounds[k] = v
	}
	return Result{
		Course:   r.cfg.Course.Name,
		Frames:   r.frame,
		Final:    r.Body.Location(),
		Mode:     r.Body.Mode(),
		Stats:    r.Coord.Stats(),
		Checksum: r.Checksum(),
		Sounds:   sounds,
	}
}

// Check reports every activation count that fell short of expect.
func (res Result) Check(expect prefabs.ExpectSpec) error {
	var errs []error
	check := func(what string, got, want int) {
		if got < want {
			errs = append(errs, fmt.Errorf("%s: %s %d, want at least %d", res.Course, what, got, want))
		}
	}
	check("vaults", res.Stats.Vaults, expect.Vaults)
	check("climbs", res.Stats.Climbs, expect.Climbs)
	check("wall runs", res.Stats.WallRuns, expect.WallRuns)
	check("grapples", res.Stats.Grapples, expect.Grapples)
	check("mantles", res.Stats.Mantles, expect.Mantles)
	check("hangs", res.Stats.Hangs, expect.Hangs)
	check("jumps", res.Stats.Jumps, expect.Jumps)
	return errors.Join(errs...)
}

// Options configures RunCourse; zero values fall back to the embedded
// prefabs and defaults.
type Options struct {
	Tuning   *component.Tuning
	Montages []anim.MontageDef
	DT       float64
	Frames   int
}

// RunCourse loads a course with its script and runs it to completion.
func RunCourse(name string, opts Options, log *zap.Logger) (Result, error) {
	if log == nil {
		log = zap.NewNop()
	}
	course, err := prefabs.LoadCourse(name)
	if err != nil {
		return Result{}, err
	}
	tuning := component.DefaultTuning()
	if opts.Tuning != nil {
		tuning = *opts.Tuning
	}
	montages := opts.Montages
	if montages == nil {
		if montages, err = prefabs.LoadMontages(); err != nil {
			return Result{}, err
		}
	}

	r, err := NewRunner(Config{Course: course, Tuning: tuning, Montages: montages, DT: opts.DT}, log)
	if err != nil {
		return Result{}, err
	}
	script, err := LoadScript(course.Script, log)
	if err != nil {
		return Result{}, err
	}
	return Run(r, script, opts.Frames)
}
