package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/milk9111/parkour/logging"
	"github.com/milk9111/parkour/prefabs"
	"github.com/milk9111/parkour/scenario"
)

func main() {
	cfg, err := ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := Run(ctx, cfg, os.Stdout, log); err != nil {
		log.Error("sim failed", zap.Error(err))
		os.Exit(1)
	}
}

// Run plays every selected course and writes one summary line per course.
func Run(ctx context.Context, cfg Config, out io.Writer, log *zap.Logger) error {
	if out == nil {
		out = io.Discard
	}
	if log == nil {
		log = zap.NewNop()
	}

	tuning, err := prefabs.LoadTuning(cfg.Tuning)
	if err != nil {
		return err
	}
	montages, err := prefabs.LoadMontages()
	if err != nil {
		return err
	}
	names := cfg.Courses
	if len(names) == 0 {
		if names, err = prefabs.Courses(); err != nil {
			return err
		}
	}

	results := make([]scenario.Result, len(names))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Parallel)
	for i, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := scenario.RunCourse(name, scenario.Options{
				Tuning:   &tuning,
				Montages: montages,
				DT:       cfg.DT,
				Frames:   cfg.Frames,
			}, log)
			if err != nil {
				return fmt.Errorf("course %s: %w", name, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var failed []error
	for i, res := range results {
		course, err := prefabs.LoadCourse(names[i])
		if err != nil {
			return err
		}
		status := "ok"
		if err := res.Check(course.Expect); err != nil {
			status = "FAIL"
			failed = append(failed, err)
		}
		s := res.Stats
		fmt.Fprintf(out, "%-8s %-4s frames=%d vaults=%d climbs=%d wallruns=%d grapples=%d mantles=%d hangs=%d jumps=%d final=%s checksum=%016x\n",
			res.Course, status, res.Frames, s.Vaults, s.Climbs, s.WallRuns, s.Grapples, s.Mantles, s.Hangs, s.Jumps, res.Final, res.Checksum)
	}
	if cfg.Strict {
		return errors.Join(failed...)
	}
	return nil
}
