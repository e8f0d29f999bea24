package main

import (
	"flag"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/milk9111/parkour/logging"
)

// Config holds sim command configuration.
type Config struct {
	LogLevel  string         `env:"PARKOUR_LOG_LEVEL"  envDefault:"info"`
	LogFormat logging.Format `env:"PARKOUR_LOG_FORMAT" envDefault:"console"`
	DT        float64        `env:"PARKOUR_DT"         envDefault:"0.016666666666666666"`
	Frames    int            `env:"PARKOUR_FRAMES"`
	Tuning    string         `env:"PARKOUR_TUNING"     envDefault:"tuning.yaml"`
	Courses   []string       `env:"PARKOUR_COURSES"    envSeparator:","`
	Parallel  int            `env:"PARKOUR_PARALLEL"   envDefault:"4"`
	Strict    bool           `env:"PARKOUR_STRICT"     envDefault:"true"`
}

// ParseConfig reads the environment, then lets flags override it.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	format := string(cfg.LogFormat)
	courses := strings.Join(cfg.Courses, ",")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&format, "log-format", format, "log format (json, console)")
	fs.Float64Var(&cfg.DT, "dt", cfg.DT, "fixed time step in seconds")
	fs.IntVar(&cfg.Frames, "frames", cfg.Frames, "frames per course; 0 uses each course's own count")
	fs.StringVar(&cfg.Tuning, "tuning", cfg.Tuning, "tuning file under the prefabs directory")
	fs.StringVar(&courses, "courses", courses, "comma separated course names; empty runs all")
	fs.IntVar(&cfg.Parallel, "parallel", cfg.Parallel, "courses run at once")
	fs.BoolVar(&cfg.Strict, "strict", cfg.Strict, "fail when a course misses its expectations")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg.LogFormat = logging.Format(format)
	cfg.Courses = splitList(courses)
	if cfg.DT <= 0 {
		return Config{}, fmt.Errorf("dt must be positive, got %v", cfg.DT)
	}
	if cfg.Parallel < 1 {
		cfg.Parallel = 1
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
