package prefabs

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/milk9111/parkour/anim"
	"github.com/milk9111/parkour/common"
	"github.com/milk9111/parkour/component"
)

const (
	TuningFile   = "tuning.yaml"
	MontagesFile = "montages.yaml"
	coursePrefix = "course_"
)

var (
	ErrNoShapes     = errors.New("prefabs: course has no shapes")
	ErrUnknownShape = errors.New("prefabs: unknown shape kind")
)

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// LoadTuning overlays filename on the built-in defaults; keys the file
// leaves out keep their default value.
func LoadTuning(filename string) (component.Tuning, error) {
	if filename == "" {
		filename = TuningFile
	}
	tuning := component.DefaultTuning()
	data, err := Load(filename)
	if err != nil {
		return tuning, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}
	if err := yaml.Unmarshal(data, &tuning); err != nil {
		return component.DefaultTuning(), fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}
	return tuning, nil
}

type MontagesSpec struct {
	Montages []anim.MontageDef `yaml:"montages"`
}

func LoadMontages() ([]anim.MontageDef, error) {
	spec, err := LoadSpec[MontagesSpec](MontagesFile)
	if err != nil {
		return nil, err
	}
	return spec.Montages, nil
}

// StartSpec places the character when a course begins.
type StartSpec struct {
	Location common.Vec3 `yaml:"location"`
	Yaw      float64     `yaml:"yaw"`
	Airborne bool        `yaml:"airborne"`
}

// ExpectSpec lists minimum activation counts a scripted run must reach.
type ExpectSpec struct {
	Vaults   int `yaml:"vaults"`
	Climbs   int `yaml:"climbs"`
	WallRuns int `yaml:"wall_runs"`
	Grapples int `yaml:"grapples"`
	Mantles  int `yaml:"mantles"`
	Hangs    int `yaml:"hangs"`
	Jumps    int `yaml:"jumps"`
}

type CourseSpec struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Script      string      `yaml:"script"`
	Frames      int         `yaml:"frames"`
	Start       StartSpec   `yaml:"start"`
	Shapes      []ShapeSpec `yaml:"shapes"`
	Expect      ExpectSpec  `yaml:"expect"`
}

func LoadCourse(name string) (CourseSpec, error) {
	filename := name
	if !strings.HasSuffix(filename, ".yaml") {
		filename = coursePrefix + name + ".yaml"
	}
	spec, err := LoadSpec[CourseSpec](filename)
	if err != nil {
		return CourseSpec{}, err
	}
	if len(spec.Shapes) == 0 {
		return CourseSpec{}, fmt.Errorf("%w: %s", ErrNoShapes, filename)
	}
	if spec.Name == "" {
		spec.Name = name
	}
	return spec, nil
}

type YAMLColor struct {
	color.Color
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}

	s := strings.TrimPrefix(value.Value, "#")

	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("invalid color format: %s", value.Value)
	}

	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(v), err
	}

	r, err := parse(0)
	if err != nil {
		return err
	}
	g, err := parse(2)
	if err != nil {
		return err
	}
	b, err := parse(4)
	if err != nil {
		return err
	}

	a := uint8(255)
	if len(s) == 8 {
		a, err = parse(6)
		if err != nil {
			return err
		}
	}

	c.Color = color.NRGBA{R: r, G: g, B: b, A: a}
	return nil
}
