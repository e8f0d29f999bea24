package prefabs

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/milk9111/parkour/common"
	"github.com/milk9111/parkour/component"
	"github.com/milk9111/parkour/scene"
)

// ShapeSpec is one piece of course geometry. Spec holds the kind-specific
// fields and is decoded lazily.
type ShapeSpec struct {
	Name  string         `yaml:"name"`
	Kind  string         `yaml:"kind"`
	Color *YAMLColor     `yaml:"color"`
	Spec  map[string]any `yaml:"spec"`
}

func DecodeComponentSpec[T any](raw any) (T, error) {
	var zero T
	if raw == nil {
		return zero, nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return zero, err
	}
	var out T
	if err := yaml.Unmarshal(b, &out); err != nil {
		return zero, err
	}
	return out, nil
}

type BoxComponentSpec struct {
	Min       common.Vec3 `yaml:"min"`
	Max       common.Vec3 `yaml:"max"`
	Simulated bool        `yaml:"simulated"`
}

type BarComponentSpec struct {
	A      common.Vec3 `yaml:"a"`
	B      common.Vec3 `yaml:"b"`
	Radius float64     `yaml:"radius"`
}

// BuildScene turns the course shapes into scene geometry. The returned map
// gives each actor's shape spec for renderers.
func BuildScene(course CourseSpec) (*scene.Scene, map[component.ActorID]ShapeSpec, error) {
	s := scene.New()
	shapes := make(map[component.ActorID]ShapeSpec, len(course.Shapes))
	for i, shape := range course.Shapes {
		var id component.ActorID
		switch shape.Kind {
		case "box":
			spec, err := DecodeComponentSpec[BoxComponentSpec](shape.Spec)
			if err != nil {
				return nil, nil, fmt.Errorf("prefabs: course %s shape %d: %w", course.Name, i, err)
			}
			id = s.AddBox(scene.Box{Name: shape.Name, Min: spec.Min, Max: spec.Max, Simulated: spec.Simulated})
		case "bar":
			spec, err := DecodeComponentSpec[BarComponentSpec](shape.Spec)
			if err != nil {
				return nil, nil, fmt.Errorf("prefabs: course %s shape %d: %w", course.Name, i, err)
			}
			id = s.AddBar(scene.Bar{Name: shape.Name, A: spec.A, B: spec.B, Radius: spec.Radius})
		default:
			return nil, nil, fmt.Errorf("%w %q in course %s", ErrUnknownShape, shape.Kind, course.Name)
		}
		shapes[id] = shape
	}
	return s, shapes, nil
}
