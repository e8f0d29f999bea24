package scenario

import (
	"fmt"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"go.uber.org/zap"

	"github.com/milk9111/parkour/common"
	"github.com/milk9111/parkour/prefabs"
)

const updateDispatchScript = `
update(__engine, __state)
`

// Script is a compiled tengo course driver. Each frame it calls the
// script's update(engine, state) and collects the requested input.
type Script struct {
	name     string
	compiled *tengo.Compiled
	state    *tengo.Map
	log      *zap.Logger
	finished bool
}

func LoadScript(name string, log *zap.Logger) (*Script, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("scenario: empty script name")
	}
	src, err := prefabs.LoadScript(name)
	if err != nil {
		return nil, fmt.Errorf("scenario: load script %s: %w", name, err)
	}
	return CompileScript(name, src, log)
}

func CompileScript(name string, src []byte, log *zap.Logger) (*Script, error) {
	if log == nil {
		log = zap.NewNop()
	}
	full := string(src) + "\n" + updateDispatchScript
	script := tengo.NewScript([]byte(full))
	_ = script.Add("__engine", map[string]any{})
	_ = script.Add("__state", map[string]any{})
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("scenario: compile script %s: %w", name, err)
	}
	return &Script{
		name:     name,
		compiled: compiled,
		state:    &tengo.Map{Value: map[string]tengo.Object{}},
		log:      log.With(zap.String("script", name)),
	}, nil
}

func (s *Script) Name() string { return s.name }

// Finished reports whether the script called engine.finish().
func (s *Script) Finished() bool { return s.finished }

// Update runs one frame of the script against r and returns its input.
func (s *Script) Update(r *Runner) (Input, error) {
	var in Input
	engine := s.buildEngine(r, &in)
	if err := s.compiled.Set("__engine", engine); err != nil {
		return Input{}, err
	}
	if err := s.compiled.Set("__state", s.state); err != nil {
		return Input{}, err
	}
	if err := s.compiled.Run(); err != nil {
		return Input{}, fmt.Errorf("scenario: script %s frame %d: %w", s.name, r.Frame(), err)
	}
	return in, nil
}

func (s *Script) buildEngine(r *Runner, in *Input) *tengo.ImmutableMap {
	values := map[string]tengo.Object{
		"frame": &tengo.Int{Value: int64(r.Frame())},
		"time":  &tengo.Float{Value: r.Time()},
		"dt":    &tengo.Float{Value: r.DT()},
	}

	values["position"] = &tengo.UserFunction{Name: "position", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return vecObject(r.Body.Location()), nil
	}}
	values["velocity"] = &tengo.UserFunction{Name: "velocity", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return vecObject(r.Body.Velocity()), nil
	}}
	values["active"] = &tengo.UserFunction{Name: "active", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.String{Value: r.Coord.ActiveKind().String()}, nil
	}}
	values["mode"] = &tengo.UserFunction{Name: "mode", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.String{Value: r.Body.Mode().String()}, nil
	}}
	values["grounded"] = boolFunc("grounded", r.Body.IsGrounded)
	values["falling"] = boolFunc("falling", r.Body.IsFalling)
	values["can_jump"] = boolFunc("can_jump", r.Coord.CanJump)
	values["mantling"] = boolFunc("mantling", r.Coord.IsMantling)
	values["tilt"] = &tengo.UserFunction{Name: "tilt", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Float{Value: r.Coord.CameraTilt()}, nil
	}}

	values["move"] = &tengo.UserFunction{Name: "move", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 2 {
			return tengo.FalseValue, nil
		}
		x, okX := tengo.ToFloat64(args[0])
		y, okY := tengo.ToFloat64(args[1])
		if !okX || !okY {
			return tengo.FalseValue, nil
		}
		in.Move = common.V3(x, y, 0)
		return tengo.TrueValue, nil
	}}
	values["sprint"] = &tengo.UserFunction{Name: "sprint", Value: func(args ...tengo.Object) (tengo.Object, error) {
		in.Sprint = true
		if len(args) > 0 {
			in.Sprint = !args[0].IsFalsy()
		}
		return tengo.TrueValue, nil
	}}
	values["look"] = &tengo.UserFunction{Name: "look", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 2 {
			return tengo.FalseValue, nil
		}
		pitch, okP := tengo.ToFloat64(args[0])
		yaw, okY := tengo.ToFloat64(args[1])
		if !okP || !okY {
			return tengo.FalseValue, nil
		}
		in.Look = &common.Rotator{Pitch: pitch, Yaw: yaw}
		return tengo.TrueValue, nil
	}}

	values["jump"] = actionFunc("jump", &in.Jump)
	values["vault"] = actionFunc("vault", &in.Vault)
	values["grapple"] = actionFunc("grapple", &in.Grapple)
	values["release"] = actionFunc("release", &in.Release)
	values["grab"] = actionFunc("grab", &in.Grab)
	values["drop"] = actionFunc("drop", &in.Drop)

	values["finish"] = &tengo.UserFunction{Name: "finish", Value: func(args ...tengo.Object) (tengo.Object, error) {
		s.finished = true
		return tengo.TrueValue, nil
	}}
	values["log"] = &tengo.UserFunction{Name: "log", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.UndefinedValue, nil
		}
		fields := []zap.Field{zap.Int("frame", r.Frame())}
		if len(args) > 1 {
			fields = append(fields, zap.Any("value", objectToAny(args[1])))
		}
		s.log.Info(objectAsString(args[0]), fields...)
		return tengo.UndefinedValue, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func vecObject(v common.Vec3) tengo.Object {
	return &tengo.ImmutableMap{Value: map[string]tengo.Object{
		"x": &tengo.Float{Value: v.X},
		"y": &tengo.Float{Value: v.Y},
		"z": &tengo.Float{Value: v.Z},
	}}
}

func boolFunc(name string, fn func() bool) *tengo.UserFunction {
	return &tengo.UserFunction{Name: name, Value: func(args ...tengo.Object) (tengo.Object, error) {
		if fn() {
			return tengo.TrueValue, nil
		}
		return tengo.FalseValue, nil
	}}
}

func actionFunc(name string, flag *bool) *tengo.UserFunction {
	return &tengo.UserFunction{Name: name, Value: func(args ...tengo.Object) (tengo.Object, error) {
		*flag = true
		return tengo.TrueValue, nil
	}}
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}

func objectToAny(obj tengo.Object) any {
	if obj == nil {
		return nil
	}

	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	case *tengo.Int:
		return int(v.Value)
	case *tengo.Float:
		return v.Value
	case *tengo.Bool:
		return !v.IsFalsy()
	case *tengo.Array:
		out := make([]any, 0, len(v.Value))
		for _, item := range v.Value {
			out = append(out, objectToAny(item))
		}
		return out
	case *tengo.Map:
		out := make(map[string]any, len(v.Value))
		for k, item := range v.Value {
			out[k] = objectToAny(item)
		}
		return out
	case *tengo.ImmutableMap:
		out := make(map[string]any, len(v.Value))
		for k, item := range v.Value {
			out[k] = objectToAny(item)
		}
		return out
	default:
		return v.String()
	}
}
