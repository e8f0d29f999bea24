package scene

import (
	"github.com/jakecoffman/cp"

	"github.com/milk9111/parkour/common"
	"github.com/milk9111/parkour/component"
)

// Box is an axis-aligned block of static geometry.
type Box struct {
	Actor     component.ActorID
	Name      string
	Min       common.Vec3
	Max       common.Vec3
	Simulated bool
}

func (b Box) Center() common.Vec3 {
	return common.LerpVec(b.Min, b.Max, 0.5)
}

// Bar is a cylinder between A and B with open ends.
type Bar struct {
	Actor  component.ActorID
	Name   string
	A      common.Vec3
	B      common.Vec3
	Radius float64
}

// Scene is the static world the traversal abilities query. It implements
// component.SceneQuery.
type Scene struct {
	boxes  []Box
	bars   []Bar
	boxBB  []cp.BB
	barBB  []cp.BB
	nextID component.ActorID
}

const footprintMargin = 1.0

func New() *Scene {
	return &Scene{nextID: 1}
}

func (s *Scene) allocate(id component.ActorID) component.ActorID {
	if id == 0 {
		id = s.nextID
	}
	if id >= s.nextID {
		s.nextID = id + 1
	}
	return id
}

// AddBox adds b and returns its actor id, assigning one when b.Actor is zero.
func (s *Scene) AddBox(b Box) component.ActorID {
	if s == nil {
		return 0
	}
	lo := common.Vec3{X: min(b.Min.X, b.Max.X), Y: min(b.Min.Y, b.Max.Y), Z: min(b.Min.Z, b.Max.Z)}
	hi := common.Vec3{X: max(b.Min.X, b.Max.X), Y: max(b.Min.Y, b.Max.Y), Z: max(b.Min.Z, b.Max.Z)}
	b.Min, b.Max = lo, hi
	b.Actor = s.allocate(b.Actor)
	s.boxes = append(s.boxes, b)
	s.boxBB = append(s.boxBB, cp.BB{
		L: lo.X - footprintMargin,
		B: lo.Y - footprintMargin,
		R: hi.X + footprintMargin,
		T: hi.Y + footprintMargin,
	})
	return b.Actor
}

func (s *Scene) AddBar(b Bar) component.ActorID {
	if s == nil || b.Radius <= 0 {
		return 0
	}
	b.Actor = s.allocate(b.Actor)
	s.bars = append(s.bars, b)
	s.barBB = append(s.barBB, cp.BB{
		L: min(b.A.X, b.B.X) - b.Radius - footprintMargin,
		B: min(b.A.Y, b.B.Y) - b.Radius - footprintMargin,
		R: max(b.A.X, b.B.X) + b.Radius + footprintMargin,
		T: max(b.A.Y, b.B.Y) + b.Radius + footprintMargin,
	})
	return b.Actor
}

func (s *Scene) Boxes() []Box {
	if s == nil {
		return nil
	}
	return append([]Box(nil), s.boxes...)
}

func (s *Scene) Bars() []Bar {
	if s == nil {
		return nil
	}
	return append([]Bar(nil), s.bars...)
}

// Box looks up a box by actor id.
func (s *Scene) Box(id component.ActorID) (Box, bool) {
	if s == nil {
		return Box{}, false
	}
	for _, b := range s.boxes {
		if b.Actor == id {
			return b, true
		}
	}
	return Box{}, false
}

func segmentBB(a, b common.Vec3, pad float64) cp.BB {
	return cp.BB{
		L: min(a.X, b.X) - pad,
		B: min(a.Y, b.Y) - pad,
		R: max(a.X, b.X) + pad,
		T: max(a.Y, b.Y) + pad,
	}
}

func ignored(id component.ActorID, ignore []component.ActorID) bool {
	for _, other := range ignore {
		if other != 0 && other == id {
			return true
		}
	}
	return false
}
