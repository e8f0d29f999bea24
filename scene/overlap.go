package scene

import (
	"math"

	"github.com/milk9111/parkour/common"
	"github.com/milk9111/parkour/component"
)

// Contact is one resolved penetration between a capsule and the scene.
type Contact struct {
	Hit   component.Hit
	Depth float64
}

// capsuleSegment returns the inner segment of an upright capsule.
func capsuleSegment(pos common.Vec3, shape component.CapsuleShape) (common.Vec3, common.Vec3) {
	half := math.Max(shape.HalfHeight-shape.Radius, 0)
	return pos.Add(common.Vec3{Z: -half}), pos.Add(common.Vec3{Z: half})
}

// ShapeOverlapAny reports whether an upright capsule at position touches any
// geometry. Capsules are always treated as upright; orientation is ignored.
func (s *Scene) ShapeOverlapAny(position common.Vec3, _ common.Rotator, shape component.CapsuleShape, ignore ...component.ActorID) bool {
	if s == nil || shape.Radius <= 0 {
		return false
	}
	lo, hi := capsuleSegment(position, shape)
	query := segmentBB(lo, hi, shape.Radius)
	for i, box := range s.boxes {
		if ignored(box.Actor, ignore) || !s.boxBB[i].Intersects(query) {
			continue
		}
		if _, dist, _ := boxClosest(lo, hi, box); dist < shape.Radius {
			return true
		}
	}
	for i, bar := range s.bars {
		if ignored(bar.Actor, ignore) || !s.barBB[i].Intersects(query) {
			continue
		}
		p, q := closestSegmentPoints(lo, hi, bar.A, bar.B)
		if p.Dist(q) < shape.Radius+bar.Radius {
			return true
		}
	}
	return false
}

// Contacts returns every penetration of the capsule with the scene, each with
// the outward normal that pushes the capsule free.
func (s *Scene) Contacts(position common.Vec3, shape component.CapsuleShape, ignore ...component.ActorID) []Contact {
	if s == nil || shape.Radius <= 0 {
		return nil
	}
	lo, hi := capsuleSegment(position, shape)
	query := segmentBB(lo, hi, shape.Radius)
	var out []Contact
	for i, box := range s.boxes {
		if ignored(box.Actor, ignore) || !s.boxBB[i].Intersects(query) {
			continue
		}
		seg, dist, boxPoint := boxClosest(lo, hi, box)
		if dist >= shape.Radius {
			continue
		}
		var normal common.Vec3
		depth := shape.Radius - dist
		if dist > common.SmallNumber {
			normal = seg.Sub(boxPoint).Scale(1 / dist)
		} else {
			normal, depth = boxEscape(lo, hi, shape.Radius, box)
		}
		out = append(out, Contact{
			Depth: depth,
			Hit: component.Hit{
				Point:     boxPoint,
				Normal:    normal,
				Actor:     box.Actor,
				Blocking:  true,
				Simulated: box.Simulated,
			},
		})
	}
	for i, bar := range s.bars {
		if ignored(bar.Actor, ignore) || !s.barBB[i].Intersects(query) {
			continue
		}
		p, q := closestSegmentPoints(lo, hi, bar.A, bar.B)
		reach := shape.Radius + bar.Radius
		dist := p.Dist(q)
		if dist >= reach {
			continue
		}
		normal := p.Sub(q).SafeNormal()
		if normal.LengthSq() == 0 {
			normal = common.Up
		}
		out = append(out, Contact{
			Depth: reach - dist,
			Hit: component.Hit{
				Point:    q.Add(normal.Scale(bar.Radius)),
				Normal:   normal,
				Actor:    bar.Actor,
				Blocking: true,
			},
		})
	}
	return out
}

// boxClosest finds the closest points between a vertical segment and a box.
func boxClosest(lo, hi common.Vec3, box Box) (seg common.Vec3, dist float64, boxPoint common.Vec3) {
	qx := common.Clamp(lo.X, box.Min.X, box.Max.X)
	qy := common.Clamp(lo.Y, box.Min.Y, box.Max.Y)
	var sz, bz float64
	switch {
	case hi.Z < box.Min.Z:
		sz, bz = hi.Z, box.Min.Z
	case lo.Z > box.Max.Z:
		sz, bz = lo.Z, box.Max.Z
	default:
		sz = common.Clamp((math.Max(lo.Z, box.Min.Z)+math.Min(hi.Z, box.Max.Z))/2, lo.Z, hi.Z)
		bz = sz
	}
	seg = common.Vec3{X: lo.X, Y: lo.Y, Z: sz}
	boxPoint = common.Vec3{X: qx, Y: qy, Z: bz}
	return seg, seg.Dist(boxPoint), boxPoint
}

// boxEscape picks the shortest push for a capsule whose axis is inside a box.
func boxEscape(lo, hi common.Vec3, r float64, box Box) (common.Vec3, float64) {
	candidates := []struct {
		n     common.Vec3
		depth float64
	}{
		{common.Vec3{X: 1}, box.Max.X - lo.X + r},
		{common.Vec3{X: -1}, lo.X - box.Min.X + r},
		{common.Vec3{Y: 1}, box.Max.Y - lo.Y + r},
		{common.Vec3{Y: -1}, lo.Y - box.Min.Y + r},
		{common.Up, box.Max.Z - lo.Z + r},
		{common.Down, hi.Z - box.Min.Z + r},
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.depth < best.depth {
			best = c
		}
	}
	return best.n, best.depth
}

// closestSegmentPoints returns the closest points between segments p1q1 and p2q2.
func closestSegmentPoints(p1, q1, p2, q2 common.Vec3) (common.Vec3, common.Vec3) {
	d1 := q1.Sub(p1)
	d2 := q2.Sub(p2)
	r := p1.Sub(p2)
	a := d1.Dot(d1)
	e := d2.Dot(d2)
	f := d2.Dot(r)

	var s, t float64
	switch {
	case a <= common.SmallNumber && e <= common.SmallNumber:
		return p1, p2
	case a <= common.SmallNumber:
		t = common.Clamp01(f / e)
	default:
		c := d1.Dot(r)
		if e <= common.SmallNumber {
			s = common.Clamp01(-c / a)
		} else {
			b := d1.Dot(d2)
			denom := a*e - b*b
			if denom > common.SmallNumber {
				s = common.Clamp01((b*f - c*e) / denom)
			}
			t = (b*s + f) / e
			if t < 0 {
				t = 0
				s = common.Clamp01(-c / a)
			} else if t > 1 {
				t = 1
				s = common.Clamp01((b - c) / a)
			}
		}
	}
	return p1.Add(d1.Scale(s)), p2.Add(d2.Scale(t))
}
