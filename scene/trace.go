package scene

import (
	"math"

	"github.com/milk9111/parkour/common"
	"github.com/milk9111/parkour/component"
)

// LineTrace returns the nearest blocking hit along start→end.
func (s *Scene) LineTrace(start, end common.Vec3, ignore ...component.ActorID) (component.Hit, bool) {
	if s == nil {
		return component.Hit{}, false
	}
	d := end.Sub(start)
	if d.LengthSq() < common.SmallNumber {
		return component.Hit{}, false
	}
	query := segmentBB(start, end, 0)

	best := component.Hit{Time: math.Inf(1)}
	found := false
	for i, box := range s.boxes {
		if ignored(box.Actor, ignore) || !s.boxBB[i].Intersects(query) {
			continue
		}
		t, normal, inside, ok := segmentBoxHit(start, d, box.Min, box.Max)
		if !ok || t >= best.Time {
			continue
		}
		best = component.Hit{
			Point:       start.Add(d.Scale(t)),
			Normal:      normal,
			Actor:       box.Actor,
			Time:        t,
			Blocking:    true,
			Simulated:   box.Simulated,
			StartInside: inside,
		}
		found = true
	}
	for i, bar := range s.bars {
		if ignored(bar.Actor, ignore) || !s.barBB[i].Intersects(query) {
			continue
		}
		t, normal, inside, ok := segmentBarHit(start, d, bar)
		if !ok || t >= best.Time {
			continue
		}
		best = component.Hit{
			Point:       start.Add(d.Scale(t)),
			Normal:      normal,
			Actor:       bar.Actor,
			Time:        t,
			Blocking:    true,
			StartInside: inside,
		}
		found = true
	}
	if !found {
		return component.Hit{}, false
	}
	return best, true
}

// segmentBoxHit is a 3D slab test. A segment starting inside the box hits at
// t=0 with the normal facing back along the segment.
func segmentBoxHit(o, d, lo, hi common.Vec3) (float64, common.Vec3, bool, bool) {
	origin := [3]float64{o.X, o.Y, o.Z}
	dir := [3]float64{d.X, d.Y, d.Z}
	bmin := [3]float64{lo.X, lo.Y, lo.Z}
	bmax := [3]float64{hi.X, hi.Y, hi.Z}

	tmin, tmax := 0.0, 1.0
	axis, sign := -1, 0.0
	for i := 0; i < 3; i++ {
		if dir[i] == 0 {
			if origin[i] < bmin[i] || origin[i] > bmax[i] {
				return 0, common.Vec3{}, false, false
			}
			continue
		}
		inv := 1 / dir[i]
		t1 := (bmin[i] - origin[i]) * inv
		t2 := (bmax[i] - origin[i]) * inv
		s := -1.0
		if t1 > t2 {
			t1, t2 = t2, t1
			s = 1
		}
		if t1 > tmin {
			tmin = t1
			axis, sign = i, s
		}
		tmax = math.Min(tmax, t2)
		if tmax < tmin {
			return 0, common.Vec3{}, false, false
		}
	}
	if axis < 0 {
		return 0, d.SafeNormal().Neg(), true, true
	}
	var n [3]float64
	n[axis] = sign
	return tmin, common.Vec3{X: n[0], Y: n[1], Z: n[2]}, false, true
}

// segmentBarHit intersects the segment with the side of an open-ended
// cylinder.
func segmentBarHit(o, d common.Vec3, bar Bar) (float64, common.Vec3, bool, bool) {
	axis := bar.B.Sub(bar.A)
	length := axis.Length()
	if length < common.SmallNumber {
		return 0, common.Vec3{}, false, false
	}
	u := axis.Scale(1 / length)
	m := o.Sub(bar.A)
	dp := d.Sub(u.Scale(d.Dot(u)))
	mp := m.Sub(u.Scale(m.Dot(u)))
	r := bar.Radius

	a := dp.Dot(dp)
	b := 2 * mp.Dot(dp)
	c := mp.Dot(mp) - r*r

	if c < 0 {
		s := m.Dot(u)
		if s >= 0 && s <= length {
			return 0, d.SafeNormal().Neg(), true, true
		}
	}
	if a < common.SmallNumber {
		return 0, common.Vec3{}, false, false
	}
	disc := b*b - 4*a*c
	if disc < 0 {
		return 0, common.Vec3{}, false, false
	}
	t := (-b - math.Sqrt(disc)) / (2 * a)
	if t < 0 || t > 1 {
		return 0, common.Vec3{}, false, false
	}
	p := o.Add(d.Scale(t))
	s := p.Sub(bar.A).Dot(u)
	if s < 0 || s > length {
		return 0, common.Vec3{}, false, false
	}
	normal := p.Sub(bar.A.Add(u.Scale(s))).SafeNormal()
	return t, normal, false, true
}
