package common

import "math"

// SmallNumber is the squared-distance threshold below which interpolation
// helpers snap straight to their target.
const SmallNumber = 1e-8

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func Clamp01(v float64) float64 {
	return Clamp(v, 0, 1)
}

func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func RadToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}

// FInterpTo moves current toward target at a rate proportional to the
// remaining distance. speed <= 0 jumps to target.
func FInterpTo(current, target, dt, speed float64) float64 {
	if speed <= 0 {
		return target
	}
	dist := target - current
	if dist*dist < SmallNumber {
		return target
	}
	return current + dist*Clamp01(dt*speed)
}

// VInterpTo is FInterpTo for vectors.
func VInterpTo(current, target Vec3, dt, speed float64) Vec3 {
	if speed <= 0 {
		return target
	}
	dist := target.Sub(current)
	if dist.LengthSq() < SmallNumber {
		return target
	}
	return current.Add(dist.Scale(Clamp01(dt * speed)))
}

// RInterpTo damps each rotator axis toward target along the shortest arc.
func RInterpTo(current, target Rotator, dt, speed float64) Rotator {
	if speed <= 0 {
		return target
	}
	delta := target.Sub(current).Normalize()
	if delta.IsNearlyZero() {
		return target
	}
	step := Clamp01(dt * speed)
	return Rotator{
		Pitch: current.Pitch + delta.Pitch*step,
		Yaw:   current.Yaw + delta.Yaw*step,
		Roll:  current.Roll + delta.Roll*step,
	}.Normalize()
}

// NearlyEqual reports whether a and b differ by at most tolerance.
func NearlyEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}
