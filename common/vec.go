package common

import (
	"fmt"
	"math"

	"github.com/jakecoffman/cp"
)

// Vec3 is a float64 world-space vector. Z is up.
type Vec3 struct {
	X, Y, Z float64
}

var (
	Zero = Vec3{}
	Up   = Vec3{Z: 1}
	Down = Vec3{Z: -1}
)

func V3(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

func (v Vec3) Neg() Vec3 {
	return Vec3{-v.X, -v.Y, -v.Z}
}

func (v Vec3) Dot(o Vec3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

func (v Vec3) LengthSq() float64 {
	return v.Dot(v)
}

func (v Vec3) Length() float64 {
	return math.Sqrt(v.LengthSq())
}

func (v Vec3) DistSq(o Vec3) float64 {
	return v.Sub(o).LengthSq()
}

func (v Vec3) Dist(o Vec3) float64 {
	return v.Sub(o).Length()
}

// SafeNormal returns the unit vector, or zero when v is too short to normalise.
func (v Vec3) SafeNormal() Vec3 {
	sq := v.LengthSq()
	if sq < SmallNumber {
		return Vec3{}
	}
	return v.Scale(1 / math.Sqrt(sq))
}

// XY projects onto the horizontal plane.
func (v Vec3) XY() cp.Vector {
	return cp.Vector{X: v.X, Y: v.Y}
}

// HorizontalSpeed is the length of the XY projection.
func (v Vec3) HorizontalSpeed() float64 {
	return v.XY().Length()
}

// SafeNormal2D drops Z and normalises the horizontal remainder.
func (v Vec3) SafeNormal2D() Vec3 {
	xy := v.XY()
	if xy.LengthSq() < SmallNumber {
		return Vec3{}
	}
	n := xy.Normalize()
	return Vec3{X: n.X, Y: n.Y}
}

func (v Vec3) WithZ(z float64) Vec3 {
	v.Z = z
	return v
}

// ProjectOnPlane removes the component of v along the plane normal.
func (v Vec3) ProjectOnPlane(normal Vec3) Vec3 {
	n := normal.SafeNormal()
	return v.Sub(n.Scale(v.Dot(n)))
}

func (v Vec3) NearlyEqual(o Vec3, tolerance float64) bool {
	return NearlyEqual(v.X, o.X, tolerance) &&
		NearlyEqual(v.Y, o.Y, tolerance) &&
		NearlyEqual(v.Z, o.Z, tolerance)
}

// Rotation returns the yaw/pitch facing of the vector.
func (v Vec3) Rotation() Rotator {
	return Rotator{
		Yaw:   RadToDeg(math.Atan2(v.Y, v.X)),
		Pitch: RadToDeg(math.Atan2(v.Z, v.XY().Length())),
	}
}

func (v Vec3) String() string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f)", v.X, v.Y, v.Z)
}

func LerpVec(a, b Vec3, t float64) Vec3 {
	return Vec3{Lerp(a.X, b.X, t), Lerp(a.Y, b.Y, t), Lerp(a.Z, b.Z, t)}
}

// Rotator is a facing in degrees.
type Rotator struct {
	Pitch, Yaw, Roll float64
}

func (r Rotator) Sub(o Rotator) Rotator {
	return Rotator{r.Pitch - o.Pitch, r.Yaw - o.Yaw, r.Roll - o.Roll}
}

// Normalize wraps every axis into (-180, 180].
func (r Rotator) Normalize() Rotator {
	return Rotator{NormalizeAxis(r.Pitch), NormalizeAxis(r.Yaw), NormalizeAxis(r.Roll)}
}

func (r Rotator) IsNearlyZero() bool {
	const tolerance = 1e-4
	return math.Abs(r.Pitch) <= tolerance && math.Abs(r.Yaw) <= tolerance && math.Abs(r.Roll) <= tolerance
}

// Vector is the unit look direction including pitch.
func (r Rotator) Vector() Vec3 {
	pitch, yaw := DegToRad(r.Pitch), DegToRad(r.Yaw)
	cosPitch := math.Cos(pitch)
	return Vec3{X: cosPitch * math.Cos(yaw), Y: cosPitch * math.Sin(yaw), Z: math.Sin(pitch)}
}

// Forward is the horizontal facing (pitch ignored).
func (r Rotator) Forward() Vec3 {
	yaw := DegToRad(r.Yaw)
	return Vec3{X: math.Cos(yaw), Y: math.Sin(yaw)}
}

// Right is the horizontal right-hand vector (forward x up).
func (r Rotator) Right() Vec3 {
	yaw := DegToRad(r.Yaw)
	return Vec3{X: math.Sin(yaw), Y: -math.Cos(yaw)}
}

func NormalizeAxis(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg > 180 {
		deg -= 360
	} else if deg <= -180 {
		deg += 360
	}
	return deg
}
