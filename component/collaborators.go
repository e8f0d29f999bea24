package component

import "github.com/milk9111/parkour/common"

// ActorID identifies a piece of scene geometry or a character. Zero is "no actor".
type ActorID uint32

// MovementMode is the locomotion regime currently owning the character.
type MovementMode uint8

const (
	ModeWalking MovementMode = iota
	ModeFalling
	ModeFlying
	ModeNone
)

func (m MovementMode) String() string {
	switch m {
	case ModeWalking:
		return "walking"
	case ModeFalling:
		return "falling"
	case ModeFlying:
		return "flying"
	case ModeNone:
		return "none"
	default:
		return "unknown"
	}
}

// Hit is the result of a scene line trace.
type Hit struct {
	Point  common.Vec3
	Normal common.Vec3
	Actor  ActorID
	// Time is the hit fraction along the trace in [0,1].
	Time      float64
	Blocking  bool
	Simulated bool
	// StartInside is set when the trace began inside the hit geometry.
	StartInside bool
}

// CapsuleShape is an upright capsule used for overlap tests.
type CapsuleShape struct {
	Radius     float64
	HalfHeight float64
}

// Locomotion is the default movement system a traversal ability overrides.
type Locomotion interface {
	Velocity() common.Vec3
	SetVelocity(v common.Vec3)
	// AddImpulse applies an instantaneous velocity change.
	AddImpulse(dv common.Vec3)
	// Launch replaces (override) or adds to the horizontal and vertical
	// velocity and puts the character into the falling mode.
	Launch(v common.Vec3, overrideXY, overrideZ bool)
	// Jump performs the default locomotion jump.
	Jump()

	Mode() MovementMode
	SetMode(m MovementMode)
	IsGrounded() bool
	IsFalling() bool

	CapsuleRadius() float64
	SetCapsuleRadius(r float64)
	CapsuleHalfHeight() float64
	SetCapsuleHalfHeight(h float64)

	CollisionEnabled() bool
	SetCollisionEnabled(enabled bool)

	GravityScale() float64
	SetGravityScale(scale float64)
	PlaneConstraint() (normal common.Vec3, enabled bool)
	SetPlaneConstraint(normal common.Vec3, enabled bool)
}

// Pose controls the character's world transform.
type Pose interface {
	Location() common.Vec3
	SetLocation(loc common.Vec3)
	Rotation() common.Rotator
	SetRotation(rot common.Rotator)
}

// ViewPoint reports the camera location and control rotation.
type ViewPoint interface {
	ViewPoint() (location common.Vec3, rotation common.Rotator)
}

// SceneQuery answers synchronous geometric queries against static geometry.
type SceneQuery interface {
	LineTrace(start, end common.Vec3, ignore ...ActorID) (Hit, bool)
	ShapeOverlapAny(position common.Vec3, orientation common.Rotator, shape CapsuleShape, ignore ...ActorID) bool
}

// Animator plays montages. onNotify is invoked once at the montage's scripted
// notify point; the returned duration is <= 0 when the montage is unknown.
type Animator interface {
	PlayMontage(name string, onNotify func()) float64
}

// TimerHandle identifies a scheduled callback. Zero is never issued.
type TimerHandle uint64

// Scheduler runs one-shot callbacks on the frame clock.
type Scheduler interface {
	Now() float64
	After(delay float64, fn func()) TimerHandle
	Cancel(h TimerHandle)
}

// LoopHandle identifies a looping sound. Zero is never issued.
type LoopHandle uint64

// Effects is fire-and-forget audio/visual feedback.
type Effects interface {
	PlaySoundAt(name string, position common.Vec3)
	StartLoop(name string) LoopHandle
	StopLoop(h LoopHandle)
	SetTether(visible bool, anchor common.Vec3)
}
