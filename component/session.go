package component

import (
	"github.com/google/uuid"

	"github.com/milk9111/parkour/common"
)

// SessionKind discriminates the active traversal session.
type SessionKind uint8

const (
	SessionNone SessionKind = iota
	SessionVault
	SessionWallRun
	SessionGrapple
	SessionHang
)

func (k SessionKind) String() string {
	switch k {
	case SessionNone:
		return "none"
	case SessionVault:
		return "vault"
	case SessionWallRun:
		return "wallrun"
	case SessionGrapple:
		return "grapple"
	case SessionHang:
		return "hang"
	default:
		return "unknown"
	}
}

// Session is the live state of one traversal ability. A character owns at
// most one at a time.
type Session interface {
	Kind() SessionKind
	ID() uuid.UUID
}

// KindOf reports SessionNone for a nil session.
func KindOf(s Session) SessionKind {
	if s == nil {
		return SessionNone
	}
	return s.Kind()
}

type VaultKind uint8

const (
	ShortVault VaultKind = iota
	TallVault
	ShortClimb
	TallClimb
)

func (k VaultKind) String() string {
	switch k {
	case ShortVault:
		return "short_vault"
	case TallVault:
		return "tall_vault"
	case ShortClimb:
		return "short_climb"
	case TallClimb:
		return "tall_climb"
	default:
		return "unknown"
	}
}

func (k VaultKind) IsClimb() bool {
	return k == ShortClimb || k == TallClimb
}

// VaultSession blends the character over or onto an obstacle.
type VaultSession struct {
	SessionID      uuid.UUID
	VaultKind      VaultKind
	Obstacle       ObstacleDescriptor
	Start          common.Vec3
	Target         common.Vec3
	StartRotation  common.Rotator
	TargetRotation common.Rotator
	// Alpha is the blend progress in [0,1]; it never decreases.
	Alpha    float64
	ArcPeak  float64
	Duration float64
	Watchdog TimerHandle
	Done     bool
}

func (s *VaultSession) Kind() SessionKind { return SessionVault }
func (s *VaultSession) ID() uuid.UUID     { return s.SessionID }

type WallSide uint8

const (
	WallSideNone WallSide = iota
	WallSideLeft
	WallSideRight
)

func (s WallSide) String() string {
	switch s {
	case WallSideLeft:
		return "left"
	case WallSideRight:
		return "right"
	default:
		return "none"
	}
}

// WallRunSession locks the character to a wall plane.
type WallRunSession struct {
	SessionID    uuid.UUID
	Normal       common.Vec3
	Side         WallSide
	Wall         ActorID
	Elapsed      float64
	Duration     float64
	AutoStop     TimerHandle
	PrevGravity  float64
	PrevPlane    common.Vec3
	PrevPlaneSet bool
}

func (s *WallRunSession) Kind() SessionKind { return SessionWallRun }
func (s *WallRunSession) ID() uuid.UUID     { return s.SessionID }

type GrapplePhase uint8

const (
	GrapplePulling GrapplePhase = iota
	GrappleMantling
)

// MantleSession is the terminal linear blend onto the anchor.
type MantleSession struct {
	Start    common.Vec3
	Target   common.Vec3
	Alpha    float64
	Duration float64
}

// GrappleSession pulls the character toward an anchor, then mantles.
type GrappleSession struct {
	SessionID          uuid.UUID
	Anchor             common.Vec3
	Distance           float64
	CooldownRemaining  float64
	Phase              GrapplePhase
	Mantle             *MantleSession
	OriginalHalfHeight float64
	PullLoop           LoopHandle
	// Accumulated frame time not yet consumed by a pull tick.
	Pending float64
}

func (s *GrappleSession) Kind() SessionKind { return SessionGrapple }
func (s *GrappleSession) ID() uuid.UUID     { return s.SessionID }

type HangKind uint8

const (
	HangLedge HangKind = iota
	HangPole
)

func (k HangKind) String() string {
	if k == HangPole {
		return "pole"
	}
	return "ledge"
}

// HangSession holds the character on a ledge or a swinging pole.
type HangSession struct {
	SessionID uuid.UUID
	HangKind  HangKind
	Anchor    common.Vec3
	// Normal is the grabbed surface normal; WallNormal is the ledge face
	// normal and is zero for poles.
	Normal     common.Vec3
	WallNormal common.Vec3
	// Forward is the character facing captured at grab time.
	Forward         common.Vec3
	SwingAngle      float64
	SwingVelocity   float64
	InitialMomentum float64
}

func (s *HangSession) Kind() SessionKind { return SessionHang }
func (s *HangSession) ID() uuid.UUID     { return s.SessionID }
