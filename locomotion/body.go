package locomotion

import (
	"math"

	"github.com/milk9111/parkour/common"
	"github.com/milk9111/parkour/component"
	"github.com/milk9111/parkour/scene"
)

// World is the geometry a Body collides with.
type World interface {
	LineTrace(start, end common.Vec3, ignore ...component.ActorID) (component.Hit, bool)
	Contacts(position common.Vec3, shape component.CapsuleShape, ignore ...component.ActorID) []scene.Contact
}

type Config struct {
	Radius       float64 `yaml:"radius"`
	HalfHeight   float64 `yaml:"halfHeight"`
	Gravity      float64 `yaml:"gravity"`
	WalkSpeed    float64 `yaml:"walkSpeed"`
	SprintMult   float64 `yaml:"sprintMult"`
	JumpSpeed    float64 `yaml:"jumpSpeed"`
	FloorSnap    float64 `yaml:"floorSnap"`
	FloorNormalZ float64 `yaml:"floorNormalZ"`
}

func DefaultConfig() Config {
	return Config{
		Radius:       42,
		HalfHeight:   96,
		Gravity:      980,
		WalkSpeed:    600,
		SprintMult:   1.5,
		JumpSpeed:    520,
		FloorSnap:    4,
		FloorNormalZ: 0.7,
	}
}

// Body is a kinematic character capsule. It implements component.Locomotion
// and component.Pose.
type Body struct {
	cfg   Config
	world World
	self  component.ActorID

	location common.Vec3
	rotation common.Rotator
	velocity common.Vec3

	mode         component.MovementMode
	radius       float64
	halfHeight   float64
	collision    bool
	gravityScale float64
	planeNormal  common.Vec3
	planeEnabled bool

	moveDir   common.Vec3
	sprinting bool

	Events EventQueue
}

func NewBody(cfg Config, world World, self component.ActorID) *Body {
	return &Body{
		cfg:          cfg,
		world:        world,
		self:         self,
		mode:         component.ModeFalling,
		radius:       cfg.Radius,
		halfHeight:   cfg.HalfHeight,
		collision:    true,
		gravityScale: 1,
	}
}

func (b *Body) Config() Config { return b.cfg }

func (b *Body) Location() common.Vec3          { return b.location }
func (b *Body) SetLocation(loc common.Vec3)    { b.location = loc }
func (b *Body) Rotation() common.Rotator       { return b.rotation }
func (b *Body) SetRotation(rot common.Rotator) { b.rotation = rot }

func (b *Body) Velocity() common.Vec3        { return b.velocity }
func (b *Body) SetVelocity(v common.Vec3)    { b.velocity = v }
func (b *Body) AddImpulse(dv common.Vec3)    { b.velocity = b.velocity.Add(dv) }
func (b *Body) Mode() component.MovementMode { return b.mode }
func (b *Body) IsGrounded() bool             { return b.mode == component.ModeWalking }
func (b *Body) IsFalling() bool              { return b.mode == component.ModeFalling }

func (b *Body) SetMode(m component.MovementMode) {
	if m == b.mode {
		return
	}
	prev := b.mode
	b.mode = m
	b.Events.Push(Event{Kind: EventModeChanged, Prev: prev, Next: m, VelocityZ: b.velocity.Z})
}

func (b *Body) Launch(v common.Vec3, overrideXY, overrideZ bool) {
	next := b.velocity
	if overrideXY {
		next.X, next.Y = v.X, v.Y
	} else {
		next.X += v.X
		next.Y += v.Y
	}
	if overrideZ {
		next.Z = v.Z
	} else {
		next.Z += v.Z
	}
	b.velocity = next
	b.SetMode(component.ModeFalling)
}

func (b *Body) CapsuleRadius() float64           { return b.radius }
func (b *Body) SetCapsuleRadius(r float64)       { b.radius = r }
func (b *Body) CapsuleHalfHeight() float64       { return b.halfHeight }
func (b *Body) SetCapsuleHalfHeight(h float64)   { b.halfHeight = h }
func (b *Body) CollisionEnabled() bool           { return b.collision }
func (b *Body) SetCollisionEnabled(enabled bool) { b.collision = enabled }
func (b *Body) GravityScale() float64            { return b.gravityScale }
func (b *Body) SetGravityScale(scale float64)    { b.gravityScale = scale }

func (b *Body) PlaneConstraint() (common.Vec3, bool) {
	return b.planeNormal, b.planeEnabled
}

func (b *Body) SetPlaneConstraint(normal common.Vec3, enabled bool) {
	b.planeNormal = normal.SafeNormal()
	b.planeEnabled = enabled && b.planeNormal.LengthSq() > 0
}

// SetMoveInput sets the desired horizontal walk direction in world space.
func (b *Body) SetMoveInput(dir common.Vec3) {
	b.moveDir = dir.WithZ(0).SafeNormal()
}

func (b *Body) SetSprinting(sprinting bool) { b.sprinting = sprinting }
func (b *Body) Sprinting() bool             { return b.sprinting }

// Jump performs the default jump. Gating is the caller's job.
func (b *Body) Jump() {
	b.velocity.Z = b.cfg.JumpSpeed
	b.SetMode(component.ModeFalling)
}

func (b *Body) shape() component.CapsuleShape {
	return component.CapsuleShape{Radius: b.radius, HalfHeight: b.halfHeight}
}

// Step integrates one frame of default locomotion.
func (b *Body) Step(dt float64) {
	if dt <= 0 {
		return
	}
	switch b.mode {
	case component.ModeNone:
		return
	case component.ModeWalking:
		speed := b.cfg.WalkSpeed
		if b.sprinting {
			speed *= b.cfg.SprintMult
		}
		b.velocity.X = b.moveDir.X * speed
		b.velocity.Y = b.moveDir.Y * speed
		if b.moveDir.LengthSq() > 0 {
			b.rotation.Yaw = b.moveDir.Rotation().Yaw
		}
		b.velocity.Z -= b.cfg.Gravity * b.gravityScale * dt
	case component.ModeFalling:
		b.velocity.Z -= b.cfg.Gravity * b.gravityScale * dt
	}
	if b.planeEnabled {
		b.velocity = b.velocity.ProjectOnPlane(b.planeNormal)
	}

	falling := b.velocity.Z <= 0
	contacts := b.move(b.velocity.Scale(dt))

	var floor *component.Hit
	reported := map[component.ActorID]bool{}
	for i := range contacts {
		hit := contacts[i]
		isFloor := hit.Normal.Z >= b.cfg.FloorNormalZ
		if isFloor && floor == nil {
			floor = &contacts[i]
		}
		if isFloor && b.mode != component.ModeFlying {
			continue
		}
		if reported[hit.Actor] {
			continue
		}
		reported[hit.Actor] = true
		b.Events.Push(Event{Kind: EventHit, Hit: hit})
	}

	switch b.mode {
	case component.ModeFalling:
		if floor != nil && falling {
			b.SetMode(component.ModeWalking)
			b.Events.Push(Event{Kind: EventLanded, Hit: *floor})
		}
	case component.ModeWalking:
		b.stickToFloor()
	}
}

// move sweeps the capsule in sub-steps no longer than half its radius and
// returns every blocking contact.
func (b *Body) move(delta common.Vec3) []component.Hit {
	if !b.collision || b.world == nil {
		b.location = b.location.Add(delta)
		return nil
	}
	length := delta.Length()
	steps := int(math.Ceil(length / math.Max(b.radius*0.5, 1)))
	if steps < 1 {
		steps = 1
	}
	step := delta.Scale(1 / float64(steps))
	var hits []component.Hit
	for i := 0; i < steps; i++ {
		b.location = b.location.Add(step)
		for iter := 0; iter < 4; iter++ {
			contacts := b.world.Contacts(b.location, b.shape(), b.self)
			if len(contacts) == 0 {
				break
			}
			for _, c := range contacts {
				b.location = b.location.Add(c.Hit.Normal.Scale(c.Depth))
				if vn := b.velocity.Dot(c.Hit.Normal); vn < 0 {
					b.velocity = b.velocity.Sub(c.Hit.Normal.Scale(vn))
				}
				if sn := step.Dot(c.Hit.Normal); sn < 0 {
					step = step.Sub(c.Hit.Normal.Scale(sn))
				}
				hits = append(hits, c.Hit)
			}
		}
	}
	return hits
}

func (b *Body) stickToFloor() {
	if b.world == nil || !b.collision {
		return
	}
	start := b.location
	end := start.Add(common.Vec3{Z: -(b.halfHeight + b.cfg.FloorSnap)})
	hit, ok := b.world.LineTrace(start, end, b.self)
	if ok && !hit.StartInside && hit.Normal.Z >= b.cfg.FloorNormalZ {
		b.location.Z = hit.Point.Z + b.halfHeight
		if b.velocity.Z < 0 {
			b.velocity.Z = 0
		}
		return
	}
	b.SetMode(component.ModeFalling)
}
