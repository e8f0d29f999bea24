package component

import (
	"errors"

	"github.com/milk9111/parkour/common"
)

var (
	ErrMissingLocomotion = errors.New("traversal: locomotion system missing")
	ErrMissingPose       = errors.New("traversal: pose control missing")
	ErrMissingScene      = errors.New("traversal: scene query service missing")
	ErrMissingScheduler  = errors.New("traversal: scheduler missing")
)

// TraversalContext provides the capabilities an ability needs. It is built
// once per character and passed to every ability operation.
type TraversalContext struct {
	Self       ActorID
	Locomotion Locomotion
	Pose       Pose
	View       ViewPoint
	Scene      SceneQuery
	Animator   Animator
	Scheduler  Scheduler
	Effects    Effects
}

// Validate reports every required collaborator that is missing.
func (c *TraversalContext) Validate() error {
	if c == nil {
		return errors.Join(ErrMissingLocomotion, ErrMissingPose, ErrMissingScene, ErrMissingScheduler)
	}
	var errs []error
	if c.Locomotion == nil {
		errs = append(errs, ErrMissingLocomotion)
	}
	if c.Pose == nil {
		errs = append(errs, ErrMissingPose)
	}
	if c.Scene == nil {
		errs = append(errs, ErrMissingScene)
	}
	if c.Scheduler == nil {
		errs = append(errs, ErrMissingScheduler)
	}
	return errors.Join(errs...)
}

func (c *TraversalContext) Location() common.Vec3 {
	return c.Pose.Location()
}

// Feet is the bottom of the character's capsule.
func (c *TraversalContext) Feet() common.Vec3 {
	loc := c.Pose.Location()
	loc.Z -= c.Locomotion.CapsuleHalfHeight()
	return loc
}

func (c *TraversalContext) Forward() common.Vec3 {
	return c.Pose.Rotation().Forward()
}

func (c *TraversalContext) Right() common.Vec3 {
	return c.Pose.Rotation().Right()
}

// LookDirection falls back to the character facing without a view point.
func (c *TraversalContext) LookDirection() common.Vec3 {
	if c.View == nil {
		return c.Forward()
	}
	_, rot := c.View.ViewPoint()
	return rot.Vector()
}

func (c *TraversalContext) Trace(start, end common.Vec3) (Hit, bool) {
	hit, ok := c.Scene.LineTrace(start, end, c.Self)
	if !ok || !hit.Blocking {
		return Hit{}, false
	}
	return hit, true
}

// PlaySound is a no-op without an effects service.
func (c *TraversalContext) PlaySound(name string, position common.Vec3) {
	if c.Effects == nil || name == "" {
		return
	}
	c.Effects.PlaySoundAt(name, position)
}
