package component

import "github.com/milk9111/parkour/common"

// ObstacleDescriptor is produced by a vault scan and consumed immediately.
type ObstacleDescriptor struct {
	Top    common.Vec3
	Normal common.Vec3
	Height float64
	IsWall bool
	// IsThick marks walls too deep to vault over; they can only be climbed.
	IsThick bool
}
