package component

// VaultTuning configures obstacle detection and the vault/climb blend.
type VaultTuning struct {
	RayCount        int     `yaml:"rayCount"`
	MinTraceHeight  float64 `yaml:"minTraceHeight"`
	MaxTraceHeight  float64 `yaml:"maxTraceHeight"`
	TraceDistance   float64 `yaml:"traceDistance"`
	SprintTraceMult float64 `yaml:"sprintTraceMult"`
	WallNormalMaxZ  float64 `yaml:"wallNormalMaxZ"`

	MinShortVaultHeight float64 `yaml:"minShortVaultHeight"`
	MaxShortVaultHeight float64 `yaml:"maxShortVaultHeight"`
	MaxTraverseHeight   float64 `yaml:"maxTraverseHeight"`

	// Wall top probe: starts this far above the feet, inset into the wall.
	WallTopProbeHeight float64 `yaml:"wallTopProbeHeight"`
	WallTopInset       float64 `yaml:"wallTopInset"`

	ThicknessForClimb   float64 `yaml:"thicknessForClimb"`
	ThickProbeLift      float64 `yaml:"thickProbeLift"`
	ThickProbeDepth     float64 `yaml:"thickProbeDepth"`
	ThickFloorClearance float64 `yaml:"thickFloorClearance"`

	LandingMargin     float64 `yaml:"landingMargin"`
	LandingRadiusMult float64 `yaml:"landingRadiusMult"`
	LandingHeightMult float64 `yaml:"landingHeightMult"`
	LandingFloorDepth float64 `yaml:"landingFloorDepth"`

	VaultOvershoot     float64 `yaml:"vaultOvershoot"`
	ArcClearance       float64 `yaml:"arcClearance"`
	ArcTargetClearance float64 `yaml:"arcTargetClearance"`
	ClimbForward       float64 `yaml:"climbForward"`
	ClimbLift          float64 `yaml:"climbLift"`

	MaxBlendSpeed   float64 `yaml:"maxBlendSpeed"`
	SnapAlpha       float64 `yaml:"snapAlpha"`
	VaultInterp     float64 `yaml:"vaultInterp"`
	ClimbInterp     float64 `yaml:"climbInterp"`
	ClimbSlowAlpha  float64 `yaml:"climbSlowAlpha"`
	MinDuration     float64 `yaml:"minDuration"`
	WatchdogFactor  float64 `yaml:"watchdogFactor"`
	ShortVaultAnim  string  `yaml:"shortVaultAnim"`
	TallVaultAnim   string  `yaml:"tallVaultAnim"`
	ShortClimbAnim  string  `yaml:"shortClimbAnim"`
	TallClimbAnim   string  `yaml:"tallClimbAnim"`
	VaultStartSound string  `yaml:"vaultStartSound"`
}

// Montage returns the animation name for a vault kind.
func (t VaultTuning) Montage(k VaultKind) string {
	switch k {
	case ShortVault:
		return t.ShortVaultAnim
	case TallVault:
		return t.TallVaultAnim
	case ShortClimb:
		return t.ShortClimbAnim
	case TallClimb:
		return t.TallClimbAnim
	default:
		return ""
	}
}

type WallRunTuning struct {
	Duration        float64 `yaml:"duration"`
	GravityScale    float64 `yaml:"gravityScale"`
	MinSpeed        float64 `yaml:"minSpeed"`
	MinWallAngleDot float64 `yaml:"minWallAngleDot"`
	MinWallHeight   float64 `yaml:"minWallHeight"`
	AttemptCooldown float64 `yaml:"attemptCooldown"`
	FloorProbe      float64 `yaml:"floorProbe"`

	JumpForceMult   float64 `yaml:"jumpForceMult"`
	JumpHeightBoost float64 `yaml:"jumpHeightBoost"`
	JumpNormalBlend float64 `yaml:"jumpNormalBlend"`
	JumpLift        float64 `yaml:"jumpLift"`

	TiltAngle     float64 `yaml:"tiltAngle"`
	TiltSpeed     float64 `yaml:"tiltSpeed"`
	TiltTolerance float64 `yaml:"tiltTolerance"`
}

type GrappleTuning struct {
	Range              float64 `yaml:"range"`
	Cooldown           float64 `yaml:"cooldown"`
	TickInterval       float64 `yaml:"tickInterval"`
	InitialUpwardBoost float64 `yaml:"initialUpwardBoost"`

	BasePull               float64 `yaml:"basePull"`
	DownwardPullMult       float64 `yaml:"downwardPullMult"`
	DistanceScaleReference float64 `yaml:"distanceScaleReference"`
	MinDistanceMult        float64 `yaml:"minDistanceMult"`
	MaxDistanceMult        float64 `yaml:"maxDistanceMult"`

	AntiGravity            float64 `yaml:"antiGravity"`
	HorizontalThreshold    float64 `yaml:"horizontalThreshold"`
	MinAntiGravityDistance float64 `yaml:"minAntiGravityDistance"`
	ReleaseDistance        float64 `yaml:"releaseDistance"`

	LandingMargin     float64 `yaml:"landingMargin"`
	LandingRadiusMult float64 `yaml:"landingRadiusMult"`
	LandingHeightMult float64 `yaml:"landingHeightMult"`

	MantleDuration float64 `yaml:"mantleDuration"`
	MantleForward  float64 `yaml:"mantleForward"`
	MantleLift     float64 `yaml:"mantleLift"`
	CrouchFactor   float64 `yaml:"crouchFactor"`

	StartSound  string `yaml:"startSound"`
	AttachSound string `yaml:"attachSound"`
	PullLoop    string `yaml:"pullLoop"`
}

type LedgeTuning struct {
	ForwardReach  float64 `yaml:"forwardReach"`
	ChestHeight   float64 `yaml:"chestHeight"`
	UpwardReach   float64 `yaml:"upwardReach"`
	DownProbe     float64 `yaml:"downProbe"`
	LedgeInset    float64 `yaml:"ledgeInset"`
	MinGrabHeight float64 `yaml:"minGrabHeight"`
	LedgeNormalZ  float64 `yaml:"ledgeNormalZ"`
	PoleSideMaxZ  float64 `yaml:"poleSideMaxZ"`

	MaxSwingAngle   float64 `yaml:"maxSwingAngle"`
	SwingDecay      float64 `yaml:"swingDecay"`
	SwingGravity    float64 `yaml:"swingGravity"`
	SwingBounce     float64 `yaml:"swingBounce"`
	SwingRadius     float64 `yaml:"swingRadius"`
	MomentumToSwing float64 `yaml:"momentumToSwing"`
	HangClearance   float64 `yaml:"hangClearance"`
	HangDrop        float64 `yaml:"hangDrop"`

	MantleHeight     float64 `yaml:"mantleHeight"`
	MantleForward    float64 `yaml:"mantleForward"`
	MantleSpeed      float64 `yaml:"mantleSpeed"`
	SwingJumpMult    float64 `yaml:"swingJumpMult"`
	SwingJumpUp      float64 `yaml:"swingJumpUp"`
	InitialMomentumW float64 `yaml:"initialMomentumWeight"`
	GrabSound        string  `yaml:"grabSound"`
}

// CharacterTuning covers the coordinator's jump gating.
type CharacterTuning struct {
	JumpCooldown       float64 `yaml:"jumpCooldown"`
	SprintCooldownMult float64 `yaml:"sprintCooldownMult"`
	CoyoteTime         float64 `yaml:"coyoteTime"`
}

// Tuning is the full set of traversal constants.
type Tuning struct {
	Vault     VaultTuning     `yaml:"vault"`
	WallRun   WallRunTuning   `yaml:"wallRun"`
	Grapple   GrappleTuning   `yaml:"grapple"`
	Ledge     LedgeTuning     `yaml:"ledge"`
	Character CharacterTuning `yaml:"character"`
}

func DefaultTuning() Tuning {
	return Tuning{
		Vault: VaultTuning{
			RayCount:            5,
			MinTraceHeight:      10,
			MaxTraceHeight:      230,
			TraceDistance:       120,
			SprintTraceMult:     3,
			WallNormalMaxZ:      0.5,
			MinShortVaultHeight: 2,
			MaxShortVaultHeight: 50,
			MaxTraverseHeight:   216,
			WallTopProbeHeight:  300,
			WallTopInset:        10,
			ThicknessForClimb:   60,
			ThickProbeLift:      50,
			ThickProbeDepth:     100,
			ThickFloorClearance: 5,
			LandingMargin:       20,
			LandingRadiusMult:   0.85,
			LandingHeightMult:   0.9,
			LandingFloorDepth:   400,
			VaultOvershoot:      80,
			ArcClearance:        50,
			ArcTargetClearance:  30,
			ClimbForward:        40,
			ClimbLift:           5,
			MaxBlendSpeed:       1000,
			SnapAlpha:           0.9,
			VaultInterp:         15,
			ClimbInterp:         8,
			ClimbSlowAlpha:      0.6,
			MinDuration:         1,
			WatchdogFactor:      1.5,
			ShortVaultAnim:      "vault_short",
			TallVaultAnim:       "vault_tall",
			ShortClimbAnim:      "climb_short",
			TallClimbAnim:       "climb_tall",
			VaultStartSound:     "vault",
		},
		WallRun: WallRunTuning{
			Duration:        0.75,
			GravityScale:    0.5,
			MinSpeed:        300,
			MinWallAngleDot: 0.6,
			MinWallHeight:   40,
			AttemptCooldown: 0.1,
			FloorProbe:      1000,
			JumpForceMult:   1,
			JumpHeightBoost: 100,
			JumpNormalBlend: 0.5,
			JumpLift:        0.4,
			TiltAngle:       15,
			TiltSpeed:       5,
			TiltTolerance:   0.1,
		},
		Grapple: GrappleTuning{
			Range:                  3000,
			Cooldown:               2,
			TickInterval:           0.1,
			InitialUpwardBoost:     300,
			BasePull:               2000,
			DownwardPullMult:       1.5,
			DistanceScaleReference: 300,
			MinDistanceMult:        0.5,
			MaxDistanceMult:        2,
			AntiGravity:            800,
			HorizontalThreshold:    100,
			MinAntiGravityDistance: 200,
			ReleaseDistance:        100,
			LandingMargin:          20,
			LandingRadiusMult:      0.85,
			LandingHeightMult:      0.9,
			MantleDuration:         0.5,
			MantleForward:          40,
			MantleLift:             10,
			CrouchFactor:           0.5,
			StartSound:             "grapple_fire",
			AttachSound:            "grapple_attach",
			PullLoop:               "grapple_pull",
		},
		Ledge: LedgeTuning{
			ForwardReach:     150,
			ChestHeight:      50,
			UpwardReach:      120,
			DownProbe:        150,
			LedgeInset:       5,
			MinGrabHeight:    50,
			LedgeNormalZ:     0.7,
			PoleSideMaxZ:     0.3,
			MaxSwingAngle:    45,
			SwingDecay:       0.95,
			SwingGravity:     20,
			SwingBounce:      0.8,
			SwingRadius:      80,
			MomentumToSwing:  0.01,
			HangClearance:    30,
			HangDrop:         70,
			MantleHeight:     200,
			MantleForward:    50,
			MantleSpeed:      600,
			SwingJumpMult:    2,
			SwingJumpUp:      400,
			InitialMomentumW: 0.5,
			GrabSound:        "grab",
		},
		Character: CharacterTuning{
			JumpCooldown:       1,
			SprintCooldownMult: 1.5,
			CoyoteTime:         0.15,
		},
	}
}
