package drive

// MotorPower is the per-side output of the mixing function. It is
// recomputed from a fresh snapshot every actuation tick and never stored.
type MotorPower struct {
	Left  int `json:"left"`  // -100..100
	Right int `json:"right"` // -100..100
}

// clamp restricts v to the range [min, max].
func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Mix converts a command into per-side motor power using inner-wheel
// attenuation: the wheel on the inside of the turn is slowed in proportion
// to |direction| while the outer wheel keeps the base speed. Full lock
// (direction ±100) therefore stops the inner wheel entirely.
//
// ModeStop forces both sides to zero no matter what speed and direction
// are stored. Speed 0 in a driving mode is simply no motion.
func Mix(cmd Command) MotorPower {
	if cmd.Mode == ModeStop {
		return MotorPower{}
	}

	base := cmd.Speed
	if cmd.Mode == ModeBackward {
		base = -base
	}

	abs := cmd.Direction
	if abs < 0 {
		abs = -abs
	}
	inner := base * (100 - abs) / 100

	var p MotorPower
	switch {
	case cmd.Direction < 0:
		// Steering left: left wheel is on the inside of the turn.
		p = MotorPower{Left: inner, Right: base}
	case cmd.Direction > 0:
		p = MotorPower{Left: base, Right: inner}
	default:
		p = MotorPower{Left: base, Right: base}
	}

	// The formula cannot leave the domain, but the actuation port must
	// never see anything outside it.
	p.Left = clamp(p.Left, -100, 100)
	p.Right = clamp(p.Right, -100, 100)
	return p
}
