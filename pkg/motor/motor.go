// Package motor defines the hardware ports used by the drive controllers.
//
// The interfaces here are deliberately small so that control code can be
// exercised against mocks and only the ev3 package touches real devices.
// Consumers should depend only on the interfaces they actually use.
package motor

// ID identifies one of the two drive motors.
type ID int

const (
	Left ID = iota
	Right
)

// String returns the motor name for logging.
func (id ID) String() string {
	switch id {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "unknown"
	}
}

// Driver drives the two wheel motors. SetPower accepts a signed percentage
// in [-100, 100]; negative values run the motor in reverse. Calls are
// fire-and-forget and idempotent.
type Driver interface {
	SetPower(id ID, percent int) error
}

// Ranger reads the forward distance sensor in centimeters.
type Ranger interface {
	Distance() (float64, error)
}

// Toucher reads the front contact sensor.
type Toucher interface {
	Pressed() (bool, error)
}

// Sensors combines the sensing ports used by the autonomous controller.
type Sensors interface {
	Ranger
	Toucher
}
