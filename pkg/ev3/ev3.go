// Package ev3 binds the motor and sensing ports to real ev3dev devices.
// Only this package talks to the tacho-motor and lego-sensor sysfs trees;
// everything above it works against the interfaces in pkg/motor.
package ev3

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ev3go/ev3dev"

	"github.com/wheeled/go-drivebot/internal/config"
	"github.com/wheeled/go-drivebot/pkg/motor"
)

// TankDriver drives the two wheel motors in run-direct mode: power updates
// are plain duty-cycle setpoint writes, which keeps per-tick actuation
// cheap and idempotent.
type TankDriver struct {
	left  *ev3dev.TachoMotor
	right *ev3dev.TachoMotor
}

// Ensure TankDriver implements the actuation port
var _ motor.Driver = (*TankDriver)(nil)

// NewTankDriver opens both wheel motors and puts them in run-direct mode
// with a brake stop action.
func NewTankDriver(cfg config.Config) (*TankDriver, error) {
	left, err := ev3dev.TachoMotorFor(cfg.LeftMotorPort, cfg.MotorDriver)
	if err != nil {
		return nil, fmt.Errorf("left motor on %s: %w", cfg.LeftMotorPort, err)
	}
	right, err := ev3dev.TachoMotorFor(cfg.RightMotorPort, cfg.MotorDriver)
	if err != nil {
		return nil, fmt.Errorf("right motor on %s: %w", cfg.RightMotorPort, err)
	}

	d := &TankDriver{left: left, right: right}
	for _, m := range []*ev3dev.TachoMotor{left, right} {
		m.SetStopAction("brake").SetDutyCycleSetpoint(0).Command("run-direct")
		if err := m.Err(); err != nil {
			return nil, fmt.Errorf("motor init: %w", err)
		}
	}
	return d, nil
}

// SetPower writes a duty-cycle setpoint in [-100, 100] to one motor.
func (d *TankDriver) SetPower(id motor.ID, percent int) error {
	if percent < -100 || percent > 100 {
		return fmt.Errorf("power %d for %s motor outside [-100, 100]", percent, id)
	}

	var m *ev3dev.TachoMotor
	switch id {
	case motor.Left:
		m = d.left
	case motor.Right:
		m = d.right
	default:
		return fmt.Errorf("unknown motor id %d", id)
	}

	m.SetDutyCycleSetpoint(percent)
	if err := m.Err(); err != nil {
		return fmt.Errorf("%s motor duty cycle: %w", id, err)
	}
	return nil
}

// Close brakes both motors. Called on shutdown after the control loop has
// already issued its final zero-power pair.
func (d *TankDriver) Close() error {
	var firstErr error
	for _, m := range []*ev3dev.TachoMotor{d.left, d.right} {
		m.Command("stop")
		if err := m.Err(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// SensorRig exposes the ultrasonic and touch sensors as the sensing port.
type SensorRig struct {
	rangeSensor *ev3dev.Sensor
	touchSensor *ev3dev.Sensor
}

// Ensure SensorRig implements the sensing port
var _ motor.Sensors = (*SensorRig)(nil)

// NewSensorRig opens the ultrasonic sensor in continuous-distance mode and
// the touch sensor.
func NewSensorRig(cfg config.Config) (*SensorRig, error) {
	rng, err := ev3dev.SensorFor(cfg.RangePort, cfg.RangeDriver)
	if err != nil {
		return nil, fmt.Errorf("range sensor on %s: %w", cfg.RangePort, err)
	}
	rng.SetMode("US-DIST-CM")
	if err := rng.Err(); err != nil {
		return nil, fmt.Errorf("range sensor mode: %w", err)
	}

	touch, err := ev3dev.SensorFor(cfg.TouchPort, cfg.TouchDriver)
	if err != nil {
		return nil, fmt.Errorf("touch sensor on %s: %w", cfg.TouchPort, err)
	}

	return &SensorRig{rangeSensor: rng, touchSensor: touch}, nil
}

// Distance returns the forward range in centimeters. The lego-ev3-us
// driver reports tenths of a centimeter in US-DIST-CM mode.
func (s *SensorRig) Distance() (float64, error) {
	raw, err := s.rangeSensor.Value(0)
	if err != nil {
		return 0, fmt.Errorf("range sensor read: %w", err)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("range sensor value %q: %w", raw, err)
	}
	return v / 10, nil
}

// Pressed reports whether the front touch sensor is depressed.
func (s *SensorRig) Pressed() (bool, error) {
	raw, err := s.touchSensor.Value(0)
	if err != nil {
		return false, fmt.Errorf("touch sensor read: %w", err)
	}
	return strings.TrimSpace(raw) == "1", nil
}
