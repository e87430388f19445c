// Package auto implements the autonomous obstacle-avoidance mode: a
// sequential sense-react state machine that owns the motors directly and
// shares no state with the remote-control core.
package auto

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/wheeled/go-drivebot/internal/log"
	"github.com/wheeled/go-drivebot/pkg/motor"
)

// State identifies the controller's current phase.
type State int

const (
	// DrivingStraight cruises ahead, watching the sensors.
	DrivingStraight State = iota
	// Reacting runs the stop, reverse, pivot evasion sequence.
	Reacting
)

// Options tunes the drive routine. The defaults reproduce the cautious
// roomba behavior: slow down approaching an obstacle, stop and evade when
// too close or on contact.
type Options struct {
	CruisePower    int           // top straight-line power percent
	StopDistanceCM float64       // closer than this counts as an obstacle
	SlowDistanceCM float64       // start slowing down below this
	Poll           time.Duration // sensing interval while driving straight
	ReversePower   int           // power while backing away
	ReverseFor     time.Duration // how long to back away
	PivotPower     int           // per-side power during the pivot
	PivotMin       time.Duration // shortest random pivot
	PivotMax       time.Duration // longest random pivot
}

// DefaultOptions returns the stock tuning.
func DefaultOptions() Options {
	return Options{
		CruisePower:    100,
		StopDistanceCM: 15,
		SlowDistanceCM: 40,
		Poll:           200 * time.Millisecond,
		ReversePower:   60,
		ReverseFor:     1500 * time.Millisecond,
		PivotPower:     80,
		PivotMin:       250 * time.Millisecond,
		PivotMax:       750 * time.Millisecond,
	}
}

// Controller is the autonomous driver. Single thread of control; Run owns
// the motors for its whole lifetime.
type Controller struct {
	motors  motor.Driver
	sensors motor.Sensors
	opts    Options
	rnd     *rand.Rand
	state   State
}

// New creates a Controller. rnd may be nil, in which case a time-seeded
// source is used; tests inject a fixed seed for deterministic pivots.
func New(motors motor.Driver, sensors motor.Sensors, opts Options, rnd *rand.Rand) *Controller {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Controller{
		motors:  motors,
		sensors: sensors,
		opts:    opts,
		rnd:     rnd,
	}
}

// State returns the current phase. Only meaningful between Run iterations;
// exposed for observability.
func (c *Controller) State() State {
	return c.state
}

// Run drives until the context is cancelled or a motor stops responding.
// The motors are always commanded to zero power before Run returns.
func (c *Controller) Run(ctx context.Context) error {
	defer c.setBoth(0, 0)

	log.Info("auto drive started",
		"cruise", c.opts.CruisePower,
		"stop_cm", c.opts.StopDistanceCM,
		"slow_cm", c.opts.SlowDistanceCM)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		switch c.state {
		case DrivingStraight:
			if err := c.cruise(ctx); err != nil {
				return err
			}
		case Reacting:
			if err := c.react(ctx); err != nil {
				return err
			}
			c.state = DrivingStraight
		}
	}
}

// cruise performs one straight-driving poll: read the sensors, either flag
// an obstacle or apply the distance-scaled cruise power, then wait out the
// poll interval.
func (c *Controller) cruise(ctx context.Context) error {
	obstacle, distance, ok := c.sense()
	if !ok {
		// Keep the last commanded power and try again next poll.
		return sleep(ctx, c.opts.Poll)
	}
	if obstacle {
		log.Info("obstacle detected", "distance_cm", distance)
		c.state = Reacting
		return nil
	}

	power := c.cruisePower(distance)
	if err := c.setBoth(power, power); err != nil {
		return err
	}

	return sleep(ctx, c.opts.Poll)
}

// sense reads both sensors. A read failure is logged and the poll skipped;
// a flaky sensor must not crash the drive routine.
func (c *Controller) sense() (obstacle bool, distance float64, ok bool) {
	pressed, err := c.sensors.Pressed()
	if err != nil {
		log.Warn("touch sensor read failed", "err", err)
		return false, 0, false
	}
	distance, err = c.sensors.Distance()
	if err != nil {
		log.Warn("range sensor read failed", "err", err)
		return false, 0, false
	}
	return pressed || distance < c.opts.StopDistanceCM, distance, true
}

// cruisePower scales the cruise power by how far the robot is between the
// stop and slow thresholds: full power beyond SlowDistanceCM, tapering to
// zero at StopDistanceCM.
func (c *Controller) cruisePower(distance float64) int {
	if distance >= c.opts.SlowDistanceCM {
		return c.opts.CruisePower
	}
	span := c.opts.SlowDistanceCM - c.opts.StopDistanceCM
	if span <= 0 {
		return c.opts.CruisePower
	}
	frac := (distance - c.opts.StopDistanceCM) / span
	if frac < 0 {
		frac = 0
	}
	return int(float64(c.opts.CruisePower) * frac)
}

// react runs the evasion sequence: stop, back away for a fixed time, then
// pivot for a random time in a coin-flip direction.
func (c *Controller) react(ctx context.Context) error {
	// 1. Stop.
	if err := c.setBoth(0, 0); err != nil {
		return err
	}

	// 2. Reverse.
	log.Info("backing away")
	if err := c.setBoth(-c.opts.ReversePower, -c.opts.ReversePower); err != nil {
		return err
	}
	if err := sleep(ctx, c.opts.ReverseFor); err != nil {
		return err
	}

	// 3. Pivot.
	left, right := c.opts.PivotPower, -c.opts.PivotPower
	if c.rnd.Intn(2) == 0 {
		left, right = right, left
	}
	pivotFor := c.opts.PivotMin
	if spread := c.opts.PivotMax - c.opts.PivotMin; spread > 0 {
		pivotFor += time.Duration(c.rnd.Int63n(int64(spread) + 1))
	}
	log.Info("pivoting", "left", left, "right", right, "for", pivotFor)
	if err := c.setBoth(left, right); err != nil {
		return err
	}
	if err := sleep(ctx, pivotFor); err != nil {
		return err
	}

	return c.setBoth(0, 0)
}

// setBoth issues one SetPower call per motor.
func (c *Controller) setBoth(left, right int) error {
	if err := c.motors.SetPower(motor.Left, left); err != nil {
		return fmt.Errorf("left motor: %w", err)
	}
	if err := c.motors.SetPower(motor.Right, right); err != nil {
		return fmt.Errorf("right motor: %w", err)
	}
	return nil
}

// sleep waits for d or until the context is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
