package drive

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/wheeled/go-drivebot/internal/log"
	"github.com/wheeled/go-drivebot/pkg/motor"
)

// DefaultTick is the default actuation period. 50ms keeps the motor driver
// comfortably below saturation while staying responsive to slider input.
const DefaultTick = 50 * time.Millisecond

// errorLogInterval limits how often repeating device errors are logged.
const errorLogInterval = 5 * time.Second

// Loop is the actuation side of the remote-control core. Each tick it takes
// one snapshot of the shared state, mixes it into per-side power and issues
// exactly one SetPower call per motor. It never waits for a new command:
// with no intervening update the last command is simply reapplied, which is
// what makes held-down sliders drive the robot continuously.
type Loop struct {
	state  *State
	motors motor.Driver
	tick   time.Duration

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	started  atomic.Bool

	// OnApply, when set, is called after each successful tick with the
	// command that was applied and the power that was sent. Used for
	// dashboard telemetry; must not block.
	OnApply func(Command, MotorPower)

	// Diagnostics
	tickCount     uint64
	errorCount    uint64
	lastErrorTime time.Time
}

// NewLoop creates an actuation loop over the given state cell and driver.
// A tick of 0 selects DefaultTick.
func NewLoop(state *State, motors motor.Driver, tick time.Duration) *Loop {
	if tick <= 0 {
		tick = DefaultTick
	}
	return &Loop{
		state:  state,
		motors: motors,
		tick:   tick,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Run starts the actuation loop. Blocks until Stop is called. Before
// returning it issues one final zero-power pair so the robot never keeps
// rolling past shutdown.
func (l *Loop) Run() {
	l.started.Store(true)
	defer close(l.done)

	ticker := time.NewTicker(l.tick)
	defer ticker.Stop()

	log.Info("actuation loop started", "tick", l.tick)

	for {
		select {
		case <-l.stop:
			l.applyPower(MotorPower{})
			log.Info("actuation loop stopped", "ticks", l.tickCount, "errors", l.errorCount)
			return
		case <-ticker.C:
			l.runTick()
		}
	}
}

// Stop halts the loop and waits for the final zero-power command to be
// issued. Safe to call more than once, and returns immediately if Run was
// never started. If Run starts after Stop it still exits on its first
// select and issues the zero-power pair.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
	if !l.started.Load() {
		return
	}
	<-l.done
}

// runTick executes one read-compute-actuate cycle.
func (l *Loop) runTick() {
	l.tickCount++

	cmd := l.state.Snapshot()
	power := Mix(cmd)

	if !l.applyPower(power) {
		return
	}
	if l.OnApply != nil {
		l.OnApply(cmd, power)
	}
}

// applyPower sends one SetPower call per motor. Device errors are counted
// and retried next tick rather than killing the control loop; a single
// missed call must never halt the robot.
func (l *Loop) applyPower(p MotorPower) bool {
	ok := true
	if err := l.motors.SetPower(motor.Left, p.Left); err != nil {
		l.reportError(motor.Left, err)
		ok = false
	}
	if err := l.motors.SetPower(motor.Right, p.Right); err != nil {
		l.reportError(motor.Right, err)
		ok = false
	}
	return ok
}

// reportError logs a device error at most once per errorLogInterval.
func (l *Loop) reportError(id motor.ID, err error) {
	l.errorCount++
	if l.lastErrorTime.IsZero() || time.Since(l.lastErrorTime) > errorLogInterval {
		log.Warn("set power failed", "motor", id.String(), "err", err, "total_errors", l.errorCount)
		l.lastErrorTime = time.Now()
	}
}
