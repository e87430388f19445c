package drive

import (
	"strconv"
	"sync"
)

// State is the single long-lived cell holding the latest Command. It is
// shared between the HTTP ingress handlers and the actuation loop; all
// access goes through the setters and Snapshot so a reader can never
// observe a half-written command.
//
// Each setter updates exactly one field. There is no multi-field
// transaction in the control protocol: speed, direction and mode arrive
// as independent network events and may land in any order.
type State struct {
	mu  sync.RWMutex
	cmd Command
}

// NewState returns a State in the stopped start position.
func NewState() *State {
	return &State{}
}

// SetSpeed installs a new travel speed in [0, 100].
// Out-of-domain values are rejected and the stored speed is kept.
func (s *State) SetSpeed(speed int) error {
	if speed < SpeedMin || speed > SpeedMax {
		return outOfRange("speed", speed)
	}
	s.mu.Lock()
	s.cmd.Speed = speed
	s.mu.Unlock()
	return nil
}

// SetDirection installs a new steering bias in [-100, 100].
// Out-of-domain values are rejected and the stored direction is kept.
func (s *State) SetDirection(direction int) error {
	if direction < DirectionMin || direction > DirectionMax {
		return outOfRange("direction", direction)
	}
	s.mu.Lock()
	s.cmd.Direction = direction
	s.mu.Unlock()
	return nil
}

// SetMode installs a new drive mode.
func (s *State) SetMode(mode Mode) error {
	switch mode {
	case ModeStop, ModeForward, ModeBackward:
	default:
		return &ValidationError{Field: "mode", Value: strconv.Itoa(int(mode)), Reason: ErrUnknownMode}
	}
	s.mu.Lock()
	s.cmd.Mode = mode
	s.mu.Unlock()
	return nil
}

// SetModeToken parses a wire token and installs the resulting mode.
// On an unrecognized token the stored mode is kept.
func (s *State) SetModeToken(token string) error {
	mode, err := ParseMode(token)
	if err != nil {
		return err
	}
	return s.SetMode(mode)
}

// Snapshot returns a self-consistent copy of the current command.
// It never blocks beyond the setters' field-assignment critical section.
func (s *State) Snapshot() Command {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cmd
}
