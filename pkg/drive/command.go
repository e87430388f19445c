// Package drive implements the remote-control core: the shared command
// state written by inbound network requests, the differential-drive mixing
// function, and the periodic actuation loop that applies the latest command
// to the wheel motors.
package drive

// Command value domains.
const (
	SpeedMin = 0
	SpeedMax = 100

	DirectionMin = -100
	DirectionMax = 100
)

// Mode selects the motion regime, like the gear shift of a car.
type Mode int

const (
	ModeStop Mode = iota
	ModeForward
	ModeBackward
)

// Wire tokens for Mode, as sent by the web UI.
const (
	tokenStop     = "Stop"
	tokenForward  = "Forward"
	tokenBackward = "Backward"
)

// String returns the wire token for the mode.
func (m Mode) String() string {
	switch m {
	case ModeForward:
		return tokenForward
	case ModeBackward:
		return tokenBackward
	default:
		return tokenStop
	}
}

// MarshalText encodes the mode as its wire token.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText parses a wire token.
func (m *Mode) UnmarshalText(text []byte) error {
	mode, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// ParseMode converts a wire token into a Mode.
// Unrecognized tokens are rejected with a ValidationError.
func ParseMode(token string) (Mode, error) {
	switch token {
	case tokenStop:
		return ModeStop, nil
	case tokenForward:
		return ModeForward, nil
	case tokenBackward:
		return ModeBackward, nil
	default:
		return ModeStop, &ValidationError{Field: "mode", Value: token, Reason: ErrUnknownMode}
	}
}

// Command is the authoritative driving intent. The zero value is the start
// state: stopped, speed 0, straight ahead.
type Command struct {
	Mode      Mode `json:"mode"`
	Speed     int  `json:"speed"`     // 0..100
	Direction int  `json:"direction"` // -100..100, negative steers left
}
