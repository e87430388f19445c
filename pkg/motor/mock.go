package motor

import "sync"

// PowerCall records a single SetPower invocation.
type PowerCall struct {
	Motor   ID
	Percent int
}

// MockDriver records all SetPower calls for testing.
// It is safe for concurrent use.
type MockDriver struct {
	mu    sync.Mutex
	calls []PowerCall

	err error
}

// Ensure MockDriver implements Driver
var _ Driver = (*MockDriver)(nil)

func (m *MockDriver) SetPower(id ID, percent int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.calls = append(m.calls, PowerCall{Motor: id, Percent: percent})
	return nil
}

// SetErr makes every subsequent SetPower call fail with err.
// Pass nil to restore normal operation.
func (m *MockDriver) SetErr(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

// Calls returns a copy of all recorded calls.
func (m *MockDriver) Calls() []PowerCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]PowerCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns the number of recorded calls.
func (m *MockDriver) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Last returns the most recent power seen by each motor.
// Motors that were never driven report zero.
func (m *MockDriver) Last() (left, right int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.calls {
		if c.Motor == Left {
			left = c.Percent
		} else {
			right = c.Percent
		}
	}
	return left, right
}
