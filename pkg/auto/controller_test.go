package auto

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/wheeled/go-drivebot/pkg/motor"
)

// scriptSensors replays a fixed distance trace, repeating the final
// reading once the trace is exhausted.
type scriptSensors struct {
	mu        sync.Mutex
	distances []float64
	idx       int
	pressed   bool
}

func (s *scriptSensors) Distance() (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.idx < len(s.distances)-1 {
		d := s.distances[s.idx]
		s.idx++
		return d, nil
	}
	return s.distances[len(s.distances)-1], nil
}

func (s *scriptSensors) Pressed() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pressed, nil
}

// fastOptions shrinks every duration so a full react cycle fits in a few
// milliseconds of test time.
func fastOptions() Options {
	return Options{
		CruisePower:    100,
		StopDistanceCM: 15,
		SlowDistanceCM: 40,
		Poll:           time.Millisecond,
		ReversePower:   60,
		ReverseFor:     time.Millisecond,
		PivotPower:     80,
		PivotMin:       time.Millisecond,
		PivotMax:       time.Millisecond,
	}
}

// pairs collapses the per-motor call log into (left, right) pairs in the
// order they were commanded.
func pairs(calls []motor.PowerCall) [][2]int {
	var out [][2]int
	var cur [2]int
	var haveLeft bool
	for _, c := range calls {
		if c.Motor == motor.Left {
			cur[0] = c.Percent
			haveLeft = true
			continue
		}
		if haveLeft {
			cur[1] = c.Percent
			out = append(out, cur)
			haveLeft = false
		}
	}
	return out
}

func TestController_ReactsToCloseObstacleAndResumes(t *testing.T) {
	motors := &motor.MockDriver{}
	sensors := &scriptSensors{
		// Clear for three polls, then an obstacle inside the stop
		// threshold, then clear again.
		distances: []float64{100, 100, 100, 10, 100},
	}

	ctrl := New(motors, sensors, fastOptions(), rand.New(rand.NewSource(1)))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	ctrl.Run(ctx)

	got := pairs(motors.Calls())
	if len(got) < 6 {
		t.Fatalf("expected a full drive/react/resume trace, got %v", got)
	}

	// Phase 1: straight cruising at full power until the obstacle.
	if got[0] != [2]int{100, 100} {
		t.Errorf("first command = %v, want full cruise (100, 100)", got[0])
	}

	// Locate the react sequence: stop, reverse, pivot, stop.
	reactAt := -1
	for i, p := range got {
		if p == [2]int{-60, -60} {
			reactAt = i
			break
		}
	}
	if reactAt < 1 {
		t.Fatalf("no reverse command in trace %v", got)
	}
	if got[reactAt-1] != [2]int{0, 0} {
		t.Errorf("command before reverse = %v, want stop (0, 0)", got[reactAt-1])
	}

	pivot := got[reactAt+1]
	if pivot[0] != -pivot[1] || pivot[0] == 0 {
		t.Errorf("pivot command = %v, want opposing nonzero power", pivot)
	}
	if got[reactAt+2] != [2]int{0, 0} {
		t.Errorf("command after pivot = %v, want stop (0, 0)", got[reactAt+2])
	}

	// Phase 3: cruising resumes.
	if got[reactAt+3] != [2]int{100, 100} {
		t.Errorf("command after react = %v, want resumed cruise (100, 100)", got[reactAt+3])
	}

	// Shutdown safety: the very last command is zero power.
	if last := got[len(got)-1]; last != [2]int{0, 0} {
		t.Errorf("final command = %v, want (0, 0)", last)
	}
}

func TestController_TouchTriggersReact(t *testing.T) {
	motors := &motor.MockDriver{}
	sensors := &scriptSensors{distances: []float64{100}, pressed: true}

	ctrl := New(motors, sensors, fastOptions(), rand.New(rand.NewSource(1)))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	ctrl.Run(ctx)

	var sawReverse bool
	for _, p := range pairs(motors.Calls()) {
		if p == [2]int{-60, -60} {
			sawReverse = true
			break
		}
	}
	if !sawReverse {
		t.Errorf("touch press never triggered the reverse sequence: %v", pairs(motors.Calls()))
	}
}

func TestController_SlowsDownApproachingObstacle(t *testing.T) {
	opts := fastOptions()
	ctrl := New(&motor.MockDriver{}, &scriptSensors{distances: []float64{100}}, opts, nil)

	tests := []struct {
		distance float64
		want     int
	}{
		{100, 100}, // beyond the slow threshold: full power
		{40, 100},  // exactly at the threshold
		{27.5, 50}, // halfway between slow and stop
		{15, 0},    // at the stop threshold
	}
	for _, tt := range tests {
		if got := ctrl.cruisePower(tt.distance); got != tt.want {
			t.Errorf("cruisePower(%v) = %d, want %d", tt.distance, got, tt.want)
		}
	}
}

func TestController_StopsOnCancel(t *testing.T) {
	motors := &motor.MockDriver{}
	sensors := &scriptSensors{distances: []float64{100}}
	ctrl := New(motors, sensors, fastOptions(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		ctrl.Run(ctx)
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("controller did not stop on cancel")
	}

	left, right := motors.Last()
	if left != 0 || right != 0 {
		t.Errorf("final power = (%d, %d), want (0, 0)", left, right)
	}
}
