package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/wheeled/go-drivebot/pkg/drive"
)

func newTestServer() (*Server, *drive.State) {
	state := drive.NewState()
	return NewServer(state, "./testdata"), state
}

func postJSON(t *testing.T, s *Server, path, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.App().Test(req)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

func TestHandleSpeed_AcceptsValidValue(t *testing.T) {
	s, state := newTestServer()

	resp := postJSON(t, s, "/api/speed", `{"speed": 70}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if got := state.Snapshot().Speed; got != 70 {
		t.Errorf("speed after request = %d, want 70", got)
	}
}

func TestHandleSpeed_RejectsOutOfRange(t *testing.T) {
	s, state := newTestServer()
	state.SetSpeed(30)

	resp := postJSON(t, s, "/api/speed", `{"speed": 150}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}

	var body struct {
		Field  string `json:"field"`
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding error body: %v", err)
	}
	if body.Field != "speed" || body.Reason != "out_of_range" {
		t.Errorf("error body = %+v, want field=speed reason=out_of_range", body)
	}

	if got := state.Snapshot().Speed; got != 30 {
		t.Errorf("speed after rejected request = %d, want 30", got)
	}
}

func TestHandleDirection_AcceptsBoundaryValues(t *testing.T) {
	s, state := newTestServer()

	for _, v := range []string{`{"direction": -100}`, `{"direction": 100}`} {
		resp := postJSON(t, s, "/api/direction", v)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("POST %s: status = %d, want 200", v, resp.StatusCode)
		}
	}
	if got := state.Snapshot().Direction; got != 100 {
		t.Errorf("direction = %d, want 100", got)
	}
}

func TestHandleMode_UnknownTokenRejected(t *testing.T) {
	s, state := newTestServer()
	state.SetModeToken("Forward")

	resp := postJSON(t, s, "/api/mode", `{"mode": "Sideways"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}

	var body struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding error body: %v", err)
	}
	if body.Reason != "unknown_mode" {
		t.Errorf("reason = %q, want unknown_mode", body.Reason)
	}

	if got := state.Snapshot().Mode; got != drive.ModeForward {
		t.Errorf("mode after rejected request = %v, want Forward", got)
	}
}

func TestHandleMode_ShiftsGears(t *testing.T) {
	s, state := newTestServer()

	for token, want := range map[string]drive.Mode{
		"Forward":  drive.ModeForward,
		"Backward": drive.ModeBackward,
		"Stop":     drive.ModeStop,
	} {
		resp := postJSON(t, s, "/api/mode", `{"mode": "`+token+`"}`)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("POST mode %s: status = %d", token, resp.StatusCode)
		}
		if got := state.Snapshot().Mode; got != want {
			t.Errorf("mode after %s = %v, want %v", token, got, want)
		}
	}
}

func TestHandleState_ReturnsSnapshotWithPower(t *testing.T) {
	s, state := newTestServer()
	state.SetSpeed(80)
	state.SetDirection(50)
	state.SetModeToken("Forward")

	req := httptest.NewRequest(http.MethodGet, "/api/state", nil)
	resp, err := s.App().Test(req)
	if err != nil {
		t.Fatalf("GET /api/state: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var update StateUpdate
	if err := json.NewDecoder(resp.Body).Decode(&update); err != nil {
		t.Fatalf("decoding state: %v", err)
	}
	if update.Command.Speed != 80 || update.Command.Mode != drive.ModeForward {
		t.Errorf("command = %+v", update.Command)
	}
	if want := (drive.MotorPower{Left: 80, Right: 40}); update.Power != want {
		t.Errorf("power = %+v, want %+v", update.Power, want)
	}
}

func TestHandleHealth(t *testing.T) {
	s, _ := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	resp, err := s.App().Test(req)
	if err != nil {
		t.Fatalf("GET /api/health: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestBroadcastAppliedNeverBlocks(t *testing.T) {
	s, _ := newTestServer()

	// The hub's Run goroutine is not started: repeated broadcasts past
	// the channel buffer must be dropped, never stall the loop's tick.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			s.BroadcastApplied(
				drive.Command{Mode: drive.ModeForward, Speed: 50},
				drive.MotorPower{Left: 50, Right: 50},
			)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("BroadcastApplied blocked")
	}
}

func TestMalformedBodyIsBadRequest(t *testing.T) {
	s, state := newTestServer()

	resp := postJSON(t, s, "/api/speed", `{"speed": "fast"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if got := state.Snapshot().Speed; got != 0 {
		t.Errorf("speed after malformed request = %d, want 0", got)
	}
}
