package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.ListenAddr != DefaultListenAddr {
		t.Errorf("ListenAddr = %q, want %q", cfg.ListenAddr, DefaultListenAddr)
	}
	if cfg.Tick != DefaultTick {
		t.Errorf("Tick = %v, want %v", cfg.Tick, DefaultTick)
	}
	if cfg.LeftMotorPort != DefaultLeftMotorPort || cfg.RightMotorPort != DefaultRightMotorPort {
		t.Errorf("motor ports = %q/%q, want defaults", cfg.LeftMotorPort, cfg.RightMotorPort)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":9090")
	t.Setenv("TICK_INTERVAL", "75ms")
	t.Setenv("LEFT_MOTOR_PORT", "ev3-ports:outA")

	cfg := Load()
	if cfg.ListenAddr != ":9090" {
		t.Errorf("ListenAddr = %q, want :9090", cfg.ListenAddr)
	}
	if cfg.Tick != 75*time.Millisecond {
		t.Errorf("Tick = %v, want 75ms", cfg.Tick)
	}
	if cfg.LeftMotorPort != "ev3-ports:outA" {
		t.Errorf("LeftMotorPort = %q, want ev3-ports:outA", cfg.LeftMotorPort)
	}
}

func TestTickIntervalBareMilliseconds(t *testing.T) {
	t.Setenv("TICK_INTERVAL", "80")
	if cfg := Load(); cfg.Tick != 80*time.Millisecond {
		t.Errorf("Tick = %v, want 80ms", cfg.Tick)
	}
}

func TestTickIntervalGarbageFallsBack(t *testing.T) {
	t.Setenv("TICK_INTERVAL", "soon")
	if cfg := Load(); cfg.Tick != DefaultTick {
		t.Errorf("Tick = %v, want default %v", cfg.Tick, DefaultTick)
	}
}
