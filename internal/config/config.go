// Package config provides environment-driven configuration for the
// go-drivebot commands. Values come from the process environment, with an
// optional .env file loaded at startup for development setups.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/wheeled/go-drivebot/internal/log"
)

// Defaults for the drivebot daemon and autodrive program.
const (
	DefaultListenAddr = ":8080"
	DefaultTick       = 50 * time.Millisecond

	// ev3dev port addresses and driver names.
	DefaultLeftMotorPort  = "ev3-ports:outB"
	DefaultRightMotorPort = "ev3-ports:outC"
	DefaultMotorDriver    = "lego-ev3-l-motor"
	DefaultRangePort      = "ev3-ports:in3"
	DefaultRangeDriver    = "lego-ev3-us"
	DefaultTouchPort      = "ev3-ports:in1"
	DefaultTouchDriver    = "lego-ev3-touch"
)

// Config holds everything the commands need at startup.
type Config struct {
	ListenAddr string        // drivebot HTTP listen address
	Tick       time.Duration // actuation loop period
	StaticDir  string        // web UI asset directory

	LeftMotorPort  string
	RightMotorPort string
	MotorDriver    string
	RangePort      string
	RangeDriver    string
	TouchPort      string
	TouchDriver    string
}

// Load reads configuration from the environment. A .env file in the
// working directory is honored when present; a missing file is not an
// error outside of development.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file loaded", "err", err)
	}

	return Config{
		ListenAddr: getenv("LISTEN_ADDR", DefaultListenAddr),
		Tick:       getduration("TICK_INTERVAL", DefaultTick),
		StaticDir:  getenv("STATIC_DIR", "./web"),

		LeftMotorPort:  getenv("LEFT_MOTOR_PORT", DefaultLeftMotorPort),
		RightMotorPort: getenv("RIGHT_MOTOR_PORT", DefaultRightMotorPort),
		MotorDriver:    getenv("MOTOR_DRIVER", DefaultMotorDriver),
		RangePort:      getenv("RANGE_SENSOR_PORT", DefaultRangePort),
		RangeDriver:    getenv("RANGE_SENSOR_DRIVER", DefaultRangeDriver),
		TouchPort:      getenv("TOUCH_SENSOR_PORT", DefaultTouchPort),
		TouchDriver:    getenv("TOUCH_SENSOR_DRIVER", DefaultTouchDriver),
	}
}

// getenv returns the environment value or the fallback if unset.
func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getduration parses a duration environment value ("50ms", "1s") or a bare
// millisecond count, falling back on parse failure.
func getduration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
		return time.Duration(ms) * time.Millisecond
	}
	log.Warn("unparseable duration, using default", "key", key, "value", v, "default", fallback)
	return fallback
}
