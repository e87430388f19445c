// Command autodrive runs the autonomous obstacle-avoidance mode: cruise
// ahead, slow down near obstacles, and back off and pivot away on contact
// or close range. Runs until interrupted.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wheeled/go-drivebot/internal/config"
	"github.com/wheeled/go-drivebot/internal/log"
	"github.com/wheeled/go-drivebot/pkg/auto"
	"github.com/wheeled/go-drivebot/pkg/ev3"
)

func main() {
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	cruise := flag.Int("cruise", 100, "Top cruise power percent (1-100)")
	poll := flag.Duration("poll", 200*time.Millisecond, "Sensor polling interval")
	flag.Parse()

	log.Init(*logLevel)
	cfg := config.Load()

	tank, err := ev3.NewTankDriver(cfg)
	if err != nil {
		log.Error("motor setup failed", "err", err)
		os.Exit(1)
	}
	defer tank.Close()

	sensors, err := ev3.NewSensorRig(cfg)
	if err != nil {
		log.Error("sensor setup failed", "err", err)
		os.Exit(1)
	}

	opts := auto.DefaultOptions()
	if *cruise > 0 && *cruise <= 100 {
		opts.CruisePower = *cruise
	}
	opts.Poll = *poll

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	controller := auto.New(tank, sensors, opts, nil)
	if err := controller.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		// The controller already commanded zero power on its way out.
		log.Error("auto drive failed", "err", err)
		os.Exit(1)
	}
	log.Info("auto drive stopped")
}
