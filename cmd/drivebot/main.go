// Command drivebot runs the remote-control daemon: a web server for the
// control page and command endpoints, plus the actuation loop that applies
// the latest command to the wheel motors.
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/wheeled/go-drivebot/internal/config"
	"github.com/wheeled/go-drivebot/internal/log"
	"github.com/wheeled/go-drivebot/pkg/drive"
	"github.com/wheeled/go-drivebot/pkg/ev3"
	"github.com/wheeled/go-drivebot/pkg/motor"
	"github.com/wheeled/go-drivebot/pkg/web"
)

// logDriver stands in for the hardware when running off the brick.
type logDriver struct{}

func (logDriver) SetPower(id motor.ID, percent int) error {
	log.Debug("set power", "motor", id.String(), "percent", percent)
	return nil
}

func main() {
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	dryRun := flag.Bool("dry-run", false, "Log motor commands instead of driving hardware")
	flag.Parse()

	log.Init(*logLevel)
	cfg := config.Load()

	var motors motor.Driver
	if *dryRun {
		log.Info("dry run: motor commands will only be logged")
		motors = logDriver{}
	} else {
		tank, err := ev3.NewTankDriver(cfg)
		if err != nil {
			log.Error("motor setup failed", "err", err)
			os.Exit(1)
		}
		defer tank.Close()
		motors = tank
	}

	state := drive.NewState()
	server := web.NewServer(state, cfg.StaticDir)

	loop := drive.NewLoop(state, motors, cfg.Tick)
	loop.OnApply = server.BroadcastApplied
	go loop.Run()

	go func() {
		log.Info("remote control listening", "addr", cfg.ListenAddr)
		if err := server.Listen(cfg.ListenAddr); err != nil {
			log.Error("web server failed", "err", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Info("shutting down")

	// Stop taking commands first, then stop the loop: its last act is a
	// zero-power pair so the robot never rolls past shutdown.
	if err := server.Shutdown(); err != nil {
		log.Warn("web server shutdown", "err", err)
	}
	loop.Stop()
}
