// Command midirouter loads the device and map configuration, validates it,
// and runs the routing engine. The network MIDI transport is pluggable; the
// stock binary can fully validate any configuration and run OSC-only setups
// (OSC tempo sources driving OSC or tempo-spec devices).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/leandrodaf/midirouter/internal/config"
	"github.com/leandrodaf/midirouter/internal/logger"
	"github.com/leandrodaf/midirouter/sdk/contracts"
	"github.com/leandrodaf/midirouter/sdk/router"
)

func main() {
	var (
		devicesPath = flag.String("devices", "config/devices.json", "path to the device configuration file")
		mapPath     = flag.String("map", "config/map.json", "path to the map configuration file")
		validate    = flag.Bool("validate", false, "validate the configuration and exit")
		debug       = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	log := logger.NewZapLogger()
	level := contracts.InfoLevel
	if *debug {
		level = contracts.DebugLevel
	}
	log.SetLevel(level)

	cfg, err := config.Load(*devicesPath, *mapPath)
	if err != nil {
		log.Error("configuration invalid", log.Field().Error("error", err))
		os.Exit(1)
	}

	if *validate {
		fmt.Printf("configuration ok: %d devices, %d mappings, %d sessions, %d osc sources\n",
			cfg.Catalog.Len(), len(cfg.Table.Entries()), len(cfg.Sessions), len(cfg.OSCSources))
		return
	}

	r, err := router.NewRouter(cfg,
		contracts.WithLogger(log),
		contracts.WithLogLevel(level),
	)
	if err != nil {
		log.Error("router setup failed", log.Field().Error("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := r.Run(ctx); err != nil {
		log.Error("router stopped", log.Field().Error("error", err))
		os.Exit(1)
	}
	log.Info("router shut down")
}
