package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"github.com/rendis/aqimap/internal/config"
	"github.com/rendis/aqimap/internal/engine/compositor"
	"github.com/rendis/aqimap/internal/engine/layer"
	"github.com/rendis/aqimap/internal/tui"
	"github.com/rendis/aqimap/internal/tui/components"
)

var version = "dev"

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "status":
			if err := runStatus(os.Args[2:]); err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}
			return
		case "export":
			if err := runExport(os.Args[2:]); err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}
			return
		case "tui":
			if err := runTUI(os.Args[2:]); err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}
			return
		case "version":
			fmt.Println("aqimap " + version)
			return
		case "help", "--help", "-h":
			printUsage()
			return
		}
	}

	// No subcommand → launch TUI
	if err := runTUI(nil); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `aqimap - AQI-banded province and state boundary layers

Usage:
  aqimap                 Launch interactive map
  aqimap tui [flags]     Launch interactive map with flags
  aqimap status [flags]  Load layers headless and print their status
  aqimap export [flags]  Export a layer's classified features
  aqimap version         Show version

Run 'aqimap <command> --help' for flags.
`)
}

func runTUI(args []string) error {
	var opts commonFlags
	var enable bool

	fs := flag.NewFlagSet("tui", flag.ExitOnError)
	opts.register(fs)
	fs.BoolVar(&enable, "enable", false, "Enable every layer on start")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	opts.apply(cfg)

	// The screen belongs to the TUI; logs always go to a file.
	log, logPath, closeLog, err := sessionLogger(cfg, filepath.Dir(cfg.Cache.Path))
	if err != nil {
		return err
	}
	defer closeLog()
	log.Info("SESSION_START", zap.String("mode", "tui"), zap.Bool("enable", enable))
	fmt.Fprintf(os.Stderr, "Log: %s\n", logPath)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	mapView := components.NewMapView(80, 24)
	mapView.SetBounds(layer.Provinces().Bounds.Union(layer.States().Bounds))
	host := tui.NewHost()
	comp := compositor.New(mapView, host, log)

	env, err := setup(cfg, opts, comp, log)
	if err != nil {
		return err
	}
	defer env.Close()

	return tui.Run(ctx, env.layers, mapView, host, enable)
}
