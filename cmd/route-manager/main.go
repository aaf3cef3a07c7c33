// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package main implements the route-manager service.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/peterbourgon/ff"

	"github.com/wneessen/route-manager/internal/config"
	"github.com/wneessen/route-manager/internal/logger"
	"github.com/wneessen/route-manager/internal/service"
)

const envPrefix = "ROUTEMANAGER"

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGABRT, os.Interrupt)
	defer cancel()

	// Initialize Logger
	log := logger.New(slog.LevelError)

	// Parse flags, falling back to ROUTEMANAGER_CONFIG and ROUTEMANAGER_ROUTE
	fs := flag.NewFlagSet("route-manager", flag.ContinueOnError)
	confPath := fs.String("config", "", "path to the config file")
	routePath := fs.String("route", "", "path to a route document (overrides route.file)")
	showVersion := fs.Bool("version", false, "print the version and exit")
	if err := ff.Parse(fs, os.Args[1:], ff.WithEnvVarPrefix(envPrefix)); err != nil {
		log.Error("failed to parse command line", logger.Err(err))
		return 2
	}
	if *showVersion {
		fmt.Printf("route-manager %s (commit: %s, built: %s)\n", version, commit, date)
		return 0
	}

	conf, err := loadConfig(*confPath)
	if err != nil {
		log.Error("failed to load config", logger.Err(err))
		return 1
	}
	if *routePath != "" {
		conf.Route.File = *routePath
	}

	log = logger.New(conf.LogLevel)
	if conf.LogFile != "" {
		log = logger.NewFileLogger(conf.LogLevel, conf.LogFile)
	}

	// Initialize the service
	serv, err := service.New(conf, log)
	if err != nil {
		log.Error("failed to initialize route-manager service", logger.Err(err))
		return 1
	}

	// Start the service loop
	log.Info("starting route-manager service", slog.String("version", version),
		slog.String("commit", commit), slog.String("date", date))
	if err = serv.Run(ctx); err != nil {
		log.Error("failed to run route-manager service", logger.Err(err))
		return 1
	}
	log.Info("shutting down route-manager service")
	return 0
}

// loadConfig reads the config from the given file, from the default location or from defaults
// and environment only, in that order.
func loadConfig(confPath string) (*config.Config, error) {
	if confPath != "" {
		return config.NewFromFile(filepath.Dir(confPath), filepath.Base(confPath))
	}
	if path, file := findConfigFile(); path != "" && file != "" {
		return config.NewFromFile(path, file)
	}
	return config.New()
}

func findConfigFile() (string, string) {
	homedir, err := os.UserHomeDir()
	if err != nil {
		return "", ""
	}
	exts := []string{"toml", "yaml", "yml", "json"}
	for _, ext := range exts {
		path := filepath.Join(homedir, ".config", "route-manager", "config."+ext)
		if _, err = os.Stat(path); err == nil {
			return filepath.Dir(path), filepath.Base(path)
		}
	}
	return "", ""
}
