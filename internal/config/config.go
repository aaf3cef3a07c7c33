// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/kkyr/fig"
)

const (
	configEnv = "ROUTEMANAGER"
)

var (
	startModes      = []string{"first_wpt", "first_leg"}
	completionModes = []string{"loop", "extend_last_leg"}
)

// Config represents the application's configuration structure.
type Config struct {
	LogLevel slog.Level `fig:"loglevel" default:"0"`
	// Optional path of a rotated JSON log file. Logs go to stderr when empty.
	LogFile string `fig:"logfile"`

	Intervals struct {
		Cycle       time.Duration `fig:"cycle" default:"20ms"`
		Status      time.Duration `fig:"status" default:"5s"`
		RouteReload time.Duration `fig:"route_reload" default:"2s"`
	} `fig:"intervals"`

	Route struct {
		// Allowed values: first_wpt, first_leg
		StartMode string `fig:"start_mode" default:"first_wpt"`
		// Allowed values: loop, extend_last_leg
		CompletionMode string `fig:"completion_mode" default:"loop"`
		// Optional route document. When set it takes precedence over Waypoints.
		File      string     `fig:"file"`
		Waypoints []Waypoint `fig:"waypoints"`
	} `fig:"route"`

	GPSD struct {
		Host    string `fig:"host" default:"localhost"`
		Port    string `fig:"port" default:"2947"`
		Disable bool   `fig:"disable"`
	} `fig:"gpsd"`

	API struct {
		Listen  string `fig:"listen" default:"127.0.0.1:8787"`
		Disable bool   `fig:"disable"`
	} `fig:"api"`
}

func NewFromFile(path, file string) (*Config, error) {
	conf := new(Config)
	_, err := os.Stat(filepath.Join(path, file))
	if err != nil {
		return conf, fmt.Errorf("failed to read Config: %w", err)
	}
	if err = fig.Load(conf, fig.Dirs(path), fig.File(file), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load Config: %w", err)
	}

	return conf, conf.Validate()
}

func New() (*Config, error) {
	conf := new(Config)
	if err := fig.Load(conf, fig.AllowNoFile(), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load Config: %w", err)
	}

	return conf, conf.Validate()
}

func (c *Config) Validate() error {
	c.Route.StartMode = strings.ToLower(c.Route.StartMode)
	if !slices.Contains(startModes, c.Route.StartMode) {
		return fmt.Errorf("invalid route start mode: %s", c.Route.StartMode)
	}
	c.Route.CompletionMode = strings.ToLower(c.Route.CompletionMode)
	if !slices.Contains(completionModes, c.Route.CompletionMode) {
		return fmt.Errorf("invalid route completion mode: %s", c.Route.CompletionMode)
	}
	if c.Intervals.Cycle <= 0 {
		return fmt.Errorf("invalid cycle interval: %s", c.Intervals.Cycle)
	}
	if c.Intervals.Status <= 0 {
		return fmt.Errorf("invalid status interval: %s", c.Intervals.Status)
	}
	if c.Intervals.RouteReload <= 0 {
		return fmt.Errorf("invalid route reload interval: %s", c.Intervals.RouteReload)
	}
	if err := ValidateWaypoints(c.Route.Waypoints); err != nil {
		return fmt.Errorf("invalid route waypoints: %w", err)
	}

	return nil
}
