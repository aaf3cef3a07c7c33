// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package config

import (
	"log/slog"
	"strings"
	"testing"
	"time"

	"go.uber.org/multierr"
)

func TestNew(t *testing.T) {
	const (
		expectLogLevel       = slog.LevelInfo
		expectStartMode      = "first_wpt"
		expectCompletionMode = "loop"
		expectCycle          = time.Millisecond * 20
		expectStatus         = time.Second * 5
		expectRouteReload    = time.Second * 2
		expectGPSDHost       = "localhost"
		expectGPSDPort       = "2947"
		expectAPIListen      = "127.0.0.1:8787"
	)
	t.Run("new config with all defaults set", func(t *testing.T) {
		conf, err := New()
		if err != nil {
			t.Errorf("failed to load config: %s", err)
		}
		if conf.LogLevel != expectLogLevel {
			t.Errorf("expected log level to be: %s, got %s", expectLogLevel, conf.LogLevel)
		}
		if conf.Route.StartMode != expectStartMode {
			t.Errorf("expected start mode to be: %s, got %s", expectStartMode, conf.Route.StartMode)
		}
		if conf.Route.CompletionMode != expectCompletionMode {
			t.Errorf("expected completion mode to be: %s, got %s", expectCompletionMode,
				conf.Route.CompletionMode)
		}
		if conf.Intervals.Cycle != expectCycle {
			t.Errorf("expected cycle interval to be: %s, got %s", expectCycle, conf.Intervals.Cycle)
		}
		if conf.Intervals.Status != expectStatus {
			t.Errorf("expected status interval to be: %s, got %s", expectStatus, conf.Intervals.Status)
		}
		if conf.Intervals.RouteReload != expectRouteReload {
			t.Errorf("expected route reload interval to be: %s, got %s", expectRouteReload,
				conf.Intervals.RouteReload)
		}
		if conf.GPSD.Host != expectGPSDHost || conf.GPSD.Port != expectGPSDPort {
			t.Errorf("expected gpsd address to be: %s:%s, got %s:%s", expectGPSDHost, expectGPSDPort,
				conf.GPSD.Host, conf.GPSD.Port)
		}
		if conf.API.Listen != expectAPIListen {
			t.Errorf("expected API listen address to be: %s, got %s", expectAPIListen, conf.API.Listen)
		}
		if len(conf.Route.Waypoints) != 0 {
			t.Errorf("expected no waypoints, got %d", len(conf.Route.Waypoints))
		}
	})
	t.Run("modes from env are normalized", func(t *testing.T) {
		t.Setenv("ROUTEMANAGER_ROUTE_START_MODE", "FIRST_LEG")
		t.Setenv("ROUTEMANAGER_ROUTE_COMPLETION_MODE", "Extend_Last_Leg")
		conf, err := New()
		if err != nil {
			t.Fatalf("failed to load config: %s", err)
		}
		if conf.Route.StartMode != "first_leg" {
			t.Errorf("expected start mode to be first_leg, got %s", conf.Route.StartMode)
		}
		if conf.Route.CompletionMode != "extend_last_leg" {
			t.Errorf("expected completion mode to be extend_last_leg, got %s", conf.Route.CompletionMode)
		}
	})
	t.Run("new config with invalid values from env", func(t *testing.T) {
		t.Setenv("ROUTEMANAGER_LOGLEVEL", "invalid")
		_, err := New()
		if err == nil {
			t.Error("expected config to fail, but didn't")
		}
	})
	t.Run("config validate modes", func(t *testing.T) {
		t.Setenv("ROUTEMANAGER_ROUTE_START_MODE", "last_wpt")
		if _, err := New(); err == nil {
			t.Error("expected config to fail, but didn't")
		}
		t.Setenv("ROUTEMANAGER_ROUTE_START_MODE", "first_wpt")
		t.Setenv("ROUTEMANAGER_ROUTE_COMPLETION_MODE", "land")
		if _, err := New(); err == nil {
			t.Error("expected config to fail, but didn't")
		}
	})
	t.Run("config validate intervals", func(t *testing.T) {
		t.Setenv("ROUTEMANAGER_INTERVALS_CYCLE", "-1s")
		if _, err := New(); err == nil {
			t.Error("expected config to fail, but didn't")
		}
	})
}

func TestNewFromFile(t *testing.T) {
	t.Run("reading config from valid file succeeds", func(t *testing.T) {
		conf, err := NewFromFile("../../etc", "config.toml")
		if err != nil {
			t.Fatalf("failed to load config: %s", err)
		}
		if conf.Route.StartMode != "first_leg" {
			t.Errorf("expected start mode to be first_leg, got %s", conf.Route.StartMode)
		}
		if len(conf.Route.Waypoints) != 4 {
			t.Fatalf("expected 4 waypoints, got %d", len(conf.Route.Waypoints))
		}
		if conf.Route.Waypoints[0].Lat != 45.2204 || conf.Route.Waypoints[0].Lon != -93.1465 {
			t.Errorf("unexpected first waypoint: %+v", conf.Route.Waypoints[0])
		}
		last := conf.Route.Waypoints[3]
		if !last.IsRelative() || last.Bearing != 270 || last.Distance != 800 {
			t.Errorf("unexpected relative waypoint: %+v", last)
		}
	})
	t.Run("reading config from non-existent file fails", func(t *testing.T) {
		_, err := NewFromFile("../../etc", "non-existent.toml")
		if err == nil {
			t.Error("expected config to fail, but didn't")
		}
	})
	t.Run("reading invalid config file fails", func(t *testing.T) {
		_, err := NewFromFile("../../testdata", "invalid.toml")
		if err == nil {
			t.Error("expected config to fail, but didn't")
		}
	})
}

func TestLoadRoute(t *testing.T) {
	t.Run("toml route document", func(t *testing.T) {
		doc, err := LoadRoute("../../testdata", "route.toml")
		if err != nil {
			t.Fatalf("failed to load route: %s", err)
		}
		if len(doc.Waypoints) != 2 {
			t.Fatalf("expected 2 waypoints, got %d", len(doc.Waypoints))
		}
		if doc.Waypoints[0].Lat != 10.5 || doc.Waypoints[0].Lon != 20.25 {
			t.Errorf("unexpected first waypoint: %+v", doc.Waypoints[0])
		}
		if !doc.Waypoints[1].IsRelative() {
			t.Errorf("expected second waypoint to be relative: %+v", doc.Waypoints[1])
		}
	})
	t.Run("json route document", func(t *testing.T) {
		doc, err := LoadRoute("../../testdata", "route.json")
		if err != nil {
			t.Fatalf("failed to load route: %s", err)
		}
		if len(doc.Waypoints) != 3 {
			t.Fatalf("expected 3 waypoints, got %d", len(doc.Waypoints))
		}
		if err = ValidateWaypoints(doc.Waypoints); err != nil {
			t.Errorf("expected route to be valid: %s", err)
		}
	})
	t.Run("document without waypoints is an empty route", func(t *testing.T) {
		doc, err := LoadRoute("../../testdata", "route_empty.yaml")
		if err != nil {
			t.Fatalf("failed to load route: %s", err)
		}
		if len(doc.Waypoints) != 0 {
			t.Errorf("expected no waypoints, got %d", len(doc.Waypoints))
		}
	})
	t.Run("missing document fails", func(t *testing.T) {
		if _, err := LoadRoute("../../testdata", "missing.toml"); err == nil {
			t.Error("expected route loading to fail, but didn't")
		}
	})
	t.Run("invalid entries are all reported", func(t *testing.T) {
		doc, err := LoadRoute("../../testdata", "route_invalid.toml")
		if err != nil {
			t.Fatalf("failed to load route: %s", err)
		}
		err = ValidateWaypoints(doc.Waypoints)
		if err == nil {
			t.Fatal("expected validation to fail, but didn't")
		}
		if n := len(multierr.Errors(err)); n != 2 {
			t.Errorf("expected 2 validation errors, got %d: %s", n, err)
		}
	})
}

func TestWaypoint_Validate(t *testing.T) {
	tests := []struct {
		name    string
		wp      Waypoint
		wantErr string
	}{
		{"absolute default mode", Waypoint{Lat: 45, Lon: -93}, ""},
		{"absolute explicit mode", Waypoint{Mode: "ABSOLUTE", Lat: -90, Lon: 180}, ""},
		{"relative", Waypoint{Mode: "relative", Bearing: 370, Distance: 10}, ""},
		{"latitude out of range", Waypoint{Lat: 90.5}, "latitude"},
		{"longitude out of range", Waypoint{Lon: -181}, "longitude"},
		{"negative distance", Waypoint{Mode: "relative", Distance: -1}, "distance"},
		{"unknown mode", Waypoint{Mode: "loiter"}, "unknown waypoint mode"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.wp.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Errorf("expected waypoint to be valid, got: %s", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error containing %q, got: %v", tc.wantErr, err)
			}
		})
	}
}
