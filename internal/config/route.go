// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/kkyr/fig"
	"go.uber.org/multierr"
)

const (
	WaypointAbsolute = "absolute"
	WaypointRelative = "relative"
)

// Waypoint is a single entry of a route document. Absolute entries use Lat and Lon, relative
// entries use Bearing (degrees) and Distance (meters) from the vehicle position at activation.
type Waypoint struct {
	// Allowed values: absolute (default), relative
	Mode     string  `fig:"mode" json:"mode,omitempty"`
	Lat      float64 `fig:"lat" json:"lat,omitempty"`
	Lon      float64 `fig:"lon" json:"lon,omitempty"`
	Bearing  float64 `fig:"bearing" json:"bearing,omitempty"`
	Distance float64 `fig:"distance" json:"distance,omitempty"`
}

// RouteDocument is an externally supplied route. A document without waypoints is a valid, empty
// route.
type RouteDocument struct {
	Waypoints []Waypoint `fig:"waypoints" json:"waypoints"`
}

// LoadRoute reads a route document (toml, yaml or json) from the given directory and file.
func LoadRoute(path, file string) (*RouteDocument, error) {
	doc := new(RouteDocument)
	if _, err := os.Stat(filepath.Join(path, file)); err != nil {
		return doc, fmt.Errorf("failed to read route document: %w", err)
	}
	if err := fig.Load(doc, fig.Dirs(path), fig.File(file)); err != nil {
		return doc, fmt.Errorf("failed to load route document: %w", err)
	}
	return doc, nil
}

// IsRelative reports whether the entry describes a relative waypoint.
func (w Waypoint) IsRelative() bool {
	return strings.EqualFold(w.Mode, WaypointRelative)
}

// Validate checks the entry for a known mode and values within range.
func (w Waypoint) Validate() error {
	switch strings.ToLower(w.Mode) {
	case "", WaypointAbsolute:
		if math.IsNaN(w.Lat) || w.Lat < -90 || w.Lat > 90 {
			return fmt.Errorf("latitude out of range: %f", w.Lat)
		}
		if math.IsNaN(w.Lon) || w.Lon < -180 || w.Lon > 180 {
			return fmt.Errorf("longitude out of range: %f", w.Lon)
		}
	case WaypointRelative:
		if math.IsNaN(w.Bearing) || math.IsInf(w.Bearing, 0) {
			return fmt.Errorf("invalid bearing: %f", w.Bearing)
		}
		if math.IsNaN(w.Distance) || math.IsInf(w.Distance, 0) || w.Distance < 0 {
			return fmt.Errorf("invalid distance: %f", w.Distance)
		}
	default:
		return fmt.Errorf("unknown waypoint mode: %q", w.Mode)
	}
	return nil
}

// ValidateWaypoints validates every entry and returns all failures combined.
func ValidateWaypoints(wps []Waypoint) error {
	var err error
	for i, wp := range wps {
		if verr := wp.Validate(); verr != nil {
			err = multierr.Append(err, fmt.Errorf("waypoint %d: %w", i, verr))
		}
	}
	return err
}
