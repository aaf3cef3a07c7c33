// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package route

import (
	"fmt"

	"github.com/wneessen/route-manager/internal/geo"
)

// Kind tells how a Waypoint encodes its position.
type Kind int

const (
	// Absolute waypoints carry a fixed latitude and longitude.
	Absolute Kind = iota
	// Relative waypoints carry a bearing and distance from a reference point that is
	// resolved at runtime.
	Relative
)

func (k Kind) String() string {
	switch k {
	case Absolute:
		return "absolute"
	case Relative:
		return "relative"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Waypoint is a geographic target of a Route. Positions are in degrees, offsets in degrees
// and meters.
type Waypoint struct {
	kind Kind
	lat  float64
	lon  float64

	offsetBearing  float64
	offsetDistance float64
}

// NewAbsolute returns a Waypoint at the given latitude and longitude.
func NewAbsolute(lat, lon float64) Waypoint {
	return Waypoint{kind: Absolute, lat: lat, lon: lon}
}

// NewRelative returns a Waypoint that lies distance meters from a reference point on the given
// bearing. Until it is resolved its position is the origin.
func NewRelative(bearing, distance float64) Waypoint {
	return Waypoint{kind: Relative, offsetBearing: bearing, offsetDistance: distance}
}

func (w Waypoint) Kind() Kind   { return w.kind }
func (w Waypoint) Lat() float64 { return w.lat }
func (w Waypoint) Lon() float64 { return w.lon }

// Offset returns the bearing and distance of a Relative waypoint.
func (w Waypoint) Offset() (bearing, distance float64) {
	return w.offsetBearing, w.offsetDistance
}

// CourseAndDistanceFrom returns the course and distance from the given position to the waypoint.
func (w Waypoint) CourseAndDistanceFrom(lat, lon float64) (float64, float64) {
	return geo.CourseAndDistance(lat, lon, w.lat, w.lon)
}

// LegFrom returns the course and distance of the leg that starts at prev and ends at the waypoint.
func (w Waypoint) LegFrom(prev Waypoint) (float64, float64) {
	return w.CourseAndDistanceFrom(prev.lat, prev.lon)
}

// resolve places a Relative waypoint against ref. The offset bearing is taken relative to
// heading. Absolute waypoints are left untouched.
func (w *Waypoint) resolve(ref Waypoint, heading float64) {
	if w.kind != Relative {
		return
	}
	course := geo.Wrap360(heading + w.offsetBearing)
	w.lat, w.lon = geo.Destination(ref.lat, ref.lon, course, w.offsetDistance)
}

func (w Waypoint) String() string {
	if w.kind == Relative {
		return fmt.Sprintf("relative(%.1f°, %.1fm -> %.6f, %.6f)", w.offsetBearing, w.offsetDistance,
			w.lat, w.lon)
	}
	return fmt.Sprintf("absolute(%.6f, %.6f)", w.lat, w.lon)
}
