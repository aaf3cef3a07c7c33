// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package route implements an ordered list of waypoints with a cursor that tracks the leg
// currently flown.
package route

import (
	"errors"
)

// ErrEmptyRoute is returned when a waypoint is requested from a route without waypoints.
var ErrEmptyRoute = errors.New("route has no waypoints")

// Route is an ordered sequence of waypoints. Insertion order is traversal order. The leg being
// flown ends at the current waypoint and starts at the previous one; the previous waypoint of
// index 0 is the last waypoint, so every route is a closed loop.
type Route struct {
	waypoints []Waypoint
	current   int
	acquired  bool
}

// Add appends a waypoint to the end of the route.
func (r *Route) Add(wp Waypoint) {
	r.waypoints = append(r.waypoints, wp)
}

// Clear removes all waypoints and resets the cursor.
func (r *Route) Clear() {
	r.waypoints = r.waypoints[:0]
	r.current = 0
	r.acquired = false
}

// Size returns the number of waypoints.
func (r *Route) Size() int {
	return len(r.waypoints)
}

// Current returns the waypoint the cursor points at.
func (r *Route) Current() (Waypoint, error) {
	if len(r.waypoints) == 0 {
		return Waypoint{}, ErrEmptyRoute
	}
	return r.waypoints[r.current], nil
}

// Previous returns the waypoint before the current one, wrapping to the last waypoint when the
// cursor is at index 0.
func (r *Route) Previous() (Waypoint, error) {
	if len(r.waypoints) == 0 {
		return Waypoint{}, ErrEmptyRoute
	}
	if r.current == 0 {
		return r.waypoints[len(r.waypoints)-1], nil
	}
	return r.waypoints[r.current-1], nil
}

// Index returns the cursor position.
func (r *Route) Index() int {
	return r.current
}

// SetCurrent moves the cursor to index, clamped into the valid range. Moving the cursor starts a
// new leg, so the acquired flag is reset.
func (r *Route) SetCurrent(index int) {
	switch {
	case len(r.waypoints) == 0 || index < 0:
		index = 0
	case index >= len(r.waypoints):
		index = len(r.waypoints) - 1
	}
	r.current = index
	r.acquired = false
}

// Increment advances the cursor by one, wrapping to 0 past the last waypoint.
func (r *Route) Increment() {
	if len(r.waypoints) == 0 {
		return
	}
	r.current = (r.current + 1) % len(r.waypoints)
	r.acquired = false
}

// SetAcquired marks whether the current waypoint's acquisition radius has been entered.
func (r *Route) SetAcquired(acquired bool) {
	r.acquired = acquired
}

// Acquired reports whether the current waypoint has been acquired on this leg.
func (r *Route) Acquired() bool {
	return r.acquired
}

// RemainingDistance returns the summed length of all legs after the current waypoint up to the
// end of the route. The partial leg towards the current waypoint is not included.
func (r *Route) RemainingDistance() float64 {
	var dist float64
	for i := r.current + 1; i < len(r.waypoints); i++ {
		_, leg := r.waypoints[i].LegFrom(r.waypoints[i-1])
		dist += leg
	}
	return dist
}

// RefreshOffsetPositions resolves every relative waypoint against ref, with offset bearings taken
// relative to heading (degrees).
func (r *Route) RefreshOffsetPositions(ref Waypoint, heading float64) {
	for i := range r.waypoints {
		r.waypoints[i].resolve(ref, heading)
	}
}

// Waypoints returns a copy of the waypoints.
func (r *Route) Waypoints() []Waypoint {
	wps := make([]Waypoint, len(r.waypoints))
	copy(wps, r.waypoints)
	return wps
}
