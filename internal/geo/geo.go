// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package geo implements great-circle geometry on a spherical Earth. Angles are in degrees,
// distances in meters.
package geo

import (
	"math"

	"github.com/golang/geo/s2"
)

const (
	EarthRadius = 6371000.0 // meters

	// coincidentDistance is the distance below which two points are treated as identical.
	coincidentDistance = 1e-6
)

// Radians converts degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

// Distance returns the great-circle distance in meters between two points.
func Distance(fromLat, fromLon, toLat, toLon float64) float64 {
	from := s2.LatLngFromDegrees(fromLat, fromLon)
	to := s2.LatLngFromDegrees(toLat, toLon)
	return from.Distance(to).Radians() * EarthRadius
}

// CourseAndDistance returns the initial great-circle course in [0, 360) and the distance in meters
// from the first point to the second. Coincident points have a course of 0.
func CourseAndDistance(fromLat, fromLon, toLat, toLon float64) (float64, float64) {
	dist := Distance(fromLat, fromLon, toLat, toLon)
	if dist < coincidentDistance {
		return 0, dist
	}

	φ1 := Radians(fromLat)
	φ2 := Radians(toLat)
	Δλ := Radians(toLon - fromLon)
	y := math.Sin(Δλ) * math.Cos(φ2)
	x := math.Cos(φ1)*math.Sin(φ2) - math.Sin(φ1)*math.Cos(φ2)*math.Cos(Δλ)

	return Wrap360(Degrees(math.Atan2(y, x))), dist
}

// Destination returns the point reached when travelling dist meters from the given point on the
// initial course (degrees).
func Destination(lat, lon, course, dist float64) (float64, float64) {
	δ := dist / EarthRadius
	θ := Radians(course)
	φ1 := Radians(lat)
	λ1 := Radians(lon)

	sinφ2 := math.Sin(φ1)*math.Cos(δ) + math.Cos(φ1)*math.Sin(δ)*math.Cos(θ)
	φ2 := math.Asin(sinφ2)
	y := math.Sin(θ) * math.Sin(δ) * math.Cos(φ1)
	x := math.Cos(δ) - math.Sin(φ1)*sinφ2
	λ2 := λ1 + math.Atan2(y, x)

	return Degrees(φ2), Wrap180(Degrees(λ2))
}

// Normalize180 maps an angle into (-180, 180] with a single ±360 correction. Inputs must lie
// within (-540, 540], which holds for any difference of two courses in [0, 360) or (-180, 180].
func Normalize180(deg float64) float64 {
	if deg <= -180 {
		return deg + 360
	}
	if deg > 180 {
		return deg - 360
	}
	return deg
}

// Wrap360 reduces an angle to [0, 360).
func Wrap360(deg float64) float64 {
	if deg >= 0 && deg < 360 {
		return deg
	}
	w := math.Mod(deg, 360)
	if w < 0 {
		w += 360
	}
	if w >= 360 {
		w = 0
	}
	return w
}

// Wrap180 reduces a longitude to [-180, 180).
func Wrap180(deg float64) float64 {
	if deg >= -180 && deg < 180 {
		return deg
	}
	return Wrap360(deg+180) - 180
}
