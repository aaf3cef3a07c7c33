// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geo

import (
	"math"
	"testing"
)

// one degree of arc on the sphere
const metersPerDegree = EarthRadius * math.Pi / 180

func TestCourseAndDistance(t *testing.T) {
	t.Run("cardinal courses along the equator and a meridian", func(t *testing.T) {
		tests := []struct {
			name   string
			toLat  float64
			toLon  float64
			course float64
		}{
			{"north", 1, 0, 0},
			{"east", 0, 1, 90},
			{"south", -1, 0, 180},
			{"west", 0, -1, 270},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				course, dist := CourseAndDistance(0, 0, tc.toLat, tc.toLon)
				if math.Abs(course-tc.course) > 1e-9 {
					t.Errorf("expected course to be %f, got %f", tc.course, course)
				}
				if math.Abs(dist-metersPerDegree) > 1e-3 {
					t.Errorf("expected distance to be %f, got %f", metersPerDegree, dist)
				}
			})
		}
	})
	t.Run("coincident points yield a zero course", func(t *testing.T) {
		course, dist := CourseAndDistance(45.5, -93.25, 45.5, -93.25)
		if course != 0 {
			t.Errorf("expected course to be 0, got %f", course)
		}
		if dist != 0 {
			t.Errorf("expected distance to be 0, got %f", dist)
		}
		if math.IsNaN(course) {
			t.Error("expected course to be a number")
		}
	})
	t.Run("course is always within [0, 360)", func(t *testing.T) {
		for lat := -80.0; lat <= 80; lat += 20 {
			for lon := -170.0; lon <= 170; lon += 34 {
				course, _ := CourseAndDistance(10, 20, lat, lon)
				if course < 0 || course >= 360 {
					t.Errorf("course out of range for (%f, %f): %f", lat, lon, course)
				}
			}
		}
	})
}

func TestDestination(t *testing.T) {
	t.Run("1000 m east of the origin", func(t *testing.T) {
		lat, lon := Destination(0, 0, 90, 1000)
		if math.Abs(lat) > 1e-9 {
			t.Errorf("expected latitude to stay on the equator, got %f", lat)
		}
		if lon <= 0 {
			t.Errorf("expected longitude east of the origin, got %f", lon)
		}
		if dist := Distance(0, 0, lat, lon); math.Abs(dist-1000) > 1 {
			t.Errorf("expected distance to be 1000 m, got %f", dist)
		}
	})
	t.Run("destination round trips through course and distance", func(t *testing.T) {
		tests := []struct {
			lat, lon, course, dist float64
		}{
			{47.6, -122.3, 45, 2500},
			{-33.9, 151.2, 300, 12000},
			{64.1, -21.9, 180, 500},
		}
		for _, tc := range tests {
			lat, lon := Destination(tc.lat, tc.lon, tc.course, tc.dist)
			course, dist := CourseAndDistance(tc.lat, tc.lon, lat, lon)
			if math.Abs(dist-tc.dist) > 1 {
				t.Errorf("expected distance %f, got %f", tc.dist, dist)
			}
			if math.Abs(Normalize180(course-tc.course)) > 1e-6 {
				t.Errorf("expected course %f, got %f", tc.course, course)
			}
		}
	})
	t.Run("destination across the antimeridian wraps the longitude", func(t *testing.T) {
		_, lon := Destination(0, 179.999, 90, 1000)
		if lon >= 180 || lon < -180 {
			t.Errorf("expected wrapped longitude, got %f", lon)
		}
	})
}

func TestNormalize180(t *testing.T) {
	t.Run("result is always within (-180, 180]", func(t *testing.T) {
		for x := -539.5; x <= 540; x += 0.5 {
			n := Normalize180(x)
			if n <= -180 || n > 180 {
				t.Errorf("Normalize180(%f) = %f is out of range", x, n)
			}
		}
	})
	t.Run("boundaries", func(t *testing.T) {
		tests := []struct {
			in, want float64
		}{
			{180, 180},
			{-180, 180},
			{181, -179},
			{-181, 179},
			{0, 0},
			{359, -1},
			{-359, 1},
		}
		for _, tc := range tests {
			if got := Normalize180(tc.in); got != tc.want {
				t.Errorf("Normalize180(%f) = %f, want %f", tc.in, got, tc.want)
			}
		}
	})
	t.Run("course differences 360 apart normalize to the same angle", func(t *testing.T) {
		for leg := 0.0; leg < 360; leg += 15 {
			for direct := 0.0; direct < 360; direct += 15 {
				d := leg - direct
				if Normalize180(d) != Normalize180(d+360) && Normalize180(d) != Normalize180(d-360) {
					t.Errorf("expected %f and its 360 shift to normalize equally", d)
				}
				if math.Mod(Normalize180(d)-d+720, 360) != 0 {
					t.Errorf("expected Normalize180(%f) to equal the input modulo 360", d)
				}
			}
		}
	})
}

func TestWrap360(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{359.5, 359.5},
		{360, 0},
		{-90, 270},
		{725, 5},
	}
	for _, tc := range tests {
		if got := Wrap360(tc.in); got != tc.want {
			t.Errorf("Wrap360(%f) = %f, want %f", tc.in, got, tc.want)
		}
	}
}
