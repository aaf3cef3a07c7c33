// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package databus

// Sensor processing signals, owned by the navigation source.
const (
	NorthVelocity = "/Sensor-Processing/NorthVelocity_ms"
	EastVelocity  = "/Sensor-Processing/EastVelocity_ms"
	Track         = "/Sensor-Processing/Track_rad"
	Latitude      = "/Sensor-Processing/Latitude_rad"
	Longitude     = "/Sensor-Processing/Longitude_rad"
	GPSFix        = "/Sensors/uBlox/Fix"
)

// Route guidance signals, owned by the route manager.
const (
	RouteCourseError       = "/Route/course_error_rad"
	RouteCrossTrack        = "/Route/xtrack_m"
	RouteDistance          = "/Route/dist_m"
	RouteDistanceRemaining = "/Route/dist_remaining_m"
	RouteWaypointDistance  = "/Route/wp_dist_m"
	RouteWaypointETA       = "/Route/wp_eta_sec"
	RouteWaypointIndex     = "/Route/wp_index"
	RouteLegCourse         = "/Route/leg_course_rad"
)
