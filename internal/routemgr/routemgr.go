// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package routemgr implements the route manager. It owns an active and a standby route, reads the
// navigation solution from the data bus once per control cycle and publishes course error,
// cross-track error and distance along the leg towards the current waypoint.
//
// A Manager is not safe for concurrent use. Update, Build, Swap and NewWaypoint must be called
// from the same goroutine.
package routemgr

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"go.uber.org/multierr"

	"github.com/wneessen/route-manager/internal/config"
	"github.com/wneessen/route-manager/internal/databus"
	"github.com/wneessen/route-manager/internal/geo"
	"github.com/wneessen/route-manager/internal/logger"
	"github.com/wneessen/route-manager/internal/route"
)

const (
	// AcquisitionRadius is the along-track distance in meters below which the current waypoint
	// counts as reached.
	AcquisitionRadius = 50.0

	// minETASpeed is the ground speed in m/s below which no ETA is computed.
	minETASpeed = 0.1
)

// Field layouts accepted by NewWaypoint.
const (
	// WaypointModeRelative takes (distance, bearing).
	WaypointModeRelative = 0
	// WaypointModeAbsolute takes (lat, lon).
	WaypointModeAbsolute = 1
)

var (
	// ErrInvalidWaypointMode is returned by NewWaypoint for an unknown mode.
	ErrInvalidWaypointMode = errors.New("invalid waypoint mode")

	// ErrStandbyEmpty reports a refused swap.
	ErrStandbyEmpty = errors.New("standby route is empty")
)

// Guidance holds the values computed by the last Update on a non-empty route.
type Guidance struct {
	LegCourse         float64 `json:"leg_course_deg"`
	CourseError       float64 `json:"course_error_rad"`
	CrossTrack        float64 `json:"xtrack_m"`
	Distance          float64 `json:"dist_m"`
	DistanceRemaining float64 `json:"dist_remaining_m"`
	WaypointDistance  float64 `json:"wp_dist_m"`
	WaypointETA       float64 `json:"wp_eta_sec"`
}

// Status is a snapshot of the manager state.
type Status struct {
	Size           int            `json:"size"`
	StandbySize    int            `json:"standby_size"`
	Index          int            `json:"index"`
	Acquired       bool           `json:"acquired"`
	PositionSet    bool           `json:"position_set"`
	StartMode      StartMode      `json:"start_mode"`
	CompletionMode CompletionMode `json:"completion_mode"`
	Guidance       Guidance       `json:"guidance"`
	Waypoints      []Position     `json:"waypoints"`
}

// Position is the effective location of an active waypoint.
type Position struct {
	Kind string  `json:"kind"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

type inputs struct {
	northVelocity *databus.Reader[float32]
	eastVelocity  *databus.Reader[float32]
	track         *databus.Reader[float32]
	lat           *databus.Reader[float64]
	lon           *databus.Reader[float64]
	fix           *databus.Reader[uint8]
}

type outputs struct {
	courseError       *databus.Writer[float32]
	crossTrack        *databus.Writer[float32]
	distance          *databus.Writer[float32]
	distanceRemaining *databus.Writer[float32]
	waypointDistance  *databus.Writer[float32]
	waypointETA       *databus.Writer[float32]
	legCourse         *databus.Writer[float32]
	waypointIndex     *databus.Writer[int32]
}

// Manager is the route manager.
type Manager struct {
	logger *logger.Logger
	bus    *databus.Bus

	// routes holds the two route slots; active is the index of the active one, the other is
	// standby.
	routes [2]route.Route
	active int

	startMode      StartMode
	routeStartMode StartMode
	startPending   bool
	completionMode CompletionMode
	posSet         bool
	warnedEmpty    bool

	in       inputs
	out      outputs
	guidance Guidance
}

// New resolves the navigation inputs on the bus and registers the guidance outputs. It fails if
// any input signal is missing or any output is already registered.
func New(bus *databus.Bus, log *logger.Logger, start StartMode, completion CompletionMode) (*Manager, error) {
	m := &Manager{
		logger:         log,
		bus:            bus,
		startMode:      start,
		routeStartMode: start,
		completionMode: completion,
	}
	if err := m.bindInputs(bus); err != nil {
		return nil, fmt.Errorf("failed to resolve route manager inputs: %w", err)
	}
	if err := m.bindOutputs(bus); err != nil {
		return nil, fmt.Errorf("failed to register route manager outputs: %w", err)
	}
	return m, nil
}

func (m *Manager) bindInputs(bus *databus.Bus) error {
	var err error
	float32In := func(path string) *databus.Reader[float32] {
		r, lerr := databus.Lookup[float32](bus, path)
		err = multierr.Append(err, lerr)
		return r
	}
	float64In := func(path string) *databus.Reader[float64] {
		r, lerr := databus.Lookup[float64](bus, path)
		err = multierr.Append(err, lerr)
		return r
	}

	m.in.northVelocity = float32In(databus.NorthVelocity)
	m.in.eastVelocity = float32In(databus.EastVelocity)
	m.in.track = float32In(databus.Track)
	m.in.lat = float64In(databus.Latitude)
	m.in.lon = float64In(databus.Longitude)
	fix, ferr := databus.Lookup[uint8](bus, databus.GPSFix)
	m.in.fix = fix

	return multierr.Append(err, ferr)
}

func (m *Manager) bindOutputs(bus *databus.Bus) error {
	var err error
	float32Out := func(path, desc string) *databus.Writer[float32] {
		w, rerr := databus.Register[float32](bus, path, desc)
		err = multierr.Append(err, rerr)
		return w
	}

	m.out.courseError = float32Out(databus.RouteCourseError, "Route manager course error")
	m.out.crossTrack = float32Out(databus.RouteCrossTrack, "Route manager cross track error")
	m.out.distance = float32Out(databus.RouteDistance, "Route manager distance remaining on leg")
	m.out.distanceRemaining = float32Out(databus.RouteDistanceRemaining,
		"Route manager distance remaining to completion of route")
	m.out.waypointDistance = float32Out(databus.RouteWaypointDistance,
		"Route manager direct distance to the target waypoint")
	m.out.waypointETA = float32Out(databus.RouteWaypointETA, "Route manager time to the target waypoint")
	m.out.legCourse = float32Out(databus.RouteLegCourse, "Route manager course of the current leg")
	idx, rerr := databus.Register[int32](bus, databus.RouteWaypointIndex, "Route manager target waypoint index")
	m.out.waypointIndex = idx

	return multierr.Append(err, rerr)
}

// Init builds the given waypoints into the standby route and activates it. A build error is
// fatal to the caller; an empty route is accepted.
func (m *Manager) Init(waypoints []config.Waypoint) error {
	if err := m.Build(waypoints); err != nil {
		return err
	}
	if !m.Swap() {
		m.logger.Warn("no waypoints configured, route manager starts without an active route")
	}
	return nil
}

// Update runs one guidance cycle. It must be called once per control cycle.
func (m *Manager) Update() {
	nav := m.readNavigation()
	gs := math.Sqrt(nav.north*nav.north + nav.east*nav.east)
	trackDeg := geo.Degrees(nav.track)
	latDeg := geo.Degrees(nav.lat)
	lonDeg := geo.Degrees(nav.lon)

	active := &m.routes[m.active]
	if !m.posSet && nav.fix == 1 {
		active.RefreshOffsetPositions(route.NewAbsolute(latDeg, lonDeg), 0)
		m.posSet = true
		m.logger.Info("positioned relative waypoints", slog.Float64("lat", latDeg),
			slog.Float64("lon", lonDeg))
	}

	if active.Size() == 0 {
		if !m.warnedEmpty {
			m.logger.Warn("no active route, guidance outputs are not updated")
			m.warnedEmpty = true
		}
		return
	}

	// Start-up logic runs on the first cycle after activation only.
	if m.startPending {
		m.startPending = false
		if m.routeStartMode == FirstLeg && active.Index() == 0 {
			if active.Size() > 1 {
				active.Increment()
			} else {
				m.routeStartMode = FirstWaypoint
			}
		}
	}

	// Neither can fail on a non-empty route.
	prev, _ := active.Previous()
	wp, _ := active.Current()

	directCourse, directDistance := wp.CourseAndDistanceFrom(latDeg, lonDeg)
	legCourse, _ := wp.LegFrom(prev)

	angle := geo.Radians(geo.Normalize180(legCourse - directCourse))
	courseError := geo.Radians(geo.Normalize180(legCourse - trackDeg))
	crossTrack := math.Sin(angle) * directDistance
	along := math.Cos(angle) * directDistance

	eta := 0.0
	if gs > minETASpeed {
		eta = directDistance / gs
	}

	m.guidance = Guidance{
		LegCourse:         legCourse,
		CourseError:       courseError,
		CrossTrack:        crossTrack,
		Distance:          along,
		DistanceRemaining: along + active.RemainingDistance(),
		WaypointDistance:  directDistance,
		WaypointETA:       eta,
	}
	m.publish()

	if along < AcquisitionRadius {
		active.SetAcquired(true)
		switch m.completionMode {
		case Loop:
			active.Increment()
		case ExtendLastLeg:
			// Past the last waypoint the final leg is followed forever.
			if active.Index() < active.Size()-1 {
				active.Increment()
			}
		}
	}
	m.out.waypointIndex.Set(int32(active.Index()))
}

type navigation struct {
	north, east, track float64
	lat, lon           float64
	fix                uint8
}

// readNavigation loads all inputs from one state of the bus, so the position always belongs to
// the fix flag read with it.
func (m *Manager) readNavigation() navigation {
	var nav navigation
	m.bus.Read(func(tx *databus.Tx) {
		nav.fix = m.in.fix.Load(tx)
		nav.north = float64(m.in.northVelocity.Load(tx))
		nav.east = float64(m.in.eastVelocity.Load(tx))
		nav.track = float64(m.in.track.Load(tx))
		nav.lat = m.in.lat.Load(tx)
		nav.lon = m.in.lon.Load(tx)
	})
	return nav
}

func (m *Manager) publish() {
	m.bus.Write(func(tx *databus.Tx) {
		m.out.courseError.Store(tx, float32(m.guidance.CourseError))
		m.out.crossTrack.Store(tx, float32(m.guidance.CrossTrack))
		m.out.distance.Store(tx, float32(m.guidance.Distance))
		m.out.distanceRemaining.Store(tx, float32(m.guidance.DistanceRemaining))
		m.out.waypointDistance.Store(tx, float32(m.guidance.WaypointDistance))
		m.out.waypointETA.Store(tx, float32(m.guidance.WaypointETA))
		m.out.legCourse.Store(tx, float32(geo.Radians(m.guidance.LegCourse)))
	})
}

// Swap activates the standby route. It returns false and changes nothing if the standby route is
// empty. The new active route starts at waypoint 0 and its relative waypoints are positioned again
// on the next valid fix.
func (m *Manager) Swap() bool {
	if m.routes[m.standby()].Size() == 0 {
		return false
	}

	m.active = m.standby()
	m.routes[m.active].SetCurrent(0)
	m.posSet = false
	m.routeStartMode = m.startMode
	m.startPending = true
	m.warnedEmpty = false

	m.logger.Info("activated route", slog.Int("waypoints", m.routes[m.active].Size()),
		slog.String("start_mode", m.startMode.String()),
		slog.String("completion_mode", m.completionMode.String()))
	return true
}

// Build replaces the standby route with the given waypoints. The standby route is validated as a
// whole before anything is added, so on error it is left empty.
func (m *Manager) Build(waypoints []config.Waypoint) error {
	standby := &m.routes[m.standby()]
	standby.Clear()
	if err := config.ValidateWaypoints(waypoints); err != nil {
		return fmt.Errorf("invalid route configuration: %w", err)
	}
	for _, entry := range waypoints {
		standby.Add(waypointFromConfig(entry))
	}
	m.logger.Info("loaded waypoints", slog.Int("count", standby.Size()))
	return nil
}

// NewWaypoint appends a single waypoint to the standby route without clearing it. Relative
// waypoints take (distance, bearing), absolute ones (lat, lon).
func (m *Manager) NewWaypoint(field1, field2 float64, mode int) error {
	var entry config.Waypoint
	switch mode {
	case WaypointModeRelative:
		entry = config.Waypoint{Mode: config.WaypointRelative, Distance: field1, Bearing: field2}
	case WaypointModeAbsolute:
		entry = config.Waypoint{Mode: config.WaypointAbsolute, Lat: field1, Lon: field2}
	default:
		return fmt.Errorf("%w: %d", ErrInvalidWaypointMode, mode)
	}
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("invalid waypoint: %w", err)
	}

	m.routes[m.standby()].Add(waypointFromConfig(entry))
	return nil
}

// ClearStandby empties the standby route.
func (m *Manager) ClearStandby() {
	m.routes[m.standby()].Clear()
}

// PositionSet reports whether the relative waypoints of the active route have been positioned.
func (m *Manager) PositionSet() bool {
	return m.posSet
}

// StartMode returns the start mode in effect for the active route.
func (m *Manager) StartMode() StartMode {
	return m.routeStartMode
}

// Guidance returns the values computed by the last update.
func (m *Manager) Guidance() Guidance {
	return m.guidance
}

// Status returns a snapshot of the manager state.
func (m *Manager) Status() Status {
	active := &m.routes[m.active]
	wps := active.Waypoints()
	positions := make([]Position, 0, len(wps))
	for _, wp := range wps {
		positions = append(positions, Position{Kind: wp.Kind().String(), Lat: wp.Lat(), Lon: wp.Lon()})
	}

	return Status{
		Size:           active.Size(),
		StandbySize:    m.routes[m.standby()].Size(),
		Index:          active.Index(),
		Acquired:       active.Acquired(),
		PositionSet:    m.posSet,
		StartMode:      m.routeStartMode,
		CompletionMode: m.completionMode,
		Guidance:       m.guidance,
		Waypoints:      positions,
	}
}

func (m *Manager) standby() int {
	return 1 - m.active
}

func waypointFromConfig(entry config.Waypoint) route.Waypoint {
	if entry.IsRelative() {
		return route.NewRelative(entry.Bearing, entry.Distance)
	}
	return route.NewAbsolute(entry.Lat, entry.Lon)
}
