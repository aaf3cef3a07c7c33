// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package navsource feeds the navigation solution into the data bus. Providers stream samples,
// the Orchestrator keeps every provider running and the Publisher writes samples to the sensor
// processing signals.
package navsource

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/multierr"

	"github.com/wneessen/route-manager/internal/databus"
	"github.com/wneessen/route-manager/internal/geo"
)

const (
	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
)

// Provider defines an interface for navigation solution sources.
type Provider interface {
	Name() string
	Stream(ctx context.Context) <-chan Sample
}

// Sample is a single navigation solution. Angles are in degrees, speeds in m/s.
type Sample struct {
	Fix      bool
	LatDeg   float64
	LonDeg   float64
	TrackDeg float64
	SpeedMS  float64
	NorthMS  float64
	EastMS   float64
}

// SampleFromTrack returns a valid Sample with the velocity split into north and east components.
func SampleFromTrack(lat, lon, track, speed float64) Sample {
	rad := geo.Radians(track)
	return Sample{
		Fix:      true,
		LatDeg:   lat,
		LonDeg:   lon,
		TrackDeg: track,
		SpeedMS:  speed,
		NorthMS:  speed * math.Cos(rad),
		EastMS:   speed * math.Sin(rad),
	}
}

// Publisher owns the sensor processing signals on the bus.
type Publisher struct {
	bus           *databus.Bus
	northVelocity *databus.Writer[float32]
	eastVelocity  *databus.Writer[float32]
	track         *databus.Writer[float32]
	lat           *databus.Writer[float64]
	lon           *databus.Writer[float64]
	fix           *databus.Writer[uint8]
}

// NewPublisher registers the sensor processing signals on the bus.
func NewPublisher(bus *databus.Bus) (*Publisher, error) {
	var err error
	float32Out := func(path, desc string) *databus.Writer[float32] {
		w, rerr := databus.Register[float32](bus, path, desc)
		err = multierr.Append(err, rerr)
		return w
	}
	float64Out := func(path, desc string) *databus.Writer[float64] {
		w, rerr := databus.Register[float64](bus, path, desc)
		err = multierr.Append(err, rerr)
		return w
	}

	p := &Publisher{
		bus:           bus,
		northVelocity: float32Out(databus.NorthVelocity, "North velocity (m/s)"),
		eastVelocity:  float32Out(databus.EastVelocity, "East velocity (m/s)"),
		track:         float32Out(databus.Track, "Ground track (rad)"),
		lat:           float64Out(databus.Latitude, "Latitude (rad)"),
		lon:           float64Out(databus.Longitude, "Longitude (rad)"),
	}
	fix, rerr := databus.Register[uint8](bus, databus.GPSFix, "GPS fix status (1 = valid)")
	p.fix = fix
	if err = multierr.Append(err, rerr); err != nil {
		return nil, fmt.Errorf("failed to register navigation signals: %w", err)
	}
	return p, nil
}

// Publish writes a sample to the bus in a single transaction. A sample without a fix only clears
// the fix flag, the last known solution stays in place.
func (p *Publisher) Publish(s Sample) {
	if !s.Fix {
		p.fix.Set(0)
		return
	}
	p.bus.Write(func(tx *databus.Tx) {
		p.northVelocity.Store(tx, float32(s.NorthMS))
		p.eastVelocity.Store(tx, float32(s.EastMS))
		p.track.Store(tx, float32(geo.Radians(s.TrackDeg)))
		p.lat.Store(tx, geo.Radians(s.LatDeg))
		p.lon.Store(tx, geo.Radians(s.LonDeg))
		p.fix.Store(tx, 1)
	})
}

func sleepOrDone(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func nextBackoff(d time.Duration) time.Duration {
	if d *= 2; d > maxBackoff {
		return maxBackoff
	}
	return d
}
