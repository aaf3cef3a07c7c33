// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package gpsd

import (
	"context"
	"log/slog"
	"net"
	"time"

	"github.com/stratoberry/go-gpsd"

	"github.com/wneessen/route-manager/internal/logger"
	"github.com/wneessen/route-manager/internal/navsource"
)

const name = "gpsd"

// session is the subset of a gpsd session used by the provider.
type session interface {
	AddFilter(class string, f gpsd.Filter)
	Watch() chan bool
}

// Provider streams navigation samples from the TPV reports of a gpsd daemon.
type Provider struct {
	addr   string
	period time.Duration
	logger *logger.Logger
	dialFn func(addr string) (session, error)
}

func NewProvider(host, port string, log *logger.Logger) *Provider {
	return &Provider{
		addr:   net.JoinHostPort(host, port),
		period: time.Second * 5,
		logger: log,
		dialFn: func(addr string) (session, error) {
			return gpsd.Dial(addr)
		},
	}
}

func (p *Provider) Name() string {
	return name
}

func (p *Provider) Stream(ctx context.Context) <-chan navsource.Sample {
	out := make(chan navsource.Sample)

	go func() {
		defer close(out)

		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			sess, err := p.dialFn(p.addr)
			if err != nil {
				p.logger.Warn("failed to connect to gpsd", slog.String("addr", p.addr), logger.Err(err))
				if !p.wait(ctx) {
					return
				}
				continue
			}

			sess.AddFilter("TPV", func(r interface{}) {
				tpv, ok := r.(*gpsd.TPVReport)
				if !ok {
					return
				}
				select {
				case <-ctx.Done():
				case out <- sampleFromTPV(tpv):
				}
			})

			// go-gpsd has no Close(); the watch ends when the connection is lost.
			done := sess.Watch()
			select {
			case <-ctx.Done():
				return
			case <-done:
				p.logger.Warn("gpsd connection lost", slog.String("addr", p.addr))
			}
			if !p.wait(ctx) {
				return
			}
		}
	}()

	return out
}

func (p *Provider) wait(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(p.period):
		return true
	}
}

// sampleFromTPV converts a TPV report. Reports below a 2D fix yield a sample without fix.
func sampleFromTPV(tpv *gpsd.TPVReport) navsource.Sample {
	if tpv.Mode < gpsd.Mode2D {
		return navsource.Sample{}
	}
	return navsource.SampleFromTrack(tpv.Lat, tpv.Lon, tpv.Track, tpv.Speed)
}
