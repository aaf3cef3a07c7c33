// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package navsource

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/wneessen/route-manager/internal/logger"
)

// Orchestrator keeps a set of providers running and publishes their samples.
type Orchestrator struct {
	Publisher *Publisher
	Providers []Provider
	logger    *logger.Logger
}

// NewOrchestrator returns an Orchestrator for the given providers.
func NewOrchestrator(pub *Publisher, log *logger.Logger, providers ...Provider) *Orchestrator {
	return &Orchestrator{
		Publisher: pub,
		Providers: providers,
		logger:    log,
	}
}

// Track runs all providers concurrently until ctx is done.
func (o *Orchestrator) Track(ctx context.Context) {
	var wg sync.WaitGroup
	for _, p := range o.Providers {
		wg.Add(1)
		go func(p Provider) {
			defer wg.Done()
			o.trackProvider(ctx, p)
		}(p)
	}
	<-ctx.Done()
	wg.Wait()
}

// trackProvider restarts a provider stream whenever it fails or ends, with exponential backoff.
func (o *Orchestrator) trackProvider(ctx context.Context, p Provider) {
	backoff := initialBackoff
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		stream, err := o.safeStream(ctx, p)
		if err != nil {
			o.logger.Error("navigation provider failed to start", slog.String("provider", p.Name()),
				logger.Err(err))
		}
		if stream == nil {
			if !sleepOrDone(ctx, backoff) {
				return
			}
			backoff = nextBackoff(backoff)
			continue
		}

	recv:
		for {
			select {
			case <-ctx.Done():
				return
			case s, ok := <-stream:
				if !ok {
					break recv
				}
				o.Publisher.Publish(s)
				backoff = initialBackoff
			}
		}

		o.logger.Warn("navigation provider stream ended", slog.String("provider", p.Name()),
			slog.Duration("retry_in", backoff))
		if !sleepOrDone(ctx, backoff) {
			return
		}
		backoff = nextBackoff(backoff)
	}
}

// safeStream starts a provider stream and recovers from a panicking provider.
func (o *Orchestrator) safeStream(ctx context.Context, p Provider) (ch <-chan Sample, err error) {
	defer func() {
		if r := recover(); r != nil {
			ch, err = nil, fmt.Errorf("provider panicked: %v", r)
		}
	}()
	return p.Stream(ctx), nil
}
