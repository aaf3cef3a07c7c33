// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/wneessen/route-manager/internal/api"
	"github.com/wneessen/route-manager/internal/config"
	"github.com/wneessen/route-manager/internal/cycle"
	"github.com/wneessen/route-manager/internal/databus"
	"github.com/wneessen/route-manager/internal/geo"
	"github.com/wneessen/route-manager/internal/logger"
	"github.com/wneessen/route-manager/internal/navsource"
	"github.com/wneessen/route-manager/internal/navsource/gpsd"
	"github.com/wneessen/route-manager/internal/routemgr"
)

const (
	statusJobName      = "guidance_status_job"
	routeReloadJobName = "route_reload_job"
)

type Service struct {
	config       *config.Config
	logger       *logger.Logger
	manager      *routemgr.Manager
	loop         *cycle.Loop
	orchestrator *navsource.Orchestrator
	scheduler    gocron.Scheduler
	api          *api.Server

	SignalSrc signalSource

	// routeModTime is the modification time of the route file that was loaded last.
	routeLock    sync.Mutex
	routeModTime time.Time
}

func New(conf *config.Config, log *logger.Logger) (*Service, error) {
	if log == nil {
		return nil, errors.New("logger is required")
	}

	startMode, err := routemgr.ParseStartMode(conf.Route.StartMode)
	if err != nil {
		return nil, err
	}
	completionMode, err := routemgr.ParseCompletionMode(conf.Route.CompletionMode)
	if err != nil {
		return nil, err
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	bus := databus.New()
	publisher, err := navsource.NewPublisher(bus)
	if err != nil {
		return nil, fmt.Errorf("failed to create navigation publisher: %w", err)
	}
	manager, err := routemgr.New(bus, log, startMode, completionMode)
	if err != nil {
		return nil, fmt.Errorf("failed to create route manager: %w", err)
	}

	var providers []navsource.Provider
	if !conf.GPSD.Disable {
		providers = append(providers, gpsd.NewProvider(conf.GPSD.Host, conf.GPSD.Port, log))
	}

	service := &Service{
		config:       conf,
		logger:       log,
		manager:      manager,
		orchestrator: navsource.NewOrchestrator(publisher, log, providers...),
		scheduler:    scheduler,
		SignalSrc:    stdLibSignalSource{},
	}
	service.loop = cycle.New(conf.Intervals.Cycle, service.update)
	service.api = api.New(service, bus, log)

	return service, nil
}

// Run activates the configured route and runs the control loop until ctx is done. A route that
// fails to build at startup is fatal.
func (s *Service) Run(ctx context.Context) error {
	waypoints, err := s.initialWaypoints()
	if err != nil {
		return fmt.Errorf("failed to load route: %w", err)
	}
	if err = s.manager.Init(waypoints); err != nil {
		return fmt.Errorf("failed to initialize route: %w", err)
	}

	// Start scheduled jobs
	if err = s.createScheduledJob(ctx, s.config.Intervals.Status, s.printGuidance, statusJobName); err != nil {
		return err
	}
	if s.config.Route.File != "" {
		if err = s.createScheduledJob(ctx, s.config.Intervals.RouteReload, s.reloadRoute,
			routeReloadJobName); err != nil {
			return err
		}
	}
	s.scheduler.Start()

	var wg sync.WaitGroup
	wg.Go(func() { s.loop.Start(ctx) })
	if len(s.orchestrator.Providers) > 0 {
		wg.Go(func() { s.orchestrator.Track(ctx) })
	} else {
		s.logger.Warn("no navigation provider enabled")
	}
	if !s.config.API.Disable {
		wg.Go(func() {
			if err := s.api.ListenAndServe(ctx, s.config.API.Listen); err != nil {
				s.logger.Error("command API stopped", logger.Err(err))
			}
		})
	}

	sigChan := make(chan os.Signal, 1)
	s.SignalSrc.Notify(sigChan, syscall.SIGHUP)
	wg.Go(func() {
		defer s.SignalSrc.Stop(sigChan)
		s.HandleSignals(ctx, sigChan)
	})

	// Wait for the context to cancel
	<-ctx.Done()
	wg.Wait()
	return s.scheduler.Shutdown()
}

func (s *Service) createScheduledJob(ctx context.Context, interval time.Duration, task func(context.Context),
	jobName string,
) error {
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(task),
		gocron.WithContext(ctx),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName(jobName),
	)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", jobName, err)
	}
	return nil
}

// update runs one control cycle on the loop goroutine.
func (s *Service) update(context.Context) {
	s.manager.Update()
}

// printGuidance logs the current guidance values.
func (s *Service) printGuidance(ctx context.Context) {
	status, err := s.Status(ctx)
	if err != nil {
		s.logger.Debug("failed to read route manager status", logger.Err(err))
		return
	}
	if status.Size == 0 {
		return
	}

	g := status.Guidance
	s.logger.Info("route guidance",
		slog.Int("wp", status.Index),
		slog.Int("size", status.Size),
		slog.String("crs", fmt.Sprintf("%.1f", g.LegCourse)),
		slog.String("err", fmt.Sprintf("%.1f", geo.Degrees(g.CourseError))),
		slog.String("xtrk", fmt.Sprintf("%.1f", g.CrossTrack)),
		slog.String("dist", fmt.Sprintf("%.1f", g.Distance)),
		slog.Duration("eta", time.Duration(g.WaypointETA*float64(time.Second)).Round(time.Second)),
	)
}
