// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/wneessen/route-manager/internal/config"
	"github.com/wneessen/route-manager/internal/logger"
	"github.com/wneessen/route-manager/internal/routemgr"
)

const retryHint = "after the next modification or SIGHUP"

// initialWaypoints returns the waypoints of the route file if one is configured and the waypoints
// of the config otherwise.
func (s *Service) initialWaypoints() ([]config.Waypoint, error) {
	if s.config.Route.File == "" {
		return s.config.Route.Waypoints, nil
	}

	info, err := os.Stat(s.config.Route.File)
	if err != nil {
		return nil, fmt.Errorf("failed to read route file: %w", err)
	}
	doc, err := loadRouteFile(s.config.Route.File)
	if err != nil {
		return nil, err
	}
	s.setRouteModTime(info)
	return doc.Waypoints, nil
}

// reloadRoute activates the route file if it changed since it was loaded last. The modification
// time is recorded before the file is parsed, so a file that fails to load is not retried until it
// is modified again or SIGHUP forces a reload.
func (s *Service) reloadRoute(ctx context.Context) {
	s.loadRoute(ctx, false)
}

// loadRoute builds the route file into the standby route and activates it. Failures are logged
// and leave the active route untouched.
func (s *Service) loadRoute(ctx context.Context, force bool) {
	path := s.config.Route.File
	if path == "" {
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		s.logger.Error("failed to read route file", slog.String("file", path), logger.Err(err))
		return
	}
	if !force && !s.routeChanged(info) {
		return
	}
	s.setRouteModTime(info)

	doc, err := loadRouteFile(path)
	if err != nil {
		s.logger.Error("failed to load route file", slog.String("file", path),
			slog.String("retry", retryHint), logger.Err(err))
		return
	}
	status, err := s.LoadRoute(ctx, doc.Waypoints)
	if err != nil {
		s.logger.Error("failed to activate route", slog.String("file", path),
			slog.String("retry", retryHint), logger.Err(err))
		return
	}
	s.logger.Info("route reloaded", slog.String("file", path), slog.Int("waypoints", status.Size))
}

func (s *Service) routeChanged(info os.FileInfo) bool {
	s.routeLock.Lock()
	defer s.routeLock.Unlock()
	return !info.ModTime().Equal(s.routeModTime)
}

func (s *Service) setRouteModTime(info os.FileInfo) {
	s.routeLock.Lock()
	s.routeModTime = info.ModTime()
	s.routeLock.Unlock()
}

func loadRouteFile(path string) (*config.RouteDocument, error) {
	return config.LoadRoute(filepath.Dir(path), filepath.Base(path))
}

// NewWaypoint appends a waypoint to the standby route.
func (s *Service) NewWaypoint(ctx context.Context, field1, field2 float64, mode int) (routemgr.Status, error) {
	return s.command(ctx, func() error {
		return s.manager.NewWaypoint(field1, field2, mode)
	})
}

// Swap activates the standby route.
func (s *Service) Swap(ctx context.Context) (routemgr.Status, error) {
	return s.command(ctx, s.swap)
}

// LoadRoute builds the waypoints into the standby route and activates it.
func (s *Service) LoadRoute(ctx context.Context, waypoints []config.Waypoint) (routemgr.Status, error) {
	return s.command(ctx, func() error {
		if err := s.manager.Build(waypoints); err != nil {
			return err
		}
		return s.swap()
	})
}

// ClearStandby empties the standby route.
func (s *Service) ClearStandby(ctx context.Context) (routemgr.Status, error) {
	return s.command(ctx, func() error {
		s.manager.ClearStandby()
		return nil
	})
}

// Status returns the route manager state.
func (s *Service) Status(ctx context.Context) (routemgr.Status, error) {
	return s.command(ctx, func() error { return nil })
}

func (s *Service) swap() error {
	if !s.manager.Swap() {
		return routemgr.ErrStandbyEmpty
	}
	return nil
}

// command runs fn on the control loop, so it never interleaves with an update cycle.
func (s *Service) command(ctx context.Context, fn func() error) (routemgr.Status, error) {
	var status routemgr.Status
	var cmdErr error
	err := s.loop.Do(ctx, func() {
		cmdErr = fn()
		status = s.manager.Status()
	})
	if err != nil {
		return status, fmt.Errorf("failed to run route command: %w", err)
	}
	return status, cmdErr
}
