// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package api implements the HTTP command interface of the route manager.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/wneessen/route-manager/internal/config"
	"github.com/wneessen/route-manager/internal/cycle"
	"github.com/wneessen/route-manager/internal/logger"
	"github.com/wneessen/route-manager/internal/routemgr"
)

const (
	contentType     = "application/json"
	maxBodySize     = 1 << 20
	shutdownTimeout = time.Second * 5
)

// Commander executes route manager commands. Every call returns the manager state after the
// command ran.
type Commander interface {
	NewWaypoint(ctx context.Context, field1, field2 float64, mode int) (routemgr.Status, error)
	Swap(ctx context.Context) (routemgr.Status, error)
	LoadRoute(ctx context.Context, waypoints []config.Waypoint) (routemgr.Status, error)
	ClearStandby(ctx context.Context) (routemgr.Status, error)
	Status(ctx context.Context) (routemgr.Status, error)
}

// Snapshotter returns the current value of every bus signal.
type Snapshotter interface {
	Snapshot() map[string]any
}

type waypointRequest struct {
	Field1 float64 `json:"field1"`
	Field2 float64 `json:"field2"`
	Mode   *int    `json:"mode"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server serves the command interface.
type Server struct {
	router *mux.Router
	cmd    Commander
	bus    Snapshotter
	logger *logger.Logger
}

func New(cmd Commander, bus Snapshotter, log *logger.Logger) *Server {
	s := &Server{
		router: mux.NewRouter().StrictSlash(true),
		cmd:    cmd,
		bus:    bus,
		logger: log,
	}

	s.router.HandleFunc("/route", s.loadRoute).Methods(http.MethodPost)
	s.router.HandleFunc("/route/waypoints", s.newWaypoint).Methods(http.MethodPost)
	s.router.HandleFunc("/route/swap", s.swap).Methods(http.MethodPost)
	s.router.HandleFunc("/route/standby", s.clearStandby).Methods(http.MethodDelete)
	s.router.HandleFunc("/route/status", s.status).Methods(http.MethodGet)
	s.router.HandleFunc("/bus", s.snapshot).Methods(http.MethodGet)

	return s
}

// Handler returns the router wrapped in the recovery and content type middlewares.
func (s *Server) Handler() http.Handler {
	recovery := handlers.RecoveryHandler(handlers.RecoveryLogger(s.logger), handlers.PrintRecoveryStack(true))
	return recovery(handlers.ContentTypeHandler(s.router, contentType))
}

// ListenAndServe serves the API on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: time.Second * 5,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting command API", slog.String("listen", addr))
		errChan <- srv.ListenAndServe()
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("command API failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down command API: %w", err)
	}
	return nil
}

func (s *Server) newWaypoint(w http.ResponseWriter, r *http.Request) {
	var req waypointRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Mode == nil {
		s.writeError(w, http.StatusBadRequest, errors.New("missing waypoint mode"))
		return
	}

	status, err := s.cmd.NewWaypoint(r.Context(), req.Field1, req.Field2, *req.Mode)
	s.respond(w, status, err)
}

func (s *Server) swap(w http.ResponseWriter, r *http.Request) {
	status, err := s.cmd.Swap(r.Context())
	s.respond(w, status, err)
}

func (s *Server) loadRoute(w http.ResponseWriter, r *http.Request) {
	var doc config.RouteDocument
	if err := decode(w, r, &doc); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	status, err := s.cmd.LoadRoute(r.Context(), doc.Waypoints)
	s.respond(w, status, err)
}

func (s *Server) clearStandby(w http.ResponseWriter, r *http.Request) {
	status, err := s.cmd.ClearStandby(r.Context())
	s.respond(w, status, err)
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	status, err := s.cmd.Status(r.Context())
	s.respond(w, status, err)
}

func (s *Server) snapshot(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.bus.Snapshot())
}

// respond maps command errors to status codes.
func (s *Server) respond(w http.ResponseWriter, status routemgr.Status, err error) {
	switch {
	case err == nil:
		s.writeJSON(w, http.StatusOK, status)
	case errors.Is(err, routemgr.ErrStandbyEmpty):
		s.writeError(w, http.StatusConflict, err)
	case errors.Is(err, cycle.ErrLoopStopped), errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		s.writeError(w, http.StatusServiceUnavailable, err)
	default:
		s.writeError(w, http.StatusBadRequest, err)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode API response", logger.Err(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, err error) {
	s.logger.Debug("API request failed", slog.Int("status", code), logger.Err(err))
	s.writeJSON(w, code, errorResponse{Error: err.Error()})
}

func decode(w http.ResponseWriter, r *http.Request, target any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		return fmt.Errorf("failed to decode request body: %w", err)
	}
	return nil
}
