// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package main implements routectl, the command line client of the route-manager command API.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/peterbourgon/ff"

	"github.com/wneessen/route-manager/internal/client"
	"github.com/wneessen/route-manager/internal/config"
	"github.com/wneessen/route-manager/internal/logger"
	"github.com/wneessen/route-manager/internal/routemgr"
)

const usage = `usage: routectl [-addr host:port] <command> [args]

commands:
  status                       print the route manager state
  bus                          print every bus signal
  waypoint abs <lat> <lon>     append an absolute waypoint to the standby route
  waypoint rel <dist> <brg>    append a relative waypoint to the standby route
  swap                         activate the standby route
  clear                        empty the standby route
  load <file>                  build a route document and activate it
`

var errUsage = errors.New("invalid arguments")

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, os.Interrupt)
	defer cancel()

	err := run(ctx, os.Args[1:], os.Stdout)
	if errors.Is(err, errUsage) {
		fmt.Fprint(os.Stderr, usage)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "routectl: %s\n", err)
		cancel()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("routectl", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	addr := fs.String("addr", "127.0.0.1:8787", "address of the route-manager command API")
	if err := ff.Parse(fs, args, ff.WithEnvVarPrefix("ROUTECTL")); err != nil {
		return fmt.Errorf("%w: %s", errUsage, err)
	}
	if fs.NArg() == 0 {
		return errUsage
	}

	c, err := client.New(*addr, logger.NewLogger(slog.LevelError, os.Stderr))
	if err != nil {
		return err
	}

	var result any
	switch cmdArgs := fs.Args()[1:]; fs.Arg(0) {
	case "status":
		result, err = c.Status(ctx)
	case "bus":
		result, err = c.Snapshot(ctx)
	case "swap":
		result, err = c.Swap(ctx)
	case "clear":
		result, err = c.ClearStandby(ctx)
	case "waypoint":
		result, err = newWaypoint(ctx, c, cmdArgs)
	case "load":
		if len(cmdArgs) != 1 {
			return errUsage
		}
		var doc *config.RouteDocument
		if doc, err = config.LoadRoute(filepath.Dir(cmdArgs[0]), filepath.Base(cmdArgs[0])); err != nil {
			return err
		}
		result, err = c.LoadRoute(ctx, doc.Waypoints)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, fs.Arg(0))
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func newWaypoint(ctx context.Context, c *client.Client, args []string) (routemgr.Status, error) {
	if len(args) != 3 {
		return routemgr.Status{}, errUsage
	}

	var mode int
	switch args[0] {
	case "abs":
		mode = routemgr.WaypointModeAbsolute
	case "rel":
		mode = routemgr.WaypointModeRelative
	default:
		return routemgr.Status{}, fmt.Errorf("%w: unknown waypoint mode %q", errUsage, args[0])
	}

	field1, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return routemgr.Status{}, fmt.Errorf("%w: %s", errUsage, err)
	}
	field2, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return routemgr.Status{}, fmt.Errorf("%w: %s", errUsage, err)
	}
	return c.NewWaypoint(ctx, field1, field2, mode)
}
