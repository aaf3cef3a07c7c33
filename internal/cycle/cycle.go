// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package cycle implements the fixed-rate control loop. The periodic task and all queued commands
// run on the loop goroutine, so they never overlap.
package cycle

import (
	"context"
	"errors"
	"time"
)

// ErrLoopStopped is returned by Do once the loop has returned.
var ErrLoopStopped = errors.New("control loop is not running")

type command struct {
	fn   func()
	done chan struct{}
}

// Loop runs a task at a fixed interval and executes commands between two runs.
type Loop struct {
	interval time.Duration
	task     func(context.Context)
	commands chan command
	stopped  chan struct{}
}

// New creates a new Loop with the given interval and task.
func New(interval time.Duration, task func(context.Context)) *Loop {
	return &Loop{
		interval: interval,
		task:     task,
		commands: make(chan command),
		stopped:  make(chan struct{}),
	}
}

// Start runs the loop until the context is cancelled. Ticks that fire while the task is still
// running are dropped. Start must only be called once.
func (l *Loop) Start(ctx context.Context) {
	defer close(l.stopped)
	if l.task == nil || l.interval <= 0 {
		return
	}

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.task(ctx)
		case cmd := <-l.commands:
			cmd.fn()
			close(cmd.done)
		}
	}
}

// Do runs fn on the loop goroutine and waits for it to return.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	cmd := command{fn: fn, done: make(chan struct{})}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-l.stopped:
		return ErrLoopStopped
	case l.commands <- cmd:
	}
	<-cmd.done
	return nil
}
