// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package databus implements the shared flight data tree. Producers register a named signal once
// and keep the returned Writer; consumers resolve a Reader for a signal by name. Both handles are
// resolved once, so a missing signal is detected at wiring time and never inside a control cycle.
package databus

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	// ErrSignalNotFound is returned when looking up a signal that was never registered.
	ErrSignalNotFound = errors.New("signal not found")

	// ErrSignalExists is returned when registering a signal path twice.
	ErrSignalExists = errors.New("signal already registered")

	// ErrSignalType is returned when a signal is looked up with a type other than the one it was
	// registered with.
	ErrSignalType = errors.New("signal type mismatch")
)

// Value is the set of types a signal can carry.
type Value interface {
	~float32 | ~float64 | ~uint8 | ~int32
}

// Bus holds the registered signals. It is safe for concurrent use.
type Bus struct {
	mu      sync.RWMutex
	signals map[string]*signal
}

type signal struct {
	description string
	slot        valuer
}

type valuer interface {
	get() any
}

type slot[T Value] struct {
	value T
}

func (s *slot[T]) get() any {
	return s.value
}

// Reader is a read handle for a registered signal.
type Reader[T Value] struct {
	bus  *Bus
	path string
	slot *slot[T]
}

// Writer is a write handle for a registered signal. Only the registering component holds it.
type Writer[T Value] struct {
	Reader[T]
}

// New returns an empty Bus.
func New() *Bus {
	return &Bus{signals: make(map[string]*signal)}
}

// Register creates the signal at path with its zero value and returns the write handle for it.
func Register[T Value](bus *Bus, path, description string) (*Writer[T], error) {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	if _, ok := bus.signals[path]; ok {
		return nil, fmt.Errorf("%w: %s", ErrSignalExists, path)
	}
	s := new(slot[T])
	bus.signals[path] = &signal{description: description, slot: s}

	return &Writer[T]{Reader[T]{bus: bus, path: path, slot: s}}, nil
}

// Lookup returns a read handle for the signal at path.
func Lookup[T Value](bus *Bus, path string) (*Reader[T], error) {
	bus.mu.RLock()
	defer bus.mu.RUnlock()

	sig, ok := bus.signals[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSignalNotFound, path)
	}
	s, ok := sig.slot.(*slot[T])
	if !ok {
		var want T
		return nil, fmt.Errorf("%w: %s is %T, requested %T", ErrSignalType, path, sig.slot.get(), want)
	}

	return &Reader[T]{bus: bus, path: path, slot: s}, nil
}

// Path returns the signal path the handle is bound to.
func (r *Reader[T]) Path() string {
	return r.path
}

// Get returns the last written value.
func (r *Reader[T]) Get() T {
	r.bus.mu.RLock()
	defer r.bus.mu.RUnlock()
	return r.slot.value
}

// Set writes a new value.
func (w *Writer[T]) Set(value T) {
	w.bus.mu.Lock()
	w.slot.value = value
	w.bus.mu.Unlock()
}

// Tx grants access to signal values while the bus lock is held. It is only valid inside the
// function passed to Bus.Read or Bus.Write.
type Tx struct {
	writable bool
}

// Read runs fn with the bus read-locked, so every value loaded through tx belongs to the same
// state of the bus.
func (b *Bus) Read(fn func(tx *Tx)) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	fn(&Tx{})
}

// Write runs fn with the bus write-locked. Readers never observe a subset of the values stored
// through tx.
func (b *Bus) Write(fn func(tx *Tx)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn(&Tx{writable: true})
}

// Load returns the value inside a transaction. Get must not be called while tx is open.
func (r *Reader[T]) Load(*Tx) T {
	return r.slot.value
}

// Store writes the value inside a transaction opened with Bus.Write.
func (w *Writer[T]) Store(tx *Tx, value T) {
	if !tx.writable {
		panic("databus: store in a read transaction")
	}
	w.slot.value = value
}

// Describe returns the description a signal was registered with.
func (b *Bus) Describe(path string) (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	sig, ok := b.signals[path]
	if !ok {
		return "", false
	}
	return sig.description, true
}

// Paths returns all registered signal paths in lexical order.
func (b *Bus) Paths() []string {
	b.mu.RLock()
	paths := make([]string, 0, len(b.signals))
	for path := range b.signals {
		paths = append(paths, path)
	}
	b.mu.RUnlock()
	sort.Strings(paths)
	return paths
}

// Snapshot returns the current value of every signal, keyed by path.
func (b *Bus) Snapshot() map[string]any {
	b.mu.RLock()
	defer b.mu.RUnlock()
	snap := make(map[string]any, len(b.signals))
	for path, sig := range b.signals {
		snap[path] = sig.slot.get()
	}
	return snap
}
