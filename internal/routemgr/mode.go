// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package routemgr

import (
	"fmt"
	"strings"
)

// StartMode selects where the cursor goes when a route is activated.
type StartMode int

const (
	// FirstWaypoint flies direct to waypoint 0.
	FirstWaypoint StartMode = iota
	// FirstLeg skips waypoint 0 and tracks the leg from waypoint 0 to waypoint 1.
	FirstLeg
)

// CompletionMode selects what happens when the last leg is completed.
type CompletionMode int

const (
	// Loop continues with waypoint 0 after the last waypoint.
	Loop CompletionMode = iota
	// ExtendLastLeg keeps tracking the last leg indefinitely.
	ExtendLastLeg
)

// ParseStartMode parses first_wpt or first_leg, ignoring case.
func ParseStartMode(s string) (StartMode, error) {
	switch strings.ToLower(s) {
	case "first_wpt":
		return FirstWaypoint, nil
	case "first_leg":
		return FirstLeg, nil
	}
	return FirstWaypoint, fmt.Errorf("invalid start mode: %q", s)
}

// ParseCompletionMode parses loop or extend_last_leg, ignoring case.
func ParseCompletionMode(s string) (CompletionMode, error) {
	switch strings.ToLower(s) {
	case "loop":
		return Loop, nil
	case "extend_last_leg":
		return ExtendLastLeg, nil
	}
	return Loop, fmt.Errorf("invalid completion mode: %q", s)
}

func (m StartMode) String() string {
	switch m {
	case FirstWaypoint:
		return "first_wpt"
	case FirstLeg:
		return "first_leg"
	default:
		return fmt.Sprintf("StartMode(%d)", int(m))
	}
}

// MarshalText encodes the mode by name.
func (m StartMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// MarshalText encodes the mode by name.
func (m CompletionMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText decodes a mode name as accepted by ParseStartMode.
func (m *StartMode) UnmarshalText(text []byte) error {
	mode, err := ParseStartMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// UnmarshalText decodes a mode name as accepted by ParseCompletionMode.
func (m *CompletionMode) UnmarshalText(text []byte) error {
	mode, err := ParseCompletionMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

func (m CompletionMode) String() string {
	switch m {
	case Loop:
		return "loop"
	case ExtendLastLeg:
		return "extend_last_leg"
	default:
		return fmt.Sprintf("CompletionMode(%d)", int(m))
	}
}
