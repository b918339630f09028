package main

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// tristate is an auto|on|off switch whose auto setting follows whether
// stdout is a terminal.
type tristate int8

const (
	tristateAuto tristate = iota
	tristateOn
	tristateOff
)

func parseTristate(flag, value string) (tristate, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "auto":
		return tristateAuto, nil
	case "on", "always":
		return tristateOn, nil
	case "off", "never":
		return tristateOff, nil
	}
	return tristateAuto, fmt.Errorf("invalid --%s value %q (expected auto|on|off)", flag, value)
}

func (t tristate) String() string {
	switch t {
	case tristateOn:
		return "on"
	case tristateOff:
		return "off"
	default:
		return "auto"
	}
}

// enabled resolves auto against f.
func (t tristate) enabled(f *os.File) bool {
	switch t {
	case tristateOn:
		return true
	case tristateOff:
		return false
	}
	return f != nil && isTerminal(f)
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
