package hex

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnsupported marks a coordinate system, top or winding that exists
	// in the vocabulary but has no implementation.
	ErrUnsupported = errors.New("unsupported layout")
	// ErrMalformedCoord marks coordinate input that is not a pair of integers.
	ErrMalformedCoord = errors.New("malformed coordinate")
)

// System names a hex coordinate system.
type System uint8

const (
	Axial System = iota
	Offset
	Cube
	Doubled
)

// Top is the cell orientation.
type Top uint8

const (
	Pointy Top = iota
	Flat
)

// Winding is the order in which a cell's vertices are enumerated.
type Winding uint8

const (
	Clockwise Winding = iota
	Counterclockwise
)

// Layout is the geometric configuration shared by all cells of an assembly.
// Only axial, pointy, clockwise is implemented.
type Layout struct {
	System  System
	Top     Top
	Winding Winding
}

// DefaultLayout is the only layout Validate accepts.
var DefaultLayout = Layout{System: Axial, Top: Pointy, Winding: Clockwise}

// Validate rejects every layout other than DefaultLayout.
func (l Layout) Validate() error {
	if l.System != Axial {
		return fmt.Errorf("%w: coordinate system %s", ErrUnsupported, l.System)
	}
	if l.Top != Pointy {
		return fmt.Errorf("%w: %s top", ErrUnsupported, l.Top)
	}
	if l.Winding != Clockwise {
		return fmt.Errorf("%w: %s winding", ErrUnsupported, l.Winding)
	}
	return nil
}

// ParseLayout reads the three layout names and validates the result.
// Empty strings select the default for that field.
func ParseLayout(system, top, winding string) (Layout, error) {
	l := DefaultLayout
	var err error
	if system != "" {
		if l.System, err = ParseSystem(system); err != nil {
			return Layout{}, err
		}
	}
	if top != "" {
		if l.Top, err = ParseTop(top); err != nil {
			return Layout{}, err
		}
	}
	if winding != "" {
		if l.Winding, err = ParseWinding(winding); err != nil {
			return Layout{}, err
		}
	}
	if err := l.Validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// ParseSystem maps a name to a System. Unknown names are reported as unsupported.
func ParseSystem(s string) (System, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "axial":
		return Axial, nil
	case "offset":
		return Offset, nil
	case "cube":
		return Cube, nil
	case "doubled":
		return Doubled, nil
	}
	return 0, fmt.Errorf("%w: unknown coordinate system %q", ErrUnsupported, s)
}

// ParseTop maps a name to a Top.
func ParseTop(s string) (Top, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pointy":
		return Pointy, nil
	case "flat":
		return Flat, nil
	}
	return 0, fmt.Errorf("%w: unknown top %q", ErrUnsupported, s)
}

// ParseWinding maps a name to a Winding.
func ParseWinding(s string) (Winding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "clockwise":
		return Clockwise, nil
	case "counterclockwise":
		return Counterclockwise, nil
	}
	return 0, fmt.Errorf("%w: unknown winding %q", ErrUnsupported, s)
}

func (s System) String() string {
	switch s {
	case Axial:
		return "axial"
	case Offset:
		return "offset"
	case Cube:
		return "cube"
	case Doubled:
		return "doubled"
	default:
		return "unknown"
	}
}

func (t Top) String() string {
	switch t {
	case Pointy:
		return "pointy"
	case Flat:
		return "flat"
	default:
		return "unknown"
	}
}

func (w Winding) String() string {
	switch w {
	case Clockwise:
		return "clockwise"
	case Counterclockwise:
		return "counterclockwise"
	default:
		return "unknown"
	}
}
