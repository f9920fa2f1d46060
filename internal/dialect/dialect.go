package dialect

import (
	"errors"
	"fmt"
	"strings"
)

// Dialect is the base language variant the formatter's parser runs in.
type Dialect uint8

const (
	Flint2021 Dialect = iota
	Flint2023
	Flint2025

	dialectCount
)

// DefaultDialect is assumed when a manifest declares no dialect, and when no
// stanza claims a file at all.
const DefaultDialect = Flint2023

// ErrUnknownDialect is returned when a manifest declares a dialect name the
// formatter has no vocabulary for. Unlike unknown feature flags, this is a
// hard failure: silently substituting a default could misparse the file.
var ErrUnknownDialect = errors.New("unknown dialect")

func (d Dialect) String() string {
	switch d {
	case Flint2021:
		return "flint-2021"
	case Flint2023:
		return "flint-2023"
	case Flint2025:
		return "flint-2025"
	default:
		return "unknown"
	}
}

func (d Dialect) GoString() string {
	return fmt.Sprintf("Dialect(%s)", d.String())
}

var dialectNames = map[string]Dialect{
	"flint-2021": Flint2021,
	"flint-2023": Flint2023,
	"flint-2025": Flint2025,
}

// ParseDialect translates a manifest dialect name into the parser's
// vocabulary. An empty name means the manifest left the dialect unset and
// yields DefaultDialect.
func ParseDialect(name string) (Dialect, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultDialect, nil
	}
	d, ok := dialectNames[name]
	if !ok {
		return DefaultDialect, fmt.Errorf("%w: %q", ErrUnknownDialect, name)
	}
	return d, nil
}

// Defaults returns the features a dialect enables on its own, in a fixed
// order, before any explicit manifest flags are applied.
func (d Dialect) Defaults() []Feature {
	switch d {
	case Flint2023:
		return []Feature{PatternGuards}
	case Flint2025:
		return []Feature{PatternGuards, Pipes, NamedArgs, TrailingCommas}
	default:
		return nil
	}
}
