// Package season defines per-season match rules (action vocabulary, point
// values, field zones, phase boundaries) and a registry that selects the
// active rules by year.
package season

import (
	"github.com/okian/fieldtrace/internal/domain/geometry"
	"github.com/okian/fieldtrace/internal/domain/trace"
)

// Alliance identifies a side of the field.
type Alliance string

// Alliance values. AllianceUnknown is returned when a trace cannot be
// attributed and is also used for zones that belong to neither side.
const (
	AllianceRed     Alliance = "red"
	AllianceBlue    Alliance = "blue"
	AllianceUnknown Alliance = "unknown"
)

// ActionDef describes one action code and what it is worth in each phase.
// Phases missing from Points score zero.
type ActionDef struct {
	Code   trace.Action   `koanf:"code" yaml:"code" json:"code"`
	Name   string         `koanf:"name" yaml:"name" json:"name"`
	Points map[string]int `koanf:"points" yaml:"points" json:"points,omitempty"`
}

// Zone is a named field region.
type Zone struct {
	Name     string           `koanf:"name" yaml:"name" json:"name"`
	Alliance Alliance         `koanf:"alliance" yaml:"alliance" json:"alliance"`
	Polygon  geometry.Polygon `koanf:"polygon" yaml:"polygon" json:"polygon"`
}

// Score is the point tally derived from the actions in a trace.
type Score struct {
	Phases map[string]int `json:"phases"`
	Total  int            `json:"total"`
	// Unrecognized counts actions missing from the season vocabulary.
	Unrecognized int `json:"unrecognized"`
}

// Season is the capability every season implementation provides.
type Season interface {
	Year() int
	Name() string
	Grid() trace.Grid
	Actions() []ActionDef
	Zones() []Zone
	// Alliance attributes the trace to the side it started on.
	Alliance(t *trace.Trace) Alliance
	Score(t *trace.Trace) Score
	// Occupancy returns seconds spent in each zone, keyed by zone name.
	Occupancy(t *trace.Trace) map[string]float64
}

// Definition is the plain-data form of a season, loadable from YAML.
type Definition struct {
	Year    int         `koanf:"year" yaml:"year" json:"year"`
	Name    string      `koanf:"name" yaml:"name" json:"name"`
	Grid    trace.Grid  `koanf:"grid" yaml:"grid" json:"grid"`
	Actions []ActionDef `koanf:"actions" yaml:"actions" json:"actions"`
	Zones   []Zone      `koanf:"zones" yaml:"zones" json:"zones"`
}
