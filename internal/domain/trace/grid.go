// Package trace implements the fixed-length robot trace: the time grid every
// trace conforms to, the compact textual codec, sparse/dense conversion, and
// the kinematic analytics computed over a dense trace.
//
// Every value in this package is immutable once constructed and safe to use
// from multiple goroutines without coordination.
package trace

import (
	"fmt"
	"math"
)

// Default grid configuration constants.
const (
	DefaultGridSize    = 640
	DefaultSampleRate  = 4.0
	DefaultFieldWidth  = 54.0
	DefaultFieldHeight = 27.0
)

// Section names understood by Trace.Section.
const (
	SectionAuto    = "auto"
	SectionTeleop  = "teleop"
	SectionEndgame = "endgame"
)

// Span is a half-open interval of match time in seconds.
type Span struct {
	Start float64 `koanf:"start" yaml:"start" json:"start"`
	End   float64 `koanf:"end" yaml:"end" json:"end"`
}

// Grid describes the discrete time slots a dense trace must populate and
// the physical field the normalized coordinates map onto.
type Grid struct {
	Size        int             `koanf:"size" yaml:"size" json:"size"`
	SampleRate  float64         `koanf:"sample_rate" yaml:"sample_rate" json:"sample_rate"`
	FieldWidth  float64         `koanf:"field_width" yaml:"field_width" json:"field_width"`
	FieldHeight float64         `koanf:"field_height" yaml:"field_height" json:"field_height"`
	Sections    map[string]Span `koanf:"sections" yaml:"sections" json:"sections"`
}

// DefaultSections returns the standard phase boundaries: 15 s of auto,
// 120 s of teleop, with the final 15 s of teleop counted as endgame.
func DefaultSections() map[string]Span {
	return map[string]Span{
		SectionAuto:    {Start: 0, End: 15},
		SectionTeleop:  {Start: 15, End: 135},
		SectionEndgame: {Start: 120, End: 135},
	}
}

// DefaultGrid returns a 640 slot grid sampled at 4 Hz on a 54x27 field.
func DefaultGrid() Grid {
	return Grid{
		Size:        DefaultGridSize,
		SampleRate:  DefaultSampleRate,
		FieldWidth:  DefaultFieldWidth,
		FieldHeight: DefaultFieldHeight,
		Sections:    DefaultSections(),
	}
}

// Validate reports whether the grid can back a trace.
func (g Grid) Validate() error {
	switch {
	case g.Size < 1:
		return &ValidationError{Field: "grid.size", Expected: ">= 1", Got: g.Size}
	case g.Size > MaxGridSize:
		return &ValidationError{Field: "grid.size", Expected: fmt.Sprintf("<= %d", MaxGridSize), Got: g.Size}
	case g.SampleRate <= 0 || math.IsNaN(g.SampleRate) || math.IsInf(g.SampleRate, 0):
		return &ValidationError{Field: "grid.sample_rate", Expected: "> 0", Got: g.SampleRate}
	case g.FieldWidth <= 0:
		return &ValidationError{Field: "grid.field_width", Expected: "> 0", Got: g.FieldWidth}
	case g.FieldHeight <= 0:
		return &ValidationError{Field: "grid.field_height", Expected: "> 0", Got: g.FieldHeight}
	}
	for name, s := range g.Sections {
		if s.End < s.Start || s.Start < 0 {
			return &ValidationError{Field: "grid.sections." + name, Expected: "0 <= start <= end", Got: s}
		}
	}
	return nil
}

// Duration returns the time covered by the grid in seconds.
func (g Grid) Duration() float64 {
	return float64(g.Size) / g.SampleRate
}

// SectionBounds converts a named section into sample indices [from, to),
// clamped into the grid. ok is false for unknown section names.
func (g Grid) SectionBounds(name string) (from, to int, ok bool) {
	s, ok := g.Sections[name]
	if !ok {
		return 0, 0, false
	}
	from = g.clampIndex(int(math.Round(s.Start * g.SampleRate)))
	to = g.clampIndex(int(math.Round(s.End * g.SampleRate)))
	if to < from {
		to = from
	}
	return from, to, true
}

// SectionAt returns the phase a sample index falls in. Endgame wins over
// teleop where they overlap; "" means the index is outside every phase.
func (g Grid) SectionAt(index int) string {
	for _, name := range []string{SectionEndgame, SectionAuto, SectionTeleop} {
		if from, to, ok := g.SectionBounds(name); ok && index >= from && index < to {
			return name
		}
	}
	return ""
}

func (g Grid) clampIndex(i int) int {
	if i < 0 {
		return 0
	}
	if i > g.Size {
		return g.Size
	}
	return i
}
