package season

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/okian/fieldtrace/internal/domain/geometry"
	"github.com/okian/fieldtrace/internal/domain/trace"
)

// Bundle is a Season backed entirely by a Definition.
type Bundle struct {
	def     Definition
	actions map[trace.Action]ActionDef
}

var _ Season = (*Bundle)(nil)

// FromDefinition validates def and turns it into a Season. Zero grid fields
// fall back to trace.DefaultGrid values.
func FromDefinition(def Definition) (*Bundle, error) {
	if def.Year <= 0 {
		return nil, fmt.Errorf("%w: year must be positive, got %d", ErrInvalidDefinition, def.Year)
	}
	if def.Name == "" {
		def.Name = fmt.Sprintf("season %d", def.Year)
	}
	def.Grid = withGridDefaults(def.Grid)
	if err := def.Grid.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}

	src := def.Actions
	def.Actions = make([]ActionDef, len(src))
	actions := make(map[trace.Action]ActionDef, len(src))
	for i, a := range src {
		switch {
		case a.Code == trace.NoAction:
			return nil, fmt.Errorf("%w: actions[%d] has an empty code", ErrInvalidDefinition, i)
		case strings.Contains(string(a.Code), ";"):
			return nil, fmt.Errorf("%w: action %q contains ';'", ErrInvalidDefinition, a.Code)
		}
		if _, dup := actions[a.Code]; dup {
			return nil, fmt.Errorf("%w: duplicate action %q", ErrInvalidDefinition, a.Code)
		}
		a.Points = maps.Clone(a.Points)
		def.Actions[i] = a
		actions[a.Code] = a
	}

	seen := make(map[string]struct{}, len(def.Zones))
	zones := make([]Zone, len(def.Zones))
	for i, z := range def.Zones {
		if z.Name == "" {
			return nil, fmt.Errorf("%w: zones[%d] has no name", ErrInvalidDefinition, i)
		}
		if _, dup := seen[z.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate zone %q", ErrInvalidDefinition, z.Name)
		}
		seen[z.Name] = struct{}{}
		if !z.Polygon.Valid() {
			return nil, fmt.Errorf("%w: zone %q needs at least 3 vertices", ErrInvalidDefinition, z.Name)
		}
		switch z.Alliance {
		case AllianceRed, AllianceBlue, AllianceUnknown:
		case "":
			z.Alliance = AllianceUnknown
		default:
			return nil, fmt.Errorf("%w: zone %q has alliance %q", ErrInvalidDefinition, z.Name, z.Alliance)
		}
		z.Polygon = slices.Clone(z.Polygon)
		zones[i] = z
	}
	def.Zones = zones

	return &Bundle{def: def, actions: actions}, nil
}

func withGridDefaults(g trace.Grid) trace.Grid {
	d := trace.DefaultGrid()
	if g.Size == 0 {
		g.Size = d.Size
	}
	if g.SampleRate == 0 {
		g.SampleRate = d.SampleRate
	}
	if g.FieldWidth == 0 {
		g.FieldWidth = d.FieldWidth
	}
	if g.FieldHeight == 0 {
		g.FieldHeight = d.FieldHeight
	}
	if len(g.Sections) == 0 {
		g.Sections = d.Sections
	} else {
		g.Sections = maps.Clone(g.Sections)
	}
	return g
}

func (b *Bundle) Year() int    { return b.def.Year }
func (b *Bundle) Name() string { return b.def.Name }

// Grid returns a copy of the season's grid.
func (b *Bundle) Grid() trace.Grid {
	g := b.def.Grid
	g.Sections = maps.Clone(g.Sections)
	return g
}

// Actions returns the action vocabulary in definition order.
func (b *Bundle) Actions() []ActionDef {
	out := make([]ActionDef, len(b.def.Actions))
	for i, a := range b.def.Actions {
		a.Points = maps.Clone(a.Points)
		out[i] = a
	}
	return out
}

// Zones returns the zone list in definition order.
func (b *Bundle) Zones() []Zone {
	out := make([]Zone, len(b.def.Zones))
	for i, z := range b.def.Zones {
		z.Polygon = slices.Clone(z.Polygon)
		out[i] = z
	}
	return out
}

// Definition returns a copy of the underlying data.
func (b *Bundle) Definition() Definition {
	def := b.def
	def.Grid = b.Grid()
	def.Actions = b.Actions()
	def.Zones = b.Zones()
	return def
}

// Alliance takes the majority vote of alliance zones visited during auto.
// Ties and traces that never touch an alliance zone are AllianceUnknown.
func (b *Bundle) Alliance(t *trace.Trace) Alliance {
	votes := map[Alliance]int{}
	for _, p := range t.Section(trace.SectionAuto) {
		pt := geometry.Point{X: p.X, Y: p.Y}
		for _, z := range b.def.Zones {
			if z.Alliance != AllianceUnknown && z.Polygon.Contains(pt) {
				votes[z.Alliance]++
				break
			}
		}
	}
	switch red, blue := votes[AllianceRed], votes[AllianceBlue]; {
	case red > blue:
		return AllianceRed
	case blue > red:
		return AllianceBlue
	default:
		return AllianceUnknown
	}
}

// Score sums the phase value of every recognized action. Phases come from
// the trace's own grid, so endgame takes precedence over teleop.
func (b *Bundle) Score(t *trace.Trace) Score {
	grid := t.Grid()
	s := Score{Phases: map[string]int{}}
	for _, p := range t.Points() {
		if !p.HasAction() {
			continue
		}
		def, ok := b.actions[p.Action]
		if !ok {
			s.Unrecognized++
			continue
		}
		phase := grid.SectionAt(p.Index)
		if phase == "" {
			continue
		}
		pts := def.Points[phase]
		s.Phases[phase] += pts
		s.Total += pts
	}
	return s
}

// Occupancy counts the samples inside each zone and converts them to
// seconds. Every zone appears in the result, zero when never visited.
// Overlapping zones each receive the sample.
func (b *Bundle) Occupancy(t *trace.Trace) map[string]float64 {
	rate := t.Grid().SampleRate
	counts := make(map[string]int, len(b.def.Zones))
	for _, z := range b.def.Zones {
		counts[z.Name] = 0
	}
	for _, p := range t.Points() {
		pt := geometry.Point{X: p.X, Y: p.Y}
		for _, z := range b.def.Zones {
			if z.Polygon.Contains(pt) {
				counts[z.Name]++
			}
		}
	}
	out := make(map[string]float64, len(counts))
	for name, n := range counts {
		out[name] = float64(n) / rate
	}
	return out
}
