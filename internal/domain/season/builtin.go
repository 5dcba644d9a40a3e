package season

import (
	"github.com/okian/fieldtrace/internal/domain/geometry"
	"github.com/okian/fieldtrace/internal/domain/trace"
)

// Action codes used by the 2024 season.
const (
	ActionAmp     trace.Action = "amp"
	ActionSpeaker trace.Action = "spk"
	ActionTrap    trace.Action = "trp"
	ActionClimb   trace.Action = "clb"
	ActionPickup  trace.Action = "pck"
	ActionLeave   trace.Action = "lve"
)

// Definition2024 returns the 2024 field: wings at each end, a neutral
// middle, and a stage inside each wing. Coordinates are normalized with x
// running from the blue wall (0) to the red wall (1).
func Definition2024() Definition {
	return Definition{
		Year: 2024,
		Name: "Crescendo",
		Grid: trace.DefaultGrid(),
		Actions: []ActionDef{
			{Code: ActionAmp, Name: "Amp note", Points: map[string]int{trace.SectionAuto: 2, trace.SectionTeleop: 1, trace.SectionEndgame: 1}},
			{Code: ActionSpeaker, Name: "Speaker note", Points: map[string]int{trace.SectionAuto: 5, trace.SectionTeleop: 2, trace.SectionEndgame: 2}},
			{Code: ActionTrap, Name: "Trap note", Points: map[string]int{trace.SectionTeleop: 5, trace.SectionEndgame: 5}},
			{Code: ActionClimb, Name: "Onstage", Points: map[string]int{trace.SectionEndgame: 3}},
			{Code: ActionPickup, Name: "Note pickup"},
			{Code: ActionLeave, Name: "Leave", Points: map[string]int{trace.SectionAuto: 2}},
		},
		Zones: []Zone{
			{Name: "blue_wing", Alliance: AllianceBlue, Polygon: geometry.Rect(0, 0, 0.35, 1)},
			{Name: "neutral", Alliance: AllianceUnknown, Polygon: geometry.Rect(0.35, 0, 0.65, 1)},
			{Name: "red_wing", Alliance: AllianceRed, Polygon: geometry.Rect(0.65, 0, 1, 1)},
			{Name: "blue_stage", Alliance: AllianceBlue, Polygon: geometry.Polygon{{X: 0.18, Y: 0.5}, {X: 0.3, Y: 0.32}, {X: 0.3, Y: 0.68}}},
			{Name: "red_stage", Alliance: AllianceRed, Polygon: geometry.Polygon{{X: 0.82, Y: 0.5}, {X: 0.7, Y: 0.32}, {X: 0.7, Y: 0.68}}},
		},
	}
}

// Builtin returns every season that ships with the package.
func Builtin() []Season {
	s, err := FromDefinition(Definition2024())
	if err != nil {
		panic("season: invalid built-in 2024 definition: " + err.Error())
	}
	return []Season{s}
}
