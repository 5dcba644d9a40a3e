package trace

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Action is a season-defined short code marking a discrete event.
type Action string

// NoAction is the sentinel carried by samples without an event.
const NoAction Action = ""

// noActionToken is how NoAction appears in the encoded micro-format and as
// the JSON number 0 in tuple form.
const noActionToken = "0"

// TimePoint is one sample on the grid. X and Y are normalized to [0, 1].
type TimePoint struct {
	Index  int
	X      float64
	Y      float64
	Action Action
}

// HasAction reports whether the point carries an event.
func (p TimePoint) HasAction() bool { return p.Action != NoAction }

// SamePosition reports whether both points sit at the same coordinates.
func (p TimePoint) SamePosition(o TimePoint) bool {
	return p.X == o.X && p.Y == o.Y
}

// MarshalJSON encodes the point as the wire tuple [index, x, y, action|0].
func (p TimePoint) MarshalJSON() ([]byte, error) {
	var action any = 0
	if p.HasAction() {
		action = string(p.Action)
	}
	return json.Marshal([4]any{p.Index, p.X, p.Y, action})
}

// UnmarshalJSON decodes the wire tuple. Shape errors are *ValidationError;
// range checks are left to the caller so bare arrays can be clamped first.
func (p *TimePoint) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return &ValidationError{Field: "point", Expected: "array [index, x, y, action]", Got: string(data)}
	}
	if len(raw) != 4 {
		return &ValidationError{Field: "point", Expected: "4 elements", Got: len(raw)}
	}

	var idx float64
	if err := json.Unmarshal(raw[0], &idx); err != nil {
		return &ValidationError{Field: "point.index", Expected: "number", Got: string(raw[0])}
	}
	if idx != math.Trunc(idx) || math.Abs(idx) > math.MaxInt32 {
		return &ValidationError{Field: "point.index", Expected: "integer", Got: idx}
	}
	var x, y float64
	if err := json.Unmarshal(raw[1], &x); err != nil {
		return &ValidationError{Field: "point.x", Expected: "number", Got: string(raw[1])}
	}
	if err := json.Unmarshal(raw[2], &y); err != nil {
		return &ValidationError{Field: "point.y", Expected: "number", Got: string(raw[2])}
	}
	action, err := decodeActionJSON(raw[3])
	if err != nil {
		return err
	}

	*p = TimePoint{Index: int(idx), X: x, Y: y, Action: action}
	return nil
}

func decodeActionJSON(raw json.RawMessage) (Action, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return NoAction, &ValidationError{Field: "point.action", Expected: "string or 0", Got: string(raw)}
		}
		if s == noActionToken {
			return NoAction, nil
		}
		return Action(s), nil
	}
	var n float64
	if err := json.Unmarshal(trimmed, &n); err != nil || n != 0 {
		return NoAction, &ValidationError{Field: "point.action", Expected: "string or 0", Got: string(raw)}
	}
	return NoAction, nil
}

// validatePoint checks the range contract of a single sample.
func validatePoint(p TimePoint, size int) error {
	switch {
	case p.Index < 0 || p.Index >= size:
		return &ValidationError{Field: fmt.Sprintf("point[%d].index", p.Index), Expected: fmt.Sprintf("0 <= index < %d", size), Got: p.Index}
	case !inUnit(p.X):
		return &ValidationError{Field: fmt.Sprintf("point[%d].x", p.Index), Expected: "0 <= x <= 1", Got: p.X}
	case !inUnit(p.Y):
		return &ValidationError{Field: fmt.Sprintf("point[%d].y", p.Index), Expected: "0 <= y <= 1", Got: p.Y}
	case strings.Contains(string(p.Action), pointSeparator):
		return &ValidationError{Field: fmt.Sprintf("point[%d].action", p.Index), Expected: "no '" + pointSeparator + "'", Got: string(p.Action)}
	}
	return nil
}

func inUnit(v float64) bool { return v >= 0 && v <= 1 }

// clampUnit saturates v into [0, 1]; NaN becomes 0.
func clampUnit(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
