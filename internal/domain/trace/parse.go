package trace

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// State tags the representation carried by an Envelope.
type State string

// Wire states. Decoding moves compressed -> parsed -> expanded; a live
// Trace is always expanded.
const (
	StateCompressed State = "compressed"
	StateParsed     State = "parsed"
	StateExpanded   State = "expanded"
)

// Envelope is the tagged wire form of a trace.
type Envelope struct {
	State State           `json:"state" jsonschema:"enum=compressed,enum=parsed,enum=expanded"`
	Trace json.RawMessage `json:"trace" jsonschema:"description=Encoded string for the compressed state or point tuples otherwise"`
}

// stateDecoder turns an envelope payload into raw points for one state.
type stateDecoder func(payload json.RawMessage, grid Grid) ([]TimePoint, error)

var stateDecoders = map[State]stateDecoder{
	StateCompressed: decodeCompressed,
	StateParsed:     decodeParsed,
	StateExpanded:   decodeExpanded,
}

// Parse builds a Trace from untrusted JSON: either a bare array of point
// tuples (sparse, coordinates clamped into [0, 1]) or an Envelope. Every
// failure is returned as *ParseError; Parse never panics on bad input.
func Parse(data []byte, grid Grid) (*Trace, error) {
	if err := grid.Validate(); err != nil {
		return nil, &ParseError{Err: err}
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, &ParseError{Err: &ValidationError{Field: "input", Expected: "JSON array or envelope", Got: "empty"}}
	}

	switch trimmed[0] {
	case '[':
		points, err := decodeBare(trimmed, grid)
		if err != nil {
			return nil, &ParseError{Err: err}
		}
		t, err := FromSparse(grid, points)
		if err != nil {
			return nil, &ParseError{Err: err}
		}
		return t, nil
	case '{':
		var env Envelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, &ParseError{Err: err}
		}
		return ParseEnvelope(env, grid)
	default:
		if !json.Valid(trimmed) {
			var v any
			return nil, &ParseError{Err: json.Unmarshal(trimmed, &v)}
		}
		return nil, &ParseError{Err: &ValidationError{Field: "input", Expected: "JSON array or envelope", Got: jsonKind(trimmed)}}
	}
}

// ParseEnvelope builds a Trace from an already decoded envelope.
func ParseEnvelope(env Envelope, grid Grid) (*Trace, error) {
	if err := grid.Validate(); err != nil {
		return nil, &ParseError{State: env.State, Err: err}
	}
	decode, ok := stateDecoders[env.State]
	if !ok {
		return nil, &ParseError{State: env.State, Err: &ValidationError{Field: "state", Expected: strings.Join(knownStates(), " | "), Got: string(env.State)}}
	}
	points, err := decode(env.Trace, grid)
	if err != nil {
		return nil, &ParseError{State: env.State, Err: err}
	}
	t, err := New(grid, points)
	if err != nil {
		return nil, &ParseError{State: env.State, Err: err}
	}
	return t, nil
}

func decodeCompressed(payload json.RawMessage, grid Grid) ([]TimePoint, error) {
	if kind := jsonKind(payload); kind != "string" {
		return nil, &ValidationError{Field: "trace", Expected: "string for state compressed", Got: kind}
	}
	var encoded string
	if err := json.Unmarshal(payload, &encoded); err != nil {
		return nil, err
	}
	sparse, err := DecodeTrace(encoded, grid)
	if err != nil {
		return nil, err
	}
	return Expand(sparse, grid), nil
}

func decodeParsed(payload json.RawMessage, grid Grid) ([]TimePoint, error) {
	points, err := decodePointArray(payload, StateParsed)
	if err != nil {
		return nil, err
	}
	for _, p := range points {
		if err := validatePoint(p, grid.Size); err != nil {
			return nil, err
		}
	}
	return Expand(points, grid), nil
}

func decodeExpanded(payload json.RawMessage, grid Grid) ([]TimePoint, error) {
	points, err := decodePointArray(payload, StateExpanded)
	if err != nil {
		return nil, err
	}
	if !isDense(points, grid.Size) {
		return nil, &ValidationError{Field: "trace", Expected: fmt.Sprintf("%d contiguous points for state expanded", grid.Size), Got: fmt.Sprintf("%d points", len(points))}
	}
	return points, nil
}

// decodeBare handles an untagged array: coordinates are clamped, every
// other field is validated.
func decodeBare(payload []byte, grid Grid) ([]TimePoint, error) {
	var points []TimePoint
	if err := json.Unmarshal(payload, &points); err != nil {
		return nil, unwrapJSON(err)
	}
	for i := range points {
		points[i].X = clampUnit(points[i].X)
		points[i].Y = clampUnit(points[i].Y)
		if err := validatePoint(points[i], grid.Size); err != nil {
			return nil, err
		}
	}
	return points, nil
}

func decodePointArray(payload json.RawMessage, state State) ([]TimePoint, error) {
	if kind := jsonKind(payload); kind != "array" {
		return nil, &ValidationError{Field: "trace", Expected: "array for state " + string(state), Got: kind}
	}
	var points []TimePoint
	if err := json.Unmarshal(payload, &points); err != nil {
		return nil, unwrapJSON(err)
	}
	return points, nil
}

// unwrapJSON surfaces a *ValidationError raised inside TimePoint.UnmarshalJSON.
func unwrapJSON(err error) error {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve
	}
	return err
}

func jsonKind(raw []byte) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "missing"
	}
	switch trimmed[0] {
	case '"':
		return "string"
	case '[':
		return "array"
	case '{':
		return "object"
	case 'n':
		return "null"
	case 't', 'f':
		return "boolean"
	default:
		return "number"
	}
}

func knownStates() []string {
	out := make([]string, 0, len(stateDecoders))
	for s := range stateDecoders {
		out = append(out, string(s))
	}
	sort.Strings(out)
	return out
}

// Envelope renders the trace in its wire form. Compressed output encodes
// the full dense trace; otherwise the trace is compacted and quantized and
// sent as parsed tuples.
func (t *Trace) Envelope(compressed bool) (Envelope, error) {
	if compressed {
		raw, err := json.Marshal(EncodeTrace(Quantize(t.points)))
		if err != nil {
			return Envelope{}, fmt.Errorf("marshal compressed trace: %w", err)
		}
		return Envelope{State: StateCompressed, Trace: raw}, nil
	}
	raw, err := json.Marshal(Quantize(Compact(t.points)))
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal parsed trace: %w", err)
	}
	return Envelope{State: StateParsed, Trace: raw}, nil
}

// Serialize returns the JSON encoding of Envelope(compressed).
func (t *Trace) Serialize(compressed bool) ([]byte, error) {
	env, err := t.Envelope(compressed)
	if err != nil {
		return nil, err
	}
	return json.Marshal(env)
}
