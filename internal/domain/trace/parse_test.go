package trace_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/fieldtrace/internal/domain/trace"
)

func TestParse(t *testing.T) {
	grid := smallGrid()

	Convey("Given a bare tuple array", t, func() {
		input := []byte(`[[0, -0.5, 0.2, 0], [3, 1.7, 0.4, "spk"], [6, 0.5, 0.5, "0"]]`)

		Convey("When it is parsed", func() {
			tr, err := trace.Parse(input, grid)
			So(err, ShouldBeNil)

			Convey("Then coordinates are clamped and the trace is dense", func() {
				So(tr.Len(), ShouldEqual, grid.Size)
				So(tr.At(0).X, ShouldEqual, 0)
				So(tr.At(3).X, ShouldEqual, 1)
				So(tr.At(3).Action, ShouldEqual, trace.Action("spk"))
				So(tr.At(6).Action, ShouldEqual, trace.NoAction)
				So(tr.At(2).Y, ShouldEqual, 0.2)
			})
		})
	})

	Convey("Given envelopes in every state", t, func() {
		sparse := []trace.TimePoint{
			{Index: 0, X: 0.1, Y: 0.1},
			{Index: 5, X: 0.2, Y: 0.2, Action: "act"},
		}
		source, err := trace.FromSparse(grid, sparse)
		So(err, ShouldBeNil)

		Convey("When a compressed envelope is parsed", func() {
			raw, _ := json.Marshal(trace.EncodeTrace(sparse))
			env, _ := json.Marshal(trace.Envelope{State: trace.StateCompressed, Trace: raw})
			tr, err := trace.Parse(env, grid)

			Convey("Then it matches the source within quantization tolerance", func() {
				So(err, ShouldBeNil)
				opt := cmpopts.EquateApprox(0, trace.QuantizationTolerance+1e-9)
				So(cmp.Diff(source.Points(), tr.Points(), opt), ShouldBeEmpty)
			})
		})

		Convey("When a parsed envelope is parsed", func() {
			raw, _ := json.Marshal(sparse)
			env, _ := json.Marshal(trace.Envelope{State: trace.StateParsed, Trace: raw})
			tr, err := trace.Parse(env, grid)

			Convey("Then it is expanded exactly", func() {
				So(err, ShouldBeNil)
				So(cmp.Diff(source.Points(), tr.Points()), ShouldBeEmpty)
			})
		})

		Convey("When an expanded envelope is parsed", func() {
			raw, _ := json.Marshal(source.Points())
			env, _ := json.Marshal(trace.Envelope{State: trace.StateExpanded, Trace: raw})
			tr, err := trace.Parse(env, grid)

			Convey("Then it is taken as is", func() {
				So(err, ShouldBeNil)
				So(cmp.Diff(source.Points(), tr.Points()), ShouldBeEmpty)
			})
		})

		Convey("When an expanded envelope has the wrong length", func() {
			raw, _ := json.Marshal(sparse)
			_, err := trace.Parse(mustEnvelope(trace.StateExpanded, raw), grid)

			Convey("Then a validation error is returned", func() {
				So(errors.Is(err, trace.ErrParse), ShouldBeTrue)
				So(errors.Is(err, trace.ErrValidation), ShouldBeTrue)
			})
		})
	})

	Convey("Given payloads that do not match their state", t, func() {
		Convey("Then a compressed envelope carrying an array is rejected", func() {
			_, err := trace.Parse([]byte(`{"state":"compressed","trace":[[0,0,0,0]]}`), grid)
			So(errors.Is(err, trace.ErrValidation), ShouldBeTrue)
		})

		Convey("Then a parsed envelope carrying a string is rejected", func() {
			_, err := trace.Parse([]byte(`{"state":"parsed","trace":"AAAAAA0"}`), grid)
			So(errors.Is(err, trace.ErrValidation), ShouldBeTrue)
		})

		Convey("Then an unknown state is rejected", func() {
			_, err := trace.Parse([]byte(`{"state":"zipped","trace":""}`), grid)
			var pe *trace.ParseError
			So(errors.As(err, &pe), ShouldBeTrue)
			So(pe.State, ShouldEqual, trace.State("zipped"))
			So(pe.Kind(), ShouldEqual, "validation")
		})
	})

	Convey("Given a compressed trace with a truncated field", t, func() {
		_, err := trace.Parse([]byte(`{"state":"compressed","trace":"A"}`), grid)

		Convey("Then the failure is a decode error inside a parse error", func() {
			So(err, ShouldNotBeNil)
			So(errors.Is(err, trace.ErrParse), ShouldBeTrue)
			So(errors.Is(err, trace.ErrDecode), ShouldBeTrue)
			var pe *trace.ParseError
			So(errors.As(err, &pe), ShouldBeTrue)
			So(pe.Kind(), ShouldEqual, "decode")
		})
	})

	Convey("Given malformed input", t, func() {
		cases := map[string]string{
			"empty":          ``,
			"not json":       `{{`,
			"scalar":         `42`,
			"short tuple":    `[[0, 0.1, 0.1]]`,
			"fractional idx": `[[0.5, 0.1, 0.1, 0]]`,
			"bad action":     `[[0, 0.1, 0.1, 7]]`,
			"index too big":  `[[99, 0.1, 0.1, 0]]`,
			"separator":      `[[0, 0.1, 0.1, "a;b"]]`,
			"parsed range":   `{"state":"parsed","trace":[[0, 1.5, 0.1, 0]]}`,
		}
		for name, input := range cases {
			Convey("Then "+name+" fails with a parse error", func() {
				tr, err := trace.Parse([]byte(input), grid)
				So(tr, ShouldBeNil)
				So(errors.Is(err, trace.ErrParse), ShouldBeTrue)
			})
		}
	})
}

func TestSerialize(t *testing.T) {
	grid := smallGrid()

	Convey("Given a trace with actions", t, func() {
		source, err := trace.FromSparse(grid, []trace.TimePoint{
			{Index: 0, X: 0.123, Y: 0.456},
			{Index: 4, X: 0.5, Y: 0.5, Action: "amp"},
			{Index: 7, X: 0.75, Y: 0.25},
		})
		So(err, ShouldBeNil)
		opt := cmpopts.EquateApprox(0, trace.QuantizationTolerance+1e-9)

		Convey("When it is serialized compressed", func() {
			data, err := source.Serialize(true)
			So(err, ShouldBeNil)

			var env trace.Envelope
			So(json.Unmarshal(data, &env), ShouldBeNil)
			So(env.State, ShouldEqual, trace.StateCompressed)

			Convey("Then parsing it reproduces the trace", func() {
				back, err := trace.Parse(data, grid)
				So(err, ShouldBeNil)
				So(cmp.Diff(source.Points(), back.Points(), opt), ShouldBeEmpty)
			})
		})

		Convey("When it is serialized as parsed tuples", func() {
			data, err := source.Serialize(false)
			So(err, ShouldBeNil)

			var env trace.Envelope
			So(json.Unmarshal(data, &env), ShouldBeNil)
			So(env.State, ShouldEqual, trace.StateParsed)

			var tuples [][]any
			So(json.Unmarshal(env.Trace, &tuples), ShouldBeNil)
			So(tuples, ShouldHaveLength, 3)
			So(tuples[1][3], ShouldEqual, "amp")
			So(tuples[0][3], ShouldEqual, 0.0)

			Convey("Then parsing it reproduces the trace", func() {
				back, err := trace.Parse(data, grid)
				So(err, ShouldBeNil)
				So(cmp.Diff(source.Points(), back.Points(), opt), ShouldBeEmpty)
			})
		})
	})
}

func mustEnvelope(state trace.State, payload json.RawMessage) []byte {
	data, err := json.Marshal(trace.Envelope{State: state, Trace: payload})
	if err != nil {
		panic(err)
	}
	return data
}
