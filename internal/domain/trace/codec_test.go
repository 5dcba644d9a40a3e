package trace_test

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okian/fieldtrace/internal/domain/trace"
)

func TestEncodeNumber(t *testing.T) {
	cases := []struct {
		name   string
		n      int
		digits int
		want   string
	}{
		{"zero", 0, 2, "AA"},
		{"one full digit", 52, 2, "BA"},
		{"last letter", 51, 2, "Az"},
		{"three digit max", 999, 3, "TL"},
		{"negative saturates low", -5, 3, "AA"},
		{"single width", 7, 1, "H"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, trace.EncodeNumber(tc.n, tc.digits))
		})
	}
}

func TestEncodeNumberSaturates(t *testing.T) {
	assert.Equal(t, trace.EncodeNumber(999, 2), trace.EncodeNumber(1000, 2))
	assert.Equal(t, trace.EncodeNumber(999, 3), trace.EncodeNumber(1000, 3))
	assert.Equal(t, trace.EncodeNumber(99, 2), trace.EncodeNumber(math.MaxInt32, 2))

	for _, n := range []int{-1 << 20, -1, 0, 1, 998, 999, 1000, 1 << 30} {
		assert.Len(t, trace.EncodeNumber(n, trace.FieldDigits), trace.NumberWidth(trace.FieldDigits), "n=%d", n)
	}
}

func TestDecodeNumber(t *testing.T) {
	for n := 0; n <= 999; n += 37 {
		got, err := trace.DecodeNumber(trace.EncodeNumber(n, 3), 3)
		require.NoError(t, err)
		assert.Equal(t, n, got)
	}

	_, err := trace.DecodeNumber("A", 3)
	assert.ErrorIs(t, err, trace.ErrDecode)

	_, err = trace.DecodeNumber("A1", 3)
	assert.ErrorIs(t, err, trace.ErrDecode)

	_, err = trace.DecodeNumber("zz", 3)
	var de *trace.DecodeError
	require.True(t, errors.As(err, &de))
	assert.Contains(t, de.Reason, "exceeds")
}

func TestQuantizeCoord(t *testing.T) {
	assert.Equal(t, 0, trace.QuantizeCoord(0))
	assert.Equal(t, trace.MaxCoord, trace.QuantizeCoord(1))
	assert.Equal(t, trace.MaxCoord, trace.QuantizeCoord(3.5))
	assert.Equal(t, 0, trace.QuantizeCoord(-0.2))
	assert.Equal(t, 0, trace.QuantizeCoord(math.NaN()))

	assert.Equal(t, 0.0, trace.DequantizeCoord(0))
	assert.Equal(t, 1.0, trace.DequantizeCoord(trace.MaxCoord))

	for v := 0.0; v <= 1.0; v += 0.0137 {
		back := trace.DequantizeCoord(trace.QuantizeCoord(v))
		assert.InDelta(t, v, back, trace.QuantizationTolerance+1e-12)
	}
}

func TestQuantizationToleranceIsHalfStep(t *testing.T) {
	step := 1.0 / trace.MaxCoord
	assert.InDelta(t, 0.0005, trace.QuantizationTolerance, 1e-6)
	assert.InDelta(t, step/2, trace.QuantizationTolerance, 1e-15)

	assert.Equal(t, 0, trace.QuantizeCoord(trace.QuantizationTolerance*0.99))
	assert.Equal(t, 1, trace.QuantizeCoord(trace.QuantizationTolerance*1.01))

	worst := trace.QuantizationTolerance * 0.99
	back := trace.DequantizeCoord(trace.QuantizeCoord(worst))
	assert.LessOrEqual(t, math.Abs(worst-back), trace.QuantizationTolerance)
}

func TestQuantizeIsIdempotent(t *testing.T) {
	points := []trace.TimePoint{{Index: 0, X: 0.12345, Y: 0.98765}, {Index: 1, X: 1, Y: 0}}
	once := trace.Quantize(points)
	twice := trace.Quantize(once)
	assert.Equal(t, once, twice)
	assert.Equal(t, 0.12345, points[0].X, "input must not be modified")
}

func TestEncodePointRoundTrip(t *testing.T) {
	grid := trace.DefaultGrid()
	p := trace.TimePoint{Index: 123, X: 0.25, Y: 0.75, Action: "spk"}

	encoded := trace.EncodePoint(p)
	assert.True(t, strings.HasSuffix(encoded, "spk"))
	assert.Len(t, encoded, 3*trace.NumberWidth(trace.FieldDigits)+3)

	got, err := trace.DecodePoint(encoded, grid)
	require.NoError(t, err)
	assert.Equal(t, 123, got.Index)
	assert.InDelta(t, 0.25, got.X, trace.QuantizationTolerance)
	assert.InDelta(t, 0.75, got.Y, trace.QuantizationTolerance)
	assert.Equal(t, trace.Action("spk"), got.Action)

	noAction := trace.EncodePoint(trace.TimePoint{Index: 1, X: 0, Y: 1})
	assert.Equal(t, "ABAATL0", noAction)
	got, err = trace.DecodePoint(noAction, grid)
	require.NoError(t, err)
	assert.Equal(t, trace.NoAction, got.Action)
}

func TestDecodePointErrors(t *testing.T) {
	grid := trace.Grid{Size: 10, SampleRate: 4, FieldWidth: 54, FieldHeight: 27}

	cases := map[string]string{
		"too short":        "AAAA",
		"numeric only":     "AAAAAA",
		"bad alphabet":     "A1AAAA0",
		"index past grid":  "AKAAAA0",
		"coordinate range": "AAzzAA0",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := trace.DecodePoint(input, grid)
			require.Error(t, err)
			assert.ErrorIs(t, err, trace.ErrDecode)
		})
	}
}

func TestDecodeTrace(t *testing.T) {
	grid := trace.DefaultGrid()
	points := []trace.TimePoint{
		{Index: 0, X: 0.1, Y: 0.1},
		{Index: 5, X: 0.2, Y: 0.2, Action: "act"},
		{Index: 639, X: 1, Y: 1, Action: "clb"},
	}
	encoded := trace.EncodeTrace(points)
	assert.Equal(t, 2, strings.Count(encoded, ";"))

	decoded, err := trace.DecodeTrace(encoded, grid)
	require.NoError(t, err)
	require.Len(t, decoded, 3)
	for i := range points {
		assert.Equal(t, points[i].Index, decoded[i].Index)
		assert.Equal(t, points[i].Action, decoded[i].Action)
		assert.InDelta(t, points[i].X, decoded[i].X, trace.QuantizationTolerance)
	}

	empty, err := trace.DecodeTrace("", grid)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = trace.DecodeTrace(encoded+";A", grid)
	assert.ErrorIs(t, err, trace.ErrDecode)
}
