package trace

import (
	"math"
	"strconv"
	"strings"
)

// Codec constants for the encoded micro-format.
const (
	alphabet       = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	base           = len(alphabet)
	pointSeparator = ";"

	// FieldDigits is the decimal precision of every numeric point field.
	FieldDigits = 3
	// MaxCoord is the integer a coordinate of 1.0 quantizes to.
	MaxCoord = 999
	// QuantizationTolerance bounds |x - Dequantize(Quantize(x))|. The 999
	// step scale keeps 1.0 exact inside a three digit field, so the bound is
	// half a step (about 0.0005005), a hair above half a thousandth.
	QuantizationTolerance = 0.5 / MaxCoord
	// MaxGridSize is the largest grid whose every index fits the time field.
	MaxGridSize = MaxCoord + 1
)

var fieldWidth = NumberWidth(FieldDigits)

// NumberWidth returns the fixed number of alphabet characters used to encode
// values with the given decimal precision.
func NumberWidth(digits int) int {
	limit := maxForDigits(digits)
	width := 1
	for capacity := base; capacity <= limit; capacity *= base {
		width++
	}
	return width
}

func maxForDigits(digits int) int {
	if digits < 1 {
		return 0
	}
	if digits > 9 {
		digits = 9
	}
	return int(math.Pow10(digits)) - 1
}

// EncodeNumber encodes n in base 52 with a fixed width. n is clamped into
// [0, 10^digits-1] first, so out-of-range input saturates instead of failing.
func EncodeNumber(n, digits int) string {
	limit := maxForDigits(digits)
	if n < 0 {
		n = 0
	}
	if n > limit {
		n = limit
	}
	width := NumberWidth(digits)
	out := make([]byte, width)
	for i := width - 1; i >= 0; i-- {
		out[i] = alphabet[n%base]
		n /= base
	}
	return string(out)
}

// DecodeNumber is the inverse of EncodeNumber.
func DecodeNumber(s string, digits int) (int, error) {
	if want := NumberWidth(digits); len(s) != want {
		return 0, &DecodeError{Field: "number", Input: s, Reason: "expected width " + strconv.Itoa(want)}
	}
	n := 0
	for i := 0; i < len(s); i++ {
		d := strings.IndexByte(alphabet, s[i])
		if d < 0 {
			return 0, &DecodeError{Field: "number", Input: s, Reason: "character outside A-Za-z"}
		}
		n = n*base + d
	}
	if n > maxForDigits(digits) {
		return 0, &DecodeError{Field: "number", Input: s, Reason: "value exceeds " + strconv.Itoa(maxForDigits(digits))}
	}
	return n, nil
}

// QuantizeCoord maps a normalized coordinate onto the integer domain
// [0, MaxCoord]. 0 and 1 map to the literal bounds.
func QuantizeCoord(v float64) int {
	return int(math.Round(clampUnit(v) * MaxCoord))
}

// DequantizeCoord maps a quantized coordinate back into [0, 1].
func DequantizeCoord(q int) float64 {
	switch {
	case q <= 0:
		return 0
	case q >= MaxCoord:
		return 1
	}
	return float64(q) / MaxCoord
}

// Quantize snaps every coordinate onto the encodable grid. Already
// quantized points are returned unchanged.
func Quantize(points []TimePoint) []TimePoint {
	out := make([]TimePoint, len(points))
	for i, p := range points {
		p.X = DequantizeCoord(QuantizeCoord(p.X))
		p.Y = DequantizeCoord(QuantizeCoord(p.Y))
		out[i] = p
	}
	return out
}

// EncodePoint renders <time><x><y><action|0>.
func EncodePoint(p TimePoint) string {
	var b strings.Builder
	b.Grow(3*fieldWidth + len(p.Action) + 1)
	b.WriteString(EncodeNumber(p.Index, FieldDigits))
	b.WriteString(EncodeNumber(QuantizeCoord(p.X), FieldDigits))
	b.WriteString(EncodeNumber(QuantizeCoord(p.Y), FieldDigits))
	if p.HasAction() {
		b.WriteString(string(p.Action))
	} else {
		b.WriteString(noActionToken)
	}
	return b.String()
}

// DecodePoint slices an encoded point by its fixed field widths. The action
// is everything after the numeric fields.
func DecodePoint(s string, grid Grid) (TimePoint, error) {
	numeric := 3 * fieldWidth
	if len(s) <= numeric {
		return TimePoint{}, &DecodeError{Field: "point", Input: s, Reason: "shorter than " + strconv.Itoa(numeric+1) + " characters"}
	}
	idx, err := DecodeNumber(s[:fieldWidth], FieldDigits)
	if err != nil {
		return TimePoint{}, withField(err, "time")
	}
	if idx >= grid.Size {
		return TimePoint{}, &DecodeError{Field: "time", Input: s[:fieldWidth], Reason: "index " + strconv.Itoa(idx) + " outside grid of " + strconv.Itoa(grid.Size)}
	}
	qx, err := DecodeNumber(s[fieldWidth:2*fieldWidth], FieldDigits)
	if err != nil {
		return TimePoint{}, withField(err, "x")
	}
	qy, err := DecodeNumber(s[2*fieldWidth:numeric], FieldDigits)
	if err != nil {
		return TimePoint{}, withField(err, "y")
	}

	action := Action(s[numeric:])
	if action == noActionToken {
		action = NoAction
	}
	return TimePoint{Index: idx, X: DequantizeCoord(qx), Y: DequantizeCoord(qy), Action: action}, nil
}

// EncodeTrace joins per-point encodings with ';'.
func EncodeTrace(points []TimePoint) string {
	parts := make([]string, len(points))
	for i, p := range points {
		parts[i] = EncodePoint(p)
	}
	return strings.Join(parts, pointSeparator)
}

// DecodeTrace splits an encoded trace and decodes every point. The empty
// string decodes to an empty sparse trace.
func DecodeTrace(s string, grid Grid) ([]TimePoint, error) {
	if s == "" {
		return []TimePoint{}, nil
	}
	parts := strings.Split(s, pointSeparator)
	points := make([]TimePoint, 0, len(parts))
	for _, part := range parts {
		p, err := DecodePoint(part, grid)
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, nil
}

func withField(err error, field string) error {
	if de, ok := err.(*DecodeError); ok {
		de.Field = field
		return de
	}
	return err
}
