package scopetimer

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Unit is a display unit for durations.
type Unit int

const (
	// UnitAuto lets [InferTimeProperty] pick the unit from the worst time.
	UnitAuto Unit = iota
	UnitSecond
	UnitMillisecond
	UnitMicrosecond
)

// PrecisionAuto lets [InferTimeProperty] pick the number of decimals.
const PrecisionAuto = -1

const precisionCap = 6

func (u Unit) String() string {
	switch u {
	case UnitSecond:
		return "s"
	case UnitMillisecond:
		return "ms"
	case UnitMicrosecond:
		return "us"
	default:
		return "auto"
	}
}

// Scale returns the multiplier converting seconds to u.
func (u Unit) Scale() int {
	switch u {
	case UnitMillisecond:
		return 1_000
	case UnitMicrosecond:
		return 1_000_000
	default:
		return 1
	}
}

// ParseUnit parses "auto", "s", "ms" or "us".
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return UnitAuto, nil
	case "s":
		return UnitSecond, nil
	case "ms":
		return UnitMillisecond, nil
	case "us":
		return UnitMicrosecond, nil
	}
	return UnitAuto, fmt.Errorf("unknown time unit %q", s)
}

// ParsePrecision parses "auto" or a non negative number of decimals.
func ParsePrecision(s string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "auto" {
		return PrecisionAuto, nil
	}
	p, err := strconv.Atoi(s)
	if err != nil || p < 0 {
		return PrecisionAuto, fmt.Errorf("invalid precision %q", s)
	}
	return p, nil
}

// TimeProperty describes how durations are displayed: the unit, the
// seconds-to-unit scale and the number of decimals.
type TimeProperty struct {
	Unit      Unit
	Scale     int
	Precision int
}

// Format renders seconds in the unit and precision of p, e.g. "12.345ms".
func (p TimeProperty) Format(seconds float64) string {
	scaled := seconds * float64(p.Scale)
	return strconv.FormatFloat(scaled, 'f', p.Precision, 64) + p.Unit.String()
}

// InferTimeProperty derives the display property for a tree whose worst
// total time is worst seconds. Explicit unit and precision are kept as is;
// [UnitAuto] and [PrecisionAuto] are inferred so that roughly six significant
// digits are shown whatever the magnitude.
func InferTimeProperty(worst float64, unit Unit, precision int) TimeProperty {
	u := inferUnit(worst, unit)
	scale := u.Scale()

	return TimeProperty{
		Unit:      u,
		Scale:     scale,
		Precision: inferPrecision(worst, u, scale, precision),
	}
}

func inferUnit(worst float64, unit Unit) Unit {
	if unit != UnitAuto {
		return unit
	}

	switch {
	case worst >= 1.0:
		return UnitSecond
	case worst >= 0.001:
		return UnitMillisecond
	default:
		return UnitMicrosecond
	}
}

func inferPrecision(worst float64, unit Unit, scale, precision int) int {
	if precision >= 0 {
		return precision
	}
	if unit == UnitMicrosecond {
		return 1
	}

	d := numDigits(worst * float64(scale))
	switch {
	case d >= precisionCap:
		return 0
	case d <= 0:
		return precisionCap
	default:
		return precisionCap - d
	}
}

// numDigits returns the number of digits of the integer part of v, 0 when the
// integer part is 0.
func numDigits(v float64) int {
	i := math.Abs(math.Trunc(v))
	if i == 0 {
		return 0
	}
	d := 1
	for i >= 10 {
		i = math.Trunc(i / 10)
		d++
	}
	return d
}
