package objapi

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lychee-technology/notionmap"
)

// Numeric is a JSON number that remembers whether it was written as an integer.
// An integer on the wire stays an integer; it is never widened to float64.
type Numeric struct {
	i       int64
	f       float64
	isFloat bool
}

// Int returns an integer Numeric.
func Int(v int64) Numeric { return Numeric{i: v} }

// Float returns a floating point Numeric.
func Float(v float64) Numeric { return Numeric{f: v, isFloat: true} }

// NumericOf converts native Go numbers; other types are rejected.
func NumericOf(v any) (Numeric, error) {
	switch n := v.(type) {
	case Numeric:
		return n, nil
	case int:
		return Int(int64(n)), nil
	case int8:
		return Int(int64(n)), nil
	case int16:
		return Int(int64(n)), nil
	case int32:
		return Int(int64(n)), nil
	case int64:
		return Int(n), nil
	case uint8:
		return Int(int64(n)), nil
	case uint16:
		return Int(int64(n)), nil
	case uint32:
		return Int(int64(n)), nil
	case float32:
		return Float(float64(n)), nil
	case float64:
		return Float(n), nil
	default:
		return Numeric{}, notionmap.NewValidationError("number", fmt.Sprintf("%T is not a number", v))
	}
}

// IsInt reports whether the number is an integer.
func (n Numeric) IsInt() bool { return !n.isFloat }

// Int64 returns the value as int64, truncating floats.
func (n Numeric) Int64() int64 {
	if n.isFloat {
		return int64(n.f)
	}
	return n.i
}

// Float64 returns the value as float64.
func (n Numeric) Float64() float64 {
	if n.isFloat {
		return n.f
	}
	return float64(n.i)
}

// Value returns an int64 or a float64.
func (n Numeric) Value() any {
	if n.isFloat {
		return n.f
	}
	return n.i
}

func (n Numeric) String() string {
	if !n.isFloat {
		return strconv.FormatInt(n.i, 10)
	}
	s := strconv.FormatFloat(n.f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEn") {
		s += ".0"
	}
	return s
}

// MarshalJSON keeps the integer/float distinction: floats always carry a fraction.
func (n Numeric) MarshalJSON() ([]byte, error) {
	if n.isFloat && (math.IsNaN(n.f) || math.IsInf(n.f, 0)) {
		return nil, fmt.Errorf("objapi: %v is not representable in JSON", n.f)
	}
	return []byte(n.String()), nil
}

func (n *Numeric) UnmarshalJSON(data []byte) error {
	literal := string(bytes.TrimSpace(data))
	if !strings.ContainsAny(literal, ".eE") {
		if v, err := strconv.ParseInt(literal, 10, 64); err == nil {
			*n = Int(v)
			return nil
		}
	}
	v, err := strconv.ParseFloat(literal, 64)
	if err != nil {
		return notionmap.NewDecodeError(fmt.Sprintf("'%s' is not a number", literal), err)
	}
	*n = Float(v)
	return nil
}
