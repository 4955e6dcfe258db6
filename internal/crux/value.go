package crux

import (
	"bytes"
	"math"
	"strconv"
)

// Value is a CrUX number. The API sends numbers, numeric strings (CLS) or
// null, and "NaN" for empty histogram bins.
type Value struct {
	Float float64
	Valid bool
}

// V returns a valid Value.
func V(f float64) Value {
	return Value{Float: f, Valid: true}
}

func (v *Value) UnmarshalJSON(data []byte) error {
	*v = Value{}
	raw := bytes.Trim(bytes.TrimSpace(data), `"`)
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	f, err := strconv.ParseFloat(string(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	*v = V(f)
	return nil
}

func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, v.Float, 'f', -1, 64), nil
}
