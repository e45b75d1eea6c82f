package rasch

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Float is a float64 that survives JSON round-trips for the non-finite values
// calibration tools emit at extreme raw scores. encoding/json refuses to
// marshal ±Inf and NaN, so those are encoded as the strings "Inf" / "-Inf"
// and null respectively.
type Float float64

func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	switch {
	case math.IsInf(v, 1):
		return []byte(`"Inf"`), nil
	case math.IsInf(v, -1):
		return []byte(`"-Inf"`), nil
	case math.IsNaN(v):
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(v, 'g', -1, 64)), nil
}

func (f *Float) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*f = Float(math.NaN())
		return nil
	}
	s = strings.Trim(s, `"`)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("rasch: bad measure value %q", s)
	}
	*f = Float(v)
	return nil
}
