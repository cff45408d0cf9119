package apidata

import (
	"bytes"
	"fmt"
	"io"
	"math"

	json "github.com/goccy/go-json"
)

// Decode reads a single JSON object from r. Numbers are kept as json numbers
// so integer parameters survive without float rounding.
func Decode(r io.Reader) (APIData, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	if m == nil {
		return APIData{}, nil
	}
	return APIData(m), nil
}

// Parse decodes a JSON object held in b.
func Parse(b []byte) (APIData, error) {
	if len(bytes.TrimSpace(b)) == 0 {
		return APIData{}, nil
	}
	return Decode(bytes.NewReader(b))
}

// Encode writes ad as one line of JSON. NaN and infinities, which JSON
// cannot carry, are written as null.
func Encode(w io.Writer, ad APIData) error {
	return json.NewEncoder(w).Encode(Sanitize(ad))
}

// Marshal returns the JSON form of ad with the same NaN handling as Encode.
func Marshal(ad APIData) ([]byte, error) {
	return json.Marshal(Sanitize(ad))
}

// Sanitize returns a copy of v where non-finite floats are replaced by nil.
func Sanitize(v any) any {
	switch t := v.(type) {
	case APIData:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = Sanitize(e)
		}
		return out
	case map[string]any:
		return Sanitize(APIData(t))
	case []APIData:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Sanitize(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Sanitize(e)
		}
		return out
	case []float64:
		out := make([]any, len(t))
		for i, f := range t {
			out[i] = finiteOrNil(f)
		}
		return out
	case float64:
		return finiteOrNil(t)
	case float32:
		return finiteOrNil(float64(t))
	}
	return v
}

func finiteOrNil(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}

// MarshalJSON lets APIData embedded in other structs encode with the same
// NaN handling as Encode.
func (ad APIData) MarshalJSON() ([]byte, error) {
	return json.Marshal(Sanitize(ad))
}
