// Package apidata implements the keyed, nestable payload passed to and
// returned from service operations ("parameters" in, "results" out).
package apidata

import (
	"sort"
	"strconv"
)

// APIData is a keyed container of scalars, sequences and nested APIData.
// Values decoded from JSON arrive as map[string]any, []any and json numbers;
// the typed getters normalise them.
type APIData map[string]any

// New returns an empty container.
func New() APIData { return APIData{} }

// Add inserts or overwrites key.
func (ad APIData) Add(key string, v any) { ad[key] = v }

// Has reports whether key is present.
func (ad APIData) Has(key string) bool {
	_, ok := ad[key]
	return ok
}

// Get returns the raw value stored under key.
func (ad APIData) Get(key string) (any, bool) {
	v, ok := ad[key]
	return v, ok
}

// Keys returns the keys in lexical order.
func (ad APIData) Keys() []string {
	keys := make([]string, 0, len(ad))
	for k := range ad {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// GetString returns the string under key, or def.
func (ad APIData) GetString(key, def string) string {
	if s, ok := ad[key].(string); ok {
		return s
	}
	return def
}

// GetFloat returns the numeric value under key as float64, or def.
func (ad APIData) GetFloat(key string, def float64) float64 {
	v, ok := ad[key]
	if !ok {
		return def
	}
	if f, ok := toFloat(v); ok {
		return f
	}
	return def
}

// GetInt returns the numeric value under key truncated to int, or def.
func (ad APIData) GetInt(key string, def int) int {
	v, ok := ad[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case interface{ Int64() (int64, error) }:
		if i, err := n.Int64(); err == nil {
			return int(i)
		}
	}
	if f, ok := toFloat(v); ok {
		return int(f)
	}
	return def
}

// GetBool returns the boolean under key, or def. The strings "true"/"false"
// are accepted for command-line originated payloads.
func (ad APIData) GetBool(key string, def bool) bool {
	switch b := ad[key].(type) {
	case bool:
		return b
	case string:
		if v, err := strconv.ParseBool(b); err == nil {
			return v
		}
	}
	return def
}

// GetData returns the nested container under key. A missing or non-object
// value yields an empty container, never nil.
func (ad APIData) GetData(key string) APIData {
	switch d := ad[key].(type) {
	case APIData:
		return d
	case map[string]any:
		return APIData(d)
	}
	return APIData{}
}

// GetStrings returns the string sequence under key. A single string is
// promoted to a one-element slice.
func (ad APIData) GetStrings(key string) []string {
	switch s := ad[key].(type) {
	case []string:
		return append([]string(nil), s...)
	case string:
		return []string{s}
	case []any:
		out := make([]string, 0, len(s))
		for _, e := range s {
			if str, ok := e.(string); ok {
				out = append(out, str)
			}
		}
		return out
	}
	return nil
}

// GetFloats returns the numeric sequence under key.
func (ad APIData) GetFloats(key string) []float64 {
	switch s := ad[key].(type) {
	case []float64:
		return append([]float64(nil), s...)
	case []any:
		out := make([]float64, 0, len(s))
		for _, e := range s {
			if f, ok := toFloat(e); ok {
				out = append(out, f)
			}
		}
		return out
	}
	return nil
}

// GetDataSlice returns the sequence of nested containers under key.
func (ad APIData) GetDataSlice(key string) []APIData {
	switch s := ad[key].(type) {
	case []APIData:
		return s
	case []any:
		out := make([]APIData, 0, len(s))
		for _, e := range s {
			switch d := e.(type) {
			case APIData:
				out = append(out, d)
			case map[string]any:
				out = append(out, APIData(d))
			}
		}
		return out
	}
	return nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case interface{ Float64() (float64, error) }:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}
