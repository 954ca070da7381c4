package note

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Kind discriminates the shapes a note field value can take once
// decoded. Raw note payloads are arbitrary JSON; Decode collapses them
// into this closed set so downstream code never probes properties at
// runtime.
type Kind int

const (
	KindMissing Kind = iota
	KindNumber
	KindText
	KindList
)

// unwrapKeys is the fixed precedence for collapsing an object to a
// leaf value. First key present wins.
var unwrapKeys = []string{"value", "content", "text", "title", "name"}

// Value is the tagged union of extractable note field shapes.
type Value struct {
	Kind Kind
	Num  float64
	Str  string
	List []Value
}

// Missing is the zero Value.
var Missing = Value{Kind: KindMissing}

// Decode normalizes an arbitrary decoded-JSON value into a Value.
// Objects collapse through the unwrap precedence; unrecognized objects
// fall back to their JSON serialization.
func Decode(raw interface{}) Value {
	switch v := raw.(type) {
	case nil:
		return Missing
	case float64:
		return Value{Kind: KindNumber, Num: v}
	case float32:
		return Value{Kind: KindNumber, Num: float64(v)}
	case int:
		return Value{Kind: KindNumber, Num: float64(v)}
	case int64:
		return Value{Kind: KindNumber, Num: float64(v)}
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return Value{Kind: KindNumber, Num: f}
		}
		return Value{Kind: KindText, Str: v.String()}
	case bool:
		return Value{Kind: KindText, Str: strconv.FormatBool(v)}
	case string:
		return Value{Kind: KindText, Str: v}
	case []interface{}:
		list := make([]Value, 0, len(v))
		for _, item := range v {
			list = append(list, Decode(item))
		}
		return Value{Kind: KindList, List: list}
	case map[string]interface{}:
		for _, key := range unwrapKeys {
			if inner, ok := v[key]; ok && inner != nil {
				return Decode(inner)
			}
		}
		if data, err := json.Marshal(v); err == nil {
			return Value{Kind: KindText, Str: string(data)}
		}
		return Missing
	default:
		return Missing
	}
}

// IsMissing reports whether the value carries no data. Empty strings
// count as missing, matching the stats engine's missing-rate rule.
func (v Value) IsMissing() bool {
	return v.Kind == KindMissing || (v.Kind == KindText && v.Str == "")
}

// AsMetric converts the value for a metric-role field. Numbers pass
// through, lists count their length, text parses as a number. The
// second return is false when the row should omit the field entirely
// (never coerced to zero).
func (v Value) AsMetric() (float64, bool) {
	switch v.Kind {
	case KindNumber:
		return v.Num, true
	case KindList:
		return float64(len(v.List)), true
	case KindText:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// AsLabel converts the value for a dimension-role field. Lists join
// their leaf labels with commas.
func (v Value) AsLabel() (string, bool) {
	switch v.Kind {
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64), true
	case KindText:
		if v.Str == "" {
			return "", false
		}
		return v.Str, true
	case KindList:
		parts := make([]string, 0, len(v.List))
		for _, item := range v.List {
			if label, ok := item.AsLabel(); ok {
				parts = append(parts, label)
			}
		}
		if len(parts) == 0 {
			return "", false
		}
		return strings.Join(parts, ","), true
	default:
		return "", false
	}
}
