package note

import (
	"testing"
)

func TestDecodeScalars(t *testing.T) {
	tests := []struct {
		name string
		raw  interface{}
		kind Kind
	}{
		{"nil is missing", nil, KindMissing},
		{"float is number", 4.5, KindNumber},
		{"int is number", 7, KindNumber},
		{"string is text", "hello", KindText},
		{"bool is text", true, KindText},
		{"slice is list", []interface{}{"a", "b"}, KindList},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Decode(tt.raw); got.Kind != tt.kind {
				t.Errorf("Decode(%v).Kind = %v, want %v", tt.raw, got.Kind, tt.kind)
			}
		})
	}
}

func TestDecodeObjectUnwrapPrecedence(t *testing.T) {
	// "value" outranks "content" outranks "text" and so on
	raw := map[string]interface{}{
		"content": "second",
		"value":   3.0,
		"name":    "last",
	}
	got := Decode(raw)
	if got.Kind != KindNumber || got.Num != 3.0 {
		t.Errorf("expected value key to win, got %+v", got)
	}

	raw = map[string]interface{}{
		"title": "note title",
		"name":  "note name",
	}
	got = Decode(raw)
	if got.Kind != KindText || got.Str != "note title" {
		t.Errorf("expected title to outrank name, got %+v", got)
	}
}

func TestDecodeObjectNestedUnwrap(t *testing.T) {
	raw := map[string]interface{}{
		"value": map[string]interface{}{"text": "inner"},
	}
	got := Decode(raw)
	if got.Kind != KindText || got.Str != "inner" {
		t.Errorf("expected recursive unwrap to inner text, got %+v", got)
	}
}

func TestDecodeUnrecognizedObjectFallsBackToJSON(t *testing.T) {
	raw := map[string]interface{}{"weird": 1.0}
	got := Decode(raw)
	if got.Kind != KindText || got.Str != `{"weird":1}` {
		t.Errorf("expected JSON fallback, got %+v", got)
	}
}

func TestIsMissing(t *testing.T) {
	if !Missing.IsMissing() {
		t.Error("zero value should be missing")
	}
	if !(Value{Kind: KindText, Str: ""}).IsMissing() {
		t.Error("empty string should count as missing")
	}
	if (Value{Kind: KindNumber, Num: 0}).IsMissing() {
		t.Error("zero number is data, not missing")
	}
}

func TestAsMetric(t *testing.T) {
	if num, ok := (Value{Kind: KindNumber, Num: 2.5}).AsMetric(); !ok || num != 2.5 {
		t.Errorf("number should pass through, got %v %v", num, ok)
	}
	if num, ok := Decode("  42 ").AsMetric(); !ok || num != 42 {
		t.Errorf("numeric text should parse, got %v %v", num, ok)
	}
	if _, ok := Decode("not a number").AsMetric(); ok {
		t.Error("non-numeric text must be omitted, never coerced to zero")
	}
	if num, ok := Decode([]interface{}{"tag1", "tag2", "tag3"}).AsMetric(); !ok || num != 3 {
		t.Errorf("list should count its length, got %v %v", num, ok)
	}
	if _, ok := Missing.AsMetric(); ok {
		t.Error("missing must not convert")
	}
}

func TestAsLabel(t *testing.T) {
	if label, ok := Decode(3.0).AsLabel(); !ok || label != "3" {
		t.Errorf("number label = %q %v", label, ok)
	}
	if label, ok := Decode([]interface{}{"work", "health"}).AsLabel(); !ok || label != "work,health" {
		t.Errorf("list label = %q %v", label, ok)
	}
	if _, ok := Decode("").AsLabel(); ok {
		t.Error("empty string must not produce a label")
	}
}
