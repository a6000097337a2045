package home

import (
	"encoding/json"
	"testing"
)

func TestAsBool(t *testing.T) {
	tests := []struct {
		in   any
		want bool
	}{
		{true, true},
		{false, false},
		{1, true},
		{0.0, false},
		{"true", true},
		{"nope", false},
		{nil, false},
	}
	for _, tt := range tests {
		if got := AsBool(tt.in); got != tt.want {
			t.Errorf("AsBool(%#v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestAsNumber(t *testing.T) {
	tests := []struct {
		in   any
		want float64
	}{
		{42, 42},
		{uint8(254), 254},
		{float32(0.5), 0.5},
		{true, 1},
		{"2.5", 2.5},
		{json.Number("7"), 7},
		{struct{}{}, 0},
	}
	for _, tt := range tests {
		if got := AsNumber(tt.in); got != tt.want {
			t.Errorf("AsNumber(%#v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
