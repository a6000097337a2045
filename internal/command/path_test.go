package command

import (
	"errors"
	"testing"
)

func TestFromPath(t *testing.T) {
	tests := []struct {
		name     string
		action   string
		segments []string
		want     Command
	}{
		{"toggle keeps case", "toggle", []string{"Office", "Spotlights"}, Command{"Office/Spotlights", Toggle()}},
		{"action case-insensitive", "ON", []string{"Living Room", "Lamp"}, Command{"Living Room/Lamp", TurnOn()}},
		{"open", "open", []string{"Blind"}, Command{"Blind", SetPosition(100)}},
		{"close", "close", []string{"Blind"}, Command{"Blind", SetPosition(0)}},
		{"brightness", "brightness", []string{"40", "Office", "Lamp"}, Command{"Office/Lamp", SetBrightness(40)}},
		{"temp", "temp", []string{"21.5", "Hall", "Thermostat"}, Command{"Hall/Thermostat", SetTargetTemp(21.5)}},
		{"color", "color", []string{"120", "50", "Desk"}, Command{"Desk", SetColor(120, 50)}},
		{"arm", "arm", []string{"Night", "Alarm"}, Command{"Alarm", ArmSystem(ArmNight)}},
		{"scene", "scene", []string{"Goodnight"}, Command{"scene.Goodnight", ExecuteScene()}},
		{"empty segments skipped", "lock", []string{"Front Door", ""}, Command{"Front Door", Lock()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromPath(tt.action, tt.segments)
			if err != nil {
				t.Fatalf("FromPath() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("FromPath() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFromPath_Errors(t *testing.T) {
	tests := []struct {
		name      string
		action    string
		segments  []string
		wantKind  ParseErrorKind
		wantToken string
	}{
		{"unknown action", "explode", []string{"Lamp"}, UnknownAction, "explode"},
		{"no target", "toggle", nil, MissingTarget, ""},
		{"value only", "brightness", []string{"50"}, MissingTarget, ""},
		{"brightness out of range", "brightness", []string{"150", "Lamp"}, InvalidValue, "150"},
		{"temp out of range", "temp", []string{"5", "Hall"}, InvalidValue, "5"},
		{"saturation out of range", "color", []string{"10", "101", "Desk"}, InvalidValue, "101"},
		{"bad arm mode", "arm", []string{"Vacation", "Alarm"}, InvalidValue, "Vacation"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromPath(tt.action, tt.segments)
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("FromPath() error = %v, want *ParseError", err)
			}
			if pe.Kind != tt.wantKind || pe.Token != tt.wantToken {
				t.Errorf("FromPath() = %s(%q), want %s(%q)", pe.Kind, pe.Token, tt.wantKind, tt.wantToken)
			}
		})
	}
}
