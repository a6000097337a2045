package resolver

import (
	"strings"
	"testing"

	"github.com/nerrad567/homecast/internal/home"
)

func strPtr(s string) *string { return &s }

func light(id, name, power string) home.Service {
	return home.Service{
		ID:              id,
		Name:            name,
		Type:            home.ServiceLightbulb,
		Characteristics: map[home.CharacteristicKind]string{home.CharPowerState: power},
	}
}

// fixture builds a small house:
//
//	Office:       Spotlights, Spotlights Left, Desk Lamp
//	Jay’s Office: Lamp
//	Kitchen:      Lamp, Lamp Strip
func fixture(t *testing.T) *home.Snapshot {
	t.Helper()

	s := &home.Snapshot{
		Homes: []home.Home{{ID: "h1", Name: "Home", IsPrimary: true}},
		Rooms: []home.Room{
			{ID: "r-office", Name: "Office"},
			{ID: "r-jay", Name: "Jay’s Office"},
			{ID: "r-kitchen", Name: "Kitchen"},
		},
		Accessories: []home.Accessory{
			{ID: "a1", Name: "Spots", RoomID: strPtr("r-office"), IsReachable: true, Services: []home.Service{
				light("AB12-CD34", "Spotlights", "c1"),
				light("ab12-cd35", "Spotlights Left", "c2"),
			}},
			{ID: "a2", Name: "Desk", RoomID: strPtr("r-office"), IsReachable: true, Services: []home.Service{
				light("s-desk", "Desk Lamp", "c3"),
			}},
			{ID: "a3", Name: "Jay Lamp", RoomID: strPtr("r-jay"), IsReachable: true, Services: []home.Service{
				light("s-jay", "Lamp", "c4"),
			}},
			{ID: "a4", Name: "Kitchen Lights", RoomID: strPtr("r-kitchen"), IsReachable: true, Services: []home.Service{
				light("s-klamp", "Lamp", "c5"),
				light("s-kstrip", "Lamp Strip", "c6"),
			}},
		},
		Scenes: []home.Scene{
			{ID: "5c-01", Name: "Goodnight"},
			{ID: "5c-02", Name: "Movie Night"},
			{ID: "5c-03", Name: "Movie Matinee"},
			{ID: "5c-04", Name: "Jay’s Night"},
		},
	}
	if err := s.Normalize(); err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	return s
}

func groupsFixture() []home.DeviceGroup {
	return []home.DeviceGroup{
		{ID: "g1", Name: "All Lamps", Members: []string{"s-desk", "s-jay", "s-klamp", "gone"}},
		{ID: "g2", Name: "Task", RoomID: strPtr("r-office"), Members: []string{"s-desk"}},
		{ID: "g3", Name: "Task", Members: []string{"s-klamp"}},
		{ID: "g4", Name: "Ghosts", Members: []string{"missing-1"}},
	}
}

func ids(services []home.Service) string {
	out := make([]string, len(services))
	for i, s := range services {
		out[i] = s.ID
	}
	return strings.Join(out, ",")
}

func TestResolve(t *testing.T) {
	snap := fixture(t)
	groups := groupsFixture()

	tests := []struct {
		name      string
		query     string
		wantKind  Kind
		wantIDs   string
		wantScene string
	}{
		{"identifier upper", "AB12-CD34", Services, "AB12-CD34", ""},
		{"identifier lower", "ab12-cd34", Services, "AB12-CD34", ""},
		{"scene identifier", "5C-02", Scene, "", "5c-02"},
		{"scene prefix any case", "scene.GOODNIGHT", Scene, "", "5c-01"},
		{"scene raw name", "goodnight", Scene, "", "5c-01"},
		{"scene prefix substring", "scene.matinee", Scene, "", "5c-03"},
		{"scene prefix several substrings", "scene.movie", NotFound, "", ""},
		{"scene bare substring", "Matinee", Scene, "", "5c-03"},
		{"scene bare partial word", "goodni", Scene, "", "5c-01"},
		{"scene bare several substrings", "night", NotFound, "", ""},
		{"scene typographic apostrophe", "jay’s night", Scene, "", "5c-04"},
		{"scene ascii apostrophe", "jay's night", Scene, "", "5c-04"},
		{"scene left quote", "scene.jay‘s night", Scene, "", "5c-04"},
		{"scene substring with apostrophe", "jay's", Scene, "", "5c-04"},
		{"no scene hit reaches devices", "kitchen lamp", Services, "s-klamp", ""},
		{"group prefix", "group.all lamps", Services, "s-desk,s-jay,s-klamp", ""},
		{"group bare name prefers room-agnostic", "task", Services, "s-klamp", ""},
		{"room-scoped group", "office/group.task", Services, "s-desk", ""},
		{"room-scoped falls back to room-agnostic", "kitchen/group.task", Services, "s-klamp", ""},
		{"room-scoped unknown room", "garage/group.task", NotFound, "", ""},
		{"group with no live members", "group.ghosts", NotFound, "", ""},
		{"room device exact", "Office/Spotlights", Services, "AB12-CD34", ""},
		{"room device substring unique", "office/desk", Services, "s-desk", ""},
		{"room device space separated", "kitchen strip", Services, "s-kstrip", ""},
		{"room device exact beats substring", "kitchen/lamp", Services, "s-klamp", ""},
		{"room device ambiguous", "office/spot", Ambiguous, "AB12-CD34,ab12-cd35", ""},
		{"room substring spans rooms, exact wins", "office/lamp", Services, "s-jay", ""},
		{"room substring spans rooms", "office/l", Ambiguous, "AB12-CD34,ab12-cd35,s-desk,s-jay", ""},
		{"typographic apostrophe query", "jay’s office/lamp", Services, "s-jay", ""},
		{"ascii apostrophe query", "jay's office/lamp", Services, "s-jay", ""},
		{"left quote query", "jay‘s office/lamp", Services, "s-jay", ""},
		{"unknown device", "Nonexistent/Device", NotFound, "", ""},
		{"too many parts", "office/spot/left", NotFound, "", ""},
		{"empty", "", NotFound, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.query, snap, groups)
			if got.Kind != tt.wantKind {
				t.Fatalf("Resolve(%q).Kind = %s, want %s", tt.query, got.Kind, tt.wantKind)
			}
			if got.Query != tt.query {
				t.Errorf("Query = %q, want %q", got.Query, tt.query)
			}
			switch got.Kind {
			case Services, Ambiguous:
				if ids(got.Services) != tt.wantIDs {
					t.Errorf("services = %s, want %s", ids(got.Services), tt.wantIDs)
				}
			case Scene:
				if got.Scene.ID != tt.wantScene {
					t.Errorf("scene = %s, want %s", got.Scene.ID, tt.wantScene)
				}
			}
		})
	}
}

func TestResolve_IdentifierCaseInsensitive(t *testing.T) {
	snap := fixture(t)
	upper := Resolve("AB12-CD35", snap, nil)
	lower := Resolve("ab12-cd35", snap, nil)
	if upper.Kind != lower.Kind || ids(upper.Services) != ids(lower.Services) {
		t.Errorf("upper %v/%s != lower %v/%s", upper.Kind, ids(upper.Services), lower.Kind, ids(lower.Services))
	}
}

func TestResolve_NilSnapshot(t *testing.T) {
	if got := Resolve("office/spotlights", nil, nil); got.Kind != NotFound {
		t.Errorf("Kind = %s, want not_found", got.Kind)
	}
}

func TestOutcome_Names(t *testing.T) {
	got := Resolve("office/spot", fixture(t), nil).Names()
	if strings.Join(got, "|") != "Spotlights|Spotlights Left" {
		t.Errorf("Names() = %v", got)
	}
}
