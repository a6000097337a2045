package home

import (
	"errors"
	"testing"
)

func strPtr(s string) *string { return &s }

func testSnapshot() *Snapshot {
	return &Snapshot{
		Homes: []Home{{ID: "h1", Name: "Home", IsPrimary: true}},
		Rooms: []Room{{ID: "r1", Name: "Office"}, {ID: "r2", Name: "Kitchen"}},
		Accessories: []Accessory{
			{
				ID:          "a1",
				Name:        "Spot Bar",
				RoomID:      strPtr("r1"),
				IsReachable: true,
				Services: []Service{{
					ID:              "s1",
					Name:            "Spotlights",
					Type:            ServiceLightbulb,
					Characteristics: map[CharacteristicKind]string{CharPowerState: "P", CharBrightness: "B"},
				}},
			},
			{
				ID:   "a2",
				Name: "Kettle Plug",
				Services: []Service{{
					ID:              "s2",
					Name:            "Kettle",
					Type:            ServiceOutlet,
					RoomID:          strPtr("r2"),
					Characteristics: map[CharacteristicKind]string{CharPowerState: "K"},
				}},
			},
		},
		Scenes: []Scene{{
			ID:      "sc1",
			Name:    "Goodnight",
			Actions: []SceneAction{{CharacteristicID: "P", Kind: CharPowerState, Value: 0}},
		}},
	}
}

func TestNormalize_InheritsRoomAndAccessory(t *testing.T) {
	s := testSnapshot()
	if err := s.Normalize(); err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	svc, ok := s.Service("s1")
	if !ok {
		t.Fatal("Service(s1) not found")
	}
	if svc.RoomID == nil || *svc.RoomID != "r1" {
		t.Errorf("RoomID = %v, want r1", svc.RoomID)
	}
	if svc.AccessoryID != "a1" {
		t.Errorf("AccessoryID = %q, want a1", svc.AccessoryID)
	}

	kettle, _ := s.Service("s2")
	if got := s.RoomName(kettle.RoomID); got != "Kitchen" {
		t.Errorf("RoomName = %q, want Kitchen", got)
	}
	if len(s.Services()) != 2 {
		t.Errorf("len(Services()) = %d, want 2", len(s.Services()))
	}
	if got := s.CharacteristicCount(); got != 3 {
		t.Errorf("CharacteristicCount() = %d, want 3", got)
	}
}

func TestNormalize_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Snapshot)
		wantErr error
	}{
		{
			name: "duplicate characteristic",
			mutate: func(s *Snapshot) {
				s.Accessories[1].Services[0].Characteristics[CharBrightness] = "P"
			},
			wantErr: ErrDuplicateCharacteristic,
		},
		{
			name: "unknown accessory room",
			mutate: func(s *Snapshot) {
				s.Accessories[0].RoomID = strPtr("nowhere")
			},
			wantErr: ErrUnknownRoom,
		},
		{
			name: "unknown service room",
			mutate: func(s *Snapshot) {
				s.Accessories[1].Services[0].RoomID = strPtr("nowhere")
			},
			wantErr: ErrUnknownRoom,
		},
		{
			name: "scene references missing characteristic",
			mutate: func(s *Snapshot) {
				s.Scenes[0].Actions[0].CharacteristicID = "gone"
			},
			wantErr: ErrUnknownCharacteristic,
		},
		{
			name: "two primary homes",
			mutate: func(s *Snapshot) {
				s.Homes = append(s.Homes, Home{ID: "h2", Name: "Cabin", IsPrimary: true})
			},
			wantErr: ErrMultiplePrimaryHomes,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testSnapshot()
			tt.mutate(s)
			if err := s.Normalize(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Normalize() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestService_Characteristic(t *testing.T) {
	svc := Service{Characteristics: map[CharacteristicKind]string{CharPowerState: "P", CharHue: ""}}

	if id, ok := svc.Characteristic(CharPowerState); !ok || id != "P" {
		t.Errorf("Characteristic(power) = %q, %v", id, ok)
	}
	if svc.Has(CharHue) {
		t.Error("empty id should not count as a capability")
	}
	if svc.Has(CharBrightness) {
		t.Error("Has(brightness) = true, want false")
	}
}

func TestPrimaryHome(t *testing.T) {
	s := &Snapshot{Homes: []Home{{ID: "a"}, {ID: "b", IsPrimary: true}}}
	if h, _ := s.PrimaryHome(); h.ID != "b" {
		t.Errorf("PrimaryHome() = %q, want b", h.ID)
	}

	s = &Snapshot{Homes: []Home{{ID: "a"}}}
	if h, _ := s.PrimaryHome(); h.ID != "a" {
		t.Errorf("PrimaryHome() fallback = %q, want a", h.ID)
	}

	if _, ok := (&Snapshot{}).PrimaryHome(); ok {
		t.Error("PrimaryHome() on empty snapshot should report false")
	}
}

func TestDeviceGroup_ResolveServices(t *testing.T) {
	s := testSnapshot()
	if err := s.Normalize(); err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	g := DeviceGroup{ID: "g1", Name: "Everything", Members: []string{"s2", "missing", "s1"}}
	got := g.ResolveServices(s)
	if len(got) != 2 {
		t.Fatalf("ResolveServices() returned %d services, want 2", len(got))
	}
	if got[0].ID != "s2" || got[1].ID != "s1" {
		t.Errorf("member order = [%s %s], want [s2 s1]", got[0].ID, got[1].ID)
	}

	if got := g.ResolveServices(nil); got != nil {
		t.Errorf("ResolveServices(nil) = %v, want nil", got)
	}
}
