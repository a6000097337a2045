package home

import "fmt"

// Home is one home in a snapshot.
type Home struct {
	ID        string `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	IsPrimary bool   `json:"is_primary" yaml:"is_primary"`
}

// Room is a named room. Room ids are unique within a snapshot.
type Room struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Accessory is a physical device holding one or more services.
type Accessory struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	RoomID      *string   `json:"room_id,omitempty" yaml:"room_id,omitempty"`
	Services    []Service `json:"services" yaml:"services"`
	IsReachable bool      `json:"reachable" yaml:"reachable"`
}

// Service is one controllable function of an accessory.
//
// Characteristics maps each supported capability to its characteristic id.
// A missing key means the service does not support that capability.
type Service struct {
	// Identity
	ID          string      `json:"id" yaml:"id"`
	Name        string      `json:"name" yaml:"name"`
	Type        ServiceType `json:"type" yaml:"type"`
	AccessoryID string      `json:"accessory_id,omitempty" yaml:"accessory_id,omitempty"`

	// Location, inherited from the accessory when unset
	RoomID *string `json:"room_id,omitempty" yaml:"room_id,omitempty"`

	// Capabilities
	Characteristics map[CharacteristicKind]string `json:"characteristics,omitempty" yaml:"characteristics,omitempty"`

	// Advertised colour temperature bounds in mireds
	ColorTemperatureMin *int `json:"color_temperature_min,omitempty" yaml:"color_temperature_min,omitempty"`
	ColorTemperatureMax *int `json:"color_temperature_max,omitempty" yaml:"color_temperature_max,omitempty"`
}

// Characteristic returns the characteristic id for kind, if present.
func (s Service) Characteristic(kind CharacteristicKind) (string, bool) {
	id, ok := s.Characteristics[kind]
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// Has reports whether the service supports kind.
func (s Service) Has(kind CharacteristicKind) bool {
	_, ok := s.Characteristic(kind)
	return ok
}

// InRoom reports whether the service belongs to roomID.
func (s Service) InRoom(roomID string) bool {
	return s.RoomID != nil && *s.RoomID == roomID
}

// SceneAction is one characteristic write performed by a scene.
type SceneAction struct {
	CharacteristicID string             `json:"characteristic_id" yaml:"characteristic_id"`
	Kind             CharacteristicKind `json:"kind" yaml:"kind"`
	Value            float64            `json:"value" yaml:"value"`
}

// Scene is a named set of actions executed together by the bridge.
// Actions is empty for platforms that do not expose scene composition.
type Scene struct {
	ID      string        `json:"id" yaml:"id"`
	Name    string        `json:"name" yaml:"name"`
	Actions []SceneAction `json:"actions,omitempty" yaml:"actions,omitempty"`
}

// Snapshot is one generation of the home graph.
//
// A Snapshot is built by a backend, prepared with Normalize and never
// mutated afterwards. All lookup methods require a prior successful
// Normalize.
//
// Thread Safety:
//   - After Normalize returns, all methods are safe for concurrent use.
type Snapshot struct {
	Homes       []Home      `json:"homes" yaml:"homes"`
	Rooms       []Room      `json:"rooms" yaml:"rooms"`
	Accessories []Accessory `json:"accessories" yaml:"accessories"`
	Scenes      []Scene     `json:"scenes" yaml:"scenes"`

	// Derived by Normalize
	services     []Service
	serviceIndex map[string]int
	roomIndex    map[string]int
	sceneIndex   map[string]int
}

// Normalize validates the snapshot and builds its lookup tables.
//
// Services without a room inherit their accessory's room, and every
// service records its owning accessory id. It fails when a characteristic
// id is used twice, when a room reference is dangling, when a scene action
// names an unknown characteristic, or when more than one home is primary.
func (s *Snapshot) Normalize() error {
	primary := 0
	for _, h := range s.Homes {
		if h.IsPrimary {
			primary++
		}
	}
	if primary > 1 {
		return ErrMultiplePrimaryHomes
	}

	s.roomIndex = make(map[string]int, len(s.Rooms))
	for i, r := range s.Rooms {
		s.roomIndex[r.ID] = i
	}

	seen := make(map[string]string)
	s.services = s.services[:0]
	s.serviceIndex = make(map[string]int)

	for ai := range s.Accessories {
		acc := &s.Accessories[ai]
		if err := s.checkRoom(acc.RoomID, "accessory "+acc.ID); err != nil {
			return err
		}

		for si := range acc.Services {
			svc := &acc.Services[si]
			svc.AccessoryID = acc.ID
			if svc.RoomID == nil && acc.RoomID != nil {
				room := *acc.RoomID
				svc.RoomID = &room
			}
			if err := s.checkRoom(svc.RoomID, "service "+svc.ID); err != nil {
				return err
			}

			for _, kind := range characteristicKinds {
				id, ok := svc.Characteristic(kind)
				if !ok {
					continue
				}
				if owner, dup := seen[id]; dup {
					return fmt.Errorf("%w: %s on services %s and %s", ErrDuplicateCharacteristic, id, owner, svc.ID)
				}
				seen[id] = svc.ID
			}

			if _, exists := s.serviceIndex[svc.ID]; !exists {
				s.serviceIndex[svc.ID] = len(s.services)
			}
			s.services = append(s.services, *svc)
		}
	}

	s.sceneIndex = make(map[string]int, len(s.Scenes))
	for i, sc := range s.Scenes {
		for _, a := range sc.Actions {
			if _, ok := seen[a.CharacteristicID]; !ok {
				return fmt.Errorf("%w: %s in scene %s", ErrUnknownCharacteristic, a.CharacteristicID, sc.ID)
			}
		}
		s.sceneIndex[sc.ID] = i
	}

	return nil
}

func (s *Snapshot) checkRoom(roomID *string, owner string) error {
	if roomID == nil {
		return nil
	}
	if _, ok := s.roomIndex[*roomID]; !ok {
		return fmt.Errorf("%w: %s referenced by %s", ErrUnknownRoom, *roomID, owner)
	}
	return nil
}

// Services returns every service in accessory order. The slice must not
// be modified.
func (s *Snapshot) Services() []Service {
	return s.services
}

// Service returns the service with the given id.
func (s *Snapshot) Service(id string) (Service, bool) {
	i, ok := s.serviceIndex[id]
	if !ok {
		return Service{}, false
	}
	return s.services[i], true
}

// Room returns the room with the given id.
func (s *Snapshot) Room(id string) (Room, bool) {
	i, ok := s.roomIndex[id]
	if !ok {
		return Room{}, false
	}
	return s.Rooms[i], true
}

// RoomName returns the name of the room, or "" when roomID is nil or unknown.
func (s *Snapshot) RoomName(roomID *string) string {
	if roomID == nil {
		return ""
	}
	r, ok := s.Room(*roomID)
	if !ok {
		return ""
	}
	return r.Name
}

// Scene returns the scene with the given id.
func (s *Snapshot) Scene(id string) (Scene, bool) {
	i, ok := s.sceneIndex[id]
	if !ok {
		return Scene{}, false
	}
	return s.Scenes[i], true
}

// PrimaryHome returns the primary home, falling back to the first home.
func (s *Snapshot) PrimaryHome() (Home, bool) {
	for _, h := range s.Homes {
		if h.IsPrimary {
			return h, true
		}
	}
	if len(s.Homes) > 0 {
		return s.Homes[0], true
	}
	return Home{}, false
}

// ServicesInRoom returns the services whose room is roomID.
func (s *Snapshot) ServicesInRoom(roomID string) []Service {
	var out []Service
	for _, svc := range s.services {
		if svc.InRoom(roomID) {
			out = append(out, svc)
		}
	}
	return out
}

// CharacteristicCount returns the number of characteristic ids across all services.
func (s *Snapshot) CharacteristicCount() int {
	n := 0
	for _, svc := range s.services {
		for _, kind := range characteristicKinds {
			if svc.Has(kind) {
				n++
			}
		}
	}
	return n
}
