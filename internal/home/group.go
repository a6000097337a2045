package home

import "time"

// DeviceGroup is a user-defined, named collection of services.
//
// Members holds service ids in display order. RoomID scopes the group to a
// room; a nil RoomID makes it room-agnostic.
type DeviceGroup struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Slug      string    `json:"slug" yaml:"slug"`
	Icon      *string   `json:"icon,omitempty" yaml:"icon,omitempty"`
	RoomID    *string   `json:"room_id,omitempty" yaml:"room_id,omitempty"`
	Members   []string  `json:"members" yaml:"members"`
	SortOrder int       `json:"sort_order" yaml:"sort_order"`
	CreatedAt time.Time `json:"created_at" yaml:"-"`
	UpdatedAt time.Time `json:"updated_at" yaml:"-"`
}

// ResolveServices looks up each member in the snapshot. Members that no
// longer exist are dropped silently.
func (g DeviceGroup) ResolveServices(s *Snapshot) []Service {
	if s == nil {
		return nil
	}
	out := make([]Service, 0, len(g.Members))
	for _, id := range g.Members {
		if svc, ok := s.Service(id); ok {
			out = append(out, svc)
		}
	}
	return out
}
