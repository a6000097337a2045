package api

import (
	"encoding/json"

	"github.com/nerrad567/homecast/internal/home"
)

// IndexEntry describes the service a characteristic belongs to.
type IndexEntry struct {
	ServiceID      string
	Device         string
	Room           string
	Type           home.ServiceType
	Characteristic home.CharacteristicKind
}

// CharacteristicIndex maps characteristic ids to their descriptions.
// An index is immutable once built.
type CharacteristicIndex struct {
	entries map[string]IndexEntry
}

// BuildIndex makes one pass over the snapshot's services. A nil snapshot
// yields an empty index.
func BuildIndex(snap *home.Snapshot) *CharacteristicIndex {
	idx := &CharacteristicIndex{entries: make(map[string]IndexEntry)}
	if snap == nil {
		return idx
	}
	for _, svc := range snap.Services() {
		room := snap.RoomName(svc.RoomID)
		for _, kind := range home.CharacteristicKinds() {
			id, ok := svc.Characteristic(kind)
			if !ok {
				continue
			}
			idx.entries[id] = IndexEntry{
				ServiceID:      svc.ID,
				Device:         svc.Name,
				Room:           room,
				Type:           svc.Type,
				Characteristic: kind,
			}
		}
	}
	return idx
}

// Lookup returns the entry for a characteristic id.
func (i *CharacteristicIndex) Lookup(id string) (IndexEntry, bool) {
	e, ok := i.entries[id]
	return e, ok
}

// Len returns the number of indexed characteristics.
func (i *CharacteristicIndex) Len() int {
	return len(i.entries)
}

// ChangeEvent is the payload streamed to listeners for one value change.
type ChangeEvent struct {
	Device         string                  `json:"device"`
	Room           string                  `json:"room"`
	Type           home.ServiceType        `json:"type"`
	Characteristic home.CharacteristicKind `json:"characteristic"`
	Value          any                     `json:"value"`
}

// RebuildIndex replaces the characteristic index with one built from snap.
// The last-published cache is kept so ids that survive a reload continue
// to be deduplicated.
func (s *Server) RebuildIndex(snap *home.Snapshot) {
	idx := BuildIndex(snap)

	s.pubMu.Lock()
	s.index = idx
	s.pubMu.Unlock()

	s.metrics.indexSize.Set(float64(idx.Len()))
	s.logger.Debug("characteristic index rebuilt", "characteristics", idx.Len())
}

// PublishCharacteristicChange streams a value change to every listener.
//
// Unindexed ids are dropped. A value whose JSON encoding equals the last
// one published for the same id is suppressed, so numerically equal values
// of different Go types (1 and 1.0) count as unchanged.
func (s *Server) PublishCharacteristicChange(characteristicID string, value any) {
	encoded, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("unencodable characteristic value", "characteristic_id", characteristicID, "error", err)
		return
	}

	s.pubMu.Lock()
	defer s.pubMu.Unlock()

	entry, ok := s.index.Lookup(characteristicID)
	if !ok {
		s.metrics.eventsSuppressed.WithLabelValues(suppressedUnindexed).Inc()
		return
	}
	if last, seen := s.lastPublished[characteristicID]; seen && last == string(encoded) {
		s.metrics.eventsSuppressed.WithLabelValues(suppressedUnchanged).Inc()
		return
	}
	s.lastPublished[characteristicID] = string(encoded)

	data, err := json.Marshal(ChangeEvent{
		Device:         entry.Device,
		Room:           entry.Room,
		Type:           entry.Type,
		Characteristic: entry.Characteristic,
		Value:          json.RawMessage(encoded),
	})
	if err != nil {
		s.logger.Error("failed to marshal change event", "error", err)
		return
	}

	// Broadcast never blocks, so holding pubMu keeps per-id event order.
	n := s.hub.Broadcast(data)
	s.metrics.eventsPublished.Inc()
	s.logger.Debug("characteristic change published",
		"characteristic_id", characteristicID,
		"device", entry.Device,
		"listeners", n,
	)
}
