package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/homecast/internal/executor"
	"github.com/nerrad567/homecast/internal/home"
	"github.com/nerrad567/homecast/internal/resolver"
)

// StatusResponse is the body of /status.
type StatusResponse struct {
	Status          string  `json:"status"`
	Version         string  `json:"version"`
	UptimeSeconds   int64   `json:"uptime_seconds"`
	SnapshotLoaded  bool    `json:"snapshot_loaded"`
	Home            *string `json:"home"`
	Rooms           int     `json:"rooms"`
	Accessories     int     `json:"accessories"`
	Services        int     `json:"services"`
	Scenes          int     `json:"scenes"`
	Groups          int     `json:"groups"`
	Characteristics int     `json:"characteristics"`
	Listeners       int     `json:"listeners"`
}

// RoomInfo is one entry of /list/rooms.
type RoomInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Services int    `json:"services"`
}

// DeviceInfo is one entry of /list/devices.
type DeviceInfo struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Type        home.ServiceType `json:"type"`
	Room        string           `json:"room"`
	AccessoryID string           `json:"accessory_id"`
	Reachable   bool             `json:"reachable"`
}

// SceneInfo is one entry of /list/scenes.
type SceneInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Actions int    `json:"actions"`
}

// GroupInfo is one entry of /list/groups.
type GroupInfo struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Slug    string   `json:"slug"`
	Icon    *string  `json:"icon,omitempty"`
	Room    string   `json:"room,omitempty"`
	Members []string `json:"members"`
	Devices int      `json:"devices"`
}

// CharacteristicInfo is a characteristic id and its cached value.
type CharacteristicInfo struct {
	ID    string `json:"id"`
	Value any    `json:"value"`
}

// ServiceDetail is the /info body for one service.
type ServiceDetail struct {
	DeviceInfo
	Characteristics map[home.CharacteristicKind]CharacteristicInfo `json:"characteristics"`
}

// SceneDetail is the /info body for a scene.
type SceneDetail struct {
	Kind string `json:"kind"`
	SceneInfo
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleStatus summarises the loaded snapshot and the server.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	snap := s.executor.Snapshot()

	s.pubMu.Lock()
	indexed := s.index.Len()
	s.pubMu.Unlock()

	resp := StatusResponse{
		Status:          "ok",
		Version:         s.version,
		UptimeSeconds:   int64(s.uptime().Seconds()),
		SnapshotLoaded:  snap != nil,
		Groups:          len(s.executor.Groups()),
		Characteristics: indexed,
		Listeners:       s.hub.Count(),
	}
	if snap != nil {
		if h, ok := snap.PrimaryHome(); ok {
			resp.Home = &h.Name
		}
		resp.Rooms = len(snap.Rooms)
		resp.Accessories = len(snap.Accessories)
		resp.Services = len(snap.Services())
		resp.Scenes = len(snap.Scenes)
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleListRooms lists rooms with their service counts.
func (s *Server) handleListRooms(w http.ResponseWriter, _ *http.Request) {
	snap := s.executor.Snapshot()
	rooms := []RoomInfo{}
	if snap != nil {
		for _, room := range snap.Rooms {
			rooms = append(rooms, RoomInfo{
				ID:       room.ID,
				Name:     room.Name,
				Services: len(snap.ServicesInRoom(room.ID)),
			})
		}
	}
	writeJSON(w, http.StatusOK, rooms)
}

// handleListDevices lists every service, or those of one room when the
// path names a room by name (quote and case insensitive) or id.
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	snap := s.executor.Snapshot()
	devices := []DeviceInfo{}
	if snap == nil {
		writeJSON(w, http.StatusOK, devices)
		return
	}

	services := snap.Services()
	if name := chi.URLParam(r, "*"); name != "" {
		segs := pathSegments(name)
		room, ok := findRoom(snap, segs[0])
		if !ok {
			writeNotFound(w, "room not found: "+segs[0])
			return
		}
		services = snap.ServicesInRoom(room.ID)
	}

	reachable := reachability(snap)
	for _, svc := range services {
		devices = append(devices, deviceInfo(snap, svc, reachable))
	}
	writeJSON(w, http.StatusOK, devices)
}

// handleListScenes lists scenes.
func (s *Server) handleListScenes(w http.ResponseWriter, _ *http.Request) {
	snap := s.executor.Snapshot()
	scenes := []SceneInfo{}
	if snap != nil {
		for _, sc := range snap.Scenes {
			scenes = append(scenes, sceneInfo(sc))
		}
	}
	writeJSON(w, http.StatusOK, scenes)
}

// handleListGroups lists device groups with the number of members present
// in the current snapshot.
func (s *Server) handleListGroups(w http.ResponseWriter, _ *http.Request) {
	snap := s.executor.Snapshot()
	groups := []GroupInfo{}
	for _, g := range s.executor.Groups() {
		info := GroupInfo{
			ID:      g.ID,
			Name:    g.Name,
			Slug:    g.Slug,
			Icon:    g.Icon,
			Members: g.Members,
			Devices: len(g.ResolveServices(snap)),
		}
		if info.Members == nil {
			info.Members = []string{}
		}
		if snap != nil {
			info.Room = snap.RoomName(g.RoomID)
		}
		groups = append(groups, info)
	}
	writeJSON(w, http.StatusOK, groups)
}

// handleInfo resolves the target like a command would, falling back to a
// room name. A single service yields one object, a scene a scene object,
// and a room, group or ambiguous match an array.
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	snap := s.executor.Snapshot()
	if snap == nil {
		writeActionError(w, &executor.ActionError{Kind: executor.BridgeUnavailable})
		return
	}

	target := joinSegments(pathSegments(chi.URLParam(r, "*")))
	if target == "" {
		writeBadRequest(w, "missing target")
		return
	}

	out := resolver.Resolve(target, snap, s.executor.Groups())
	switch out.Kind {
	case resolver.NotFound:
		room, ok := findRoom(snap, target)
		if !ok {
			writeActionError(w, &executor.ActionError{Kind: executor.TargetNotFound, Query: target})
			return
		}
		out = resolver.Outcome{Kind: resolver.Ambiguous, Query: target, Services: snap.ServicesInRoom(room.ID)}
	case resolver.Scene:
		writeJSON(w, http.StatusOK, SceneDetail{Kind: "scene", SceneInfo: sceneInfo(out.Scene)})
		return
	}

	reachable := reachability(snap)
	details := make([]ServiceDetail, 0, len(out.Services))
	for _, svc := range out.Services {
		details = append(details, s.serviceDetail(snap, svc, reachable))
	}
	if out.Kind == resolver.Services && len(details) == 1 {
		writeJSON(w, http.StatusOK, details[0])
		return
	}
	writeJSON(w, http.StatusOK, details)
}

// serviceDetail describes svc with the bridge's cached value for each
// characteristic it has.
func (s *Server) serviceDetail(snap *home.Snapshot, svc home.Service, reachable map[string]bool) ServiceDetail {
	d := ServiceDetail{
		DeviceInfo:      deviceInfo(snap, svc, reachable),
		Characteristics: make(map[home.CharacteristicKind]CharacteristicInfo),
	}
	for _, kind := range home.CharacteristicKinds() {
		id, ok := svc.Characteristic(kind)
		if !ok {
			continue
		}
		value, _ := s.executor.CharacteristicValue(id)
		d.Characteristics[kind] = CharacteristicInfo{ID: id, Value: value}
	}
	return d
}

func deviceInfo(snap *home.Snapshot, svc home.Service, reachable map[string]bool) DeviceInfo {
	return DeviceInfo{
		ID:          svc.ID,
		Name:        svc.Name,
		Type:        svc.Type,
		Room:        snap.RoomName(svc.RoomID),
		AccessoryID: svc.AccessoryID,
		Reachable:   reachable[svc.AccessoryID],
	}
}

func sceneInfo(sc home.Scene) SceneInfo {
	return SceneInfo{ID: sc.ID, Name: sc.Name, Actions: len(sc.Actions)}
}

// reachability maps accessory ids to their reachable flag.
func reachability(snap *home.Snapshot) map[string]bool {
	out := make(map[string]bool, len(snap.Accessories))
	for _, acc := range snap.Accessories {
		out[acc.ID] = acc.IsReachable
	}
	return out
}

// findRoom matches a room by id or by folded name.
func findRoom(snap *home.Snapshot, name string) (home.Room, bool) {
	if room, ok := snap.Room(name); ok {
		return room, true
	}
	for _, room := range snap.Rooms {
		if home.SameName(room.Name, name) {
			return room, true
		}
	}
	return home.Room{}, false
}

// joinSegments rejoins non-empty path segments with "/".
func joinSegments(segs []string) string {
	var kept []string
	for _, seg := range segs {
		if seg != "" {
			kept = append(kept, seg)
		}
	}
	return strings.Join(kept, "/")
}
