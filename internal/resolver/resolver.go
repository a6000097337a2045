// Package resolver maps human-supplied target strings onto services or a
// scene of a snapshot.
//
// Resolution is tried in a fixed order and the first stage that produces a
// result wins:
//
//  1. identifier (hex groups separated by hyphens) against service then scene ids
//  2. scene name, with optional "scene." prefix, exact then unique substring
//  3. group name, with optional "group." prefix or "<room>/group.<name>"
//  4. "<room>/<device>" or "<room> <device>"
//
// Every name comparison is case-insensitive with typographic quotes folded
// (see home.FoldName). Resolve is a pure function.
package resolver

import (
	"regexp"
	"strings"

	"github.com/nerrad567/homecast/internal/home"
)

const (
	scenePrefix = "scene."
	groupPrefix = "group."
)

var identifierPattern = regexp.MustCompile(`^[0-9a-fA-F]+(-[0-9a-fA-F]+)+$`)

// Kind classifies a resolution outcome.
type Kind int

// Outcome kinds.
const (
	NotFound Kind = iota
	Services
	Scene
	Ambiguous
)

func (k Kind) String() string {
	switch k {
	case Services:
		return "services"
	case Scene:
		return "scene"
	case Ambiguous:
		return "ambiguous"
	default:
		return "not_found"
	}
}

// Outcome is the result of Resolve. Services holds the resolved services
// for Services and the candidates for Ambiguous; Scene is set for Scene;
// Query is the original query.
type Outcome struct {
	Kind     Kind
	Services []home.Service
	Scene    home.Scene
	Query    string
}

// Names returns the names of the outcome's services.
func (o Outcome) Names() []string {
	names := make([]string, len(o.Services))
	for i, s := range o.Services {
		names[i] = s.Name
	}
	return names
}

// Resolve resolves query against the snapshot and the user's groups.
// A nil snapshot resolves nothing.
func Resolve(query string, snap *home.Snapshot, groups []home.DeviceGroup) Outcome {
	q := strings.TrimSpace(query)
	if snap == nil || q == "" {
		return Outcome{Kind: NotFound, Query: query}
	}

	stages := []func(string, *home.Snapshot, []home.DeviceGroup) (Outcome, bool){
		byIdentifier,
		byScene,
		byGroup,
		byRoomDevice,
	}
	for _, stage := range stages {
		if out, ok := stage(q, snap, groups); ok {
			out.Query = query
			return out
		}
	}
	return Outcome{Kind: NotFound, Query: query}
}

func byIdentifier(q string, snap *home.Snapshot, _ []home.DeviceGroup) (Outcome, bool) {
	if !identifierPattern.MatchString(q) {
		return Outcome{}, false
	}
	for _, svc := range snap.Services() {
		if strings.EqualFold(svc.ID, q) {
			return Outcome{Kind: Services, Services: []home.Service{svc}}, true
		}
	}
	for _, sc := range snap.Scenes {
		if strings.EqualFold(sc.ID, q) {
			return Outcome{Kind: Scene, Scene: sc}, true
		}
	}
	return Outcome{}, false
}

// byScene matches scene names exactly, then accepts a single substring hit.
// Several substring hits fall through to later stages rather than reporting
// ambiguity.
func byScene(q string, snap *home.Snapshot, _ []home.DeviceGroup) (Outcome, bool) {
	name, _ := trimPrefixFold(q, scenePrefix)
	if name == "" {
		return Outcome{}, false
	}

	for _, sc := range snap.Scenes {
		if home.SameName(sc.Name, name) {
			return Outcome{Kind: Scene, Scene: sc}, true
		}
	}
	var hit *home.Scene
	for i := range snap.Scenes {
		if home.ContainsName(snap.Scenes[i].Name, name) {
			if hit != nil {
				return Outcome{}, false
			}
			hit = &snap.Scenes[i]
		}
	}
	if hit == nil {
		return Outcome{}, false
	}
	return Outcome{Kind: Scene, Scene: *hit}, true
}

func byGroup(q string, snap *home.Snapshot, groups []home.DeviceGroup) (Outcome, bool) {
	if len(groups) == 0 {
		return Outcome{}, false
	}

	var group *home.DeviceGroup
	if roomPart, rest, found := strings.Cut(q, "/"); found {
		name, prefixed := trimPrefixFold(rest, groupPrefix)
		if !prefixed || name == "" {
			return Outcome{}, false
		}
		group = roomScopedGroup(roomPart, name, snap, groups)
	} else {
		name, _ := trimPrefixFold(q, groupPrefix)
		group = namedGroup(name, groups)
	}
	if group == nil {
		return Outcome{}, false
	}

	services := group.ResolveServices(snap)
	if len(services) == 0 {
		return Outcome{}, false
	}
	return Outcome{Kind: Services, Services: services}, true
}

// namedGroup prefers a room-agnostic group when several share the name.
func namedGroup(name string, groups []home.DeviceGroup) *home.DeviceGroup {
	var first *home.DeviceGroup
	for i := range groups {
		g := &groups[i]
		if !home.SameName(g.Name, name) {
			continue
		}
		if g.RoomID == nil {
			return g
		}
		if first == nil {
			first = g
		}
	}
	return first
}

func roomScopedGroup(roomPart, name string, snap *home.Snapshot, groups []home.DeviceGroup) *home.DeviceGroup {
	rooms := matchRooms(roomPart, snap)
	for _, room := range rooms {
		for i := range groups {
			g := &groups[i]
			if g.RoomID != nil && *g.RoomID == room.ID && home.SameName(g.Name, name) {
				return g
			}
		}
	}
	if len(rooms) == 0 {
		return nil
	}
	for i := range groups {
		g := &groups[i]
		if g.RoomID == nil && home.SameName(g.Name, name) {
			return g
		}
	}
	return nil
}

// matchRooms returns rooms whose name equals or contains part. Exact
// matches come first.
func matchRooms(part string, snap *home.Snapshot) []home.Room {
	if strings.TrimSpace(part) == "" {
		return nil
	}
	var exact, partial []home.Room
	for _, r := range snap.Rooms {
		switch {
		case home.SameName(r.Name, part):
			exact = append(exact, r)
		case home.ContainsName(r.Name, part):
			partial = append(partial, r)
		}
	}
	return append(exact, partial...)
}

func byRoomDevice(q string, snap *home.Snapshot, _ []home.DeviceGroup) (Outcome, bool) {
	for _, sep := range []string{"/", " "} {
		parts := strings.Split(q, sep)
		if len(parts) != 2 {
			continue
		}
		if out, ok := roomDevice(parts[0], parts[1], snap); ok {
			return out, true
		}
	}
	return Outcome{}, false
}

func roomDevice(roomPart, devicePart string, snap *home.Snapshot) (Outcome, bool) {
	if strings.TrimSpace(devicePart) == "" {
		return Outcome{}, false
	}
	rooms := matchRooms(roomPart, snap)
	if len(rooms) == 0 {
		return Outcome{}, false
	}

	var candidates []home.Service
	for _, svc := range snap.Services() {
		if !inAnyRoom(svc, rooms) || !home.ContainsName(svc.Name, devicePart) {
			continue
		}
		candidates = append(candidates, svc)
	}

	switch len(candidates) {
	case 0:
		return Outcome{}, false
	case 1:
		return Outcome{Kind: Services, Services: candidates}, true
	}

	var exact []home.Service
	for _, svc := range candidates {
		if home.SameName(svc.Name, devicePart) {
			exact = append(exact, svc)
		}
	}
	if len(exact) == 1 {
		return Outcome{Kind: Services, Services: exact}, true
	}
	return Outcome{Kind: Ambiguous, Services: candidates}, true
}

func inAnyRoom(svc home.Service, rooms []home.Room) bool {
	for _, r := range rooms {
		if svc.InRoom(r.ID) {
			return true
		}
	}
	return false
}

// trimPrefixFold removes prefix case-insensitively and reports whether it
// was present.
func trimPrefixFold(s, prefix string) (string, bool) {
	if len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
		return strings.TrimSpace(s[len(prefix):]), true
	}
	return strings.TrimSpace(s), false
}
