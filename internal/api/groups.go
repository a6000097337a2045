package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/homecast/internal/groups"
	"github.com/nerrad567/homecast/internal/home"
)

// maxGroupName bounds group names accepted over HTTP.
const maxGroupName = 128

// GroupStore persists user-defined device groups. Mutations must be visible
// to the executor's group source once they return.
type GroupStore interface {
	Get(ctx context.Context, id string) (*home.DeviceGroup, error)
	Create(ctx context.Context, g *home.DeviceGroup) error
	Update(ctx context.Context, g *home.DeviceGroup) error
	Delete(ctx context.Context, id string) error
	SetMembers(ctx context.Context, groupID string, serviceIDs []string) error
}

// groupRequest is the body of create and update requests.
type groupRequest struct {
	Name      string   `json:"name"`
	Icon      *string  `json:"icon"`
	RoomID    *string  `json:"room_id"`
	SortOrder int      `json:"sort_order"`
	Members   []string `json:"members"`
}

type membersRequest struct {
	Members []string `json:"members"`
}

// handleCreateGroup creates a device group.
//
// POST /groups
// Body: {"name": ..., "icon": ..., "room_id": ..., "sort_order": N, "members": [...]}
// Response: 201 Created with the stored group
func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeGroupRequest(w, r)
	if !ok {
		return
	}

	g := &home.DeviceGroup{
		Name:      req.Name,
		Icon:      req.Icon,
		RoomID:    req.RoomID,
		SortOrder: req.SortOrder,
		Members:   req.Members,
	}
	if err := s.groups.Create(r.Context(), g); err != nil {
		s.writeGroupError(w, err, "create")
		return
	}
	s.respondGroup(w, r, http.StatusCreated, g.ID)
}

// handleGetGroup returns one group by ID.
//
// GET /groups/{id}
func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	g, err := s.groups.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeGroupError(w, err, "get")
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// handleUpdateGroup replaces a group's fields and members. The slug is
// regenerated from the name.
//
// PUT /groups/{id}
func (s *Server) handleUpdateGroup(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeGroupRequest(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	g := &home.DeviceGroup{
		ID:        id,
		Name:      req.Name,
		Icon:      req.Icon,
		RoomID:    req.RoomID,
		SortOrder: req.SortOrder,
		Members:   req.Members,
	}
	if err := s.groups.Update(r.Context(), g); err != nil {
		s.writeGroupError(w, err, "update")
		return
	}
	s.respondGroup(w, r, http.StatusOK, id)
}

// handleSetGroupMembers replaces a group's member list.
//
// PUT /groups/{id}/members
// Body: {"members": ["<service id>", ...]}
func (s *Server) handleSetGroupMembers(w http.ResponseWriter, r *http.Request) {
	var req membersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	id := chi.URLParam(r, "id")
	if err := s.groups.SetMembers(r.Context(), id, req.Members); err != nil {
		s.writeGroupError(w, err, "set members of")
		return
	}
	s.respondGroup(w, r, http.StatusOK, id)
}

// handleDeleteGroup removes a group.
//
// DELETE /groups/{id}
// Response: 204 No Content
func (s *Server) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	if err := s.groups.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeGroupError(w, err, "delete")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) decodeGroupRequest(w http.ResponseWriter, r *http.Request) (groupRequest, bool) {
	var req groupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return req, false
	}
	if len(req.Name) > maxGroupName {
		writeBadRequest(w, "name must be at most 128 characters")
		return req, false
	}
	return req, true
}

// respondGroup re-reads the stored group so timestamps and filtered
// members are reported as persisted.
func (s *Server) respondGroup(w http.ResponseWriter, r *http.Request, status int, id string) {
	g, err := s.groups.Get(r.Context(), id)
	if err != nil {
		s.writeGroupError(w, err, "get")
		return
	}
	writeJSON(w, status, g)
}

func (s *Server) writeGroupError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, groups.ErrNotFound):
		writeNotFound(w, "device group not found")
	case errors.Is(err, groups.ErrExists):
		writeConflict(w, "a group with this name already exists")
	case errors.Is(err, groups.ErrInvalid):
		writeBadRequest(w, err.Error())
	default:
		s.logger.Error("device group request failed", "op", op, "error", err)
		writeInternalError(w, "failed to "+op+" device group")
	}
}
