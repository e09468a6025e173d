package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/example/room-reservations/internal/application"
)

type directoryService interface {
	GetRoom(ctx context.Context, id int64) (application.Room, error)
	ListRooms(ctx context.Context) ([]application.Room, error)
	ListStudyGroups(ctx context.Context) ([]application.StudyGroup, error)
}

// DirectoryHandler serves the read-only room and study-group catalog.
type DirectoryHandler struct {
	service   directoryService
	responder responder
}

func NewDirectoryHandler(service directoryService, logger *slog.Logger) *DirectoryHandler {
	return &DirectoryHandler{service: service, responder: newResponder(logger)}
}

func (h *DirectoryHandler) GetRoom(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	roomID, ok := roomIDFromRequest(r)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRoomID)
		return
	}

	room, err := h.service.GetRoom(r.Context(), roomID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toRoomDTO(room))
}

func (h *DirectoryHandler) ListRooms(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	rooms, err := h.service.ListRooms(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]roomDTO, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, toRoomDTO(room))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listRoomsResponse{Rooms: out})
}

func (h *DirectoryHandler) ListStudyGroups(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	groups, err := h.service.ListStudyGroups(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]studyGroupDTO, 0, len(groups))
	for _, group := range groups {
		out = append(out, studyGroupDTO{ID: group.ID, Name: group.Name})
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listStudyGroupsResponse{StudyGroups: out})
}

type roomDTO struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
	Capacity int    `json:"capacity,omitempty"`
}

func toRoomDTO(room application.Room) roomDTO {
	return roomDTO{
		ID:       room.ID,
		Name:     room.Name,
		Location: room.Location,
		Capacity: room.Capacity,
	}
}

type listRoomsResponse struct {
	Rooms []roomDTO `json:"rooms"`
}

type studyGroupDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type listStudyGroupsResponse struct {
	StudyGroups []studyGroupDTO `json:"studyGroups"`
}
