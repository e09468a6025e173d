package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/example/room-reservations/internal/application"
	"github.com/example/room-reservations/internal/scheduler"
)

type reservationService interface {
	CreateReservation(ctx context.Context, params application.CreateReservationParams) (application.Reservation, error)
	GetByRoomAndID(ctx context.Context, roomID int64, reservationID string) (application.Reservation, error)
	ListByRoom(ctx context.Context, roomID int64) ([]application.Reservation, error)
	ListByRoomAndRange(ctx context.Context, params application.ListByRoomAndRangeParams) ([]application.Reservation, error)
	UpdateReservation(ctx context.Context, params application.UpdateReservationParams) (string, error)
	DeleteReservation(ctx context.Context, reservationID string) error
}

type ReservationHandler struct {
	service   reservationService
	responder responder
	logger    *slog.Logger
}

func NewReservationHandler(service reservationService, logger *slog.Logger) *ReservationHandler {
	return &ReservationHandler{service: service, responder: newResponder(logger), logger: defaultLogger(logger)}
}

// Create books a room for a study group. Room and group ids come from the
// request path; the body carries the requested time range.
func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	roomID, ok := roomIDFromRequest(r)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRoomID)
		return
	}
	groupID, ok := groupIDFromRequest(r)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidGroupID)
		return
	}

	var req reservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	if vErr := req.validate(); vErr.HasErrors() {
		h.responder.handleServiceError(r.Context(), w, vErr)
		return
	}

	reservation, err := h.service.CreateReservation(r.Context(), application.CreateReservationParams{
		RoomID:  roomID,
		GroupID: groupID,
		Start:   parseBoundary(req.StartTime),
		End:     parseBoundary(req.EndTime),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	handlerLogger(r.Context(), h.logger, "reservation", "create").
		InfoContext(r.Context(), "reservation created", "reservation_id", reservation.ID)
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toReservationDTO(reservation))
}

// Get returns a single reservation scoped to the room in the path.
func (h *ReservationHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	roomID, ok := roomIDFromRequest(r)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRoomID)
		return
	}
	reservationID, ok := reservationIDFromRequest(r)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidReservationID)
		return
	}

	reservation, err := h.service.GetByRoomAndID(r.Context(), roomID, reservationID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toReservationDTO(reservation))
}

// List returns the reservations for a room, optionally restricted to a
// half-open query window supplied via the startTime and endTime parameters.
func (h *ReservationHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	roomID, ok := roomIDFromRequest(r)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRoomID)
		return
	}

	reservations, err := h.listForRoom(r.Context(), roomID, r.URL.Query())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, listReservationsResponse{
		Reservations: toReservationDTOs(reservations),
	})
}

func (h *ReservationHandler) listForRoom(ctx context.Context, roomID int64, query url.Values) ([]application.Reservation, error) {
	startRaw := strings.TrimSpace(query.Get("startTime"))
	endRaw := strings.TrimSpace(query.Get("endTime"))
	if startRaw == "" && endRaw == "" {
		return h.service.ListByRoom(ctx, roomID)
	}

	vErr := &application.ValidationError{}
	start, ok := parseBoundaryChecked(startRaw)
	if !ok {
		vErr.Add("startTime", "startTime must use the yyyy-MM-dd HH:mm:ss format")
	}
	end, ok := parseBoundaryChecked(endRaw)
	if !ok {
		vErr.Add("endTime", "endTime must use the yyyy-MM-dd HH:mm:ss format")
	}
	if vErr.HasErrors() {
		return nil, vErr
	}

	return h.service.ListByRoomAndRange(ctx, application.ListByRoomAndRangeParams{
		RoomID: roomID,
		Start:  start,
		End:    end,
	})
}

// Update replaces a reservation. Because the id is derived from room and
// start time, the response carries the replacement's id.
func (h *ReservationHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	roomID, ok := roomIDFromRequest(r)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRoomID)
		return
	}
	reservationID, ok := reservationIDFromRequest(r)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidReservationID)
		return
	}

	var req updateReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	if vErr := req.reservationRequest.validate(); vErr.HasErrors() {
		h.responder.handleServiceError(r.Context(), w, vErr)
		return
	}

	newID, err := h.service.UpdateReservation(r.Context(), application.UpdateReservationParams{
		RoomID:        roomID,
		ReservationID: reservationID,
		GroupID:       req.GroupID,
		Start:         parseBoundary(req.StartTime),
		End:           parseBoundary(req.EndTime),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	handlerLogger(r.Context(), h.logger, "reservation", "update").
		InfoContext(r.Context(), "reservation replaced", "reservation_id", newID)
	h.responder.writeJSON(r.Context(), w, http.StatusOK, updateReservationResponse{ID: newID})
}

// Delete removes a reservation by id and returns 204 on success.
func (h *ReservationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	reservationID, ok := reservationIDFromRequest(r)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidReservationID)
		return
	}

	if err := h.service.DeleteReservation(r.Context(), reservationID); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func roomIDFromRequest(r *http.Request) (int64, bool) {
	raw, ok := RoomIDFromContext(r.Context())
	if !ok {
		return 0, false
	}
	return parsePathID(raw)
}

func groupIDFromRequest(r *http.Request) (int64, bool) {
	raw, ok := GroupIDFromContext(r.Context())
	if !ok {
		return 0, false
	}
	return parsePathID(raw)
}

func reservationIDFromRequest(r *http.Request) (string, bool) {
	raw, ok := ReservationIDFromContext(r.Context())
	if !ok || strings.TrimSpace(raw) == "" {
		return "", false
	}
	if _, _, err := scheduler.ParseReservationID(raw); err != nil {
		return "", false
	}
	return raw, true
}

func parsePathID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// parseBoundary parses a boundary timestamp, returning the zero time for
// missing or malformed values so validation can report the field.
func parseBoundary(value string) time.Time {
	ts, _ := parseBoundaryChecked(value)
	return ts
}

func parseBoundaryChecked(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	ts, err := time.ParseInLocation(scheduler.IDTimeLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

type reservationRequest struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

func (r reservationRequest) validate() *application.ValidationError {
	vErr := &application.ValidationError{}
	if _, ok := parseBoundaryChecked(r.StartTime); !ok {
		vErr.Add("startTime", "startTime must use the yyyy-MM-dd HH:mm:ss format")
	}
	if _, ok := parseBoundaryChecked(r.EndTime); !ok {
		vErr.Add("endTime", "endTime must use the yyyy-MM-dd HH:mm:ss format")
	}
	return vErr
}

type updateReservationRequest struct {
	reservationRequest
	GroupID int64 `json:"groupId"`
}

type updateReservationResponse struct {
	ID string `json:"id"`
}

type listReservationsResponse struct {
	Reservations []reservationDTO `json:"reservations"`
}

type reservationDTO struct {
	ID        string `json:"id"`
	RoomID    int64  `json:"roomId"`
	GroupID   int64  `json:"groupId"`
	Status    int    `json:"status"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

func toReservationDTO(reservation application.Reservation) reservationDTO {
	return reservationDTO{
		ID:        reservation.ID,
		RoomID:    reservation.RoomID,
		GroupID:   reservation.GroupID,
		Status:    reservation.Status,
		StartTime: reservation.Start.UTC().Format(scheduler.IDTimeLayout),
		EndTime:   reservation.End.UTC().Format(scheduler.IDTimeLayout),
	}
}

func toReservationDTOs(reservations []application.Reservation) []reservationDTO {
	out := make([]reservationDTO, 0, len(reservations))
	for _, reservation := range reservations {
		out = append(out, toReservationDTO(reservation))
	}
	return out
}
