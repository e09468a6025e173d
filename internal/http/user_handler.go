package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/example/room-reservations/internal/application"
	"github.com/example/room-reservations/internal/scheduler"
)

type userService interface {
	SignUp(ctx context.Context, params application.SignUpParams) (application.User, error)
	GetUser(ctx context.Context, id int64) (application.User, error)
}

type userReservationLister interface {
	ListByUser(ctx context.Context, userID int64) ([]application.Reservation, error)
}

type UserHandler struct {
	service      userService
	reservations userReservationLister
	responder    responder
	logger       *slog.Logger
}

func NewUserHandler(service userService, reservations userReservationLister, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		service:      service,
		reservations: reservations,
		responder:    newResponder(logger),
		logger:       defaultLogger(logger),
	}
}

// SignUp registers a new account.
func (h *UserHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req signUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	user, err := h.service.SignUp(r.Context(), application.SignUpParams{
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Password:    req.Password,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	handlerLogger(r.Context(), h.logger, "user", "sign_up").
		InfoContext(r.Context(), "user registered", "user_id", user.ID)
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toUserDTO(user))
}

// Get returns a user's public profile.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	userID, ok := userIDFromRequest(r)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidUserID)
		return
	}

	user, err := h.service.GetUser(r.Context(), userID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toUserDTO(user))
}

// ListReservations returns the reservations of every study group the user
// belongs to.
func (h *UserHandler) ListReservations(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.reservations == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	userID, ok := userIDFromRequest(r)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidUserID)
		return
	}

	reservations, err := h.reservations.ListByUser(r.Context(), userID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, listReservationsResponse{
		Reservations: toReservationDTOs(reservations),
	})
}

func userIDFromRequest(r *http.Request) (int64, bool) {
	raw, ok := UserIDFromContext(r.Context())
	if !ok {
		return 0, false
	}
	return parsePathID(raw)
}

type signUpRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Password    string `json:"password"`
}

type userDTO struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	CreatedAt   string `json:"createdAt"`
}

func toUserDTO(user application.User) userDTO {
	return userDTO{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		CreatedAt:   user.CreatedAt.UTC().Format(scheduler.IDTimeLayout),
	}
}
