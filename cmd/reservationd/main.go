package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/room-reservations/internal/application"
	"github.com/example/room-reservations/internal/config"
	httptransport "github.com/example/room-reservations/internal/http"
	"github.com/example/room-reservations/internal/persistence"
	"github.com/example/room-reservations/internal/persistence/sqlite"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	pool, err := sqlite.NewConnectionPool(sqlite.Config{DSN: cfg.SQLiteDSN, BusyTimeout: cfg.BusyTimeout})
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := pool.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	now := time.Now

	reservationRepo := sqlite.NewReservationRepository(pool)
	roomRepo := sqlite.NewRoomRepository(pool)
	groupRepo := sqlite.NewStudyGroupRepository(pool)
	userRepo := sqlite.NewUserRepository(pool)

	reservations := newReservationRepositoryAdapter(reservationRepo)
	rooms := newRoomDirectoryAdapter(roomRepo)
	groups := newGroupDirectoryAdapter(groupRepo)
	memberships := newMembershipAdapter(userRepo)

	reservationService := application.NewReservationServiceWithLogger(reservations, rooms, groups, memberships, now, logger)
	directoryService := application.NewDirectoryService(newRoomRepositoryAdapter(roomRepo), newGroupRepositoryAdapter(groupRepo))
	userService := application.NewUserService(newUserRepositoryAdapter(userRepo), now)

	reservationHandler := httptransport.NewReservationHandler(reservationService, logger)
	directoryHandler := httptransport.NewDirectoryHandler(directoryService, logger)
	userHandler := httptransport.NewUserHandler(userService, reservationService, logger)

	handler := httptransport.NewRouter(httptransport.RouterConfig{
		Reservations: reservationHandler,
		Directory:    directoryHandler,
		Users:        userHandler,
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
		},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("reservation API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

// --- persistence to application adapters ---

type reservationRepositoryAdapter struct {
	repo persistence.ReservationRepository
}

func newReservationRepositoryAdapter(repo persistence.ReservationRepository) *reservationRepositoryAdapter {
	return &reservationRepositoryAdapter{repo: repo}
}

// The insert stores every field as given, so the committed row is returned
// without a follow-up read that could race a concurrent delete.
func (a *reservationRepositoryAdapter) CreateReservation(ctx context.Context, reservation application.Reservation) (application.Reservation, error) {
	stored := toPersistenceReservation(reservation)
	if err := a.repo.CreateReservation(ctx, stored); err != nil {
		return application.Reservation{}, err
	}
	return toApplicationReservation(stored), nil
}

func (a *reservationRepositoryAdapter) ReplaceReservation(ctx context.Context, oldID string, reservation application.Reservation) (application.Reservation, error) {
	stored := toPersistenceReservation(reservation)
	if err := a.repo.ReplaceReservation(ctx, oldID, stored); err != nil {
		return application.Reservation{}, err
	}
	return toApplicationReservation(stored), nil
}

func (a *reservationRepositoryAdapter) GetReservation(ctx context.Context, id string) (application.Reservation, error) {
	stored, err := a.repo.GetReservation(ctx, id)
	if err != nil {
		return application.Reservation{}, err
	}
	return toApplicationReservation(stored), nil
}

func (a *reservationRepositoryAdapter) DeleteReservation(ctx context.Context, id string) error {
	return a.repo.DeleteReservation(ctx, id)
}

func (a *reservationRepositoryAdapter) ListByRoom(ctx context.Context, roomID int64) ([]application.Reservation, error) {
	stored, err := a.repo.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return toApplicationReservations(stored), nil
}

func (a *reservationRepositoryAdapter) ListByRoomAndRange(ctx context.Context, roomID int64, start, end time.Time) ([]application.Reservation, error) {
	stored, err := a.repo.ListByRoomAndRange(ctx, roomID, start, end)
	if err != nil {
		return nil, err
	}
	return toApplicationReservations(stored), nil
}

func (a *reservationRepositoryAdapter) ListByGroupIDs(ctx context.Context, groupIDs []int64) ([]application.Reservation, error) {
	stored, err := a.repo.ListByGroupIDs(ctx, groupIDs)
	if err != nil {
		return nil, err
	}
	return toApplicationReservations(stored), nil
}

type roomDirectoryAdapter struct {
	repo persistence.RoomRepository
}

func newRoomDirectoryAdapter(repo persistence.RoomRepository) *roomDirectoryAdapter {
	return &roomDirectoryAdapter{repo: repo}
}

func (a *roomDirectoryAdapter) RoomExists(ctx context.Context, id int64) (bool, error) {
	if _, err := a.repo.GetRoom(ctx, id); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

type groupDirectoryAdapter struct {
	repo persistence.StudyGroupRepository
}

func newGroupDirectoryAdapter(repo persistence.StudyGroupRepository) *groupDirectoryAdapter {
	return &groupDirectoryAdapter{repo: repo}
}

func (a *groupDirectoryAdapter) GroupExists(ctx context.Context, id int64) (bool, error) {
	if _, err := a.repo.GetStudyGroup(ctx, id); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

type membershipAdapter struct {
	repo persistence.MembershipRepository
}

func newMembershipAdapter(repo persistence.MembershipRepository) *membershipAdapter {
	return &membershipAdapter{repo: repo}
}

func (a *membershipAdapter) GroupIDsForUser(ctx context.Context, userID int64) ([]int64, error) {
	return a.repo.GroupIDsForUser(ctx, userID)
}

type roomRepositoryAdapter struct {
	repo persistence.RoomRepository
}

func newRoomRepositoryAdapter(repo persistence.RoomRepository) *roomRepositoryAdapter {
	return &roomRepositoryAdapter{repo: repo}
}

func (a *roomRepositoryAdapter) GetRoom(ctx context.Context, id int64) (application.Room, error) {
	stored, err := a.repo.GetRoom(ctx, id)
	if err != nil {
		return application.Room{}, err
	}
	return toApplicationRoom(stored), nil
}

func (a *roomRepositoryAdapter) ListRooms(ctx context.Context) ([]application.Room, error) {
	stored, err := a.repo.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	rooms := make([]application.Room, 0, len(stored))
	for _, room := range stored {
		rooms = append(rooms, toApplicationRoom(room))
	}
	return rooms, nil
}

type groupRepositoryAdapter struct {
	repo persistence.StudyGroupRepository
}

func newGroupRepositoryAdapter(repo persistence.StudyGroupRepository) *groupRepositoryAdapter {
	return &groupRepositoryAdapter{repo: repo}
}

func (a *groupRepositoryAdapter) GetStudyGroup(ctx context.Context, id int64) (application.StudyGroup, error) {
	stored, err := a.repo.GetStudyGroup(ctx, id)
	if err != nil {
		return application.StudyGroup{}, err
	}
	return application.StudyGroup{ID: stored.ID, Name: stored.Name}, nil
}

func (a *groupRepositoryAdapter) ListStudyGroups(ctx context.Context) ([]application.StudyGroup, error) {
	stored, err := a.repo.ListStudyGroups(ctx)
	if err != nil {
		return nil, err
	}
	groups := make([]application.StudyGroup, 0, len(stored))
	for _, group := range stored {
		groups = append(groups, application.StudyGroup{ID: group.ID, Name: group.Name})
	}
	return groups, nil
}

type userRepositoryAdapter struct {
	repo persistence.UserRepository
}

func newUserRepositoryAdapter(repo persistence.UserRepository) *userRepositoryAdapter {
	return &userRepositoryAdapter{repo: repo}
}

func (a *userRepositoryAdapter) CreateUser(ctx context.Context, account application.UserAccount) (application.UserAccount, error) {
	stored, err := a.repo.CreateUser(ctx, toPersistenceUser(account))
	if err != nil {
		return application.UserAccount{}, err
	}
	return toApplicationUserAccount(stored), nil
}

func (a *userRepositoryAdapter) GetUser(ctx context.Context, id int64) (application.UserAccount, error) {
	stored, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return application.UserAccount{}, err
	}
	return toApplicationUserAccount(stored), nil
}

func (a *userRepositoryAdapter) GetUserByEmail(ctx context.Context, email string) (application.UserAccount, error) {
	stored, err := a.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return application.UserAccount{}, err
	}
	return toApplicationUserAccount(stored), nil
}

// --- model conversions ---

func toPersistenceReservation(reservation application.Reservation) persistence.Reservation {
	return persistence.Reservation{
		ID:        reservation.ID,
		RoomID:    reservation.RoomID,
		GroupID:   reservation.GroupID,
		Start:     reservation.Start,
		End:       reservation.End,
		Status:    reservation.Status,
		CreatedAt: reservation.CreatedAt,
		UpdatedAt: reservation.UpdatedAt,
	}
}

func toApplicationReservation(reservation persistence.Reservation) application.Reservation {
	return application.Reservation{
		ID:        reservation.ID,
		RoomID:    reservation.RoomID,
		GroupID:   reservation.GroupID,
		Start:     reservation.Start,
		End:       reservation.End,
		Status:    reservation.Status,
		CreatedAt: reservation.CreatedAt,
		UpdatedAt: reservation.UpdatedAt,
	}
}

func toApplicationReservations(stored []persistence.Reservation) []application.Reservation {
	reservations := make([]application.Reservation, 0, len(stored))
	for _, reservation := range stored {
		reservations = append(reservations, toApplicationReservation(reservation))
	}
	return reservations
}

func toApplicationRoom(room persistence.Room) application.Room {
	return application.Room{
		ID:       room.ID,
		Name:     room.Name,
		Location: room.Location,
		Capacity: room.Capacity,
	}
}

func toPersistenceUser(account application.UserAccount) persistence.User {
	return persistence.User{
		ID:           account.ID,
		Email:        account.Email,
		DisplayName:  account.DisplayName,
		PasswordHash: account.PasswordHash,
		CreatedAt:    account.CreatedAt,
		UpdatedAt:    account.UpdatedAt,
	}
}

func toApplicationUserAccount(user persistence.User) application.UserAccount {
	return application.UserAccount{
		User: application.User{
			ID:          user.ID,
			Email:       user.Email,
			DisplayName: user.DisplayName,
			CreatedAt:   user.CreatedAt,
			UpdatedAt:   user.UpdatedAt,
		},
		PasswordHash: user.PasswordHash,
	}
}
