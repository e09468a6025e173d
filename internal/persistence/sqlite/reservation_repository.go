package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/room-reservations/internal/persistence"
)

// ReservationRepository implements persistence.ReservationRepository using
// SQLite. Overlap checks and the writes that depend on them share a single
// transaction, so racing writers for the same room are serialized by the
// database and the loser observes the winner's row.
type ReservationRepository struct {
	pool *ConnectionPool
}

// NewReservationRepository creates a SQLite-backed reservation repository.
func NewReservationRepository(pool *ConnectionPool) *ReservationRepository {
	return &ReservationRepository{pool: pool}
}

const reservationColumns = "id, room_id, group_id, start_ns, end_ns, status, created_at, updated_at"

// CreateReservation inserts the reservation unless an active reservation for
// the same room overlaps its range.
func (r *ReservationRepository) CreateReservation(ctx context.Context, reservation persistence.Reservation) error {
	if reservation.ID == "" {
		return persistence.ErrConstraintViolation
	}
	if !reservation.Start.Before(reservation.End) {
		return persistence.ErrConstraintViolation
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		if err := overlapCheckTx(tx, reservation.RoomID, reservation.Start, reservation.End); err != nil {
			return err
		}
		return insertReservationTx(tx, reservation)
	})
}

// ReplaceReservation deletes the reservation identified by oldID and inserts
// the replacement in one transaction. The overlap check runs after the delete
// so the replacement never conflicts with the row it replaces.
func (r *ReservationRepository) ReplaceReservation(ctx context.Context, oldID string, reservation persistence.Reservation) error {
	if reservation.ID == "" {
		return persistence.ErrConstraintViolation
	}
	if !reservation.Start.Before(reservation.End) {
		return persistence.ErrConstraintViolation
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.Exec("DELETE FROM reservations WHERE id = ?", oldID)
		if err != nil {
			return mapSQLError(err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if affected == 0 {
			return persistence.ErrNotFound
		}

		if err := overlapCheckTx(tx, reservation.RoomID, reservation.Start, reservation.End); err != nil {
			return err
		}
		return insertReservationTx(tx, reservation)
	})
}

// GetReservation retrieves a reservation by its derived id.
func (r *ReservationRepository) GetReservation(ctx context.Context, id string) (persistence.Reservation, error) {
	if id == "" {
		return persistence.Reservation{}, persistence.ErrNotFound
	}

	query := "SELECT " + reservationColumns + " FROM reservations WHERE id = ?"
	return scanReservation(r.pool.db.QueryRowContext(ctx, query, id))
}

// DeleteReservation removes a reservation by id. Deleting an absent id is
// reported as ErrNotFound, never silently ignored.
func (r *ReservationRepository) DeleteReservation(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := r.pool.db.ExecContext(ctx, "DELETE FROM reservations WHERE id = ?", id)
	if err != nil {
		return mapSQLError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// FindOverlapping returns the first active reservation for the room whose
// range overlaps [start, end).
func (r *ReservationRepository) FindOverlapping(ctx context.Context, roomID int64, start, end time.Time) (persistence.Reservation, error) {
	query := "SELECT " + reservationColumns + ` FROM reservations
		WHERE room_id = ? AND status = ? AND start_ns < ? AND end_ns > ?
		ORDER BY start_ns ASC LIMIT 1`
	row := r.pool.db.QueryRowContext(ctx, query, roomID, persistence.StatusActive, end.UTC().UnixNano(), start.UTC().UnixNano())
	return scanReservation(row)
}

// ListByRoom returns all active reservations for a room ordered by start time.
func (r *ReservationRepository) ListByRoom(ctx context.Context, roomID int64) ([]persistence.Reservation, error) {
	query := "SELECT " + reservationColumns + ` FROM reservations
		WHERE room_id = ? AND status = ?
		ORDER BY start_ns ASC, id ASC`
	return r.queryReservations(ctx, query, roomID, persistence.StatusActive)
}

// ListByRoomAndRange returns active reservations for a room overlapping the
// half-open query window.
func (r *ReservationRepository) ListByRoomAndRange(ctx context.Context, roomID int64, start, end time.Time) ([]persistence.Reservation, error) {
	query := "SELECT " + reservationColumns + ` FROM reservations
		WHERE room_id = ? AND status = ? AND start_ns < ? AND end_ns > ?
		ORDER BY start_ns ASC, id ASC`
	return r.queryReservations(ctx, query, roomID, persistence.StatusActive, end.UTC().UnixNano(), start.UTC().UnixNano())
}

// ListByGroupIDs returns active reservations booked by any of the groups.
func (r *ReservationRepository) ListByGroupIDs(ctx context.Context, groupIDs []int64) ([]persistence.Reservation, error) {
	if len(groupIDs) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(groupIDs))
	args := make([]any, 0, len(groupIDs)+1)
	for i, groupID := range groupIDs {
		placeholders[i] = "?"
		args = append(args, groupID)
	}
	args = append(args, persistence.StatusActive)

	query := "SELECT " + reservationColumns + ` FROM reservations
		WHERE group_id IN (` + strings.Join(placeholders, ",") + `) AND status = ?
		ORDER BY start_ns ASC, id ASC`
	return r.queryReservations(ctx, query, args...)
}

func (r *ReservationRepository) queryReservations(ctx context.Context, query string, args ...any) ([]persistence.Reservation, error) {
	rows, err := r.pool.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapSQLError(err)
	}
	defer rows.Close()

	var reservations []persistence.Reservation
	for rows.Next() {
		reservation, err := scanReservationRow(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, reservation)
	}
	if err := rows.Err(); err != nil {
		return nil, mapSQLError(err)
	}
	return reservations, nil
}

func overlapCheckTx(tx *sql.Tx, roomID int64, start, end time.Time) error {
	var existingID string
	err := tx.QueryRow(
		`SELECT id FROM reservations
			WHERE room_id = ? AND status = ? AND start_ns < ? AND end_ns > ?
			LIMIT 1`,
		roomID, persistence.StatusActive, end.UTC().UnixNano(), start.UTC().UnixNano(),
	).Scan(&existingID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return mapSQLError(err)
	}
	return persistence.ErrConflict
}

func insertReservationTx(tx *sql.Tx, reservation persistence.Reservation) error {
	_, err := tx.Exec(
		`INSERT INTO reservations (id, room_id, group_id, start_ns, end_ns, status, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		reservation.ID,
		reservation.RoomID,
		reservation.GroupID,
		reservation.Start.UTC().UnixNano(),
		reservation.End.UTC().UnixNano(),
		reservation.Status,
		reservation.CreatedAt.UTC().UnixNano(),
		reservation.UpdatedAt.UTC().UnixNano(),
	)
	return mapSQLError(err)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservation(row *sql.Row) (persistence.Reservation, error) {
	reservation, err := scanReservationRow(row)
	if err != nil {
		return persistence.Reservation{}, err
	}
	return reservation, nil
}

func scanReservationRow(row rowScanner) (persistence.Reservation, error) {
	var reservation persistence.Reservation
	var startNs, endNs, createdNs, updatedNs int64

	err := row.Scan(
		&reservation.ID,
		&reservation.RoomID,
		&reservation.GroupID,
		&startNs,
		&endNs,
		&reservation.Status,
		&createdNs,
		&updatedNs,
	)
	if err != nil {
		return persistence.Reservation{}, mapSQLError(err)
	}

	reservation.Start = time.Unix(0, startNs).UTC()
	reservation.End = time.Unix(0, endNs).UTC()
	reservation.CreatedAt = time.Unix(0, createdNs).UTC()
	reservation.UpdatedAt = time.Unix(0, updatedNs).UTC()
	return reservation, nil
}
