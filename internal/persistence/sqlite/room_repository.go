package sqlite

import (
	"context"
	"time"

	"github.com/example/room-reservations/internal/persistence"
)

// RoomRepository implements persistence.RoomRepository using SQLite.
type RoomRepository struct {
	pool *ConnectionPool
}

// NewRoomRepository creates a SQLite-backed room repository.
func NewRoomRepository(pool *ConnectionPool) *RoomRepository {
	return &RoomRepository{pool: pool}
}

// CreateRoom inserts a room and returns it with its assigned id.
func (r *RoomRepository) CreateRoom(ctx context.Context, room persistence.Room) (persistence.Room, error) {
	now := time.Now().UTC()
	room.CreatedAt = now
	room.UpdatedAt = now

	result, err := r.pool.db.ExecContext(ctx,
		"INSERT INTO rooms (name, location, capacity, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		room.Name, room.Location, room.Capacity, now.UnixNano(), now.UnixNano(),
	)
	if err != nil {
		return persistence.Room{}, mapSQLError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return persistence.Room{}, mapSQLError(err)
	}
	room.ID = id
	return room, nil
}

// GetRoom retrieves a room by id.
func (r *RoomRepository) GetRoom(ctx context.Context, id int64) (persistence.Room, error) {
	var room persistence.Room
	var createdNs, updatedNs int64

	err := r.pool.db.QueryRowContext(ctx,
		"SELECT id, name, location, capacity, created_at, updated_at FROM rooms WHERE id = ?", id,
	).Scan(&room.ID, &room.Name, &room.Location, &room.Capacity, &createdNs, &updatedNs)
	if err != nil {
		return persistence.Room{}, mapSQLError(err)
	}

	room.CreatedAt = time.Unix(0, createdNs).UTC()
	room.UpdatedAt = time.Unix(0, updatedNs).UTC()
	return room, nil
}

// ListRooms returns all rooms ordered by name.
func (r *RoomRepository) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	rows, err := r.pool.db.QueryContext(ctx,
		"SELECT id, name, location, capacity, created_at, updated_at FROM rooms ORDER BY name ASC, id ASC")
	if err != nil {
		return nil, mapSQLError(err)
	}
	defer rows.Close()

	var rooms []persistence.Room
	for rows.Next() {
		var room persistence.Room
		var createdNs, updatedNs int64
		if err := rows.Scan(&room.ID, &room.Name, &room.Location, &room.Capacity, &createdNs, &updatedNs); err != nil {
			return nil, mapSQLError(err)
		}
		room.CreatedAt = time.Unix(0, createdNs).UTC()
		room.UpdatedAt = time.Unix(0, updatedNs).UTC()
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, mapSQLError(err)
	}
	return rooms, nil
}
