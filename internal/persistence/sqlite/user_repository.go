package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/example/room-reservations/internal/persistence"
)

// UserRepository implements persistence.UserRepository and
// persistence.MembershipRepository using SQLite. Membership edges live next
// to the accounts they belong to.
type UserRepository struct {
	pool *ConnectionPool
}

// NewUserRepository creates a SQLite-backed user repository.
func NewUserRepository(pool *ConnectionPool) *UserRepository {
	return &UserRepository{pool: pool}
}

// CreateUser inserts a user and returns it with its assigned id. Emails are
// unique; a collision surfaces as ErrDuplicate.
func (r *UserRepository) CreateUser(ctx context.Context, user persistence.User) (persistence.User, error) {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	result, err := r.pool.db.ExecContext(ctx,
		"INSERT INTO users (email, display_name, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		strings.ToLower(user.Email), user.DisplayName, user.PasswordHash, now.UnixNano(), now.UnixNano(),
	)
	if err != nil {
		return persistence.User{}, mapSQLError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return persistence.User{}, mapSQLError(err)
	}
	user.ID = id
	return user, nil
}

// GetUser retrieves a user by id.
func (r *UserRepository) GetUser(ctx context.Context, id int64) (persistence.User, error) {
	row := r.pool.db.QueryRowContext(ctx,
		"SELECT id, email, display_name, password_hash, created_at, updated_at FROM users WHERE id = ?", id)
	return scanUser(row)
}

// GetUserByEmail retrieves a user by email address.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (persistence.User, error) {
	row := r.pool.db.QueryRowContext(ctx,
		"SELECT id, email, display_name, password_hash, created_at, updated_at FROM users WHERE email = ?",
		strings.ToLower(email))
	return scanUser(row)
}

// AddMember records a user's membership in a study group. Adding an existing
// edge surfaces as ErrDuplicate.
func (r *UserRepository) AddMember(ctx context.Context, membership persistence.UserGroup) error {
	_, err := r.pool.db.ExecContext(ctx,
		"INSERT INTO user_groups (user_id, group_id) VALUES (?, ?)",
		membership.UserID, membership.GroupID)
	return mapSQLError(err)
}

// GroupIDsForUser returns the ids of the study groups the user belongs to.
func (r *UserRepository) GroupIDsForUser(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := r.pool.db.QueryContext(ctx,
		"SELECT group_id FROM user_groups WHERE user_id = ? ORDER BY group_id ASC", userID)
	if err != nil {
		return nil, mapSQLError(err)
	}
	defer rows.Close()

	var groupIDs []int64
	for rows.Next() {
		var groupID int64
		if err := rows.Scan(&groupID); err != nil {
			return nil, mapSQLError(err)
		}
		groupIDs = append(groupIDs, groupID)
	}
	if err := rows.Err(); err != nil {
		return nil, mapSQLError(err)
	}
	return groupIDs, nil
}

func scanUser(row rowScanner) (persistence.User, error) {
	var user persistence.User
	var createdNs, updatedNs int64

	err := row.Scan(&user.ID, &user.Email, &user.DisplayName, &user.PasswordHash, &createdNs, &updatedNs)
	if err != nil {
		return persistence.User{}, mapSQLError(err)
	}

	user.CreatedAt = time.Unix(0, createdNs).UTC()
	user.UpdatedAt = time.Unix(0, updatedNs).UTC()
	return user, nil
}
