package sqlite

import (
	"context"
	"time"

	"github.com/example/room-reservations/internal/persistence"
)

// StudyGroupRepository implements persistence.StudyGroupRepository using SQLite.
type StudyGroupRepository struct {
	pool *ConnectionPool
}

// NewStudyGroupRepository creates a SQLite-backed study-group repository.
func NewStudyGroupRepository(pool *ConnectionPool) *StudyGroupRepository {
	return &StudyGroupRepository{pool: pool}
}

// CreateStudyGroup inserts a study group and returns it with its assigned id.
func (r *StudyGroupRepository) CreateStudyGroup(ctx context.Context, group persistence.StudyGroup) (persistence.StudyGroup, error) {
	now := time.Now().UTC()
	group.CreatedAt = now
	group.UpdatedAt = now

	result, err := r.pool.db.ExecContext(ctx,
		"INSERT INTO study_groups (name, created_at, updated_at) VALUES (?, ?, ?)",
		group.Name, now.UnixNano(), now.UnixNano(),
	)
	if err != nil {
		return persistence.StudyGroup{}, mapSQLError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return persistence.StudyGroup{}, mapSQLError(err)
	}
	group.ID = id
	return group, nil
}

// GetStudyGroup retrieves a study group by id.
func (r *StudyGroupRepository) GetStudyGroup(ctx context.Context, id int64) (persistence.StudyGroup, error) {
	var group persistence.StudyGroup
	var createdNs, updatedNs int64

	err := r.pool.db.QueryRowContext(ctx,
		"SELECT id, name, created_at, updated_at FROM study_groups WHERE id = ?", id,
	).Scan(&group.ID, &group.Name, &createdNs, &updatedNs)
	if err != nil {
		return persistence.StudyGroup{}, mapSQLError(err)
	}

	group.CreatedAt = time.Unix(0, createdNs).UTC()
	group.UpdatedAt = time.Unix(0, updatedNs).UTC()
	return group, nil
}

// ListStudyGroups returns all study groups ordered by name.
func (r *StudyGroupRepository) ListStudyGroups(ctx context.Context) ([]persistence.StudyGroup, error) {
	rows, err := r.pool.db.QueryContext(ctx,
		"SELECT id, name, created_at, updated_at FROM study_groups ORDER BY name ASC, id ASC")
	if err != nil {
		return nil, mapSQLError(err)
	}
	defer rows.Close()

	var groups []persistence.StudyGroup
	for rows.Next() {
		var group persistence.StudyGroup
		var createdNs, updatedNs int64
		if err := rows.Scan(&group.ID, &group.Name, &createdNs, &updatedNs); err != nil {
			return nil, mapSQLError(err)
		}
		group.CreatedAt = time.Unix(0, createdNs).UTC()
		group.UpdatedAt = time.Unix(0, updatedNs).UTC()
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, mapSQLError(err)
	}
	return groups, nil
}
