package application

import (
	"context"
	"fmt"
)

// RoomRepository exposes room lookups for the read-only directory views.
type RoomRepository interface {
	GetRoom(ctx context.Context, id int64) (Room, error)
	ListRooms(ctx context.Context) ([]Room, error)
}

// StudyGroupRepository exposes study-group lookups for the directory views.
type StudyGroupRepository interface {
	GetStudyGroup(ctx context.Context, id int64) (StudyGroup, error)
	ListStudyGroups(ctx context.Context) ([]StudyGroup, error)
}

// DirectoryService serves read-only room and study-group views. Room and
// group management happens out of band, typically at seed time.
type DirectoryService struct {
	rooms  RoomRepository
	groups StudyGroupRepository
}

// NewDirectoryService wires the directory repositories.
func NewDirectoryService(rooms RoomRepository, groups StudyGroupRepository) *DirectoryService {
	return &DirectoryService{rooms: rooms, groups: groups}
}

// GetRoom returns a single room by id.
func (s *DirectoryService) GetRoom(ctx context.Context, id int64) (Room, error) {
	if s == nil || s.rooms == nil {
		return Room{}, fmt.Errorf("room repository not configured")
	}

	room, err := s.rooms.GetRoom(ctx, id)
	if err != nil {
		return Room{}, mapReservationRepoError(err)
	}
	return room, nil
}

// ListRooms returns every bookable room, ordered by name.
func (s *DirectoryService) ListRooms(ctx context.Context) ([]Room, error) {
	if s == nil || s.rooms == nil {
		return nil, fmt.Errorf("room repository not configured")
	}

	rooms, err := s.rooms.ListRooms(ctx)
	if err != nil {
		return nil, mapReservationRepoError(err)
	}
	return rooms, nil
}

// GetStudyGroup returns a single study group by id.
func (s *DirectoryService) GetStudyGroup(ctx context.Context, id int64) (StudyGroup, error) {
	if s == nil || s.groups == nil {
		return StudyGroup{}, fmt.Errorf("study group repository not configured")
	}

	group, err := s.groups.GetStudyGroup(ctx, id)
	if err != nil {
		return StudyGroup{}, mapReservationRepoError(err)
	}
	return group, nil
}

// ListStudyGroups returns every registered study group, ordered by name.
func (s *DirectoryService) ListStudyGroups(ctx context.Context) ([]StudyGroup, error) {
	if s == nil || s.groups == nil {
		return nil, fmt.Errorf("study group repository not configured")
	}

	groups, err := s.groups.ListStudyGroups(ctx)
	if err != nil {
		return nil, mapReservationRepoError(err)
	}
	return groups, nil
}
