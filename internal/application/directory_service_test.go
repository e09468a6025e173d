package application

import (
	"context"
	"errors"
	"testing"

	"github.com/example/room-reservations/internal/persistence"
)

type roomRepoStub struct {
	rooms []Room
	err   error
}

func (r *roomRepoStub) GetRoom(ctx context.Context, id int64) (Room, error) {
	if r.err != nil {
		return Room{}, r.err
	}
	for _, room := range r.rooms {
		if room.ID == id {
			return room, nil
		}
	}
	return Room{}, persistence.ErrNotFound
}

func (r *roomRepoStub) ListRooms(ctx context.Context) ([]Room, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.rooms, nil
}

type groupRepoStub struct {
	groups []StudyGroup
	err    error
}

func (g *groupRepoStub) GetStudyGroup(ctx context.Context, id int64) (StudyGroup, error) {
	if g.err != nil {
		return StudyGroup{}, g.err
	}
	for _, group := range g.groups {
		if group.ID == id {
			return group, nil
		}
	}
	return StudyGroup{}, persistence.ErrNotFound
}

func (g *groupRepoStub) ListStudyGroups(ctx context.Context) ([]StudyGroup, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.groups, nil
}

func TestDirectoryService_GetRoom(t *testing.T) {
	t.Parallel()

	svc := NewDirectoryService(&roomRepoStub{rooms: []Room{{ID: 5, Name: "Quiet Room"}}}, &groupRepoStub{})

	room, err := svc.GetRoom(context.Background(), 5)
	if err != nil {
		t.Fatalf("GetRoom failed: %v", err)
	}
	if room.Name != "Quiet Room" {
		t.Fatalf("unexpected room: %+v", room)
	}

	if _, err := svc.GetRoom(context.Background(), 6); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDirectoryService_ListStudyGroups(t *testing.T) {
	t.Parallel()

	svc := NewDirectoryService(&roomRepoStub{}, &groupRepoStub{groups: []StudyGroup{{ID: 1, Name: "Algorithms"}, {ID: 2, Name: "Databases"}}})

	groups, err := svc.ListStudyGroups(context.Background())
	if err != nil {
		t.Fatalf("ListStudyGroups failed: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
}

func TestDirectoryService_StoreUnavailable(t *testing.T) {
	t.Parallel()

	svc := NewDirectoryService(&roomRepoStub{err: persistence.ErrUnavailable}, &groupRepoStub{})

	if _, err := svc.ListRooms(context.Background()); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}
