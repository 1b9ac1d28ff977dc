package memory

import (
	"context"
	"slices"
	"sort"
	"time"

	"github.com/yigit/termsched/internal/app/models"
	"github.com/yigit/termsched/internal/pkg/apperrors"
)

func cloneRoom(r *models.Room) models.Room {
	out := *r
	out.Features = slices.Clone(r.Features)
	return out
}

func (db *DB) CreateRoom(_ context.Context, r *models.Room) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, existing := range db.rooms {
		if existing.Code == r.Code {
			return apperrors.ErrRoomAlreadyExists
		}
	}
	db.roomSeq++
	r.ID = db.roomSeq
	r.CreatedAt = time.Now()
	stored := cloneRoom(r)
	db.rooms[r.ID] = &stored
	return nil
}

func (db *DB) GetRoomByID(_ context.Context, id int64) (*models.Room, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	r, ok := db.rooms[id]
	if !ok {
		return nil, apperrors.ErrRoomNotFound
	}
	out := cloneRoom(r)
	return &out, nil
}

func (db *DB) ListRooms(_ context.Context) ([]models.Room, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	out := make([]models.Room, 0, len(db.rooms))
	for _, r := range db.rooms {
		out = append(out, cloneRoom(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}
