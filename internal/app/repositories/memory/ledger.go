package memory

import (
	"context"

	"github.com/yigit/termsched/internal/pkg/apperrors"
)

func (db *DB) Reserve(_ context.Context, courseID int64, sectionCode string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	s, ok := db.sections[sectionKey{courseID, sectionCode}]
	if !ok {
		return apperrors.ErrSectionNotFound
	}
	if s.Occupied >= s.Capacity {
		return apperrors.ErrCapacityExceeded
	}
	s.Occupied++
	return nil
}

func (db *DB) Release(_ context.Context, courseID int64, sectionCode string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	s, ok := db.sections[sectionKey{courseID, sectionCode}]
	if !ok {
		return apperrors.ErrSectionNotFound
	}
	if s.Occupied > 0 {
		s.Occupied--
	}
	return nil
}

func (db *DB) Occupancy(_ context.Context, courseID int64, sectionCode string) (int, int, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	s, ok := db.sections[sectionKey{courseID, sectionCode}]
	if !ok {
		return 0, 0, apperrors.ErrSectionNotFound
	}
	return s.Occupied, s.Capacity, nil
}
