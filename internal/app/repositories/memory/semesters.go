package memory

import (
	"context"
	"sort"
	"time"

	"github.com/yigit/termsched/internal/app/models"
	"github.com/yigit/termsched/internal/pkg/apperrors"
)

func (db *DB) CreateSemester(_ context.Context, s *models.Semester) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, existing := range db.semesters {
		if existing.Name == s.Name {
			return apperrors.ErrSemesterAlreadyExists
		}
	}

	db.semesterSeq++
	s.ID = db.semesterSeq
	s.CreatedAt = time.Now()
	stored := *s
	db.semesters[s.ID] = &stored
	return nil
}

func (db *DB) GetSemesterByID(_ context.Context, id int64) (*models.Semester, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	s, ok := db.semesters[id]
	if !ok {
		return nil, apperrors.ErrSemesterNotFound
	}
	out := *s
	return &out, nil
}

func (db *DB) ListSemesters(_ context.Context) ([]models.Semester, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	out := make([]models.Semester, 0, len(db.semesters))
	for _, s := range db.semesters {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.After(out[j].StartDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (db *DB) UpdateSemester(_ context.Context, s *models.Semester) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	current, ok := db.semesters[s.ID]
	if !ok {
		return apperrors.ErrSemesterNotFound
	}
	for id, existing := range db.semesters {
		if id != s.ID && existing.Name == s.Name {
			return apperrors.ErrSemesterAlreadyExists
		}
	}
	s.CreatedAt = current.CreatedAt
	stored := *s
	db.semesters[s.ID] = &stored
	return nil
}

func (db *DB) DeleteSemester(_ context.Context, id int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.semesters[id]; !ok {
		return apperrors.ErrSemesterNotFound
	}
	delete(db.semesters, id)
	return nil
}
