package memory

import (
	"context"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/yigit/termsched/internal/app/models"
	"github.com/yigit/termsched/internal/pkg/apperrors"
)

func cloneRegistration(r *models.Registration) *models.Registration {
	out := *r
	if r.Reason != nil {
		v := *r.Reason
		out.Reason = &v
	}
	if r.DecidedAt != nil {
		v := *r.DecidedAt
		out.DecidedAt = &v
	}
	if r.DecidedBy != nil {
		v := *r.DecidedBy
		out.DecidedBy = &v
	}
	return &out
}

func (db *DB) CreateRegistration(_ context.Context, reg *models.Registration) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if reg.Status.Live() && db.liveLocked(reg.StudentID, reg.CourseID) != nil {
		return apperrors.ErrAlreadyRegisteredOrPending
	}
	if _, dup := db.registrations[reg.ID]; dup {
		return apperrors.NewConflictError("registration already exists")
	}
	db.registrations[reg.ID] = cloneRegistration(reg)
	return nil
}

func (db *DB) GetRegistrationByID(_ context.Context, id uuid.UUID) (*models.Registration, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	r, ok := db.registrations[id]
	if !ok {
		return nil, apperrors.ErrRegistrationNotFound
	}
	return cloneRegistration(r), nil
}

func (db *DB) FindLive(_ context.Context, studentID, courseID int64) (*models.Registration, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if r := db.liveLocked(studentID, courseID); r != nil {
		return cloneRegistration(r), nil
	}
	return nil, nil
}

func (db *DB) liveLocked(studentID, courseID int64) *models.Registration {
	for _, r := range db.registrations {
		if r.StudentID == studentID && r.CourseID == courseID && r.Status.Live() {
			return r
		}
	}
	return nil
}

func (db *DB) Transition(_ context.Context, id uuid.UUID, from, to models.RegistrationStatus, decidedBy int64, decidedAt time.Time, reason *string) (*models.Registration, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	r, ok := db.registrations[id]
	if !ok {
		return nil, apperrors.ErrRegistrationNotFound
	}
	if r.Status != from {
		return nil, apperrors.ErrInvalidTransition
	}

	r.Status = to
	r.DecidedAt = &decidedAt
	r.DecidedBy = &decidedBy
	if reason != nil {
		v := *reason
		r.Reason = &v
	}
	return cloneRegistration(r), nil
}

func (db *DB) ListRegistrations(_ context.Context, f models.RegistrationFilter) ([]models.Registration, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	out := []models.Registration{}
	for _, r := range db.registrations {
		if f.StudentID != nil && r.StudentID != *f.StudentID {
			continue
		}
		if f.CourseIDs != nil && !slices.Contains(f.CourseIDs, r.CourseID) {
			continue
		}
		if f.SectionCode != "" && r.SectionCode != f.SectionCode {
			continue
		}
		if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, r.Status) {
			continue
		}
		out = append(out, *cloneRegistration(r))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].RequestedAt.Equal(out[j].RequestedAt) {
			return out[i].RequestedAt.Before(out[j].RequestedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}
