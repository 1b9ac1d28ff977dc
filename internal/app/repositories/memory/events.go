package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"github.com/google/uuid"
	"github.com/yigit/termsched/internal/app/models"
	"github.com/yigit/termsched/internal/pkg/apperrors"
)

// BulkInsertHook runs inside BulkInsert after validation and before any
// mutation; a non-nil error aborts the batch. Tests use it to simulate
// storage faults.
type BulkInsertHook func(scope models.EventScope, events []models.TimetableEvent) error

// SetBulkInsertHook installs h; nil removes it
func (db *DB) SetBulkInsertHook(h BulkInsertHook) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.bulkHook = h
}

func (db *DB) BulkInsert(_ context.Context, scope models.EventScope, events []models.TimetableEvent) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	fail := func(err error) (int, error) {
		return 0, fmt.Errorf("%w: course %d: %w", apperrors.ErrPartialWriteFailure, scope.CourseID, err)
	}

	c, ok := db.courses[scope.CourseID]
	if !ok {
		return 0, apperrors.ErrCourseNotFound
	}
	if !scope.CourseVersion.IsZero() && !c.UpdatedAt.Equal(scope.CourseVersion) {
		return 0, apperrors.ErrScheduleChanged
	}
	for i := range events {
		if _, dup := db.events[events[i].ID]; dup && !db.replaceable(events[i].ID, scope) {
			return fail(fmt.Errorf("duplicate event id %s", events[i].ID))
		}
	}
	if db.bulkHook != nil {
		if err := db.bulkHook(scope, events); err != nil {
			return fail(err)
		}
	}

	for id, e := range db.events {
		if inScope(e, scope) {
			delete(db.events, id)
		}
	}
	for i := range events {
		e := events[i]
		db.events[e.ID] = &e
	}
	return len(events), nil
}

// replaceable reports whether the stored event with id is about to be
// deleted by a batch for scope
func (db *DB) replaceable(id uuid.UUID, scope models.EventScope) bool {
	e, ok := db.events[id]
	return ok && inScope(e, scope)
}

func inScope(e *models.TimetableEvent, scope models.EventScope) bool {
	return e.Type == models.EventTypeClass && e.CourseID == scope.CourseID && e.SemesterID == scope.SemesterID
}

func (db *DB) InsertEvent(_ context.Context, event *models.TimetableEvent) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, dup := db.events[event.ID]; dup {
		return apperrors.NewConflictError("event already exists")
	}
	e := *event
	db.events[e.ID] = &e
	return nil
}

func (db *DB) QueryEvents(_ context.Context, f models.EventFilter) ([]models.TimetableEvent, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	out := []models.TimetableEvent{}
	for _, e := range db.events {
		if f.CourseIDs != nil && !slices.Contains(f.CourseIDs, e.CourseID) {
			continue
		}
		if f.SectionCode != "" && e.SectionCode != f.SectionCode {
			continue
		}
		if f.SemesterID != nil && e.SemesterID != *f.SemesterID {
			continue
		}
		if f.From != nil && e.StartAt.Before(*f.From) {
			continue
		}
		if f.To != nil && e.StartAt.After(*f.To) {
			continue
		}
		if f.Type != "" && e.Type != f.Type {
			continue
		}
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartAt.Equal(out[j].StartAt) {
			return out[i].StartAt.Before(out[j].StartAt)
		}
		if out[i].SectionCode != out[j].SectionCode {
			return out[i].SectionCode < out[j].SectionCode
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}
