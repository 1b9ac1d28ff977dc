package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/termsched/internal/app/models"
	"github.com/yigit/termsched/internal/db"
	"github.com/yigit/termsched/internal/pkg/apperrors"
)

var eventColumns = []string{
	"id", "type", "course_id", "section_code", "semester_id", "start_at", "end_at",
	"room_id", "status", "topic", "notes", "created_by",
}

// EventRepository handles database operations for timetable events
type EventRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{
		db: db,
		sb: statementBuilder(),
	}
}

// BulkInsert replaces the class events of scope with events in a single
// transaction. Concurrent calls for the same course are serialized by an
// advisory lock on the course ID. Any failure rolls the whole batch back.
func (r *EventRepository) BulkInsert(ctx context.Context, scope models.EventScope, events []models.TimetableEvent) (int, error) {
	var inserted int64

	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		if err := db.AdvisoryXactLock(ctx, tx, scope.CourseID); err != nil {
			return err
		}
		// FOR SHARE holds off schedule edits until this batch commits
		if err := r.checkCourseVersion(ctx, tx, scope); err != nil {
			return err
		}

		query, args, err := r.sb.Delete("timetable_events").
			Where(squirrel.Eq{
				"course_id":   scope.CourseID,
				"semester_id": scope.SemesterID,
				"type":        models.EventTypeClass,
			}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build delete events query: %w", err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("error clearing class events: %w", err)
		}

		if len(events) == 0 {
			return nil
		}

		inserted, err = tx.CopyFrom(ctx,
			pgx.Identifier{"timetable_events"},
			eventColumns,
			pgx.CopyFromSlice(len(events), func(i int) ([]any, error) {
				return eventValues(&events[i]), nil
			}),
		)
		if err != nil {
			return fmt.Errorf("error copying %d events: %w", len(events), err)
		}
		return nil
	})
	switch {
	case err == nil:
		return int(inserted), nil
	case errors.Is(err, apperrors.ErrCourseNotFound), errors.Is(err, apperrors.ErrScheduleChanged):
		return 0, err
	default:
		return 0, fmt.Errorf("%w: course %d: %w", apperrors.ErrPartialWriteFailure, scope.CourseID, err)
	}
}

func (r *EventRepository) checkCourseVersion(ctx context.Context, tx pgx.Tx, scope models.EventScope) error {
	query, args, err := r.sb.Select("updated_at").
		From("courses").
		Where(squirrel.Eq{"id": scope.CourseID}).
		Suffix("FOR SHARE").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build course version query: %w", err)
	}

	var current time.Time
	if err := tx.QueryRow(ctx, query, args...).Scan(&current); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrCourseNotFound
		}
		return fmt.Errorf("error reading course version: %w", err)
	}
	if !scope.CourseVersion.IsZero() && !current.Equal(scope.CourseVersion) {
		return apperrors.ErrScheduleChanged
	}
	return nil
}

// InsertEvent stores a single event
func (r *EventRepository) InsertEvent(ctx context.Context, event *models.TimetableEvent) error {
	query, args, err := r.sb.Insert("timetable_events").
		Columns(eventColumns...).
		Values(eventValues(event)...).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert event query: %w", err)
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("error inserting event: %w", err)
	}
	return nil
}

// QueryEvents returns events matching filter ordered by start time
func (r *EventRepository) QueryEvents(ctx context.Context, filter models.EventFilter) ([]models.TimetableEvent, error) {
	where := squirrel.And{}
	if filter.CourseIDs != nil {
		where = append(where, squirrel.Eq{"course_id": filter.CourseIDs})
	}
	if filter.SectionCode != "" {
		where = append(where, squirrel.Eq{"section_code": filter.SectionCode})
	}
	if filter.SemesterID != nil {
		where = append(where, squirrel.Eq{"semester_id": *filter.SemesterID})
	}
	if filter.From != nil {
		where = append(where, squirrel.GtOrEq{"start_at": *filter.From})
	}
	if filter.To != nil {
		where = append(where, squirrel.LtOrEq{"start_at": *filter.To})
	}
	if filter.Type != "" {
		where = append(where, squirrel.Eq{"type": filter.Type})
	}

	query, args, err := r.sb.Select(eventColumns...).
		From("timetable_events").
		Where(where).
		OrderBy("start_at", "section_code", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query events SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying events: %w", err)
	}
	defer rows.Close()

	events := []models.TimetableEvent{}
	for rows.Next() {
		var e models.TimetableEvent
		if err := rows.Scan(
			&e.ID, &e.Type, &e.CourseID, &e.SectionCode, &e.SemesterID, &e.StartAt, &e.EndAt,
			&e.RoomID, &e.Status, &e.Meta.Topic, &e.Meta.Notes, &e.Meta.CreatedBy,
		); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func eventValues(e *models.TimetableEvent) []any {
	return []any{
		e.ID, string(e.Type), e.CourseID, e.SectionCode, e.SemesterID, e.StartAt, e.EndAt,
		e.RoomID, e.Status, e.Meta.Topic, e.Meta.Notes, e.Meta.CreatedBy,
	}
}
