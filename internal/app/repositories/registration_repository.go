package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/termsched/internal/app/models"
	"github.com/yigit/termsched/internal/pkg/apperrors"
	"github.com/yigit/termsched/internal/pkg/dberrors"
)

const registrationLiveKey = "registrations_live_uq"

var registrationColumns = []string{
	"id", "student_id", "course_id", "section_code", "semester_id", "action", "status",
	"reason", "requested_at", "decided_at", "decided_by",
}

// RegistrationRepository handles database operations for registrations
type RegistrationRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewRegistrationRepository creates a new registration repository
func NewRegistrationRepository(db *pgxpool.Pool) *RegistrationRepository {
	return &RegistrationRepository{
		db: db,
		sb: statementBuilder(),
	}
}

// CreateRegistration inserts a registration. The partial unique index on
// live registrations turns a concurrent duplicate into ErrAlreadyRegisteredOrPending.
func (r *RegistrationRepository) CreateRegistration(ctx context.Context, reg *models.Registration) error {
	query, args, err := r.sb.Insert("registrations").
		Columns(registrationColumns...).
		Values(reg.ID, reg.StudentID, reg.CourseID, reg.SectionCode, reg.SemesterID,
			string(reg.Action), string(reg.Status), reg.Reason, reg.RequestedAt, reg.DecidedAt, reg.DecidedBy).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create registration query: %w", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		if dberrors.IsDuplicateConstraintError(err, registrationLiveKey) {
			return apperrors.ErrAlreadyRegisteredOrPending
		}
		return fmt.Errorf("error creating registration: %w", err)
	}
	return nil
}

// GetRegistrationByID retrieves a registration by ID
func (r *RegistrationRepository) GetRegistrationByID(ctx context.Context, id uuid.UUID) (*models.Registration, error) {
	query, args, err := r.sb.Select(registrationColumns...).
		From("registrations").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get registration query: %w", err)
	}

	reg, err := scanRegistration(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("error retrieving registration %s: %w", id, err)
	}
	return reg, nil
}

// FindLive returns the pending or approved registration of the student for
// the course, or nil when there is none
func (r *RegistrationRepository) FindLive(ctx context.Context, studentID, courseID int64) (*models.Registration, error) {
	query, args, err := r.sb.Select(registrationColumns...).
		From("registrations").
		Where(squirrel.Eq{
			"student_id": studentID,
			"course_id":  courseID,
			"status":     []string{string(models.RegistrationPending), string(models.RegistrationApproved)},
		}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build find live registration query: %w", err)
	}

	reg, err := scanRegistration(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error looking up live registration: %w", err)
	}
	return reg, nil
}

// Transition performs a compare-and-set on the registration status
func (r *RegistrationRepository) Transition(ctx context.Context, id uuid.UUID, from, to models.RegistrationStatus, decidedBy int64, decidedAt time.Time, reason *string) (*models.Registration, error) {
	query, args, err := r.sb.Update("registrations").
		Set("status", string(to)).
		Set("decided_at", decidedAt).
		Set("decided_by", decidedBy).
		Set("reason", squirrel.Expr("COALESCE(?, reason)", reason)).
		Where(squirrel.Eq{"id": id, "status": string(from)}).
		Suffix("RETURNING " + strings.Join(registrationColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build transition query: %w", err)
	}

	reg, err := scanRegistration(r.db.QueryRow(ctx, query, args...))
	if err == nil {
		return reg, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("error transitioning registration %s: %w", id, err)
	}

	// no row matched: either it is gone or it already left the from state
	if _, err := r.GetRegistrationByID(ctx, id); err != nil {
		return nil, err
	}
	return nil, apperrors.ErrInvalidTransition
}

// ListRegistrations returns registrations matching filter, oldest request first
func (r *RegistrationRepository) ListRegistrations(ctx context.Context, filter models.RegistrationFilter) ([]models.Registration, error) {
	where := squirrel.And{}
	if filter.StudentID != nil {
		where = append(where, squirrel.Eq{"student_id": *filter.StudentID})
	}
	if filter.CourseIDs != nil {
		where = append(where, squirrel.Eq{"course_id": filter.CourseIDs})
	}
	if filter.SectionCode != "" {
		where = append(where, squirrel.Eq{"section_code": filter.SectionCode})
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		where = append(where, squirrel.Eq{"status": statuses})
	}

	query, args, err := r.sb.Select(registrationColumns...).
		From("registrations").
		Where(where).
		OrderBy("requested_at", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list registrations query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing registrations: %w", err)
	}
	defer rows.Close()

	regs := []models.Registration{}
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, *reg)
	}
	return regs, rows.Err()
}

func scanRegistration(row pgx.Row) (*models.Registration, error) {
	var reg models.Registration
	err := row.Scan(
		&reg.ID, &reg.StudentID, &reg.CourseID, &reg.SectionCode, &reg.SemesterID,
		&reg.Action, &reg.Status, &reg.Reason, &reg.RequestedAt, &reg.DecidedAt, &reg.DecidedBy,
	)
	if err != nil {
		return nil, err
	}
	return &reg, nil
}
