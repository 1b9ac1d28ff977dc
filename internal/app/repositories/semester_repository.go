package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/termsched/internal/app/models"
	"github.com/yigit/termsched/internal/pkg/apperrors"
	"github.com/yigit/termsched/internal/pkg/dberrors"
)

const semesterNameKey = "semesters_name_key"

var semesterColumns = []string{
	"id", "name", "start_date", "end_date", "timezone",
	"add_start", "add_end", "drop_start", "drop_end", "created_at",
}

// SemesterRepository handles database operations for semesters
type SemesterRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewSemesterRepository creates a new semester repository
func NewSemesterRepository(db *pgxpool.Pool) *SemesterRepository {
	return &SemesterRepository{
		db: db,
		sb: statementBuilder(),
	}
}

// CreateSemester inserts a semester and fills in its ID and CreatedAt
func (r *SemesterRepository) CreateSemester(ctx context.Context, s *models.Semester) error {
	query, args, err := r.sb.Insert("semesters").
		Columns("name", "start_date", "end_date", "timezone", "add_start", "add_end", "drop_start", "drop_end").
		Values(s.Name, s.StartDate, s.EndDate, s.Timezone,
			s.RegistrationWindows.AddStart, s.RegistrationWindows.AddEnd,
			s.RegistrationWindows.DropStart, s.RegistrationWindows.DropEnd).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create semester query: %w", err)
	}

	if err := r.db.QueryRow(ctx, query, args...).Scan(&s.ID, &s.CreatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, semesterNameKey) {
			return apperrors.ErrSemesterAlreadyExists
		}
		return fmt.Errorf("error creating semester: %w", err)
	}
	return nil
}

// GetSemesterByID retrieves a semester by ID
func (r *SemesterRepository) GetSemesterByID(ctx context.Context, id int64) (*models.Semester, error) {
	query, args, err := r.sb.Select(semesterColumns...).
		From("semesters").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get semester query: %w", err)
	}

	s, err := scanSemester(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSemesterNotFound
		}
		return nil, fmt.Errorf("error retrieving semester %d: %w", id, err)
	}
	return s, nil
}

// ListSemesters returns all semesters, most recent first
func (r *SemesterRepository) ListSemesters(ctx context.Context) ([]models.Semester, error) {
	query, args, err := r.sb.Select(semesterColumns...).
		From("semesters").
		OrderBy("start_date DESC", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list semesters query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing semesters: %w", err)
	}
	defer rows.Close()

	semesters := []models.Semester{}
	for rows.Next() {
		s, err := scanSemester(rows)
		if err != nil {
			return nil, err
		}
		semesters = append(semesters, *s)
	}
	return semesters, rows.Err()
}

// UpdateSemester overwrites the stored semester with s
func (r *SemesterRepository) UpdateSemester(ctx context.Context, s *models.Semester) error {
	query, args, err := r.sb.Update("semesters").
		SetMap(map[string]any{
			"name":       s.Name,
			"start_date": s.StartDate,
			"end_date":   s.EndDate,
			"timezone":   s.Timezone,
			"add_start":  s.RegistrationWindows.AddStart,
			"add_end":    s.RegistrationWindows.AddEnd,
			"drop_start": s.RegistrationWindows.DropStart,
			"drop_end":   s.RegistrationWindows.DropEnd,
		}).
		Where(squirrel.Eq{"id": s.ID}).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update semester query: %w", err)
	}

	if err := r.db.QueryRow(ctx, query, args...).Scan(&s.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrSemesterNotFound
		}
		if dberrors.IsDuplicateConstraintError(err, semesterNameKey) {
			return apperrors.ErrSemesterAlreadyExists
		}
		return fmt.Errorf("error updating semester %d: %w", s.ID, err)
	}
	return nil
}

// DeleteSemester removes a semester
func (r *SemesterRepository) DeleteSemester(ctx context.Context, id int64) error {
	query, args, err := r.sb.Delete("semesters").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete semester query: %w", err)
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("error deleting semester %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrSemesterNotFound
	}
	return nil
}

func scanSemester(row pgx.Row) (*models.Semester, error) {
	var s models.Semester
	err := row.Scan(
		&s.ID, &s.Name, &s.StartDate, &s.EndDate, &s.Timezone,
		&s.RegistrationWindows.AddStart, &s.RegistrationWindows.AddEnd,
		&s.RegistrationWindows.DropStart, &s.RegistrationWindows.DropEnd,
		&s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
