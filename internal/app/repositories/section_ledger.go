package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/termsched/internal/pkg/apperrors"
)

// SectionLedger maintains per-section occupancy with single-statement
// conditional updates, so concurrent reservations never overbook.
type SectionLedger struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewSectionLedger creates a new section ledger
func NewSectionLedger(db *pgxpool.Pool) *SectionLedger {
	return &SectionLedger{
		db: db,
		sb: statementBuilder(),
	}
}

// Reserve increments occupancy if a seat is free
func (l *SectionLedger) Reserve(ctx context.Context, courseID int64, sectionCode string) error {
	query, args, err := l.reserveQuery(courseID, sectionCode).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build reserve query: %w", err)
	}

	tag, err := l.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("error reserving seat in %d/%s: %w", courseID, sectionCode, err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	// nothing updated: full, or no such section
	if _, _, err := l.Occupancy(ctx, courseID, sectionCode); err != nil {
		return err
	}
	return apperrors.ErrCapacityExceeded
}

// Release decrements occupancy, floored at zero
func (l *SectionLedger) Release(ctx context.Context, courseID int64, sectionCode string) error {
	query, args, err := l.releaseQuery(courseID, sectionCode).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build release query: %w", err)
	}

	tag, err := l.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("error releasing seat in %d/%s: %w", courseID, sectionCode, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrSectionNotFound
	}
	return nil
}

// the capacity guard lives in the WHERE clause so the check and the
// increment happen in one statement
func (l *SectionLedger) reserveQuery(courseID int64, sectionCode string) squirrel.UpdateBuilder {
	return l.sb.Update("course_sections").
		Set("occupied", squirrel.Expr("occupied + 1")).
		Where(squirrel.Eq{"course_id": courseID, "section_code": sectionCode}).
		Where("occupied < capacity")
}

func (l *SectionLedger) releaseQuery(courseID int64, sectionCode string) squirrel.UpdateBuilder {
	return l.sb.Update("course_sections").
		Set("occupied", squirrel.Expr("GREATEST(occupied - 1, 0)")).
		Where(squirrel.Eq{"course_id": courseID, "section_code": sectionCode})
}

// Occupancy reads the current counters of a section
func (l *SectionLedger) Occupancy(ctx context.Context, courseID int64, sectionCode string) (int, int, error) {
	query, args, err := l.sb.Select("occupied", "capacity").
		From("course_sections").
		Where(squirrel.Eq{"course_id": courseID, "section_code": sectionCode}).
		ToSql()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to build occupancy query: %w", err)
	}

	var occupied, capacity int
	if err := l.db.QueryRow(ctx, query, args...).Scan(&occupied, &capacity); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, 0, apperrors.ErrSectionNotFound
		}
		return 0, 0, fmt.Errorf("error reading occupancy of %d/%s: %w", courseID, sectionCode, err)
	}
	return occupied, capacity, nil
}
