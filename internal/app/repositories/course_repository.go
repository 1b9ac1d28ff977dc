package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/termsched/internal/app/models"
	"github.com/yigit/termsched/internal/db"
	"github.com/yigit/termsched/internal/pkg/apperrors"
	"github.com/yigit/termsched/internal/pkg/dberrors"
	"github.com/yigit/termsched/internal/pkg/logger"
)

const (
	courseCodeKey      = "courses_code_key"
	courseSectionsPkey = "course_sections_pkey"
)

var courseColumns = []string{
	"c.id", "c.code", "c.name", "c.credits", "c.owner_instructor_id", "c.semester_id",
	"c.schedule_template", "c.add_drop_deadline", "c.attendance_weight",
	"c.created_at", "c.updated_at",
}

// CourseRepository handles database operations for courses and their sections
type CourseRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewCourseRepository creates a new course repository
func NewCourseRepository(db *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{
		db: db,
		sb: statementBuilder(),
	}
}

// CreateCourse inserts the course and all of its sections in one transaction.
// Section occupancy always starts at zero.
func (r *CourseRepository) CreateCourse(ctx context.Context, course *models.Course) error {
	template, err := encodeSlots(course.ScheduleTemplate)
	if err != nil {
		return err
	}

	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		query, args, err := r.sb.Insert("courses").
			Columns("code", "name", "credits", "owner_instructor_id", "semester_id",
				"schedule_template", "add_drop_deadline", "attendance_weight").
			Values(course.Code, course.Name, course.Credits, course.OwnerInstructorID, course.SemesterID,
				template, course.Policies.AddDropDeadline, course.Policies.AttendanceWeight).
			Suffix("RETURNING id, created_at, updated_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build create course query: %w", err)
		}

		if err := tx.QueryRow(ctx, query, args...).Scan(&course.ID, &course.CreatedAt, &course.UpdatedAt); err != nil {
			if dberrors.IsDuplicateConstraintError(err, courseCodeKey) {
				return apperrors.ErrCourseAlreadyExists
			}
			return fmt.Errorf("error creating course: %w", err)
		}

		if len(course.Sections) == 0 {
			return nil
		}

		insert := r.sb.Insert("course_sections").
			Columns("course_id", "section_code", "instructor_id", "capacity", "occupied", "schedule", "position")
		for i := range course.Sections {
			s := &course.Sections[i]
			s.Occupied = 0
			schedule, err := encodeSlots(s.Schedule)
			if err != nil {
				return err
			}
			insert = insert.Values(course.ID, s.Code, s.InstructorID, s.Capacity, 0, schedule, i)
		}
		query, args, err = insert.ToSql()
		if err != nil {
			return fmt.Errorf("failed to build create sections query: %w", err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			if dberrors.IsDuplicateConstraintError(err, courseSectionsPkey) {
				return apperrors.NewValidationError("section identifiers must be unique within a course")
			}
			return fmt.Errorf("error creating sections: %w", err)
		}
		return nil
	})
}

// GetCourseByID retrieves a course with its sections
func (r *CourseRepository) GetCourseByID(ctx context.Context, id int64) (*models.Course, error) {
	query, args, err := r.sb.Select(courseColumns...).
		From("courses c").
		Where(squirrel.Eq{"c.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get course query: %w", err)
	}

	course, err := scanCourse(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCourseNotFound
		}
		return nil, fmt.Errorf("error retrieving course %d: %w", id, err)
	}

	sections, err := r.sectionsFor(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	course.Sections = sections[id]
	return course, nil
}

// ListCourses returns courses matching the filter ordered by code
func (r *CourseRepository) ListCourses(ctx context.Context, filter models.CourseFilter) ([]models.Course, error) {
	where := squirrel.And{}
	if filter.SemesterID != nil {
		where = append(where, squirrel.Eq{"c.semester_id": *filter.SemesterID})
	}
	if filter.OwnerInstructorID != nil {
		where = append(where, squirrel.Eq{"c.owner_instructor_id": *filter.OwnerInstructorID})
	}
	if filter.InstructorID != nil {
		where = append(where, squirrel.Or{
			squirrel.Eq{"c.owner_instructor_id": *filter.InstructorID},
			squirrel.Expr("EXISTS (SELECT 1 FROM course_sections s WHERE s.course_id = c.id AND s.instructor_id = ?)", *filter.InstructorID),
		})
	}
	if filter.IDs != nil {
		where = append(where, squirrel.Eq{"c.id": filter.IDs})
	}

	query, args, err := r.sb.Select(courseColumns...).
		From("courses c").
		Where(where).
		OrderBy("c.code").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list courses query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing courses: %w", err)
	}
	defer rows.Close()

	courses := []models.Course{}
	var ids []int64
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, *c)
		ids = append(ids, c.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return courses, nil
	}

	sections, err := r.sectionsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range courses {
		courses[i].Sections = sections[courses[i].ID]
	}
	return courses, nil
}

// bumpVersion advances updated_at strictly, so a regeneration that read the
// previous row can tell the course changed
var bumpVersion = squirrel.Expr("GREATEST(clock_timestamp(), updated_at + INTERVAL '1 microsecond')")

// UpdateSchedule applies a partial schedule edit in one transaction. The
// template column is only written when update.Template is non-nil.
func (r *CourseRepository) UpdateSchedule(ctx context.Context, courseID int64, update models.ScheduleUpdate) error {
	courseUpdate := r.sb.Update("courses").
		Set("updated_at", bumpVersion).
		Where(squirrel.Eq{"id": courseID})
	if update.Template != nil {
		encoded, err := encodeSlots(*update.Template)
		if err != nil {
			return err
		}
		courseUpdate = courseUpdate.Set("schedule_template", encoded)
	}

	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		query, args, err := courseUpdate.ToSql()
		if err != nil {
			return fmt.Errorf("failed to build update schedule query: %w", err)
		}
		tag, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("error updating course schedule: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.ErrCourseNotFound
		}

		for code, slots := range update.Sections {
			schedule, err := encodeSlots(slots)
			if err != nil {
				return err
			}
			query, args, err := r.sb.Update("course_sections").
				Set("schedule", schedule).
				Where(squirrel.Eq{"course_id": courseID, "section_code": code}).
				ToSql()
			if err != nil {
				return fmt.Errorf("failed to build update section schedule query: %w", err)
			}
			tag, err := tx.Exec(ctx, query, args...)
			if err != nil {
				return fmt.Errorf("error updating section %s schedule: %w", code, err)
			}
			if tag.RowsAffected() == 0 {
				return fmt.Errorf("section %q: %w", code, apperrors.ErrSectionNotFound)
			}
		}
		return nil
	})
}

// UpdateCourseDetails changes the non-schedule fields named in update
func (r *CourseRepository) UpdateCourseDetails(ctx context.Context, courseID int64, update models.CourseUpdate) error {
	builder := r.sb.Update("courses").
		Set("updated_at", bumpVersion).
		Where(squirrel.Eq{"id": courseID})
	if update.Name != nil {
		builder = builder.Set("name", *update.Name)
	}
	if update.Credits != nil {
		builder = builder.Set("credits", *update.Credits)
	}
	if update.Policies != nil {
		builder = builder.
			Set("add_drop_deadline", update.Policies.AddDropDeadline).
			Set("attendance_weight", update.Policies.AttendanceWeight)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update course query: %w", err)
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("error updating course %d: %w", courseID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCourseNotFound
	}
	return nil
}

// DeleteCourse removes a course. Sections, events and registrations go with
// it through ON DELETE CASCADE.
func (r *CourseRepository) DeleteCourse(ctx context.Context, id int64) error {
	query, args, err := r.sb.Delete("courses").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete course query: %w", err)
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("error deleting course %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCourseNotFound
	}
	return nil
}

func (r *CourseRepository) sectionsFor(ctx context.Context, courseIDs []int64) (map[int64][]models.Section, error) {
	query, args, err := r.sb.Select("course_id", "section_code", "instructor_id", "capacity", "occupied", "schedule").
		From("course_sections").
		Where(squirrel.Eq{"course_id": courseIDs}).
		OrderBy("course_id", "position", "section_code").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sections query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error loading sections: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]models.Section, len(courseIDs))
	for rows.Next() {
		var (
			courseID int64
			s        models.Section
			raw      []byte
		)
		if err := rows.Scan(&courseID, &s.Code, &s.InstructorID, &s.Capacity, &s.Occupied, &raw); err != nil {
			return nil, err
		}
		if s.Schedule, err = decodeSlots(raw); err != nil {
			logger.Error().Err(err).Int64("courseID", courseID).Str("section", s.Code).Msg("Corrupt section schedule")
			return nil, err
		}
		out[courseID] = append(out[courseID], s)
	}
	return out, rows.Err()
}

func scanCourse(row pgx.Row) (*models.Course, error) {
	var (
		c   models.Course
		raw []byte
	)
	err := row.Scan(
		&c.ID, &c.Code, &c.Name, &c.Credits, &c.OwnerInstructorID, &c.SemesterID,
		&raw, &c.Policies.AddDropDeadline, &c.Policies.AttendanceWeight,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if c.ScheduleTemplate, err = decodeSlots(raw); err != nil {
		return nil, err
	}
	return &c, nil
}
