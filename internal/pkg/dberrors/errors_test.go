package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestConstraintMatchers(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505", ConstraintName: "registrations_live_uq"}
	check := &pgconn.PgError{Code: "23514", ConstraintName: "course_sections_occupied_check"}
	fk := &pgconn.PgError{Code: "23503", ConstraintName: "courses_semester_id_fkey"}

	assert.True(t, IsDuplicateConstraintError(fmt.Errorf("insert: %w", dup), "registrations_live_uq"))
	assert.False(t, IsDuplicateConstraintError(dup, "courses_code_key"))
	assert.False(t, IsDuplicateConstraintError(errors.New("boom"), "registrations_live_uq"))

	assert.True(t, IsCheckConstraintError(check, "course_sections_occupied_check"))
	assert.False(t, IsCheckConstraintError(dup, "course_sections_occupied_check"))

	assert.True(t, IsForeignKeyError(fk, "courses_semester_id_fkey"))
}
