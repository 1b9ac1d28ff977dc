package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/termsched/internal/app/calendar"
	"github.com/yigit/termsched/internal/app/models"
	"github.com/yigit/termsched/internal/pkg/apperrors"
)

func seedCourse(t *testing.T, db *DB, capacity int) *models.Course {
	t.Helper()
	c := &models.Course{
		Code:              "CS101",
		Name:              "Intro",
		OwnerInstructorID: 1,
		SemesterID:        1,
		Sections:          []models.Section{{Code: "A", Capacity: capacity}},
	}
	require.NoError(t, db.CreateCourse(context.Background(), c))
	return c
}

func TestCreateCourse_UniqueCodeAndDetachedCopies(t *testing.T) {
	ctx := context.Background()
	db := Open()
	c := seedCourse(t, db, 2)

	dup := &models.Course{Code: "CS101"}
	assert.ErrorIs(t, db.CreateCourse(ctx, dup), apperrors.ErrCourseAlreadyExists)

	got, err := db.GetCourseByID(ctx, c.ID)
	require.NoError(t, err)
	got.Sections[0].Capacity = 99

	again, err := db.GetCourseByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, again.Sections[0].Capacity)
}

func TestLedger_ReserveRelease(t *testing.T) {
	ctx := context.Background()
	db := Open()
	c := seedCourse(t, db, 1)

	require.NoError(t, db.Reserve(ctx, c.ID, "A"))
	assert.ErrorIs(t, db.Reserve(ctx, c.ID, "A"), apperrors.ErrCapacityExceeded)
	assert.ErrorIs(t, db.Reserve(ctx, c.ID, "Z"), apperrors.ErrSectionNotFound)

	require.NoError(t, db.Release(ctx, c.ID, "A"))
	require.NoError(t, db.Release(ctx, c.ID, "A"))
	occupied, capacity, err := db.Occupancy(ctx, c.ID, "A")
	require.NoError(t, err)
	assert.Equal(t, 0, occupied)
	assert.Equal(t, 1, capacity)
}

func TestLedger_ConcurrentReservesNeverOverbook(t *testing.T) {
	ctx := context.Background()
	db := Open()
	c := seedCourse(t, db, 5)

	var ok, full atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			switch err := db.Reserve(ctx, c.ID, "A"); {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, apperrors.ErrCapacityExceeded):
				full.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 5, ok.Load())
	assert.EqualValues(t, 45, full.Load())
	occupied, _, err := db.Occupancy(ctx, c.ID, "A")
	require.NoError(t, err)
	assert.Equal(t, 5, occupied)
}

func classEvent(courseID int64, day int) models.TimetableEvent {
	start := time.Date(2025, time.September, day, 8, 0, 0, 0, time.UTC)
	return models.TimetableEvent{
		ID: uuid.New(), Type: models.EventTypeClass, CourseID: courseID, SectionCode: "A",
		SemesterID: 1, StartAt: start, EndAt: start.Add(time.Hour), Status: models.EventStatusScheduled,
	}
}

func TestBulkInsert_ReplacesOnlyClassEventsOfScope(t *testing.T) {
	ctx := context.Background()
	db := Open()
	c := seedCourse(t, db, 1)
	scope := models.EventScope{CourseID: c.ID, SemesterID: 1}

	exam := classEvent(c.ID, 20)
	exam.Type = models.EventTypeExam
	require.NoError(t, db.InsertEvent(ctx, &exam))

	n, err := db.BulkInsert(ctx, scope, []models.TimetableEvent{classEvent(c.ID, 1), classEvent(c.ID, 8)})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = db.BulkInsert(ctx, scope, []models.TimetableEvent{classEvent(c.ID, 15)})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	all, err := db.QueryEvents(ctx, models.EventFilter{CourseIDs: []int64{c.ID}})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, 15, all[0].StartAt.Day())
	assert.Equal(t, models.EventTypeExam, all[1].Type)
}

func TestBulkInsert_FaultLeavesPreviousBatch(t *testing.T) {
	ctx := context.Background()
	db := Open()
	c := seedCourse(t, db, 1)
	scope := models.EventScope{CourseID: c.ID, SemesterID: 1}

	_, err := db.BulkInsert(ctx, scope, []models.TimetableEvent{classEvent(c.ID, 1)})
	require.NoError(t, err)

	db.SetBulkInsertHook(func(models.EventScope, []models.TimetableEvent) error { return errors.New("disk full") })
	_, err = db.BulkInsert(ctx, scope, []models.TimetableEvent{classEvent(c.ID, 8), classEvent(c.ID, 15)})
	assert.ErrorIs(t, err, apperrors.ErrPartialWriteFailure)
	assert.True(t, apperrors.IsRetryable(err))

	all, err := db.QueryEvents(ctx, models.EventFilter{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 1, all[0].StartAt.Day())
}

func TestQueryEvents_Filters(t *testing.T) {
	ctx := context.Background()
	db := Open()
	c := seedCourse(t, db, 1)
	_, err := db.BulkInsert(ctx, models.EventScope{CourseID: c.ID, SemesterID: 1},
		[]models.TimetableEvent{classEvent(c.ID, 1), classEvent(c.ID, 8), classEvent(c.ID, 15)})
	require.NoError(t, err)

	from := time.Date(2025, time.September, 5, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, time.September, 10, 0, 0, 0, 0, time.UTC)
	got, err := db.QueryEvents(ctx, models.EventFilter{From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 8, got[0].StartAt.Day())

	got, err = db.QueryEvents(ctx, models.EventFilter{CourseIDs: []int64{}})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRegistrations_LiveUniquenessAndTransition(t *testing.T) {
	ctx := context.Background()
	db := Open()

	reg := &models.Registration{ID: uuid.New(), StudentID: 7, CourseID: 1, SectionCode: "A", Status: models.RegistrationPending, Action: models.ActionAdd, RequestedAt: time.Now()}
	require.NoError(t, db.CreateRegistration(ctx, reg))

	second := *reg
	second.ID = uuid.New()
	assert.ErrorIs(t, db.CreateRegistration(ctx, &second), apperrors.ErrAlreadyRegisteredOrPending)

	got, err := db.Transition(ctx, reg.ID, models.RegistrationPending, models.RegistrationRejected, 1, time.Now(), nil)
	require.NoError(t, err)
	assert.Equal(t, models.RegistrationRejected, got.Status)
	require.NotNil(t, got.DecidedBy)
	assert.EqualValues(t, 1, *got.DecidedBy)

	_, err = db.Transition(ctx, reg.ID, models.RegistrationPending, models.RegistrationApproved, 1, time.Now(), nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
	_, err = db.Transition(ctx, uuid.New(), models.RegistrationPending, models.RegistrationApproved, 1, time.Now(), nil)
	assert.ErrorIs(t, err, apperrors.ErrRegistrationNotFound)

	// a rejected request no longer blocks a new one
	require.NoError(t, db.CreateRegistration(ctx, &second))
	live, err := db.FindLive(ctx, 7, 1)
	require.NoError(t, err)
	require.NotNil(t, live)
	assert.Equal(t, second.ID, live.ID)
}

func TestUpdateSchedule_UnknownSectionChangesNothing(t *testing.T) {
	ctx := context.Background()
	db := Open()
	c := seedCourse(t, db, 3)
	require.NoError(t, db.Reserve(ctx, c.ID, "A"))

	tmpl := []calendar.WeeklySlot{{DayOfWeek: 1, StartTime: 480, EndTime: 540}}
	err := db.UpdateSchedule(ctx, c.ID, models.ScheduleUpdate{Template: &tmpl, Sections: map[string][]calendar.WeeklySlot{"Z": tmpl}})
	assert.ErrorIs(t, err, apperrors.ErrSectionNotFound)

	got, err := db.GetCourseByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, got.ScheduleTemplate)

	require.NoError(t, db.UpdateSchedule(ctx, c.ID, models.ScheduleUpdate{Template: &tmpl, Sections: map[string][]calendar.WeeklySlot{"A": tmpl}}))
	got, err = db.GetCourseByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, tmpl, got.ScheduleTemplate)
	assert.Equal(t, tmpl, got.Sections[0].Schedule)
	assert.Equal(t, 1, got.Sections[0].Occupied)
}

func TestUpdateSchedule_AbsentTemplateIsKept(t *testing.T) {
	ctx := context.Background()
	db := Open()
	c := seedCourse(t, db, 3)

	tmpl := []calendar.WeeklySlot{{DayOfWeek: 1, StartTime: 480, EndTime: 540}}
	require.NoError(t, db.UpdateSchedule(ctx, c.ID, models.ScheduleUpdate{Template: &tmpl}))

	override := []calendar.WeeklySlot{{DayOfWeek: 2, StartTime: 540, EndTime: 600}}
	require.NoError(t, db.UpdateSchedule(ctx, c.ID, models.ScheduleUpdate{Sections: map[string][]calendar.WeeklySlot{"A": override}}))
	got, err := db.GetCourseByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, tmpl, got.ScheduleTemplate)
	assert.Equal(t, override, got.Sections[0].Schedule)

	cleared := []calendar.WeeklySlot{}
	require.NoError(t, db.UpdateSchedule(ctx, c.ID, models.ScheduleUpdate{Template: &cleared}))
	got, err = db.GetCourseByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, got.ScheduleTemplate)
}

func TestBulkInsert_StaleVersionWritesNothing(t *testing.T) {
	ctx := context.Background()
	db := Open()
	c := seedCourse(t, db, 1)

	read, err := db.GetCourseByID(ctx, c.ID)
	require.NoError(t, err)
	name := "Renamed"
	require.NoError(t, db.UpdateCourseDetails(ctx, c.ID, models.CourseUpdate{Name: &name}))

	stale := models.EventScope{CourseID: c.ID, SemesterID: 1, CourseVersion: read.UpdatedAt}
	_, err = db.BulkInsert(ctx, stale, []models.TimetableEvent{classEvent(c.ID, 1)})
	assert.ErrorIs(t, err, apperrors.ErrScheduleChanged)

	fresh, err := db.GetCourseByID(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, fresh.UpdatedAt.After(read.UpdatedAt))
	n, err := db.BulkInsert(ctx, models.EventScope{CourseID: c.ID, SemesterID: 1, CourseVersion: fresh.UpdatedAt}, []models.TimetableEvent{classEvent(c.ID, 1)})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestBulkInsert_UnknownCourseIsNotRetryable(t *testing.T) {
	db := Open()
	_, err := db.BulkInsert(context.Background(), models.EventScope{CourseID: 42, SemesterID: 1}, nil)
	assert.ErrorIs(t, err, apperrors.ErrCourseNotFound)
	assert.False(t, apperrors.IsRetryable(err))
}

func TestDeleteCourse_RemovesDependents(t *testing.T) {
	ctx := context.Background()
	db := Open()
	c := seedCourse(t, db, 2)

	_, err := db.BulkInsert(ctx, models.EventScope{CourseID: c.ID, SemesterID: 1}, []models.TimetableEvent{classEvent(c.ID, 1)})
	require.NoError(t, err)
	reg := models.Registration{ID: uuid.New(), StudentID: 5, CourseID: c.ID, SectionCode: "A", Status: models.RegistrationRejected}
	require.NoError(t, db.CreateRegistration(ctx, &reg))

	require.NoError(t, db.DeleteCourse(ctx, c.ID))
	assert.ErrorIs(t, db.DeleteCourse(ctx, c.ID), apperrors.ErrCourseNotFound)

	events, err := db.QueryEvents(ctx, models.EventFilter{})
	require.NoError(t, err)
	assert.Empty(t, events)
	_, err = db.GetRegistrationByID(ctx, reg.ID)
	assert.ErrorIs(t, err, apperrors.ErrRegistrationNotFound)
	_, _, err = db.Occupancy(ctx, c.ID, "A")
	assert.ErrorIs(t, err, apperrors.ErrSectionNotFound)

	// the code is free again
	seedCourse(t, db, 1)
}

func TestRooms(t *testing.T) {
	ctx := context.Background()
	db := Open()

	r := &models.Room{Code: "B-101", Building: "B", Capacity: 40, Features: []string{"projector"}}
	require.NoError(t, db.CreateRoom(ctx, r))
	assert.ErrorIs(t, db.CreateRoom(ctx, &models.Room{Code: "B-101"}), apperrors.ErrRoomAlreadyExists)

	got, err := db.GetRoomByID(ctx, r.ID)
	require.NoError(t, err)
	got.Features[0] = "changed"
	again, err := db.GetRoomByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"projector"}, again.Features)

	_, err = db.GetRoomByID(ctx, 99)
	assert.ErrorIs(t, err, apperrors.ErrRoomNotFound)
}

func TestSemesters_UpdateKeepsNamesUnique(t *testing.T) {
	ctx := context.Background()
	db := Open()
	fall := &models.Semester{Name: "Fall"}
	spring := &models.Semester{Name: "Spring"}
	require.NoError(t, db.CreateSemester(ctx, fall))
	require.NoError(t, db.CreateSemester(ctx, spring))

	clash := *spring
	clash.Name = "Fall"
	assert.ErrorIs(t, db.UpdateSemester(ctx, &clash), apperrors.ErrSemesterAlreadyExists)

	renamed := *spring
	renamed.Name = "Spring 2026"
	require.NoError(t, db.UpdateSemester(ctx, &renamed))
	got, err := db.GetSemesterByID(ctx, spring.ID)
	require.NoError(t, err)
	assert.Equal(t, "Spring 2026", got.Name)

	require.NoError(t, db.DeleteSemester(ctx, fall.ID))
	_, err = db.GetSemesterByID(ctx, fall.ID)
	assert.ErrorIs(t, err, apperrors.ErrSemesterNotFound)
}
