package seed

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/termsched/internal/app/calendar"
	appModels "github.com/yigit/termsched/internal/app/models"
	appServices "github.com/yigit/termsched/internal/app/services"
	"github.com/yigit/termsched/internal/pkg/apperrors"
)

// Demo identities. They are plain ids; users live in the identity service.
const (
	AdminUserID      int64 = 1
	DemoInstructorID int64 = 100
)

// DemoSemesterName names the seeded semester
const DemoSemesterName = "Fall 2025"

// CreateDefaultData creates a demo semester and two courses if they don't exist.
// Errors are collected so one failing item does not stop the rest.
func CreateDefaultData(ctx context.Context, semesters appServices.SemesterService, courses appServices.CourseService, lgr zerolog.Logger) error {
	admin := appModels.Actor{UserID: AdminUserID, Role: appModels.RoleAdmin}

	lgr.Info().Msg("Checking/Creating default data (Semester/Courses)...")
	var finalErr error

	semesterID, err := ensureSemester(ctx, semesters, admin)
	if err != nil {
		lgr.Error().Err(err).Msg("Error creating demo semester")
		return err
	}

	weekly := func(day time.Weekday, from, to string) calendar.WeeklySlot {
		return calendar.WeeklySlot{
			DayOfWeek: int(day),
			StartTime: calendar.MustParseTimeOfDay(from),
			EndTime:   calendar.MustParseTimeOfDay(to),
		}
	}

	demoCourses := []*appModels.Course{
		{
			Code:              "CENG101",
			Name:              "Introduction to Programming",
			Credits:           4,
			OwnerInstructorID: DemoInstructorID,
			SemesterID:        semesterID,
			ScheduleTemplate: []calendar.WeeklySlot{
				weekly(time.Monday, "09:00", "10:50"),
				weekly(time.Wednesday, "09:00", "09:50"),
			},
			Sections: []appModels.Section{
				{Code: "01", Capacity: 40},
				{Code: "02", Capacity: 40, Schedule: []calendar.WeeklySlot{weekly(time.Tuesday, "13:00", "15:50")}},
			},
		},
		{
			Code:              "MATH151",
			Name:              "Calculus I",
			Credits:           5,
			OwnerInstructorID: DemoInstructorID,
			SemesterID:        semesterID,
			Sections: []appModels.Section{
				{Code: "01", Capacity: 60, Schedule: []calendar.WeeklySlot{
					weekly(time.Tuesday, "10:00", "11:50"),
					weekly(time.Thursday, "10:00", "11:50"),
				}},
			},
		},
	}

	for _, c := range demoCourses {
		created, n, err := courses.Create(ctx, admin, c)
		switch {
		case errors.Is(err, apperrors.ErrCourseAlreadyExists):
			lgr.Debug().Str("code", c.Code).Msg("Demo course already exists")
		case err != nil:
			lgr.Error().Err(err).Str("code", c.Code).Msg("Error creating demo course")
			finalErr = errors.Join(finalErr, err)
		default:
			lgr.Info().Int64("courseID", created.ID).Str("code", created.Code).Int("events", n).Msg("Demo course created")
		}
	}

	return finalErr
}

func ensureSemester(ctx context.Context, semesters appServices.SemesterService, admin appModels.Actor) (int64, error) {
	created, err := semesters.Create(ctx, admin, &appModels.Semester{
		Name:      DemoSemesterName,
		StartDate: time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, time.December, 15, 0, 0, 0, 0, time.UTC),
		Timezone:  appModels.DefaultTimezone,
	})
	if err == nil {
		return created.ID, nil
	}
	if !errors.Is(err, apperrors.ErrSemesterAlreadyExists) {
		return 0, err
	}

	all, err := semesters.List(ctx)
	if err != nil {
		return 0, err
	}
	for _, s := range all {
		if s.Name == DemoSemesterName {
			return s.ID, nil
		}
	}
	return 0, apperrors.ErrSemesterNotFound
}
