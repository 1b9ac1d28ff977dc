package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/termsched/internal/app/controllers"
	"github.com/yigit/termsched/internal/app/models"
	"github.com/yigit/termsched/internal/middleware"
)

// Controllers groups every HTTP handler registered by SetupRouter
type Controllers struct {
	Semester     *controllers.SemesterController
	Course       *controllers.CourseController
	Registration *controllers.RegistrationController
	Timetable    *controllers.TimetableController
	Room         *controllers.RoomController
	Health       *controllers.HealthController
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, ctrl Controllers, authMiddleware *middleware.AuthMiddleware) {
	v1 := router.Group("/api/v1")

	v1.GET("/health", ctrl.Health.Health)

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	staff := []models.RoleType{models.RoleInstructor, models.RoleAdmin}

	semesters := authenticated.Group("/semesters")
	{
		semesters.GET("", ctrl.Semester.ListSemesters)
		semesters.GET("/:id", ctrl.Semester.GetSemesterByID)
		semesters.POST("", authMiddleware.RoleRequired(models.RoleAdmin), ctrl.Semester.CreateSemester)
		semesters.PUT("/:id", authMiddleware.RoleRequired(models.RoleAdmin), ctrl.Semester.UpdateSemester)
		semesters.DELETE("/:id", authMiddleware.RoleRequired(models.RoleAdmin), ctrl.Semester.DeleteSemester)
	}

	rooms := authenticated.Group("/rooms")
	{
		rooms.GET("", ctrl.Room.ListRooms)
		rooms.GET("/:id", ctrl.Room.GetRoomByID)
		rooms.POST("", authMiddleware.RoleRequired(models.RoleAdmin), ctrl.Room.CreateRoom)
	}

	courses := authenticated.Group("/courses")
	{
		courses.GET("", ctrl.Course.ListCourses)
		courses.GET("/available", authMiddleware.RoleRequired(models.RoleStudent), ctrl.Course.ListAvailableCourses)
		courses.GET("/:id", ctrl.Course.GetCourseByID)

		coursesStaff := courses.Group("")
		coursesStaff.Use(authMiddleware.RoleRequired(staff...))
		{
			coursesStaff.POST("", ctrl.Course.CreateCourse)
			coursesStaff.PATCH("/:id", ctrl.Course.UpdateCourse)
			coursesStaff.DELETE("/:id", ctrl.Course.DeleteCourse)
			coursesStaff.GET("/:id/sections/:section/roster", ctrl.Registration.ListRoster)
			coursesStaff.PUT("/:id/schedule", ctrl.Course.UpdateSchedule)
			coursesStaff.POST("/:id/schedule/regenerate", ctrl.Course.RegenerateSchedule)
		}
	}

	registrations := authenticated.Group("/registrations")
	{
		registrations.POST("", authMiddleware.RoleRequired(models.RoleStudent), ctrl.Registration.CreateRegistration)
		registrations.GET("/mine", authMiddleware.RoleRequired(models.RoleStudent), ctrl.Registration.ListMine)
		registrations.GET("/pending", authMiddleware.RoleRequired(staff...), ctrl.Registration.ListPending)
		registrations.POST("/:id/decision", authMiddleware.RoleRequired(staff...), ctrl.Registration.DecideRegistration)
	}

	events := authenticated.Group("/events")
	{
		events.GET("", ctrl.Timetable.ListEvents)
		events.POST("", authMiddleware.RoleRequired(staff...), ctrl.Timetable.CreateEvent)
	}

	authenticated.GET("/timetable/me", ctrl.Timetable.MyTimetable)
}
