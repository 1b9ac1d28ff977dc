package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/termsched/internal/app/models"
	"github.com/yigit/termsched/internal/app/models/dto"
	"github.com/yigit/termsched/internal/bootstrap"
	"github.com/yigit/termsched/internal/config"
	"github.com/yigit/termsched/internal/pkg/logger"
)

type api struct {
	t      *testing.T
	router *gin.Engine
	deps   *bootstrap.Dependencies
}

type envelope struct {
	Success bool             `json:"success"`
	Data    json.RawMessage  `json:"data"`
	Error   *dto.ErrorDetail `json:"error"`
}

func newAPI(t *testing.T) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.Database.Driver = config.DriverMemory
	cfg.JWT.Secret = "controller-test"
	cfg.Server.Mode = "test"

	log := logger.Nop()
	storage, err := bootstrap.OpenStorage(cfg, log)
	require.NoError(t, err)
	deps := bootstrap.BuildDependencies(cfg, storage, log)
	return &api{t: t, router: bootstrap.SetupRouter(cfg, deps, log), deps: deps}
}

func (a *api) token(actor models.Actor) string {
	tok, _, err := a.deps.JWTService.GenerateToken(actor)
	require.NoError(a.t, err)
	return tok
}

func (a *api) do(method, path string, actor *models.Actor, body any) (int, envelope) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if actor != nil {
		req.Header.Set("Authorization", "Bearer "+a.token(*actor))
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() == 0 {
		return rec.Code, env
	}
	require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

var (
	adminActor      = models.Actor{UserID: 1, Role: models.RoleAdmin}
	instructorActor = models.Actor{UserID: 10, Role: models.RoleInstructor}
	strangerActor   = models.Actor{UserID: 11, Role: models.RoleInstructor}
	studentA        = models.Actor{UserID: 501, Role: models.RoleStudent}
	studentB        = models.Actor{UserID: 502, Role: models.RoleStudent}
)

func (a *api) createSemester() int64 {
	a.t.Helper()
	code, env := a.do(http.MethodPost, "/api/v1/semesters", &adminActor, map[string]any{
		"name":      "Fall 2025",
		"startDate": "2025-09-01",
		"endDate":   "2025-12-15",
	})
	require.Equal(a.t, http.StatusCreated, code, env.Error)
	return decode[dto.SemesterResponse](a.t, env.Data).ID
}

func (a *api) createCourse(semesterID int64, capacity int) dto.CourseCreatedResponse {
	a.t.Helper()
	code, env := a.do(http.MethodPost, "/api/v1/courses", &instructorActor, map[string]any{
		"code":       "CS101",
		"name":       "Introduction to Programming",
		"credits":    4,
		"semesterId": semesterID,
		"scheduleTemplate": []map[string]any{
			{"dayOfWeek": 1, "startTime": "08:00", "endTime": "10:00"},
		},
		"sections": []map[string]any{
			{"sectionId": "A", "capacity": capacity},
		},
	})
	require.Equal(a.t, http.StatusCreated, code, env.Error)
	return decode[dto.CourseCreatedResponse](a.t, env.Data)
}

func TestHealth(t *testing.T) {
	a := newAPI(t)
	code, env := a.do(http.MethodGet, "/api/v1/health", nil, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)
	assert.Equal(t, "memory", decode[dto.HealthResponse](t, env.Data).Database)
}

func TestAuthRequired(t *testing.T) {
	a := newAPI(t)
	code, env := a.do(http.MethodGet, "/api/v1/courses", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	require.NotNil(t, env.Error)
	assert.Equal(t, dto.ErrorCodeUnauthorized, env.Error.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/courses", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSemesterEndpoints(t *testing.T) {
	a := newAPI(t)

	code, _ := a.do(http.MethodPost, "/api/v1/semesters", &instructorActor, map[string]any{
		"name": "Fall 2025", "startDate": "2025-09-01", "endDate": "2025-12-15",
	})
	assert.Equal(t, http.StatusForbidden, code)

	code, env := a.do(http.MethodPost, "/api/v1/semesters", &adminActor, map[string]any{
		"name": "Fall 2025", "startDate": "09/01/2025", "endDate": "2025-12-15",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, dto.ErrorCodeValidationFailed, env.Error.Code)

	id := a.createSemester()

	code, env = a.do(http.MethodPost, "/api/v1/semesters", &adminActor, map[string]any{
		"name": "Fall 2025", "startDate": "2025-09-01", "endDate": "2025-12-15",
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, dto.ErrorCodeResourceAlreadyExists, env.Error.Code)

	code, env = a.do(http.MethodGet, fmt.Sprintf("/api/v1/semesters/%d", id), &studentA, nil)
	require.Equal(t, http.StatusOK, code)
	sem := decode[dto.SemesterResponse](t, env.Data)
	assert.Equal(t, "2025-09-01", sem.StartDate)
	assert.Equal(t, "UTC", sem.Timezone)

	code, _ = a.do(http.MethodGet, "/api/v1/semesters/999", &studentA, nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = a.do(http.MethodGet, "/api/v1/semesters/abc", &studentA, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestCourseEndpoints(t *testing.T) {
	a := newAPI(t)
	semID := a.createSemester()

	created := a.createCourse(semID, 30)
	assert.Equal(t, 16, created.EventsCreated)
	assert.Equal(t, instructorActor.UserID, created.Course.OwnerInstructorID)

	code, env := a.do(http.MethodPost, "/api/v1/courses", &studentA, map[string]any{})
	assert.Equal(t, http.StatusForbidden, code)

	code, env = a.do(http.MethodPost, "/api/v1/courses", &instructorActor, map[string]any{
		"code": "CS102", "name": "Data Structures", "semesterId": semID,
		"scheduleTemplate": []map[string]any{{"dayOfWeek": 1, "startTime": "10:00", "endTime": "09:00"}},
		"sections":         []map[string]any{{"sectionId": "A", "capacity": 10}},
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, dto.ErrorCodeInvalidSchedule, env.Error.Code)

	code, env = a.do(http.MethodPost, "/api/v1/courses", &instructorActor, map[string]any{
		"code": "CS103", "name": "Algorithms", "semesterId": semID,
		"sections": []map[string]any{{"sectionId": "A", "capacity": 0}},
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, dto.ErrorCodeValidationFailed, env.Error.Code)

	path := fmt.Sprintf("/api/v1/courses/%d/schedule", created.Course.ID)
	code, _ = a.do(http.MethodPut, path, &strangerActor, map[string]any{"scheduleTemplate": []any{}})
	assert.Equal(t, http.StatusForbidden, code)

	code, env = a.do(http.MethodPut, path, &instructorActor, map[string]any{
		"scheduleTemplate": []map[string]any{{"dayOfWeek": 5, "startTime": "12:00", "endTime": "13:00"}},
	})
	require.Equal(t, http.StatusOK, code, env.Error)
	assert.Equal(t, 15, decode[dto.CourseCreatedResponse](t, env.Data).EventsCreated)

	code, env = a.do(http.MethodPost, path+"/regenerate", &instructorActor, nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	assert.Equal(t, 15, decode[dto.RegenerateResponse](t, env.Data).EventsCreated)

	code, env = a.do(http.MethodGet, fmt.Sprintf("/api/v1/courses?semesterId=%d", semID), &studentA, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]dto.CourseResponse](t, env.Data), 1)

	code, env = a.do(http.MethodGet, fmt.Sprintf("/api/v1/events?courseId=%d&type=class", created.Course.ID), &studentA, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 15, decode[dto.EventListResponse](t, env.Data).Count)

	code, _ = a.do(http.MethodGet, "/api/v1/events?type=party", &studentA, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestRegistrationFlow(t *testing.T) {
	a := newAPI(t)
	semID := a.createSemester()
	course := a.createCourse(semID, 1).Course

	submit := func(actor models.Actor) (int, envelope) {
		return a.do(http.MethodPost, "/api/v1/registrations", &actor, map[string]any{
			"courseId": course.ID, "sectionId": "A",
		})
	}

	code, env := submit(studentA)
	require.Equal(t, http.StatusCreated, code, env.Error)
	first := decode[dto.CreateRegistrationResponse](t, env.Data)
	assert.Equal(t, "pending", first.Status)

	code, env = submit(studentA)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, dto.ErrorCodeAlreadyRegistered, env.Error.Code)

	code, env = submit(studentB)
	require.Equal(t, http.StatusCreated, code, env.Error)
	second := decode[dto.CreateRegistrationResponse](t, env.Data)

	code, env = a.do(http.MethodPost, "/api/v1/registrations", &studentA, map[string]any{"courseId": course.ID, "sectionId": "Z"})
	assert.Equal(t, http.StatusNotFound, code)

	code, env = a.do(http.MethodGet, "/api/v1/registrations/pending", &instructorActor, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[dto.RegistrationListResponse](t, env.Data).Registrations, 2)

	code, env = a.do(http.MethodGet, "/api/v1/registrations/pending?page=2&size=1", &instructorActor, nil)
	require.Equal(t, http.StatusOK, code)
	paged := decode[dto.RegistrationListResponse](t, env.Data)
	assert.Len(t, paged.Registrations, 1)
	require.NotNil(t, paged.Pagination)
	assert.Equal(t, 2, paged.Pagination.TotalPages)

	decide := func(actor models.Actor, id fmt.Stringer, decision string) (int, envelope) {
		return a.do(http.MethodPost, "/api/v1/registrations/"+id.String()+"/decision", &actor, map[string]any{"decision": decision})
	}

	code, _ = decide(strangerActor, first.RegistrationID, "approve")
	assert.Equal(t, http.StatusForbidden, code)

	code, env = decide(instructorActor, first.RegistrationID, "maybe")
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = decide(instructorActor, first.RegistrationID, "approve")
	require.Equal(t, http.StatusOK, code, env.Error)
	assert.Equal(t, "approved", decode[dto.DecisionResponse](t, env.Data).Status)

	code, env = decide(instructorActor, first.RegistrationID, "reject")
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, dto.ErrorCodeInvalidTransition, env.Error.Code)

	code, env = decide(instructorActor, second.RegistrationID, "approve")
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, dto.ErrorCodeSectionFull, env.Error.Code)

	code, env = a.do(http.MethodGet, "/api/v1/registrations/mine", &studentB, nil)
	require.Equal(t, http.StatusOK, code)
	mine := decode[dto.RegistrationListResponse](t, env.Data).Registrations
	require.Len(t, mine, 1)
	assert.Equal(t, "pending", mine[0].Status)

	code, env = a.do(http.MethodGet, "/api/v1/timetable/me", &studentA, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 16, decode[dto.EventListResponse](t, env.Data).Count)

	code, env = a.do(http.MethodGet, "/api/v1/timetable/me", &studentB, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 0, decode[dto.EventListResponse](t, env.Data).Count)

	code, _ = decide(instructorActor, stringer("not-a-uuid"), "approve")
	assert.Equal(t, http.StatusBadRequest, code)
}

type stringer string

func (s stringer) String() string { return string(s) }

func TestCreateEvent(t *testing.T) {
	a := newAPI(t)
	semID := a.createSemester()
	course := a.createCourse(semID, 10).Course

	body := map[string]any{
		"type":     "exam",
		"courseId": course.ID,
		"startAt":  "2025-11-03T09:00:00Z",
		"endAt":    "2025-11-03T11:00:00Z",
		"topic":    "Midterm",
	}
	code, env := a.do(http.MethodPost, "/api/v1/events", &instructorActor, body)
	require.Equal(t, http.StatusCreated, code, env.Error)
	ev := decode[dto.EventResponse](t, env.Data)
	assert.Equal(t, "exam", ev.Type)
	assert.Equal(t, semID, ev.SemesterID)

	body["type"] = "class"
	code, _ = a.do(http.MethodPost, "/api/v1/events", &instructorActor, body)
	assert.Equal(t, http.StatusBadRequest, code)

	body["type"] = "exam"
	code, _ = a.do(http.MethodPost, "/api/v1/events", &strangerActor, body)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestUpdateSchedule_SectionsOnlyKeepsTemplate(t *testing.T) {
	a := newAPI(t)
	semID := a.createSemester()
	created := a.createCourse(semID, 30)

	path := fmt.Sprintf("/api/v1/courses/%d/schedule", created.Course.ID)
	code, env := a.do(http.MethodPut, path, &instructorActor, map[string]any{
		"sections": map[string]any{
			"A": []map[string]any{{"dayOfWeek": 2, "startTime": "09:00", "endTime": "10:00"}},
		},
	})
	require.Equal(t, http.StatusOK, code, env.Error)
	updated := decode[dto.CourseCreatedResponse](t, env.Data)
	require.Len(t, updated.Course.ScheduleTemplate, 1)
	assert.Equal(t, 1, updated.Course.ScheduleTemplate[0].DayOfWeek)
	assert.Equal(t, 15, updated.EventsCreated)
}

func TestCourseUpdateAndDelete(t *testing.T) {
	a := newAPI(t)
	semID := a.createSemester()
	course := a.createCourse(semID, 30).Course
	path := fmt.Sprintf("/api/v1/courses/%d", course.ID)

	code, _ := a.do(http.MethodPatch, path, &strangerActor, map[string]any{"name": "Other"})
	assert.Equal(t, http.StatusForbidden, code)

	code, env := a.do(http.MethodPatch, path, &instructorActor, map[string]any{"credits": 6})
	require.Equal(t, http.StatusOK, code, env.Error)
	patched := decode[dto.CourseResponse](t, env.Data)
	assert.Equal(t, 6, patched.Credits)
	assert.Equal(t, course.Name, patched.Name)

	code, env = a.do(http.MethodPost, "/api/v1/registrations", &studentA, map[string]any{"courseId": course.ID, "sectionId": "A"})
	require.Equal(t, http.StatusCreated, code, env.Error)

	code, _ = a.do(http.MethodDelete, path, &instructorActor, nil)
	assert.Equal(t, http.StatusConflict, code)

	code, env = a.do(http.MethodDelete, fmt.Sprintf("/api/v1/semesters/%d", semID), &adminActor, nil)
	assert.Equal(t, http.StatusConflict, code)
}

func TestSemesterUpdate(t *testing.T) {
	a := newAPI(t)
	semID := a.createSemester()
	a.createCourse(semID, 30)

	path := fmt.Sprintf("/api/v1/semesters/%d", semID)
	body := map[string]any{"name": "Fall 2025", "startDate": "2025-09-01", "endDate": "2025-12-01"}

	code, _ := a.do(http.MethodPut, path, &instructorActor, body)
	assert.Equal(t, http.StatusForbidden, code)

	code, env := a.do(http.MethodPut, path, &adminActor, body)
	require.Equal(t, http.StatusOK, code, env.Error)
	updated := decode[dto.SemesterUpdatedResponse](t, env.Data)
	assert.Equal(t, "2025-12-01", updated.Semester.EndDate)
	assert.Equal(t, 14, updated.EventsCreated)

	code, _ = a.do(http.MethodPut, "/api/v1/semesters/999", &adminActor, body)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestRosterAndAvailableCourses(t *testing.T) {
	a := newAPI(t)
	semID := a.createSemester()
	course := a.createCourse(semID, 30).Course

	code, env := a.do(http.MethodGet, "/api/v1/courses/available", &studentA, nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	assert.Len(t, decode[[]dto.CourseResponse](t, env.Data), 1)

	code, env = a.do(http.MethodPost, "/api/v1/registrations", &studentA, map[string]any{"courseId": course.ID, "sectionId": "A"})
	require.Equal(t, http.StatusCreated, code, env.Error)
	reg := decode[dto.CreateRegistrationResponse](t, env.Data)

	code, env = a.do(http.MethodGet, fmt.Sprintf("/api/v1/courses/available?semesterId=%d", semID), &studentA, nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	assert.Empty(t, decode[[]dto.CourseResponse](t, env.Data))

	code, _ = a.do(http.MethodGet, "/api/v1/courses/available", &instructorActor, nil)
	assert.Equal(t, http.StatusForbidden, code)

	roster := fmt.Sprintf("/api/v1/courses/%d/sections/A/roster", course.ID)
	code, env = a.do(http.MethodGet, roster, &instructorActor, nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	assert.Empty(t, decode[dto.RegistrationListResponse](t, env.Data).Registrations, "pending requests are not on the roster")

	code, env = a.do(http.MethodPost, "/api/v1/registrations/"+reg.RegistrationID.String()+"/decision", &instructorActor, map[string]any{"decision": "approve"})
	require.Equal(t, http.StatusOK, code, env.Error)

	code, env = a.do(http.MethodGet, roster, &instructorActor, nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	regs := decode[dto.RegistrationListResponse](t, env.Data).Registrations
	require.Len(t, regs, 1)
	assert.Equal(t, studentA.UserID, regs[0].StudentID)

	code, _ = a.do(http.MethodGet, roster, &strangerActor, nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = a.do(http.MethodGet, fmt.Sprintf("/api/v1/courses/%d/sections/Z/roster", course.ID), &instructorActor, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestRoomEndpoints(t *testing.T) {
	a := newAPI(t)

	room := map[string]any{"code": "B-101", "building": "Engineering", "capacity": 40, "features": []string{"projector"}}
	code, _ := a.do(http.MethodPost, "/api/v1/rooms", &instructorActor, room)
	assert.Equal(t, http.StatusForbidden, code)

	code, env := a.do(http.MethodPost, "/api/v1/rooms", &adminActor, room)
	require.Equal(t, http.StatusCreated, code, env.Error)
	created := decode[dto.RoomResponse](t, env.Data)
	assert.Equal(t, []string{"projector"}, created.Features)

	code, env = a.do(http.MethodPost, "/api/v1/rooms", &adminActor, room)
	assert.Equal(t, http.StatusConflict, code)

	code, env = a.do(http.MethodGet, fmt.Sprintf("/api/v1/rooms/%d", created.ID), &studentA, nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	assert.Equal(t, "B-101", decode[dto.RoomResponse](t, env.Data).Code)

	code, env = a.do(http.MethodGet, "/api/v1/rooms", &studentA, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]dto.RoomResponse](t, env.Data), 1)

	semID := a.createSemester()
	code, env = a.do(http.MethodPost, "/api/v1/courses", &instructorActor, map[string]any{
		"code": "CS200", "name": "Systems", "semesterId": semID,
		"scheduleTemplate": []map[string]any{{"dayOfWeek": 1, "startTime": "08:00", "endTime": "10:00", "roomId": 999}},
		"sections":         []map[string]any{{"sectionId": "A", "capacity": 10}},
	})
	assert.Equal(t, http.StatusNotFound, code)
}
