package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/yigit/termsched/internal/app/models"
	"github.com/yigit/termsched/internal/pkg/apperrors"
)

func (db *DB) CreateCourse(_ context.Context, c *models.Course) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, existing := range db.courses {
		if existing.Code == c.Code {
			return apperrors.ErrCourseAlreadyExists
		}
	}
	seen := make(map[string]bool, len(c.Sections))
	for _, s := range c.Sections {
		if seen[s.Code] {
			return apperrors.NewValidationError("section identifiers must be unique within a course")
		}
		seen[s.Code] = true
	}

	db.courseSeq++
	now := time.Now()
	c.ID = db.courseSeq
	c.CreatedAt, c.UpdatedAt = now, now

	stored := *c
	stored.ScheduleTemplate = cloneSlots(c.ScheduleTemplate)
	stored.Sections = nil
	db.courses[c.ID] = &stored

	order := make([]string, 0, len(c.Sections))
	for i := range c.Sections {
		c.Sections[i].Occupied = 0
		s := cloneSection(&c.Sections[i])
		db.sections[sectionKey{c.ID, s.Code}] = &s
		order = append(order, s.Code)
	}
	db.sectionOrder[c.ID] = order
	return nil
}

// course assembles a detached copy; callers hold the lock
func (db *DB) course(id int64) (*models.Course, bool) {
	c, ok := db.courses[id]
	if !ok {
		return nil, false
	}
	out := *c
	out.ScheduleTemplate = cloneSlots(c.ScheduleTemplate)
	out.Sections = make([]models.Section, 0, len(db.sectionOrder[id]))
	for _, code := range db.sectionOrder[id] {
		out.Sections = append(out.Sections, cloneSection(db.sections[sectionKey{id, code}]))
	}
	return &out, true
}

func (db *DB) GetCourseByID(_ context.Context, id int64) (*models.Course, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	c, ok := db.course(id)
	if !ok {
		return nil, apperrors.ErrCourseNotFound
	}
	return c, nil
}

func (db *DB) ListCourses(_ context.Context, filter models.CourseFilter) ([]models.Course, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	out := []models.Course{}
	for id := range db.courses {
		c, _ := db.course(id)
		if filter.SemesterID != nil && c.SemesterID != *filter.SemesterID {
			continue
		}
		if filter.OwnerInstructorID != nil && c.OwnerInstructorID != *filter.OwnerInstructorID {
			continue
		}
		if filter.InstructorID != nil && !c.TeachesAny(*filter.InstructorID) {
			continue
		}
		if filter.IDs != nil && !slices.Contains(filter.IDs, c.ID) {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (db *DB) UpdateSchedule(_ context.Context, courseID int64, update models.ScheduleUpdate) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	c, ok := db.courses[courseID]
	if !ok {
		return apperrors.ErrCourseNotFound
	}
	// validate all targets before mutating so the update is all-or-nothing
	for code := range update.Sections {
		if _, ok := db.sections[sectionKey{courseID, code}]; !ok {
			return fmt.Errorf("section %q: %w", code, apperrors.ErrSectionNotFound)
		}
	}

	if update.Template != nil {
		c.ScheduleTemplate = cloneSlots(*update.Template)
	}
	for code, slots := range update.Sections {
		db.sections[sectionKey{courseID, code}].Schedule = cloneSlots(slots)
	}
	touch(c)
	return nil
}

func (db *DB) UpdateCourseDetails(_ context.Context, courseID int64, update models.CourseUpdate) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	c, ok := db.courses[courseID]
	if !ok {
		return apperrors.ErrCourseNotFound
	}
	if update.Name != nil {
		c.Name = *update.Name
	}
	if update.Credits != nil {
		c.Credits = *update.Credits
	}
	if update.Policies != nil {
		c.Policies = *update.Policies
	}
	touch(c)
	return nil
}

func (db *DB) DeleteCourse(_ context.Context, id int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.courses[id]; !ok {
		return apperrors.ErrCourseNotFound
	}
	for _, code := range db.sectionOrder[id] {
		delete(db.sections, sectionKey{id, code})
	}
	delete(db.sectionOrder, id)
	delete(db.courses, id)
	for eid, e := range db.events {
		if e.CourseID == id {
			delete(db.events, eid)
		}
	}
	for rid, r := range db.registrations {
		if r.CourseID == id {
			delete(db.registrations, rid)
		}
	}
	return nil
}

// touch advances UpdatedAt strictly so every change yields a new version
func touch(c *models.Course) {
	now := time.Now()
	if !now.After(c.UpdatedAt) {
		now = c.UpdatedAt.Add(time.Nanosecond)
	}
	c.UpdatedAt = now
}
