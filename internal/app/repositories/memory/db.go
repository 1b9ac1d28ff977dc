// Package memory is a process-local storage backend with the same
// semantics as the PostgreSQL repositories. A single lock guards every
// table so that ledger updates and batch replacements are linearizable.
package memory

import (
	"sync"

	"github.com/google/uuid"
	"github.com/yigit/termsched/internal/app/calendar"
	"github.com/yigit/termsched/internal/app/models"
)

type sectionKey struct {
	courseID int64
	code     string
}

// DB holds every table of the in-memory backend
type DB struct {
	mu sync.RWMutex

	semesterSeq int64
	courseSeq   int64
	roomSeq     int64

	semesters     map[int64]*models.Semester
	courses       map[int64]*models.Course // sections are kept in the sections table
	sectionOrder  map[int64][]string
	sections      map[sectionKey]*models.Section
	events        map[uuid.UUID]*models.TimetableEvent
	registrations map[uuid.UUID]*models.Registration
	rooms         map[int64]*models.Room

	bulkHook BulkInsertHook
}

// Open returns an empty database
func Open() *DB {
	return &DB{
		semesters:     make(map[int64]*models.Semester),
		courses:       make(map[int64]*models.Course),
		sectionOrder:  make(map[int64][]string),
		sections:      make(map[sectionKey]*models.Section),
		events:        make(map[uuid.UUID]*models.TimetableEvent),
		registrations: make(map[uuid.UUID]*models.Registration),
		rooms:         make(map[int64]*models.Room),
	}
}

func cloneSlots(in []calendar.WeeklySlot) []calendar.WeeklySlot {
	if len(in) == 0 {
		return nil
	}
	out := make([]calendar.WeeklySlot, len(in))
	for i, s := range in {
		if s.RoomID != nil {
			room := *s.RoomID
			s.RoomID = &room
		}
		out[i] = s
	}
	return out
}

func cloneSection(s *models.Section) models.Section {
	c := *s
	c.Schedule = cloneSlots(s.Schedule)
	return c
}
