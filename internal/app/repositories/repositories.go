package repositories

import (
	"encoding/json"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/termsched/internal/app/calendar"
)

// Repositories holds all the PostgreSQL repository instances
type Repositories struct {
	SemesterRepository     *SemesterRepository
	CourseRepository       *CourseRepository
	SectionLedger          *SectionLedger
	EventRepository        *EventRepository
	RegistrationRepository *RegistrationRepository
	RoomRepository         *RoomRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		SemesterRepository:     NewSemesterRepository(db),
		CourseRepository:       NewCourseRepository(db),
		SectionLedger:          NewSectionLedger(db),
		EventRepository:        NewEventRepository(db),
		RegistrationRepository: NewRegistrationRepository(db),
		RoomRepository:         NewRoomRepository(db),
	}
}

func statementBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// encodeSlots renders slots for a JSONB column; nil becomes "[]"
func encodeSlots(slots []calendar.WeeklySlot) ([]byte, error) {
	if slots == nil {
		slots = []calendar.WeeklySlot{}
	}
	b, err := json.Marshal(slots)
	if err != nil {
		return nil, fmt.Errorf("failed to encode weekly slots: %w", err)
	}
	return b, nil
}

func decodeSlots(raw []byte) ([]calendar.WeeklySlot, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var slots []calendar.WeeklySlot
	if err := json.Unmarshal(raw, &slots); err != nil {
		return nil, fmt.Errorf("failed to decode weekly slots: %w", err)
	}
	if len(slots) == 0 {
		return nil, nil
	}
	return slots, nil
}
