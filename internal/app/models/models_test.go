package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/yigit/termsched/internal/app/calendar"
)

func int64Ptr(v int64) *int64 { return &v }

func TestEffectiveSchedule(t *testing.T) {
	template := []calendar.WeeklySlot{{DayOfWeek: 1, StartTime: 480, EndTime: 600}}
	override := []calendar.WeeklySlot{{DayOfWeek: 3, StartTime: 540, EndTime: 660}}
	c := &Course{ScheduleTemplate: template}

	got := c.EffectiveSchedule(Section{Code: "A"})
	assert.Equal(t, ScheduleSourceCourseDefault, got.Source)
	assert.Equal(t, template, got.Slots)

	got = c.EffectiveSchedule(Section{Code: "B", Schedule: override})
	assert.Equal(t, ScheduleSourceSectionOverride, got.Source)
	assert.Equal(t, override, got.Slots)
}

func TestCourseTeaches(t *testing.T) {
	c := &Course{
		OwnerInstructorID: 10,
		Sections: []Section{
			{Code: "A", InstructorID: int64Ptr(20)},
			{Code: "B"},
		},
	}
	assert.True(t, c.Teaches(10, "B"))
	assert.True(t, c.Teaches(20, "A"))
	assert.False(t, c.Teaches(20, "B"))
	assert.False(t, c.Teaches(30, "A"))
	assert.True(t, c.TeachesAny(20))
	assert.False(t, c.TeachesAny(30))
}

func TestSectionAvailable(t *testing.T) {
	assert.Equal(t, 2, Section{Capacity: 3, Occupied: 1}.Available())
	assert.Equal(t, 0, Section{Capacity: 3, Occupied: 3}.Available())
}

func TestRegistrationWindowsAddOpen(t *testing.T) {
	start := time.Date(2025, time.August, 20, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.September, 10, 0, 0, 0, 0, time.UTC)
	w := RegistrationWindows{AddStart: &start, AddEnd: &end}

	assert.False(t, w.AddOpen(start.Add(-time.Hour)))
	assert.True(t, w.AddOpen(start))
	assert.True(t, w.AddOpen(end))
	assert.False(t, w.AddOpen(end.Add(time.Second)))
	assert.True(t, RegistrationWindows{}.AddOpen(time.Now()))
}

func TestSemesterLocation(t *testing.T) {
	assert.Equal(t, time.UTC, (&Semester{}).Location())
	assert.Equal(t, time.UTC, (&Semester{Timezone: "Not/AZone"}).Location())
}

func TestStatusPredicates(t *testing.T) {
	assert.True(t, RegistrationPending.Live())
	assert.True(t, RegistrationApproved.Live())
	assert.False(t, RegistrationRejected.Live())
	assert.False(t, RegistrationPending.Terminal())
	assert.True(t, DecisionReject.Valid())
	assert.False(t, Decision("maybe").Valid())
	assert.False(t, EventType("lecture").Valid())
}

func TestSemesterBoundsKeepCalendarDates(t *testing.T) {
	s := &Semester{
		StartDate: time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, time.December, 15, 0, 0, 0, 0, time.UTC),
		Timezone:  "Asia/Tokyo",
	}
	if _, err := time.LoadLocation("Asia/Tokyo"); err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	start, end := s.Bounds()
	assert.Equal(t, 1, start.Day())
	assert.Equal(t, time.September, start.Month())
	assert.Equal(t, 15, end.Day())
	assert.Equal(t, "Asia/Tokyo", start.Location().String())
}
