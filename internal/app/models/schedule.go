package models

import "github.com/yigit/termsched/internal/app/calendar"

// ScheduleSource tells where a section's effective weekly pattern came from
type ScheduleSource string

const (
	ScheduleSourceSectionOverride ScheduleSource = "SECTION_OVERRIDE"
	ScheduleSourceCourseDefault   ScheduleSource = "COURSE_DEFAULT"
)

// EffectiveSchedule is the weekly pattern a section actually meets on.
type EffectiveSchedule struct {
	Source ScheduleSource
	Slots  []calendar.WeeklySlot
}

// SectionOverride builds an EffectiveSchedule from a section's own slots
func SectionOverride(slots []calendar.WeeklySlot) EffectiveSchedule {
	return EffectiveSchedule{Source: ScheduleSourceSectionOverride, Slots: slots}
}

// CourseDefault builds an EffectiveSchedule from the course template
func CourseDefault(slots []calendar.WeeklySlot) EffectiveSchedule {
	return EffectiveSchedule{Source: ScheduleSourceCourseDefault, Slots: slots}
}

// EffectiveSchedule resolves the pattern for a section: a non-empty section
// schedule wins over the course template.
func (c *Course) EffectiveSchedule(s Section) EffectiveSchedule {
	if len(s.Schedule) > 0 {
		return SectionOverride(s.Schedule)
	}
	return CourseDefault(c.ScheduleTemplate)
}
