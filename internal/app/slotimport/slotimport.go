// Package slotimport reads weekly class patterns from CSV files.
//
// Expected header: section,day,start,end,room. Rows with an empty section
// belong to the course template; others override that section's schedule.
// day is 0-6 (Sunday first) or an English weekday name.
package slotimport

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/yigit/termsched/internal/app/calendar"
	"github.com/yigit/termsched/internal/app/models"
)

// ErrEmptyFile is returned when the CSV has no slot rows
var ErrEmptyFile = errors.New("no slot rows in file")

// Row is one CSV line
type Row struct {
	Section string             `csv:"section"`
	Day     string             `csv:"day"`
	Start   calendar.TimeOfDay `csv:"start"`
	End     calendar.TimeOfDay `csv:"end"`
	Room    string             `csv:"room,omitempty"`
}

// Schedule is the parsed content of a slot file
type Schedule struct {
	Template []calendar.WeeklySlot
	Sections map[string][]calendar.WeeklySlot
}

// Update turns the file into a schedule edit. A file without template rows
// leaves the course template alone.
func (s *Schedule) Update() models.ScheduleUpdate {
	update := models.ScheduleUpdate{Sections: s.Sections}
	if s.Template != nil {
		template := s.Template
		update.Template = &template
	}
	return update
}

// Parse decodes and validates a slot CSV
func Parse(r io.Reader) (*Schedule, error) {
	var rows []*Row
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return nil, ErrEmptyFile
		}
		return nil, fmt.Errorf("failed to decode slot csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}

	out := &Schedule{Sections: make(map[string][]calendar.WeeklySlot)}
	for i, row := range rows {
		// header is line 1
		line := i + 2
		slot, err := row.slot()
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if err := slot.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		section := strings.TrimSpace(row.Section)
		if section == "" {
			out.Template = append(out.Template, slot)
			continue
		}
		out.Sections[section] = append(out.Sections[section], slot)
	}
	return out, nil
}

func (r *Row) slot() (calendar.WeeklySlot, error) {
	day, err := ParseWeekday(r.Day)
	if err != nil {
		return calendar.WeeklySlot{}, err
	}
	slot := calendar.WeeklySlot{DayOfWeek: day, StartTime: r.Start, EndTime: r.End}

	if room := strings.TrimSpace(r.Room); room != "" {
		id, err := strconv.ParseInt(room, 10, 64)
		if err != nil || id <= 0 {
			return calendar.WeeklySlot{}, fmt.Errorf("invalid room id %q", r.Room)
		}
		slot.RoomID = &id
	}
	return slot, nil
}

// ParseWeekday accepts 0-6 or a weekday name such as "mon" or "Monday"
func ParseWeekday(s string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 || n > 6 {
			return 0, fmt.Errorf("%w: day of week %d out of range [0,6]", calendar.ErrInvalidSlot, n)
		}
		return n, nil
	}
	if len(s) >= 3 {
		for d := time.Sunday; d <= time.Saturday; d++ {
			name := strings.ToLower(d.String())
			if strings.HasPrefix(name, s) {
				return int(d), nil
			}
		}
	}
	return 0, fmt.Errorf("%w: unknown day %q", calendar.ErrInvalidSlot, s)
}
