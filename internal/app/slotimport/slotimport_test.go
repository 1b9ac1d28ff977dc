package slotimport

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/termsched/internal/app/calendar"
)

func TestParse(t *testing.T) {
	in := `section,day,start,end,room
,Mon,08:00,10:00,
,wednesday,08:00,09:00,12
B,2,13:00,15:00,
B,thu,13:00,14:00,7
`
	s, err := Parse(strings.NewReader(in))
	require.NoError(t, err)

	require.Len(t, s.Template, 2)
	assert.Equal(t, int(time.Monday), s.Template[0].DayOfWeek)
	assert.Equal(t, calendar.MustParseTimeOfDay("08:00"), s.Template[0].StartTime)
	assert.Nil(t, s.Template[0].RoomID)
	require.NotNil(t, s.Template[1].RoomID)
	assert.Equal(t, int64(12), *s.Template[1].RoomID)

	require.Len(t, s.Sections["B"], 2)
	assert.Equal(t, int(time.Tuesday), s.Sections["B"][0].DayOfWeek)
	assert.Equal(t, int(time.Thursday), s.Sections["B"][1].DayOfWeek)
}

func TestScheduleUpdate_SectionRowsOnlyKeepTemplate(t *testing.T) {
	s, err := Parse(strings.NewReader("section,day,start,end,room\nA,tue,09:00,10:00,\n"))
	require.NoError(t, err)

	update := s.Update()
	assert.Nil(t, update.Template)
	require.Len(t, update.Sections["A"], 1)

	s, err = Parse(strings.NewReader("section,day,start,end,room\n,mon,08:00,10:00,\n"))
	require.NoError(t, err)
	update = s.Update()
	require.NotNil(t, update.Template)
	assert.Len(t, *update.Template, 1)
	assert.Empty(t, update.Sections)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{name: "end before start", in: "section,day,start,end,room\n,mon,10:00,09:00,\n"},
		{name: "bad weekday", in: "section,day,start,end,room\n,funday,10:00,11:00,\n"},
		{name: "weekday out of range", in: "section,day,start,end,room\n,7,10:00,11:00,\n"},
		{name: "bad time", in: "section,day,start,end,room\n,mon,25:00,26:00,\n"},
		{name: "bad room", in: "section,day,start,end,room\n,mon,10:00,11:00,x\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.in))
			assert.Error(t, err)
		})
	}
}

func TestParse_HeaderOnly(t *testing.T) {
	_, err := Parse(strings.NewReader("section,day,start,end,room\n"))
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestParseWeekday(t *testing.T) {
	for in, want := range map[string]int{"0": 0, "6": 6, "Sun": 0, "saturday": 6, " TUE ": 2} {
		got, err := ParseWeekday(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseWeekday("mo")
	assert.ErrorIs(t, err, calendar.ErrInvalidSlot)
}
