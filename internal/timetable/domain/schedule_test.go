package domain_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/felixgeelhaar/timetable/internal/timetable/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDate = "01/01/2030"

func candidate(start, end, title string) domain.Candidate {
	return domain.NewCandidate(testDate, "Tuesday", start, end, title)
}

func titles(t *testing.T, s *domain.Schedule, date string) []string {
	t.Helper()
	slots, ok := s.Slots(date)
	require.True(t, ok, "expected date %s", date)
	out := make([]string, len(slots))
	for i, slot := range slots {
		out[i] = slot.Title
	}
	return out
}

func TestNewSchedule(t *testing.T) {
	s := domain.NewSchedule()

	assert.True(t, s.IsEmpty())
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Dates())
	assert.Equal(t, "", s.Render())
}

func TestSchedule_Insert_CreatesDate(t *testing.T) {
	s := domain.NewSchedule()

	inserted := s.Insert(candidate("09:00", "10:00", "Standup"))

	assert.True(t, inserted)
	assert.Equal(t, []string{testDate}, s.Dates())
	assert.Equal(t, []string{"Standup"}, titles(t, s, testDate))
}

func TestSchedule_Insert_Idempotent(t *testing.T) {
	s := domain.NewSchedule()
	c := candidate("09:00", "10:00", "Standup")

	require.True(t, s.Insert(c))
	assert.False(t, s.Insert(c))

	slots, _ := s.Slots(testDate)
	assert.Len(t, slots, 1)
}

func TestSchedule_Insert_DuplicateIgnoresWeekday(t *testing.T) {
	s := domain.NewSchedule()
	s.Insert(candidate("09:00", "10:00", "Standup"))

	dup := candidate("09:00", "10:00", "Standup")
	dup.Weekday = "Tue"

	assert.False(t, s.Insert(dup))
}

func TestSchedule_Insert_KeepsStartOrder(t *testing.T) {
	s := domain.NewSchedule()
	s.Insert(candidate("10:00", "11:00", "C"))
	s.Insert(candidate("08:00", "08:30", "A"))
	s.Insert(candidate("09:30", "09:45", "B"))
	s.Insert(candidate("12:00", "13:00", "D"))

	assert.Equal(t, []string{"A", "B", "C", "D"}, titles(t, s, testDate))
}

func TestSchedule_Insert_EqualStartGoesFirst(t *testing.T) {
	s := domain.NewSchedule()
	s.Insert(candidate("09:00", "10:00", "Existing"))
	s.Insert(candidate("09:00", "09:15", "New"))

	assert.Equal(t, []string{"New", "Existing"}, titles(t, s, testDate))
}

func TestSchedule_Insert_ComparesChronologically(t *testing.T) {
	s := domain.NewSchedule()
	s.Insert(candidate("10:00", "11:00", "Ten"))
	s.Insert(candidate("9:00", "9:30", "Nine"))

	assert.Equal(t, []string{"Nine", "Ten"}, titles(t, s, testDate))
}

func TestSchedule_Insert_DoesNotBlockOnConflict(t *testing.T) {
	s := domain.NewSchedule()
	s.Insert(candidate("09:00", "10:00", "Standup"))
	ping := candidate("09:30", "09:45", "Ping")

	assert.NotEmpty(t, s.Conflicts(ping))
	assert.True(t, s.Insert(ping))
}

func TestSchedule_Remove(t *testing.T) {
	t.Run("last slot drops date", func(t *testing.T) {
		s := domain.NewSchedule()
		c := candidate("09:00", "10:00", "Standup")
		s.Insert(c)

		removed, err := s.Remove(c)

		require.NoError(t, err)
		assert.Equal(t, "Standup", removed.Title)
		assert.False(t, s.HasDate(testDate))
		assert.True(t, s.IsEmpty())
	})

	t.Run("missing date", func(t *testing.T) {
		s := domain.NewSchedule()

		_, err := s.Remove(candidate("09:00", "10:00", "Standup"))

		assert.True(t, errors.Is(err, domain.ErrDateNotFound))
	})

	t.Run("no match leaves date unchanged", func(t *testing.T) {
		s := domain.NewSchedule()
		s.Insert(candidate("09:00", "10:00", "Standup"))
		before, _ := s.Slots(testDate)

		_, err := s.Remove(candidate("09:00", "10:00", "Other"))

		assert.True(t, errors.Is(err, domain.ErrSlotNotFound))
		after, _ := s.Slots(testDate)
		assert.Equal(t, before, after)
	})
}

func TestSchedule_IndexOf(t *testing.T) {
	s := domain.NewSchedule()
	s.Insert(candidate("09:00", "10:00", "Standup"))
	s.Insert(candidate("11:00", "12:00", "Review"))

	assert.Equal(t, 1, s.IndexOf(testDate, candidate("11:00", "12:00", "Review").Slot))
	assert.Equal(t, -1, s.IndexOf(testDate, candidate("11:00", "12:30", "Review").Slot))
	assert.Equal(t, -1, s.IndexOf("02/01/2030", candidate("11:00", "12:00", "Review").Slot))
}

func TestSchedule_Scenario(t *testing.T) {
	s := domain.NewSchedule()

	require.True(t, s.Insert(candidate("09:00", "10:00", "Standup")))
	slots, _ := s.Slots(testDate)
	require.Len(t, slots, 1)

	ping := candidate("09:30", "09:45", "Ping")
	assert.Len(t, s.Conflicts(ping), 1)
	require.True(t, s.Insert(ping))

	require.True(t, s.Insert(candidate("08:00", "08:30", "Pre-check")))
	assert.Equal(t, []string{"Pre-check", "Standup", "Ping"}, titles(t, s, testDate))

	_, err := s.Remove(candidate("09:00", "10:00", "Standup"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Pre-check", "Ping"}, titles(t, s, testDate))
}

func TestSchedule_SetSlotsEmptyDeletes(t *testing.T) {
	s := domain.NewSchedule()
	s.Insert(candidate("09:00", "10:00", "Standup"))

	s.SetSlots(testDate, nil)

	assert.False(t, s.HasDate(testDate))
}

func TestSchedule_SlotsReturnsCopy(t *testing.T) {
	s := domain.NewSchedule()
	s.Insert(candidate("09:00", "10:00", "Standup"))

	slots, _ := s.Slots(testDate)
	slots[0].Title = "Mutated"

	assert.Equal(t, []string{"Standup"}, titles(t, s, testDate))
}

func TestSchedule_UpdateAt(t *testing.T) {
	replacement := domain.Slot{Weekday: "Tuesday", StartTime: "14:00", EndTime: "15:00", Title: "Moved"}

	setup := func() *domain.Schedule {
		s := domain.NewSchedule()
		s.Insert(candidate("09:00", "10:00", "Standup"))
		s.Insert(candidate("11:00", "12:00", "Review"))
		return s
	}

	t.Run("replace in place", func(t *testing.T) {
		s := setup()
		action, previous, err := s.UpdateAt(testDate, testDate, 0, replacement)

		require.NoError(t, err)
		assert.Equal(t, domain.UpdateReplaced, action)
		require.NotNil(t, previous)
		assert.Equal(t, "Standup", previous.Title)
		assert.Equal(t, []string{"Moved", "Review"}, titles(t, s, testDate))
	})

	t.Run("append past end", func(t *testing.T) {
		s := setup()
		action, previous, err := s.UpdateAt(testDate, testDate, 7, replacement)

		require.NoError(t, err)
		assert.Equal(t, domain.UpdateAppended, action)
		assert.Nil(t, previous)
		assert.Equal(t, []string{"Standup", "Review", "Moved"}, titles(t, s, testDate))
	})

	t.Run("move to new date", func(t *testing.T) {
		s := setup()
		action, previous, err := s.UpdateAt(testDate, "02/01/2030", 1, replacement)

		require.NoError(t, err)
		assert.Equal(t, domain.UpdateMoved, action)
		require.NotNil(t, previous)
		assert.Equal(t, "Review", previous.Title)
		assert.Equal(t, []string{"Standup"}, titles(t, s, testDate))
		assert.Equal(t, []string{"Moved"}, titles(t, s, "02/01/2030"))
	})

	t.Run("move last slot drops old date", func(t *testing.T) {
		s := domain.NewSchedule()
		s.Insert(candidate("09:00", "10:00", "Standup"))

		_, _, err := s.UpdateAt(testDate, "02/01/2030", 0, replacement)

		require.NoError(t, err)
		assert.False(t, s.HasDate(testDate))
	})

	t.Run("move with bad index", func(t *testing.T) {
		s := setup()
		_, _, err := s.UpdateAt(testDate, "02/01/2030", 5, replacement)

		assert.True(t, errors.Is(err, domain.ErrIndexOutOfRange))
		assert.False(t, s.HasDate("02/01/2030"))
	})

	t.Run("negative index", func(t *testing.T) {
		s := setup()
		_, _, err := s.UpdateAt(testDate, testDate, -1, replacement)

		assert.True(t, errors.Is(err, domain.ErrIndexOutOfRange))
	})

	t.Run("missing old date", func(t *testing.T) {
		s := setup()
		_, _, err := s.UpdateAt("03/01/2030", testDate, 0, replacement)

		assert.True(t, errors.Is(err, domain.ErrDateNotFound))
	})
}

func TestSchedule_Render(t *testing.T) {
	s := domain.NewSchedule()
	s.Insert(candidate("09:00", "10:00", "Standup"))
	s.Insert(domain.NewCandidate("02/01/2030", "Wednesday", "13:00", "14:00", "Lunch"))

	want := "01/01/2030: \n" +
		"\t(Tuesday) Title: Standup, Start Time: 09:00 - End Time: 10:00\n" +
		"02/01/2030: \n" +
		"\t(Wednesday) Title: Lunch, Start Time: 13:00 - End Time: 14:00\n"
	assert.Equal(t, want, s.Render())
}

func TestSchedule_EncodeFormat(t *testing.T) {
	s := domain.NewSchedule()
	s.Insert(candidate("09:00", "10:00", "Café <R&D>"))

	raw, err := s.Encode()
	require.NoError(t, err)

	text := string(raw)
	assert.True(t, strings.HasPrefix(text, "{\n    \"01/01/2030\": ["), text)
	assert.Contains(t, text, "\n        {\n            \"weekday\": \"Tuesday\",")
	assert.Contains(t, text, "Café <R&D>")
}

func TestSchedule_RoundTripPreservesOrder(t *testing.T) {
	doc := `{"05/01/2030":[{"weekday":"Saturday","startTime":"09:00","endTime":"10:00","title":"Late"}],` +
		`"01/01/2030":[{"weekday":"Tuesday","startTime":"09:00","endTime":"10:00","title":"Early"}]}`

	s, err := domain.DecodeSchedule([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, []string{"05/01/2030", "01/01/2030"}, s.Dates())

	raw, err := s.Encode()
	require.NoError(t, err)
	again, err := domain.DecodeSchedule(raw)
	require.NoError(t, err)

	assert.Equal(t, s.Dates(), again.Dates())
	assert.Equal(t, s.Render(), again.Render())
}

func TestDecodeSchedule(t *testing.T) {
	t.Run("blank input is empty", func(t *testing.T) {
		s, err := domain.DecodeSchedule([]byte("  \n"))
		require.NoError(t, err)
		assert.True(t, s.IsEmpty())
	})

	t.Run("drops empty dates", func(t *testing.T) {
		s, err := domain.DecodeSchedule([]byte(`{"01/01/2030":[],"02/01/2030":null}`))
		require.NoError(t, err)
		assert.True(t, s.IsEmpty())
	})

	for name, doc := range map[string]string{
		"garbage":     "not json at all",
		"array":       `[1,2,3]`,
		"wrong value": `{"01/01/2030":"nope"}`,
		"truncated":   `{"01/01/2030":[{"title":"x"`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := domain.DecodeSchedule([]byte(doc))
			assert.True(t, errors.Is(err, domain.ErrMalformedPayload), "got %v", err)
		})
	}
}

func TestSchedule_Clone(t *testing.T) {
	s := domain.NewSchedule()
	s.Insert(candidate("09:00", "10:00", "Standup"))

	clone := s.Clone()
	clone.Insert(candidate("11:00", "12:00", "Review"))

	assert.Equal(t, 1, s.SlotCount())
	assert.Equal(t, 2, clone.SlotCount())
}
