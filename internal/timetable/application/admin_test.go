package application

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/timetable/internal/timetable/domain"
)

func TestEngine_UpdateSlot(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T) *Engine {
		t.Helper()
		e, _, _, _ := newTestEngine(t)
		_, err := e.InsertBatch(ctx, []domain.Candidate{
			slot("08:00", "09:00", "A"),
			slot("10:00", "11:00", "B"),
		})
		require.NoError(t, err)
		return e
	}

	t.Run("replaces in place without re-sorting", func(t *testing.T) {
		e := seed(t)

		out, err := e.UpdateSlot(ctx, UpdateRequest{
			Date:  day,
			Index: 0,
			Slot:  domain.Slot{Weekday: "Tuesday", StartTime: "12:00", EndTime: "13:00", Title: "Lunch"},
		})

		require.NoError(t, err)
		assert.Equal(t, domain.UpdateReplaced, out.Action)
		assert.Equal(t, "Updated slot in "+day, out.Message)
		assert.Equal(t, []string{"Lunch", "B"}, titlesOn(t, e, day))
	})

	t.Run("appends past the end", func(t *testing.T) {
		e := seed(t)

		out, err := e.UpdateSlot(ctx, UpdateRequest{
			Date:  day,
			Index: 7,
			Slot:  domain.Slot{Weekday: "Tuesday", StartTime: "07:00", EndTime: "07:30", Title: "Early"},
		})

		require.NoError(t, err)
		assert.Equal(t, domain.UpdateAppended, out.Action)
		assert.Equal(t, []string{"A", "B", "Early"}, titlesOn(t, e, day))
	})

	t.Run("moves across dates and drops the emptied date", func(t *testing.T) {
		e, _, pub, _ := newTestEngine(t)
		_, err := e.Insert(ctx, slot("08:00", "09:00", "A"))
		require.NoError(t, err)

		out, err := e.UpdateSlot(ctx, UpdateRequest{
			OldDate: day,
			Date:    "02/01/2030",
			Index:   0,
			Slot:    domain.Slot{Weekday: "Wednesday", StartTime: "08:00", EndTime: "09:00", Title: "A"},
		})

		require.NoError(t, err)
		assert.Equal(t, domain.UpdateMoved, out.Action)
		assert.Equal(t, "Moved slot from 01/01/2030 to 02/01/2030", out.Message)

		s, err := e.Snapshot(ctx)
		require.NoError(t, err)
		assert.False(t, s.HasDate(day))
		assert.Equal(t, []string{"02/01/2030"}, s.Dates())
		assert.Equal(t, []string{domain.RoutingKeySlotAdded, domain.RoutingKeySlotMoved}, pub.RoutingKeys())

		var moved domain.SlotUpdated
		require.NoError(t, json.Unmarshal(pub.Messages()[1].Payload, &moved))
		assert.Equal(t, day, moved.OldDate)
		require.NotNil(t, moved.Previous)
		assert.Equal(t, "Tuesday", moved.Previous.Weekday)
	})

	t.Run("unknown old date", func(t *testing.T) {
		e := seed(t)
		_, err := e.UpdateSlot(ctx, UpdateRequest{
			Date: "03/01/2030",
			Slot: domain.Slot{StartTime: "08:00", EndTime: "09:00", Title: "X"},
		})
		assert.ErrorIs(t, err, domain.ErrDateNotFound)
	})

	t.Run("move index out of range", func(t *testing.T) {
		e := seed(t)
		_, err := e.UpdateSlot(ctx, UpdateRequest{
			OldDate: day,
			Date:    "02/01/2030",
			Index:   5,
			Slot:    domain.Slot{StartTime: "08:00", EndTime: "09:00", Title: "X"},
		})
		assert.ErrorIs(t, err, domain.ErrIndexOutOfRange)
	})

	t.Run("invalid requests", func(t *testing.T) {
		e := seed(t)
		valid := domain.Slot{StartTime: "08:00", EndTime: "09:00", Title: "X"}

		for name, req := range map[string]UpdateRequest{
			"missing date":   {Slot: valid},
			"negative index": {Date: day, Index: -1, Slot: valid},
			"bad times":      {Date: day, Slot: domain.Slot{StartTime: "9am", EndTime: "10am", Title: "X"}},
			"no title":       {Date: day, Slot: domain.Slot{StartTime: "08:00", EndTime: "09:00"}},
		} {
			_, err := e.UpdateSlot(ctx, req)
			assert.ErrorIs(t, err, ErrInvalidRequest, name)
		}
		assert.Equal(t, []string{"A", "B"}, titlesOn(t, e, day))
	})
}
