package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dayAt(hour, minute int) time.Time {
	return time.Date(2025, time.March, 14, hour, minute, 0, 0, time.UTC)
}

func TestGenerateSlotsCoversFullWindow(t *testing.T) {
	// 11:00-13:00 at 20 minute intervals, 2 matches per slot: 6 windows of
	// 2 entries each, covering the full 120 minutes.
	slots, err := GenerateSlots(dayAt(11, 0), dayAt(13, 0), 20, 2)
	require.NoError(t, err)
	require.Len(t, slots, 12)

	assert.Equal(t, "11:00am-11:20am", slots[0].Label)
	assert.Equal(t, slots[0].Label, slots[1].Label)
	assert.Equal(t, "11:20am-11:40am", slots[2].Label)
	assert.Equal(t, "11:40am-12:00pm", slots[4].Label)
	assert.Equal(t, "12:40pm-1:00pm", slots[10].Label)

	last := slots[len(slots)-1]
	assert.True(t, last.EndTime.Equal(dayAt(13, 0)))

	// Non-decreasing windows, each at most one interval wide, exactly two
	// entries per distinct window.
	perWindow := map[string]int{}
	for i, s := range slots {
		assert.LessOrEqual(t, s.EndTime.Sub(s.StartTime), 20*time.Minute)
		if i > 0 {
			assert.False(t, s.StartTime.Before(slots[i-1].StartTime))
		}
		perWindow[s.Label]++
	}
	for label, n := range perWindow {
		assert.Equal(t, 2, n, "window %s", label)
	}
}

func TestGenerateSlotsClipsFinalWindow(t *testing.T) {
	slots, err := GenerateSlots(dayAt(9, 0), dayAt(9, 50), 20, 1)
	require.NoError(t, err)
	require.Len(t, slots, 3)
	assert.Equal(t, "9:40am-9:50am", slots[2].Label)
	assert.Equal(t, 10*time.Minute, slots[2].EndTime.Sub(slots[2].StartTime))
}

func TestGenerateSlotsEmptyWindow(t *testing.T) {
	slots, err := GenerateSlots(dayAt(13, 0), dayAt(11, 0), 20, 2)
	require.NoError(t, err)
	assert.Empty(t, slots)

	slots, err = GenerateSlots(dayAt(11, 0), dayAt(11, 0), 20, 2)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestGenerateSlotsRejectsBadInputs(t *testing.T) {
	_, err := GenerateSlots(dayAt(11, 0), dayAt(13, 0), 0, 2)
	assert.ErrorIs(t, err, ErrInvalidInterval)

	_, err = GenerateSlots(dayAt(11, 0), dayAt(13, 0), -5, 2)
	assert.ErrorIs(t, err, ErrInvalidInterval)

	_, err = GenerateSlots(dayAt(11, 0), dayAt(13, 0), 20, 0)
	assert.ErrorIs(t, err, ErrInvalidSlotCapacity)
}

func TestGenerateSlotsDeterministic(t *testing.T) {
	first, err := GenerateSlots(dayAt(11, 0), dayAt(13, 0), 15, 3)
	require.NoError(t, err)
	second, err := GenerateSlots(dayAt(11, 0), dayAt(13, 0), 15, 3)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
