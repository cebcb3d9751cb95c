package scheduling

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidInterval     = errors.New("slot interval must be positive")
	ErrInvalidSlotCapacity = errors.New("matches per slot must be positive")
)

// Slot is one generated time window entry. Windows with capacity > 1 are
// emitted as that many identical entries; matches sharing a window are told
// apart later by court number.
type Slot struct {
	StartTime time.Time
	EndTime   time.Time
	Label     string
	Capacity  int
}

// GenerateSlots walks from start to end in steps of intervalMinutes and emits
// matchesPerSlot entries per window. The final window is clipped to end if a
// full step would overshoot. A start at or past end yields no slots. The
// function is pure: identical inputs always reproduce the identical sequence.
func GenerateSlots(start, end time.Time, intervalMinutes, matchesPerSlot int) ([]Slot, error) {
	if intervalMinutes <= 0 {
		return nil, ErrInvalidInterval
	}
	if matchesPerSlot <= 0 {
		return nil, ErrInvalidSlotCapacity
	}

	slots := make([]Slot, 0)
	interval := time.Duration(intervalMinutes) * time.Minute

	for current := start; current.Before(end); {
		slotEnd := current.Add(interval)
		if slotEnd.After(end) {
			slotEnd = end
		}

		label := formatSlotLabel(current, slotEnd)
		for i := 0; i < matchesPerSlot; i++ {
			slots = append(slots, Slot{
				StartTime: current,
				EndTime:   slotEnd,
				Label:     label,
				Capacity:  matchesPerSlot,
			})
		}

		current = slotEnd
	}

	return slots, nil
}

// formatSlotLabel renders a window as "11:00am-11:20am".
func formatSlotLabel(start, end time.Time) string {
	return strings.ToLower(start.Format("3:04PM") + "-" + end.Format("3:04PM"))
}
