package scheduling

import (
	"errors"
	"fmt"
	"time"

	"github.com/officesports/matchday/models"
)

var ErrInsufficientTime = errors.New("not enough time in window for requested matches")

// AssignParams carries the run-wide attributes stamped onto every fixture and
// match draft produced by one generation run.
type AssignParams struct {
	Category    string
	Game        string
	SlotTag     *string
	Location    *string
	RoundNumber int
}

// Assignment is the result of walking pairing units over generated slots.
// Fixtures holds two per-side rows per logical match, Matches one bilateral
// row per logical match with side B left open for the pairing-completion
// step. Nothing is persisted here. Scheduled counts logical matches placed;
// Dropped counts pairing units (pairs or teams) left without a slot or an
// opponent.
type Assignment struct {
	Fixtures  []models.Fixture
	Matches   []models.Match
	Scheduled int
	Dropped   int
}

// CheckTimeBudget rejects a generation run whose per-slot demand cannot fit
// the window: matchesPerSlot matches at intervalMinutes each must not need
// more minutes than the window holds. A roster larger than the window's
// capacity is not an error here; the assigner schedules what fits and
// reports the rest as dropped.
func CheckTimeBudget(start, end time.Time, intervalMinutes, matchesPerSlot int) error {
	if intervalMinutes <= 0 {
		return ErrInvalidInterval
	}
	required := time.Duration(matchesPerSlot*intervalMinutes) * time.Minute
	available := end.Sub(start)
	if required > available {
		return fmt.Errorf("%w: need %d minutes, window has %d",
			ErrInsufficientTime, int(required.Minutes()), int(available.Minutes()))
	}
	return nil
}

// AssignSingles places each pair into the next free slot entry. One pair is
// one logical match: two fixture rows (one per player) plus one match row
// with player2 unresolved.
func AssignSingles(pairs []SinglesPair, slots []Slot, params AssignParams) Assignment {
	var out Assignment
	var courts courtCycle

	for i, pair := range pairs {
		if i >= len(slots) {
			out.Dropped = len(pairs) - i
			break
		}
		slot := slots[i]
		court := courts.next(slot)

		out.Fixtures = append(out.Fixtures,
			singlesFixture(pair.Player1, slot, court, params),
			singlesFixture(pair.Player2, slot, court, params),
		)
		out.Matches = append(out.Matches, models.Match{
			Category:        params.Category,
			RoundNumber:     params.RoundNumber,
			Player1ID:       intPtr(pair.Player1.ID),
			Status:          models.MatchStatusScheduled,
			AdvancementType: "normal",
		})
		out.Scheduled++
	}

	return out
}

// AssignTeams places consecutive teams two at a time; each consecutive pair
// of teams is one logical match on one court. A trailing team with no
// opponent is dropped and reported.
func AssignTeams(teams []models.Team, slots []Slot, params AssignParams) Assignment {
	var out Assignment
	var courts courtCycle

	matchIndex := 0
	for i := 0; i+1 < len(teams); i += 2 {
		if matchIndex >= len(slots) {
			out.Dropped += len(teams) - i
			return out
		}
		slot := slots[matchIndex]
		court := courts.next(slot)

		out.Fixtures = append(out.Fixtures,
			teamFixture(teams[i], slot, court, params),
			teamFixture(teams[i+1], slot, court, params),
		)
		out.Matches = append(out.Matches, models.Match{
			Category:        params.Category,
			RoundNumber:     params.RoundNumber,
			Team1Player1ID:  intPtr(teams[i].Player1.ID),
			Team1Player2ID:  intPtr(teams[i].Player2.ID),
			Status:          models.MatchStatusScheduled,
			AdvancementType: "normal",
		})
		out.Scheduled++
		matchIndex++
	}

	if len(teams)%2 != 0 {
		out.Dropped++
	}
	return out
}

func singlesFixture(p models.Participant, slot Slot, court int, params AssignParams) models.Fixture {
	f := baseFixture(slot, court, params)
	f.Player1ID = intPtr(p.ID)
	return f
}

func teamFixture(t models.Team, slot Slot, court int, params AssignParams) models.Fixture {
	f := baseFixture(slot, court, params)
	f.Team1Player1ID = intPtr(t.Player1.ID)
	f.Team1Player2ID = intPtr(t.Player2.ID)
	return f
}

func baseFixture(slot Slot, court int, params AssignParams) models.Fixture {
	return models.Fixture{
		Category:    params.Category,
		TimeSlot:    slot.Label,
		RoundNumber: params.RoundNumber,
		CourtNumber: court,
		Location:    params.Location,
		Game:        params.Game,
		Slot:        params.SlotTag,
		Status:      models.FixtureStatusScheduled,
	}
}

// courtCycle hands out court numbers 1..capacity within one wall-clock
// window, restarting at 1 when the window advances.
type courtCycle struct {
	window time.Time
	court  int
}

func (c *courtCycle) next(slot Slot) int {
	if !slot.StartTime.Equal(c.window) {
		c.window = slot.StartTime
		c.court = 0
	}
	c.court = c.court%slot.Capacity + 1
	return c.court
}

func intPtr(v int) *int { return &v }
