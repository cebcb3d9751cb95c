package models

import "time"

type FixtureStatus string

const (
	FixtureStatusScheduled FixtureStatus = "scheduled"
	FixtureStatusCompleted FixtureStatus = "completed"
)

// Fixture is one scheduled occasion (time slot, court, location) for one side
// of a logical match. A singles logical match produces two fixtures, one per
// player; a doubles logical match produces two fixtures, one per team. The
// per-side split keeps email tracking independent for each side.
type Fixture struct {
	ID            int           `json:"id" db:"id"`
	Category      string        `json:"category" db:"category"`
	TimeSlot      string        `json:"time_slot" db:"time_slot"`
	RoundNumber   int           `json:"round_number" db:"round_number"`
	CourtNumber   int           `json:"court_number" db:"court_number"`
	Location      *string       `json:"location,omitempty" db:"location"`
	Game          string        `json:"game" db:"game"`
	Slot          *string       `json:"slot,omitempty" db:"slot"`
	Player1ID     *int          `json:"player1_id,omitempty" db:"player1_id"`
	Player2ID     *int          `json:"player2_id,omitempty" db:"player2_id"`
	Team1Player1ID *int         `json:"team1_player1_id,omitempty" db:"team1_player1_id"`
	Team1Player2ID *int         `json:"team1_player2_id,omitempty" db:"team1_player2_id"`
	Team2Player1ID *int         `json:"team2_player1_id,omitempty" db:"team2_player1_id"`
	Team2Player2ID *int         `json:"team2_player2_id,omitempty" db:"team2_player2_id"`
	Status        FixtureStatus `json:"status" db:"status"`
	EmailsSent    bool          `json:"emails_sent" db:"emails_sent"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`

	// Joined participant display fields, not columns of fixtures.
	Player1Name     *string `json:"player1_name,omitempty" db:"-"`
	Player1EmpID    *string `json:"player1_emp_id,omitempty" db:"-"`
	Team1Player1Name *string `json:"team1_player1_name,omitempty" db:"-"`
	Team1Player2Name *string `json:"team1_player2_name,omitempty" db:"-"`
}
