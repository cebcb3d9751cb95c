package models

import (
	"fmt"
	"strings"
	"time"
)

type MatchStatus string

const (
	MatchStatusScheduled MatchStatus = "scheduled"
	MatchStatusCompleted MatchStatus = "completed"
)

// Match is the bilateral contest record. Side B participant references may be
// nil right after fixture generation and are filled by a later
// pairing-completion update.
type Match struct {
	ID             int         `json:"id" db:"id"`
	Category       string      `json:"category" db:"category"`
	RoundNumber    int         `json:"round_number" db:"round_number"`
	MatchCode      *string     `json:"match_code,omitempty" db:"match_code"`
	Player1ID      *int        `json:"player1_id,omitempty" db:"player1_id"`
	Player2ID      *int        `json:"player2_id,omitempty" db:"player2_id"`
	Team1Player1ID *int        `json:"team1_player1_id,omitempty" db:"team1_player1_id"`
	Team1Player2ID *int        `json:"team1_player2_id,omitempty" db:"team1_player2_id"`
	Team2Player1ID *int        `json:"team2_player1_id,omitempty" db:"team2_player1_id"`
	Team2Player2ID *int        `json:"team2_player2_id,omitempty" db:"team2_player2_id"`
	Status         MatchStatus `json:"status" db:"status"`
	WinnerID       *int        `json:"winner_id,omitempty" db:"winner_id"`
	WinnerTeam     *int        `json:"winner_team,omitempty" db:"winner_team"`
	AdvancementType string     `json:"advancement_type" db:"advancement_type"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
	CompletedAt    *time.Time  `json:"completed_at,omitempty" db:"completed_at"`
	UpdatedAt      *time.Time  `json:"updated_at,omitempty" db:"updated_at"`

	// Joined participant display fields.
	Player1Name *string `json:"player1_name,omitempty" db:"-"`
	Player2Name *string `json:"player2_name,omitempty" db:"-"`
	WinnerName  *string `json:"winner_name,omitempty" db:"-"`
}

// IsSingles reports whether the match's category plays one-on-one. Category
// names follow the "Mens Singles" / "Womens Doubles" / "Mixed Doubles"
// convention, so a substring check is enough.
func (m *Match) IsSingles() bool {
	return strings.Contains(m.Category, "Singles")
}

// HasParticipant reports whether the given participant id is one of the
// match's stored player references, on either side.
func (m *Match) HasParticipant(id int) bool {
	for _, ref := range []*int{
		m.Player1ID, m.Player2ID,
		m.Team1Player1ID, m.Team1Player2ID,
		m.Team2Player1ID, m.Team2Player2ID,
	} {
		if ref != nil && *ref == id {
			return true
		}
	}
	return false
}

// MatchCodeFor builds the display code for a match, e.g. "MS-R1-007" for
// Mens Singles round 1 match 7. Generated once at creation and never
// regenerated, even if the round number is later edited.
func MatchCodeFor(matchID int, category string, roundNumber int) string {
	var initials strings.Builder
	for _, word := range strings.Fields(category) {
		initials.WriteByte(strings.ToUpper(word)[0])
	}
	return fmt.Sprintf("%s-R%d-%03d", initials.String(), roundNumber, matchID)
}
