package scheduling

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/officesports/matchday/models"
)

func singlesRoster(n int) []models.Participant {
	players := make([]models.Participant, 0, n)
	for i := 1; i <= n; i++ {
		players = append(players, models.Participant{
			ID:       i,
			EmpID:    fmt.Sprintf("EMP%03d", i),
			Name:     fmt.Sprintf("Player %d", i),
			Category: "Mens Singles",
		})
	}
	return players
}

func doublesPlayer(id int, empID, partnerEmpID string) models.Participant {
	p := models.Participant{
		ID:       id,
		EmpID:    empID,
		Name:     "Player " + empID,
		Category: "Mens Doubles",
	}
	if partnerEmpID != "" {
		p.PartnerEmpID = &partnerEmpID
	}
	return p
}

func TestPairSinglesOddRoster(t *testing.T) {
	pairs, unpaired := PairSingles(singlesRoster(9))

	require.Len(t, pairs, 4)
	require.Len(t, unpaired, 1)
	assert.Equal(t, "EMP009", unpaired[0].EmpID)

	// Input-order stable: pair i holds players 2i+1 and 2i+2.
	for i, pair := range pairs {
		assert.Equal(t, 2*i+1, pair.Player1.ID)
		assert.Equal(t, 2*i+2, pair.Player2.ID)
	}
}

func TestPairSinglesEvenRoster(t *testing.T) {
	pairs, unpaired := PairSingles(singlesRoster(8))
	assert.Len(t, pairs, 4)
	assert.Empty(t, unpaired)
}

func TestPairSinglesDeterministic(t *testing.T) {
	roster := singlesRoster(7)
	first, _ := PairSingles(roster)
	second, _ := PairSingles(roster)
	assert.Equal(t, first, second)
}

func TestPairTeamsMutualLinks(t *testing.T) {
	// Eight players: three mutual teams, plus E700 pointing at E800 while
	// E800 declares nobody.
	players := []models.Participant{
		doublesPlayer(1, "E100", "E200"),
		doublesPlayer(2, "E200", "E100"),
		doublesPlayer(3, "E300", "E400"),
		doublesPlayer(4, "E400", "E300"),
		doublesPlayer(5, "E500", "E600"),
		doublesPlayer(6, "E600", "E500"),
		doublesPlayer(7, "E700", "E800"),
		doublesPlayer(8, "E800", ""),
	}

	teams, excluded := PairTeams(players)

	require.Len(t, teams, 3)
	require.Len(t, excluded, 2)
	assert.Equal(t, "E700", excluded[0].EmpID)
	assert.Equal(t, "E800", excluded[1].EmpID)

	seen := map[int]bool{}
	for _, team := range teams {
		require.NotNil(t, team.Player1.PartnerEmpID)
		require.NotNil(t, team.Player2.PartnerEmpID)
		assert.Equal(t, team.Player2.EmpID, *team.Player1.PartnerEmpID)
		assert.Equal(t, team.Player1.EmpID, *team.Player2.PartnerEmpID)
		assert.False(t, seen[team.Player1.ID], "player in two teams")
		assert.False(t, seen[team.Player2.ID], "player in two teams")
		seen[team.Player1.ID] = true
		seen[team.Player2.ID] = true
	}
}

func TestPairTeamsPartnerAbsentFromSet(t *testing.T) {
	players := []models.Participant{
		doublesPlayer(1, "E100", "E200"),
		doublesPlayer(2, "E200", "E100"),
		doublesPlayer(3, "E300", "E999"), // partner never imported
	}

	teams, excluded := PairTeams(players)
	require.Len(t, teams, 1)
	require.Len(t, excluded, 1)
	assert.Equal(t, "E300", excluded[0].EmpID)
}

func TestIsDoublesCategory(t *testing.T) {
	assert.True(t, IsDoublesCategory("Mens Doubles"))
	assert.True(t, IsDoublesCategory("Mixed Doubles"))
	assert.False(t, IsDoublesCategory("Womens Singles"))
}
