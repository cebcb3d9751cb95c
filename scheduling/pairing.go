package scheduling

import (
	"strings"

	"github.com/officesports/matchday/models"
)

// SinglesPair is two participants facing each other in a singles match.
type SinglesPair struct {
	Player1 models.Participant
	Player2 models.Participant
}

// IsDoublesCategory reports whether a category pairs teams rather than
// individual players.
func IsDoublesCategory(category string) bool {
	return strings.Contains(category, "Doubles")
}

// PairSingles pairs participants in input order, producing floor(n/2) pairs.
// With an odd count the trailing participant is returned as unpaired so the
// caller can surface a warning; nothing is silently lost.
func PairSingles(players []models.Participant) (pairs []SinglesPair, unpaired []models.Participant) {
	pairs = make([]SinglesPair, 0, len(players)/2)
	for i := 0; i+1 < len(players); i += 2 {
		pairs = append(pairs, SinglesPair{Player1: players[i], Player2: players[i+1]})
	}
	if len(players)%2 != 0 {
		unpaired = append(unpaired, players[len(players)-1])
	}
	return pairs, unpaired
}

// PairTeams builds doubles teams from mutual partner references. A
// participant joins exactly one team: the first time it is reached in input
// order with a partner that is present in the same list and points back at
// it. Participants with no declared partner, a partner absent from the list,
// or a one-way link are returned as excluded. Placeholder-partner creation
// upstream is expected to make absent partners rare.
func PairTeams(players []models.Participant) (teams []models.Team, excluded []models.Participant) {
	byEmpID := make(map[string]int, len(players))
	for i, p := range players {
		if _, ok := byEmpID[p.EmpID]; !ok {
			byEmpID[p.EmpID] = i
		}
	}

	processed := make(map[int]bool, len(players))
	teams = make([]models.Team, 0, len(players)/2)

	for _, player := range players {
		if processed[player.ID] {
			continue
		}
		if player.PartnerEmpID == nil || *player.PartnerEmpID == "" {
			excluded = append(excluded, player)
			continue
		}

		idx, ok := byEmpID[*player.PartnerEmpID]
		if !ok {
			excluded = append(excluded, player)
			continue
		}
		partner := players[idx]
		if processed[partner.ID] || partner.ID == player.ID {
			excluded = append(excluded, player)
			continue
		}
		if partner.PartnerEmpID == nil || *partner.PartnerEmpID != player.EmpID {
			excluded = append(excluded, player)
			continue
		}

		teams = append(teams, models.Team{Player1: player, Player2: partner})
		processed[player.ID] = true
		processed[partner.ID] = true
	}

	return teams, excluded
}
