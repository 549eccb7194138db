// Package matching ranks volunteers against an opportunity by skill overlap.
//
// A volunteer's score is the number of distinct tags shared between their skills and the
// opportunity's required skills (exact, case-sensitive). Zero scores are dropped. Results are
// ordered by score descending, then by user id ascending so equal scores come back in a
// stable order across calls.
package matching

import (
	"bytes"
	"sort"

	"github.com/volunteer-bridge/backend/internal/models"
)

// Match is one ranked candidate.
type Match struct {
	Volunteer models.UserPublic `json:"volunteer"`
	Score     int               `json:"score"`
}

// Score counts the distinct tags present in both sets.
func Score(skills, required []string) int {
	if len(skills) == 0 || len(required) == 0 {
		return 0
	}
	want := make(map[string]struct{}, len(required))
	for _, s := range required {
		want[s] = struct{}{}
	}
	score := 0
	for _, s := range skills {
		if _, ok := want[s]; ok {
			score++
			delete(want, s)
		}
	}
	return score
}

// Rank scores every volunteer in pool against opp. Non-volunteers in pool are ignored.
func Rank(opp *models.Opportunity, pool []models.User) []Match {
	matches := make([]Match, 0)
	if opp == nil || len(opp.RequiredSkills) == 0 {
		return matches
	}
	for i := range pool {
		u := &pool[i]
		if !u.Role.IsVolunteer() {
			continue
		}
		if s := Score(u.Skills, opp.RequiredSkills); s > 0 {
			matches = append(matches, Match{Volunteer: u.ToPublic(), Score: s})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return bytes.Compare(matches[i].Volunteer.ID[:], matches[j].Volunteer.ID[:]) < 0
	})
	return matches
}
