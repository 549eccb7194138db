package matching

import (
	"sort"

	"github.com/volunteer-bridge/backend/internal/models"
)

// Recommendation is an open opportunity scored for one volunteer.
type Recommendation struct {
	Opportunity models.Opportunity `json:"opportunity"`
	Score       int                `json:"score"`
}

// Recommend scores OPEN opportunities against the volunteer's skills, highest first, earliest start
// breaking ties.
func Recommend(volunteer *models.User, opportunities []models.Opportunity) []Recommendation {
	recs := make([]Recommendation, 0)
	if volunteer == nil || !volunteer.Role.IsVolunteer() {
		return recs
	}
	for _, o := range opportunities {
		if o.Status != models.OpportunityOpen {
			continue
		}
		if s := Score(volunteer.Skills, o.RequiredSkills); s > 0 {
			recs = append(recs, Recommendation{Opportunity: o, Score: s})
		}
	}
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Score != recs[j].Score {
			return recs[i].Score > recs[j].Score
		}
		return recs[i].Opportunity.StartDate.Before(recs[j].Opportunity.StartDate)
	})
	return recs
}
