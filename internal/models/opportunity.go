package models

import (
	"time"

	"github.com/google/uuid"
)

// OpportunityStatus is the lifecycle state of an opportunity. Transitions are manual.
type OpportunityStatus string

const (
	OpportunityOpen      OpportunityStatus = "OPEN"
	OpportunityFilled    OpportunityStatus = "FILLED"
	OpportunityCompleted OpportunityStatus = "COMPLETED"
	OpportunityCancelled OpportunityStatus = "CANCELLED"
)

// Valid reports whether s is a known status.
func (s OpportunityStatus) Valid() bool {
	switch s {
	case OpportunityOpen, OpportunityFilled, OpportunityCompleted, OpportunityCancelled:
		return true
	}
	return false
}

// Category groups opportunities; volunteers' interests use the same values.
type Category string

const (
	CategoryEducation     Category = "EDUCATION"
	CategoryEnvironment   Category = "ENVIRONMENT"
	CategoryHealth        Category = "HEALTH"
	CategoryCommunity     Category = "COMMUNITY"
	CategoryAnimalWelfare Category = "ANIMAL_WELFARE"
	CategoryArtsCulture   Category = "ARTS_CULTURE"
	CategoryOther         Category = "OTHER"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryEducation, CategoryEnvironment, CategoryHealth, CategoryCommunity,
		CategoryAnimalWelfare, CategoryArtsCulture, CategoryOther:
		return true
	}
	return false
}

// Opportunity is an organization-posted volunteering task.
type Opportunity struct {
	ID             uuid.UUID         `json:"id"`
	OrganizationID uuid.UUID         `json:"organization_id"`
	Title          string            `json:"title"`
	Description    string            `json:"description"`
	RequiredSkills []string          `json:"required_skills"`
	Category       Category          `json:"category"`
	StartDate      time.Time         `json:"start_date"`
	EndDate        time.Time         `json:"end_date"`
	Location       string            `json:"location"`
	Status         OpportunityStatus `json:"status"`
	MaxVolunteers  int               `json:"max_volunteers"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}
