package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/volunteer-bridge/backend/internal/apperr"
)

func TestRoleFromFlags(t *testing.T) {
	tests := []struct {
		name      string
		vol, org  bool
		want      Role
		wantError error
	}{
		{"volunteer", true, false, RoleVolunteer, nil},
		{"organization", false, true, RoleOrganization, nil},
		{"both", true, true, "", ErrConflictRole},
		{"neither", false, false, "", ErrInvalidRole},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RoleFromFlags(tt.vol, tt.org)
			assert.Equal(t, tt.want, got)
			assert.ErrorIs(t, err, tt.wantError)
		})
	}
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("organization")
	require.NoError(t, err)
	assert.True(t, r.IsOrganization())
	assert.False(t, r.IsVolunteer())

	_, err = ParseRole("admin")
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestUserPublicJSONCarriesRoleFlags(t *testing.T) {
	u := User{ID: uuid.New(), Email: "a@example.org", Role: RoleVolunteer, Skills: []string{"python"}}
	raw, err := json.Marshal(u.ToPublic())
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, true, got["is_volunteer"])
	assert.Equal(t, false, got["is_organization"])
	assert.Equal(t, "volunteer", got["role"])
	assert.NotContains(t, got, "password")
}

func TestValidateWindow(t *testing.T) {
	start := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	assert.NoError(t, ValidateWindow("start_time", start, "end_time", start.Add(time.Hour)))

	err := ValidateWindow("start_time", start, "end_time", start)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.EqualError(t, err, "end_time must be after start_time")

	err = ValidateWindow("start_date", time.Time{}, "end_date", start)
	assert.EqualError(t, err, "start_date is required")
}

func TestHoursBetween(t *testing.T) {
	start := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, 2.0, HoursBetween(start, start.Add(2*time.Hour)))
	assert.Equal(t, 1.33, HoursBetween(start, start.Add(80*time.Minute)))
}

func TestNormalizeTags(t *testing.T) {
	assert.Equal(t, []string{"python", "Python", "design"}, NormalizeTags([]string{"python", "", "Python", "python", "design"}))
	assert.Empty(t, NormalizeTags(nil))
}
