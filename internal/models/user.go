package models

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Role is the single account role. A user is either a volunteer or an organization, never both.
type Role string

const (
	RoleVolunteer    Role = "volunteer"
	RoleOrganization Role = "organization"
)

var (
	ErrInvalidRole  = errors.New("role must be volunteer or organization")
	ErrConflictRole = errors.New("user cannot be both volunteer and organization")
)

// ParseRole validates a role string.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleVolunteer, RoleOrganization:
		return Role(s), nil
	default:
		return "", ErrInvalidRole
	}
}

// RoleFromFlags maps the is_volunteer / is_organization flag pair onto a Role.
func RoleFromFlags(isVolunteer, isOrganization bool) (Role, error) {
	switch {
	case isVolunteer && isOrganization:
		return "", ErrConflictRole
	case isVolunteer:
		return RoleVolunteer, nil
	case isOrganization:
		return RoleOrganization, nil
	default:
		return "", ErrInvalidRole
	}
}

// IsVolunteer reports whether the role is volunteer.
func (r Role) IsVolunteer() bool { return r == RoleVolunteer }

// IsOrganization reports whether the role is organization.
func (r Role) IsOrganization() bool { return r == RoleOrganization }

// User represents a platform user.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	FullName  string    `json:"full_name"`
	Role      Role      `json:"role"`
	Skills    []string  `json:"skills"`
	Interests []string  `json:"interests"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	Bio       string    `json:"bio"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateUserParams holds the fields for registration.
type CreateUserParams struct {
	Email        string
	PasswordHash string
	FullName     string
	Role         Role
	Skills       []string
	Interests    []string
	Phone        string
	Address      string
	Bio          string
}

// UserPublic is User without sensitive fields for API responses.
type UserPublic struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      Role      `json:"role"`
	Skills    []string  `json:"skills"`
	Interests []string  `json:"interests"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	Bio       string    `json:"bio,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// MarshalJSON adds the derived is_volunteer / is_organization flags.
func (u UserPublic) MarshalJSON() ([]byte, error) {
	type alias UserPublic
	return json.Marshal(struct {
		alias
		IsVolunteer    bool `json:"is_volunteer"`
		IsOrganization bool `json:"is_organization"`
	}{alias(u), u.Role.IsVolunteer(), u.Role.IsOrganization()})
}

// ToPublic converts User to UserPublic.
func (u *User) ToPublic() UserPublic {
	return UserPublic{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      u.Role,
		Skills:    u.Skills,
		Interests: u.Interests,
		Phone:     u.Phone,
		Address:   u.Address,
		Bio:       u.Bio,
		CreatedAt: u.CreatedAt,
	}
}
