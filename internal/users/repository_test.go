package users

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/volunteer-bridge/backend/internal/apperr"
	"github.com/volunteer-bridge/backend/internal/models"
	"github.com/volunteer-bridge/backend/pkg/database"
)

func setupRepository(t *testing.T) (*Repository, context.Context) {
	t.Helper()
	ctx := context.Background()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("Skipping Postgres tests: DATABASE_URL not set.")
	}
	pool, err := database.NewPostgresPool(ctx, dsn, database.PoolOptions{}, nil)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	_, err = database.Migrate(ctx, pool, nil)
	require.NoError(t, err)
	return NewRepository(pool), ctx
}

func createUser(t *testing.T, ctx context.Context, repo *Repository, role models.Role, skills ...string) *models.User {
	t.Helper()
	u, err := repo.Create(ctx, models.CreateUserParams{
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "hash",
		FullName:     "Test User",
		Role:         role,
		Skills:       skills,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = repo.pool.Exec(context.Background(), `DELETE FROM users WHERE id = $1`, u.ID)
	})
	return u
}

func TestRepository_CreateAndLookup(t *testing.T) {
	repo, ctx := setupRepository(t)
	u := createUser(t, ctx, repo, models.RoleVolunteer, "first aid")

	got, err := repo.GetByEmail(ctx, u.Email)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, []string{"first aid"}, got.Skills)
	assert.Empty(t, got.Interests)

	_, err = repo.Create(ctx, models.CreateUserParams{Email: u.Email, PasswordHash: "x", FullName: "Dup", Role: models.RoleVolunteer})
	assert.ErrorIs(t, err, apperr.Conflict("email already registered"))

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, apperr.NotFound("user"))
}

func TestRepository_ListVolunteers(t *testing.T) {
	repo, ctx := setupRepository(t)
	vol := createUser(t, ctx, repo, models.RoleVolunteer, "cooking")
	org := createUser(t, ctx, repo, models.RoleOrganization)

	list, err := repo.ListVolunteers(ctx)
	require.NoError(t, err)
	ids := map[uuid.UUID]bool{}
	for _, u := range list {
		assert.Equal(t, models.RoleVolunteer, u.Role)
		ids[u.ID] = true
	}
	assert.True(t, ids[vol.ID])
	assert.False(t, ids[org.ID])
}

func TestRepository_UpdateProfileKeepsNilFields(t *testing.T) {
	repo, ctx := setupRepository(t)
	u := createUser(t, ctx, repo, models.RoleVolunteer, "driving")

	bio := "weekends"
	got, err := repo.UpdateProfile(ctx, u.ID, ProfileUpdate{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "weekends", got.Bio)
	assert.Equal(t, "Test User", got.FullName)
	assert.Equal(t, []string{"driving"}, got.Skills)
	assert.Equal(t, models.RoleVolunteer, got.Role)

	got, err = repo.UpdateProfile(ctx, u.ID, ProfileUpdate{Skills: []string{}})
	require.NoError(t, err)
	assert.Empty(t, got.Skills)
	assert.Equal(t, "weekends", got.Bio)
}
