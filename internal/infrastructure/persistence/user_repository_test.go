package persistence

import (
	"context"
	"testing"

	"github.com/salescrm/backend/internal/domain/identity"
	"github.com/salescrm/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormUserRepository(t *testing.T) {
	db := setupCRMTestDB(t)
	repo := NewGormUserRepository(db)
	ctx := context.Background()

	newUser := func(name, email string, role identity.Role) *identity.User {
		u, err := identity.NewUser(name, email, "$2a$10$hash", role)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, u))
		return u
	}

	manager := newUser("Gerente General", "gerente@crm.pe", identity.RoleManager)
	seller := newUser("Carla Ventas", "carla@crm.pe", identity.RoleSeller)
	inactive := newUser("Pedro Ventas", "pedro@crm.pe", identity.RoleSeller)
	require.NoError(t, inactive.Deactivate())
	require.NoError(t, repo.Update(ctx, inactive))

	t.Run("finds by email case-insensitively", func(t *testing.T) {
		found, err := repo.FindByEmail(ctx, "GERENTE@crm.pe")
		require.NoError(t, err)
		assert.Equal(t, manager.ID, found.ID)
		assert.True(t, found.IsManager())

		exists, err := repo.ExistsByEmail(ctx, " carla@crm.pe ")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("active users by role", func(t *testing.T) {
		first, err := repo.FindFirstActiveByRole(ctx, identity.RoleSeller)
		require.NoError(t, err)
		assert.Equal(t, seller.ID, first.ID)

		sellers, err := repo.FindActiveByRole(ctx, identity.RoleSeller)
		require.NoError(t, err)
		assert.Len(t, sellers, 1)
	})

	t.Run("filters list", func(t *testing.T) {
		role := identity.RoleSeller
		list, total, err := repo.FindAll(ctx, identity.UserFilter{
			Filter: shared.Filter{Page: 1, PageSize: 20, Search: "ventas"},
			Role:   &role,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, list, 2)

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})
}
