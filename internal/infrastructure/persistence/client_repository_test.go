package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/salescrm/backend/internal/domain/client"
	"github.com/salescrm/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, n int, ruc, name, sector string) *client.Client {
	c, err := client.NewClient(client.FormatCode(n), client.ClientInput{
		RUC:              ruc,
		BusinessName:     name,
		Sector:           sector,
		PotentialValue:   decimal.NewFromInt(1000),
		CloseProbability: 50,
		Tags:             []string{"retail"},
	})
	require.NoError(t, err)
	return c
}

func TestGormClientRepository_CreateAndFind(t *testing.T) {
	db := setupCRMTestDB(t)
	repo := NewGormClientRepository(db)
	ctx := context.Background()

	c := newTestClient(t, 1, "20123456789", "Acme SAC", "Sector 01")
	require.NoError(t, repo.Create(ctx, c))

	found, err := repo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "EMP-000001", found.Code)
	assert.Equal(t, "Acme SAC", found.BusinessName)
	assert.Equal(t, client.StatusPending, found.Status)
	assert.True(t, decimal.NewFromInt(1000).Equal(found.PotentialValue))
	assert.Equal(t, []string{"retail"}, found.Tags)

	byRUC, err := repo.FindByRUC(ctx, "20123456789")
	require.NoError(t, err)
	assert.Equal(t, c.ID, byRUC.ID)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.True(t, shared.IsNotFound(err))
}

func TestGormClientRepository_ExistsByRUC(t *testing.T) {
	db := setupCRMTestDB(t)
	repo := NewGormClientRepository(db)
	ctx := context.Background()

	c := newTestClient(t, 1, "20123456789", "Acme SAC", "Sector 01")
	require.NoError(t, repo.Create(ctx, c))

	exists, err := repo.ExistsByRUC(ctx, "20123456789", nil)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByRUC(ctx, "20123456789", &c.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = repo.ExistsByRUC(ctx, "20999999999", nil)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGormClientRepository_FindAll(t *testing.T) {
	db := setupCRMTestDB(t)
	repo := NewGormClientRepository(db)
	ctx := context.Background()

	acme := newTestClient(t, 1, "20123456789", "Acme SAC", "Sector 01")
	beta := newTestClient(t, 2, "20123456780", "Beta Industrial", "Sector 02")
	require.NoError(t, beta.ChangeStatus(client.StatusVisited))
	gamma := newTestClient(t, 3, "20123456781", "Gamma_Corp", "Sector 02")
	require.NoError(t, gamma.ChangeStatus(client.StatusRejected))
	for _, c := range []*client.Client{acme, beta, gamma} {
		require.NoError(t, repo.Create(ctx, c))
	}

	t.Run("search is case-insensitive", func(t *testing.T) {
		list, total, err := repo.FindAll(ctx, client.ClientFilter{
			Filter: shared.Filter{Page: 1, PageSize: 20, Search: "ACME"},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, acme.ID, list[0].ID)
	})

	t.Run("underscore is matched literally", func(t *testing.T) {
		_, total, err := repo.FindAll(ctx, client.ClientFilter{
			Filter: shared.Filter{Page: 1, PageSize: 20, Search: "a_c"},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
	})

	t.Run("filters by sector and group", func(t *testing.T) {
		list, total, err := repo.FindAll(ctx, client.ClientFilter{
			Filter: shared.Filter{Page: 1, PageSize: 20},
			Sector: "Sector 02",
			Group:  client.GroupActive,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, beta.ID, list[0].ID)
	})

	t.Run("paginates and sorts", func(t *testing.T) {
		list, total, err := repo.FindAll(ctx, client.ClientFilter{
			Filter: shared.Filter{Page: 2, PageSize: 2, OrderBy: "business_name", OrderDir: "asc"},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, list, 1)
		assert.Equal(t, gamma.ID, list[0].ID)
	})

	t.Run("unpaged defaults to name order", func(t *testing.T) {
		list, err := repo.FindAllUnpaged(ctx, client.ClientFilter{})
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, "Acme SAC", list[0].BusinessName)
	})
}

func TestGormClientRepository_CodesAndOptions(t *testing.T) {
	db := setupCRMTestDB(t)
	repo := NewGormClientRepository(db)
	ctx := context.Background()

	last, err := repo.LastCode(ctx)
	require.NoError(t, err)
	assert.Empty(t, last)

	require.NoError(t, repo.Create(ctx, newTestClient(t, 7, "20123456789", "Zeta", "Sector 01")))
	require.NoError(t, repo.Create(ctx, newTestClient(t, 12, "20123456780", "Alfa", "Sector 01")))

	last, err = repo.LastCode(ctx)
	require.NoError(t, err)
	assert.Equal(t, "EMP-000012", last)

	options, err := repo.ListOptions(ctx)
	require.NoError(t, err)
	require.Len(t, options, 2)
	assert.Equal(t, "Alfa", options[0].BusinessName)
}

func TestGormClientRepository_UpdateAndDelete(t *testing.T) {
	db := setupCRMTestDB(t)
	repo := NewGormClientRepository(db)
	contacts := NewGormContactRepository(db)
	ctx := context.Background()

	c := newTestClient(t, 1, "20123456789", "Acme SAC", "Sector 01")
	require.NoError(t, repo.Create(ctx, c))
	contact, err := client.NewContact(c.ID, client.ContactInput{FirstName: "Ana", Email: "ana@acme.pe"})
	require.NoError(t, err)
	require.NoError(t, contacts.Create(ctx, contact))

	c.RecordContact(time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC))
	require.NoError(t, repo.Update(ctx, c))

	found, err := repo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, found.LastContactAt)

	require.NoError(t, repo.Delete(ctx, c.ID))
	_, err = contacts.FindByID(ctx, contact.ID)
	assert.True(t, shared.IsNotFound(err))
	assert.True(t, shared.IsNotFound(repo.Delete(ctx, c.ID)))
}
