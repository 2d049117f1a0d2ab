package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/salescrm/backend/internal/domain/catalog"
	"github.com/salescrm/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormProductRepository(t *testing.T) {
	db := setupCRMTestDB(t)
	repo := NewGormProductRepository(db)
	channels := NewGormChannelRepository(db)
	ctx := context.Background()

	retail, err := catalog.NewChannel("Retail")
	require.NoError(t, err)
	require.NoError(t, channels.Create(ctx, retail))
	wholesale, err := catalog.NewChannel("Mayorista")
	require.NoError(t, err)
	require.NoError(t, channels.Create(ctx, wholesale))

	p, err := catalog.NewProduct("lic-01", "Licencia anual", "", decimal.NewFromInt(100), "")
	require.NoError(t, err)
	require.NoError(t, p.SetChannelPrice(retail, decimal.NewFromInt(120)))
	require.NoError(t, repo.Create(ctx, p))

	t.Run("loads channel prices with channel names", func(t *testing.T) {
		found, err := repo.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "LIC-01", found.Code)
		assert.Equal(t, "unidad", found.Unit)
		require.Len(t, found.ChannelPrices, 1)
		assert.Equal(t, "Retail", found.ChannelPrices[0].ChannelName)
		assert.True(t, decimal.NewFromInt(120).Equal(found.PriceFor(retail.ID)))
		assert.True(t, decimal.NewFromInt(100).Equal(found.PriceFor(wholesale.ID)))
	})

	t.Run("update replaces prices and documents", func(t *testing.T) {
		require.NoError(t, p.SetChannelPrice(retail, decimal.NewFromInt(110)))
		require.NoError(t, p.SetChannelPrice(wholesale, decimal.NewFromInt(90)))
		_, err := p.AttachDocument("Ficha", p.StorageKeyFor("ficha.pdf"), "pdf")
		require.NoError(t, err)
		require.NoError(t, repo.Update(ctx, p))

		found, err := repo.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Len(t, found.ChannelPrices, 2)
		assert.True(t, decimal.NewFromInt(110).Equal(found.PriceFor(retail.ID)))
		require.Len(t, found.Documents, 1)
		assert.Equal(t, "Ficha", found.Documents[0].Name)
	})

	t.Run("code uniqueness", func(t *testing.T) {
		exists, err := repo.ExistsByCode(ctx, "LIC-01", nil)
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsByCode(ctx, "LIC-01", &p.ID)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("lists and searches", func(t *testing.T) {
		list, total, err := repo.FindAll(ctx, shared.Filter{Page: 1, PageSize: 20, Search: "licencia"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Len(t, list[0].ChannelPrices, 2)

		all, err := channels.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "Mayorista", all[0].Name)
	})

	t.Run("delete removes children", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, p.ID))
		var count int64
		require.NoError(t, db.Table("channel_prices").Count(&count).Error)
		assert.Equal(t, int64(0), count)
		_, err := repo.FindByID(ctx, p.ID)
		assert.True(t, shared.IsNotFound(err))
		_, err = channels.FindByID(ctx, uuid.New())
		assert.True(t, shared.IsNotFound(err))
	})
}
