package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/salescrm/backend/internal/domain/catalog"
	"github.com/salescrm/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type productFixture struct {
	products  *MockProductRepository
	channels  *MockChannelRepository
	publisher *recordingPublisher
	svc       *ProductService
}

func newProductFixture() *productFixture {
	f := &productFixture{
		products:  new(MockProductRepository),
		channels:  new(MockChannelRepository),
		publisher: &recordingPublisher{},
	}
	f.svc = NewProductService(f.products, f.channels, f.publisher, zap.NewNop())
	return f
}

func newTestProduct(t *testing.T, code string) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(code, "Tubo PVC 110mm", "", decimal.NewFromInt(10), "m")
	require.NoError(t, err)
	p.ClearDomainEvents()
	return p
}

func TestProductService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		f := newProductFixture()
		f.products.On("ExistsByCode", mock.Anything, "PVC-110", (*uuid.UUID)(nil)).Return(false, nil)
		f.products.On("Create", mock.Anything, mock.AnythingOfType("*catalog.Product")).Return(nil)

		resp, err := f.svc.Create(ctx, ProductRequest{Code: "pvc-110", Name: "Tubo PVC", BasePrice: decimal.RequireFromString("12.5")})
		require.NoError(t, err)
		assert.Equal(t, "PVC-110", resp.Code)
		assert.Equal(t, "unidad", resp.Unit)
		assert.Empty(t, resp.ChannelPrices)
		assert.Equal(t, []string{catalog.EventTypeProductCreated}, f.publisher.types())
	})

	t.Run("duplicate code", func(t *testing.T) {
		f := newProductFixture()
		f.products.On("ExistsByCode", mock.Anything, "PVC-110", (*uuid.UUID)(nil)).Return(true, nil)

		_, err := f.svc.Create(ctx, ProductRequest{Code: "PVC-110", Name: "Tubo"})
		assertDomainCode(t, err, shared.CodeAlreadyExists)
		f.products.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestProductService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("same code skips the uniqueness check", func(t *testing.T) {
		f := newProductFixture()
		p := newTestProduct(t, "PVC-110")
		f.products.On("FindByID", mock.Anything, p.ID).Return(p, nil)
		f.products.On("Update", mock.Anything, p).Return(nil)

		resp, err := f.svc.Update(ctx, p.ID, ProductRequest{Code: "pvc-110", Name: "Tubo PVC 110", BasePrice: decimal.NewFromInt(11)})
		require.NoError(t, err)
		assert.Equal(t, "Tubo PVC 110", resp.Name)
		assert.Equal(t, []string{catalog.EventTypeProductPriceChanged}, f.publisher.types())
		f.products.AssertNotCalled(t, "ExistsByCode", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("new code taken by another product", func(t *testing.T) {
		f := newProductFixture()
		p := newTestProduct(t, "PVC-110")
		f.products.On("FindByID", mock.Anything, p.ID).Return(p, nil)
		f.products.On("ExistsByCode", mock.Anything, "PVC-160", &p.ID).Return(true, nil)

		_, err := f.svc.Update(ctx, p.ID, ProductRequest{Code: "PVC-160", Name: "Tubo"})
		assertDomainCode(t, err, shared.CodeAlreadyExists)
	})
}

func TestProductService_SetChannelPrice(t *testing.T) {
	ctx := context.Background()

	t.Run("adds the channel price", func(t *testing.T) {
		f := newProductFixture()
		p := newTestProduct(t, "PVC-110")
		retail, err := catalog.NewChannel("Minorista")
		require.NoError(t, err)
		f.products.On("FindByID", mock.Anything, p.ID).Return(p, nil)
		f.channels.On("FindByID", mock.Anything, retail.ID).Return(retail, nil)
		f.products.On("Update", mock.Anything, p).Return(nil)

		resp, err := f.svc.SetChannelPrice(ctx, p.ID, ChannelPriceRequest{ChannelID: retail.ID, Price: decimal.NewFromInt(14)})
		require.NoError(t, err)
		require.Len(t, resp.ChannelPrices, 1)
		assert.Equal(t, "Minorista", resp.ChannelPrices[0].ChannelName)
		assert.True(t, resp.ChannelPrices[0].Price.Equal(decimal.NewFromInt(14)))
	})

	t.Run("unknown channel", func(t *testing.T) {
		f := newProductFixture()
		p := newTestProduct(t, "PVC-110")
		channelID := uuid.New()
		f.products.On("FindByID", mock.Anything, p.ID).Return(p, nil)
		f.channels.On("FindByID", mock.Anything, channelID).Return(nil, shared.ErrNotFound)

		_, err := f.svc.SetChannelPrice(ctx, p.ID, ChannelPriceRequest{ChannelID: channelID, Price: decimal.NewFromInt(1)})
		assertDomainCode(t, err, shared.CodeValidation)
	})
}

func TestProductService_Delete(t *testing.T) {
	f := newProductFixture()
	p := newTestProduct(t, "PVC-110")
	key := p.StorageKeyFor("ficha.pdf")
	_, err := p.AttachDocument("Ficha", key, "pdf")
	require.NoError(t, err)

	f.products.On("FindByID", mock.Anything, p.ID).Return(p, nil)
	f.products.On("Delete", mock.Anything, p.ID).Return(nil)

	require.NoError(t, f.svc.Delete(context.Background(), p.ID))
	require.Len(t, f.publisher.events, 1)
	deleted, ok := f.publisher.events[0].(*catalog.ProductDeletedEvent)
	require.True(t, ok)
	assert.Equal(t, []string{key}, deleted.StorageKeys)
}

func TestProductService_List(t *testing.T) {
	f := newProductFixture()
	p := newTestProduct(t, "PVC-110")
	f.products.On("FindAll", mock.Anything, mock.MatchedBy(func(filter shared.Filter) bool {
		return filter.Search == "pvc" && filter.Page == 1 && filter.PageSize == 20
	})).Return([]*catalog.Product{p}, int64(1), nil)

	out, total, err := f.svc.List(context.Background(), ProductListFilter{Search: " pvc "})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, out, 1)
	assert.Equal(t, "PVC-110", out[0].Code)
}
