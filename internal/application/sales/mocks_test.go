package sales

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/salescrm/backend/internal/domain/catalog"
	"github.com/salescrm/backend/internal/domain/client"
	"github.com/salescrm/backend/internal/domain/identity"
	"github.com/salescrm/backend/internal/domain/sales"
	"github.com/salescrm/backend/internal/domain/shared"
	"github.com/salescrm/backend/internal/infrastructure/printing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockClientRepository is a mock implementation of client.ClientRepository
type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) Create(ctx context.Context, c *client.Client) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockClientRepository) Update(ctx context.Context, c *client.Client) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*client.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.Client), args.Error(1)
}

func (m *MockClientRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*client.Client, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]*client.Client), args.Error(1)
}

func (m *MockClientRepository) FindByRUC(ctx context.Context, ruc string) (*client.Client, error) {
	args := m.Called(ctx, ruc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.Client), args.Error(1)
}

func (m *MockClientRepository) ExistsByRUC(ctx context.Context, ruc string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, ruc, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockClientRepository) FindAll(ctx context.Context, filter client.ClientFilter) ([]*client.Client, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*client.Client), args.Get(1).(int64), args.Error(2)
}

func (m *MockClientRepository) FindAllUnpaged(ctx context.Context, filter client.ClientFilter) ([]*client.Client, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*client.Client), args.Error(1)
}

func (m *MockClientRepository) ListOptions(ctx context.Context) ([]client.Summary, error) {
	args := m.Called(ctx)
	return args.Get(0).([]client.Summary), args.Error(1)
}

func (m *MockClientRepository) LastCode(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// MockContactRepository is a mock implementation of client.ContactRepository
type MockContactRepository struct {
	mock.Mock
}

func (m *MockContactRepository) Create(ctx context.Context, c *client.Contact) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockContactRepository) Update(ctx context.Context, c *client.Contact) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockContactRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockContactRepository) FindByID(ctx context.Context, id uuid.UUID) (*client.Contact, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.Contact), args.Error(1)
}

func (m *MockContactRepository) FindByClient(ctx context.Context, clientID uuid.UUID) ([]*client.Contact, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).([]*client.Contact), args.Error(1)
}

func (m *MockContactRepository) FindPrimaryByClients(ctx context.Context, clientIDs []uuid.UUID) (map[uuid.UUID]*client.Contact, error) {
	args := m.Called(ctx, clientIDs)
	return args.Get(0).(map[uuid.UUID]*client.Contact), args.Error(1)
}

func (m *MockContactRepository) FindAll(ctx context.Context, filter client.ContactFilter) ([]*client.Contact, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*client.Contact), args.Get(1).(int64), args.Error(2)
}

func (m *MockContactRepository) FindAllUnpaged(ctx context.Context, filter client.ContactFilter) ([]*client.Contact, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*client.Contact), args.Error(1)
}


// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*identity.User, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindAll(ctx context.Context, filter identity.UserFilter) ([]*identity.User, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*identity.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) FindFirstActiveByRole(ctx context.Context, role identity.Role) (*identity.User, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindActiveByRole(ctx context.Context, role identity.Role) ([]*identity.User, error) {
	args := m.Called(ctx, role)
	return args.Get(0).([]*identity.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, p *catalog.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProductRepository) Update(ctx context.Context, p *catalog.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*catalog.Product, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*catalog.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) ExistsByCode(ctx context.Context, code string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, code, excludeID)
	return args.Bool(0), args.Error(1)
}

// MockPrinter is a mock QuotationPrinter
type MockPrinter struct {
	mock.Mock
}

func (m *MockPrinter) Print(ctx context.Context, doc printing.QuotationDocument) ([]byte, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockQuotationRepository is a mock implementation of sales.QuotationRepository
type MockQuotationRepository struct {
	mock.Mock
}

func (m *MockQuotationRepository) Create(ctx context.Context, q *sales.Quotation) error {
	return m.Called(ctx, q).Error(0)
}

func (m *MockQuotationRepository) Update(ctx context.Context, q *sales.Quotation) error {
	return m.Called(ctx, q).Error(0)
}

func (m *MockQuotationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockQuotationRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.Quotation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.Quotation), args.Error(1)
}

func (m *MockQuotationRepository) FindAll(ctx context.Context, filter sales.QuotationFilter) ([]*sales.Quotation, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*sales.Quotation), args.Get(1).(int64), args.Error(2)
}

func (m *MockQuotationRepository) FindByClient(ctx context.Context, clientID uuid.UUID) ([]*sales.Quotation, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).([]*sales.Quotation), args.Error(1)
}

func (m *MockQuotationRepository) FindSentExpiringBefore(ctx context.Context, t time.Time) ([]*sales.Quotation, error) {
	args := m.Called(ctx, t)
	return args.Get(0).([]*sales.Quotation), args.Error(1)
}

func (m *MockQuotationRepository) CountByClient(ctx context.Context, clientID uuid.UUID) (int64, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockQuotationRepository) LastCode(ctx context.Context, prefix string) (string, error) {
	args := m.Called(ctx, prefix)
	return args.String(0), args.Error(1)
}

// MockOrderRepository is a mock implementation of sales.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, o *sales.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *sales.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *MockOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAll(ctx context.Context, filter sales.OrderFilter) ([]*sales.Order, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*sales.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) FindByClient(ctx context.Context, clientID uuid.UUID) ([]*sales.Order, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).([]*sales.Order), args.Error(1)
}

func (m *MockOrderRepository) CountByClient(ctx context.Context, clientID uuid.UUID) (int64, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) CountByStatus(ctx context.Context, filter sales.OrderFilter) (map[sales.OrderStatus]int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(map[sales.OrderStatus]int64), args.Error(1)
}

func (m *MockOrderRepository) LastCode(ctx context.Context, prefix string) (string, error) {
	args := m.Called(ctx, prefix)
	return args.String(0), args.Error(1)
}

// passthroughTx runs the callback without a transaction
type passthroughTx struct{}

func (passthroughTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// recordingPublisher captures published events
type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

func assertDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, code, domainErr.Code)
}
