package client

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/salescrm/backend/internal/domain/client"
	"github.com/salescrm/backend/internal/domain/sales"
	"github.com/salescrm/backend/internal/domain/shared"
	"github.com/salescrm/backend/internal/domain/visit"
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

// MockVisitRepository is a mock implementation of visit.VisitRepository
type MockVisitRepository struct {
	mock.Mock
}

func (m *MockVisitRepository) Create(ctx context.Context, v *visit.Visit) error {
	return m.Called(ctx, v).Error(0)
}

func (m *MockVisitRepository) CreateBatch(ctx context.Context, visits []*visit.Visit) error {
	return m.Called(ctx, visits).Error(0)
}

func (m *MockVisitRepository) Update(ctx context.Context, v *visit.Visit) error {
	return m.Called(ctx, v).Error(0)
}

func (m *MockVisitRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockVisitRepository) FindByID(ctx context.Context, id uuid.UUID) (*visit.Visit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*visit.Visit), args.Error(1)
}

func (m *MockVisitRepository) FindAll(ctx context.Context, filter visit.VisitFilter) ([]*visit.Visit, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*visit.Visit), args.Get(1).(int64), args.Error(2)
}

func (m *MockVisitRepository) FindAllUnpaged(ctx context.Context, filter visit.VisitFilter) ([]*visit.Visit, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*visit.Visit), args.Error(1)
}

func (m *MockVisitRepository) FindByWeek(ctx context.Context, sellerID uuid.UUID, week, year int, statuses ...visit.Status) ([]*visit.Visit, error) {
	args := m.Called(ctx, sellerID, week, year, statuses)
	return args.Get(0).([]*visit.Visit), args.Error(1)
}

func (m *MockVisitRepository) FindByClient(ctx context.Context, clientID uuid.UUID) ([]*visit.Visit, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).([]*visit.Visit), args.Error(1)
}

func (m *MockVisitRepository) CountByStatus(ctx context.Context, filter visit.VisitFilter) (map[visit.Status]int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(map[visit.Status]int64), args.Error(1)
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
