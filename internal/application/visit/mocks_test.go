package visit

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/salescrm/backend/internal/domain/client"
	"github.com/salescrm/backend/internal/domain/identity"
	"github.com/salescrm/backend/internal/domain/shared"
	"github.com/salescrm/backend/internal/domain/visit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

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
