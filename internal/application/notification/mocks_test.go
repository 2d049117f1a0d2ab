package notification

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/salescrm/backend/internal/domain/client"
	"github.com/salescrm/backend/internal/domain/identity"
	"github.com/salescrm/backend/internal/domain/shared"
	"github.com/salescrm/backend/internal/infrastructure/email"
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

// recordingSender keeps every message instead of delivering it
type recordingSender struct {
	mu       sync.Mutex
	messages []email.Message
	err      error
}

func (s *recordingSender) Send(_ context.Context, msg email.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.messages = append(s.messages, msg)
	return nil
}

func (s *recordingSender) sent() []email.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]email.Message(nil), s.messages...)
}

type chatMessage struct {
	phone string
	text  string
}

// recordingMessenger keeps every WhatsApp message
type recordingMessenger struct {
	mu       sync.Mutex
	messages []chatMessage
	err      error
}

func (m *recordingMessenger) Send(_ context.Context, phone, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, chatMessage{phone: phone, text: text})
	return nil
}

var errGatewayDown = errors.New("gateway down")

func assertDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, code, domainErr.Code)
}
