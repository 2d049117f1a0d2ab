package integration

import (
	"context"
	"testing"

	"github.com/google/uuid"
	clientapp "github.com/salescrm/backend/internal/application/client"
	"github.com/salescrm/backend/internal/domain/client"
	"github.com/salescrm/backend/internal/infrastructure/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestContactService_PrimaryContact_Integration(t *testing.T) {
	testDB := NewTestDB(t)
	ctx := context.Background()
	clients := persistence.NewGormClientRepository(testDB.DB)
	contacts := persistence.NewGormContactRepository(testDB.DB)
	svc := clientapp.NewContactService(contacts, clients, persistence.NewGormTxManager(testDB.DB), nil, zap.NewNop())

	acme := newClient(t, 1, "Sector 01")
	require.NoError(t, clients.Create(ctx, acme))

	primaries := func() []uuid.UUID {
		t.Helper()
		var ids []uuid.UUID
		require.NoError(t, testDB.DB.Table("contacts").
			Where("client_id = ? AND is_primary", acme.ID).
			Pluck("id", &ids).Error)
		return ids
	}
	create := func(name string, primary bool) uuid.UUID {
		t.Helper()
		resp, err := svc.Create(ctx, clientapp.CreateContactRequest{
			ClientID:       acme.ID,
			ContactRequest: clientapp.ContactRequest{FirstName: name},
			IsPrimary:      primary,
		})
		require.NoError(t, err)
		return resp.ID
	}

	ana := create("Ana", false)
	assert.Equal(t, []uuid.UUID{ana}, primaries())

	juan := create("Juan", true)
	assert.Equal(t, []uuid.UUID{juan}, primaries())

	pedro := create("Pedro", false)
	yes := true
	_, err := svc.Update(ctx, pedro, clientapp.UpdateContactRequest{
		ContactRequest: clientapp.ContactRequest{FirstName: "Pedro"},
		IsPrimary:      &yes,
	})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{pedro}, primaries())

	_, err = svc.MakePrimary(ctx, ana)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{ana}, primaries())

	t.Run("index rejects a second primary", func(t *testing.T) {
		c, err := client.NewContact(acme.ID, client.ContactInput{FirstName: "Rosa"})
		require.NoError(t, err)
		c.SetPrimary(true)
		assert.Error(t, contacts.Create(ctx, c))
	})
}
