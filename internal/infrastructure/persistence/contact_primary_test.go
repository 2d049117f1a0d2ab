package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	clientapp "github.com/salescrm/backend/internal/application/client"
	"github.com/salescrm/backend/internal/domain/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestContactPrimaryIndex_RejectsSecondPrimary(t *testing.T) {
	db := setupCRMTestDB(t)
	repo := NewGormContactRepository(db)
	ctx := context.Background()
	clientID := uuid.New()

	for i, name := range []string{"Ana", "Juan"} {
		c, err := client.NewContact(clientID, client.ContactInput{FirstName: name})
		require.NoError(t, err)
		c.SetPrimary(true)
		err = repo.Create(ctx, c)
		if i == 0 {
			require.NoError(t, err)
		} else {
			assert.Error(t, err)
		}
	}
}

// primaryOf returns the IDs of the primary contacts of a client
func primaryOf(t *testing.T, repo *GormContactRepository, clientID uuid.UUID) []uuid.UUID {
	t.Helper()
	list, err := repo.FindByClient(context.Background(), clientID)
	require.NoError(t, err)
	var ids []uuid.UUID
	for _, c := range list {
		if c.IsPrimary {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

func TestContactService_PrimaryChangesAgainstIndex(t *testing.T) {
	db := setupCRMTestDB(t)
	ctx := context.Background()
	clients := NewGormClientRepository(db)
	contacts := NewGormContactRepository(db)
	svc := clientapp.NewContactService(contacts, clients, NewGormTxManager(db), nil, zap.NewNop())

	acme := newTestClient(t, 1, "20123456789", "Acme SAC", "Sector 01")
	require.NoError(t, clients.Create(ctx, acme))

	create := func(name string, primary bool) *clientapp.ContactResponse {
		resp, err := svc.Create(ctx, clientapp.CreateContactRequest{
			ClientID:       acme.ID,
			ContactRequest: clientapp.ContactRequest{FirstName: name},
			IsPrimary:      primary,
		})
		require.NoError(t, err)
		return resp
	}

	ana := create("Ana", false)
	assert.Equal(t, []uuid.UUID{ana.ID}, primaryOf(t, contacts, acme.ID))

	t.Run("create as primary", func(t *testing.T) {
		juan := create("Juan", true)
		assert.Equal(t, []uuid.UUID{juan.ID}, primaryOf(t, contacts, acme.ID))
	})

	t.Run("update to primary", func(t *testing.T) {
		pedro := create("Pedro", false)
		yes := true
		resp, err := svc.Update(ctx, pedro.ID, clientapp.UpdateContactRequest{
			ContactRequest: clientapp.ContactRequest{FirstName: "Pedro", Title: "Gerente"},
			IsPrimary:      &yes,
		})
		require.NoError(t, err)
		assert.True(t, resp.IsPrimary)
		assert.Equal(t, []uuid.UUID{pedro.ID}, primaryOf(t, contacts, acme.ID))
	})

	t.Run("make primary", func(t *testing.T) {
		_, err := svc.MakePrimary(ctx, ana.ID)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{ana.ID}, primaryOf(t, contacts, acme.ID))

		_, err = svc.MakePrimary(ctx, ana.ID)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{ana.ID}, primaryOf(t, contacts, acme.ID))
	})

	t.Run("deleting the primary promotes by name", func(t *testing.T) {
		require.NoError(t, svc.Delete(ctx, ana.ID))
		list, err := contacts.FindByClient(ctx, acme.ID)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.True(t, list[0].IsPrimary)
		assert.Equal(t, "Juan", list[0].FirstName)
	})
}
