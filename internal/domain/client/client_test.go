package client

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() ClientInput {
	return ClientInput{
		RUC:              "20123456789",
		BusinessName:     "Acme SAC",
		Sector:           "Sector 01",
		Website:          "https://acme.pe",
		PotentialValue:   decimal.NewFromInt(15000),
		CloseProbability: 40,
		Tags:             []string{"minería", " Minería ", ""},
	}
}

func TestNewClient(t *testing.T) {
	t.Run("creates pending client", func(t *testing.T) {
		c, err := NewClient("EMP-000001", validInput())

		require.NoError(t, err)
		assert.Equal(t, StatusPending, c.Status)
		assert.Equal(t, "EMP-000001", c.Code)
		assert.Equal(t, []string{"minería"}, c.Tags)
		require.Len(t, c.GetDomainEvents(), 1)
	})

	t.Run("rejects invalid RUC", func(t *testing.T) {
		in := validInput()
		in.RUC = "2012345"
		_, err := NewClient("EMP-000001", in)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "11 digits")
	})

	t.Run("rejects unknown sector", func(t *testing.T) {
		in := validInput()
		in.Sector = "Sector 99"
		_, err := NewClient("EMP-000001", in)
		assert.Error(t, err)
	})

	t.Run("rejects invalid website", func(t *testing.T) {
		in := validInput()
		in.Website = "acme"
		_, err := NewClient("EMP-000001", in)
		assert.Error(t, err)
	})

	t.Run("rejects probability out of range", func(t *testing.T) {
		in := validInput()
		in.CloseProbability = 101
		_, err := NewClient("EMP-000001", in)
		assert.Error(t, err)
	})

	t.Run("rejects negative potential value", func(t *testing.T) {
		in := validInput()
		in.PotentialValue = decimal.NewFromInt(-1)
		_, err := NewClient("EMP-000001", in)
		assert.Error(t, err)
	})
}

func TestClient_ChangeStatus(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		to      Status
		wantErr bool
	}{
		{"pending to visited", StatusPending, StatusVisited, false},
		{"pending to quoted", StatusPending, StatusQuoted, true},
		{"visited to to-quote", StatusVisited, StatusToQuote, false},
		{"quoted to approved", StatusQuoted, StatusApproved, false},
		{"quoted back to to-quote", StatusQuoted, StatusToQuote, false},
		{"rejected to pending", StatusRejected, StatusPending, false},
		{"rejected to approved", StatusRejected, StatusApproved, true},
		{"approved to to-quote", StatusApproved, StatusToQuote, false},
		{"approved to rejected", StatusApproved, StatusRejected, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClient("EMP-000001", validInput())
			require.NoError(t, err)
			c.Status = tt.from
			c.ClearDomainEvents()

			err = c.ChangeStatus(tt.to)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, tt.from, c.Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, c.Status)
			assert.Len(t, c.GetDomainEvents(), 1)
		})
	}
}

func TestClient_Update_PipelineEvent(t *testing.T) {
	t.Run("value change raises an event", func(t *testing.T) {
		c, err := NewClient("EMP-000001", validInput())
		require.NoError(t, err)
		c.ClearDomainEvents()

		in := validInput()
		in.PotentialValue = decimal.NewFromInt(20000)
		require.NoError(t, c.Update(in))
		events := c.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeClientPipelineChanged, events[0].EventType())
	})

	t.Run("notes only raise nothing", func(t *testing.T) {
		c, err := NewClient("EMP-000001", validInput())
		require.NoError(t, err)
		c.ClearDomainEvents()

		in := validInput()
		in.Notes = "Llamar el lunes"
		require.NoError(t, c.Update(in))
		assert.Empty(t, c.GetDomainEvents())
	})
}

func TestClient_AdvanceTo(t *testing.T) {
	c, err := NewClient("EMP-000001", validInput())
	require.NoError(t, err)

	assert.True(t, c.AdvanceTo(StatusVisited))
	assert.False(t, c.AdvanceTo(StatusVisited))
	assert.False(t, c.AdvanceTo(StatusApproved))
	assert.Equal(t, StatusVisited, c.Status)
}

func TestStatusGroups(t *testing.T) {
	assert.Equal(t, []Status{StatusVisited, StatusToQuote, StatusQuoted, StatusApproved}, GroupActive.Statuses())
	assert.Equal(t, []Status{StatusPending, StatusVisited, StatusToQuote}, GroupPotential.Statuses())
	assert.Equal(t, "yellow", StatusPending.BadgeColor())
	assert.Equal(t, "gray", Status("x").BadgeColor())
}

func TestCodes(t *testing.T) {
	assert.Equal(t, "EMP-000001", NextCode(""))
	assert.Equal(t, "EMP-000043", NextCode("EMP-000042"))
	assert.Equal(t, 0, ParseCodeNumber("XYZ-1"))
}

func TestClient_WeightedValue(t *testing.T) {
	c, err := NewClient("EMP-000001", validInput())
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(6000).Equal(c.WeightedValue()))
}
