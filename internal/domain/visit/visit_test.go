package visit

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, time.March, 12, 9, 0, 0, 0, time.UTC) // Wednesday, ISO week 11

func details(at time.Time) Details {
	return Details{
		ClientID:    uuid.New(),
		Title:       "Presentación de catálogo",
		ScheduledAt: at,
	}
}

func approvedVisit(t *testing.T) *Visit {
	t.Helper()
	v, err := NewScheduledVisit(uuid.New(), details(testNow.Add(2*time.Hour)), testNow)
	require.NoError(t, err)
	require.NoError(t, v.Approve(uuid.New(), "ok", testNow))
	return v
}

func TestNewScheduledVisit(t *testing.T) {
	t.Run("creates submitted visit with defaults", func(t *testing.T) {
		v, err := NewScheduledVisit(uuid.New(), details(testNow.AddDate(0, 0, 1)), testNow)

		require.NoError(t, err)
		assert.Equal(t, StatusScheduled, v.Status)
		assert.Equal(t, PlanningPlanned, v.PlanningType)
		assert.Equal(t, DefaultDuration, v.EstimatedDuration)
		assert.Equal(t, TypeCommercial, v.Type)
		assert.Equal(t, PriorityMedium, v.Priority)
		assert.Equal(t, ShiftMorning, v.Shift)
		assert.Equal(t, 11, v.Week)
		assert.Equal(t, 2025, v.Year)
		assert.NotNil(t, v.SubmittedAt)
		assert.Len(t, v.GetDomainEvents(), 1)
	})

	t.Run("allows earlier hour of today", func(t *testing.T) {
		_, err := NewScheduledVisit(uuid.New(), details(testNow.Add(-time.Hour)), testNow)
		assert.NoError(t, err)
	})

	t.Run("rejects past date", func(t *testing.T) {
		_, err := NewScheduledVisit(uuid.New(), details(testNow.AddDate(0, 0, -1)), testNow)
		assert.Error(t, err)
	})

	t.Run("rejects duration out of range", func(t *testing.T) {
		d := details(testNow)
		d.EstimatedDuration = 500
		_, err := NewScheduledVisit(uuid.New(), d, testNow)
		assert.Error(t, err)
	})

	t.Run("requires title", func(t *testing.T) {
		d := details(testNow)
		d.Title = "  "
		_, err := NewScheduledVisit(uuid.New(), d, testNow)
		assert.Error(t, err)
	})
}

func TestNewDraftVisit(t *testing.T) {
	t.Run("accepts date inside the week", func(t *testing.T) {
		v, err := NewDraftVisit(uuid.New(), details(testNow), 11, 2025)
		require.NoError(t, err)
		assert.Equal(t, StatusDraft, v.Status)
		assert.Nil(t, v.SubmittedAt)
	})

	t.Run("rejects date outside the week", func(t *testing.T) {
		_, err := NewDraftVisit(uuid.New(), details(testNow.AddDate(0, 0, 7)), 11, 2025)
		assert.Error(t, err)
	})

	t.Run("rejects year before 2024", func(t *testing.T) {
		_, err := NewDraftVisit(uuid.New(), details(testNow), 11, 2023)
		assert.Error(t, err)
	})
}

func TestVisit_PlanningWorkflow(t *testing.T) {
	sellerID := uuid.New()
	managerID := uuid.New()

	v, err := NewDraftVisit(sellerID, details(testNow), 11, 2025)
	require.NoError(t, err)

	require.NoError(t, v.Submit(testNow))
	assert.Equal(t, StatusScheduled, v.Status)

	require.NoError(t, v.RevertToDraft())
	assert.Equal(t, StatusDraft, v.Status)
	assert.Nil(t, v.SubmittedAt)

	require.NoError(t, v.Submit(testNow))
	require.NoError(t, v.Approve(managerID, "Adelante", testNow))
	assert.Equal(t, StatusApproved, v.Status)
	assert.Equal(t, managerID, *v.ManagerID)
	assert.Equal(t, "Adelante", v.ManagerComments)

	satisfaction := 4
	next := testNow.AddDate(0, 0, 5)
	err = v.Complete(Completion{
		Result:               "Cliente interesado",
		CustomerSatisfaction: &satisfaction,
		NextContactAt:        &next,
	}, testNow)
	require.NoError(t, err)
	assert.Equal(t, StatusDone, v.Status)
	assert.NotNil(t, v.CompletedAt)
	assert.True(t, v.Status.IsTerminal())

	assert.Error(t, v.Cancel("tarde"))
}

func TestVisit_Reject(t *testing.T) {
	v, err := NewScheduledVisit(uuid.New(), details(testNow), testNow)
	require.NoError(t, err)

	require.NoError(t, v.Reject(uuid.New(), "No prioritario"))
	assert.Equal(t, StatusCancelled, v.Status)
	assert.Error(t, v.Approve(uuid.New(), "", testNow))
}

func TestVisit_Complete(t *testing.T) {
	t.Run("requires approval", func(t *testing.T) {
		v, err := NewScheduledVisit(uuid.New(), details(testNow), testNow)
		require.NoError(t, err)

		err = v.Complete(Completion{Result: "ok"}, testNow)
		assert.Error(t, err)
		assert.Equal(t, StatusScheduled, v.Status)
	})

	t.Run("requires result", func(t *testing.T) {
		v := approvedVisit(t)
		assert.Error(t, v.Complete(Completion{}, testNow))
	})

	t.Run("rejects satisfaction out of range", func(t *testing.T) {
		v := approvedVisit(t)
		s := 6
		assert.Error(t, v.Complete(Completion{Result: "ok", CustomerSatisfaction: &s}, testNow))
	})

	t.Run("rejects next contact today", func(t *testing.T) {
		v := approvedVisit(t)
		next := testNow.Add(time.Hour)
		assert.Error(t, v.Complete(Completion{Result: "ok", NextContactAt: &next}, testNow))
	})

	t.Run("realize accepts empty result", func(t *testing.T) {
		v := approvedVisit(t)
		require.NoError(t, v.Realize("", nil, testNow))
		assert.Equal(t, StatusDone, v.Status)
	})
}

func TestVisit_Cancel(t *testing.T) {
	v, err := NewScheduledVisit(uuid.New(), details(testNow), testNow)
	require.NoError(t, err)
	v.Notes = "Llevar muestras"
	v.ClearDomainEvents()

	require.NoError(t, v.Cancel(" Cliente de viaje "))
	assert.Equal(t, StatusCancelled, v.Status)
	assert.Equal(t, "Llevar muestras\n\nMotivo de cancelación: Cliente de viaje", v.Notes)

	events := v.GetDomainEvents()
	require.Len(t, events, 1)
	cancelled, ok := events[0].(*VisitCancelledEvent)
	require.True(t, ok)
	assert.Equal(t, StatusScheduled, cancelled.OldStatus)
	assert.Equal(t, "Cliente de viaje", cancelled.Reason)
}

func TestVisit_Reschedule(t *testing.T) {
	v := approvedVisit(t)
	v.ClearDomainEvents()
	previous := v.ScheduledAt
	newDate := testNow.AddDate(0, 0, 14).Add(6 * time.Hour)

	require.NoError(t, v.Reschedule(newDate, testNow))
	assert.Equal(t, StatusScheduled, v.Status)
	assert.Nil(t, v.ApprovedAt)
	assert.Equal(t, 13, v.Week)
	assert.Equal(t, ShiftAfternoon, v.Shift)

	events := v.GetDomainEvents()
	require.Len(t, events, 1)
	moved, ok := events[0].(*VisitRescheduledEvent)
	require.True(t, ok)
	assert.Equal(t, previous, moved.PreviousAt)
	assert.Equal(t, newDate, moved.ScheduledAt)
	assert.Equal(t, EventTypeVisitRescheduled, moved.EventType())

	assert.Error(t, v.Reschedule(testNow.AddDate(0, 0, -3), testNow))
}

func TestVisit_UpdateDetails(t *testing.T) {
	t.Run("date change on approved visit requires new approval", func(t *testing.T) {
		v := approvedVisit(t)
		d := details(testNow.AddDate(0, 0, 1))
		d.ClientID = v.ClientID

		v.ClearDomainEvents()

		require.NoError(t, v.UpdateDetails(d))
		assert.Equal(t, StatusScheduled, v.Status)
		require.Len(t, v.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeVisitRescheduled, v.GetDomainEvents()[0].EventType())
	})

	t.Run("same date raises no event", func(t *testing.T) {
		v := approvedVisit(t)
		d := details(v.ScheduledAt)
		d.ClientID = v.ClientID
		d.Title = "Nuevo título"
		v.ClearDomainEvents()

		require.NoError(t, v.UpdateDetails(d))
		assert.Equal(t, StatusApproved, v.Status)
		assert.Empty(t, v.GetDomainEvents())
	})

	t.Run("finished visit cannot be edited", func(t *testing.T) {
		v := approvedVisit(t)
		require.NoError(t, v.Realize("", nil, testNow))
		assert.Error(t, v.UpdateDetails(details(testNow)))
	})
}

func TestNewUnplannedVisit(t *testing.T) {
	prob := 70
	v, err := NewUnplannedVisit(uuid.New(), UnplannedReport{
		ClientID:           uuid.New(),
		Title:              "Visita espontánea",
		Summary:            "Revisamos la propuesta",
		Agreements:         "Enviar cotización",
		ProbabilityOfClose: &prob,
	}, testNow)

	require.NoError(t, err)
	assert.Equal(t, StatusDone, v.Status)
	assert.Equal(t, TypeFollowUp, v.Type)
	assert.Equal(t, PlanningUnplanned, v.PlanningType)
	assert.Equal(t, testNow, *v.CompletedAt)
	assert.Contains(t, v.Notes, "Acuerdos: Enviar cotización")

	_, err = NewUnplannedVisit(uuid.New(), UnplannedReport{ClientID: uuid.New(), Title: "x"}, testNow)
	assert.Error(t, err)
}

func TestStatus_CanTransitionTo(t *testing.T) {
	assert.True(t, StatusDraft.CanTransitionTo(StatusScheduled))
	assert.False(t, StatusDraft.CanTransitionTo(StatusApproved))
	assert.True(t, StatusScheduled.CanTransitionTo(StatusDraft))
	assert.True(t, StatusApproved.CanTransitionTo(StatusScheduled))
	for _, s := range AllStatuses() {
		assert.False(t, StatusDone.CanTransitionTo(s))
		assert.False(t, StatusCancelled.CanTransitionTo(s))
	}
}

func TestVisit_IsOverdue(t *testing.T) {
	v, err := NewScheduledVisit(uuid.New(), details(testNow.Add(-time.Hour)), testNow)
	require.NoError(t, err)
	assert.True(t, v.IsOverdue(testNow))
	assert.True(t, v.IsToday(testNow))

	require.NoError(t, v.Cancel(""))
	assert.False(t, v.IsOverdue(testNow))
}
