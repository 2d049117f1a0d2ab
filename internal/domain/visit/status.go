package visit

import "time"

// Status represents the state of a visit in the planning workflow
type Status string

const (
	// StatusDraft is a visit saved in a weekly plan that was not submitted yet
	StatusDraft     Status = "pendiente"
	StatusScheduled Status = "programada"
	StatusApproved  Status = "aprobada"
	StatusDone      Status = "realizada"
	StatusCancelled Status = "cancelada"
)

// AllStatuses returns every visit status
func AllStatuses() []Status {
	return []Status{StatusDraft, StatusScheduled, StatusApproved, StatusDone, StatusCancelled}
}

// IsValid checks if the status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusScheduled, StatusApproved, StatusDone, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation
func (s Status) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusDraft:
		return target == StatusScheduled || target == StatusCancelled
	case StatusScheduled:
		return target == StatusApproved || target == StatusCancelled || target == StatusDraft
	case StatusApproved:
		return target == StatusDone || target == StatusCancelled || target == StatusScheduled
	}
	return false
}

// IsTerminal reports whether no further transition is possible
func (s Status) IsTerminal() bool {
	return s == StatusDone || s == StatusCancelled
}

// IsOpen reports whether the visit is still expected to happen
func (s Status) IsOpen() bool {
	return s == StatusDraft || s == StatusScheduled || s == StatusApproved
}

// OpenStatuses returns the statuses of visits still to be carried out
func OpenStatuses() []Status {
	return []Status{StatusDraft, StatusScheduled, StatusApproved}
}

// BadgeColor returns the UI color associated with the status
func (s Status) BadgeColor() string {
	switch s {
	case StatusDraft:
		return "yellow"
	case StatusScheduled:
		return "blue"
	case StatusApproved:
		return "indigo"
	case StatusDone:
		return "green"
	case StatusCancelled:
		return "red"
	}
	return "gray"
}

// Type is the purpose of a visit
type Type string

const (
	TypeCommercial Type = "comercial"
	TypeTechnical  Type = "tecnica"
	TypeFollowUp   Type = "seguimiento"
	TypeAfterSales Type = "postventa"
)

// IsValid checks if the type is valid
func (t Type) IsValid() bool {
	switch t {
	case TypeCommercial, TypeTechnical, TypeFollowUp, TypeAfterSales:
		return true
	}
	return false
}

// BadgeColor returns the UI color associated with the type
func (t Type) BadgeColor() string {
	switch t {
	case TypeCommercial:
		return "green"
	case TypeTechnical:
		return "blue"
	case TypeFollowUp:
		return "purple"
	case TypeAfterSales:
		return "indigo"
	}
	return "gray"
}

// AllTypes returns every visit type
func AllTypes() []Type {
	return []Type{TypeCommercial, TypeTechnical, TypeFollowUp, TypeAfterSales}
}

// PlanningType tells whether the visit came from a weekly plan
type PlanningType string

const (
	PlanningPlanned   PlanningType = "planificada"
	PlanningUnplanned PlanningType = "no_planificada"
)

// Priority of a visit
type Priority string

const (
	PriorityLow    Priority = "baja"
	PriorityMedium Priority = "media"
	PriorityHigh   Priority = "alta"
	PriorityUrgent Priority = "urgente"
)

// IsValid checks if the priority is valid
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// BadgeColor returns the UI color associated with the priority
func (p Priority) BadgeColor() string {
	switch p {
	case PriorityMedium:
		return "yellow"
	case PriorityHigh:
		return "orange"
	case PriorityUrgent:
		return "red"
	}
	return "gray"
}

// Shift is the part of the day the visit is scheduled in
type Shift string

const (
	ShiftMorning   Shift = "mañana"
	ShiftAfternoon Shift = "tarde"
)

// IsValid checks if the shift is valid
func (s Shift) IsValid() bool {
	return s == ShiftMorning || s == ShiftAfternoon
}

// ShiftFor derives the shift from the hour of day
func ShiftFor(t time.Time) Shift {
	if t.Hour() >= 13 {
		return ShiftAfternoon
	}
	return ShiftMorning
}
