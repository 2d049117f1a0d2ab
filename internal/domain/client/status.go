package client

// Status represents the commercial status of a client
type Status string

const (
	StatusPending  Status = "Pendiente"
	StatusVisited  Status = "Visitado"
	StatusToQuote  Status = "Por cotizar"
	StatusQuoted   Status = "Cotizado"
	StatusApproved Status = "Aprobado"
	StatusRejected Status = "Rechazado"
)

// AllStatuses returns every client status in pipeline order
func AllStatuses() []Status {
	return []Status{
		StatusPending,
		StatusVisited,
		StatusToQuote,
		StatusQuoted,
		StatusApproved,
		StatusRejected,
	}
}

// IsValid checks if the status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusVisited, StatusToQuote, StatusQuoted, StatusApproved, StatusRejected:
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
	case StatusPending:
		return target == StatusVisited || target == StatusRejected
	case StatusVisited:
		return target == StatusToQuote || target == StatusRejected
	case StatusToQuote:
		return target == StatusQuoted || target == StatusRejected
	case StatusQuoted:
		return target == StatusApproved || target == StatusRejected || target == StatusToQuote
	case StatusRejected:
		return target == StatusPending
	case StatusApproved:
		return target == StatusToQuote
	}
	return false
}

// IsActive reports whether the client counts as an active account
func (s Status) IsActive() bool {
	switch s {
	case StatusVisited, StatusToQuote, StatusQuoted, StatusApproved:
		return true
	}
	return false
}

// IsPotential reports whether the client is still a prospect
func (s Status) IsPotential() bool {
	switch s {
	case StatusPending, StatusVisited, StatusToQuote:
		return true
	}
	return false
}

// BadgeColor returns the UI color associated with the status
func (s Status) BadgeColor() string {
	switch s {
	case StatusPending:
		return "yellow"
	case StatusVisited:
		return "blue"
	case StatusToQuote:
		return "purple"
	case StatusQuoted:
		return "orange"
	case StatusApproved:
		return "green"
	case StatusRejected:
		return "red"
	}
	return "gray"
}

// Group selects a set of statuses
type Group string

const (
	GroupActive    Group = "active"
	GroupPotential Group = "potential"
)

// Statuses returns the statuses belonging to the group
func (g Group) Statuses() []Status {
	var out []Status
	for _, s := range AllStatuses() {
		if (g == GroupActive && s.IsActive()) || (g == GroupPotential && s.IsPotential()) {
			out = append(out, s)
		}
	}
	return out
}

// IsValid checks if the group is known
func (g Group) IsValid() bool {
	return g == GroupActive || g == GroupPotential
}

// Sectors returns the sector catalog
func Sectors() []string {
	return []string{
		"Sector 01", "Sector 02", "Sector 03", "Sector 04", "Sector 05",
		"Sector 06", "Sector 07", "Sector 08", "Sector 09", "Sector 10",
	}
}

// IsValidSector checks a sector against the catalog
func IsValidSector(sector string) bool {
	for _, s := range Sectors() {
		if s == sector {
			return true
		}
	}
	return false
}
