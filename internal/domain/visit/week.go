package visit

import (
	"fmt"
	"time"

	"github.com/salescrm/backend/internal/domain/shared"
)

// MinPlanningYear is the first year accepted for weekly planning
const MinPlanningYear = 2024

// ISOWeek returns the ISO-8601 week and year of t
func ISOWeek(t time.Time) (week, year int) {
	year, week = t.ISOWeek()
	return week, year
}

// WeeksInYear returns the number of ISO weeks of a year (52 or 53)
func WeeksInYear(year int) int {
	_, w := time.Date(year, time.December, 28, 0, 0, 0, 0, time.UTC).ISOWeek()
	return w
}

// WeekRange returns the [Monday 00:00, next Monday 00:00) range of an ISO week
func WeekRange(week, year int, loc *time.Location) shared.DateRange {
	if loc == nil {
		loc = time.Local
	}
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, loc)
	offset := int(jan4.Weekday()) - 1
	if offset < 0 {
		offset = 6
	}
	monday := jan4.AddDate(0, 0, -offset+(week-1)*7)
	return shared.DateRange{From: monday, To: monday.AddDate(0, 0, 7)}
}

// ValidateWeek checks a planning week/year pair
func ValidateWeek(week, year int) error {
	if year < MinPlanningYear {
		return shared.NewDomainError(shared.CodeValidation, fmt.Sprintf("Year must be %d or later", MinPlanningYear))
	}
	if week < 1 || week > 53 {
		return shared.NewDomainError(shared.CodeValidation, "Week must be between 1 and 53")
	}
	if week > WeeksInYear(year) {
		return shared.NewDomainError(shared.CodeValidation, fmt.Sprintf("Year %d has only %d weeks", year, WeeksInYear(year)))
	}
	return nil
}

// StartOfDay truncates t to midnight in its location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DayRange returns the range covering the calendar day of t
func DayRange(t time.Time) shared.DateRange {
	start := StartOfDay(t)
	return shared.DateRange{From: start, To: start.AddDate(0, 0, 1)}
}

// MonthRange returns the range covering the calendar month of t
func MonthRange(t time.Time) shared.DateRange {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return shared.DateRange{From: start, To: start.AddDate(0, 1, 0)}
}

// FormatDuration renders minutes as "Xh Ym"
func FormatDuration(minutes int) string {
	if minutes <= 0 {
		return "No especificada"
	}
	h, m := minutes/60, minutes%60
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dm", m)
	}
}
