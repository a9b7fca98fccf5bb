package utils

import (
	"fmt"
	"time"

	"github.com/julianstephens/vitrine/internal/constants"
)

// MonthGridCells is the number of cells in a month view: six full weeks.
const MonthGridCells = 42

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(timezone)
}

// ValidateTimezone checks if the timezone name is valid.
func ValidateTimezone(timezone string) bool {
	_, err := LoadLocation(timezone)
	return err == nil
}

// Today returns midnight of the current day in loc.
func Today(loc *time.Location) time.Time {
	return StartOfDay(time.Now().In(loc))
}

// TodayISO returns today's date (YYYY-MM-DD) in the given timezone.
func TodayISO(timezone string) (string, error) {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return "", fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return ToISO(Today(loc)), nil
}

// StartOfDay drops the clock part of t, keeping its location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ToISO formats the calendar date of t as YYYY-MM-DD.
func ToISO(t time.Time) string {
	return t.Format(constants.DateFormat)
}

// ParseDateInLocation parses a date string (YYYY-MM-DD) as midnight in loc.
func ParseDateInLocation(dateStr string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse(constants.DateFormat, dateStr)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), nil
}

// ValidateDate reports whether s is a YYYY-MM-DD date. Empty is valid and
// means "no date".
func ValidateDate(s string) bool {
	if s == "" {
		return true
	}
	_, err := time.Parse(constants.DateFormat, s)
	return err == nil
}

// ValidateTimeFormat reports whether s is an HH:MM time. Empty is valid.
func ValidateTimeFormat(s string) bool {
	if s == "" {
		return true
	}
	_, err := time.Parse(constants.TimeFormat, s)
	return err == nil
}

// WeekStart returns the Monday of the week containing anchor.
func WeekStart(anchor time.Time) time.Time {
	day := StartOfDay(anchor)
	offset := (int(day.Weekday()) + 6) % 7 // Monday = 0, Sunday = 6
	return day.AddDate(0, 0, -offset)
}

// WeekDays returns the seven days, Monday first, of the week containing anchor.
func WeekDays(anchor time.Time) [7]time.Time {
	var days [7]time.Time
	monday := WeekStart(anchor)
	for i := range days {
		days[i] = monday.AddDate(0, 0, i)
	}
	return days
}

// GridDay is one cell of the month view.
type GridDay struct {
	Date    time.Time
	Current bool // inside the anchor's month
}

// MonthGrid returns the six-week, Monday-first grid covering anchor's month:
// trailing days of the previous month, the whole month, then leading days of
// the next month.
func MonthGrid(anchor time.Time) [MonthGridCells]GridDay {
	var grid [MonthGridCells]GridDay
	first := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, anchor.Location())
	start := WeekStart(first)
	for i := range grid {
		d := start.AddDate(0, 0, i)
		grid[i] = GridDay{Date: d, Current: d.Month() == first.Month()}
	}
	return grid
}

// ShiftWeeks moves anchor by n weeks.
func ShiftWeeks(anchor time.Time, n int) time.Time {
	return anchor.AddDate(0, 0, 7*n)
}

// ShiftMonths moves anchor to the first day of the month n months away.
// Landing on the first avoids the overflow of AddDate on days 29 to 31.
func ShiftMonths(anchor time.Time, n int) time.Time {
	return time.Date(anchor.Year(), anchor.Month()+time.Month(n), 1, 0, 0, 0, 0, anchor.Location())
}

// MonthLabel renders "Março 2024".
func MonthLabel(t time.Time) string {
	return fmt.Sprintf("%s %d", constants.MonthNames[t.Month()-1], t.Year())
}

// WeekdayLabel renders the short Portuguese weekday name of t.
func WeekdayLabel(t time.Time) string {
	return constants.WeekdayNames[(int(t.Weekday())+6)%7]
}
