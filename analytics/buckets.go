package analytics

import (
	"fmt"
	"sort"
	"time"
)

const (
	PeriodDay   = "Day"
	PeriodNight = "Night"

	dayStartHour = 6
	dayEndHour   = 18
)

// Weekdays lists weekday names in report order.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// weekdayIndex maps a time to its position in Weekdays (Monday = 0).
func weekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// periodOf classifies an hour of day; [6,18) is Day.
func periodOf(hour int) string {
	if hour >= dayStartHour && hour < dayEndHour {
		return PeriodDay
	}
	return PeriodNight
}

// Month identifies a calendar month.
type Month struct {
	Year  int
	Month time.Month
}

func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// ParseMonth accepts "YYYY-MM".
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q, expected YYYY-MM", s)
	}
	return MonthOf(t), nil
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Label renders the month for headings, e.g. "January 2024".
func (m Month) Label() string {
	return fmt.Sprintf("%s %d", m.Month, m.Year)
}

func (m Month) Before(o Month) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}
	return m.Month < o.Month
}

func (m Month) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Month) UnmarshalText(b []byte) error {
	parsed, err := ParseMonth(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Date identifies a calendar day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate accepts "YYYY-MM-DD".
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return DateOf(t), nil
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Label renders the date for headings, e.g. "Friday, 05 January 2024".
func (d Date) Label() string {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Format("Monday, 02 January 2006")
}

func (d Date) Before(o Date) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Months returns the distinct months that have orders, most recent first.
func (p *Pipeline) Months(ds *Dataset) []Month {
	seen := make(map[Month]struct{})
	months := make([]Month, 0)
	for _, o := range ds.Orders {
		m := MonthOf(p.local(o.CreatedAt))
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[j].Before(months[i]) })
	return months
}

// Dates returns the distinct days that have orders, most recent first.
func (p *Pipeline) Dates(ds *Dataset) []Date {
	seen := make(map[Date]struct{})
	dates := make([]Date, 0)
	for _, o := range ds.Orders {
		d := DateOf(p.local(o.CreatedAt))
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[j].Before(dates[i]) })
	return dates
}
