// Package calendar projects events onto a month grid and a two-week day
// strip, and keeps the month and court-schedule boards.
package calendar

import (
	"sort"
	"time"

	"github.com/smithpartners/lawdesk/internal/models"
)

// UpcomingWindow is how far ahead UpcomingEvents looks.
const UpcomingWindow = 7 * 24 * time.Hour

// Cell is one square of a month grid. Blank cells pad the first week.
type Cell struct {
	Blank   bool           `json:"blank"`
	Day     int            `json:"day,omitempty"`
	Date    models.Date    `json:"date"`
	IsToday bool           `json:"is_today"`
	Events  []models.Event `json:"events"`
}

// StripDay is one entry of the day strip.
type StripDay struct {
	Date       models.Date  `json:"date"`
	Weekday    time.Weekday `json:"weekday"`
	IsToday    bool         `json:"is_today"`
	IsSelected bool         `json:"is_selected"`
}

// MonthGrid lays out month as leading blanks (one per weekday before the
// 1st, Sunday first) followed by one cell per day carrying that day's events.
func MonthGrid(year int, month time.Month, events []models.Event, now time.Time) []Cell {
	first := models.NewDate(year, month, 1)
	days := daysIn(year, month)
	lead := int(first.Weekday())

	cells := make([]Cell, 0, lead+days)
	for i := 0; i < lead; i++ {
		cells = append(cells, Cell{Blank: true})
	}
	byDay := make(map[int][]models.Event)
	for _, e := range events {
		d := e.EventDate
		if d.Year() == year && d.Month() == month {
			byDay[d.Day()] = append(byDay[d.Day()], e)
		}
	}
	for day := 1; day <= days; day++ {
		date := models.NewDate(year, month, day)
		cells = append(cells, Cell{
			Day:     day,
			Date:    date,
			IsToday: date.SameDay(now),
			Events:  sortedByStart(byDay[day], now.Location()),
		})
	}
	return cells
}

// DayStrip returns the 14 days from three days before now through ten days after.
func DayStrip(now time.Time, selected models.Date) []StripDay {
	today := models.DateOf(now)
	out := make([]StripDay, 0, 14)
	for i := -3; i <= 10; i++ {
		d := today.AddDays(i)
		out = append(out, StripDay{
			Date:       d,
			Weekday:    d.Weekday(),
			IsToday:    i == 0,
			IsSelected: d.Equal(selected),
		})
	}
	return out
}

// TodayEvents returns the events dated on now's calendar day.
func TodayEvents(events []models.Event, now time.Time) []models.Event {
	var out []models.Event
	for _, e := range events {
		if e.EventDate.SameDay(now) {
			out = append(out, e)
		}
	}
	return sortedByStart(out, now.Location())
}

// UpcomingEvents returns the events starting in the half-open interval
// (now, now+7d], earliest first.
func UpcomingEvents(events []models.Event, now time.Time) []models.Event {
	end := now.Add(UpcomingWindow)
	var out []models.Event
	for _, e := range events {
		if e.EventDate.IsZero() {
			continue
		}
		start := e.Start(now.Location())
		if start.After(now) && !start.After(end) {
			out = append(out, e)
		}
	}
	return sortedByStart(out, now.Location())
}

// MonthRange returns the first and last day of month.
func MonthRange(year int, month time.Month) (from, to models.Date) {
	return models.NewDate(year, month, 1), models.NewDate(year, month, daysIn(year, month))
}

// DayRange returns the bounds of a single-day query.
func DayRange(d models.Date) (from, to models.Date) {
	return d, d
}

func daysIn(year int, month time.Month) int {
	// day 0 of the next month is the last day of this one
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func sortedByStart(events []models.Event, loc *time.Location) []models.Event {
	if len(events) == 0 {
		return []models.Event{}
	}
	out := append([]models.Event(nil), events...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start(loc).Before(out[j].Start(loc))
	})
	return out
}
