package calendar

import (
	"context"
	"sync"
	"time"

	"github.com/smithpartners/lawdesk/internal/models"
	"github.com/smithpartners/lawdesk/internal/resource"
)

// EventLister is the part of the events Manager the boards drive.
type EventLister interface {
	List(ctx context.Context, params resource.ListParams) error
	Items() []models.Event
}

// Month is the month calendar board: a reference month and the events
// fetched for it.
type Month struct {
	events EventLister

	mu    sync.Mutex
	year  int
	month time.Month
}

// MonthView is the projection of the month board.
type MonthView struct {
	Year     int            `json:"year"`
	Month    time.Month     `json:"month"`
	Label    string         `json:"label"`
	Cells    []Cell         `json:"cells"`
	Today    []models.Event `json:"today"`
	Upcoming []models.Event `json:"upcoming"`
}

// NewMonth returns a board showing now's month. Nothing is fetched until Show.
func NewMonth(events EventLister, now time.Time) *Month {
	return &Month{events: events, year: now.Year(), month: now.Month()}
}

// Current returns the reference month.
func (b *Month) Current() (int, time.Month) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.year, b.month
}

// Show moves the board to month and fetches its events.
func (b *Month) Show(ctx context.Context, year int, month time.Month) error {
	// normalize month overflow, e.g. month 13
	t := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	b.mu.Lock()
	b.year, b.month = t.Year(), t.Month()
	b.mu.Unlock()
	from, to := MonthRange(t.Year(), t.Month())
	return b.events.List(ctx, resource.ListParams{From: from, To: to})
}

// Refresh re-fetches the current month.
func (b *Month) Refresh(ctx context.Context) error {
	y, m := b.Current()
	return b.Show(ctx, y, m)
}

// Next shows the following month.
func (b *Month) Next(ctx context.Context) error {
	y, m := b.Current()
	return b.Show(ctx, y, m+1)
}

// Prev shows the preceding month.
func (b *Month) Prev(ctx context.Context) error {
	y, m := b.Current()
	return b.Show(ctx, y, m-1)
}

// Project builds the grid, today's events and upcoming events from the
// events of the fetched month only.
func (b *Month) Project(now time.Time) MonthView {
	y, m := b.Current()
	events := b.events.Items()
	return MonthView{
		Year:     y,
		Month:    m,
		Label:    time.Date(y, m, 1, 0, 0, 0, 0, time.UTC).Format("January 2006"),
		Cells:    MonthGrid(y, m, events, now),
		Today:    TodayEvents(events, now),
		Upcoming: UpcomingEvents(events, now),
	}
}

// Schedule is the court-schedule board: a selected day within the strip.
type Schedule struct {
	events EventLister

	mu       sync.Mutex
	selected models.Date
}

// ScheduleView is the projection of the schedule board.
type ScheduleView struct {
	Selected models.Date    `json:"selected"`
	Strip    []StripDay     `json:"strip"`
	Events   []models.Event `json:"events"`
}

// NewSchedule returns a board with now's day selected.
func NewSchedule(events EventLister, now time.Time) *Schedule {
	return &Schedule{events: events, selected: models.DateOf(now)}
}

// Selected returns the selected day.
func (s *Schedule) Selected() models.Date {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// Select moves the board to day and fetches its events.
func (s *Schedule) Select(ctx context.Context, day models.Date) error {
	s.mu.Lock()
	s.selected = day
	s.mu.Unlock()
	from, to := DayRange(day)
	return s.events.List(ctx, resource.ListParams{From: from, To: to})
}

// Refresh re-fetches the selected day.
func (s *Schedule) Refresh(ctx context.Context) error {
	return s.Select(ctx, s.Selected())
}

// Project builds the day strip and the selected day's events.
func (s *Schedule) Project(now time.Time) ScheduleView {
	sel := s.Selected()
	var day []models.Event
	for _, e := range s.events.Items() {
		if e.EventDate.Equal(sel) {
			day = append(day, e)
		}
	}
	return ScheduleView{
		Selected: sel,
		Strip:    DayStrip(now, sel),
		Events:   sortedByStart(day, now.Location()),
	}
}
