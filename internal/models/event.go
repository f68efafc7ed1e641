package models

import (
	"strings"
	"time"
)

// EventType classifies calendar entries.
type EventType string

const (
	EventTypeCourt    EventType = "court"
	EventTypeClient   EventType = "client"
	EventTypeDeadline EventType = "deadline"
	EventTypeInternal EventType = "internal"
)

// EventTypes lists the allowed event types.
var EventTypes = []string{string(EventTypeCourt), string(EventTypeClient), string(EventTypeDeadline), string(EventTypeInternal)}

// Valid reports whether t is one of the known event types.
func (t EventType) Valid() bool { return contains(EventTypes, string(t)) }

// Event is a calendar entry: a hearing, a client meeting, a filing deadline...
type Event struct {
	Model
	Title       string    `gorm:"size:255;not null" json:"title"`
	EventDate   Date      `gorm:"not null;index" json:"event_date"`
	EventTime   string    `gorm:"size:20" json:"event_time"`
	Location    string    `gorm:"size:255" json:"location"`
	Type        EventType `gorm:"size:20;not null;default:'court'" json:"type"`
	Description string    `gorm:"type:text" json:"description"`
}

// Start returns the instant the event begins in loc: the event date plus the
// event time when it reads as HH:MM (or HH:MM:SS), midnight otherwise.
func (e *Event) Start(loc *time.Location) time.Time {
	start := e.EventDate.In(loc)
	raw := strings.TrimSpace(e.EventTime)
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return start.Add(time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second)
		}
	}
	return start
}
