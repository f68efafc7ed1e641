package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestModel_BeforeCreateAssignsID(t *testing.T) {
	c := &Case{}
	if err := c.BeforeCreate(nil); err != nil {
		t.Fatalf("BeforeCreate: %v", err)
	}
	if len(c.ID) != 36 {
		t.Errorf("ID = %q, want a UUID", c.ID)
	}

	keep := &Case{Model: Model{ID: "fixed"}}
	_ = keep.BeforeCreate(nil)
	if keep.ID != "fixed" {
		t.Errorf("BeforeCreate overwrote an existing ID: %q", keep.ID)
	}
}

func TestEnumerations_Valid(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
	}{
		{"case status active", CaseStatus("active").Valid()},
		{"case status bogus", !CaseStatus("archived").Valid()},
		{"priority low", CasePriority("low").Valid()},
		{"event deadline", EventType("deadline").Valid()},
		{"event empty", !EventType("").Valid()},
		{"campaign completed", CampaignStatus("completed").Valid()},
		{"workflow task", WorkflowType("task").Valid()},
		{"workflow inactive", WorkflowStatus("inactive").Valid()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.ok {
				t.Errorf("unexpected validity result")
			}
		})
	}
}

func TestCampaign_ConversionRate(t *testing.T) {
	tests := []struct {
		name  string
		reach int
		leads int
		want  float64
	}{
		{"normal", 200, 10, 0.05},
		{"no reach counts as one", 0, 3, 3},
		{"no leads", 100, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Campaign{Reach: tt.reach, Leads: tt.leads}
			if got := c.ConversionRate(); got != tt.want {
				t.Errorf("ConversionRate() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestEvent_Start(t *testing.T) {
	loc := time.UTC
	e := &Event{EventDate: NewDate(2024, time.March, 1), EventTime: "09:30"}
	want := time.Date(2024, time.March, 1, 9, 30, 0, 0, loc)
	if got := e.Start(loc); !got.Equal(want) {
		t.Errorf("Start() = %v, want %v", got, want)
	}

	e.EventTime = "after lunch"
	want = time.Date(2024, time.March, 1, 0, 0, 0, 0, loc)
	if got := e.Start(loc); !got.Equal(want) {
		t.Errorf("Start() with free-text time = %v, want midnight %v", got, want)
	}
}

func TestDate_ParseAndFormat(t *testing.T) {
	d, err := ParseDate("2024-06-01")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if d.String() != "2024-06-01" {
		t.Errorf("String() = %q", d.String())
	}
	ts, err := ParseDate("2024-06-01T15:04:05Z")
	if err != nil || ts != d {
		t.Errorf("ParseDate(timestamp) = %v, %v; want %v", ts, err, d)
	}
	empty, err := ParseDate("  ")
	if err != nil || !empty.IsZero() {
		t.Errorf("ParseDate(blank) = %v, %v; want zero", empty, err)
	}
	if _, err := ParseDate("06/01/2024"); err == nil {
		t.Errorf("ParseDate accepted a non ISO date")
	}
}

func TestDate_JSON(t *testing.T) {
	c := Case{Title: "Doe v. Roe", DueDate: NewDate(2024, time.June, 1)}
	b, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back map[string]any
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back["due_date"] != "2024-06-01" {
		t.Errorf("due_date = %v", back["due_date"])
	}

	var unset Case
	if err := json.Unmarshal([]byte(`{"due_date":null}`), &unset); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if !unset.DueDate.IsZero() {
		t.Errorf("null date should decode to zero")
	}
}

func TestDate_Scan(t *testing.T) {
	var d Date
	if err := d.Scan(time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)); err != nil || d.String() != "2024-03-02" {
		t.Errorf("Scan(time) = %v, %v", d, err)
	}
	if err := d.Scan([]byte("2024-03-03")); err != nil || d.String() != "2024-03-03" {
		t.Errorf("Scan([]byte) = %v, %v", d, err)
	}
	if err := d.Scan(nil); err != nil || !d.IsZero() {
		t.Errorf("Scan(nil) = %v, %v", d, err)
	}
	if err := d.Scan(42); err == nil {
		t.Errorf("Scan(int) should fail")
	}
	v, _ := Date{}.Value()
	if v != nil {
		t.Errorf("zero Value() = %v, want nil", v)
	}
}

func TestDate_SameDay(t *testing.T) {
	d := NewDate(2024, time.March, 1)
	if !d.SameDay(time.Date(2024, 3, 1, 23, 59, 0, 0, time.Local)) {
		t.Errorf("SameDay should match late in the same day")
	}
	if d.SameDay(time.Date(2024, 3, 2, 0, 0, 0, 0, time.Local)) {
		t.Errorf("SameDay should not match the next day")
	}
	if (Date{}).SameDay(time.Time{}) {
		t.Errorf("zero date matches nothing")
	}
}
