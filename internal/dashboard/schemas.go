// Package dashboard wires the screens of the firm dashboard: collection
// schemas, per-session workspaces, fixtures and the read-only aggregates.
package dashboard

import (
	"github.com/smithpartners/lawdesk/internal/blob"
	"github.com/smithpartners/lawdesk/internal/models"
	"github.com/smithpartners/lawdesk/internal/resource"
)

// Collection names, as used in routes.
const (
	Cases      = "cases"
	Clients    = "clients"
	Documents  = "documents"
	Events     = "events"
	Campaigns  = "campaigns"
	Workflows  = "workflows"
	ChatbotQAs = "chatbot_qas"

	// CourtSchedule edits events from the court schedule board.
	CourtSchedule = "schedule"
)

var CaseSchema = resource.Schema{
	Name:     Cases,
	Singular: "Case",
	Fields: []resource.Field{
		{Column: "title", Label: "Title", Kind: resource.KindText, Required: true},
		{Column: "type", Label: "Type", Kind: resource.KindText, Required: true},
		{Column: "client", Label: "Client", Kind: resource.KindText},
		{Column: "status", Label: "Status", Kind: resource.KindEnum, Options: models.CaseStatuses, Default: string(models.CaseStatusActive)},
		{Column: "priority", Label: "Priority", Kind: resource.KindEnum, Options: models.CasePriorities, Default: string(models.CasePriorityMedium)},
		{Column: "due_date", Label: "Due Date", Kind: resource.KindDate},
		{Column: "notes", Label: "Notes", Kind: resource.KindLongText},
	},
	SearchColumn:  "title",
	FilterColumns: []string{"status"},
}

var ClientSchema = resource.Schema{
	Name:     Clients,
	Singular: "Client",
	Fields: []resource.Field{
		{Column: "name", Label: "Name", Kind: resource.KindText, Required: true},
		{Column: "email", Label: "Email", Kind: resource.KindEmail},
		{Column: "phone", Label: "Phone", Kind: resource.KindText},
		{Column: "company", Label: "Company", Kind: resource.KindText},
		{Column: "notes", Label: "Notes", Kind: resource.KindLongText},
	},
	SearchColumn: "name",
}

var DocumentSchema = resource.Schema{
	Name:     Documents,
	Singular: "Document",
	Fields: []resource.Field{
		{Column: "title", Label: "Title", Kind: resource.KindText, Required: true},
		{Column: "type", Label: "Type", Kind: resource.KindText},
		{Column: "url", Label: "URL", Kind: resource.KindURL},
		{Column: "summary", Label: "Summary", Kind: resource.KindLongText},
	},
	SearchColumn: "title",
	UploadBucket: blob.BucketDocuments,
	UploadPrefix: "documents",
}

var EventSchema = resource.Schema{
	Name:     Events,
	Singular: "Event",
	Fields: []resource.Field{
		{Column: "title", Label: "Title", Kind: resource.KindText, Required: true},
		{Column: "event_date", Label: "Date", Kind: resource.KindDate, Required: true},
		{Column: "event_time", Label: "Time", Kind: resource.KindTime},
		{Column: "location", Label: "Location", Kind: resource.KindText},
		{Column: "type", Label: "Type", Kind: resource.KindEnum, Options: models.EventTypes, Default: string(models.EventTypeCourt)},
		{Column: "description", Label: "Description", Kind: resource.KindLongText},
	},
	FilterColumns: []string{"type"},
	RangeColumn:   "event_date",
	OrderBy:       "event_date",
	OrderAsc:      true,
}

var CampaignSchema = resource.Schema{
	Name:     Campaigns,
	Singular: "Campaign",
	Fields: []resource.Field{
		{Column: "name", Label: "Name", Kind: resource.KindText, Required: true},
		{Column: "status", Label: "Status", Kind: resource.KindEnum, Options: models.CampaignStatuses, Default: string(models.CampaignStatusActive)},
		{Column: "reach", Label: "Reach", Kind: resource.KindInt, Default: "0", Min: resource.Limit(0)},
		{Column: "engagement", Label: "Engagement (%)", Kind: resource.KindFloat, Default: "0", Min: resource.Limit(0), Max: resource.Limit(100)},
		{Column: "leads", Label: "Leads", Kind: resource.KindInt, Default: "0", Min: resource.Limit(0)},
		{Column: "last_run", Label: "Last Run", Kind: resource.KindDate},
	},
	FilterColumns: []string{"status"},
}

var WorkflowSchema = resource.Schema{
	Name:     Workflows,
	Singular: "Workflow",
	Fields: []resource.Field{
		{Column: "name", Label: "Name", Kind: resource.KindText, Required: true},
		{Column: "description", Label: "Description", Kind: resource.KindLongText},
		{Column: "type", Label: "Type", Kind: resource.KindEnum, Options: models.WorkflowTypes, Default: string(models.WorkflowTypeEmail)},
		{Column: "status", Label: "Status", Kind: resource.KindEnum, Options: models.WorkflowStatuses, Default: string(models.WorkflowStatusActive)},
		{Column: "config", Label: "Config (JSON)", Kind: resource.KindJSON, Default: "{}"},
		{Column: "last_run", Label: "Last Run", Kind: resource.KindDate},
	},
	FilterColumns: []string{"status"},
	AssistField:   "description",
}

var ChatbotQASchema = resource.Schema{
	Name:     ChatbotQAs,
	Singular: "Q&A",
	Noun:     "Q&A",
	Plural:   "Q&As",
	Fields: []resource.Field{
		{Column: "question", Label: "Question", Kind: resource.KindLongText, Required: true},
		{Column: "answer", Label: "Answer", Kind: resource.KindLongText, Required: true},
	},
	SearchColumn: "question",
	AssistField:  "answer",
}

// Schemas lists every CRUD collection in menu order.
func Schemas() []resource.Schema {
	return []resource.Schema{CaseSchema, ClientSchema, DocumentSchema, EventSchema, CampaignSchema, WorkflowSchema, ChatbotQASchema}
}
