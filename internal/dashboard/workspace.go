package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/smithpartners/lawdesk/auth"
	"github.com/smithpartners/lawdesk/internal/ai"
	"github.com/smithpartners/lawdesk/internal/calendar"
	"github.com/smithpartners/lawdesk/internal/models"
	"github.com/smithpartners/lawdesk/internal/resource"
	"github.com/smithpartners/lawdesk/internal/store"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrNoAssist is returned by Suggest on collections without an assisted field.
var ErrNoAssist = errors.New("collection has no AI-assisted field")

// Deps are the collaborators shared by every workspace.
type Deps struct {
	DB       *gorm.DB
	Uploader resource.Uploader
	AI       ai.Generator
	Log      *zap.Logger
	Now      func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// Workspace is the application state of one signed-in session.
type Workspace struct {
	Session auth.Session

	Cases      *resource.Manager[models.Case]
	Clients    *resource.Manager[models.Client]
	Documents  *resource.Manager[models.Document]
	Campaigns  *resource.Manager[models.Campaign]
	Workflows  *resource.Manager[models.Workflow]
	ChatbotQAs *resource.Manager[models.ChatbotQA]

	// Events backs the month calendar; ScheduleEvents backs the court schedule.
	Events         *resource.Manager[models.Event]
	ScheduleEvents *resource.Manager[models.Event]
	Calendar       *calendar.Month
	Schedule       *calendar.Schedule

	deps Deps
}

// NewWorkspace builds the managers for sess. Nothing is fetched yet.
func NewWorkspace(sess auth.Session, deps Deps) *Workspace {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	log := deps.Log.With(zap.String("user_id", sess.UserID))
	opts := []resource.Option{resource.WithLogger(log), resource.WithUploader(deps.Uploader)}
	now := deps.now()

	w := &Workspace{
		Session:        sess,
		Cases:          resource.NewManager[models.Case](CaseSchema, store.NewTable[models.Case](deps.DB), opts...),
		Clients:        resource.NewManager[models.Client](ClientSchema, store.NewTable[models.Client](deps.DB), opts...),
		Documents:      resource.NewManager[models.Document](DocumentSchema, store.NewTable[models.Document](deps.DB), opts...),
		Campaigns:      resource.NewManager[models.Campaign](CampaignSchema, store.NewTable[models.Campaign](deps.DB), opts...),
		Workflows:      resource.NewManager[models.Workflow](WorkflowSchema, store.NewTable[models.Workflow](deps.DB), opts...),
		ChatbotQAs:     resource.NewManager[models.ChatbotQA](ChatbotQASchema, store.NewTable[models.ChatbotQA](deps.DB), opts...),
		Events:         resource.NewManager[models.Event](EventSchema, store.NewTable[models.Event](deps.DB), opts...),
		ScheduleEvents: resource.NewManager[models.Event](EventSchema, store.NewTable[models.Event](deps.DB), opts...),
		deps:           deps,
	}
	w.Calendar = calendar.NewMonth(w.Events, now)
	w.Schedule = calendar.NewSchedule(w.ScheduleEvents, now)
	return w
}

// Now returns the workspace clock.
func (w *Workspace) Now() time.Time { return w.deps.now() }

// Resource returns the controller of a CRUD collection by route name.
func (w *Workspace) Resource(name string) (resource.Controller, bool) {
	switch name {
	case Cases:
		return w.Cases, true
	case Clients:
		return w.Clients, true
	case Documents:
		return w.Documents, true
	case Events:
		return w.Events, true
	case Campaigns:
		return w.Campaigns, true
	case Workflows:
		return w.Workflows, true
	case ChatbotQAs:
		return w.ChatbotQAs, true
	case CourtSchedule:
		return w.ScheduleEvents, true
	}
	return nil, false
}

// AddDefaults returns the screen-specific prefill of an add form. A schedule
// event starts on the selected day.
func (w *Workspace) AddDefaults(name string) map[string]string {
	if name == CourtSchedule {
		return map[string]string{"event_date": w.Schedule.Selected().String()}
	}
	return nil
}

// promptFor builds the assist prompt of a collection from its form values.
func promptFor(name string, values map[string]string) (string, bool) {
	switch name {
	case Workflows:
		return ai.WorkflowPrompt(values["name"]), true
	case ChatbotQAs:
		return ai.ChatbotPrompt(values["question"]), true
	}
	return "", false
}

// Suggest fills the assisted field of the open form of collection name.
func (w *Workspace) Suggest(ctx context.Context, name string) (string, error) {
	c, ok := w.Resource(name)
	if !ok {
		return "", fmt.Errorf("unknown collection %q", name)
	}
	field := c.Schema().AssistField
	if field == "" || w.deps.AI == nil {
		return "", ErrNoAssist
	}
	return c.Assist(ctx, field, func(ctx context.Context, values map[string]string) (string, error) {
		prompt, ok := promptFor(name, values)
		if !ok {
			return "", ErrNoAssist
		}
		return w.deps.AI.Generate(ctx, prompt)
	})
}

// UseTemplate opens the workflow add form prefilled from a template.
func (w *Workspace) UseTemplate(id int) error {
	for _, t := range WorkflowTemplates() {
		if t.ID == id {
			return w.Workflows.OpenAdd(map[string]string{
				"name":        t.Name,
				"description": t.Description,
				"type":        t.Type,
			})
		}
	}
	return fmt.Errorf("workflow template %d: %w", id, store.ErrNotFound)
}

// Registry maps sessions to their workspaces.
type Registry struct {
	deps Deps

	mu         sync.Mutex
	workspaces map[string]*Workspace
}

// NewRegistry returns an empty registry.
func NewRegistry(deps Deps) *Registry {
	return &Registry{deps: deps, workspaces: map[string]*Workspace{}}
}

// Get returns the workspace of sess, creating it on first use.
func (r *Registry) Get(sess auth.Session) *Workspace {
	r.mu.Lock()
	defer r.mu.Unlock()
	if w, ok := r.workspaces[sess.UserID]; ok {
		return w
	}
	w := NewWorkspace(sess, r.deps)
	r.workspaces[sess.UserID] = w
	return w
}

// Drop forgets the workspace of sess.
func (r *Registry) Drop(sess auth.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.workspaces, sess.UserID)
}

// Len returns the number of live workspaces.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.workspaces)
}
