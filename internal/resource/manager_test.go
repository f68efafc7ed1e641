package resource

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/smithpartners/lawdesk/internal/blob"
	"github.com/smithpartners/lawdesk/internal/models"
	"github.com/smithpartners/lawdesk/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// sqlite keeps a connection opener goroutine per *sql.DB
		goleak.IgnoreTopFunction("database/sql.(*DB).connectionOpener"),
	)
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

var caseSchema = Schema{
	Name:     "cases",
	Singular: "Case",
	Fields: []Field{
		{Column: "title", Label: "Title", Kind: KindText, Required: true},
		{Column: "type", Label: "Type", Kind: KindText, Required: true},
		{Column: "status", Label: "Status", Kind: KindEnum, Options: models.CaseStatuses},
		{Column: "priority", Label: "Priority", Kind: KindEnum, Options: models.CasePriorities, Default: "medium"},
		{Column: "due_date", Label: "Due date", Kind: KindDate},
		{Column: "notes", Label: "Notes", Kind: KindLongText},
	},
	SearchColumn:  "title",
	FilterColumns: []string{"status"},
}

var workflowSchema = Schema{
	Name:     "workflows",
	Singular: "Workflow",
	Fields: []Field{
		{Column: "name", Label: "Name", Kind: KindText, Required: true},
		{Column: "description", Label: "Description", Kind: KindLongText},
		{Column: "type", Label: "Type", Kind: KindEnum, Options: models.WorkflowTypes},
		{Column: "status", Label: "Status", Kind: KindEnum, Options: models.WorkflowStatuses},
		{Column: "config", Label: "Config", Kind: KindJSON},
	},
	AssistField: "description",
}

var documentSchema = Schema{
	Name:     "documents",
	Singular: "Document",
	Fields: []Field{
		{Column: "title", Label: "Title", Kind: KindText, Required: true},
		{Column: "type", Label: "Type", Kind: KindText},
		{Column: "url", Label: "URL", Kind: KindURL},
	},
	UploadBucket: blob.BucketDocuments,
	UploadPrefix: "documents",
}

// scriptedStore wraps a real table and lets a test fail or hold calls.
type scriptedStore[T any] struct {
	*store.Table[T]

	mu        sync.Mutex
	listHook  func(ctx context.Context, q store.Query) error
	insertErr error
	deleteErr error
	gate      chan struct{}
	entered   chan struct{}
}

func (s *scriptedStore[T]) List(ctx context.Context, q store.Query) ([]T, error) {
	s.mu.Lock()
	hook := s.listHook
	s.mu.Unlock()
	if hook != nil {
		if err := hook(ctx, q); err != nil {
			return nil, err
		}
	}
	return s.Table.List(ctx, q)
}

func (s *scriptedStore[T]) Insert(ctx context.Context, row *T) error {
	if s.entered != nil {
		s.entered <- struct{}{}
	}
	if s.gate != nil {
		<-s.gate
	}
	if s.insertErr != nil {
		return s.insertErr
	}
	return s.Table.Insert(ctx, row)
}

func (s *scriptedStore[T]) Delete(ctx context.Context, id string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	return s.Table.Delete(ctx, id)
}

func newCases(t *testing.T) (*Manager[models.Case], *scriptedStore[models.Case]) {
	st := &scriptedStore[models.Case]{Table: store.NewTable[models.Case](setupTestDB(t))}
	return NewManager[models.Case](caseSchema, st), st
}

func addCase(t *testing.T, m *Manager[models.Case], values map[string]string) {
	t.Helper()
	require.NoError(t, m.OpenAdd(nil))
	require.NoError(t, m.Submit(context.Background(), values))
}

func TestCreateThenListShowsRecord(t *testing.T) {
	m, _ := newCases(t)
	ctx := context.Background()
	require.NoError(t, m.List(ctx, ListParams{}))
	assert.Empty(t, m.Snapshot().Items)

	addCase(t, m, map[string]string{"title": "Doe v. Roe", "type": "Civil", "due_date": "2024-05-01"})

	s := m.Snapshot()
	require.Len(t, s.Items, 1)
	assert.Equal(t, "Doe v. Roe", s.Items[0].Title)
	assert.Equal(t, models.CaseStatusActive, s.Items[0].Status, "first option is the default")
	assert.Equal(t, "2024-05-01", s.Items[0].DueDate.String())
	assert.False(t, s.Form.Open)
	require.NotNil(t, s.Notification)
	assert.Equal(t, LevelSuccess, s.Notification.Level)
	assert.Equal(t, "Case added successfully!", s.Notification.Text("en"))
}

func TestUpdateThenListShowsChange(t *testing.T) {
	m, _ := newCases(t)
	ctx := context.Background()
	addCase(t, m, map[string]string{"title": "Acme Merger", "type": "Corporate"})
	id := m.Items()[0].ID

	require.NoError(t, m.OpenEdit(ctx, id))
	s := m.Snapshot()
	assert.Equal(t, ModeEdit, s.Form.Mode)
	assert.Equal(t, "Acme Merger", s.Form.Values["title"])
	assert.Equal(t, "active", s.Form.Values["status"])

	require.NoError(t, m.Submit(ctx, map[string]string{"status": "closed"}))
	s = m.Snapshot()
	require.Len(t, s.Items, 1)
	assert.Equal(t, models.CaseStatusClosed, s.Items[0].Status)
	assert.Equal(t, "Acme Merger", s.Items[0].Title)
	assert.Equal(t, "Case updated successfully!", s.Notification.Text("en"))
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	m, _ := newCases(t)
	ctx := context.Background()
	addCase(t, m, map[string]string{"title": "Smith Estate", "type": "Probate"})
	id := m.Items()[0].ID

	assert.ErrorIs(t, m.ConfirmDelete(ctx), ErrNoPendingDelete)

	require.NoError(t, m.RequestDelete(id))
	require.NoError(t, m.CancelDelete())
	assert.ErrorIs(t, m.ConfirmDelete(ctx), ErrNoPendingDelete)
	require.NoError(t, m.Refresh(ctx))
	assert.Len(t, m.Items(), 1, "cancelled delete keeps the row")

	require.NoError(t, m.RequestDelete(id))
	assert.Equal(t, id, m.Snapshot().PendingDelete)
	require.NoError(t, m.ConfirmDelete(ctx))
	s := m.Snapshot()
	assert.Empty(t, s.Items)
	assert.Empty(t, s.PendingDelete)
	assert.Equal(t, "Case deleted successfully!", s.Notification.Text("en"))
}

func TestDeleteFailureOnlyNotifies(t *testing.T) {
	m, st := newCases(t)
	ctx := context.Background()
	addCase(t, m, map[string]string{"title": "Smith Estate", "type": "Probate"})
	st.deleteErr = errors.New("permission denied")

	require.NoError(t, m.RequestDelete(m.Items()[0].ID))
	require.Error(t, m.ConfirmDelete(ctx))
	s := m.Snapshot()
	assert.Len(t, s.Items, 1)
	assert.Equal(t, CodeDeleteFailed, s.Notification.Code)
	assert.Equal(t, "Failed to delete case.", s.Notification.Text("en"))
}

func TestFailingCreateKeepsListAndForm(t *testing.T) {
	m, st := newCases(t)
	ctx := context.Background()
	addCase(t, m, map[string]string{"title": "Existing", "type": "Civil"})
	before := m.Items()

	st.insertErr = errors.New("connection reset")
	require.NoError(t, m.OpenAdd(nil))
	err := m.Submit(ctx, map[string]string{"title": "New matter", "type": "Civil"})
	require.Error(t, err)

	s := m.Snapshot()
	assert.Equal(t, before, s.Items)
	assert.True(t, s.Form.Open)
	assert.Equal(t, ModeAdd, s.Form.Mode)
	assert.Equal(t, "New matter", s.Form.Values["title"])
	assert.Equal(t, CodeSaveFailed, s.Notification.Code)
	assert.Equal(t, "Failed to add case.", s.Notification.Text("en"))
	assert.False(t, s.Submitting)
}

func TestSubmitValidation(t *testing.T) {
	m, _ := newCases(t)
	require.NoError(t, m.OpenAdd(nil))
	err := m.Submit(context.Background(), map[string]string{"title": " ", "status": "archived"})
	violations, ok := IsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "required", violations["title"])
	assert.Equal(t, "required", violations["type"])
	assert.Equal(t, "invalid_option", violations["status"])

	s := m.Snapshot()
	assert.True(t, s.Form.Open)
	s.Localize("en", caseSchema)
	assert.Equal(t, "Required", s.Form.Messages["title"])

	require.NoError(t, m.Refresh(context.Background()))
	assert.Empty(t, m.Items(), "nothing written")
}

func TestSubmitWithoutForm(t *testing.T) {
	m, _ := newCases(t)
	assert.ErrorIs(t, m.Submit(context.Background(), map[string]string{"title": "x"}), ErrFormClosed)
}

func TestStatusFilterScenario(t *testing.T) {
	m, _ := newCases(t)
	ctx := context.Background()
	addCase(t, m, map[string]string{"title": "Doe v. Roe", "type": "Civil", "status": "active"})
	addCase(t, m, map[string]string{"title": "Acme Merger", "type": "Corporate", "status": "pending"})

	require.NoError(t, m.List(ctx, ListParams{Filters: map[string]string{"status": "active"}}))
	titles := func() []string {
		var out []string
		for _, c := range m.Items() {
			out = append(out, c.Title)
		}
		return out
	}
	assert.Equal(t, []string{"Doe v. Roe"}, titles())

	require.NoError(t, m.List(ctx, ListParams{Filters: map[string]string{"status": "pending"}}))
	assert.Equal(t, []string{"Acme Merger"}, titles())

	require.NoError(t, m.List(ctx, ListParams{Filters: map[string]string{"status": "all"}, Search: "DOE"}))
	assert.Equal(t, []string{"Doe v. Roe"}, titles())

	// filters on columns the schema does not expose are ignored
	require.NoError(t, m.List(ctx, ListParams{Filters: map[string]string{"priority": "low"}}))
	assert.Len(t, titles(), 2)
}

func TestListFailureClearsItems(t *testing.T) {
	m, st := newCases(t)
	ctx := context.Background()
	addCase(t, m, map[string]string{"title": "Doe v. Roe", "type": "Civil"})
	st.listHook = func(context.Context, store.Query) error { return errors.New("timeout") }

	require.Error(t, m.Refresh(ctx))
	s := m.Snapshot()
	assert.Empty(t, s.Items)
	assert.Equal(t, CodeFetchFailed, s.ListError)
	s.Localize("en", caseSchema)
	assert.Equal(t, "Failed to fetch cases.", s.ListMessage)
}

func TestStaleListIsDiscarded(t *testing.T) {
	m, st := newCases(t)
	ctx := context.Background()
	addCase(t, m, map[string]string{"title": "Doe v. Roe", "type": "Civil", "status": "active"})
	addCase(t, m, map[string]string{"title": "Acme Merger", "type": "Corporate", "status": "pending"})

	started := make(chan struct{})
	st.mu.Lock()
	st.listHook = func(ctx context.Context, q store.Query) error {
		if q.Filters["status"] == "active" {
			close(started)
			<-ctx.Done()
			return ctx.Err()
		}
		return nil
	}
	st.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		done <- m.List(ctx, ListParams{Filters: map[string]string{"status": "active"}})
	}()
	<-started
	require.NoError(t, m.List(ctx, ListParams{Filters: map[string]string{"status": "pending"}}))

	select {
	case err := <-done:
		assert.NoError(t, err, "superseded list is dropped silently")
	case <-time.After(5 * time.Second):
		t.Fatal("stale list was not cancelled")
	}
	s := m.Snapshot()
	require.Len(t, s.Items, 1)
	assert.Equal(t, "Acme Merger", s.Items[0].Title)
	assert.Empty(t, s.ListError)
	assert.False(t, s.Loading)
	assert.Equal(t, "pending", s.Params.Filters["status"])
}

func TestSecondSubmitIsBusy(t *testing.T) {
	m, st := newCases(t)
	st.gate = make(chan struct{})
	st.entered = make(chan struct{}, 1)
	require.NoError(t, m.OpenAdd(nil))

	done := make(chan error, 1)
	go func() {
		done <- m.Submit(context.Background(), map[string]string{"title": "Doe v. Roe", "type": "Civil"})
	}()
	<-st.entered
	assert.True(t, m.Snapshot().Submitting)
	assert.ErrorIs(t, m.Submit(context.Background(), nil), ErrBusy)
	assert.ErrorIs(t, m.OpenAdd(nil), ErrBusy)

	close(st.gate)
	require.NoError(t, <-done)
	assert.Len(t, m.Items(), 1)
}

func TestNotificationClearedByNextAction(t *testing.T) {
	m, _ := newCases(t)
	addCase(t, m, map[string]string{"title": "Doe v. Roe", "type": "Civil"})
	require.NotNil(t, m.Snapshot().Notification)

	require.NoError(t, m.Refresh(context.Background()))
	assert.NotNil(t, m.Snapshot().Notification, "reads keep it")

	require.NoError(t, m.OpenAdd(nil))
	assert.Nil(t, m.Snapshot().Notification)
}

type failingUploader struct{}

func (failingUploader) Upload(context.Context, string, string, string, io.Reader) (blob.Object, error) {
	return blob.Object{}, errors.New("bucket unavailable")
}

func newDocuments(t *testing.T, up Uploader) *Manager[models.Document] {
	st := store.NewTable[models.Document](setupTestDB(t))
	return NewManager[models.Document](documentSchema, st, WithUploader(up))
}

func TestAttachMergesURLIntoForm(t *testing.T) {
	m := newDocuments(t, blob.New(t.TempDir(), "/files"))
	ctx := context.Background()

	_, err := m.Attach(ctx, "nda.pdf", strings.NewReader("%PDF"))
	assert.ErrorIs(t, err, ErrFormClosed)

	require.NoError(t, m.OpenAdd(map[string]string{"title": "NDA"}))
	obj, err := m.Attach(ctx, "nda.pdf", strings.NewReader("%PDF"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(obj.Path, "documents/"))
	assert.True(t, strings.HasSuffix(obj.Path, "_nda.pdf"))

	s := m.Snapshot()
	assert.Equal(t, obj.URL, s.Form.Values["url"])
	assert.Equal(t, "NDA", s.Form.Values["title"])
	assert.Equal(t, "File uploaded successfully!", s.Notification.Text("en"))

	require.NoError(t, m.Submit(ctx, nil))
	require.Len(t, m.Items(), 1)
	assert.Equal(t, obj.URL, m.Items()[0].URL)
}

func TestAttachFailureNotifies(t *testing.T) {
	m := newDocuments(t, failingUploader{})
	require.NoError(t, m.OpenAdd(map[string]string{"title": "NDA", "url": "https://old"}))
	_, err := m.Attach(context.Background(), "nda.pdf", strings.NewReader("x"))
	require.Error(t, err)
	s := m.Snapshot()
	assert.Equal(t, "https://old", s.Form.Values["url"])
	assert.Equal(t, "Failed to upload file.", s.Notification.Text("en"))
	assert.False(t, s.Uploading)
}

func TestAttachWithoutBucket(t *testing.T) {
	m, _ := newCases(t)
	_, err := m.Attach(context.Background(), "a.txt", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrNoUpload)
}

func newWorkflows(t *testing.T) *Manager[models.Workflow] {
	st := store.NewTable[models.Workflow](setupTestDB(t))
	return NewManager[models.Workflow](workflowSchema, st)
}

func TestAssistFailureKeepsField(t *testing.T) {
	m := newWorkflows(t)
	require.NoError(t, m.OpenAdd(map[string]string{"name": "Client intake", "description": "draft v1"}))

	var seen map[string]string
	_, err := m.Assist(context.Background(), "description", func(_ context.Context, values map[string]string) (string, error) {
		seen = values
		return "", errors.New("503 from provider")
	})
	require.Error(t, err)
	assert.Equal(t, "Client intake", seen["name"])

	s := m.Snapshot()
	assert.Equal(t, "draft v1", s.Form.Values["description"])
	assert.Equal(t, CodeAIFailed, s.Notification.Code)
	assert.Equal(t, "Failed to generate document.", s.Notification.Text("en"))
	assert.False(t, s.Assisting)
}

func TestAssistFillsField(t *testing.T) {
	m := newWorkflows(t)
	ctx := context.Background()
	require.NoError(t, m.OpenAdd(map[string]string{"name": "Client intake", "config": `{"steps": 3}`}))
	text, err := m.Assist(ctx, "description", func(context.Context, map[string]string) (string, error) {
		return "1. Collect documents", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "1. Collect documents", text)
	assert.Equal(t, "1. Collect documents", m.Snapshot().Form.Values["description"])

	_, err = m.Assist(ctx, "nope", nil)
	assert.ErrorIs(t, err, ErrUnknownField)

	require.NoError(t, m.Submit(ctx, nil))
	w := m.Items()[0]
	assert.Equal(t, "1. Collect documents", w.Description)
	assert.JSONEq(t, `{"steps": 3}`, string(w.Config))

	require.NoError(t, m.OpenEdit(ctx, w.ID))
	assert.JSONEq(t, `{"steps": 3}`, m.Snapshot().Form.Values["config"])
}

func TestAssistResultDroppedWhenFormReplaced(t *testing.T) {
	m := newWorkflows(t)
	require.NoError(t, m.OpenAdd(map[string]string{"name": "First"}))
	_, err := m.Assist(context.Background(), "description", func(context.Context, map[string]string) (string, error) {
		require.NoError(t, m.CloseForm())
		require.NoError(t, m.OpenAdd(map[string]string{"name": "Second"}))
		return "for the first form", nil
	})
	require.NoError(t, err)
	assert.Empty(t, m.Snapshot().Form.Values["description"])
}
