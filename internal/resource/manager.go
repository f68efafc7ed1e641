package resource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"sync"

	"github.com/smithpartners/lawdesk/internal/blob"
	"github.com/smithpartners/lawdesk/internal/models"
	"github.com/smithpartners/lawdesk/validation"
	"go.uber.org/zap"
)

// Manager is the stateful view over one collection. It is safe for
// concurrent use; slow collaborator calls run without holding the lock.
type Manager[T Record] struct {
	schema   Schema
	store    Store[T]
	uploader Uploader
	log      *zap.Logger

	mu         sync.Mutex
	state      State[T]
	listSeq    uint64
	cancelList context.CancelFunc
	formSeq    uint64
}

// Option configures a Manager.
type Option func(*options)

type options struct {
	uploader Uploader
	log      *zap.Logger
}

// WithUploader enables Attach.
func WithUploader(u Uploader) Option { return func(o *options) { o.uploader = u } }

// WithLogger sets the logger. The default discards.
func WithLogger(l *zap.Logger) Option { return func(o *options) { o.log = l } }

// NewManager returns a Manager for schema backed by st.
func NewManager[T Record](schema Schema, st Store[T], opts ...Option) *Manager[T] {
	o := options{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Manager[T]{
		schema:   schema,
		store:    st,
		uploader: o.uploader,
		log:      o.log.With(zap.String("resource", schema.Name)),
	}
}

// Schema returns the collection descriptor.
func (m *Manager[T]) Schema() Schema { return m.schema }

// Snapshot returns a copy of the current state.
func (m *Manager[T]) Snapshot() State[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.clone()
}

// Items returns a copy of the listed rows.
func (m *Manager[T]) Items() []T {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]T(nil), m.state.Items...)
}

func (m *Manager[T]) notify(level Level, code, key, subject string) {
	m.state.Notification = &Notification{Level: level, Code: code, Subject: subject, key: key}
}

// List fetches the rows matching params. A newer List cancels and
// supersedes an older one still in flight; the older response is dropped.
// On failure the items become empty and the list error is set.
func (m *Manager[T]) List(ctx context.Context, params ListParams) error {
	m.mu.Lock()
	m.state.Params = params.clone()
	m.mu.Unlock()
	return m.fetch(ctx)
}

// Refresh re-runs the list with the current params.
func (m *Manager[T]) Refresh(ctx context.Context) error {
	return m.fetch(ctx)
}

func (m *Manager[T]) fetch(ctx context.Context) error {
	lctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m.mu.Lock()
	if m.cancelList != nil {
		m.cancelList()
	}
	m.listSeq++
	seq := m.listSeq
	m.cancelList = cancel
	m.state.Loading = true
	q := m.state.Params.query(m.schema)
	m.mu.Unlock()

	rows, err := m.store.List(lctx, q)

	m.mu.Lock()
	defer m.mu.Unlock()
	if seq != m.listSeq {
		// superseded
		return nil
	}
	m.cancelList = nil
	m.state.Loading = false
	if err != nil {
		m.state.Items = nil
		m.state.ListError = CodeFetchFailed
		m.log.Warn("list failed", zap.Error(err))
		return fmt.Errorf("list %s: %w", m.schema.Name, err)
	}
	m.state.Items = rows
	m.state.ListError = ""
	return nil
}

// OpenAdd opens an empty add form, prefilled with the schema defaults and
// then with defaults.
func (m *Manager[T]) OpenAdd(defaults map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Submitting {
		return ErrBusy
	}
	m.state.Notification = nil
	values := m.schema.Defaults()
	for k, v := range defaults {
		if _, ok := m.schema.Field(k); ok {
			values[k] = v
		}
	}
	m.formSeq++
	m.state.Form = Form{Open: true, Mode: ModeAdd, Values: values}
	return nil
}

// OpenEdit opens the edit form for the row with id, taken from the current
// list or, failing that, from the store.
func (m *Manager[T]) OpenEdit(ctx context.Context, id string) error {
	m.mu.Lock()
	if m.state.Submitting {
		m.mu.Unlock()
		return ErrBusy
	}
	m.state.Notification = nil
	var row *T
	for i := range m.state.Items {
		if m.state.Items[i].GetID() == id {
			r := m.state.Items[i]
			row = &r
			break
		}
	}
	m.mu.Unlock()

	if row == nil {
		r, err := m.store.Get(ctx, id)
		if err != nil {
			return fmt.Errorf("open %s %s: %w", m.schema.Name, id, err)
		}
		row = r
	}
	values, err := m.schema.Encode(row)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Submitting {
		return ErrBusy
	}
	m.formSeq++
	m.state.Form = Form{Open: true, Mode: ModeEdit, EditID: id, Values: values}
	return nil
}

// CloseForm discards the form.
func (m *Manager[T]) CloseForm() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Submitting {
		return ErrBusy
	}
	m.state.Notification = nil
	m.formSeq++
	m.state.Form = Form{}
	return nil
}

// Submit creates (add mode) or updates (edit mode) a row from values merged
// over the open form. On success the form closes and the list refreshes. On
// failure the form stays open with the entered values and the list is left
// as it was.
func (m *Manager[T]) Submit(ctx context.Context, values map[string]string) error {
	m.mu.Lock()
	if m.state.Submitting {
		m.mu.Unlock()
		return ErrBusy
	}
	if !m.state.Form.Open {
		m.mu.Unlock()
		return ErrFormClosed
	}
	m.state.Notification = nil
	form := &m.state.Form
	if form.Values == nil {
		form.Values = map[string]string{}
	}
	for k, v := range values {
		if _, ok := m.schema.Field(k); ok {
			form.Values[k] = v
		}
	}
	decoded, violations := m.schema.Decode(form.Values)
	if !violations.Empty() {
		form.Violations = violations
		m.mu.Unlock()
		return &ValidationError{Violations: maps.Clone(violations)}
	}
	form.Violations = nil
	mode, id := form.Mode, form.EditID
	m.state.Submitting = true
	m.mu.Unlock()

	err := m.write(ctx, mode, id, decoded)

	m.mu.Lock()
	m.state.Submitting = false
	if err != nil {
		key := "create_failed"
		if mode == ModeEdit {
			key = "update_failed"
		}
		m.notify(LevelError, CodeSaveFailed, key, m.schema.noun())
		m.mu.Unlock()
		m.log.Warn("save failed", zap.String("mode", string(mode)), zap.Error(err))
		return err
	}
	key := "record_created"
	if mode == ModeEdit {
		key = "record_updated"
	}
	m.notify(LevelSuccess, key, key, m.schema.Singular)
	m.formSeq++
	m.state.Form = Form{}
	m.mu.Unlock()

	// The write succeeded; a failing refresh only shows up as the list error.
	_ = m.fetch(ctx)
	return nil
}

func (m *Manager[T]) write(ctx context.Context, mode Mode, id string, decoded map[string]any) error {
	if mode == ModeEdit {
		if err := m.store.Update(ctx, id, decoded); err != nil {
			return fmt.Errorf("update %s %s: %w", m.schema.Name, id, err)
		}
		return nil
	}
	row, err := bind[T](decoded)
	if err != nil {
		return fmt.Errorf("bind %s: %w", m.schema.Name, err)
	}
	if err := m.store.Insert(ctx, row); err != nil {
		return fmt.Errorf("insert %s: %w", m.schema.Name, err)
	}
	return nil
}

// RequestDelete marks id for deletion. Nothing is deleted until ConfirmDelete.
func (m *Manager[T]) RequestDelete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Deleting {
		return ErrBusy
	}
	m.state.Notification = nil
	m.state.PendingDelete = id
	return nil
}

// CancelDelete drops the pending delete.
func (m *Manager[T]) CancelDelete() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Deleting {
		return ErrBusy
	}
	m.state.Notification = nil
	m.state.PendingDelete = ""
	return nil
}

// ConfirmDelete deletes the pending row. Success refreshes the list; failure
// only notifies.
func (m *Manager[T]) ConfirmDelete(ctx context.Context) error {
	m.mu.Lock()
	if m.state.Deleting {
		m.mu.Unlock()
		return ErrBusy
	}
	id := m.state.PendingDelete
	if id == "" {
		m.mu.Unlock()
		return ErrNoPendingDelete
	}
	m.state.Notification = nil
	m.state.Deleting = true
	m.mu.Unlock()

	err := m.store.Delete(ctx, id)

	m.mu.Lock()
	m.state.Deleting = false
	m.state.PendingDelete = ""
	if err != nil {
		m.notify(LevelError, CodeDeleteFailed, CodeDeleteFailed, m.schema.noun())
		m.mu.Unlock()
		m.log.Warn("delete failed", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("delete %s %s: %w", m.schema.Name, id, err)
	}
	m.notify(LevelSuccess, "record_deleted", "record_deleted", m.schema.Singular)
	m.mu.Unlock()

	_ = m.fetch(ctx)
	return nil
}

// Attach uploads a file to the collection's bucket and merges its public
// URL into the open form.
func (m *Manager[T]) Attach(ctx context.Context, filename string, r io.Reader) (blob.Object, error) {
	if m.schema.UploadBucket == "" || m.uploader == nil {
		return blob.Object{}, ErrNoUpload
	}
	m.mu.Lock()
	if m.state.Uploading {
		m.mu.Unlock()
		return blob.Object{}, ErrBusy
	}
	if !m.state.Form.Open {
		m.mu.Unlock()
		return blob.Object{}, ErrFormClosed
	}
	m.state.Notification = nil
	m.state.Uploading = true
	seq := m.formSeq
	m.mu.Unlock()

	obj, err := m.uploader.Upload(ctx, m.schema.UploadBucket, m.schema.UploadPrefix, filename, r)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Uploading = false
	if err != nil {
		m.notify(LevelError, CodeUploadFailed, CodeUploadFailed, "")
		m.log.Warn("upload failed", zap.String("file", filename), zap.Error(err))
		return blob.Object{}, fmt.Errorf("attach %s: %w", filename, err)
	}
	if seq == m.formSeq && m.state.Form.Open {
		m.state.Form.Values[m.schema.uploadField()] = obj.URL
	}
	m.notify(LevelSuccess, "file_uploaded", "file_uploaded", "")
	return obj, nil
}

// Assist fills field from gen. On failure the field keeps its value and the
// generic AI failure is notified.
func (m *Manager[T]) Assist(ctx context.Context, field string, gen GenerateFunc) (string, error) {
	if _, ok := m.schema.Field(field); !ok {
		return "", fmt.Errorf("%w %q", ErrUnknownField, field)
	}
	m.mu.Lock()
	if m.state.Assisting {
		m.mu.Unlock()
		return "", ErrBusy
	}
	if !m.state.Form.Open {
		m.mu.Unlock()
		return "", ErrFormClosed
	}
	m.state.Notification = nil
	m.state.Assisting = true
	seq := m.formSeq
	values := maps.Clone(m.state.Form.Values)
	m.mu.Unlock()

	text, err := gen(ctx, values)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Assisting = false
	if err != nil {
		m.notify(LevelError, CodeAIFailed, CodeAIFailed, "")
		m.log.Warn("ai assist failed", zap.String("field", field), zap.Error(err))
		return "", fmt.Errorf("assist %s: %w", field, err)
	}
	if seq == m.formSeq && m.state.Form.Open {
		m.state.Form.Values[field] = text
	}
	m.notify(LevelSuccess, "ai_generated", "ai_generated", "")
	return text, nil
}

// IsValidation reports whether err is a rejected submit and returns its violations.
func IsValidation(err error) (validation.Violations, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Violations, true
	}
	return nil, false
}

// View returns the snapshot localized to lang.
func (m *Manager[T]) View(lang string) any {
	s := m.Snapshot()
	s.Localize(lang, m.schema)
	return s
}

var _ Controller = (*Manager[models.Case])(nil)
