// Package resource implements the Resource Manager: a stateful, server-side
// view over one collection with list, form, delete-confirmation, attachment
// and AI-assist operations.
package resource

import (
	"context"
	"errors"
	"io"

	"github.com/smithpartners/lawdesk/internal/blob"
	"github.com/smithpartners/lawdesk/internal/store"
	"github.com/smithpartners/lawdesk/validation"
)

var (
	// ErrBusy is returned when the same kind of action is already in flight.
	ErrBusy = errors.New("an action is already in progress")
	// ErrFormClosed is returned by form actions when no form is open.
	ErrFormClosed = errors.New("no form is open")
	// ErrNoPendingDelete is returned by ConfirmDelete without a prior RequestDelete.
	ErrNoPendingDelete = errors.New("no delete awaiting confirmation")
	// ErrNoUpload is returned by Attach on collections without an upload bucket.
	ErrNoUpload = errors.New("collection does not accept attachments")
	// ErrUnknownField is returned by Assist for a column outside the schema.
	ErrUnknownField = errors.New("unknown field")
)

// Error codes of the notification taxonomy.
const (
	CodeFetchFailed  = "fetch_failed"
	CodeSaveFailed   = "save_failed"
	CodeDeleteFailed = "delete_failed"
	CodeUploadFailed = "upload_failed"
	CodeAIFailed     = "ai_failed"
)

// Record is a stored row with a string key.
type Record interface {
	GetID() string
}

// Store is the storage collaborator a Manager reads and writes through.
type Store[T any] interface {
	List(ctx context.Context, q store.Query) ([]T, error)
	Get(ctx context.Context, id string) (*T, error)
	Insert(ctx context.Context, row *T) error
	Update(ctx context.Context, id string, patch map[string]any) error
	Delete(ctx context.Context, id string) error
}

// Uploader stores attachments.
type Uploader interface {
	Upload(ctx context.Context, bucket, prefix, name string, r io.Reader) (blob.Object, error)
}

// GenerateFunc produces the text for an assisted field from the current form values.
type GenerateFunc func(ctx context.Context, values map[string]string) (string, error)

// ValidationError carries the field violations of a rejected submit.
type ValidationError struct {
	Violations validation.Violations
}

func (e *ValidationError) Error() string { return "validation failed" }

// Controller is the type-erased surface of a Manager, used by the HTTP layer.
type Controller interface {
	Schema() Schema
	List(ctx context.Context, params ListParams) error
	Refresh(ctx context.Context) error
	OpenAdd(defaults map[string]string) error
	OpenEdit(ctx context.Context, id string) error
	CloseForm() error
	Submit(ctx context.Context, values map[string]string) error
	RequestDelete(id string) error
	CancelDelete() error
	ConfirmDelete(ctx context.Context) error
	Attach(ctx context.Context, filename string, r io.Reader) (blob.Object, error)
	Assist(ctx context.Context, field string, gen GenerateFunc) (string, error)
	// View returns the snapshot with messages rendered in lang.
	View(lang string) any
}
