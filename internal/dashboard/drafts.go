package dashboard

import (
	"context"
	"fmt"

	"github.com/smithpartners/lawdesk/internal/ai"
	"github.com/smithpartners/lawdesk/internal/models"
	"github.com/smithpartners/lawdesk/internal/resource"
	"github.com/smithpartners/lawdesk/validation"
)

// ValidateDraft requires everything but the client email.
func ValidateDraft(r ai.DraftRequest) validation.Violations {
	v := validation.Violations{}
	validation.Required("document_type", r.DocumentType, v)
	validation.Required("case_name", r.CaseName, v)
	validation.Required("client_name", r.ClientName, v)
	validation.Required("details", r.Details, v)
	validation.Email("client_email", r.ClientEmail, v)
	return v
}

// SaveDraft stores the draft request as a Document titled "<type> for <case>".
func (w *Workspace) SaveDraft(ctx context.Context, r ai.DraftRequest) (*models.Document, error) {
	if v := ValidateDraft(r); !v.Empty() {
		return nil, &resource.ValidationError{Violations: v}
	}
	doc := &models.Document{
		Title:   r.DocumentType + " for " + r.CaseName,
		Type:    r.DocumentType,
		Summary: r.Details,
	}
	if err := w.deps.DB.WithContext(ctx).Create(doc).Error; err != nil {
		return nil, fmt.Errorf("save draft: %w", err)
	}
	return doc, nil
}

// AIDraft asks the AI collaborator for a full draft. Nothing is stored.
func (w *Workspace) AIDraft(ctx context.Context, r ai.DraftRequest) (string, error) {
	return w.generate(ctx, ai.DraftPrompt(r))
}
