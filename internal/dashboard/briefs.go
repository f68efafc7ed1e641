package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/smithpartners/lawdesk/internal/ai"
	"github.com/smithpartners/lawdesk/internal/blob"
	"github.com/smithpartners/lawdesk/internal/models"
	"github.com/smithpartners/lawdesk/internal/resource"
)

const excerptRunes = 100

var (
	// ErrNoFile is returned by UploadBrief without a file name.
	ErrNoFile = errors.New("no file selected")
	// ErrNoText is returned when there is nothing to summarize.
	ErrNoText = errors.New("no text to summarize")
)

// Excerpt keeps the first 100 runes of text, marking a cut with "...".
func Excerpt(text string) string {
	r := []rune(text)
	if len(r) <= excerptRunes {
		return text
	}
	return string(r[:excerptRunes]) + "..."
}

// UploadBrief stores a brief in the briefs bucket and records it with an
// empty summary.
func (w *Workspace) UploadBrief(ctx context.Context, filename string, r io.Reader) (*models.BriefSummary, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, ErrNoFile
	}
	if w.deps.Uploader == nil {
		return nil, resource.ErrNoUpload
	}
	obj, err := w.deps.Uploader.Upload(ctx, blob.BucketBriefs, "briefs", filename, r)
	if err != nil {
		return nil, fmt.Errorf("upload brief: %w", err)
	}
	row := &models.BriefSummary{FileURL: obj.Path}
	if err := w.deps.DB.WithContext(ctx).Create(row).Error; err != nil {
		return nil, fmt.Errorf("record brief: %w", err)
	}
	return row, nil
}

// SummarizeText stores the excerpt of text as a summary with no file.
func (w *Workspace) SummarizeText(ctx context.Context, text string) (*models.BriefSummary, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrNoText
	}
	row := &models.BriefSummary{Summary: Excerpt(text)}
	if err := w.deps.DB.WithContext(ctx).Create(row).Error; err != nil {
		return nil, fmt.Errorf("save summary: %w", err)
	}
	return row, nil
}

// AISummary asks the AI collaborator for an executive summary of text.
func (w *Workspace) AISummary(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrNoText
	}
	return w.generate(ctx, ai.SummaryPrompt(text))
}
