package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/smithpartners/lawdesk/internal/ai"
	"github.com/smithpartners/lawdesk/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNoResearch is returned when no stored result matches the query.
var ErrNoResearch = errors.New("no previous research found")

// generate runs one prompt through the AI collaborator.
func (w *Workspace) generate(ctx context.Context, prompt string) (string, error) {
	if w.deps.AI == nil {
		return "", ai.ErrGenerationFailed
	}
	return w.deps.AI.Generate(ctx, prompt)
}

// LookupResearch returns the stored result of exactly query.
func (w *Workspace) LookupResearch(ctx context.Context, query string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", ErrNoResearch
	}
	var r models.LegalResearch
	err := w.deps.DB.WithContext(ctx).Where("query = ?", query).Take(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNoResearch
	}
	if err != nil {
		return "", fmt.Errorf("lookup research: %w", err)
	}
	return r.Result, nil
}

// SaveResearch stores result under query, replacing an earlier result.
func (w *Workspace) SaveResearch(ctx context.Context, query, result string) (*models.LegalResearch, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrNoResearch
	}
	db := w.deps.DB.WithContext(ctx)
	row := models.LegalResearch{Query: query, Result: result}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "query"}},
		DoUpdates: clause.AssignmentColumns([]string{"result", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return nil, fmt.Errorf("save research: %w", err)
	}
	var saved models.LegalResearch
	if err := db.Where("query = ?", query).Take(&saved).Error; err != nil {
		return nil, fmt.Errorf("reload research: %w", err)
	}
	return &saved, nil
}

// AIResearch asks the AI collaborator about query. Nothing is stored.
func (w *Workspace) AIResearch(ctx context.Context, query string) (string, error) {
	return w.generate(ctx, ai.ResearchPrompt(query))
}
