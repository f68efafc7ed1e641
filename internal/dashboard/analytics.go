package dashboard

import (
	"context"
	"fmt"
	"sort"

	"github.com/smithpartners/lawdesk/internal/models"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// Metrics counts the rows of the main collections.
type Metrics struct {
	Cases     int64 `json:"cases"`
	Clients   int64 `json:"clients"`
	Documents int64 `json:"documents"`
	Events    int64 `json:"events"`
	Campaigns int64 `json:"campaigns"`
	Workflows int64 `json:"workflows"`
}

// Bucket is one labelled count of a chart series.
type Bucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

type Analytics struct {
	Metrics Metrics `json:"metrics"`
	// CasesPerMonth is keyed by YYYY-MM of creation, oldest first.
	CasesPerMonth []Bucket `json:"cases_per_month"`
	// CaseTypes skips cases without a type, largest first.
	CaseTypes []Bucket `json:"case_types"`
}

// LoadAnalytics runs the counts in parallel. The first failing query cancels
// the others and its error is returned.
func LoadAnalytics(ctx context.Context, db *gorm.DB) (*Analytics, error) {
	var (
		m     Metrics
		cases []models.Case
	)
	g, gctx := errgroup.WithContext(ctx)
	count := func(model any, dst *int64) func() error {
		return func() error {
			return db.WithContext(gctx).Model(model).Count(dst).Error
		}
	}
	g.Go(func() error {
		if err := db.WithContext(gctx).Select("id", "created_at", "type").Find(&cases).Error; err != nil {
			return err
		}
		m.Cases = int64(len(cases))
		return nil
	})
	g.Go(count(&models.Client{}, &m.Clients))
	g.Go(count(&models.Document{}, &m.Documents))
	g.Go(count(&models.Event{}, &m.Events))
	g.Go(count(&models.Campaign{}, &m.Campaigns))
	g.Go(count(&models.Workflow{}, &m.Workflows))
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load analytics: %w", err)
	}

	months := map[string]int{}
	types := map[string]int{}
	for _, c := range cases {
		if !c.CreatedAt.IsZero() {
			months[c.CreatedAt.Format("2006-01")]++
		}
		if c.Type != "" {
			types[c.Type]++
		}
	}
	a := &Analytics{Metrics: m, CasesPerMonth: buckets(months), CaseTypes: buckets(types)}
	sort.Slice(a.CasesPerMonth, func(i, j int) bool { return a.CasesPerMonth[i].Label < a.CasesPerMonth[j].Label })
	sort.SliceStable(a.CaseTypes, func(i, j int) bool { return a.CaseTypes[i].Count > a.CaseTypes[j].Count })
	return a, nil
}

func buckets(counts map[string]int) []Bucket {
	out := make([]Bucket, 0, len(counts))
	for k, v := range counts {
		out = append(out, Bucket{Label: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}
