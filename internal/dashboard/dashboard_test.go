package dashboard

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/smithpartners/lawdesk/auth"
	"github.com/smithpartners/lawdesk/internal/ai"
	"github.com/smithpartners/lawdesk/internal/blob"
	"github.com/smithpartners/lawdesk/internal/models"
	"github.com/smithpartners/lawdesk/internal/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

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

// stubAI records prompts and answers with reply or err.
type stubAI struct {
	mu      sync.Mutex
	prompts []string
	reply   string
	err     error
}

func (s *stubAI) Generate(_ context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func (s *stubAI) last() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.prompts) == 0 {
		return ""
	}
	return s.prompts[len(s.prompts)-1]
}

var testNow = time.Date(2024, time.March, 14, 9, 30, 0, 0, time.UTC)

func newTestWorkspace(t *testing.T, gen ai.Generator) *Workspace {
	t.Helper()
	return NewWorkspace(auth.Session{UserID: "u1", Email: "jane@smith.law"}, Deps{
		DB:       setupTestDB(t),
		Uploader: blob.New(t.TempDir(), "/files"),
		AI:       gen,
		Now:      func() time.Time { return testNow },
	})
}

func TestRegistryReusesWorkspaceUntilDropped(t *testing.T) {
	r := NewRegistry(Deps{DB: setupTestDB(t)})
	a := auth.Session{UserID: "a"}
	w1 := r.Get(a)
	assert.Same(t, w1, r.Get(a))
	assert.NotSame(t, w1, r.Get(auth.Session{UserID: "b"}))
	assert.Equal(t, 2, r.Len())

	r.Drop(a)
	assert.Equal(t, 1, r.Len())
	assert.NotSame(t, w1, r.Get(a))
}

func TestWorkspaceResourceLookup(t *testing.T) {
	w := newTestWorkspace(t, nil)
	for _, s := range Schemas() {
		c, ok := w.Resource(s.Name)
		require.True(t, ok, s.Name)
		assert.Equal(t, s.Name, c.Schema().Name)
	}
	_, ok := w.Resource("invoices")
	assert.False(t, ok)

	ev, _ := w.Resource(Events)
	assert.Same(t, w.Events, ev)
	sched, ok := w.Resource(CourtSchedule)
	require.True(t, ok)
	assert.Same(t, w.ScheduleEvents, sched)
}

func TestScheduleAddFormStartsOnSelectedDay(t *testing.T) {
	w := newTestWorkspace(t, nil)
	ctx := context.Background()
	day := models.NewDate(2024, time.April, 2)
	require.NoError(t, w.Schedule.Select(ctx, day))

	assert.Equal(t, map[string]string{"event_date": "2024-04-02"}, w.AddDefaults(CourtSchedule))
	assert.Nil(t, w.AddDefaults(Events))

	require.NoError(t, w.ScheduleEvents.OpenAdd(w.AddDefaults(CourtSchedule)))
	assert.Equal(t, "2024-04-02", w.ScheduleEvents.Snapshot().Form.Values["event_date"])

	err := w.ScheduleEvents.Submit(ctx, map[string]string{
		"title": "Status conference", "event_date": "2024-04-02", "event_time": "11:00", "type": "court",
	})
	require.NoError(t, err)
	require.Len(t, w.ScheduleEvents.Items(), 1)
	assert.Len(t, w.Schedule.Project(testNow).Events, 1)
}

func TestCalendarStartsOnCurrentMonth(t *testing.T) {
	w := newTestWorkspace(t, nil)
	y, m := w.Calendar.Current()
	assert.Equal(t, 2024, y)
	assert.Equal(t, time.March, m)
	assert.True(t, w.Schedule.Selected().SameDay(testNow))
}

func TestSuggestWorkflowDescription(t *testing.T) {
	gen := &stubAI{reply: "1. Intake\n2. Conflict check"}
	w := newTestWorkspace(t, gen)
	ctx := context.Background()

	require.NoError(t, w.Workflows.OpenAdd(map[string]string{"name": "Client onboarding"}))
	text, err := w.Suggest(ctx, Workflows)
	require.NoError(t, err)
	assert.Equal(t, gen.reply, text)
	assert.Equal(t, ai.WorkflowPrompt("Client onboarding"), gen.last())
	assert.Equal(t, gen.reply, w.Workflows.Snapshot().Form.Values["description"])
}

func TestSuggestFailureKeepsDescription(t *testing.T) {
	gen := &stubAI{err: ai.ErrGenerationFailed}
	w := newTestWorkspace(t, gen)

	require.NoError(t, w.Workflows.OpenAdd(map[string]string{"name": "Billing", "description": "keep me"}))
	_, err := w.Suggest(context.Background(), Workflows)
	require.ErrorIs(t, err, ai.ErrGenerationFailed)

	st := w.Workflows.Snapshot()
	assert.Equal(t, "keep me", st.Form.Values["description"])
	require.NotNil(t, st.Notification)
	assert.Equal(t, resource.CodeAIFailed, st.Notification.Code)
}

func TestSuggestChatbotAnswer(t *testing.T) {
	gen := &stubAI{reply: "Bring your ID."}
	w := newTestWorkspace(t, gen)

	require.NoError(t, w.ChatbotQAs.OpenAdd(map[string]string{"question": "What should I bring?"}))
	_, err := w.Suggest(context.Background(), ChatbotQAs)
	require.NoError(t, err)
	assert.Equal(t, ai.ChatbotPrompt("What should I bring?"), gen.last())
	assert.Equal(t, "Bring your ID.", w.ChatbotQAs.Snapshot().Form.Values["answer"])
}

func TestSuggestWithoutAssistField(t *testing.T) {
	w := newTestWorkspace(t, &stubAI{})
	_, err := w.Suggest(context.Background(), Cases)
	assert.ErrorIs(t, err, ErrNoAssist)
}

func TestUseTemplatePrefillsWorkflowForm(t *testing.T) {
	w := newTestWorkspace(t, nil)
	require.NoError(t, w.UseTemplate(3))

	form := w.Workflows.Snapshot().Form
	assert.True(t, form.Open)
	assert.Equal(t, resource.ModeAdd, form.Mode)
	assert.Equal(t, "Case Status Report", form.Values["name"])
	assert.Equal(t, "document", form.Values["type"])

	assert.Error(t, w.UseTemplate(99))
}

func TestFixturesAreMarkedSample(t *testing.T) {
	segs := AudienceSegments()
	require.Len(t, segs, 4)
	assert.Equal(t, "Family Offices", segs[1].Name)
	assert.Equal(t, 125, segs[1].Count)

	tpls := WorkflowTemplates()
	require.Len(t, tpls, 4)
	assert.Equal(t, "Deadline Alert System", tpls[3].Name)
	assert.Equal(t, "Complex", tpls[3].Complexity)

	types := DocumentTypes()
	require.Len(t, types, 6)
	assert.Equal(t, "Cease and Desist", types[2].Name)

	for _, s := range segs {
		assert.True(t, s.Sample)
	}
	for _, tp := range tpls {
		assert.True(t, tp.Sample)
		assert.True(t, models.WorkflowType(tp.Type).Valid())
	}
	for _, d := range types {
		assert.True(t, d.Sample)
	}
}

func TestComputeCampaignStats(t *testing.T) {
	assert.Equal(t, CampaignStats{}, ComputeCampaignStats(nil))

	st := ComputeCampaignStats([]models.Campaign{
		{Reach: 200, Leads: 10, Engagement: 4},
		{Reach: 0, Leads: 1, Engagement: 6},
	})
	assert.Equal(t, 2, st.Campaigns)
	assert.Equal(t, 200, st.TotalReach)
	assert.Equal(t, 11, st.TotalLeads)
	assert.InDelta(t, 5.0, st.AvgEngagement, 1e-9)
	// (10/200 + 1/1) / 2 * 100
	assert.InDelta(t, 52.5, st.AvgConversion, 1e-9)
}

func TestWorkspaceCampaignStatsUsesFetchedList(t *testing.T) {
	w := newTestWorkspace(t, nil)
	ctx := context.Background()
	require.NoError(t, w.deps.DB.Create(&models.Campaign{Name: "Spring", Status: models.CampaignStatusActive, Reach: 100, Leads: 5}).Error)

	assert.Zero(t, w.CampaignStats().Campaigns)
	require.NoError(t, w.Campaigns.Refresh(ctx))
	st := w.CampaignStats()
	assert.Equal(t, 1, st.Campaigns)
	assert.Equal(t, 100, st.TotalReach)
}

func TestLoadAnalytics(t *testing.T) {
	db := setupTestDB(t)
	jan := time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, time.February, 2, 0, 0, 0, 0, time.UTC)
	cases := []models.Case{
		{Title: "A", Type: "Litigation", Status: models.CaseStatusActive, Priority: models.CasePriorityHigh},
		{Title: "B", Type: "Litigation", Status: models.CaseStatusActive, Priority: models.CasePriorityLow},
		{Title: "C", Type: "Estate", Status: models.CaseStatusClosed, Priority: models.CasePriorityLow},
		{Title: "D", Status: models.CaseStatusPending, Priority: models.CasePriorityLow},
	}
	cases[0].CreatedAt = jan
	cases[1].CreatedAt = feb
	cases[2].CreatedAt = feb
	cases[3].CreatedAt = feb
	require.NoError(t, db.Create(&cases).Error)
	require.NoError(t, db.Create(&models.Client{Name: "Jane Doe"}).Error)
	require.NoError(t, db.Create(&models.Workflow{Name: "W", Type: models.WorkflowTypeEmail, Status: models.WorkflowStatusActive}).Error)

	a, err := LoadAnalytics(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, Metrics{Cases: 4, Clients: 1, Workflows: 1}, a.Metrics)
	assert.Equal(t, []Bucket{{Label: "2024-01", Count: 1}, {Label: "2024-02", Count: 3}}, a.CasesPerMonth)
	assert.Equal(t, []Bucket{{Label: "Litigation", Count: 2}, {Label: "Estate", Count: 1}}, a.CaseTypes)
}

func TestLoadAnalyticsFailure(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Migrator().DropTable(&models.Event{}))
	_, err := LoadAnalytics(context.Background(), db)
	assert.Error(t, err)
}

func TestResearchLookupAndSave(t *testing.T) {
	w := newTestWorkspace(t, nil)
	ctx := context.Background()

	_, err := w.LookupResearch(ctx, "adverse possession")
	require.ErrorIs(t, err, ErrNoResearch)

	first, err := w.SaveResearch(ctx, "adverse possession", "v1")
	require.NoError(t, err)
	second, err := w.SaveResearch(ctx, "adverse possession", "v2")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	got, err := w.LookupResearch(ctx, "adverse possession")
	require.NoError(t, err)
	assert.Equal(t, "v2", got)

	// exact match only
	_, err = w.LookupResearch(ctx, "Adverse possession")
	assert.ErrorIs(t, err, ErrNoResearch)
}

func TestAIResearchUsesResearchPrompt(t *testing.T) {
	gen := &stubAI{reply: "See Smith v. Jones."}
	w := newTestWorkspace(t, gen)
	got, err := w.AIResearch(context.Background(), "easements")
	require.NoError(t, err)
	assert.Equal(t, "See Smith v. Jones.", got)
	assert.Equal(t, ai.ResearchPrompt("easements"), gen.last())
}

func TestAIWithoutGenerator(t *testing.T) {
	w := newTestWorkspace(t, nil)
	_, err := w.AIResearch(context.Background(), "easements")
	assert.ErrorIs(t, err, ai.ErrGenerationFailed)
}

func TestExcerpt(t *testing.T) {
	short := strings.Repeat("a", 100)
	assert.Equal(t, short, Excerpt(short))
	long := strings.Repeat("é", 101)
	assert.Equal(t, strings.Repeat("é", 100)+"...", Excerpt(long))
	assert.Equal(t, "", Excerpt(""))
}

func TestUploadBriefRecordsPath(t *testing.T) {
	w := newTestWorkspace(t, nil)
	ctx := context.Background()

	row, err := w.UploadBrief(ctx, "motion.pdf", strings.NewReader("%PDF"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(row.FileURL, "briefs/"), row.FileURL)
	assert.True(t, strings.HasSuffix(row.FileURL, "_motion.pdf"), row.FileURL)
	assert.Empty(t, row.Summary)

	var n int64
	require.NoError(t, w.deps.DB.Model(&models.BriefSummary{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)

	_, err = w.UploadBrief(ctx, "", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrNoFile)
}

func TestSummarizeTextStoresExcerpt(t *testing.T) {
	w := newTestWorkspace(t, nil)
	ctx := context.Background()
	text := strings.Repeat("word ", 30)

	row, err := w.SummarizeText(ctx, text)
	require.NoError(t, err)
	assert.Equal(t, Excerpt(text), row.Summary)
	assert.Empty(t, row.FileURL)

	_, err = w.SummarizeText(ctx, "   ")
	assert.ErrorIs(t, err, ErrNoText)
}

func TestAISummary(t *testing.T) {
	gen := &stubAI{reply: "Short."}
	w := newTestWorkspace(t, gen)
	got, err := w.AISummary(context.Background(), "A long brief.")
	require.NoError(t, err)
	assert.Equal(t, "Short.", got)
	assert.Equal(t, ai.SummaryPrompt("A long brief."), gen.last())
}

func TestSaveDraft(t *testing.T) {
	w := newTestWorkspace(t, nil)
	ctx := context.Background()
	req := ai.DraftRequest{
		DocumentType: "Legal Opinion",
		CaseName:     "Doe v. Roe",
		ClientName:   "Jane Doe",
		Details:      "Assess liability.",
	}

	doc, err := w.SaveDraft(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "Legal Opinion for Doe v. Roe", doc.Title)
	assert.Equal(t, "Legal Opinion", doc.Type)
	assert.Equal(t, "Assess liability.", doc.Summary)

	require.NoError(t, w.Documents.Refresh(ctx))
	require.Len(t, w.Documents.Items(), 1)
}

func TestSaveDraftRequiresFields(t *testing.T) {
	w := newTestWorkspace(t, nil)
	_, err := w.SaveDraft(context.Background(), ai.DraftRequest{DocumentType: "Legal Opinion"})
	v, ok := resource.IsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "required", v["case_name"])
	assert.Equal(t, "required", v["client_name"])
	assert.Equal(t, "required", v["details"])
	_, has := v["document_type"]
	assert.False(t, has)
}

func TestAIDraftFailure(t *testing.T) {
	gen := &stubAI{err: errors.New("boom")}
	w := newTestWorkspace(t, gen)
	req := ai.DraftRequest{DocumentType: "Legal Opinion", CaseName: "Doe v. Roe"}
	_, err := w.AIDraft(context.Background(), req)
	assert.Error(t, err)
	assert.Equal(t, ai.DraftPrompt(req), gen.last())
}
