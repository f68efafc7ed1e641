package dashboard

// Fixed reference data shown by the dashboard. None of it is stored; every
// entry is flagged Sample so clients can tell it apart from firm records.

// AudienceSegment is a marketing audience with its contact count.
type AudienceSegment struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Count  int    `json:"count"`
	Sample bool   `json:"sample"`
}

// WorkflowTemplate is a starting point for a new workflow.
type WorkflowTemplate struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Complexity  string `json:"complexity"`
	Sample      bool   `json:"sample"`
}

// DocumentType is an entry of the drafting menu.
type DocumentType struct {
	Name   string `json:"name"`
	Sample bool   `json:"sample"`
}

func AudienceSegments() []AudienceSegment {
	return []AudienceSegment{
		{ID: 1, Name: "Corporate Executives", Count: 350, Sample: true},
		{ID: 2, Name: "Family Offices", Count: 125, Sample: true},
		{ID: 3, Name: "Real Estate Investors", Count: 280, Sample: true},
		{ID: 4, Name: "Tech Entrepreneurs", Count: 210, Sample: true},
	}
}

func WorkflowTemplates() []WorkflowTemplate {
	return []WorkflowTemplate{
		{ID: 1, Name: "New Client Welcome", Description: "Send welcome email with intake forms and next steps", Type: "email", Complexity: "Simple", Sample: true},
		{ID: 2, Name: "Monthly Billing Update", Description: "Notify clients of hours worked and current billing status", Type: "email", Complexity: "Medium", Sample: true},
		{ID: 3, Name: "Case Status Report", Description: "Generate comprehensive status report for active cases", Type: "document", Complexity: "Complex", Sample: true},
		{ID: 4, Name: "Deadline Alert System", Description: "Multi-step notification system for approaching deadlines", Type: "notification", Complexity: "Complex", Sample: true},
	}
}

func DocumentTypes() []DocumentType {
	names := []string{
		"Contract Agreement",
		"Legal Opinion",
		"Cease and Desist",
		"Settlement Proposal",
		"Non-disclosure Agreement",
		"Employment Contract",
	}
	out := make([]DocumentType, len(names))
	for i, n := range names {
		out[i] = DocumentType{Name: n, Sample: true}
	}
	return out
}
