package models

// LegalResearch stores the result of a research query so it can be looked up
// again by the exact same query.
type LegalResearch struct {
	Model
	Query  string `gorm:"size:1000;not null;uniqueIndex" json:"query"`
	Result string `gorm:"type:text" json:"result"`
}

// TableName keeps the historical collection name.
func (LegalResearch) TableName() string { return "legal_research" }

// BriefSummary records an uploaded brief and/or its summary.
type BriefSummary struct {
	Model
	FileURL string `gorm:"size:1000" json:"file_url"`
	Summary string `gorm:"type:text" json:"summary"`
}

// TableName keeps the historical collection name.
func (BriefSummary) TableName() string { return "summaries" }
