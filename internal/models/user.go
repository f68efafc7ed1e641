package models

// User is a firm member allowed to sign in to the dashboard.
type User struct {
	Model
	Email    string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Name     string `gorm:"size:255" json:"name,omitempty"`
	Password string `gorm:"size:255;not null" json:"-"` // bcrypt hash, never exposed in JSON
}

// All returns every model migrated by AutoMigrate, in dependency order.
func All() []any {
	return []any{
		&User{},
		&Case{},
		&Client{},
		&Document{},
		&Event{},
		&Campaign{},
		&Workflow{},
		&ChatbotQA{},
		&LegalResearch{},
		&BriefSummary{},
	}
}
