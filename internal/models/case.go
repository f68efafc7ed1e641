package models

// CaseStatus is the lifecycle state of a matter.
type CaseStatus string

const (
	CaseStatusActive  CaseStatus = "active"
	CaseStatusPending CaseStatus = "pending"
	CaseStatusClosed  CaseStatus = "closed"
)

// CaseStatuses lists the allowed statuses in display order.
var CaseStatuses = []string{string(CaseStatusActive), string(CaseStatusPending), string(CaseStatusClosed)}

// Valid reports whether s is one of the known statuses.
func (s CaseStatus) Valid() bool { return contains(CaseStatuses, string(s)) }

// CasePriority ranks how urgent a matter is.
type CasePriority string

const (
	CasePriorityHigh   CasePriority = "high"
	CasePriorityMedium CasePriority = "medium"
	CasePriorityLow    CasePriority = "low"
)

// CasePriorities lists the allowed priorities, highest first.
var CasePriorities = []string{string(CasePriorityHigh), string(CasePriorityMedium), string(CasePriorityLow)}

// Valid reports whether p is one of the known priorities.
func (p CasePriority) Valid() bool { return contains(CasePriorities, string(p)) }

// Case is a legal matter handled by the firm.
type Case struct {
	Model
	Title    string       `gorm:"size:255;not null" json:"title"`
	Type     string       `gorm:"size:100" json:"type"`
	Status   CaseStatus   `gorm:"size:20;not null;default:'active';index" json:"status"`
	Priority CasePriority `gorm:"size:20;not null;default:'medium'" json:"priority"`
	DueDate  Date         `json:"due_date"`
	Notes    string       `gorm:"type:text" json:"notes"`
	Client   string       `gorm:"size:255" json:"client"`
}

// IsOpen returns true unless the case has been closed.
func (c *Case) IsOpen() bool {
	return c.Status != CaseStatusClosed
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
