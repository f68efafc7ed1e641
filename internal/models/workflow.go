package models

import "gorm.io/datatypes"

// WorkflowType is the kind of automation a workflow performs.
type WorkflowType string

const (
	WorkflowTypeEmail        WorkflowType = "email"
	WorkflowTypeDocument     WorkflowType = "document"
	WorkflowTypeNotification WorkflowType = "notification"
	WorkflowTypeTask         WorkflowType = "task"
)

// WorkflowTypes lists the allowed workflow types.
var WorkflowTypes = []string{string(WorkflowTypeEmail), string(WorkflowTypeDocument), string(WorkflowTypeNotification), string(WorkflowTypeTask)}

// Valid reports whether t is one of the known workflow types.
func (t WorkflowType) Valid() bool { return contains(WorkflowTypes, string(t)) }

// WorkflowStatus tells whether a workflow runs.
type WorkflowStatus string

const (
	WorkflowStatusActive   WorkflowStatus = "active"
	WorkflowStatusInactive WorkflowStatus = "inactive"
)

// WorkflowStatuses lists the allowed workflow statuses.
var WorkflowStatuses = []string{string(WorkflowStatusActive), string(WorkflowStatusInactive)}

// Valid reports whether s is one of the known statuses.
func (s WorkflowStatus) Valid() bool { return contains(WorkflowStatuses, string(s)) }

// Workflow is an automation definition. Config is opaque JSON owned by
// whatever runs the workflow.
type Workflow struct {
	Model
	Name        string         `gorm:"size:255;not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Type        WorkflowType   `gorm:"size:20;not null;default:'email'" json:"type"`
	Status      WorkflowStatus `gorm:"size:20;not null;default:'active';index" json:"status"`
	Config      datatypes.JSON `json:"config"`
	LastRun     Date           `json:"last_run"`
}
