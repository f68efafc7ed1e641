// Package models defines the records kept for the firm: cases, clients,
// documents, calendar events, marketing campaigns, workflows and the chatbot
// knowledge base, plus the users allowed to sign in.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Model is embedded by every stored record. The key is an opaque UUID string.
type Model struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a key when the caller did not set one.
func (m *Model) BeforeCreate(_ *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// GetID returns the record key.
func (m Model) GetID() string {
	return m.ID
}
