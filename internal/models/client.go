package models

// Client is a person or company the firm represents.
// No uniqueness is enforced on any field.
type Client struct {
	Model
	Name    string `gorm:"size:255;not null;index" json:"name"`
	Email   string `gorm:"size:255" json:"email"`
	Phone   string `gorm:"size:50" json:"phone"`
	Company string `gorm:"size:255" json:"company"`
	Notes   string `gorm:"type:text" json:"notes"`
}
