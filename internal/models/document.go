package models

// Document is a stored legal document. URL may point at an uploaded object.
type Document struct {
	Model
	Title   string `gorm:"size:255;not null" json:"title"`
	Type    string `gorm:"size:100" json:"type"`
	URL     string `gorm:"size:1000" json:"url"`
	Summary string `gorm:"type:text" json:"summary"`
}
