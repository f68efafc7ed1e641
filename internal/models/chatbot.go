package models

// ChatbotQA is one question/answer pair served by the client chatbot.
type ChatbotQA struct {
	Model
	Question string `gorm:"type:text;not null" json:"question"`
	Answer   string `gorm:"type:text;not null" json:"answer"`
}

// TableName keeps the historical collection name.
func (ChatbotQA) TableName() string { return "chatbot_qas" }
