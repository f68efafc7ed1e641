package models

// CampaignStatus is the state of a marketing campaign.
type CampaignStatus string

const (
	CampaignStatusActive    CampaignStatus = "active"
	CampaignStatusDraft     CampaignStatus = "draft"
	CampaignStatusCompleted CampaignStatus = "completed"
)

// CampaignStatuses lists the allowed campaign statuses.
var CampaignStatuses = []string{string(CampaignStatusActive), string(CampaignStatusDraft), string(CampaignStatusCompleted)}

// Valid reports whether s is one of the known statuses.
func (s CampaignStatus) Valid() bool { return contains(CampaignStatuses, string(s)) }

// Campaign is an outreach campaign with its running figures.
// Engagement is a percentage.
type Campaign struct {
	Model
	Name       string         `gorm:"size:255;not null" json:"name"`
	Status     CampaignStatus `gorm:"size:20;not null;default:'active'" json:"status"`
	Reach      int            `gorm:"not null;default:0" json:"reach"`
	Engagement float64        `gorm:"not null;default:0" json:"engagement"`
	Leads      int            `gorm:"not null;default:0" json:"leads"`
	LastRun    Date           `json:"last_run"`
}

// ConversionRate returns leads per reached contact. A campaign with no reach
// counts as reaching one contact.
func (c *Campaign) ConversionRate() float64 {
	reach := c.Reach
	if reach == 0 {
		reach = 1
	}
	return float64(c.Leads) / float64(reach)
}
