package dashboard

import "github.com/smithpartners/lawdesk/internal/models"

// CampaignStats are the aggregates shown above the campaign list.
// AvgEngagement and AvgConversion are percentages.
type CampaignStats struct {
	Campaigns     int     `json:"campaigns"`
	TotalReach    int     `json:"total_reach"`
	TotalLeads    int     `json:"total_leads"`
	AvgEngagement float64 `json:"avg_engagement"`
	AvgConversion float64 `json:"avg_conversion"`
}

// ComputeCampaignStats aggregates the given campaigns. An empty list yields zeros.
func ComputeCampaignStats(campaigns []models.Campaign) CampaignStats {
	st := CampaignStats{Campaigns: len(campaigns)}
	if len(campaigns) == 0 {
		return st
	}
	var engagement, conversion float64
	for i := range campaigns {
		c := &campaigns[i]
		st.TotalReach += c.Reach
		st.TotalLeads += c.Leads
		engagement += c.Engagement
		conversion += c.ConversionRate()
	}
	n := float64(len(campaigns))
	st.AvgEngagement = engagement / n
	st.AvgConversion = conversion / n * 100
	return st
}

// CampaignStats aggregates the campaigns currently fetched by the workspace.
func (w *Workspace) CampaignStats() CampaignStats {
	return ComputeCampaignStats(w.Campaigns.Items())
}
