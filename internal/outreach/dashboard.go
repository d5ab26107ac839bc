package outreach

import (
	"fmt"
	"sort"
	"strings"
)

// Dashboard builds campaign/lead reporting views over a Store.
type Dashboard struct {
	store *Store
}

// NewDashboard builds a Dashboard.
func NewDashboard(store *Store) *Dashboard {
	return &Dashboard{store: store}
}

// Overview reports pipeline status across every campaign plus today's
// send/reply volume.
func (d *Dashboard) Overview() string {
	campaigns := d.store.ListCampaigns("")
	if len(campaigns) == 0 {
		return "No outreach campaigns. Use outreach_campaign_create to start one."
	}

	lines := []string{"OUTREACH DASHBOARD", strings.Repeat("=", 50)}

	for _, c := range campaigns {
		leads := d.store.ListLeads(LeadFilter{CampaignID: c.ID})
		stageCounts := make(map[LeadStage]int)
		for _, ld := range leads {
			stageCounts[ld.Stage]++
		}
		stages := make([]string, 0, len(stageCounts))
		for stage := range stageCounts {
			stages = append(stages, string(stage))
		}
		sort.Strings(stages)

		lines = append(lines, fmt.Sprintf("\n%s [%s]", c.Name, strings.ToUpper(string(c.Status))))
		lines = append(lines, fmt.Sprintf("  Type: %s", c.CampaignType))
		lines = append(lines, fmt.Sprintf("  Leads: %d total", len(leads)))
		for _, stage := range stages {
			lines = append(lines, fmt.Sprintf("    %s: %d", stage, stageCounts[LeadStage(stage)]))
		}
		lines = append(lines, fmt.Sprintf("  Emails sent: %d", c.EmailsSent))
		lines = append(lines, fmt.Sprintf("  Replies: %d", c.RepliesReceived))
		replyRate := "N/A"
		if c.EmailsSent > 0 {
			replyRate = fmt.Sprintf("%.1f%%", float64(c.RepliesReceived)/float64(c.EmailsSent)*100)
		}
		lines = append(lines, fmt.Sprintf("  Reply rate: %s", replyRate))
		lines = append(lines, fmt.Sprintf("  Meetings: %d", c.MeetingsBooked))
		lines = append(lines, fmt.Sprintf("  Opt-outs: %d", c.OptedOut))
		lines = append(lines, fmt.Sprintf("  Bounced: %d", c.Bounced))
	}

	metrics := d.store.TodayMetrics()
	lines = append(lines, "\nTODAY'S METRICS")
	lines = append(lines, fmt.Sprintf("  Emails sent: %d/500", metrics.EmailsSent))
	lines = append(lines, fmt.Sprintf("  Replies: %d", metrics.EmailsReceived))

	return strings.Join(lines, "\n")
}

// LeadDetail reports full detail for one lead, including conversation
// history.
func (d *Dashboard) LeadDetail(leadID string) string {
	lead, ok := d.store.GetLead(leadID)
	if !ok {
		return fmt.Sprintf("Lead '%s' not found.", leadID)
	}

	convLines := "  No messages yet."
	if conv, ok := d.store.GetConversation(leadID); ok && len(conv.Messages) > 0 {
		var lines []string
		for _, msg := range conv.Messages {
			direction := "SENT"
			if msg.Direction == "inbound" {
				direction = "RECEIVED"
			}
			body := msg.Body
			suffix := ""
			if len(body) > 300 {
				body = body[:300]
				suffix = "..."
			}
			lines = append(lines, fmt.Sprintf("  [%s %s] %s", direction, msg.Timestamp.Format("2006-01-02T15:04"), msg.Subject))
			lines = append(lines, fmt.Sprintf("  %s%s", body, suffix))
			lines = append(lines, "")
		}
		convLines = strings.Join(lines, "\n")
	}

	nextFollowUp := "none"
	if !lead.NextFollowUp.IsZero() {
		nextFollowUp = lead.NextFollowUp.Format("2006-01-02")
	}

	return fmt.Sprintf(
		"LEAD: %s %s\n  Email: %s\n  Title: %s\n  Company: %s (%s)\n  Stage: %s\n"+
			"  Score: %d/100\n  Reasons: %s\n  Pain points: %s\n  Research: %s\n"+
			"  Emails: %d sent, %d received\n  Follow-ups: %d/%d\n  Next follow-up: %s\n"+
			"\nCONVERSATION:\n%s",
		lead.FirstName, lead.LastName, lead.Email, lead.Title, lead.Company, lead.Industry, lead.Stage,
		lead.Score, strings.Join(lead.ScoreReasons, ", "), strings.Join(lead.PainPoints, ", "), lead.ResearchNotes,
		lead.EmailsSent, lead.EmailsReceived, lead.FollowUpCount, lead.MaxFollowUps, nextFollowUp,
		convLines,
	)
}

// FollowUpsDue lists leads due for a follow-up email.
func (d *Dashboard) FollowUpsDue() string {
	leads := d.store.LeadsNeedingFollowUp()
	if len(leads) == 0 {
		return "No follow-ups due."
	}

	lines := []string{fmt.Sprintf("FOLLOW-UPS DUE (%d):", len(leads))}
	for _, lead := range leads {
		lastContacted := "never"
		if !lead.LastContacted.IsZero() {
			lastContacted = lead.LastContacted.Format("2006-01-02")
		}
		lines = append(lines, fmt.Sprintf("  %s %s (%s)\n    Company: %s\n    Follow-up #%d of %d\n    Last contacted: %s\n    ID: %s",
			lead.FirstName, lead.LastName, lead.Email, lead.Company, lead.FollowUpCount+1, lead.MaxFollowUps, lastContacted, lead.ID))
	}
	return strings.Join(lines, "\n")
}

// SendQueue lists qualified leads waiting for their initial email.
func (d *Dashboard) SendQueue() string {
	qualified := d.store.ListLeads(LeadFilter{Stage: StageQualified})
	if len(qualified) == 0 {
		return "No qualified leads in the send queue."
	}

	if len(qualified) > 20 {
		qualified = qualified[:20]
	}
	lines := []string{fmt.Sprintf("SEND QUEUE (%d qualified leads):", len(qualified))}
	for _, lead := range qualified {
		lines = append(lines, fmt.Sprintf("  %s %s (%s)\n    Company: %s | Score: %d\n    ID: %s",
			lead.FirstName, lead.LastName, lead.Email, lead.Company, lead.Score, lead.ID))
	}
	return strings.Join(lines, "\n")
}

// ProspectAuto surfaces per-campaign instructions for autonomous
// prospecting against every active campaign under 100 leads.
func (d *Dashboard) ProspectAuto() string {
	active := d.store.ListCampaigns(CampaignActive)
	if len(active) == 0 {
		return "No active campaigns to prospect for."
	}

	var instructions []string
	for _, c := range active {
		leadCount := len(d.store.ListLeads(LeadFilter{CampaignID: c.ID}))
		if leadCount >= 100 {
			continue
		}
		queries := "generate based on criteria"
		if len(c.SearchQueries) > 0 {
			queries = strings.Join(c.SearchQueries, ", ")
		}
		instructions = append(instructions, fmt.Sprintf(
			"Campaign: %s (ID: %s)\n  Type: %s\n  Target: %s\n  Search queries: %s\n  Current leads: %d\n\n"+
				"  Run prospect_search with relevant queries, then prospect_qualify, and prospect_add for qualified leads.",
			c.Name, c.ID, c.CampaignType, c.TargetCriteria, queries, leadCount,
		))
	}
	if len(instructions) == 0 {
		return "No active campaigns need prospecting right now."
	}
	return "AUTONOMOUS PROSPECTING:\n\n" + strings.Join(instructions, "\n\n")
}
