package outreach

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// optOutPatterns mirrors the phrases that make an inbound reply an opt-out
// rather than a reply worth engaging.
var optOutPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bunsubscribe\b`),
	regexp.MustCompile(`(?i)\bremove me\b`),
	regexp.MustCompile(`(?i)\bstop (emailing|contacting)\b`),
	regexp.MustCompile(`(?i)\bopt.?out\b`),
	regexp.MustCompile(`(?i)\bno thanks\b.*\bdon.?t contact\b`),
	regexp.MustCompile(`(?i)\bnot interested\b.*\bplease (stop|remove)\b`),
}

// InboundReply is one message pulled off the monitored inbox, already
// normalized by the channel it arrived on.
type InboundReply struct {
	SenderEmail string
	Subject     string
	Body        string
	MessageID   string
}

// Tracker matches inbound replies to leads and reacts to opt-outs.
type Tracker struct {
	store *Store
}

// NewTracker builds a Tracker.
func NewTracker(store *Store) *Tracker {
	return &Tracker{store: store}
}

// RecordReplies matches each reply to a known lead by sender email, routes
// opt-outs to StageLost, and otherwise appends the reply to the lead's
// conversation and advances its stage.
func (t *Tracker) RecordReplies(replies []InboundReply) string {
	if len(replies) == 0 {
		return "No new replies found."
	}

	var newReplies, optOuts []string
	for _, reply := range replies {
		lead, ok := t.store.GetLeadByEmail(reply.SenderEmail)
		if !ok {
			continue
		}

		bodyLower := strings.ToLower(reply.Body)
		isOptOut := false
		for _, pattern := range optOutPatterns {
			if pattern.MatchString(bodyLower) {
				isOptOut = true
				break
			}
		}

		if isOptOut {
			lead.OptedOut = true
			lead.Stage = StageLost
			t.store.SaveLead(lead)
			if campaign, ok := t.store.GetCampaign(lead.CampaignID); ok {
				campaign.OptedOut++
				t.store.SaveCampaign(campaign)
			}
			optOuts = append(optOuts, fmt.Sprintf("%s %s (%s)", lead.FirstName, lead.LastName, lead.Email))
			continue
		}

		msg := newEmailMessage("inbound")
		msg.Subject = reply.Subject
		msg.Body = reply.Body
		msg.MessageID = reply.MessageID

		conv, ok := t.store.GetConversation(lead.ID)
		if !ok {
			conv = &Conversation{LeadID: lead.ID, CampaignID: lead.CampaignID}
		}
		conv.Messages = append(conv.Messages, msg)
		t.store.SaveConversation(conv)

		lead.EmailsReceived++
		lead.LastReply = msg.Timestamp
		lead.NextFollowUp = time.Time{}
		switch lead.Stage {
		case StageContacted, StageQualified:
			lead.Stage = StageReplied
		case StageReplied:
			lead.Stage = StageEngaged
		}
		t.store.SaveLead(lead)
		t.store.IncrementReceived()

		if campaign, ok := t.store.GetCampaign(lead.CampaignID); ok {
			campaign.RepliesReceived++
			t.store.SaveCampaign(campaign)
		}

		preview := reply.Body
		if len(preview) > 200 {
			preview = preview[:200]
		}
		newReplies = append(newReplies, fmt.Sprintf("Reply from %s %s (%s) [%s]:\n  %s...",
			lead.FirstName, lead.LastName, lead.Email, lead.Company, preview))
	}

	var parts []string
	if len(newReplies) > 0 {
		parts = append(parts, fmt.Sprintf("NEW REPLIES (%d):\n%s", len(newReplies), strings.Join(newReplies, "\n\n")))
	}
	if len(optOuts) > 0 {
		parts = append(parts, fmt.Sprintf("OPT-OUTS (%d):\n%s", len(optOuts), strings.Join(optOuts, "\n")))
	}
	if len(parts) == 0 {
		return "Checked inbox. No outreach-related replies found."
	}
	return strings.Join(parts, "\n\n")
}

// PendingReplies lists leads that replied but haven't had a response sent
// back to them yet.
func (t *Tracker) PendingReplies() string {
	var needsResponse []string
	leads := append(t.store.ListLeads(LeadFilter{Stage: StageReplied}), t.store.ListLeads(LeadFilter{Stage: StageEngaged})...)

	for _, lead := range leads {
		conv, ok := t.store.GetConversation(lead.ID)
		if !ok || len(conv.Messages) == 0 {
			continue
		}
		last := conv.Messages[len(conv.Messages)-1]
		if last.Direction != "inbound" {
			continue
		}
		preview := last.Body
		if len(preview) > 150 {
			preview = preview[:150]
		}
		needsResponse = append(needsResponse, fmt.Sprintf("%s %s (%s) [%s]\n  Last reply: %s...\n  Lead ID: %s",
			lead.FirstName, lead.LastName, lead.Email, lead.Company, preview, lead.ID))
	}

	if len(needsResponse) == 0 {
		return "No pending replies need a response."
	}
	return fmt.Sprintf("Leads awaiting response (%d):\n\n%s", len(needsResponse), strings.Join(needsResponse, "\n\n"))
}
