package outreach

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Sender is the narrow outbound capability composing needs to deliver a
// finished email. The composition root satisfies it with an adapter over
// gatewaycore.Manager pinned to one configured channel, so outreach does not
// depend on gatewaycore directly.
type Sender interface {
	Send(ctx context.Context, recipientID, text string, metadata map[string]string) (ok bool, errText string)
}

// Composer builds personalization context for outreach emails and sends
// the finished copy.
type Composer struct {
	store         *Store
	sender        Sender
	globalLimit   int
}

// NewComposer builds a Composer. sender may be nil, in which case Send
// reports that email delivery isn't configured.
func NewComposer(store *Store, sender Sender) *Composer {
	return &Composer{store: store, sender: sender, globalLimit: 500}
}

// Compose assembles the lead profile, campaign pitch, and conversation
// history that the model uses to write a personalized email, returning
// instructions for it to follow. emailType is one of initial/follow_up/reply.
func (c *Composer) Compose(leadID, emailType, customAngle string) (string, error) {
	lead, ok := c.store.GetLead(leadID)
	if !ok {
		return fmt.Sprintf("Error: Lead '%s' not found.", leadID), nil
	}
	campaign, ok := c.store.GetCampaign(lead.CampaignID)
	if !ok {
		return fmt.Sprintf("Error: Campaign '%s' not found.", lead.CampaignID), nil
	}

	convHistory := "No prior conversation."
	if conv, ok := c.store.GetConversation(leadID); ok && len(conv.Messages) > 0 {
		msgs := conv.Messages
		if len(msgs) > 6 {
			msgs = msgs[len(msgs)-6:]
		}
		var lines []string
		for _, msg := range msgs {
			direction := "YOU SENT"
			if msg.Direction == "inbound" {
				direction = "THEY REPLIED"
			}
			lines = append(lines, fmt.Sprintf("[%s - %s]\nSubject: %s\n%s\n",
				direction, msg.Timestamp.Format("2006-01-02"), msg.Subject, msg.Body))
		}
		convHistory = "CONVERSATION HISTORY:\n" + strings.Join(lines, "\n---\n")
	}

	pitchExcerpt := campaign.ValueProposition
	if campaign.PitchDeckContent != "" {
		pitchExcerpt = campaign.PitchDeckContent
		if len(pitchExcerpt) > 3000 {
			pitchExcerpt = pitchExcerpt[:3000]
		}
	}

	angleSection := ""
	if customAngle != "" {
		angleSection = "CUSTOM ANGLE: " + customAngle
	}
	templateSection := ""
	if tmpl := campaign.EmailTemplates[emailType]; tmpl != "" {
		templateSection = "TEMPLATE GUIDANCE:\n" + tmpl
	}

	composeInstruction := "Write a reply to their response"
	switch emailType {
	case "initial":
		composeInstruction = "Write the initial cold outreach email"
	case "follow_up":
		composeInstruction = "Write a follow-up email"
	}

	audienceNote := "For customers: focus on their specific pain points and how this product solves them"
	if lead.LeadType == LeadTypeInvestor {
		audienceNote = "For investors: focus on market opportunity, traction, and team"
	}

	painStr := "unknown"
	if len(lead.PainPoints) > 0 {
		painStr = strings.Join(lead.PainPoints, ", ")
	}

	return fmt.Sprintf(`COMPOSE EMAIL for %s outreach.

LEAD PROFILE:
  Name: %s %s
  Title: %s
  Company: %s
  Industry: %s
  Company description: %s
  Pain points: %s
  Research notes: %s
  Lead type: %s
  Score: %d/100

CAMPAIGN: %s (%s)
  Value proposition: %s
  Target criteria: %s

PITCH CONTEXT:
%s

%s

%s

%s

INSTRUCTIONS:
- %s
- Personalize based on the lead's company, pain points, and industry
- Reference specific details from their company, no generic language
- %s
- Keep it concise (150-250 words for initial, shorter for follow-ups)
- Professional but warm tone, not salesy, not robotic
- Clear, low-friction CTA (e.g. "Would a 15-minute call next week work?")
- Do not use placeholder brackets like [Company], use actual values
- After composing, call outreach_send with the lead_id, subject, and body`,
		strings.ToUpper(emailType),
		lead.FirstName, lead.LastName, lead.Title, lead.Company, lead.Industry,
		lead.CompanyDescription, painStr, lead.ResearchNotes, lead.LeadType, lead.Score,
		campaign.Name, campaign.CampaignType, campaign.ValueProposition, campaign.TargetCriteria,
		pitchExcerpt, convHistory, angleSection, templateSection,
		composeInstruction, audienceNote,
	), nil
}

// Send delivers a composed email, records it in the lead's conversation,
// advances the lead's stage, and schedules the next follow-up.
func (c *Composer) Send(ctx context.Context, leadID, subject, body string) (string, error) {
	lead, ok := c.store.GetLead(leadID)
	if !ok {
		return fmt.Sprintf("Error: Lead '%s' not found.", leadID), nil
	}
	if lead.OptedOut {
		return fmt.Sprintf("Error: Lead %s has opted out. Cannot send.", lead.Email), nil
	}
	campaign, _ := c.store.GetCampaign(lead.CampaignID)

	if !c.store.CanSendToday(c.globalLimit) {
		return fmt.Sprintf("Error: Daily send limit reached (%d emails). Try again tomorrow.", c.globalLimit), nil
	}
	if campaign != nil {
		sentToday := 0
		today := time.Now().UTC().Format("2006-01-02")
		for _, ld := range c.store.ListLeads(LeadFilter{CampaignID: campaign.ID}) {
			if !ld.LastContacted.IsZero() && ld.LastContacted.Format("2006-01-02") == today {
				sentToday++
			}
		}
		if sentToday >= campaign.DailySendLimit {
			return fmt.Sprintf("Error: Campaign daily limit reached (%d).", campaign.DailySendLimit), nil
		}
	}

	if c.sender == nil {
		return "Error: email delivery is not configured for this deployment.", nil
	}

	if conv, ok := c.store.GetConversation(leadID); ok && len(conv.Messages) > 0 {
		original := conv.Messages[0].Subject
		if !strings.HasPrefix(subject, "Re:") {
			subject = "Re: " + original
		}
	}

	ok2, errText := c.sender.Send(ctx, lead.Email, body, map[string]string{"subject": subject})
	if !ok2 {
		if strings.Contains(strings.ToLower(errText), "bounce") || strings.Contains(strings.ToLower(errText), "rejected") {
			lead.Stage = StageBounced
			c.store.SaveLead(lead)
			if campaign != nil {
				campaign.Bounced++
				c.store.SaveCampaign(campaign)
			}
		}
		return fmt.Sprintf("Error sending to %s: %s", lead.Email, errText), nil
	}

	msg := newEmailMessage("outbound")
	msg.Subject = subject
	msg.Body = body

	conv, ok := c.store.GetConversation(leadID)
	if !ok {
		conv = &Conversation{LeadID: leadID, CampaignID: lead.CampaignID}
	}
	conv.Messages = append(conv.Messages, msg)
	if err := c.store.SaveConversation(conv); err != nil {
		return "", fmt.Errorf("save conversation: %w", err)
	}

	lead.EmailsSent++
	lead.LastContacted = msg.Timestamp
	if lead.Stage == StageQualified {
		lead.Stage = StageContacted
	}
	if campaign != nil && lead.FollowUpCount < lead.MaxFollowUps {
		idx := lead.FollowUpCount
		if idx >= len(campaign.FollowUpDays) {
			idx = len(campaign.FollowUpDays) - 1
		}
		if idx >= 0 {
			lead.NextFollowUp = time.Now().UTC().AddDate(0, 0, campaign.FollowUpDays[idx])
		}
	}
	if err := c.store.SaveLead(lead); err != nil {
		return "", fmt.Errorf("save lead: %w", err)
	}
	c.store.IncrementSent()

	if campaign != nil {
		campaign.EmailsSent++
		c.store.SaveCampaign(campaign)
	}

	followUp := "none"
	if !lead.NextFollowUp.IsZero() {
		followUp = lead.NextFollowUp.Format("2006-01-02")
	}
	return fmt.Sprintf("Email sent to %s %s (%s)\n  Subject: %s\n  Stage: %s\n  Follow-up: %s",
		lead.FirstName, lead.LastName, lead.Email, subject, lead.Stage, followUp), nil
}
