// Package outreach implements the autonomous email outreach pipeline:
// campaigns, lead prospecting and qualification, composed sends, inbox
// tracking, and the scheduler orchestration that drives it all without a
// human in the loop. It is a second caller of the tool registry and the
// scheduler, alongside the gateway's chat path.
package outreach

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// LeadType classifies who a lead is being pursued as.
type LeadType string

const (
	LeadTypeInvestor LeadType = "investor"
	LeadTypeCustomer LeadType = "customer"
)

// LeadStage tracks a lead's position in the outreach funnel.
type LeadStage string

const (
	StageDiscovered LeadStage = "discovered"
	StageQualified  LeadStage = "qualified"
	StageContacted  LeadStage = "contacted"
	StageReplied    LeadStage = "replied"
	StageEngaged    LeadStage = "engaged"
	StageConverted  LeadStage = "converted"
	StageLost       LeadStage = "lost"
	StageBounced    LeadStage = "bounced"
)

// CampaignStatus is the lifecycle state of a Campaign.
type CampaignStatus string

const (
	CampaignDraft     CampaignStatus = "draft"
	CampaignActive    CampaignStatus = "active"
	CampaignPaused    CampaignStatus = "paused"
	CampaignCompleted CampaignStatus = "completed"
)

// CampaignType mirrors LeadType at the campaign level.
type CampaignType string

const (
	CampaignInvestor CampaignType = "investor"
	CampaignCustomer CampaignType = "customer"
)

// Lead is a single prospect moving through a Campaign's funnel.
type Lead struct {
	ID                 string    `json:"id"`
	LeadType           LeadType  `json:"lead_type"`
	Stage              LeadStage `json:"stage"`
	Email              string    `json:"email"`
	FirstName          string    `json:"first_name"`
	LastName           string    `json:"last_name"`
	Title              string    `json:"title"`
	Company            string    `json:"company"`
	CompanyURL         string    `json:"company_url"`
	CompanyDescription string    `json:"company_description"`
	Industry           string    `json:"industry"`
	Score              int       `json:"score"`
	ScoreReasons       []string  `json:"score_reasons"`
	ResearchNotes      string    `json:"research_notes"`
	PainPoints         []string  `json:"pain_points"`
	CampaignID         string    `json:"campaign_id"`
	Source             string    `json:"source"`
	SourceURL          string    `json:"source_url"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
	EmailsSent         int       `json:"emails_sent"`
	EmailsReceived     int       `json:"emails_received"`
	LastContacted      time.Time `json:"last_contacted,omitempty"`
	LastReply          time.Time `json:"last_reply,omitempty"`
	NextFollowUp       time.Time `json:"next_follow_up,omitempty"`
	FollowUpCount      int       `json:"follow_up_count"`
	MaxFollowUps       int       `json:"max_follow_ups"`
	OptedOut           bool      `json:"opted_out"`
}

func newLead() Lead {
	now := time.Now().UTC()
	return Lead{
		ID:           "lead-" + uuid.NewString()[:8],
		Stage:        StageDiscovered,
		CreatedAt:    now,
		UpdatedAt:    now,
		MaxFollowUps: 3,
	}
}

// Campaign groups leads under one targeting/pitch/pacing configuration.
type Campaign struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	CampaignType      CampaignType      `json:"campaign_type"`
	Status            CampaignStatus    `json:"status"`
	TargetCriteria    string            `json:"target_criteria"`
	TargetIndustries  []string          `json:"target_industries"`
	TargetTitles      []string          `json:"target_titles"`
	SearchQueries     []string          `json:"search_queries"`
	PitchDeckPath     string            `json:"pitch_deck_path"`
	PitchDeckContent  string            `json:"pitch_deck_content"`
	ValueProposition  string            `json:"value_proposition"`
	EmailTemplates    map[string]string `json:"email_templates"`
	FollowUpDays      []int             `json:"follow_up_days"`
	SendWindowStart   int               `json:"send_window_start"`
	SendWindowEnd     int               `json:"send_window_end"`
	DailySendLimit    int               `json:"daily_send_limit"`
	LeadsDiscovered   int               `json:"leads_discovered"`
	LeadsQualified    int               `json:"leads_qualified"`
	EmailsSent        int               `json:"emails_sent"`
	RepliesReceived   int               `json:"replies_received"`
	MeetingsBooked    int               `json:"meetings_booked"`
	OptedOut          int               `json:"opted_out"`
	Bounced           int               `json:"bounced"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

func newCampaign() Campaign {
	now := time.Now().UTC()
	return Campaign{
		ID:              "camp-" + uuid.NewString()[:8],
		Status:          CampaignDraft,
		EmailTemplates:  make(map[string]string),
		FollowUpDays:    []int{3, 7, 14},
		SendWindowStart: 9,
		SendWindowEnd:   17,
		DailySendLimit:  50,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// EmailMessage is one turn of an outreach conversation.
type EmailMessage struct {
	ID          string    `json:"id"`
	Direction   string    `json:"direction"` // "outbound" or "inbound"
	Subject     string    `json:"subject"`
	Body        string    `json:"body"`
	Timestamp   time.Time `json:"timestamp"`
	MessageID   string    `json:"message_id"`
	InReplyTo   string    `json:"in_reply_to"`
}

func newEmailMessage(direction string) EmailMessage {
	return EmailMessage{
		ID:        "msg-" + uuid.NewString()[:8],
		Direction: direction,
		Timestamp: time.Now().UTC(),
	}
}

// Conversation is the full email thread with one lead.
type Conversation struct {
	LeadID     string         `json:"lead_id"`
	CampaignID string         `json:"campaign_id"`
	Messages   []EmailMessage `json:"messages"`
	Status     string         `json:"status"`
	Summary    string         `json:"summary"`
}

// DailyMetrics rolls up send/receive volume for one UTC calendar day.
type DailyMetrics struct {
	Date           string `json:"date"`
	EmailsSent     int    `json:"emails_sent"`
	EmailsReceived int    `json:"emails_received"`
	Bounces        int    `json:"bounces"`
	OptOuts        int    `json:"opt_outs"`
}

func splitList(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
