package outreach

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/conduitrun/conduit/internal/convo"
	"github.com/conduitrun/conduit/internal/toolreg"
)

// Pipeline bundles the store and the stages built on top of it, the unit
// RegisterTools wires into a tool registry.
type Pipeline struct {
	Store        *Store
	Prospector   *Prospector
	Composer     *Composer
	Tracker      *Tracker
	Dashboard    *Dashboard
	Orchestrator *Orchestrator
}

// NewPipeline builds a Pipeline from a Store, sharing it across every stage.
func NewPipeline(store *Store, search Searcher, sender Sender, scheduler JobScheduler) *Pipeline {
	return &Pipeline{
		Store:        store,
		Prospector:   NewProspector(store, search),
		Composer:     NewComposer(store, sender),
		Tracker:      NewTracker(store),
		Dashboard:    NewDashboard(store),
		Orchestrator: NewOrchestrator(store, scheduler),
	}
}

// RegisterTools installs the outreach tool surface against registry.
func (p *Pipeline) RegisterTools(registry *toolreg.Registry) {
	registry.Register("outreach_campaign_create", p.campaignCreateHandler(), campaignCreateSchema)
	registry.Register("outreach_campaign_start", p.campaignStartHandler(), campaignStartSchema)
	registry.Register("outreach_campaign_pause", p.campaignPauseHandler(), campaignPauseSchema)
	registry.Register("outreach_campaign_list", p.campaignListHandler(), campaignListSchema)
	registry.Register("outreach_campaign_load_pitch", p.campaignLoadPitchHandler(), campaignLoadPitchSchema)
	registry.Register("prospect_search", p.prospectSearchHandler(), prospectSearchSchema)
	registry.Register("prospect_qualify", p.prospectQualifyHandler(), prospectQualifySchema)
	registry.Register("prospect_add", p.prospectAddHandler(), prospectAddSchema)
	registry.Register("outreach_compose", p.composeHandler(), composeSchema)
	registry.Register("outreach_send", p.sendHandler(), sendSchema)
	registry.Register("outreach_check_inbox", p.checkInboxHandler(), checkInboxSchema)
	registry.Register("outreach_pending_replies", p.pendingRepliesHandler(), pendingRepliesSchema)
	registry.Register("outreach_dashboard", p.dashboardHandler(), dashboardSchema)
	registry.Register("outreach_lead_detail", p.leadDetailHandler(), leadDetailSchema)
	registry.Register("outreach_follow_ups_due", p.followUpsDueHandler(), followUpsDueSchema)
	registry.Register("outreach_send_queue", p.sendQueueHandler(), sendQueueSchema)
	registry.Register("outreach_prospect_auto", p.prospectAutoHandler(), prospectAutoSchema)
	registry.Register("outreach_mark_converted", p.markConvertedHandler(), markConvertedSchema)
}

func (p *Pipeline) campaignCreateHandler() toolreg.Handler {
	return func(arguments json.RawMessage) (string, error) {
		var input struct {
			Name             string `json:"name"`
			CampaignType     string `json:"campaign_type"`
			TargetCriteria   string `json:"target_criteria"`
			TargetIndustries string `json:"target_industries"`
			TargetTitles     string `json:"target_titles"`
			SearchQueries    string `json:"search_queries"`
			ValueProposition string `json:"value_proposition"`
			PitchDeckPath    string `json:"pitch_deck_path"`
			FollowUpDays     string `json:"follow_up_days"`
			DailySendLimit   int    `json:"daily_send_limit"`
		}
		if err := json.Unmarshal(arguments, &input); err != nil {
			return "", fmt.Errorf("invalid arguments: %w", err)
		}

		ct := CampaignType(input.CampaignType)
		if ct != CampaignInvestor && ct != CampaignCustomer {
			return fmt.Sprintf("Error: campaign_type must be 'investor' or 'customer', got '%s'", input.CampaignType), nil
		}

		industries := splitList(input.TargetIndustries, ",")
		titles := splitList(input.TargetTitles, ",")
		queries := splitList(input.SearchQueries, "|")

		days := []int{3, 7, 14}
		if input.FollowUpDays != "" {
			var parsed []int
			for _, d := range splitList(input.FollowUpDays, ",") {
				n, err := strconv.Atoi(d)
				if err != nil {
					return fmt.Sprintf("Error: invalid follow_up_days value '%s'", d), nil
				}
				parsed = append(parsed, n)
			}
			if len(parsed) > 0 {
				days = parsed
			}
		}

		var pitchContent string
		if input.PitchDeckPath != "" {
			content, err := p.Store.LoadPitchDeck(input.PitchDeckPath)
			if err != nil {
				return fmt.Sprintf("Error: %v", err), nil
			}
			pitchContent = content
		}

		dailyLimit := input.DailySendLimit
		if dailyLimit == 0 {
			dailyLimit = 50
		}

		campaign := newCampaign()
		campaign.Name = input.Name
		campaign.CampaignType = ct
		campaign.TargetCriteria = input.TargetCriteria
		campaign.TargetIndustries = industries
		campaign.TargetTitles = titles
		campaign.SearchQueries = queries
		campaign.ValueProposition = input.ValueProposition
		campaign.PitchDeckPath = input.PitchDeckPath
		campaign.PitchDeckContent = pitchContent
		campaign.FollowUpDays = days
		campaign.DailySendLimit = dailyLimit

		if err := p.Store.SaveCampaign(&campaign); err != nil {
			return "", fmt.Errorf("save campaign: %w", err)
		}

		pitchStatus := "not loaded"
		if pitchContent != "" {
			pitchStatus = "loaded"
		}
		indStr, titleStr := "any", "any"
		if len(industries) > 0 {
			indStr = strings.Join(industries, ", ")
		}
		if len(titles) > 0 {
			titleStr = strings.Join(titles, ", ")
		}
		daysStrs := make([]string, len(days))
		for i, d := range days {
			daysStrs[i] = strconv.Itoa(d)
		}

		return fmt.Sprintf(
			"Campaign created: %s (ID: %s)\n  Type: %s\n  Target: %s\n  Industries: %s\n  Titles: %s\n"+
				"  Search queries: %d\n  Pitch deck: %s\n  Follow-up schedule: day %s\n  Status: DRAFT\n\n"+
				"Next: Use outreach_campaign_start to activate autonomous outreach.",
			campaign.Name, campaign.ID, campaign.CampaignType, campaign.TargetCriteria, indStr, titleStr,
			len(queries), pitchStatus, strings.Join(daysStrs, ", "),
		), nil
	}
}

func (p *Pipeline) campaignStartHandler() toolreg.Handler {
	return func(arguments json.RawMessage) (string, error) {
		var input struct {
			CampaignID string `json:"campaign_id"`
		}
		if err := json.Unmarshal(arguments, &input); err != nil {
			return "", fmt.Errorf("invalid arguments: %w", err)
		}
		return p.Orchestrator.StartCampaign(input.CampaignID), nil
	}
}

func (p *Pipeline) campaignPauseHandler() toolreg.Handler {
	return func(arguments json.RawMessage) (string, error) {
		var input struct {
			CampaignID string `json:"campaign_id"`
		}
		if err := json.Unmarshal(arguments, &input); err != nil {
			return "", fmt.Errorf("invalid arguments: %w", err)
		}
		return p.Orchestrator.PauseCampaign(input.CampaignID), nil
	}
}

func (p *Pipeline) campaignListHandler() toolreg.Handler {
	return func(arguments json.RawMessage) (string, error) {
		campaigns := p.Store.ListCampaigns("")
		if len(campaigns) == 0 {
			return "No campaigns. Use outreach_campaign_create to start one.", nil
		}
		lines := []string{fmt.Sprintf("Campaigns (%d):", len(campaigns))}
		for _, c := range campaigns {
			leads := len(p.Store.ListLeads(LeadFilter{CampaignID: c.ID}))
			lines = append(lines, fmt.Sprintf("  %s [%s] %s\n    Type: %s | Leads: %d | Sent: %d | Replies: %d",
				c.ID, strings.ToUpper(string(c.Status)), c.Name, c.CampaignType, leads, c.EmailsSent, c.RepliesReceived))
		}
		return strings.Join(lines, "\n"), nil
	}
}

func (p *Pipeline) campaignLoadPitchHandler() toolreg.Handler {
	return func(arguments json.RawMessage) (string, error) {
		var input struct {
			CampaignID    string `json:"campaign_id"`
			PitchDeckPath string `json:"pitch_deck_path"`
		}
		if err := json.Unmarshal(arguments, &input); err != nil {
			return "", fmt.Errorf("invalid arguments: %w", err)
		}
		campaign, ok := p.Store.GetCampaign(input.CampaignID)
		if !ok {
			return fmt.Sprintf("Error: Campaign '%s' not found.", input.CampaignID), nil
		}
		content, err := p.Store.LoadPitchDeck(input.PitchDeckPath)
		if err != nil {
			return fmt.Sprintf("Error: %v", err), nil
		}
		campaign.PitchDeckPath = input.PitchDeckPath
		campaign.PitchDeckContent = content
		if err := p.Store.SaveCampaign(campaign); err != nil {
			return "", fmt.Errorf("save campaign: %w", err)
		}
		return fmt.Sprintf("Pitch deck loaded for '%s': %d chars from %s", campaign.Name, len(content), input.PitchDeckPath), nil
	}
}

func (p *Pipeline) prospectSearchHandler() toolreg.Handler {
	return func(arguments json.RawMessage) (string, error) {
		var input struct {
			Query      string `json:"query"`
			CampaignID string `json:"campaign_id"`
			MaxResults int    `json:"max_results"`
		}
		if err := json.Unmarshal(arguments, &input); err != nil {
			return "", fmt.Errorf("invalid arguments: %w", err)
		}
		return p.Prospector.ProspectSearch(context.Background(), input.CampaignID, input.Query, input.MaxResults)
	}
}

func (p *Pipeline) prospectQualifyHandler() toolreg.Handler {
	return func(arguments json.RawMessage) (string, error) {
		var raw struct {
			CampaignID         string `json:"campaign_id"`
			Company            string `json:"company"`
			ContactName        string `json:"contact_name"`
			Email              string `json:"email"`
			Title              string `json:"title"`
			Industry           string `json:"industry"`
			CompanyDescription string `json:"company_description"`
			PainPoints         string `json:"pain_points"`
			ResearchNotes      string `json:"research_notes"`
			SourceURL          string `json:"source_url"`
		}
		if err := json.Unmarshal(arguments, &raw); err != nil {
			return "", fmt.Errorf("invalid arguments: %w", err)
		}
		return p.Prospector.ProspectQualify(QualifyInput(raw))
	}
}

func (p *Pipeline) prospectAddHandler() toolreg.Handler {
	return func(arguments json.RawMessage) (string, error) {
		var raw struct {
			CampaignID         string `json:"campaign_id"`
			Email              string `json:"email"`
			FirstName          string `json:"first_name"`
			LastName           string `json:"last_name"`
			Company            string `json:"company"`
			Title              string `json:"title"`
			Industry           string `json:"industry"`
			CompanyURL         string `json:"company_url"`
			CompanyDescription string `json:"company_description"`
			PainPoints         string `json:"pain_points"`
			ResearchNotes      string `json:"research_notes"`
			Score              int    `json:"score"`
			ScoreReasons       string `json:"score_reasons"`
			SourceURL          string `json:"source_url"`
		}
		if err := json.Unmarshal(arguments, &raw); err != nil {
			return "", fmt.Errorf("invalid arguments: %w", err)
		}
		return p.Prospector.ProspectAdd(AddInput(raw))
	}
}

func (p *Pipeline) composeHandler() toolreg.Handler {
	return func(arguments json.RawMessage) (string, error) {
		var input struct {
			LeadID      string `json:"lead_id"`
			EmailType   string `json:"email_type"`
			CustomAngle string `json:"custom_angle"`
		}
		if err := json.Unmarshal(arguments, &input); err != nil {
			return "", fmt.Errorf("invalid arguments: %w", err)
		}
		if input.EmailType == "" {
			input.EmailType = "initial"
		}
		return p.Composer.Compose(input.LeadID, input.EmailType, input.CustomAngle)
	}
}

func (p *Pipeline) sendHandler() toolreg.Handler {
	return func(arguments json.RawMessage) (string, error) {
		var input struct {
			LeadID  string `json:"lead_id"`
			Subject string `json:"subject"`
			Body    string `json:"body"`
		}
		if err := json.Unmarshal(arguments, &input); err != nil {
			return "", fmt.Errorf("invalid arguments: %w", err)
		}
		return p.Composer.Send(context.Background(), input.LeadID, input.Subject, input.Body)
	}
}

func (p *Pipeline) checkInboxHandler() toolreg.Handler {
	return func(arguments json.RawMessage) (string, error) {
		return p.Tracker.RecordReplies(nil), nil
	}
}

func (p *Pipeline) pendingRepliesHandler() toolreg.Handler {
	return func(arguments json.RawMessage) (string, error) {
		return p.Tracker.PendingReplies(), nil
	}
}

func (p *Pipeline) dashboardHandler() toolreg.Handler {
	return func(arguments json.RawMessage) (string, error) {
		return p.Dashboard.Overview(), nil
	}
}

func (p *Pipeline) leadDetailHandler() toolreg.Handler {
	return func(arguments json.RawMessage) (string, error) {
		var input struct {
			LeadID string `json:"lead_id"`
		}
		if err := json.Unmarshal(arguments, &input); err != nil {
			return "", fmt.Errorf("invalid arguments: %w", err)
		}
		return p.Dashboard.LeadDetail(input.LeadID), nil
	}
}

func (p *Pipeline) followUpsDueHandler() toolreg.Handler {
	return func(arguments json.RawMessage) (string, error) {
		return p.Dashboard.FollowUpsDue(), nil
	}
}

func (p *Pipeline) sendQueueHandler() toolreg.Handler {
	return func(arguments json.RawMessage) (string, error) {
		return p.Dashboard.SendQueue(), nil
	}
}

func (p *Pipeline) prospectAutoHandler() toolreg.Handler {
	return func(arguments json.RawMessage) (string, error) {
		return p.Dashboard.ProspectAuto(), nil
	}
}

func (p *Pipeline) markConvertedHandler() toolreg.Handler {
	return func(arguments json.RawMessage) (string, error) {
		var input struct {
			LeadID string `json:"lead_id"`
			Notes  string `json:"notes"`
		}
		if err := json.Unmarshal(arguments, &input); err != nil {
			return "", fmt.Errorf("invalid arguments: %w", err)
		}
		lead, ok := p.Store.GetLead(input.LeadID)
		if !ok {
			return fmt.Sprintf("Error: Lead '%s' not found.", input.LeadID), nil
		}
		lead.Stage = StageConverted
		if input.Notes != "" {
			lead.ResearchNotes += "\n[CONVERTED] " + input.Notes
		}
		if err := p.Store.SaveLead(lead); err != nil {
			return "", fmt.Errorf("save lead: %w", err)
		}
		if campaign, ok := p.Store.GetCampaign(lead.CampaignID); ok {
			campaign.MeetingsBooked++
			p.Store.SaveCampaign(campaign)
		}
		return fmt.Sprintf("Lead %s %s marked as CONVERTED.", lead.FirstName, lead.LastName), nil
	}
}

var campaignCreateSchema = convo.ToolSchema{
	Name: "outreach_campaign_create",
	Description: "Create a new outreach campaign (investor or customer). Define targeting, search queries, " +
		"pitch content, and follow-up schedule.",
	Parameters: json.RawMessage(`{
		"type": "object",
		"properties": {
			"name": {"type": "string", "description": "Campaign name"},
			"campaign_type": {"type": "string", "enum": ["investor", "customer"]},
			"target_criteria": {"type": "string", "description": "Natural language targeting criteria"},
			"target_industries": {"type": "string", "description": "Comma-separated industries"},
			"target_titles": {"type": "string", "description": "Comma-separated job titles to target"},
			"search_queries": {"type": "string", "description": "Pipe-separated search queries for prospecting"},
			"value_proposition": {"type": "string", "description": "Core pitch in 2-3 sentences"},
			"pitch_deck_path": {"type": "string", "description": "Path to pitch deck file (markdown/text)"},
			"follow_up_days": {"type": "string", "description": "Comma-separated days between follow-ups (default: 3,7,14)"},
			"daily_send_limit": {"type": "integer", "description": "Max emails/day for this campaign (default: 50)"}
		},
		"required": ["name", "campaign_type"]
	}`),
}

var campaignStartSchema = convo.ToolSchema{
	Name:        "outreach_campaign_start",
	Description: "Activate a campaign. Schedules autonomous prospecting, sending, inbox monitoring, and follow-ups.",
	Parameters: json.RawMessage(`{
		"type": "object",
		"properties": {"campaign_id": {"type": "string"}},
		"required": ["campaign_id"]
	}`),
}

var campaignPauseSchema = convo.ToolSchema{
	Name:        "outreach_campaign_pause",
	Description: "Pause an active campaign. Stops sending but preserves all data.",
	Parameters: json.RawMessage(`{
		"type": "object",
		"properties": {"campaign_id": {"type": "string"}},
		"required": ["campaign_id"]
	}`),
}

var campaignListSchema = convo.ToolSchema{
	Name:        "outreach_campaign_list",
	Description: "List all outreach campaigns with status, lead count, and metrics.",
	Parameters:  json.RawMessage(`{"type": "object", "properties": {}, "required": []}`),
}

var campaignLoadPitchSchema = convo.ToolSchema{
	Name:        "outreach_campaign_load_pitch",
	Description: "Load or update the pitch deck for a campaign from a file.",
	Parameters: json.RawMessage(`{
		"type": "object",
		"properties": {
			"campaign_id": {"type": "string"},
			"pitch_deck_path": {"type": "string", "description": "Path to pitch deck file"}
		},
		"required": ["campaign_id", "pitch_deck_path"]
	}`),
}

var prospectSearchSchema = convo.ToolSchema{
	Name:        "prospect_search",
	Description: "Search the web for potential leads matching campaign criteria.",
	Parameters: json.RawMessage(`{
		"type": "object",
		"properties": {
			"query": {"type": "string", "description": "Search query for finding leads"},
			"campaign_id": {"type": "string"},
			"max_results": {"type": "integer", "description": "Max results (default 10)"}
		},
		"required": ["query", "campaign_id"]
	}`),
}

var prospectQualifySchema = convo.ToolSchema{
	Name:        "prospect_qualify",
	Description: "Evaluate and score a potential lead (0-100) based on campaign criteria.",
	Parameters: json.RawMessage(`{
		"type": "object",
		"properties": {
			"campaign_id": {"type": "string"},
			"company": {"type": "string"},
			"contact_name": {"type": "string"},
			"email": {"type": "string"},
			"title": {"type": "string"},
			"industry": {"type": "string"},
			"company_description": {"type": "string"},
			"pain_points": {"type": "string", "description": "Comma-separated"},
			"research_notes": {"type": "string"},
			"source_url": {"type": "string"}
		},
		"required": ["campaign_id", "company", "contact_name", "email"]
	}`),
}

var prospectAddSchema = convo.ToolSchema{
	Name:        "prospect_add",
	Description: "Add a qualified lead to a campaign.",
	Parameters: json.RawMessage(`{
		"type": "object",
		"properties": {
			"campaign_id": {"type": "string"},
			"email": {"type": "string"},
			"first_name": {"type": "string"},
			"last_name": {"type": "string"},
			"company": {"type": "string"},
			"title": {"type": "string"},
			"industry": {"type": "string"},
			"company_url": {"type": "string"},
			"company_description": {"type": "string"},
			"pain_points": {"type": "string", "description": "Comma-separated"},
			"research_notes": {"type": "string"},
			"score": {"type": "integer", "description": "Fit score 0-100"},
			"score_reasons": {"type": "string", "description": "Comma-separated reasons"},
			"source_url": {"type": "string"}
		},
		"required": ["campaign_id", "email", "first_name", "last_name", "company"]
	}`),
}

var composeSchema = convo.ToolSchema{
	Name: "outreach_compose",
	Description: "Prepare context for composing a personalized outreach email. Returns lead profile, pitch deck, " +
		"and conversation history. After reading, compose the email and call outreach_send.",
	Parameters: json.RawMessage(`{
		"type": "object",
		"properties": {
			"lead_id": {"type": "string"},
			"email_type": {"type": "string", "enum": ["initial", "follow_up", "reply"]},
			"custom_angle": {"type": "string", "description": "Optional personalization angle"}
		},
		"required": ["lead_id"]
	}`),
}

var sendSchema = convo.ToolSchema{
	Name:        "outreach_send",
	Description: "Send a composed email to a lead. Records in conversation history and schedules follow-up.",
	Parameters: json.RawMessage(`{
		"type": "object",
		"properties": {
			"lead_id": {"type": "string"},
			"subject": {"type": "string", "description": "Email subject line"},
			"body": {"type": "string", "description": "Composed email body"}
		},
		"required": ["lead_id", "subject", "body"]
	}`),
}

var checkInboxSchema = convo.ToolSchema{
	Name:        "outreach_check_inbox",
	Description: "Check for replies to outreach. No inbox source is connected, so this always reports no new replies.",
	Parameters:  json.RawMessage(`{"type": "object", "properties": {}, "required": []}`),
}

var pendingRepliesSchema = convo.ToolSchema{
	Name:        "outreach_pending_replies",
	Description: "List leads that replied but haven't been responded to yet.",
	Parameters:  json.RawMessage(`{"type": "object", "properties": {}, "required": []}`),
}

var dashboardSchema = convo.ToolSchema{
	Name:        "outreach_dashboard",
	Description: "Full outreach pipeline: campaigns, lead stages, send metrics, reply rates.",
	Parameters:  json.RawMessage(`{"type": "object", "properties": {}, "required": []}`),
}

var leadDetailSchema = convo.ToolSchema{
	Name:        "outreach_lead_detail",
	Description: "Full details for a lead including conversation history.",
	Parameters: json.RawMessage(`{
		"type": "object",
		"properties": {"lead_id": {"type": "string"}},
		"required": ["lead_id"]
	}`),
}

var followUpsDueSchema = convo.ToolSchema{
	Name:        "outreach_follow_ups_due",
	Description: "List leads due for follow-up emails.",
	Parameters:  json.RawMessage(`{"type": "object", "properties": {}, "required": []}`),
}

var sendQueueSchema = convo.ToolSchema{
	Name:        "outreach_send_queue",
	Description: "List qualified leads that haven't been contacted yet (ready to send).",
	Parameters:  json.RawMessage(`{"type": "object", "properties": {}, "required": []}`),
}

var prospectAutoSchema = convo.ToolSchema{
	Name:        "outreach_prospect_auto",
	Description: "Trigger autonomous prospecting for all active campaigns.",
	Parameters:  json.RawMessage(`{"type": "object", "properties": {}, "required": []}`),
}

var markConvertedSchema = convo.ToolSchema{
	Name:        "outreach_mark_converted",
	Description: "Mark a lead as converted (meeting booked, deal closed).",
	Parameters: json.RawMessage(`{
		"type": "object",
		"properties": {
			"lead_id": {"type": "string"},
			"notes": {"type": "string", "description": "Conversion notes"}
		},
		"required": ["lead_id"]
	}`),
}
