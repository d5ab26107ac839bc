package outreach

import (
	"context"
	"fmt"
	"strings"
)

// Searcher is the narrow web-search capability prospecting needs. A
// concrete implementation (e.g. websearch.WebSearchTool) is injected by the
// composition root; outreach never depends on a specific search backend.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) (string, error)
}

// Prospector discovers, qualifies, and enrolls leads against a Campaign.
type Prospector struct {
	store  *Store
	search Searcher
}

// NewProspector builds a Prospector. search may be nil, in which case
// ProspectSearch reports that web search isn't configured.
func NewProspector(store *Store, search Searcher) *Prospector {
	return &Prospector{store: store, search: search}
}

// ProspectSearch runs a web search for candidate leads matching a campaign.
func (p *Prospector) ProspectSearch(ctx context.Context, campaignID, query string, maxResults int) (string, error) {
	campaign, ok := p.store.GetCampaign(campaignID)
	if !ok {
		return fmt.Sprintf("Error: Campaign '%s' not found.", campaignID), nil
	}
	if p.search == nil {
		return "Error: web search is not configured for this deployment.", nil
	}
	if maxResults <= 0 {
		maxResults = 10
	}

	results, err := p.search.Search(ctx, query, maxResults)
	if err != nil {
		return "", fmt.Errorf("search: %w", err)
	}

	return fmt.Sprintf(
		"Prospecting for '%s' (%s):\nQuery: %s\n\n%s\n\n"+
			"Next: use prospect_qualify on promising candidates, then prospect_add.",
		campaign.Name, campaign.CampaignType, query, results,
	), nil
}

// QualifyInput describes a candidate lead surfaced during prospecting.
type QualifyInput struct {
	CampaignID         string
	Company            string
	ContactName        string
	Email              string
	Title              string
	Industry           string
	CompanyDescription string
	PainPoints         string // comma-separated
	ResearchNotes      string
	SourceURL          string
}

// ProspectQualify builds the scoring context for a candidate. The caller
// (the model, in practice) reads this context, assigns a 0-100 fit score,
// and calls ProspectAdd for anything that clears the bar.
func (p *Prospector) ProspectQualify(input QualifyInput) (string, error) {
	campaign, ok := p.store.GetCampaign(input.CampaignID)
	if !ok {
		return fmt.Sprintf("Error: Campaign '%s' not found.", input.CampaignID), nil
	}

	if existing, ok := p.store.GetLeadByEmail(input.Email); ok {
		return fmt.Sprintf("Lead already exists: %s %s at %s (ID: %s, stage: %s)",
			existing.FirstName, existing.LastName, existing.Company, existing.ID, existing.Stage), nil
	}

	painList := splitList(input.PainPoints, ",")
	painStr := "unknown"
	if len(painList) > 0 {
		painStr = strings.Join(painList, ", ")
	}

	industries := "any"
	if len(campaign.TargetIndustries) > 0 {
		industries = strings.Join(campaign.TargetIndustries, ", ")
	}
	titles := "any"
	if len(campaign.TargetTitles) > 0 {
		titles = strings.Join(campaign.TargetTitles, ", ")
	}

	return fmt.Sprintf(
		"Lead qualification for '%s' (%s):\n\n"+
			"Target criteria: %s\nTarget industries: %s\nTarget titles: %s\n\n"+
			"Candidate:\n  Name: %s\n  Title: %s\n  Company: %s\n  Industry: %s\n"+
			"  Description: %s\n  Pain points: %s\n  Research: %s\n\n"+
			"Score this lead 0-100. If score >= 60, use prospect_add to add them. "+
			"Consider: industry fit, title/seniority, pain point alignment, company size.",
		campaign.Name, campaign.CampaignType, campaign.TargetCriteria, industries, titles,
		input.ContactName, input.Title, input.Company, input.Industry,
		input.CompanyDescription, painStr, input.ResearchNotes,
	), nil
}

// AddInput is a qualified lead ready to be enrolled in a campaign.
type AddInput struct {
	CampaignID         string
	Email              string
	FirstName          string
	LastName           string
	Company            string
	Title              string
	Industry           string
	CompanyURL         string
	CompanyDescription string
	PainPoints         string // comma-separated
	ResearchNotes      string
	Score              int
	ScoreReasons       string // comma-separated
	SourceURL          string
}

// ProspectAdd enrolls a qualified lead into a campaign's funnel.
func (p *Prospector) ProspectAdd(input AddInput) (string, error) {
	campaign, ok := p.store.GetCampaign(input.CampaignID)
	if !ok {
		return fmt.Sprintf("Error: Campaign '%s' not found.", input.CampaignID), nil
	}

	if existing, ok := p.store.GetLeadByEmail(input.Email); ok {
		return fmt.Sprintf("Lead already exists: %s (%s)", existing.ID, existing.Email), nil
	}

	score := input.Score
	if score == 0 {
		score = 50
	}

	lead := newLead()
	lead.LeadType = LeadType(campaign.CampaignType)
	lead.Stage = StageDiscovered
	if score >= 60 {
		lead.Stage = StageQualified
	}
	lead.Email = input.Email
	lead.FirstName = input.FirstName
	lead.LastName = input.LastName
	lead.Title = input.Title
	lead.Company = input.Company
	lead.CompanyURL = input.CompanyURL
	lead.CompanyDescription = input.CompanyDescription
	lead.Industry = input.Industry
	lead.Score = score
	lead.ScoreReasons = splitList(input.ScoreReasons, ",")
	lead.ResearchNotes = input.ResearchNotes
	lead.PainPoints = splitList(input.PainPoints, ",")
	lead.CampaignID = input.CampaignID
	lead.Source = "prospecting"
	lead.SourceURL = input.SourceURL

	if err := p.store.SaveLead(&lead); err != nil {
		return "", fmt.Errorf("save lead: %w", err)
	}

	campaign.LeadsDiscovered++
	if lead.Stage == StageQualified {
		campaign.LeadsQualified++
	}
	if err := p.store.SaveCampaign(campaign); err != nil {
		return "", fmt.Errorf("save campaign: %w", err)
	}

	return fmt.Sprintf("Lead added: %s %s (%s)\n  Company: %s\n  Score: %d/100\n  Stage: %s\n  ID: %s",
		lead.FirstName, lead.LastName, lead.Email, lead.Company, lead.Score, lead.Stage, lead.ID), nil
}
