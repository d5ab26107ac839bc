package outreach

import (
	"fmt"
)

// JobScheduler is the narrow slice of timer.Scheduler the orchestrator
// needs: enrolling and tearing down its four recurring outreach jobs
// without depending on the scheduler's full persistence/tick machinery.
type JobScheduler interface {
	AddJob(schedule, query, channel, recipient string) (id string, err error)
	RemoveJob(id string) bool
	ExistingQueries() map[string]bool
}

const (
	inboxCheckSchedule = "every 15m"
	followUpSchedule   = "every 1h"
	prospectSchedule   = "every 6h"
	sendQueueSchedule  = "every 30m"
)

// outreachJob pairs a recurring schedule with the natural-language
// instruction the scheduler hands to a fresh agent on each run.
type outreachJob struct {
	schedule string
	query    string
}

func standingJobs() []outreachJob {
	return []outreachJob{
		{inboxCheckSchedule,
			"Check the outreach inbox for new replies using outreach_check_inbox. " +
				"If there are replies that need responses, use outreach_compose with email_type='reply' " +
				"for each lead, then outreach_send to respond."},
		{followUpSchedule,
			"Check for outreach leads due for follow-up using outreach_follow_ups_due. " +
				"For each lead due, use outreach_compose with email_type='follow_up', " +
				"then outreach_send to deliver the follow-up."},
		{prospectSchedule,
			"Run outreach_prospect_auto for all active campaigns. " +
				"Search for new leads, qualify them, and add qualified ones."},
		{sendQueueSchedule,
			"Check for qualified outreach leads using outreach_send_queue. " +
				"For each one, use outreach_compose then outreach_send for the initial email."},
	}
}

// Orchestrator activates and pauses campaigns, keeping the scheduler's
// standing outreach jobs enrolled for as long as any campaign is active.
type Orchestrator struct {
	store     *Store
	scheduler JobScheduler
	jobIDs    []string
}

// NewOrchestrator builds an Orchestrator. scheduler may be nil, in which
// case campaigns still activate/pause but no jobs run automatically.
func NewOrchestrator(store *Store, scheduler JobScheduler) *Orchestrator {
	return &Orchestrator{store: store, scheduler: scheduler}
}

// StartCampaign marks a campaign active and ensures the standing outreach
// jobs are scheduled.
func (o *Orchestrator) StartCampaign(campaignID string) string {
	campaign, ok := o.store.GetCampaign(campaignID)
	if !ok {
		return fmt.Sprintf("Error: Campaign '%s' not found.", campaignID)
	}
	if campaign.Status == CampaignActive {
		return fmt.Sprintf("Campaign '%s' is already active.", campaign.Name)
	}

	campaign.Status = CampaignActive
	o.store.SaveCampaign(campaign)
	o.ensureJobsScheduled()

	return fmt.Sprintf(
		"Campaign '%s' activated.\nAutonomous jobs scheduled:\n"+
			"  - Inbox check: %s\n  - Follow-up scan: %s\n  - Prospecting: %s\n  - Send queue: %s",
		campaign.Name, inboxCheckSchedule, followUpSchedule, prospectSchedule, sendQueueSchedule,
	)
}

// PauseCampaign marks a campaign paused, tearing down the standing jobs if
// no other campaign remains active.
func (o *Orchestrator) PauseCampaign(campaignID string) string {
	campaign, ok := o.store.GetCampaign(campaignID)
	if !ok {
		return fmt.Sprintf("Error: Campaign '%s' not found.", campaignID)
	}

	campaign.Status = CampaignPaused
	o.store.SaveCampaign(campaign)

	if len(o.store.ListCampaigns(CampaignActive)) == 0 {
		o.removeAllJobs()
	}

	return fmt.Sprintf("Campaign '%s' paused.", campaign.Name)
}

func (o *Orchestrator) ensureJobsScheduled() {
	if o.scheduler == nil {
		return
	}
	existing := o.scheduler.ExistingQueries()
	for _, job := range standingJobs() {
		if existing[job.query] {
			continue
		}
		id, err := o.scheduler.AddJob(job.schedule, job.query, "", "")
		if err != nil {
			continue
		}
		o.jobIDs = append(o.jobIDs, id)
	}
}

func (o *Orchestrator) removeAllJobs() {
	if o.scheduler == nil {
		return
	}
	for _, id := range o.jobIDs {
		o.scheduler.RemoveJob(id)
	}
	o.jobIDs = nil
}
