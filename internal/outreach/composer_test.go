package outreach

import (
	"context"
	"strings"
	"testing"
)

func seedLead(t *testing.T, store *Store, campaign *Campaign) *Lead {
	t.Helper()
	ld := newLead()
	ld.Email = "lead@example.com"
	ld.FirstName = "Ada"
	ld.LastName = "Lovelace"
	ld.CampaignID = campaign.ID
	ld.Stage = StageQualified
	if err := store.SaveLead(&ld); err != nil {
		t.Fatalf("SaveLead() error = %v", err)
	}
	return &ld
}

func TestComposeIncludesLeadAndCampaignDetails(t *testing.T) {
	store := newTestStore(t)
	campaign := seedCampaign(t, store)
	campaign.ValueProposition = "We cut onboarding time in half."
	store.SaveCampaign(campaign)
	lead := seedLead(t, store, campaign)

	c := NewComposer(store, nil)
	got, err := c.Compose(lead.ID, "initial", "")
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	if !strings.Contains(got, "Ada") || !strings.Contains(got, "We cut onboarding time in half.") {
		t.Errorf("Compose() missing lead or pitch context: %q", got)
	}
	if !strings.Contains(got, "initial cold outreach email") {
		t.Errorf("Compose() missing initial-email instruction: %q", got)
	}
}

func TestComposeUnknownLead(t *testing.T) {
	store := newTestStore(t)
	c := NewComposer(store, nil)
	got, err := c.Compose("lead-missing", "initial", "")
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	if !strings.Contains(got, "not found") {
		t.Errorf("Compose() = %q, want not found message", got)
	}
}

func TestSendWithoutSenderConfigured(t *testing.T) {
	store := newTestStore(t)
	campaign := seedCampaign(t, store)
	lead := seedLead(t, store, campaign)

	c := NewComposer(store, nil)
	got, err := c.Send(context.Background(), lead.ID, "Hello", "body")
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if !strings.Contains(got, "not configured") {
		t.Errorf("Send() = %q, want not-configured message", got)
	}
}

func TestSendOptedOutLeadRefused(t *testing.T) {
	store := newTestStore(t)
	campaign := seedCampaign(t, store)
	lead := seedLead(t, store, campaign)
	lead.OptedOut = true
	store.SaveLead(lead)

	sender := &stubSender{ok: true}
	c := NewComposer(store, sender)
	got, err := c.Send(context.Background(), lead.ID, "Hello", "body")
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if !strings.Contains(got, "opted out") {
		t.Errorf("Send() = %q, want opted-out refusal", got)
	}
	if len(sender.sent) != 0 {
		t.Errorf("sender.sent = %d, want 0 sends for an opted-out lead", len(sender.sent))
	}
}

func TestSendSuccessAdvancesStageAndSchedulesFollowUp(t *testing.T) {
	store := newTestStore(t)
	campaign := seedCampaign(t, store)
	campaign.FollowUpDays = []int{3, 7, 14}
	store.SaveCampaign(campaign)
	lead := seedLead(t, store, campaign)

	sender := &stubSender{ok: true}
	c := NewComposer(store, sender)
	got, err := c.Send(context.Background(), lead.ID, "Hello", "body")
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if !strings.Contains(got, "sent") {
		t.Errorf("Send() = %q, want confirmation", got)
	}
	if len(sender.sent) != 1 || sender.sent[0].recipientID != lead.Email {
		t.Fatalf("sender.sent = %+v, want one send to %s", sender.sent, lead.Email)
	}

	reloaded, _ := store.GetLead(lead.ID)
	if reloaded.Stage != StageContacted {
		t.Errorf("Stage = %s, want contacted", reloaded.Stage)
	}
	if reloaded.EmailsSent != 1 {
		t.Errorf("EmailsSent = %d, want 1", reloaded.EmailsSent)
	}
	if reloaded.NextFollowUp.IsZero() {
		t.Errorf("NextFollowUp not scheduled")
	}

	conv, ok := store.GetConversation(lead.ID)
	if !ok || len(conv.Messages) != 1 {
		t.Fatalf("GetConversation() = %+v, %v, want one message", conv, ok)
	}
}

func TestSendBounceMarksLeadBounced(t *testing.T) {
	store := newTestStore(t)
	campaign := seedCampaign(t, store)
	lead := seedLead(t, store, campaign)

	sender := &stubSender{ok: false, errText: "mailbox rejected: bounce"}
	c := NewComposer(store, sender)
	if _, err := c.Send(context.Background(), lead.ID, "Hello", "body"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	reloaded, _ := store.GetLead(lead.ID)
	if reloaded.Stage != StageBounced {
		t.Errorf("Stage = %s, want bounced", reloaded.Stage)
	}

	reloadedCampaign, _ := store.GetCampaign(campaign.ID)
	if reloadedCampaign.Bounced != 1 {
		t.Errorf("Bounced = %d, want 1", reloadedCampaign.Bounced)
	}
}

func TestSendRespectsGlobalDailyLimit(t *testing.T) {
	store := newTestStore(t)
	campaign := seedCampaign(t, store)
	lead := seedLead(t, store, campaign)

	for i := 0; i < 500; i++ {
		store.IncrementSent()
	}

	sender := &stubSender{ok: true}
	c := NewComposer(store, sender)
	got, err := c.Send(context.Background(), lead.ID, "Hello", "body")
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if !strings.Contains(got, "limit reached") {
		t.Errorf("Send() = %q, want limit-reached message", got)
	}
	if len(sender.sent) != 0 {
		t.Errorf("sender.sent = %d, want 0 sends once the daily limit is hit", len(sender.sent))
	}
}
