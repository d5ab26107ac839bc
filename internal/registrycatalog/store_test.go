package registrycatalog

import (
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	return store
}

func TestAddAndGet(t *testing.T) {
	store := newTestStore(t)

	entry, err := store.Add(AddInput{
		Name:        "Twilio",
		URL:         "https://api.twilio.com/",
		Description: "SMS and voice messaging",
		Category:    "Communication",
		Tags:        "sms, voice, messaging",
		AuthType:    "bearer",
	})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if entry.Name != "twilio" {
		t.Errorf("Name = %q, want twilio", entry.Name)
	}
	if entry.URL != "https://api.twilio.com" {
		t.Errorf("URL = %q, want trailing slash stripped", entry.URL)
	}
	if len(entry.Tags) != 3 {
		t.Errorf("Tags = %v, want 3 entries", entry.Tags)
	}

	got, _, ok := store.Get("twilio")
	if !ok || got.Name != "twilio" {
		t.Fatalf("Get() = %+v, %v", got, ok)
	}
}

func TestAddRejectsDuplicateKey(t *testing.T) {
	store := newTestStore(t)
	input := AddInput{Name: "stripe", URL: "https://api.stripe.com", Description: "Payments", Category: "payments", Tags: "payments"}

	if _, err := store.Add(input); err != nil {
		t.Fatalf("first Add() error = %v", err)
	}
	if _, err := store.Add(input); err == nil {
		t.Fatalf("expected error for duplicate key")
	}
}

func TestAddRejectsInvalidAuthType(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Add(AddInput{Name: "x", URL: "https://x.test", Description: "d", Category: "c", Tags: "t", AuthType: "oauth2"})
	if err == nil {
		t.Fatalf("expected error for invalid auth_type")
	}
}

func TestGetSuggestsNearMatches(t *testing.T) {
	store := newTestStore(t)
	store.Add(AddInput{Name: "twilio-sms", URL: "https://x.test", Description: "d", Category: "c", Tags: "t"})

	_, suggestions, ok := store.Get("twilio")
	if ok {
		t.Fatalf("expected exact lookup to miss")
	}
	if len(suggestions) != 1 || suggestions[0] != "twilio-sms" {
		t.Errorf("suggestions = %v, want [twilio-sms]", suggestions)
	}
}

func TestRemove(t *testing.T) {
	store := newTestStore(t)
	store.Add(AddInput{Name: "twilio", URL: "https://x.test", Description: "d", Category: "c", Tags: "t"})

	if _, err := store.Remove("twilio"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, _, ok := store.Get("twilio"); ok {
		t.Fatalf("expected entry to be gone after Remove()")
	}
}

func TestRemoveUnknownErrors(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Remove("nonexistent"); err == nil {
		t.Fatalf("expected error removing an unknown entry")
	}
}

func TestRecordUsageAccumulatesStats(t *testing.T) {
	store := newTestStore(t)
	store.Add(AddInput{Name: "twilio", URL: "https://x.test", Description: "d", Category: "c", Tags: "t"})

	if err := store.RecordUsage("twilio", true, 100); err != nil {
		t.Fatalf("RecordUsage() error = %v", err)
	}
	if err := store.RecordUsage("twilio", false, 300); err != nil {
		t.Fatalf("RecordUsage() error = %v", err)
	}

	entry, _, _ := store.Get("twilio")
	if entry.Stats.TotalCalls != 2 {
		t.Errorf("TotalCalls = %d, want 2", entry.Stats.TotalCalls)
	}
	if entry.Stats.SuccessRate == nil || *entry.Stats.SuccessRate != 0.5 {
		t.Errorf("SuccessRate = %v, want 0.5", entry.Stats.SuccessRate)
	}
	if entry.Stats.AvgLatencyMs == nil || *entry.Stats.AvgLatencyMs != 100 {
		t.Errorf("AvgLatencyMs = %v, want 100 (only successful calls count)", entry.Stats.AvgLatencyMs)
	}
}

func TestSearchRanksByRelevance(t *testing.T) {
	store := newTestStore(t)
	store.Add(AddInput{Name: "twilio", URL: "https://x.test", Description: "Send SMS and voice messages", Category: "communication", Tags: "sms, voice"})
	store.Add(AddInput{Name: "stripe", URL: "https://y.test", Description: "Payment processing", Category: "payments", Tags: "payments, billing"})

	results := store.Search("sms", "")
	if len(results) != 1 || results[0].Entry.Name != "twilio" {
		t.Fatalf("Search(sms) = %+v, want only twilio", results)
	}
}

func TestSearchCategoryFilterExcludesOthers(t *testing.T) {
	store := newTestStore(t)
	store.Add(AddInput{Name: "twilio", URL: "https://x.test", Description: "Messaging", Category: "communication", Tags: "sms"})
	store.Add(AddInput{Name: "stripe", URL: "https://y.test", Description: "Payments", Category: "payments", Tags: "payments"})

	results := store.Search("", "payments")
	if len(results) != 1 || results[0].Entry.Name != "stripe" {
		t.Fatalf("Search(category=payments) = %+v, want only stripe", results)
	}
}

func TestPersistenceReloadsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir, nil)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	if _, err := store.Add(AddInput{Name: "twilio", URL: "https://x.test", Description: "d", Category: "c", Tags: "t"}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	reopened, err := NewStore(dir, nil)
	if err != nil {
		t.Fatalf("reopen NewStore() error = %v", err)
	}
	if _, _, ok := reopened.Get("twilio"); !ok {
		t.Fatalf("expected entry to survive reload")
	}
}
