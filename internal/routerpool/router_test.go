package routerpool

import "testing"

func TestRouterPrefixMutatesTextInPlace(t *testing.T) {
	r, err := New(StrategyPrefix, Rules{
		{Key: "!code ", Name: "coder"},
		{Key: "!safe ", Name: "safe"},
	}, "default")
	if err != nil {
		t.Fatal(err)
	}

	text := "!code fix the bug"
	name := r.Route(RoutableMessage{Text: &text})

	if name != "coder" {
		t.Fatalf("expected 'coder', got %q", name)
	}
	if text != "fix the bug" {
		t.Fatalf("expected prefix stripped in place, got %q", text)
	}
}

func TestRouterEmptyRulesAlwaysDefault(t *testing.T) {
	r, err := New(StrategyChannel, nil, "default")
	if err != nil {
		t.Fatal(err)
	}
	if got := r.Route(RoutableMessage{Channel: "telegram"}); got != "default" {
		t.Fatalf("expected default, got %q", got)
	}
}

func TestRouterContentFirstMatchWins(t *testing.T) {
	r, err := New(StrategyContent, Rules{
		{Key: "^help", Name: "support"},
		{Key: "help", Name: "fallback-help"},
	}, "default")
	if err != nil {
		t.Fatal(err)
	}
	text := "help me please"
	if got := r.Route(RoutableMessage{Text: &text}); got != "support" {
		t.Fatalf("expected first matching rule 'support', got %q", got)
	}
}

func TestRouterInvalidStrategyIsConstructionError(t *testing.T) {
	if _, err := New("bogus", nil, "default"); err == nil {
		t.Fatal("expected construction-time error for invalid strategy")
	}
}
