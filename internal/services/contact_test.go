package services

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"jira-skill/internal/config"
	"jira-skill/internal/models"
	"jira-skill/internal/speech"
)

func TestContactInfo(t *testing.T) {
	tests := []struct {
		name    string
		support config.SupportConfig
		want    string
		display bool
	}{
		{
			name:    "telephone and email",
			support: config.SupportConfig{Telephone: "555-0100", Email: "help@ex.io"},
			want:    "You may reach the service desk staff by telephone at 555-0100 or by email at h e l p at e x dot i o.",
			display: true,
		},
		{
			name:    "telephone only",
			support: config.SupportConfig{Telephone: " 555-0100 "},
			want:    "You may reach the service desk staff by telephone at 555-0100.",
			display: true,
		},
		{
			name:    "email only",
			support: config.SupportConfig{Email: "it@ex.io"},
			want:    "You may reach the service desk staff by email at i t at e x dot i o.",
		},
		{
			name: "nothing configured",
			want: "I do not have contact information for the service desk staff.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{Support: tt.support}
			conv := speech.NewScript()

			if err := newTestSkill().Handle(context.Background(), models.ContactInfoIntent, newTestSession(cfg), conv); err != nil {
				t.Fatalf("Handle: %v", err)
			}
			if got := conv.Speech(); len(got) != 1 || got[0] != tt.want {
				t.Errorf("speech = %q, want %q", got, tt.want)
			}
			display := conv.Display()
			if tt.display != (len(display) == 1) {
				t.Errorf("display = %q", display)
			}
			if tt.display && display[0] != "555-0100" {
				t.Errorf("display = %q", display[0])
			}
		})
	}
}

func TestContactInfoHoldsDisplay(t *testing.T) {
	cfg := &config.Config{
		Support: config.SupportConfig{Telephone: "555-0100"},
		Display: config.DisplayConfig{SecondsPerLetter: 0.5, LettersPerScreen: 2},
	}
	k := newTestSkill()
	var held time.Duration
	k.sleep = func(_ context.Context, d time.Duration) error {
		held = d
		return nil
	}

	if err := k.Handle(context.Background(), models.ContactInfoIntent, newTestSession(cfg), speech.NewScript()); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if held != 5*time.Second {
		t.Errorf("held display for %v, want 5s", held)
	}
}

func TestContactInfoCancelled(t *testing.T) {
	cfg := &config.Config{
		Support: config.SupportConfig{Telephone: "555-0100"},
		Display: config.DisplayConfig{SecondsPerLetter: 1, LettersPerScreen: 1},
	}
	k := NewSkill(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := k.Handle(ctx, models.ContactInfoIntent, newTestSession(cfg), speech.NewScript())
	if err == nil {
		t.Fatal("expected cancellation error")
	}
}
