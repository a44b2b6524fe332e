package services

import (
	"context"
	"strings"

	"jira-skill/internal/speech"
)

func (k *Skill) handleContactInfo(ctx context.Context, s *Session, conv speech.Conversation) error {
	return k.speakContactInfo(ctx, s, conv)
}

// speakContactInfo reads out how to reach the service desk staff and shows
// the telephone number on the display long enough to be read.
func (k *Skill) speakContactInfo(ctx context.Context, s *Session, conv speech.Conversation) error {
	support := s.Settings().Support
	telephone := strings.TrimSpace(support.Telephone)
	email := SpellEmail(support.Email)

	switch {
	case telephone != "" && email != "":
		conv.Speak("You may reach the service desk staff by telephone at " + telephone +
			" or by email at " + email + ".")
	case telephone != "":
		conv.Speak("You may reach the service desk staff by telephone at " + telephone + ".")
	case email != "":
		conv.Speak("You may reach the service desk staff by email at " + email + ".")
	default:
		conv.Speak("I do not have contact information for the service desk staff.")
		return nil
	}

	if telephone == "" {
		return nil
	}
	return k.hold(ctx, s, conv, telephone)
}

// hold shows text on the display for as long as it takes to read, then
// resets the display.
func (k *Skill) hold(ctx context.Context, s *Session, conv speech.Conversation, text string) error {
	conv.ShowText(text)
	defer conv.ResetDisplay()
	return k.sleep(ctx, s.Settings().Display.HoldDuration(len(text)))
}
