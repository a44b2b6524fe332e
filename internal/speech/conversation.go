// Package speech holds the host-runtime side of an intent invocation:
// speaking sentences, asking follow-up questions, and driving the small
// attached display.
package speech

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrNoResponse means the user gave no answer to a question.
	ErrNoResponse = errors.New("no response from user")
	// ErrAwaitingResponse means the answer will arrive with the next
	// invocation; the handler should end the turn quietly.
	ErrAwaitingResponse = errors.New("awaiting response in next turn")
	// ErrInvalidResponse means every attempt failed validation.
	ErrInvalidResponse = errors.New("response failed validation")
)

// Speaker says sentences to the user.
type Speaker interface {
	Speak(text string)
}

// Display shows short strings on the attached display.
type Display interface {
	ShowText(text string)
	ResetDisplay()
}

// Conversation is everything a handler can do with the user.
type Conversation interface {
	Speaker
	Display
	// Ask speaks the prompt and returns the user's answer.
	Ask(ctx context.Context, prompt string) (string, error)
}

// Prompt describes a validated question.
type Prompt struct {
	Text     string
	Validate func(answer string) bool
	// OnFail is spoken after an invalid answer, before asking again.
	OnFail  string
	Retries int
}

// GetResponse asks p.Text and re-asks up to p.Retries times while the
// answer fails validation. The answer is returned trimmed.
func GetResponse(ctx context.Context, conv Conversation, p Prompt) (string, error) {
	prompt := p.Text
	for attempt := 0; attempt <= p.Retries; attempt++ {
		answer, err := conv.Ask(ctx, prompt)
		if err != nil {
			return "", err
		}
		if p.Validate == nil || p.Validate(answer) {
			return strings.TrimSpace(answer), nil
		}
		if attempt == p.Retries {
			break
		}
		if p.OnFail != "" {
			conv.Speak(p.OnFail)
		}
	}
	return "", ErrInvalidResponse
}
