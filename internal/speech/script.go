package speech

import (
	"context"
	"sync"
)

// Script is a Conversation answered from a fixed list of responses. It
// records everything spoken and displayed. The HTTP host replays an intent
// with the answers collected so far; Turn returns only what was said after
// the last consumed answer.
type Script struct {
	mu        sync.Mutex
	responses []string
	next      int
	speech    []string
	display   []string
	turnStart int
	waiting   bool
}

// NewScript creates a Script answering questions with responses, in order.
func NewScript(responses ...string) *Script {
	return &Script{responses: responses}
}

// Speak records a sentence.
func (s *Script) Speak(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.speech = append(s.speech, text)
}

// ShowText records a display string.
func (s *Script) ShowText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.display = append(s.display, text)
}

// ResetDisplay is a no-op; the display log is kept.
func (s *Script) ResetDisplay() {}

// Ask speaks the prompt and consumes the next response.
func (s *Script) Ask(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.speech = append(s.speech, prompt)
	if s.next >= len(s.responses) {
		s.waiting = true
		return "", ErrAwaitingResponse
	}
	answer := s.responses[s.next]
	s.next++
	s.turnStart = len(s.speech)
	return answer, nil
}

// Speech returns every sentence spoken, prompts included.
func (s *Script) Speech() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.speech...)
}

// Display returns every string shown on the display.
func (s *Script) Display() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.display...)
}

// Turn returns the sentences spoken since the last consumed answer.
func (s *Script) Turn() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.speech[s.turnStart:]...)
}

// Waiting reports whether a question went unanswered.
func (s *Script) Waiting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.waiting
}
