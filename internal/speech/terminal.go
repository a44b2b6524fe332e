package speech

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"

	"jira-skill/internal/helpers"
)

// Terminal is a Conversation on a console. Questions are answered first
// from preset answers, then from the input reader.
type Terminal struct {
	in      *bufio.Reader
	out     io.Writer
	preset  []string
	speech  []string
	display []string
}

// NewTerminal creates a console conversation.
func NewTerminal(in io.Reader, out io.Writer, preset ...string) *Terminal {
	return &Terminal{in: bufio.NewReader(in), out: out, preset: preset}
}

// Speak prints a sentence.
func (t *Terminal) Speak(text string) {
	t.speech = append(t.speech, text)
	helpers.PrintSpeech(t.out, text)
}

// ShowText prints a display line.
func (t *Terminal) ShowText(text string) {
	t.display = append(t.display, text)
	helpers.PrintDisplay(t.out, text)
}

// ResetDisplay is a no-op on a console.
func (t *Terminal) ResetDisplay() {}

// Ask prints the prompt and reads one line.
func (t *Terminal) Ask(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	t.speech = append(t.speech, prompt)
	helpers.PrintPrompt(t.out, prompt)

	if len(t.preset) > 0 {
		answer := t.preset[0]
		t.preset = t.preset[1:]
		io.WriteString(t.out, answer+"\n")
		return answer, nil
	}

	line, err := t.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", ErrNoResponse
		}
		return "", err
	}
	line = strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(line) == "" {
		return "", ErrNoResponse
	}
	return line, nil
}

// Drain returns and clears what was spoken and displayed since the last call.
func (t *Terminal) Drain() (speech, display []string) {
	speech, display = t.speech, t.display
	t.speech, t.display = nil, nil
	return speech, display
}
