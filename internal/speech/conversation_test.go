package speech

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
)

var digits = regexp.MustCompile(`^[0-9]+$`)

func numberPrompt(retries int) Prompt {
	return Prompt{
		Text:     "What is the issue number?",
		Validate: digits.MatchString,
		OnFail:   "Numbers only, please.",
		Retries:  retries,
	}
}

func TestGetResponseRetriesUntilValid(t *testing.T) {
	conv := NewScript("abc", "x1", " 42 ")

	answer, err := GetResponse(context.Background(), conv, Prompt{
		Text:     "What is the issue number?",
		Validate: func(s string) bool { return digits.MatchString(strings.TrimSpace(s)) },
		OnFail:   "Numbers only, please.",
		Retries:  3,
	})
	if err != nil {
		t.Fatalf("GetResponse: %v", err)
	}
	if answer != "42" {
		t.Errorf("answer = %q", answer)
	}

	want := []string{
		"What is the issue number?",
		"Numbers only, please.",
		"What is the issue number?",
		"Numbers only, please.",
		"What is the issue number?",
	}
	got := conv.Speech()
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("speech = %q", got)
	}
}

func TestGetResponseExhaustsRetries(t *testing.T) {
	conv := NewScript("a", "b", "c")

	_, err := GetResponse(context.Background(), conv, numberPrompt(2))
	if !errors.Is(err, ErrInvalidResponse) {
		t.Fatalf("err = %v, want ErrInvalidResponse", err)
	}
	for _, line := range conv.Speech()[len(conv.Speech())-1:] {
		if line == "Numbers only, please." {
			t.Error("correction spoken after the last attempt")
		}
	}
}

func TestGetResponseNoAnswer(t *testing.T) {
	conv := NewScript()

	_, err := GetResponse(context.Background(), conv, numberPrompt(3))
	if !errors.Is(err, ErrAwaitingResponse) {
		t.Fatalf("err = %v, want ErrAwaitingResponse", err)
	}
	if !conv.Waiting() {
		t.Error("script should be waiting for an answer")
	}
	if turn := conv.Turn(); len(turn) != 1 || turn[0] != "What is the issue number?" {
		t.Errorf("turn = %q", turn)
	}
}

func TestScriptTurnStartsAfterLastAnswer(t *testing.T) {
	conv := NewScript("7")
	conv.Speak("before")
	if _, err := conv.Ask(context.Background(), "question?"); err != nil {
		t.Fatal(err)
	}
	conv.Speak("after")

	if turn := conv.Turn(); len(turn) != 1 || turn[0] != "after" {
		t.Errorf("turn = %q", turn)
	}
}

func TestTerminalPresetThenInput(t *testing.T) {
	var out bytes.Buffer
	term := NewTerminal(strings.NewReader("second\n\n"), &out, "first")
	ctx := context.Background()

	if got, err := term.Ask(ctx, "one?"); err != nil || got != "first" {
		t.Fatalf("Ask 1 = %q, %v", got, err)
	}
	if got, err := term.Ask(ctx, "two?"); err != nil || got != "second" {
		t.Fatalf("Ask 2 = %q, %v", got, err)
	}
	if _, err := term.Ask(ctx, "three?"); !errors.Is(err, ErrNoResponse) {
		t.Fatalf("Ask 3 err = %v, want ErrNoResponse", err)
	}
	if _, err := term.Ask(ctx, "four?"); !errors.Is(err, ErrNoResponse) {
		t.Fatalf("Ask 4 err = %v, want ErrNoResponse at EOF", err)
	}

	term.Speak("hello")
	term.ShowText("555-0100")
	speech, display := term.Drain()
	if len(speech) != 5 || speech[4] != "hello" {
		t.Errorf("speech = %q", speech)
	}
	if len(display) != 1 || display[0] != "555-0100" {
		t.Errorf("display = %q", display)
	}
	if !strings.Contains(out.String(), "hello") || !strings.Contains(out.String(), "555-0100") {
		t.Errorf("output missing lines: %q", out.String())
	}
}
