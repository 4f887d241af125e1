package chat

import (
	"context"
	"testing"
	"time"

	"github.com/stxkxs/bluebot/internal/provider"
	"github.com/stxkxs/bluebot/internal/testutil"
)

func TestSummarize_Empty(t *testing.T) {
	p := &testutil.MockProvider{}
	summary, ok := NewSummarizer(p, "", nil).Summarize(context.Background(), nil)
	if ok || summary != "" {
		t.Errorf("expected (\"\", false), got (%q, %v)", summary, ok)
	}
	if p.CallCount() != 0 {
		t.Error("expected no model call")
	}
}

func TestSummarize_Prompt(t *testing.T) {
	p := (&testutil.MockProvider{}).Replies("A chat about space.")
	history := []HistoryEntry{
		Pair("hi", "hello"),
		Record(provider.RoleUser, "what is the moon?"),
		Record("SYSTEM", "ignored by the model but kept in the transcript"),
	}

	summary, ok := NewSummarizer(p, "m", nil).Summarize(context.Background(), history)
	if !ok || summary != "A chat about space." {
		t.Errorf("unexpected result (%q, %v)", summary, ok)
	}

	req := p.Call(0)
	if req.Model != "m" || len(req.Messages) != 2 {
		t.Fatalf("unexpected request %+v", req)
	}
	if req.Messages[0].Role != provider.RoleSystem || req.Messages[0].Content != DefaultSummarizePrompt {
		t.Errorf("unexpected system message %+v", req.Messages[0])
	}
	want := "Here's the conversation to summarize:\n\n" +
		"User: hi\nAssistant: hello\n" +
		"User: what is the moon?\n" +
		"System: ignored by the model but kept in the transcript\n"
	if req.Messages[1].Content != want {
		t.Errorf("unexpected user message:\n%q\nwant:\n%q", req.Messages[1].Content, want)
	}
}

func TestSummarize_FailureYieldsPlaceholder(t *testing.T) {
	p := &testutil.MockProvider{ShouldFail: true}
	at := time.Date(2024, 3, 9, 14, 5, 59, 0, time.Local)
	s := NewSummarizer(p, "", nil).WithClock(func() time.Time { return at })

	summary, ok := s.Summarize(context.Background(), []HistoryEntry{Pair("a", "b")})
	if !ok {
		t.Fatal("expected a placeholder summary")
	}
	if summary != "Conversation on 2024-03-09 14:05 (failed to summarize)" {
		t.Errorf("unexpected placeholder %q", summary)
	}
}

func TestSummarize_WithPrompt(t *testing.T) {
	p := (&testutil.MockProvider{}).Replies("ok")
	s := NewSummarizer(p, "", nil).WithPrompt("Keep it short.").WithPrompt("")

	s.Summarize(context.Background(), []HistoryEntry{Pair("a", "b")})
	if got := p.Call(0).Messages[0].Content; got != "Keep it short." {
		t.Errorf("unexpected system prompt %q", got)
	}
}
