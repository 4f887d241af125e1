package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stxkxs/bluebot/internal/config"
	"github.com/stxkxs/bluebot/internal/search"
	"github.com/stxkxs/bluebot/internal/testutil"
)

func testPersona() *config.PersonaConfig {
	return testutil.TestPersona()
}

func TestNewsAnalyzer_Analyze(t *testing.T) {
	p := (&testutil.MockProvider{}).Replies("Tonight, the nation wants to know about gold!")
	s := &testutil.MockSearcher{Results: []string{"Gold rises\nPrices up 2%.", "Silver dips\nPrices down."}}

	out, err := NewNewsAnalyzer(p, s, "", nil).Analyze(context.Background(), "Write in the style of Arnab", "gold prices")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "Tonight, the nation wants to know about gold!" {
		t.Errorf("unexpected analysis %q", out)
	}

	if s.Queries[0] != "gold prices" || !s.Opts[0].IncludeTitles {
		t.Errorf("unexpected search call %q %+v", s.Queries[0], s.Opts[0])
	}

	prompt := p.Call(0).Messages[0].Content
	if !strings.HasPrefix(prompt, "Give a detailed news analysis in this style: Write in the style of Arnab.") {
		t.Errorf("unexpected prompt %q", prompt)
	}
	if !strings.Contains(prompt, "Gold rises\nPrices up 2%.\n\nSilver dips") {
		t.Errorf("news items missing from prompt %q", prompt)
	}
}

func TestNewsAnalyzer_NoResults(t *testing.T) {
	p := &testutil.MockProvider{}
	out, err := NewNewsAnalyzer(p, &testutil.MockSearcher{}, "", nil).Analyze(context.Background(), "", "")
	if err != nil {
		t.Fatal(err)
	}
	if out != NoNewsText {
		t.Errorf("expected %q, got %q", NoNewsText, out)
	}
	if p.CallCount() != 0 {
		t.Error("no news must not call the model")
	}
}

func TestNewsAnalyzer_SearchErrors(t *testing.T) {
	p := &testutil.MockProvider{}

	out, err := NewNewsAnalyzer(p, &testutil.MockSearcher{Err: search.ErrRateLimited}, "", nil).Analyze(context.Background(), "", "x")
	if err != nil || !strings.HasPrefix(out, "Rate limit exceeded") {
		t.Errorf("unexpected rate limit result (%q, %v)", out, err)
	}

	out, err = NewNewsAnalyzer(p, &testutil.MockSearcher{Err: errors.New("dns")}, "", nil).Analyze(context.Background(), "", "x")
	if err != nil || out != "An error occurred: dns" {
		t.Errorf("unexpected error result (%q, %v)", out, err)
	}
}

func TestNewsAnalyzer_ModelError(t *testing.T) {
	p := &testutil.MockProvider{ShouldFail: true}
	s := &testutil.MockSearcher{Results: []string{"item"}}

	if _, err := NewNewsAnalyzer(p, s, "", nil).Analyze(context.Background(), "", "x"); err == nil {
		t.Error("expected model error")
	}
}

type newsOnlySearcher struct {
	testutil.MockSearcher
	newsQueries []string
}

func (s *newsOnlySearcher) News(ctx context.Context, query string, opts search.Options) ([]string, error) {
	s.newsQueries = append(s.newsQueries, query)
	return []string{"Gold hits record\nPrices climbed overnight."}, nil
}

func TestNewsAnalyzer_PrefersNewsVertical(t *testing.T) {
	p := (&testutil.MockProvider{}).Replies("Breaking!")
	s := &newsOnlySearcher{}

	if _, err := NewNewsAnalyzer(p, s, "", nil).Analyze(context.Background(), "", "gold"); err != nil {
		t.Fatal(err)
	}
	if len(s.newsQueries) != 1 || s.SearchCount() != 0 {
		t.Errorf("expected one news query and no web search, got %v / %d", s.newsQueries, s.SearchCount())
	}
	if !strings.Contains(p.Call(0).Messages[0].Content, "Gold hits record\nPrices climbed overnight.") {
		t.Errorf("news item missing from prompt %q", p.Call(0).Messages[0].Content)
	}
}
