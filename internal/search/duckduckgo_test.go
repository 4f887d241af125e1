package search

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const resultsPage = `<!DOCTYPE html>
<html><body>
<div class="results">
  <div class="result results_links result--ad">
    <a class="result__a" href="#">Buy toys now</a>
    <a class="result__snippet">Sponsored</a>
  </div>
  <div class="result results_links">
    <h2><a class="result__a" href="#">Kangaroo - Wikipedia</a></h2>
    <a class="result__snippet">Kangaroos are <b>marsupials</b> from
      Australia.</a>
  </div>
  <div class="result results_links">
    <h2><a class="result__a" href="#">Only a title</a></h2>
  </div>
  <div class="result results_links">
    <a class="result__snippet">Joeys live in pouches.</a>
  </div>
</div>
</body></html>`

func TestDuckDuckGo_ParsesResults(t *testing.T) {
	var gotQuery, gotSafe, gotRegion string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		r.ParseForm()
		gotQuery = r.PostForm.Get("q")
		gotSafe = r.PostForm.Get("kp")
		gotRegion = r.PostForm.Get("kl")
		w.Write([]byte(resultsPage))
	}))
	defer srv.Close()

	ddg := NewDuckDuckGo(time.Second).WithEndpoint(srv.URL)
	got, err := ddg.Search(context.Background(), "kangaroos for kids", Options{MaxResults: 3, SafeSearch: "on"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"Kangaroos are marsupials from Australia.", "Only a title", "Joeys live in pouches."}
	if len(got) != len(want) {
		t.Fatalf("expected %d results, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("result %d: expected %q, got %q", i, want[i], got[i])
		}
	}
	if gotQuery != "kangaroos for kids" {
		t.Errorf("unexpected query %q", gotQuery)
	}
	if gotSafe != "1" {
		t.Errorf("expected strict safesearch, got %q", gotSafe)
	}
	if gotRegion != "wt-wt" {
		t.Errorf("expected default region, got %q", gotRegion)
	}
}

func TestDuckDuckGo_RespectsLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(resultsPage))
	}))
	defer srv.Close()

	got, err := NewDuckDuckGo(time.Second).WithEndpoint(srv.URL).Search(context.Background(), "q", Options{MaxResults: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("expected 1 result, got %v", got)
	}
}

func TestDuckDuckGo_RateLimited(t *testing.T) {
	for _, code := range []int{http.StatusAccepted, http.StatusTooManyRequests} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
		}))
		_, err := NewDuckDuckGo(time.Second).WithEndpoint(srv.URL).Search(context.Background(), "q", Options{})
		srv.Close()
		if !errors.Is(err, ErrRateLimited) {
			t.Errorf("status %d: expected ErrRateLimited, got %v", code, err)
		}
	}
}

func TestDuckDuckGo_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewDuckDuckGo(time.Second).WithEndpoint(srv.URL).Search(context.Background(), "q", Options{})
	if err == nil || errors.Is(err, ErrRateLimited) {
		t.Errorf("expected plain error, got %v", err)
	}
}

func TestSafeSearchParam(t *testing.T) {
	cases := map[string]string{"on": "1", "": "1", "moderate": "-1", "OFF": "-2"}
	for in, want := range cases {
		if got := safeSearchParam(in); got != want {
			t.Errorf("safeSearchParam(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDuckDuckGo_IncludeTitles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(resultsPage))
	}))
	defer srv.Close()

	got, err := NewDuckDuckGo(time.Second).WithEndpoint(srv.URL).Search(context.Background(), "q", Options{MaxResults: 2, IncludeTitles: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %v", got)
	}
	if got[0] != "Kangaroo - Wikipedia\nKangaroos are marsupials from Australia." {
		t.Errorf("unexpected titled snippet %q", got[0])
	}
	if got[1] != "Only a title" {
		t.Errorf("title-only result must not repeat the title, got %q", got[1])
	}
}

func TestDuckDuckGo_News(t *testing.T) {
	var gotVQD, gotRegion, gotTime string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			if r.URL.Query().Get("q") != "gold prices" {
				t.Errorf("unexpected token query %q", r.URL.RawQuery)
			}
			w.Write([]byte(`<html><script>vqd="4-12345678901234567890";</script></html>`))
		case "/news.js":
			q := r.URL.Query()
			gotVQD, gotRegion, gotTime = q.Get("vqd"), q.Get("l"), q.Get("df")
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"results":[
				{"title":"Gold hits record","excerpt":"Prices climbed overnight.","url":"https://example.com/1"},
				{"title":"Headline only","excerpt":""},
				{"title":"Silver dips","excerpt":"Traders sold."}
			]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	ddg := NewDuckDuckGo(time.Second).WithSite(srv.URL + "/")
	got, err := ddg.News(context.Background(), "gold prices", Options{MaxResults: 2, Region: "us-en", TimeLimit: "w", IncludeTitles: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"Gold hits record\nPrices climbed overnight.", "Headline only"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("expected %q, got %q", want, got)
	}
	if gotVQD != "4-12345678901234567890" || gotRegion != "us-en" || gotTime != "w" {
		t.Errorf("unexpected news params vqd=%q l=%q df=%q", gotVQD, gotRegion, gotTime)
	}
}

func TestDuckDuckGo_NewsErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		limited bool
	}{
		{"missing token", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("<html></html>")) }, false},
		{"rate limited", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusForbidden) }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := NewDuckDuckGo(time.Second).WithSite(srv.URL).News(context.Background(), "q", Options{})
			if err == nil {
				t.Fatal("expected error")
			}
			if errors.Is(err, ErrRateLimited) != tt.limited {
				t.Errorf("unexpected error %v", err)
			}
		})
	}
}
