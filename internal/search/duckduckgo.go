package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const (
	// DefaultDuckDuckGoURL is the no-JavaScript results page.
	DefaultDuckDuckGoURL = "https://html.duckduckgo.com/html/"

	// DefaultDuckDuckGoSite hosts the token page and the news vertical.
	DefaultDuckDuckGoSite = "https://duckduckgo.com"
)

// DuckDuckGo queries DuckDuckGo's HTML endpoint and scrapes the result list.
type DuckDuckGo struct {
	endpoint   string
	site       string
	httpClient *http.Client
	userAgent  string
}

// NewDuckDuckGo creates a client with the given request timeout.
func NewDuckDuckGo(timeout time.Duration) *DuckDuckGo {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &DuckDuckGo{
		endpoint:   DefaultDuckDuckGoURL,
		site:       DefaultDuckDuckGoSite,
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  "Mozilla/5.0 (compatible; bluebot/1.0)",
	}
}

// WithEndpoint overrides the results URL.
func (d *DuckDuckGo) WithEndpoint(endpoint string) *DuckDuckGo {
	d.endpoint = endpoint
	return d
}

// WithSite overrides the base URL used for news searches.
func (d *DuckDuckGo) WithSite(site string) *DuckDuckGo {
	d.site = strings.TrimRight(site, "/")
	return d
}

func (d *DuckDuckGo) Search(ctx context.Context, query string, opts Options) ([]string, error) {
	form := url.Values{}
	form.Set("q", query)
	form.Set("kp", safeSearchParam(opts.SafeSearch))
	region := opts.Region
	if region == "" {
		region = "wt-wt"
	}
	form.Set("kl", region)
	if opts.TimeLimit != "" {
		form.Set("df", opts.TimeLimit)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	// DuckDuckGo answers throttled clients with 202 and an empty page.
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusAccepted {
		io.Copy(io.Discard, resp.Body)
		return nil, ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("duckduckgo returned status %d", resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse results page: %w", err)
	}
	return extractSnippets(doc, opts.maxResults(), opts.IncludeTitles), nil
}

func safeSearchParam(level string) string {
	switch strings.ToLower(level) {
	case "off":
		return "-2"
	case "moderate":
		return "-1"
	default:
		return "1"
	}
}

// extractSnippets walks result blocks in page order. Each block yields its
// snippet text, or its title when the snippet is missing. Ads are skipped.
func extractSnippets(doc *html.Node, limit int, withTitles bool) []string {
	var out []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if len(out) >= limit {
			return
		}
		if n.Type == html.ElementNode && hasClass(n, "result") && !hasClass(n, "result--ad") {
			if text := resultText(n, withTitles); text != "" {
				out = append(out, text)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return out
}

func resultText(n *html.Node, withTitle bool) string {
	var title, snippet string
	if node := findByClass(n, "result__a"); node != nil {
		title = textContent(node)
	}
	if node := findByClass(n, "result__snippet"); node != nil {
		snippet = textContent(node)
	}

	switch {
	case snippet == "":
		return title
	case withTitle && title != "":
		return title + "\n" + snippet
	default:
		return snippet
	}
}

func findByClass(n *html.Node, class string) *html.Node {
	if n.Type == html.ElementNode && hasClass(n, class) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByClass(c, class); found != nil {
			return found
		}
	}
	return nil
}

func hasClass(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(attr.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}
