package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
)

// NewsSearcher returns recent news items for a query. Each item is the
// headline and the article excerpt on separate lines.
type NewsSearcher interface {
	News(ctx context.Context, query string, opts Options) ([]string, error)
}

var vqdPattern = regexp.MustCompile(`vqd=["']?([0-9A-Za-z_-]+)`)

type newsResponse struct {
	Results []struct {
		Title   string `json:"title"`
		Excerpt string `json:"excerpt"`
	} `json:"results"`
}

// News queries DuckDuckGo's news vertical. It first fetches the search page
// for the query to obtain the vqd token news.js requires.
func (d *DuckDuckGo) News(ctx context.Context, query string, opts Options) ([]string, error) {
	vqd, err := d.vqd(ctx, query)
	if err != nil {
		return nil, err
	}

	region := opts.Region
	if region == "" {
		region = "wt-wt"
	}
	params := url.Values{}
	params.Set("l", region)
	params.Set("o", "json")
	params.Set("noamp", "1")
	params.Set("q", query)
	params.Set("vqd", vqd)
	params.Set("p", safeSearchParam(opts.SafeSearch))
	if opts.TimeLimit != "" {
		params.Set("df", opts.TimeLimit)
	}

	body, err := d.get(ctx, d.site+"/news.js?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var res newsResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("failed to parse news results: %w", err)
	}

	limit := opts.maxResults()
	out := make([]string, 0, limit)
	for _, r := range res.Results {
		if len(out) >= limit {
			break
		}
		title := strings.TrimSpace(r.Title)
		excerpt := strings.TrimSpace(r.Excerpt)
		switch {
		case excerpt == "":
			if title != "" {
				out = append(out, title)
			}
		case opts.IncludeTitles && title != "":
			out = append(out, title+"\n"+excerpt)
		default:
			out = append(out, excerpt)
		}
	}
	return out, nil
}

func (d *DuckDuckGo) vqd(ctx context.Context, query string) (string, error) {
	body, err := d.get(ctx, d.site+"/?"+url.Values{"q": {query}}.Encode())
	if err != nil {
		return "", err
	}
	m := vqdPattern.FindSubmatch(body)
	if m == nil {
		return "", fmt.Errorf("duckduckgo news token not found for %q", query)
	}
	return string(m[1]), nil
}

func (d *DuckDuckGo) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", d.userAgent)
	req.Header.Set("Referer", d.site+"/")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests, http.StatusAccepted, http.StatusForbidden:
		io.Copy(io.Discard, resp.Body)
		return nil, ErrRateLimited
	default:
		return nil, fmt.Errorf("duckduckgo returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}
