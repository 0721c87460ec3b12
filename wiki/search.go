package wiki

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
)

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// stripHTMLTags removes the highlight markup MediaWiki embeds in snippets.
func stripHTMLTags(s string) string {
	return htmlTagPattern.ReplaceAllString(s, "")
}

// Search performs a full-text search across the wiki
func (c *Client) Search(ctx context.Context, args SearchArgs) (SearchResult, error) {
	if args.Query == "" {
		return SearchResult{}, &ValidationError{
			Code:    ValidationCodeInvalid,
			Field:   "query",
			Message: "search query is required",
		}
	}

	limit := normalizeLimit(args.Limit, DefaultLimit, MaxLimit)

	cacheKey := fmt.Sprintf("search:%s:%d:%d", args.Query, limit, args.Offset)
	if cached, ok := c.getCached(cacheKey); ok {
		return cached.(SearchResult), nil
	}

	if err := c.EnsureLoggedInIfRequired(ctx); err != nil {
		return SearchResult{}, err
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("srsearch", args.Query)
	params.Set("srlimit", strconv.Itoa(limit))
	params.Set("srprop", "snippet|size|timestamp")
	if args.Offset > 0 {
		params.Set("sroffset", strconv.Itoa(args.Offset))
	}

	resp, err := c.apiRequest(ctx, params)
	if err != nil {
		return SearchResult{}, fmt.Errorf("search request failed: %w", err)
	}

	query := getMap(resp["query"])
	if query == nil {
		return SearchResult{}, fmt.Errorf("unexpected API response: missing query")
	}

	totalHits := getInt(getMap(query["searchinfo"])["totalhits"])

	var hits []SearchHit
	for _, item := range getSlice(query["search"]) {
		entry := getMap(item)
		if entry == nil {
			continue
		}
		hits = append(hits, SearchHit{
			PageID:  getInt(entry["pageid"]),
			Title:   getString(entry["title"]),
			Snippet: stripHTMLTags(getString(entry["snippet"])),
			Size:    getInt(entry["size"]),
		})
	}

	result := SearchResult{
		Query:     args.Query,
		TotalHits: totalHits,
		Results:   hits,
		HasMore:   args.Offset+len(hits) < totalHits,
	}
	if result.HasMore {
		result.NextOffset = args.Offset + len(hits)
	}

	c.setCache(cacheKey, result, "search")
	return result, nil
}
