package wiki

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/Dr4goniez/mwbot-ts-sub003/wikitext"
)

// normalizeTitle canonicalizes a title through the wiki's own namespace
// tables so that case and underscore variants share one cache entry. Titles
// the codec rejects pass through verbatim; the API reports its own error.
func (c *Client) normalizeTitle(ctx context.Context, raw string) string {
	codec, err := c.Codec(ctx)
	if err != nil {
		return raw
	}
	t, err := codec.Parse(raw, wikitext.NSMain)
	if err != nil {
		return raw
	}
	return t.PrefixedText()
}

// GetPage retrieves the wikitext content of a page
func (c *Client) GetPage(ctx context.Context, args GetPageArgs) (PageContent, error) {
	if args.Title == "" {
		return PageContent{}, &ValidationError{
			Code:    ValidationCodeInvalid,
			Field:   "title",
			Message: "page title is required",
		}
	}

	normalizedTitle := c.normalizeTitle(ctx, args.Title)

	cacheKey := "page_content:" + normalizedTitle
	if cached, ok := c.getCached(cacheKey); ok {
		return cached.(PageContent), nil
	}

	if err := c.EnsureLoggedInIfRequired(ctx); err != nil {
		return PageContent{}, fmt.Errorf("authentication required: %w", err)
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("titles", normalizedTitle)
	params.Set("prop", "revisions")
	params.Set("rvprop", "content|ids|timestamp")
	params.Set("rvslots", "main")

	resp, err := c.apiRequest(ctx, params)
	if err != nil {
		return PageContent{}, fmt.Errorf("API request failed: %w", err)
	}

	pages := getMap(getMap(resp["query"])["pages"])
	if pages == nil {
		return PageContent{}, fmt.Errorf("unexpected API response: missing pages")
	}

	for pageID, pageData := range pages {
		page := getMap(pageData)
		if page == nil {
			continue
		}

		if _, missing := page["missing"]; missing {
			return PageContent{}, &PageNotFoundError{Title: normalizedTitle}
		}

		revisions := getSlice(page["revisions"])
		if len(revisions) == 0 {
			return PageContent{}, fmt.Errorf("no revisions found for page %q", normalizedTitle)
		}

		rev := getMap(revisions[0])
		main := getMap(getMap(rev["slots"])["main"])
		if main == nil {
			return PageContent{}, fmt.Errorf("invalid revision data for page %q", normalizedTitle)
		}

		// The content lives under "*" on older wikis, "content" on newer ones.
		content := getString(main["*"])
		if content == "" {
			content = getString(main["content"])
		}

		content, truncated := truncateContent(content, CharacterLimit)

		pageTitle := getString(page["title"])
		if pageTitle == "" {
			pageTitle = normalizedTitle
		}

		id, _ := strconv.Atoi(pageID)
		result := PageContent{
			Title:     pageTitle,
			PageID:    id,
			Content:   content,
			Revision:  getInt(rev["revid"]),
			Timestamp: getString(rev["timestamp"]),
			Truncated: truncated,
		}
		if truncated {
			result.Message = "Content was truncated due to size limits."
		}

		c.setCache(cacheKey, result, "page_content")
		return result, nil
	}

	return PageContent{}, &PageNotFoundError{Title: normalizedTitle}
}

// GetPageInfo gets metadata about a page
func (c *Client) GetPageInfo(ctx context.Context, args PageInfoArgs) (PageInfo, error) {
	if args.Title == "" {
		return PageInfo{}, &ValidationError{
			Code:    ValidationCodeInvalid,
			Field:   "title",
			Message: "page title is required",
		}
	}

	normalizedTitle := c.normalizeTitle(ctx, args.Title)

	cacheKey := "page_info:" + normalizedTitle
	if cached, ok := c.getCached(cacheKey); ok {
		return cached.(PageInfo), nil
	}

	if err := c.EnsureLoggedInIfRequired(ctx); err != nil {
		return PageInfo{}, err
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("titles", normalizedTitle)
	params.Set("prop", "info")
	params.Set("inprop", "protection")

	resp, err := c.apiRequest(ctx, params)
	if err != nil {
		return PageInfo{}, err
	}

	pages := getMap(getMap(resp["query"])["pages"])
	if pages == nil {
		return PageInfo{}, fmt.Errorf("unexpected API response: missing pages")
	}

	for _, pageData := range pages {
		page := getMap(pageData)
		if page == nil {
			continue
		}

		if _, missing := page["missing"]; missing {
			return PageInfo{Title: normalizedTitle, Exists: false}, nil
		}

		info := PageInfo{
			Title:        getString(page["title"]),
			PageID:       getInt(page["pageid"]),
			Namespace:    getInt(page["ns"]),
			ContentModel: getString(page["contentmodel"]),
			Length:       getInt(page["length"]),
			Touched:      getString(page["touched"]),
			LastRevision: getInt(page["lastrevid"]),
			Exists:       true,
		}

		if _, isRedirect := page["redirect"]; isRedirect {
			info.Redirect = true
		}

		for _, p := range getSlice(page["protection"]) {
			prot := getMap(p)
			if prot == nil {
				continue
			}
			info.Protection = append(info.Protection,
				fmt.Sprintf("%s: %s", getString(prot["type"]), getString(prot["level"])))
		}

		c.setCache(cacheKey, info, "page_info")
		return info, nil
	}

	return PageInfo{}, &PageNotFoundError{Title: normalizedTitle}
}
