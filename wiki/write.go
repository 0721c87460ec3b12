package wiki

import (
	"context"
	"fmt"
	"net/url"

	"github.com/Dr4goniez/mwbot-ts-sub003/metrics"
)

// EditPage creates or edits a page with the given content
func (c *Client) EditPage(ctx context.Context, args EditPageArgs) (EditResult, error) {
	if args.Title == "" {
		return EditResult{}, &ValidationError{
			Code:    ValidationCodeInvalid,
			Field:   "title",
			Message: "page title is required",
		}
	}
	if err := ValidateContentSize(args.Content, args.Title, MaxEditSize); err != nil {
		return EditResult{}, err
	}

	normalizedTitle := c.normalizeTitle(ctx, args.Title)

	token, err := c.getCSRFToken(ctx)
	if err != nil {
		return EditResult{}, fmt.Errorf("failed to get edit token: %w", err)
	}

	params := url.Values{}
	params.Set("action", "edit")
	params.Set("title", normalizedTitle)
	params.Set("text", args.Content)
	params.Set("token", token)
	if args.Summary != "" {
		params.Set("summary", args.Summary)
	}
	if args.Minor {
		params.Set("minor", "1")
	}
	if args.Bot {
		params.Set("bot", "1")
	}
	if args.Section != "" {
		params.Set("section", args.Section)
	}

	resp, err := c.apiRequest(ctx, params)
	if err != nil {
		metrics.EditOperations.WithLabelValues("failure").Inc()
		return EditResult{}, fmt.Errorf("edit request failed: %w", err)
	}

	edit := getMap(resp["edit"])
	if edit == nil {
		metrics.EditOperations.WithLabelValues("failure").Inc()
		return EditResult{}, fmt.Errorf("unexpected API response: missing edit result")
	}

	if result := getString(edit["result"]); result != "Success" {
		metrics.EditOperations.WithLabelValues("failure").Inc()
		return EditResult{
			Success: false,
			Title:   normalizedTitle,
			Message: fmt.Sprintf("edit failed with result %q", result),
		}, nil
	}

	// Stale page caches would hide the edit we just made.
	c.InvalidateCachePrefix("page_content:")
	c.InvalidateCachePrefix("page_info:")
	c.InvalidateCachePrefix("search:")

	metrics.EditOperations.WithLabelValues("success").Inc()
	metrics.ContentSize.Observe(float64(len(args.Content)))

	_, newPage := edit["new"]
	return EditResult{
		Success:    true,
		Title:      getString(edit["title"]),
		PageID:     getInt(edit["pageid"]),
		RevisionID: getInt(edit["newrevid"]),
		NewPage:    newPage,
		Message:    "Page saved successfully.",
	}, nil
}
