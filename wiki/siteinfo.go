package wiki

import (
	"context"
	"fmt"
	"net/url"
	"sort"

	"github.com/Dr4goniez/mwbot-ts-sub003/title"
	"github.com/Dr4goniez/mwbot-ts-sub003/wikitext"
)

// General holds the general siteinfo properties of a wiki
type General struct {
	SiteName    string `json:"site_name"`
	MainPage    string `json:"main_page"`
	Base        string `json:"base_url"`
	Generator   string `json:"generator"`
	Language    string `json:"language"`
	ArticlePath string `json:"article_path"`
	Server      string `json:"server"`
	Timezone    string `json:"timezone"`
}

// SiteInfo is the site metadata the node model is parameterized by: the
// namespace tables feeding the title codec and the magic-word and
// function-hook lists feeding the hook table.
type SiteInfo struct {
	General           General              `json:"general"`
	Namespaces        []title.Namespace    `json:"namespaces"`
	MagicWords        []wikitext.MagicWord `json:"magic_words"`
	FunctionHooks     []string             `json:"function_hooks"`
	InterwikiPrefixes []string             `json:"interwiki_prefixes"`
}

// GetSiteInfo fetches the wiki's siteinfo. Results are cached per the
// configured TTL and concurrent fetches are coalesced into one request.
func (c *Client) GetSiteInfo(ctx context.Context) (SiteInfo, error) {
	const cacheKey = "siteinfo"
	if cached, ok := c.getCached(cacheKey); ok {
		return cached.(SiteInfo), nil
	}

	result, shared, err := c.dedup.Do(ctx, cacheKey, func() (interface{}, error) {
		return c.fetchSiteInfo(ctx)
	})
	if err != nil {
		return SiteInfo{}, err
	}

	info := result.(SiteInfo)
	if !shared {
		c.setCache(cacheKey, info, "siteinfo")
	}
	return info, nil
}

func (c *Client) fetchSiteInfo(ctx context.Context) (SiteInfo, error) {
	if err := c.EnsureLoggedInIfRequired(ctx); err != nil {
		return SiteInfo{}, err
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("meta", "siteinfo")
	params.Set("siprop", "general|namespaces|namespacealiases|magicwords|functionhooks|interwikimap")

	resp, err := c.apiRequest(ctx, params)
	if err != nil {
		return SiteInfo{}, err
	}

	query := getMap(resp["query"])
	if query == nil {
		return SiteInfo{}, fmt.Errorf("unexpected siteinfo response: missing query")
	}

	info := SiteInfo{}

	if general := getMap(query["general"]); general != nil {
		info.General = General{
			SiteName:    getString(general["sitename"]),
			MainPage:    getString(general["mainpage"]),
			Base:        getString(general["base"]),
			Generator:   getString(general["generator"]),
			Language:    getString(general["lang"]),
			ArticlePath: getString(general["articlepath"]),
			Server:      getString(general["server"]),
			Timezone:    getString(general["timezone"]),
		}
	}

	info.Namespaces = parseNamespaces(query)
	info.MagicWords = parseMagicWords(query)

	for _, h := range getSlice(query["functionhooks"]) {
		if name := getString(h); name != "" {
			info.FunctionHooks = append(info.FunctionHooks, name)
		}
	}

	for _, iw := range getSlice(query["interwikimap"]) {
		if prefix := getString(getMap(iw)["prefix"]); prefix != "" {
			info.InterwikiPrefixes = append(info.InterwikiPrefixes, prefix)
		}
	}

	return info, nil
}

// parseNamespaces folds the namespaces and namespacealiases siteinfo members
// into one table. The API keys namespaces by stringified ID; names come under
// the "*" member and titles in a namespace with "case": "case-sensitive" do
// not fold their first letter.
func parseNamespaces(query map[string]interface{}) []title.Namespace {
	byID := map[int]*title.Namespace{}

	for _, v := range getMap(query["namespaces"]) {
		nsMap := getMap(v)
		if nsMap == nil {
			continue
		}
		id := getInt(nsMap["id"])
		byID[id] = &title.Namespace{
			ID:            id,
			Name:          getString(nsMap["*"]),
			CaseSensitive: getString(nsMap["case"]) == "case-sensitive",
		}
		// The canonical English name stays resolvable on localized wikis.
		if canonical := getString(nsMap["canonical"]); canonical != "" && canonical != byID[id].Name {
			byID[id].Aliases = append(byID[id].Aliases, canonical)
		}
	}

	for _, v := range getSlice(query["namespacealiases"]) {
		aliasMap := getMap(v)
		if aliasMap == nil {
			continue
		}
		if ns, ok := byID[getInt(aliasMap["id"])]; ok {
			if alias := getString(aliasMap["*"]); alias != "" {
				ns.Aliases = append(ns.Aliases, alias)
			}
		}
	}

	ids := make([]int, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	namespaces := make([]title.Namespace, 0, len(ids))
	for _, id := range ids {
		namespaces = append(namespaces, *byID[id])
	}
	return namespaces
}

func parseMagicWords(query map[string]interface{}) []wikitext.MagicWord {
	var words []wikitext.MagicWord
	for _, v := range getSlice(query["magicwords"]) {
		wordMap := getMap(v)
		if wordMap == nil {
			continue
		}
		word := wikitext.MagicWord{
			Name:          getString(wordMap["name"]),
			CaseSensitive: getBool(wordMap["case-sensitive"]),
		}
		for _, a := range getSlice(wordMap["aliases"]) {
			if alias := getString(a); alias != "" {
				word.Aliases = append(word.Aliases, alias)
			}
		}
		if word.Name != "" {
			words = append(words, word)
		}
	}
	return words
}

// Codec builds a title codec from the wiki's live namespace tables.
func (c *Client) Codec(ctx context.Context) (*title.Codec, error) {
	info, err := c.GetSiteInfo(ctx)
	if err != nil {
		return nil, err
	}
	codec, err := title.NewCodec(info.Namespaces, info.InterwikiPrefixes)
	if err != nil {
		return nil, fmt.Errorf("siteinfo namespace table unusable: %w", err)
	}
	return codec, nil
}

// HookTable builds a parser-function hook table from the wiki's live
// magic-word and function-hook lists.
func (c *Client) HookTable(ctx context.Context) (*wikitext.HookTable, error) {
	info, err := c.GetSiteInfo(ctx)
	if err != nil {
		return nil, err
	}
	return wikitext.BuildHookTable(info.MagicWords, info.FunctionHooks), nil
}

// EnsureLoggedInIfRequired logs in when credentials are configured and skips
// authentication otherwise, so public wikis work anonymously.
func (c *Client) EnsureLoggedInIfRequired(ctx context.Context) error {
	if !c.config.HasCredentials() {
		return nil
	}
	return c.EnsureLoggedIn(ctx)
}
