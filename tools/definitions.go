package tools

// AllTools contains all tool specifications for the MediaWiki MCP server.
// Tool descriptions follow a structured format for optimal LLM tool selection:
// - USE WHEN: Natural language triggers
// - NOT FOR: Disambiguation from similar tools
// - PARAMETERS: Key arguments with defaults
// - RETURNS: What the tool returns
var AllTools = []ToolSpec{
	// ==========================================================================
	// SEARCH TOOLS
	// ==========================================================================
	{
		Name:     "mediawiki_search",
		Method:   "Search",
		Title:    "Search Wiki",
		Category: "search",
		Description: `Search ACROSS the entire wiki for pages containing specific text.

USE WHEN: User asks "find pages about X", "where is X documented", "search for X", or doesn't know which page contains information.

NOT FOR: Retrieving a known page (use mediawiki_get_page instead).

PARAMETERS:
- query: Search text (required)
- limit: Max results (default 50)
- offset: Pagination offset from a previous response

RETURNS: Page titles, snippets, sizes, and total hit count.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},

	// ==========================================================================
	// READ TOOLS
	// ==========================================================================
	{
		Name:     "mediawiki_get_page",
		Method:   "GetPage",
		Title:    "Get Page Content",
		Category: "read",
		Description: `Retrieve full wiki page content as wikitext.

USE WHEN: User says "show me the X page", "what's on the Main Page", "read the FAQ".

NOT FOR: Page metadata only (use mediawiki_get_page_info). Not for finding pages by content (use mediawiki_search).

PARAMETERS:
- title: Page name (required)

RETURNS: Wikitext content, revision ID, and timestamp. Large pages truncated at 25KB.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "mediawiki_get_page_info",
		Method:   "GetPageInfo",
		Title:    "Get Page Info",
		Category: "read",
		Description: `Get page metadata without content.

USE WHEN: User asks "when was X last edited", "does page Y exist", "is the page protected".

NOT FOR: Getting page content (use mediawiki_get_page).

PARAMETERS:
- title: Page name (required)

RETURNS: Existence, namespace, content model, length, last edit timestamp, protection status.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "mediawiki_get_siteinfo",
		Method:   "GetSiteInfo",
		Title:    "Get Site Info",
		Category: "read",
		Description: `Get information about the wiki itself.

USE WHEN: User asks "what wiki is this", "MediaWiki version", "what namespaces exist", "what parser functions are available".

PARAMETERS: None

RETURNS: Site name, generator version, language, namespace count, parser function hook count, interwiki prefixes.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},

	// ==========================================================================
	// WRITE TOOLS
	// ==========================================================================
	{
		Name:     "mediawiki_edit_page",
		Method:   "EditPage",
		Title:    "Edit Page",
		Category: "write",
		Description: `Create new pages or rewrite entire page content.

USE WHEN: User says "create a new page", "rewrite the entire About page", "replace all content".

PARAMETERS:
- title: Page name (required)
- content: New page content (required)
- section: Edit specific section only (optional)
- summary: Edit summary (required for good practice)
- minor: Mark as minor edit (default false)
- bot: Mark as bot edit (default false)

WARNING: This overwrites entire page content unless section is specified.`,
		ReadOnly:    false,
		Destructive: true,
		Idempotent:  false,
		OpenWorld:   true,
	},

	// ==========================================================================
	// WIKITEXT TOOLS
	// ==========================================================================
	{
		Name:     "wikitext_build_template",
		Method:   "BuildTemplate",
		Title:    "Build Template",
		Category: "wikitext",
		Description: `Build a well-formed template transclusion from a title and parameters.

USE WHEN: User asks "insert template X with these parameters", "generate the infobox markup", "build a {{cite}} call".

NOT FOR: Editing pages (use mediawiki_edit_page with the generated markup).

PARAMETERS:
- title: Template title; bare names resolve to the Template namespace (required)
- params: Parameter list, each "value" for positional or "key=value" for named (optional)
- hierarchies: Key equivalence chains where later keys override earlier ones (optional)

RETURNS: The stringified template, the canonical title, and the effective parameter count.

NOTE: Title normalization uses the live wiki's namespace configuration.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "wikitext_verify_hook",
		Method:   "VerifyHook",
		Title:    "Verify Parser Function Hook",
		Category: "wikitext",
		Description: `Check whether text starts with a valid parser function hook on this wiki.

USE WHEN: User asks "is #invoke available", "does this wiki support #if", "is this a parser function or a template".

PARAMETERS:
- candidate: Text beginning with a potential hook, e.g. "#if:condition" (required)

RETURNS: Whether the hook is recognized, the canonical hook key, and the matched prefix.

NOTE: Hook aliases and case sensitivity follow the live wiki's magic word configuration.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
}
