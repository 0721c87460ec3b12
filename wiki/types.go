package wiki

// Constants for response limits
const (
	DefaultLimit   = 50
	MaxLimit       = 500
	CharacterLimit = 25000
)

// ========== Search Types ==========

type SearchArgs struct {
	Query  string `json:"query" jsonschema:"required,description=Search query text"`
	Limit  int    `json:"limit,omitempty" jsonschema:"description=Maximum results to return (default 20, max 500)"`
	Offset int    `json:"offset,omitempty" jsonschema:"description=Offset for pagination"`
}

type SearchResult struct {
	Query      string      `json:"query"`
	TotalHits  int         `json:"total_hits"`
	Results    []SearchHit `json:"results"`
	HasMore    bool        `json:"has_more"`
	NextOffset int         `json:"next_offset,omitempty"`
}

type SearchHit struct {
	PageID  int    `json:"page_id"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Size    int    `json:"size"`
}

// ========== Page Content Types ==========

type GetPageArgs struct {
	Title string `json:"title" jsonschema:"required,description=Page title to retrieve"`
}

type PageContent struct {
	Title     string `json:"title"`
	PageID    int    `json:"page_id"`
	Content   string `json:"content"`
	Revision  int    `json:"revision_id"`
	Timestamp string `json:"timestamp"`
	Truncated bool   `json:"truncated,omitempty"`
	Message   string `json:"message,omitempty"`
}

// ========== Page Info Types ==========

type PageInfoArgs struct {
	Title string `json:"title" jsonschema:"required,description=Page title"`
}

type PageInfo struct {
	Title        string   `json:"title"`
	PageID       int      `json:"page_id"`
	Namespace    int      `json:"namespace"`
	ContentModel string   `json:"content_model"`
	Length       int      `json:"length"`
	Touched      string   `json:"touched"`
	LastRevision int      `json:"last_revision_id"`
	Exists       bool     `json:"exists"`
	Redirect     bool     `json:"redirect"`
	Protection   []string `json:"protection,omitempty"`
}

// ========== Edit Types ==========

type EditPageArgs struct {
	Title   string `json:"title" jsonschema:"required,description=Page title to edit or create"`
	Content string `json:"content" jsonschema:"required,description=New page content in wikitext format"`
	Summary string `json:"summary,omitempty" jsonschema:"description=Edit summary explaining the change"`
	Minor   bool   `json:"minor,omitempty" jsonschema:"description=Mark as minor edit"`
	Bot     bool   `json:"bot,omitempty" jsonschema:"description=Mark as bot edit (requires bot flag)"`
	Section string `json:"section,omitempty" jsonschema:"description=Section to edit ('new' for new section, number for existing)"`
}

type EditResult struct {
	Success    bool   `json:"success"`
	Title      string `json:"title"`
	PageID     int    `json:"page_id"`
	RevisionID int    `json:"revision_id"`
	NewPage    bool   `json:"new_page"`
	Message    string `json:"message"`
}
