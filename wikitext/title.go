package wikitext

// Built-in MediaWiki namespace IDs used by the node model. Site-specific
// namespaces come from the siteinfo tables; these cover the namespaces the
// node model itself must distinguish.
const (
	NSMain      = 0
	NSTalk      = 1
	NSUser      = 2
	NSProject   = 4
	NSFile      = 6
	NSMediaWiki = 8
	NSTemplate  = 10
	NSHelp      = 12
	NSCategory  = 14
)

// Title is the canonical page title consumed by the node model. The concrete
// implementation lives outside this package (see the title package); the node
// model only depends on this capability set.
type Title interface {
	// NamespaceID returns the numeric namespace of the title.
	NamespaceID() int

	// Text returns the canonical title text without the namespace prefix.
	Text() string

	// PrefixedText returns the canonical title text including the namespace
	// prefix, without the fragment.
	PrefixedText() string

	// Fragment returns the fragment (the part after "#"), or "".
	Fragment() string

	// Interwiki returns the interwiki prefix, or "".
	Interwiki() string

	// IsExternal reports whether the title points at another wiki.
	IsExternal() bool

	// HadLeadingColon reports whether the original input carried a leading
	// colon ([[:File:X.png]] is a link, not an embed).
	HadLeadingColon() bool
}

// TitleParser converts a raw string into a validated Title. It is supplied by
// the caller (typically a title.Codec built from siteinfo) and used when
// constructing parsed nodes and promoting raw nodes.
type TitleParser interface {
	// ParseTitle validates s, resolving a bare (unprefixed) title into
	// defaultNamespace. Transclusion targets resolve into NSTemplate, link
	// targets into NSMain.
	ParseTitle(s string, defaultNamespace int) (Title, error)
}
