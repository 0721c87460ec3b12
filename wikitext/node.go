package wikitext

// Node is the capability shared by every markup node: it can render itself
// back to wikitext. String always uses default stringification options; the
// per-variant Stringify methods expose the tunable forms.
type Node interface {
	String() string
}

// ParsedNode is a scanner-produced node carrying provenance into the original
// source text.
type ParsedNode interface {
	Node
	Text() string
	StartIndex() int
	EndIndex() int
	NestLevel() int
	Skip() bool
}
