package wikitext

import "strings"

// RawTitleMarker is the sentinel control character a scanner places in
// RawTitle/RawHook strings at the position where the clean title text was
// extracted, so that stringification can reinsert it for lossless
// reproduction.
const RawTitleMarker = "\x01"

// ParameterSeed is one scanned parameter: a possibly empty key (empty means
// unnamed) and the verbatim value.
type ParameterSeed struct {
	Key   string
	Value string
}

// TemplateInitializer is the record a wikitext scanner supplies for each
// detected double-brace construct. The core consumes these records; it never
// produces them.
type TemplateInitializer struct {
	// Title is the clean first-segment text of the construct: a template
	// title ("Foo"), a parser-function head ("#if: a"), or an unparsable
	// string.
	Title string
	// RawTitle is the verbatim source text of the title segment with the
	// clean title replaced by RawTitleMarker. Empty means no raw text was
	// captured.
	RawTitle string
	// Text is the verbatim source slice of the whole construct.
	Text string
	// StartIndex and EndIndex are half-open offsets of Text in the source.
	StartIndex int
	EndIndex   int
	// NestLevel is the depth inside enclosing double-brace constructs;
	// 0 means not nested.
	NestLevel int
	// Skip is true when the construct sits inside a no-parse HTML tag.
	Skip bool
	// Params are the scanned parameter seeds in source order.
	Params []ParameterSeed
	// Hierarchies optionally declares key equivalence chains for the
	// template's parameter store.
	Hierarchies [][]string
}

// clone deep-copies the initializer so parsed nodes hold pristine data that
// later conversions can re-derive from.
func (i *TemplateInitializer) clone() *TemplateInitializer {
	if i == nil {
		return nil
	}
	c := *i
	if len(i.Params) > 0 {
		c.Params = make([]ParameterSeed, len(i.Params))
		copy(c.Params, i.Params)
	}
	c.Hierarchies = nil
	for _, chain := range i.Hierarchies {
		dup := make([]string, len(chain))
		copy(dup, chain)
		c.Hierarchies = append(c.Hierarchies, dup)
	}
	return &c
}

// WikilinkInitializer is the record a scanner supplies for each detected
// [[...]] construct.
type WikilinkInitializer struct {
	// Title is the clean link target text.
	Title string
	// RawTitle is the verbatim title segment with the clean title replaced by
	// RawTitleMarker.
	RawTitle string
	// Text is the verbatim source slice of the whole link.
	Text string
	// StartIndex and EndIndex are half-open offsets of Text in the source.
	StartIndex int
	EndIndex   int
	// NestLevel is the depth inside enclosing double-brace constructs.
	NestLevel int
	// Skip is true when the link sits inside a no-parse HTML tag.
	Skip bool
	// Params are the pipe-separated segments after the target; nil means the
	// link had no pipe at all. Plain links join them back into one display
	// string, file links keep them as a parameter list.
	Params []string
}

func (i *WikilinkInitializer) clone() *WikilinkInitializer {
	if i == nil {
		return nil
	}
	c := *i
	if i.Params != nil {
		c.Params = make([]string, len(i.Params))
		copy(c.Params, i.Params)
	}
	return &c
}

// provenance carries the scanner-supplied source facts shared by all parsed
// node variants.
type provenance struct {
	text       string
	startIndex int
	endIndex   int
	nestLevel  int
	skip       bool
}

// Text returns the verbatim source slice the node was parsed from.
func (p *provenance) Text() string { return p.text }

// StartIndex returns the inclusive start offset of the node in the source.
func (p *provenance) StartIndex() int { return p.startIndex }

// EndIndex returns the exclusive end offset of the node in the source.
func (p *provenance) EndIndex() int { return p.endIndex }

// NestLevel returns the node's depth inside enclosing double-brace
// constructs; 0 means not nested.
func (p *provenance) NestLevel() int { return p.nestLevel }

// Skip reports whether the node was found inside a no-parse HTML tag and
// should not be treated as live markup.
func (p *provenance) Skip() bool { return p.skip }

// reinsertRawText substitutes the marker in raw with clean. When the marker
// was not preserved as a single occurrence, it falls back to the canonical
// rendering instead (comments interrupting a title, multi-line hook
// expressions cannot be reattached).
func reinsertRawText(raw, clean, canonical string) string {
	if strings.Count(raw, RawTitleMarker) != 1 {
		return canonical
	}
	return strings.Replace(raw, RawTitleMarker, clean, 1)
}
