// Package title validates and canonicalizes MediaWiki page titles. A Codec is
// built from a site's namespace tables (or DefaultCodec for the stock set)
// and produces Title values implementing the wikitext.Title capability set
// consumed by the node model.
package title

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/Dr4goniez/mwbot-ts-sub003/wikitext"
)

// maxTitleBytes is the engine's byte-length limit for a title without its
// namespace prefix.
const maxTitleBytes = 255

// Namespace describes one namespace of a site, as served by
// meta=siteinfo&siprop=namespaces.
type Namespace struct {
	// ID is the numeric namespace ID.
	ID int
	// Name is the canonical namespace name ("" for the main namespace).
	Name string
	// Aliases lists alternative names resolving to this namespace.
	Aliases []string
	// CaseSensitive is true when page titles in this namespace do not fold
	// their first letter ("case": "case-sensitive" in siteinfo).
	CaseSensitive bool
}

// ParseError describes why an input string is not a valid title.
type ParseError struct {
	// Input is the offending string.
	Input string
	// Reason describes the violation.
	Reason string
}

// Error returns a human-readable error message.
func (e *ParseError) Error() string {
	return fmt.Sprintf("title: cannot parse %q: %s", e.Input, e.Reason)
}

// Codec resolves namespace prefixes and normalizes title text for one site.
// Build it once from siteinfo and treat it as immutable.
type Codec struct {
	byName     map[string]int
	byID       map[int]Namespace
	interwikis map[string]bool
}

// NewCodec builds a codec from a site's namespace table and optional
// interwiki prefixes.
func NewCodec(namespaces []Namespace, interwikiPrefixes []string) (*Codec, error) {
	if len(namespaces) == 0 {
		return nil, &ParseError{Reason: "no namespaces supplied"}
	}
	c := &Codec{
		byName:     make(map[string]int),
		byID:       make(map[int]Namespace, len(namespaces)),
		interwikis: make(map[string]bool, len(interwikiPrefixes)),
	}
	for _, ns := range namespaces {
		c.byID[ns.ID] = ns
		if ns.Name != "" {
			c.byName[normalizePrefix(ns.Name)] = ns.ID
		}
		for _, alias := range ns.Aliases {
			c.byName[normalizePrefix(alias)] = ns.ID
		}
	}
	if _, ok := c.byID[wikitext.NSMain]; !ok {
		return nil, &ParseError{Reason: "namespace table lacks the main namespace"}
	}
	for _, iw := range interwikiPrefixes {
		c.interwikis[normalizePrefix(iw)] = true
	}
	return c, nil
}

// DefaultCodec returns a codec over the stock MediaWiki namespace set, so the
// node model is usable without fetching siteinfo.
func DefaultCodec() *Codec {
	c, err := NewCodec(defaultNamespaces, nil)
	if err != nil {
		// The stock table is static and always valid.
		panic(err)
	}
	return c
}

// NamespaceName returns the canonical name for a namespace ID.
func (c *Codec) NamespaceName(id int) (string, bool) {
	ns, ok := c.byID[id]
	return ns.Name, ok
}

// illegalTitleChars matches characters the engine forbids in title text.
var illegalTitleChars = regexp.MustCompile(`[\x00-\x1f\x7f#<>\[\]|{}]|%[0-9A-Fa-f]{2}|&[A-Za-z0-9]+;`)

// Parse validates s and returns its canonical form. A bare title resolves
// into defaultNamespace; an explicit prefix or a leading colon wins over it.
func (c *Codec) Parse(s string, defaultNamespace int) (*Title, error) {
	original := s
	s = norm.NFC.String(s)
	s = strings.ReplaceAll(s, "_", " ")
	s = collapseWhitespace(s)

	hadColon := false
	if strings.HasPrefix(s, ":") {
		hadColon = true
		s = strings.TrimSpace(s[1:])
		// A leading colon pins a bare title to the main namespace.
		defaultNamespace = wikitext.NSMain
	}
	if s == "" {
		return nil, &ParseError{Input: original, Reason: "empty title"}
	}

	t := &Title{ns: defaultNamespace, hadLeadingColon: hadColon}
	rest := s

	if before, after, found := strings.Cut(rest, ":"); found {
		prefix := normalizePrefix(before)
		if c.interwikis[prefix] {
			t.interwiki = prefix
			t.ns = wikitext.NSMain
			rest = strings.TrimSpace(after)
		} else if id, ok := c.byName[prefix]; ok {
			t.ns = id
			rest = strings.TrimSpace(after)
		}
	}

	if before, after, found := strings.Cut(rest, "#"); found {
		t.fragment = strings.TrimSpace(after)
		rest = strings.TrimSpace(before)
	}

	if rest == "" {
		return nil, &ParseError{Input: original, Reason: "title has no page text"}
	}
	if loc := illegalTitleChars.FindString(rest); loc != "" {
		return nil, &ParseError{Input: original, Reason: fmt.Sprintf("contains illegal sequence %q", loc)}
	}
	for _, seg := range strings.Split(rest, "/") {
		if seg == "." || seg == ".." {
			return nil, &ParseError{Input: original, Reason: "contains a relative path segment"}
		}
	}
	if strings.Contains(rest, "~~~") {
		return nil, &ParseError{Input: original, Reason: "contains a signature sequence"}
	}
	if len(rest) > maxTitleBytes {
		return nil, &ParseError{Input: original, Reason: fmt.Sprintf("longer than %d bytes", maxTitleBytes)}
	}

	if t.interwiki == "" {
		if ns, ok := c.byID[t.ns]; !ok {
			return nil, &ParseError{Input: original, Reason: fmt.Sprintf("unknown namespace %d", t.ns)}
		} else if !ns.CaseSensitive {
			rest = upperFirst(rest)
		}
	}
	t.text = rest
	t.codec = c
	return t, nil
}

// ParseTitle implements wikitext.TitleParser.
func (c *Codec) ParseTitle(s string, defaultNamespace int) (wikitext.Title, error) {
	return c.Parse(s, defaultNamespace)
}

// MustParse is Parse panicking on error, for static titles and tests.
func (c *Codec) MustParse(s string, defaultNamespace int) *Title {
	t, err := c.Parse(s, defaultNamespace)
	if err != nil {
		panic(err)
	}
	return t
}

// Title is a validated, canonicalized page title.
type Title struct {
	ns              int
	text            string
	fragment        string
	interwiki       string
	hadLeadingColon bool
	codec           *Codec
}

// NamespaceID implements wikitext.Title.
func (t *Title) NamespaceID() int { return t.ns }

// Text implements wikitext.Title: the canonical title without the namespace
// prefix.
func (t *Title) Text() string { return t.text }

// PrefixedText implements wikitext.Title: the canonical title including the
// interwiki or namespace prefix, without the fragment.
func (t *Title) PrefixedText() string {
	if t.interwiki != "" {
		return t.interwiki + ":" + t.text
	}
	if ns, ok := t.codec.byID[t.ns]; ok && ns.Name != "" {
		return ns.Name + ":" + t.text
	}
	return t.text
}

// Fragment implements wikitext.Title.
func (t *Title) Fragment() string { return t.fragment }

// Interwiki implements wikitext.Title.
func (t *Title) Interwiki() string { return t.interwiki }

// IsExternal implements wikitext.Title.
func (t *Title) IsExternal() bool { return t.interwiki != "" }

// HadLeadingColon implements wikitext.Title.
func (t *Title) HadLeadingColon() bool { return t.hadLeadingColon }

// String returns the prefixed text with the fragment appended.
func (t *Title) String() string {
	if t.fragment != "" {
		return t.PrefixedText() + "#" + t.fragment
	}
	return t.PrefixedText()
}

// Equal reports whether two titles point at the same page, fragment ignored.
func (t *Title) Equal(other *Title) bool {
	return other != nil && t.ns == other.ns && t.text == other.text &&
		t.interwiki == other.interwiki
}

func normalizePrefix(s string) string {
	return strings.ToLower(strings.TrimSpace(strings.ReplaceAll(s, "_", " ")))
}

func collapseWhitespace(s string) string {
	var b strings.Builder
	inSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			inSpace = true
			continue
		}
		if inSpace && b.Len() > 0 {
			b.WriteByte(' ')
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	up := unicode.ToUpper(r)
	if up == r {
		return s
	}
	return string(up) + s[size:]
}

var _ wikitext.Title = (*Title)(nil)
var _ wikitext.TitleParser = (*Codec)(nil)
