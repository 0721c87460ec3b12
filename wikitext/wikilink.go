package wikitext

import "strings"

// WikilinkStringifyOptions tunes wikilink serialization.
type WikilinkStringifyOptions struct {
	// RawTitle reinserts the raw interstitial title text captured during
	// parsing. Ignored for fresh nodes and when the marker was not preserved.
	RawTitle bool
}

// linkTitleText renders a link target: leading colon when the original
// carried one, canonical prefixed text, fragment appended.
func linkTitleText(t Title) string {
	s := t.PrefixedText()
	if t.HadLeadingColon() {
		s = ":" + s
	}
	if f := t.Fragment(); f != "" {
		s += "#" + f
	}
	return s
}

// Wikilink is a fresh [[Title]] or [[Title|display]] internal link with a
// validated title.
type Wikilink struct {
	title   Title
	display *string
}

// NewWikilink creates a plain link node for the given validated title.
func NewWikilink(title Title) (*Wikilink, error) {
	if title == nil {
		return nil, newNodeError(CodeInvalidTitle, "NewWikilink", "title is nil")
	}
	return &Wikilink{title: title}, nil
}

// Title returns the link's validated title.
func (w *Wikilink) Title() Title { return w.title }

// Display returns the display text, if one is set. An empty display
// ([[A|]]) is distinct from no display ([[A]]).
func (w *Wikilink) Display() (string, bool) {
	if w.display == nil {
		return "", false
	}
	return *w.display, true
}

// SetDisplay sets the display text.
func (w *Wikilink) SetDisplay(s string) {
	w.display = &s
}

// ClearDisplay removes the display text entirely.
func (w *Wikilink) ClearDisplay() {
	w.display = nil
}

// Stringify serializes the link. A nil opts applies defaults.
func (w *Wikilink) Stringify(opts *WikilinkStringifyOptions) string {
	return w.render(linkTitleText(w.title))
}

func (w *Wikilink) render(left string) string {
	if w.display != nil {
		return "[[" + left + "|" + *w.display + "]]"
	}
	return "[[" + left + "]]"
}

// String implements Node.
func (w *Wikilink) String() string { return w.Stringify(nil) }

// ToFileWikilink reinterprets the link as a file embed. The title must be in
// the File namespace without a forced leading colon; the display text, if
// any, splits on pipes into the file parameter list. A brand-new node is
// returned; the receiver is never mutated.
func (w *Wikilink) ToFileWikilink() (*FileWikilink, error) {
	var params []string
	if w.display != nil {
		params = strings.Split(*w.display, "|")
	}
	return newFileWikilink("Wikilink.ToFileWikilink", w.title, params)
}

// ToRawWikilink demotes the link to its raw-string form.
func (w *Wikilink) ToRawWikilink() *RawWikilink {
	r := NewRawWikilink(linkTitleText(w.title))
	r.display = w.display
	return r
}

// FileWikilink is a fresh file embed: [[File:X.png|thumb|caption]]. Instead
// of a single display string it carries a pipe-separated parameter list.
type FileWikilink struct {
	title  Title
	params *OrderedList
}

func newFileWikilink(op string, title Title, params []string) (*FileWikilink, error) {
	if title == nil {
		return nil, newNodeError(CodeInvalidTitle, op, "title is nil")
	}
	if title.NamespaceID() != NSFile {
		return nil, newNodeError(CodeWrongNamespace, op,
			title.PrefixedText()+" is not in the File namespace")
	}
	if title.HadLeadingColon() {
		return nil, newNodeError(CodeWrongNamespace, op,
			title.PrefixedText()+" carries a leading colon and links instead of embedding")
	}
	return &FileWikilink{title: title, params: NewOrderedList(params...)}, nil
}

// NewFileWikilink creates a file embed node. The title must be in the File
// namespace and must not carry a leading colon.
func NewFileWikilink(title Title, params ...string) (*FileWikilink, error) {
	return newFileWikilink("NewFileWikilink", title, params)
}

// Title returns the file's validated title.
func (f *FileWikilink) Title() Title { return f.title }

// Params returns the link's parameter list (caption, sizing, and the like).
// The list is exclusively owned by the node; mutate it through its own
// methods.
func (f *FileWikilink) Params() *OrderedList { return f.params }

// Stringify serializes the embed. A nil opts applies defaults.
func (f *FileWikilink) Stringify(opts *WikilinkStringifyOptions) string {
	return f.render(linkTitleText(f.title))
}

func (f *FileWikilink) render(left string) string {
	values := f.params.Values()
	if len(values) == 0 {
		return "[[" + left + "]]"
	}
	return "[[" + left + "|" + strings.Join(values, "|") + "]]"
}

// String implements Node.
func (f *FileWikilink) String() string { return f.Stringify(nil) }

// ToWikilink reinterprets the embed as a plain link; the parameter list joins
// back into a single display string.
func (f *FileWikilink) ToWikilink() (*Wikilink, error) {
	w, err := NewWikilink(f.title)
	if err != nil {
		return nil, err
	}
	if values := f.params.Values(); len(values) > 0 {
		w.SetDisplay(strings.Join(values, "|"))
	}
	return w, nil
}

// ToRawWikilink demotes the embed to its raw-string form.
func (f *FileWikilink) ToRawWikilink() *RawWikilink {
	r := NewRawWikilink(linkTitleText(f.title))
	if values := f.params.Values(); len(values) > 0 {
		display := strings.Join(values, "|")
		r.display = &display
	}
	return r
}

// RawWikilink is a link whose target failed title validation. It keeps the
// raw target text verbatim and is otherwise editable like a plain link.
type RawWikilink struct {
	title   string
	display *string
}

// NewRawWikilink creates a raw link around an unparsable target string.
func NewRawWikilink(title string) *RawWikilink {
	return &RawWikilink{title: title}
}

// Title returns the raw, unvalidated target text.
func (r *RawWikilink) Title() string { return r.title }

// Display returns the display text, if one is set.
func (r *RawWikilink) Display() (string, bool) {
	if r.display == nil {
		return "", false
	}
	return *r.display, true
}

// SetDisplay sets the display text.
func (r *RawWikilink) SetDisplay(s string) {
	r.display = &s
}

// ClearDisplay removes the display text entirely.
func (r *RawWikilink) ClearDisplay() {
	r.display = nil
}

// Stringify serializes the link with the raw target verbatim.
func (r *RawWikilink) Stringify(opts *WikilinkStringifyOptions) string {
	if r.display != nil {
		return "[[" + r.title + "|" + *r.display + "]]"
	}
	return "[[" + r.title + "]]"
}

// String implements Node.
func (r *RawWikilink) String() string { return r.Stringify(nil) }

// ToWikilink promotes the raw link once its target validates through parser.
func (r *RawWikilink) ToWikilink(parser TitleParser) (*Wikilink, error) {
	title, err := parseLinkTitle("RawWikilink.ToWikilink", parser, r.title)
	if err != nil {
		return nil, err
	}
	w, err := NewWikilink(title)
	if err != nil {
		return nil, err
	}
	w.display = r.display
	return w, nil
}

// ToFileWikilink promotes the raw link to a file embed once its target
// validates into the File namespace.
func (r *RawWikilink) ToFileWikilink(parser TitleParser) (*FileWikilink, error) {
	title, err := parseLinkTitle("RawWikilink.ToFileWikilink", parser, r.title)
	if err != nil {
		return nil, err
	}
	var params []string
	if r.display != nil {
		params = strings.Split(*r.display, "|")
	}
	return newFileWikilink("RawWikilink.ToFileWikilink", title, params)
}

func parseLinkTitle(op string, parser TitleParser, s string) (Title, error) {
	if parser == nil {
		return nil, newNodeError(CodeInvalidTitle, op, "title parser is nil")
	}
	title, err := parser.ParseTitle(s, NSMain)
	if err != nil {
		return nil, &NodeError{
			Code:   CodeInvalidTitle,
			Op:     op,
			Detail: "title " + strings.TrimSpace(s) + " did not validate",
			Cause:  err,
		}
	}
	return title, nil
}

// ParsedWikilink is a scanner-produced plain link that can round-trip its
// original source text.
type ParsedWikilink struct {
	Wikilink
	provenance
	rawTitle  string
	titleText string
	init      *WikilinkInitializer
}

// NewParsedWikilink builds a parsed plain link from a scanner initializer.
// The initializer title must validate through parser. Pipe-separated segments
// after the target join back into one display string.
func NewParsedWikilink(init *WikilinkInitializer, parser TitleParser) (*ParsedWikilink, error) {
	if init == nil {
		return nil, newNodeError(CodeBadInitializer, "NewParsedWikilink", "initializer is nil")
	}
	title, err := parseLinkTitle("NewParsedWikilink", parser, init.Title)
	if err != nil {
		return nil, err
	}
	init = init.clone()
	pw := &ParsedWikilink{
		Wikilink:   Wikilink{title: title},
		provenance: wikilinkProvenance(init),
		rawTitle:   init.RawTitle,
		titleText:  strings.TrimSpace(init.Title),
		init:       init,
	}
	if init.Params != nil {
		display := strings.Join(init.Params, "|")
		pw.display = &display
	}
	return pw, nil
}

func wikilinkProvenance(init *WikilinkInitializer) provenance {
	return provenance{
		text:       init.Text,
		startIndex: init.StartIndex,
		endIndex:   init.EndIndex,
		nestLevel:  init.NestLevel,
		skip:       init.Skip,
	}
}

// Stringify serializes the link, optionally reinserting the captured raw
// title text for byte-identical output on unmutated nodes.
func (w *ParsedWikilink) Stringify(opts *WikilinkStringifyOptions) string {
	left := linkTitleText(w.title)
	if opts != nil && opts.RawTitle && w.rawTitle != "" {
		left = reinsertRawText(w.rawTitle, w.titleText, left)
	}
	return w.render(left)
}

// String implements Node.
func (w *ParsedWikilink) String() string { return w.Stringify(nil) }

// ToFileWikilink reinterprets the link as a file embed by re-deriving from
// the original initializer, discarding any live mutations.
func (w *ParsedWikilink) ToFileWikilink(parser TitleParser) (*ParsedFileWikilink, error) {
	return NewParsedFileWikilink(w.init, parser)
}

// Initializer returns a deep copy of the pristine scanner record.
func (w *ParsedWikilink) Initializer() *WikilinkInitializer { return w.init.clone() }

// ParsedFileWikilink is a scanner-produced file embed.
type ParsedFileWikilink struct {
	FileWikilink
	provenance
	rawTitle  string
	titleText string
	init      *WikilinkInitializer
}

// NewParsedFileWikilink builds a parsed file embed from a scanner
// initializer. The initializer title must validate into the File namespace
// without a leading colon.
func NewParsedFileWikilink(init *WikilinkInitializer, parser TitleParser) (*ParsedFileWikilink, error) {
	if init == nil {
		return nil, newNodeError(CodeBadInitializer, "NewParsedFileWikilink", "initializer is nil")
	}
	title, err := parseLinkTitle("NewParsedFileWikilink", parser, init.Title)
	if err != nil {
		return nil, err
	}
	init = init.clone()
	base, err := newFileWikilink("NewParsedFileWikilink", title, init.Params)
	if err != nil {
		return nil, err
	}
	return &ParsedFileWikilink{
		FileWikilink: *base,
		provenance:   wikilinkProvenance(init),
		rawTitle:     init.RawTitle,
		titleText:    strings.TrimSpace(init.Title),
		init:         init,
	}, nil
}

// Stringify serializes the embed, optionally reinserting the captured raw
// title text.
func (f *ParsedFileWikilink) Stringify(opts *WikilinkStringifyOptions) string {
	left := linkTitleText(f.title)
	if opts != nil && opts.RawTitle && f.rawTitle != "" {
		left = reinsertRawText(f.rawTitle, f.titleText, left)
	}
	return f.render(left)
}

// String implements Node.
func (f *ParsedFileWikilink) String() string { return f.Stringify(nil) }

// ToWikilink reinterprets the embed as a plain link by re-deriving from the
// original initializer.
func (f *ParsedFileWikilink) ToWikilink(parser TitleParser) (*ParsedWikilink, error) {
	return NewParsedWikilink(f.init, parser)
}

// Initializer returns a deep copy of the pristine scanner record.
func (f *ParsedFileWikilink) Initializer() *WikilinkInitializer { return f.init.clone() }

// ParsedRawWikilink is a scanner-produced link whose target did not validate.
type ParsedRawWikilink struct {
	RawWikilink
	provenance
	rawTitle string
	init     *WikilinkInitializer
}

// NewParsedRawWikilink builds a parsed raw link from a scanner initializer.
// No title validation is performed.
func NewParsedRawWikilink(init *WikilinkInitializer) (*ParsedRawWikilink, error) {
	if init == nil {
		return nil, newNodeError(CodeBadInitializer, "NewParsedRawWikilink", "initializer is nil")
	}
	init = init.clone()
	pr := &ParsedRawWikilink{
		RawWikilink: RawWikilink{title: strings.TrimSpace(init.Title)},
		provenance:  wikilinkProvenance(init),
		rawTitle:    init.RawTitle,
		init:        init,
	}
	if init.Params != nil {
		display := strings.Join(init.Params, "|")
		pr.display = &display
	}
	return pr, nil
}

// Stringify serializes the link, optionally reinserting the captured raw
// title text.
func (r *ParsedRawWikilink) Stringify(opts *WikilinkStringifyOptions) string {
	left := r.title
	if opts != nil && opts.RawTitle && r.rawTitle != "" {
		left = reinsertRawText(r.rawTitle, r.init.Title, r.title)
	}
	if r.display != nil {
		return "[[" + left + "|" + *r.display + "]]"
	}
	return "[[" + left + "]]"
}

// String implements Node.
func (r *ParsedRawWikilink) String() string { return r.Stringify(nil) }

// ToParsedWikilink promotes the node by re-deriving from the original
// initializer once its target validates.
func (r *ParsedRawWikilink) ToParsedWikilink(parser TitleParser) (*ParsedWikilink, error) {
	return NewParsedWikilink(r.init, parser)
}

// ToParsedFileWikilink promotes the node to a file embed by re-deriving from
// the original initializer.
func (r *ParsedRawWikilink) ToParsedFileWikilink(parser TitleParser) (*ParsedFileWikilink, error) {
	return NewParsedFileWikilink(r.init, parser)
}

// Initializer returns a deep copy of the pristine scanner record.
func (r *ParsedRawWikilink) Initializer() *WikilinkInitializer { return r.init.clone() }
