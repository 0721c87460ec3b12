package wikitext

import (
	"regexp"
	"sort"
	"strings"
)

// templateParams is embedded by the template-family node types and exposes
// the keyed parameter store operations. Each node exclusively owns its store;
// every accessor returns snapshots, never live internal state.
type templateParams struct {
	store *paramStore
}

func newTemplateParams(hierarchies [][]string, seeds []ParameterSeed) templateParams {
	tp := templateParams{store: newParamStore()}
	tp.store.setHierarchies(hierarchies)
	for _, seed := range seeds {
		tp.store.insert(seed.Key, seed.Value, true, Position{})
	}
	return tp
}

// SetHierarchies declares key equivalence chains, where later entries of a
// chain take priority over earlier ones. The chains are deep-copied.
func (t *templateParams) SetHierarchies(chains ...[]string) {
	t.store.setHierarchies(chains)
}

// InsertParam registers a parameter at the end of the order (or in place for
// an existing key). An empty key inserts an unnamed parameter under the
// smallest free numeric key. With overwrite false an existing live parameter
// is left untouched. It reports whether the store changed.
func (t *templateParams) InsertParam(key, value string, overwrite bool) bool {
	return t.store.insert(key, value, overwrite, Position{})
}

// InsertParamAt is InsertParam with an explicit order position. New keys fall
// back to the end when the reference key does not exist; existing keys keep
// their position in that case.
func (t *templateParams) InsertParamAt(key, value string, overwrite bool, pos Position) bool {
	return t.store.insert(key, value, overwrite, pos)
}

// UpdateParam overwrites an existing parameter in place, never changing its
// position. It is a no-op returning false when the key (resolved against the
// hierarchy chains) has no live parameter.
func (t *templateParams) UpdateParam(key, value string) bool {
	return t.store.update(key, value)
}

// GetParam returns a snapshot of the parameter at key. With resolveHierarchy
// the key resolves to the highest-priority live member of its equivalence
// chain, which need not be key itself.
func (t *templateParams) GetParam(key string, resolveHierarchy bool) (Parameter, bool) {
	return t.store.get(key, resolveHierarchy)
}

// HasParam reports whether key has a live parameter.
func (t *templateParams) HasParam(key string) bool {
	return t.store.hasKey(key)
}

// HasParamValue reports whether key has a live parameter whose value equals
// value exactly.
func (t *templateParams) HasParamValue(key, value string) bool {
	return t.store.hasValue(key, value)
}

// HasParamMatching reports whether any live parameter matches both patterns;
// a nil pattern is unconstrained.
func (t *templateParams) HasParamMatching(keyPattern, valuePattern *regexp.Regexp) bool {
	return t.store.hasMatch(keyPattern, valuePattern)
}

// HasParamFunc reports whether pred holds for any live parameter.
func (t *templateParams) HasParamFunc(pred func(Parameter) bool) bool {
	return t.store.hasFunc(pred)
}

// DeleteParam removes the parameter and its order entry. With
// resolveHierarchy the key first resolves to whichever chain member is live.
func (t *templateParams) DeleteParam(key string, resolveHierarchy bool) bool {
	return t.store.remove(key, resolveHierarchy)
}

// Params returns snapshots of the live parameters in serialization order.
func (t *templateParams) Params() []Parameter {
	return t.store.snapshotAll()
}

// ParamOrder returns the live keys in serialization order.
func (t *templateParams) ParamOrder() []string {
	return t.store.orderSnapshot()
}

// TemplateStringifyOptions tunes template serialization.
type TemplateStringifyOptions struct {
	// SortFunc orders parameters instead of the stored order. It must return
	// negative, zero, or positive as in a three-way comparison.
	SortFunc func(a, b Parameter) int
	// SuppressKeys lists numeric keys forced to render key-less even when
	// named.
	SuppressKeys []string
	// RawTitle reinserts the raw interstitial title text captured during
	// parsing. Ignored for fresh nodes and when the marker was not preserved.
	RawTitle bool
}

// renderParams serializes the parameter list. An unnamed parameter whose
// value contains "=" is forced to render with its key, else it would be
// misread as a named parameter on the next parse.
func renderParams(params []Parameter, opts *TemplateStringifyOptions) string {
	if opts == nil {
		opts = &TemplateStringifyOptions{}
	}
	if opts.SortFunc != nil {
		sort.SliceStable(params, func(i, j int) bool {
			return opts.SortFunc(params[i], params[j]) < 0
		})
	}
	suppress := make(map[string]bool, len(opts.SuppressKeys))
	for _, k := range opts.SuppressKeys {
		suppress[k] = true
	}
	var b strings.Builder
	for _, p := range params {
		switch {
		case suppress[p.Key]:
			b.WriteString("|" + p.Value)
		case p.Unnamed && !strings.Contains(p.Value, "="):
			b.WriteString("|" + p.Value)
		default:
			b.WriteString("|" + p.Key + "=" + p.Value)
		}
	}
	return b.String()
}

// Template is a fresh {{Title|...}} transclusion with a validated title.
type Template struct {
	templateParams
	title Title
}

// NewTemplate creates a template node for the given validated title,
// optionally declaring parameter hierarchy chains.
func NewTemplate(title Title, hierarchies ...[]string) (*Template, error) {
	if title == nil {
		return nil, newNodeError(CodeInvalidTitle, "NewTemplate", "title is nil")
	}
	if title.IsExternal() {
		return nil, newNodeError(CodeInvalidTitle, "NewTemplate",
			"interwiki title "+title.PrefixedText()+" cannot be transcluded")
	}
	return &Template{
		templateParams: newTemplateParams(hierarchies, nil),
		title:          title,
	}, nil
}

// Title returns the template's validated title.
func (t *Template) Title() Title { return t.title }

// titleText renders the title the way the engine displays transclusion
// targets: Template-namespace pages drop the prefix and main-namespace pages
// gain a leading colon.
func (t *Template) titleText() string {
	switch t.title.NamespaceID() {
	case NSTemplate:
		return t.title.Text()
	case NSMain:
		return ":" + t.title.PrefixedText()
	default:
		return t.title.PrefixedText()
	}
}

// Stringify serializes the template. A nil opts applies defaults.
func (t *Template) Stringify(opts *TemplateStringifyOptions) string {
	return "{{" + t.titleText() + renderParams(t.Params(), opts) + "}}"
}

// String implements Node.
func (t *Template) String() string { return t.Stringify(nil) }

// ParsedTemplate is a scanner-produced template that can round-trip its
// original source text.
type ParsedTemplate struct {
	Template
	provenance
	rawTitle  string
	titleText string
	init      *TemplateInitializer
}

// NewParsedTemplate builds a parsed template from a scanner initializer. The
// initializer title must validate through parser.
func NewParsedTemplate(init *TemplateInitializer, parser TitleParser) (*ParsedTemplate, error) {
	if init == nil {
		return nil, newNodeError(CodeBadInitializer, "NewParsedTemplate", "initializer is nil")
	}
	if parser == nil {
		return nil, newNodeError(CodeBadInitializer, "NewParsedTemplate", "title parser is nil")
	}
	title, err := parser.ParseTitle(init.Title, NSTemplate)
	if err != nil {
		return nil, &NodeError{
			Code:   CodeInvalidTitle,
			Op:     "NewParsedTemplate",
			Detail: "title " + strings.TrimSpace(init.Title) + " did not validate",
			Cause:  err,
		}
	}
	init = init.clone()
	pt := &ParsedTemplate{
		Template: Template{
			templateParams: newTemplateParams(init.Hierarchies, init.Params),
			title:          title,
		},
		provenance: provenance{
			text:       init.Text,
			startIndex: init.StartIndex,
			endIndex:   init.EndIndex,
			nestLevel:  init.NestLevel,
			skip:       init.Skip,
		},
		rawTitle:  init.RawTitle,
		titleText: strings.TrimSpace(init.Title),
		init:      init,
	}
	return pt, nil
}

// Stringify serializes the template. With opts.RawTitle the raw interstitial
// title text captured during parsing is reinserted around the title, keeping
// the output byte-identical to the source for unmutated nodes.
func (t *ParsedTemplate) Stringify(opts *TemplateStringifyOptions) string {
	left := t.titleSegment(opts)
	return "{{" + left + renderParams(t.Params(), opts) + "}}"
}

func (t *ParsedTemplate) titleSegment(opts *TemplateStringifyOptions) string {
	if opts != nil && opts.RawTitle && t.rawTitle != "" {
		return reinsertRawText(t.rawTitle, t.titleText, t.Template.titleText())
	}
	return t.Template.titleText()
}

// String implements Node.
func (t *ParsedTemplate) String() string { return t.Stringify(nil) }

// ToParserFunction reinterprets the construct as a parser function by
// re-deriving from the original initializer, discarding any live mutations.
// The stored title must verify as a hook against table.
func (t *ParsedTemplate) ToParserFunction(table *HookTable) (*ParsedParserFunction, error) {
	return NewParsedParserFunction(t.init, table)
}

// Initializer returns a deep copy of the pristine scanner record the node was
// built from.
func (t *ParsedTemplate) Initializer() *TemplateInitializer { return t.init.clone() }

// RawTemplate is a double-brace construct whose title failed validation. It
// still carries an editable parameter store and serializes with the raw title
// verbatim.
type RawTemplate struct {
	templateParams
	title string
}

// NewRawTemplate creates a raw template around an unparsable title string.
func NewRawTemplate(title string, hierarchies ...[]string) *RawTemplate {
	return &RawTemplate{
		templateParams: newTemplateParams(hierarchies, nil),
		title:          title,
	}
}

// Title returns the raw, unvalidated title text.
func (t *RawTemplate) Title() string { return t.title }

// Stringify serializes the construct with the raw title verbatim.
func (t *RawTemplate) Stringify(opts *TemplateStringifyOptions) string {
	return "{{" + t.title + renderParams(t.Params(), opts) + "}}"
}

// String implements Node.
func (t *RawTemplate) String() string { return t.Stringify(nil) }

// ToTemplate promotes the raw node once its title validates through parser.
// The promotion constructs a brand-new node; on failure the raw node is left
// unchanged.
func (t *RawTemplate) ToTemplate(parser TitleParser) (*Template, error) {
	if parser == nil {
		return nil, newNodeError(CodeInvalidTitle, "RawTemplate.ToTemplate", "title parser is nil")
	}
	title, err := parser.ParseTitle(t.title, NSTemplate)
	if err != nil {
		return nil, &NodeError{
			Code:   CodeInvalidTitle,
			Op:     "RawTemplate.ToTemplate",
			Detail: "title " + strings.TrimSpace(t.title) + " did not validate",
			Cause:  err,
		}
	}
	next, err := NewTemplate(title)
	if err != nil {
		return nil, err
	}
	next.store = t.store.clone()
	return next, nil
}

// ToParserFunction promotes the raw node once its title verifies as a hook.
// Live parameters carry over as positional arguments in order.
func (t *RawTemplate) ToParserFunction(table *HookTable) (*ParserFunction, error) {
	pf, err := NewParserFunction(t.title, table)
	if err != nil {
		return nil, err
	}
	for _, p := range t.Params() {
		if p.Unnamed {
			pf.Params().Add(p.Value)
		} else {
			pf.Params().Add(p.Key + "=" + p.Value)
		}
	}
	return pf, nil
}

// ParsedRawTemplate is a scanner-produced double-brace construct whose title
// did not validate.
type ParsedRawTemplate struct {
	RawTemplate
	provenance
	rawTitle string
	init     *TemplateInitializer
}

// NewParsedRawTemplate builds a parsed raw template from a scanner
// initializer. No title validation is performed.
func NewParsedRawTemplate(init *TemplateInitializer) (*ParsedRawTemplate, error) {
	if init == nil {
		return nil, newNodeError(CodeBadInitializer, "NewParsedRawTemplate", "initializer is nil")
	}
	init = init.clone()
	return &ParsedRawTemplate{
		RawTemplate: RawTemplate{
			templateParams: newTemplateParams(init.Hierarchies, init.Params),
			title:          strings.TrimSpace(init.Title),
		},
		provenance: provenance{
			text:       init.Text,
			startIndex: init.StartIndex,
			endIndex:   init.EndIndex,
			nestLevel:  init.NestLevel,
			skip:       init.Skip,
		},
		rawTitle: init.RawTitle,
		init:     init,
	}, nil
}

// Stringify serializes the construct, optionally reinserting the captured raw
// title text.
func (t *ParsedRawTemplate) Stringify(opts *TemplateStringifyOptions) string {
	left := t.title
	if opts != nil && opts.RawTitle && t.rawTitle != "" {
		left = reinsertRawText(t.rawTitle, t.init.Title, t.title)
	}
	return "{{" + left + renderParams(t.Params(), opts) + "}}"
}

// String implements Node.
func (t *ParsedRawTemplate) String() string { return t.Stringify(nil) }

// ToParsedTemplate promotes the node by re-deriving from the original
// initializer, discarding any live mutations.
func (t *ParsedRawTemplate) ToParsedTemplate(parser TitleParser) (*ParsedTemplate, error) {
	return NewParsedTemplate(t.init, parser)
}

// ToParsedParserFunction reinterprets the construct as a parser function by
// re-deriving from the original initializer.
func (t *ParsedRawTemplate) ToParsedParserFunction(table *HookTable) (*ParsedParserFunction, error) {
	return NewParsedParserFunction(t.init, table)
}

// Initializer returns a deep copy of the pristine scanner record.
func (t *ParsedRawTemplate) Initializer() *TemplateInitializer { return t.init.clone() }

// ParserFunction is a fresh {{#hook:...}} invocation. Its arguments are an
// ordered positional list; the first argument renders directly after the
// hook's colon.
type ParserFunction struct {
	hook      string
	canonical string
	params    *OrderedList
}

// NewParserFunction creates a parser-function node. The hook must verify
// against table; the matched form is kept for serialization and the canonical
// key is available via CanonicalHook.
func NewParserFunction(hook string, table *HookTable) (*ParserFunction, error) {
	m, ok := table.Verify(hook)
	if !ok {
		return nil, newNodeError(CodeInvalidHook, "NewParserFunction",
			strings.TrimSpace(hook)+" is not a recognized parser function hook")
	}
	return &ParserFunction{
		hook:      m.Match,
		canonical: m.Canonical,
		params:    NewOrderedList(),
	}, nil
}

// Hook returns the hook as matched, colon included.
func (f *ParserFunction) Hook() string { return f.hook }

// CanonicalHook returns the canonical hook key, e.g. "#if:".
func (f *ParserFunction) CanonicalHook() string { return f.canonical }

// Params returns the node's argument list. The list is exclusively owned by
// the node; mutate it through its own methods.
func (f *ParserFunction) Params() *OrderedList { return f.params }

// ParserFunctionStringifyOptions tunes parser-function serialization.
type ParserFunctionStringifyOptions struct {
	// Canonical renders the canonical hook instead of the matched form.
	Canonical bool
	// RawHook reinserts the raw interstitial hook text captured during
	// parsing. Ignored for fresh nodes and when the marker was not preserved.
	RawHook bool
}

func renderHookArgs(hook string, values []string) string {
	return "{{" + hook + strings.Join(values, "|") + "}}"
}

// Stringify serializes the invocation. A nil opts applies defaults.
func (f *ParserFunction) Stringify(opts *ParserFunctionStringifyOptions) string {
	hook := f.hook
	if opts != nil && opts.Canonical {
		hook = f.canonical
	}
	return renderHookArgs(hook, f.params.Values())
}

// String implements Node.
func (f *ParserFunction) String() string { return f.Stringify(nil) }

// ParsedParserFunction is a scanner-produced parser-function invocation.
type ParsedParserFunction struct {
	ParserFunction
	provenance
	rawHook string
	init    *TemplateInitializer
}

// NewParsedParserFunction builds a parsed parser function from a scanner
// initializer. The initializer title must verify as a hook; the remainder of
// the title segment after the hook becomes the first argument, ahead of the
// scanned parameter seeds.
func NewParsedParserFunction(init *TemplateInitializer, table *HookTable) (*ParsedParserFunction, error) {
	if init == nil {
		return nil, newNodeError(CodeBadInitializer, "NewParsedParserFunction", "initializer is nil")
	}
	trimmed := strings.TrimSpace(init.Title)
	m, ok := table.Verify(trimmed)
	if !ok {
		return nil, newNodeError(CodeInvalidHook, "NewParsedParserFunction",
			trimmed+" is not a recognized parser function hook")
	}
	init = init.clone()

	params := NewOrderedList(trimmed[len(m.Match):])
	for _, seed := range init.Params {
		if seed.Key != "" {
			// Parser functions have no named parameters; the scanner's
			// key/value split folds back into one positional argument.
			params.Add(seed.Key + "=" + seed.Value)
		} else {
			params.Add(seed.Value)
		}
	}

	pf := &ParsedParserFunction{
		ParserFunction: ParserFunction{
			hook:      m.Match,
			canonical: m.Canonical,
			params:    params,
		},
		provenance: provenance{
			text:       init.Text,
			startIndex: init.StartIndex,
			endIndex:   init.EndIndex,
			nestLevel:  init.NestLevel,
			skip:       init.Skip,
		},
		rawHook: rawHookText(init.RawTitle),
		init:    init,
	}
	return pf, nil
}

// rawHookText derives the raw hook segment from a raw title capture. The
// marker in a raw title stands for the whole clean title; the hook is its
// leading portion, so any decoration after the marker cannot be attributed
// and the capture is dropped.
func rawHookText(rawTitle string) string {
	if strings.Count(rawTitle, RawTitleMarker) != 1 {
		return ""
	}
	idx := strings.Index(rawTitle, RawTitleMarker)
	if strings.TrimSpace(rawTitle[idx+len(RawTitleMarker):]) != "" {
		return ""
	}
	return rawTitle[:idx] + RawTitleMarker
}

// Stringify serializes the invocation. With opts.RawHook the raw interstitial
// hook text captured during parsing is reinserted, keeping the output
// byte-identical to the source for unmutated nodes.
func (f *ParsedParserFunction) Stringify(opts *ParserFunctionStringifyOptions) string {
	hook := f.hook
	if opts != nil {
		if opts.Canonical {
			hook = f.canonical
		}
		if opts.RawHook && f.rawHook != "" {
			hook = reinsertRawText(f.rawHook, f.hook, hook)
		}
	}
	return renderHookArgs(hook, f.params.Values())
}

// String implements Node.
func (f *ParsedParserFunction) String() string { return f.Stringify(nil) }

// ToTemplate reinterprets the construct as a template by re-deriving from the
// original initializer, discarding any live mutations. The stored title must
// validate through parser.
func (f *ParsedParserFunction) ToTemplate(parser TitleParser) (*ParsedTemplate, error) {
	return NewParsedTemplate(f.init, parser)
}

// Initializer returns a deep copy of the pristine scanner record.
func (f *ParsedParserFunction) Initializer() *TemplateInitializer { return f.init.clone() }
