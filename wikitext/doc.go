// Package wikitext models parsed wiki markup fragments as mutable,
// hierarchy-aware node objects that can be edited programmatically and
// serialized back to wikitext.
//
// The package covers three markup families:
//
//   - Template transclusions: {{Title|a|user=b}} via Template, ParsedTemplate,
//     RawTemplate and ParsedRawTemplate
//   - Parser functions: {{#if:a|b|c}} via ParserFunction and ParsedParserFunction
//   - Internal links: [[Title|display]] via Wikilink, FileWikilink, RawWikilink
//     and their Parsed* counterparts
//
// "Fresh" nodes are constructed directly by callers. "Parsed" nodes are built
// exclusively from initializer records supplied by an upstream wikitext
// scanner and retain enough provenance (source slice, offsets, nesting level,
// raw title text) to reproduce the original markup byte for byte. The package
// does not tokenize raw wikitext itself, fetch anything, or expand templates;
// it only models and re-emits markup structures already located by a scanner.
//
// Template parameters live in a keyed store that tracks insertion order,
// duplicate values, and caller-declared key equivalence chains (for example
// "1", "user", "User" naming the same logical parameter). Parser-function
// arguments and file-link parameters use a plain ordered list.
package wikitext
