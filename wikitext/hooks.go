package wikitext

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MagicWord is one entry of a site's magic-word table, as served by
// meta=siteinfo&siprop=magicwords.
type MagicWord struct {
	// Name is the canonical magic-word name (e.g. "if").
	Name string
	// Aliases lists the localized aliases, canonical name included.
	Aliases []string
	// CaseSensitive reports whether the word matches case-sensitively (apart
	// from its first letter, which the engine always folds).
	CaseSensitive bool
}

// noHashFunctions lists the parser-function hooks the engine registers
// without a leading hash, per CoreParserFunctions.
var noHashFunctions = map[string]bool{
	"anchorencode": true, "basepagename": true, "basepagenamee": true,
	"bidi": true, "canonicalurl": true, "canonicalurle": true,
	"cascadingsources": true, "defaultsort": true, "displaytitle": true,
	"filepath": true, "formatdate": true, "formatnum": true,
	"fullpagename": true, "fullpagenamee": true, "fullurl": true,
	"fullurle": true, "gender": true, "grammar": true, "int": true,
	"language": true, "lc": true, "lcfirst": true, "localurl": true,
	"localurle": true, "namespace": true, "namespacee": true,
	"namespacenumber": true, "ns": true, "nse": true, "numberingroup": true,
	"numberofactiveusers": true, "numberofadmins": true,
	"numberofarticles": true, "numberofedits": true, "numberoffiles": true,
	"numberofpages": true, "numberofusers": true, "padleft": true,
	"padright": true, "pageid": true, "pagename": true, "pagenamee": true,
	"pagesincategory": true, "pagesize": true, "plural": true,
	"protectionexpiry": true, "protectionlevel": true, "revisionday": true,
	"revisionday2": true, "revisionid": true, "revisionmonth": true,
	"revisionmonth1": true, "revisiontimestamp": true, "revisionuser": true,
	"revisionyear": true, "rootpagename": true, "rootpagenamee": true,
	"special": true, "speciale": true, "subjectpagename": true,
	"subjectpagenamee": true, "subjectspace": true, "subjectspacee": true,
	"subpagename": true, "subpagenamee": true, "tag": true,
	"talkpagename": true, "talkpagenamee": true, "talkspace": true,
	"talkspacee": true, "uc": true, "ucfirst": true, "urlencode": true,
}

// hookPrefix matches a candidate hook up to and including its colon. No
// whitespace may appear before the colon; both the ASCII and the fullwidth
// colon are accepted.
var hookPrefix = regexp.MustCompile(`^#?[^:：\s]+[:：]`)

// HookMatch is a successful hook verification.
type HookMatch struct {
	// Canonical is the canonical hook key, e.g. "#if:" or "urlencode:".
	Canonical string
	// Match is the matched prefix of the candidate, colon included.
	Match string
}

type hookEntry struct {
	canonical string
	pattern   *regexp.Regexp
}

// HookTable maps canonical parser-function hooks to matching patterns that
// account for aliases, case sensitivity, and hooks registered without the
// leading hash. Build it once from siteinfo and treat it as immutable.
type HookTable struct {
	entries []hookEntry
}

// BuildHookTable builds a hook table from a site's magic-word table,
// restricted to the entries named in functionHooks (the siteinfo
// functionhooks list).
func BuildHookTable(words []MagicWord, functionHooks []string) *HookTable {
	hooks := make(map[string]bool, len(functionHooks))
	for _, h := range functionHooks {
		hooks[h] = true
	}

	t := &HookTable{}
	for _, w := range words {
		if !hooks[w.Name] {
			continue
		}
		variants := make([]string, 0, len(w.Aliases)+1)
		seen := map[string]bool{}
		for _, alias := range append([]string{w.Name}, w.Aliases...) {
			// Behavior-switch style aliases (__NOTOC__) are not hooks.
			if alias == "" || strings.HasPrefix(alias, "__") {
				continue
			}
			v := normalizeHookAlias(alias, noHashFunctions[w.Name])
			if !seen[v] {
				seen[v] = true
				variants = append(variants, v)
			}
		}
		if len(variants) == 0 {
			continue
		}
		t.entries = append(t.entries, hookEntry{
			canonical: normalizeHookAlias(w.Name, noHashFunctions[w.Name]),
			pattern:   compileHookPattern(variants, w.CaseSensitive),
		})
	}
	return t
}

// normalizeHookAlias makes an alias end with a colon and carry the leading
// hash unless the hook is registered hash-less or the alias already has one.
func normalizeHookAlias(alias string, noHash bool) string {
	if !strings.HasSuffix(alias, ":") {
		alias += ":"
	}
	if !noHash && !strings.HasPrefix(alias, "#") {
		alias = "#" + alias
	}
	return alias
}

// compileHookPattern builds the matching pattern for one hook. Case-sensitive
// hooks still fold their first letter, matching the engine's ucfirst
// leniency; case-insensitive hooks fold entirely.
func compileHookPattern(variants []string, caseSensitive bool) *regexp.Regexp {
	alts := make([]string, len(variants))
	for i, v := range variants {
		if caseSensitive {
			alts[i] = foldFirstLetter(v)
		} else {
			alts[i] = regexp.QuoteMeta(v)
		}
	}
	expr := "^(?:" + strings.Join(alts, "|") + ")$"
	if !caseSensitive {
		expr = "(?i)" + expr
	}
	return regexp.MustCompile(expr)
}

// foldFirstLetter quotes v while replacing its first letter with a character
// class accepting both cases.
func foldFirstLetter(v string) string {
	for i, r := range v {
		if !unicode.IsLetter(r) {
			continue
		}
		lo, up := unicode.ToLower(r), unicode.ToUpper(r)
		if lo == up {
			break
		}
		var b strings.Builder
		b.WriteString(regexp.QuoteMeta(v[:i]))
		b.WriteString("[" + regexp.QuoteMeta(string(up)) + regexp.QuoteMeta(string(lo)) + "]")
		b.WriteString(regexp.QuoteMeta(v[i+utf8.RuneLen(r):]))
		return b.String()
	}
	return regexp.QuoteMeta(v)
}

// Verify tests whether candidate begins with a recognized parser-function
// hook. The candidate is trimmed; its prefix up to the first colon (with no
// intervening whitespace) is tested against every hook pattern and the first
// match wins.
func (t *HookTable) Verify(candidate string) (HookMatch, bool) {
	if t == nil {
		return HookMatch{}, false
	}
	candidate = strings.TrimSpace(candidate)
	prefix := hookPrefix.FindString(candidate)
	if prefix == "" {
		return HookMatch{}, false
	}
	// Patterns are built with the ASCII colon.
	probe := strings.TrimSuffix(prefix, "：")
	if probe != prefix {
		probe += ":"
	}
	for _, e := range t.entries {
		if e.pattern.MatchString(probe) {
			return HookMatch{Canonical: e.canonical, Match: prefix}, true
		}
	}
	return HookMatch{}, false
}
