package wikitext

import (
	"regexp"
	"strconv"
	"strings"
)

// ParameterFragment is a single key/value observation: either the live state
// of a parameter or one of its superseded duplicates.
type ParameterFragment struct {
	// Key is the parameter key. Never empty: unnamed parameters carry their
	// auto-assigned numeric key.
	Key string
	// Value is the parameter value. Named values are trimmed, unnamed values
	// are kept verbatim.
	Value string
	// Unnamed reports whether the parameter was supplied without an explicit
	// key.
	Unnamed bool
}

// Text returns the wikitext rendering of the fragment, including the leading
// pipe: "|value" for unnamed parameters and "|key=value" otherwise.
func (f ParameterFragment) Text() string {
	if f.Unnamed {
		return "|" + f.Value
	}
	return "|" + f.Key + "=" + f.Value
}

// Parameter is the live state of one template or parser-function parameter.
// Within one store each live key maps to exactly one Parameter; values it
// superseded are kept in Duplicates in discovery order and never participate
// in lookups.
//
// Accessors return snapshot copies: mutating a returned Parameter never
// affects the owning node.
type Parameter struct {
	ParameterFragment
	// Duplicates holds superseded fragments in discovery order.
	Duplicates []ParameterFragment
}

func (p *Parameter) snapshot() Parameter {
	out := Parameter{ParameterFragment: p.ParameterFragment}
	if len(p.Duplicates) > 0 {
		out.Duplicates = make([]ParameterFragment, len(p.Duplicates))
		copy(out.Duplicates, p.Duplicates)
	}
	return out
}

// Position specifies where a key is placed in the parameter order. The zero
// value means "default": new keys go to the end, existing keys stay put.
type Position struct {
	kind positionKind
	ref  string
}

type positionKind int

const (
	posDefault positionKind = iota
	posStart
	posEnd
	posBefore
	posAfter
)

// AtStart places the key first in the parameter order.
func AtStart() Position { return Position{kind: posStart} }

// AtEnd places the key last in the parameter order.
func AtEnd() Position { return Position{kind: posEnd} }

// BeforeKey places the key immediately before ref. If ref has no live
// parameter, new keys fall back to the end and existing keys keep their
// position.
func BeforeKey(ref string) Position { return Position{kind: posBefore, ref: ref} }

// AfterKey places the key immediately after ref, with the same fallback rules
// as BeforeKey.
func AfterKey(ref string) Position { return Position{kind: posAfter, ref: ref} }

// overrideRelation is the outcome of resolving a key against the declared
// hierarchy chains.
type overrideRelation int

const (
	// overrideNone: the key is not in any chain, or no conflicting key from
	// its chain is live.
	overrideNone overrideRelation = iota
	// overridesExisting: the key has higher priority than the live chain
	// member, which must be demoted to a duplicate.
	overridesExisting
	// overriddenByExisting: a higher-priority chain member is live; the key is
	// recorded as a duplicate of it instead of being promoted.
	overriddenByExisting
)

// paramStore manages named and unnamed parameters for a single node: the
// key to Parameter mapping, the distinct key order controlling serialization,
// and the hierarchy chains. Each node exclusively owns its store.
type paramStore struct {
	params      map[string]*Parameter
	order       []string
	hierarchies [][]string
}

func newParamStore() *paramStore {
	return &paramStore{params: make(map[string]*Parameter)}
}

// setHierarchies installs key equivalence chains. Chains are deep-copied so
// the store never holds references into caller-owned slices.
func (s *paramStore) setHierarchies(chains [][]string) {
	s.hierarchies = nil
	for _, chain := range chains {
		if len(chain) == 0 {
			continue
		}
		dup := make([]string, len(chain))
		copy(dup, chain)
		s.hierarchies = append(s.hierarchies, dup)
	}
}

// chainFor returns the chain containing key, or nil.
func (s *paramStore) chainFor(key string) []string {
	for _, chain := range s.hierarchies {
		for _, k := range chain {
			if k == key {
				return chain
			}
		}
	}
	return nil
}

// checkKeyOverride resolves key against the hierarchy chains. When a
// different member of key's chain is currently live, liveKey names it and the
// relation states which of the two wins (later chain entries have strictly
// higher priority).
func (s *paramStore) checkKeyOverride(key string) (liveKey string, rel overrideRelation) {
	chain := s.chainFor(key)
	if chain == nil {
		return "", overrideNone
	}
	keyIdx := -1
	liveIdx := -1
	for i, k := range chain {
		if k == key {
			keyIdx = i
			continue
		}
		if _, ok := s.params[k]; ok {
			liveKey = k
			liveIdx = i
		}
	}
	if liveIdx < 0 {
		return "", overrideNone
	}
	if keyIdx > liveIdx {
		return liveKey, overridesExisting
	}
	return liveKey, overriddenByExisting
}

// nextNumericKey returns the smallest unused positive integer key, as a
// string. Deleting "2" from {"1","2","3"} makes the next unnamed insert claim
// "2" again, not "4".
func (s *paramStore) nextNumericKey() string {
	used := make(map[int]bool, len(s.params))
	for k := range s.params {
		if n, err := strconv.Atoi(k); err == nil && n > 0 {
			used[n] = true
		}
	}
	for i := 1; ; i++ {
		if !used[i] {
			return strconv.Itoa(i)
		}
	}
}

// makeFragment normalizes raw key/value input. An empty (or blank) key means
// an unnamed parameter: it receives the smallest free numeric key and its
// value is kept verbatim. Named keys and values are trimmed.
func (s *paramStore) makeFragment(key, value string) ParameterFragment {
	key = strings.TrimSpace(key)
	if key == "" {
		return ParameterFragment{Key: s.nextNumericKey(), Value: value, Unnamed: true}
	}
	return ParameterFragment{Key: key, Value: strings.TrimSpace(value), Unnamed: false}
}

// appendDuplicate records frag as a superseded duplicate of p unless an
// identical fragment was already recorded.
func appendDuplicate(p *Parameter, frag ParameterFragment) bool {
	for _, d := range p.Duplicates {
		if d == frag {
			return false
		}
	}
	p.Duplicates = append(p.Duplicates, frag)
	return true
}

// insert registers a parameter. It reports whether the store changed (live
// state, order, or duplicates).
//
// Behavior matrix:
//   - unnamed input (blank key): auto numeric key, verbatim value
//   - key overridden by a live higher-priority chain member: recorded as a
//     duplicate of that member, live state unchanged
//   - key overriding a live lower-priority chain member: the member is
//     demoted to a duplicate and the new key takes over its order slot
//   - key already live: no-op unless overwrite; a differing superseded
//     fragment moves to Duplicates; identical re-inserts are idempotent
//   - new key: placed per pos (default end)
func (s *paramStore) insert(key, value string, overwrite bool, pos Position) bool {
	frag := s.makeFragment(key, value)

	liveKey, rel := s.checkKeyOverride(frag.Key)
	switch rel {
	case overriddenByExisting:
		// A higher-priority alias is live; the input never promotes.
		return appendDuplicate(s.params[liveKey], frag)

	case overridesExisting:
		if !overwrite {
			return false
		}
		old := s.params[liveKey]
		next := &Parameter{ParameterFragment: frag, Duplicates: old.Duplicates}
		appendDuplicate(next, old.ParameterFragment)
		delete(s.params, liveKey)
		s.params[frag.Key] = next
		s.orderReplace(liveKey, frag.Key)
		if pos.kind != posDefault {
			s.orderMove(frag.Key, pos)
		}
		return true
	}

	if existing, ok := s.params[frag.Key]; ok {
		if !overwrite {
			return false
		}
		changed := false
		if existing.ParameterFragment != frag {
			appendDuplicate(existing, existing.ParameterFragment)
			existing.ParameterFragment = frag
			changed = true
		}
		if pos.kind != posDefault {
			changed = s.orderMove(frag.Key, pos) || changed
		}
		return changed
	}

	s.params[frag.Key] = &Parameter{ParameterFragment: frag}
	s.orderPlace(frag.Key, pos)
	return true
}

// update overwrites an existing parameter in place; it refuses to create a
// new one. The key is resolved against the hierarchy chains first.
func (s *paramStore) update(key, value string) bool {
	frag := s.makeFragment(key, value)
	resolved := frag.Key
	if liveKey, rel := s.checkKeyOverride(frag.Key); rel != overrideNone {
		// Only the live chain member can be updated; a lower-priority input
		// still lands as a duplicate of it.
		if rel == overriddenByExisting {
			return appendDuplicate(s.params[liveKey], frag)
		}
		resolved = liveKey
	}
	if _, ok := s.params[resolved]; !ok {
		return false
	}
	return s.insert(key, value, true, Position{})
}

// get returns a snapshot of the parameter at key. With resolveHierarchy, a
// key belonging to a declared chain resolves to the highest-priority chain
// member currently live (which need not be key itself), falling back to key's
// own parameter.
func (s *paramStore) get(key string, resolveHierarchy bool) (Parameter, bool) {
	if resolveHierarchy {
		if chain := s.chainFor(key); chain != nil {
			for i := len(chain) - 1; i >= 0; i-- {
				if p, ok := s.params[chain[i]]; ok {
					return p.snapshot(), true
				}
			}
		}
	}
	p, ok := s.params[key]
	if !ok {
		return Parameter{}, false
	}
	return p.snapshot(), true
}

func (s *paramStore) hasKey(key string) bool {
	_, ok := s.params[key]
	return ok
}

func (s *paramStore) hasValue(key, value string) bool {
	p, ok := s.params[key]
	return ok && p.Value == value
}

// hasMatch tests live parameters against key and value patterns; a nil
// pattern is unconstrained. When both are given, both must hold on the same
// parameter.
func (s *paramStore) hasMatch(keyPattern, valuePattern *regexp.Regexp) bool {
	for _, k := range s.order {
		p := s.params[k]
		if keyPattern != nil && !keyPattern.MatchString(p.Key) {
			continue
		}
		if valuePattern != nil && !valuePattern.MatchString(p.Value) {
			continue
		}
		return true
	}
	return false
}

func (s *paramStore) hasFunc(pred func(Parameter) bool) bool {
	for _, k := range s.order {
		if pred(s.params[k].snapshot()) {
			return true
		}
	}
	return false
}

// remove deletes the parameter and its order entry. With resolveHierarchy the
// key first resolves to whichever chain member is actually live.
func (s *paramStore) remove(key string, resolveHierarchy bool) bool {
	if _, ok := s.params[key]; !ok && resolveHierarchy {
		if chain := s.chainFor(key); chain != nil {
			for i := len(chain) - 1; i >= 0; i-- {
				if _, ok := s.params[chain[i]]; ok {
					key = chain[i]
					break
				}
			}
		}
	}
	if _, ok := s.params[key]; !ok {
		return false
	}
	delete(s.params, key)
	s.orderRemove(key)
	return true
}

// snapshotAll returns copies of the live parameters in serialization order.
func (s *paramStore) snapshotAll() []Parameter {
	out := make([]Parameter, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.params[k].snapshot())
	}
	return out
}

func (s *paramStore) orderSnapshot() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

func (s *paramStore) clone() *paramStore {
	c := newParamStore()
	c.order = s.orderSnapshot()
	for k, p := range s.params {
		dup := p.snapshot()
		c.params[k] = &dup
	}
	c.setHierarchies(s.hierarchies)
	return c
}

// orderPlace inserts a new key into the order per pos. A missing reference
// key falls back to the end.
func (s *paramStore) orderPlace(key string, pos Position) {
	switch pos.kind {
	case posStart:
		s.order = append([]string{key}, s.order...)
	case posBefore, posAfter:
		idx := s.orderIndex(pos.ref)
		if idx < 0 || pos.ref == key {
			s.order = append(s.order, key)
			return
		}
		if pos.kind == posAfter {
			idx++
		}
		s.order = append(s.order[:idx], append([]string{key}, s.order[idx:]...)...)
	default:
		s.order = append(s.order, key)
	}
}

// orderMove repositions an existing key: it is removed from the order and
// reinserted per the same rules as a new key. A missing reference key, or a
// reference equal to the key itself, leaves the order unchanged.
func (s *paramStore) orderMove(key string, pos Position) bool {
	if (pos.kind == posBefore || pos.kind == posAfter) &&
		(pos.ref == key || s.orderIndex(pos.ref) < 0) {
		return false
	}
	before := s.orderIndex(key)
	s.orderRemove(key)
	s.orderPlace(key, pos)
	return s.orderIndex(key) != before
}

func (s *paramStore) orderReplace(oldKey, newKey string) {
	if idx := s.orderIndex(oldKey); idx >= 0 {
		s.order[idx] = newKey
		return
	}
	s.order = append(s.order, newKey)
}

func (s *paramStore) orderRemove(key string) {
	if idx := s.orderIndex(key); idx >= 0 {
		s.order = append(s.order[:idx], s.order[idx+1:]...)
	}
}

func (s *paramStore) orderIndex(key string) int {
	for i, k := range s.order {
		if k == key {
			return i
		}
	}
	return -1
}
