package wikitext

import "regexp"

// OrderedList is a plain ordered sequence of positional string values, used
// for parser-function arguments and file-link parameters. Slots may be sparse:
// Delete can leave a hole and Set can create a slot past the current end.
// Indices are never validated beyond "does a value exist there"; out-of-range
// reads simply report not-found.
type OrderedList struct {
	values []*string
}

// NewOrderedList creates a list seeded with the given values.
func NewOrderedList(values ...string) *OrderedList {
	l := &OrderedList{}
	l.Add(values...)
	return l
}

// SetOptions controls Set behavior. The zero value permits both overwriting
// an existing slot and creating a new one.
type SetOptions struct {
	// NoOverwrite refuses to replace an existing value.
	NoOverwrite bool
	// IfExist refuses to create a new slot when none exists at the index.
	IfExist bool
}

// Add appends values after the last slot.
func (l *OrderedList) Add(values ...string) {
	for _, v := range values {
		v := v
		l.values = append(l.values, &v)
	}
}

// Set assigns value at index, growing the list if needed. It returns false
// without mutating when opts constraints fail. A nil opts applies defaults.
func (l *OrderedList) Set(index int, value string, opts *SetOptions) bool {
	if index < 0 {
		return false
	}
	if opts == nil {
		opts = &SetOptions{}
	}
	exists := l.Has(index)
	if exists && opts.NoOverwrite {
		return false
	}
	if !exists && opts.IfExist {
		return false
	}
	for len(l.values) <= index {
		l.values = append(l.values, nil)
	}
	v := value
	l.values[index] = &v
	return true
}

// Get returns the value at index, or false if no value exists there.
func (l *OrderedList) Get(index int) (string, bool) {
	if index < 0 || index >= len(l.values) || l.values[index] == nil {
		return "", false
	}
	return *l.values[index], true
}

// Has reports whether a value exists at index.
func (l *OrderedList) Has(index int) bool {
	_, ok := l.Get(index)
	return ok
}

// HasValue reports whether the value at index exists and equals value.
func (l *OrderedList) HasValue(index int, value string) bool {
	v, ok := l.Get(index)
	return ok && v == value
}

// HasMatch reports whether the value at index exists and matches pattern.
// A nil pattern matches any existing value.
func (l *OrderedList) HasMatch(index int, pattern *regexp.Regexp) bool {
	v, ok := l.Get(index)
	if !ok {
		return false
	}
	return pattern == nil || pattern.MatchString(v)
}

// HasFunc reports whether pred holds for any live index/value pair.
func (l *OrderedList) HasFunc(pred func(index int, value string) bool) bool {
	for i, v := range l.values {
		if v != nil && pred(i, *v) {
			return true
		}
	}
	return false
}

// Delete removes the value at index. With leftShift the remaining slots are
// compacted; otherwise a hole is left in place. It returns false if no value
// existed at the index.
func (l *OrderedList) Delete(index int, leftShift bool) bool {
	if !l.Has(index) {
		return false
	}
	if leftShift {
		l.values = append(l.values[:index], l.values[index+1:]...)
	} else {
		l.values[index] = nil
	}
	return true
}

// Len returns the number of slots, holes included.
func (l *OrderedList) Len() int {
	return len(l.values)
}

// Values returns the live values in index order, skipping holes.
func (l *OrderedList) Values() []string {
	out := make([]string, 0, len(l.values))
	for _, v := range l.values {
		if v != nil {
			out = append(out, *v)
		}
	}
	return out
}

// Clone returns a deep copy of the list.
func (l *OrderedList) Clone() *OrderedList {
	c := &OrderedList{values: make([]*string, len(l.values))}
	for i, v := range l.values {
		if v != nil {
			dup := *v
			c.values[i] = &dup
		}
	}
	return c
}
