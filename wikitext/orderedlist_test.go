package wikitext

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderedListAddGet(t *testing.T) {
	l := NewOrderedList("a", "b")
	l.Add("c")

	v, ok := l.Get(0)
	assert.True(t, ok)
	assert.Equal(t, "a", v)

	v, ok = l.Get(2)
	assert.True(t, ok)
	assert.Equal(t, "c", v)

	assert.Equal(t, []string{"a", "b", "c"}, l.Values())
	assert.Equal(t, 3, l.Len())
}

func TestOrderedListOutOfRange(t *testing.T) {
	l := NewOrderedList("a")

	_, ok := l.Get(5)
	assert.False(t, ok)
	_, ok = l.Get(-1)
	assert.False(t, ok)
	assert.False(t, l.Has(100))
}

func TestOrderedListSet(t *testing.T) {
	t.Run("overwrites by default", func(t *testing.T) {
		l := NewOrderedList("a")
		assert.True(t, l.Set(0, "z", nil))
		assert.Equal(t, []string{"z"}, l.Values())
	})

	t.Run("NoOverwrite refuses existing slot", func(t *testing.T) {
		l := NewOrderedList("a")
		assert.False(t, l.Set(0, "z", &SetOptions{NoOverwrite: true}))
		assert.Equal(t, []string{"a"}, l.Values())
	})

	t.Run("IfExist refuses new slot", func(t *testing.T) {
		l := NewOrderedList("a")
		assert.False(t, l.Set(3, "z", &SetOptions{IfExist: true}))
		assert.Equal(t, 1, l.Len())
	})

	t.Run("creates sparse slot past the end", func(t *testing.T) {
		l := NewOrderedList("a")
		assert.True(t, l.Set(3, "z", nil))
		assert.Equal(t, 4, l.Len())
		assert.False(t, l.Has(1))
		assert.True(t, l.HasValue(3, "z"))
		assert.Equal(t, []string{"a", "z"}, l.Values())
	})

	t.Run("negative index", func(t *testing.T) {
		l := NewOrderedList()
		assert.False(t, l.Set(-1, "z", nil))
	})
}

func TestOrderedListDelete(t *testing.T) {
	t.Run("left shift compacts", func(t *testing.T) {
		l := NewOrderedList("a", "b", "c")
		assert.True(t, l.Delete(1, true))
		assert.Equal(t, []string{"a", "c"}, l.Values())
		assert.True(t, l.HasValue(1, "c"))
	})

	t.Run("hole preserves indices", func(t *testing.T) {
		l := NewOrderedList("a", "b", "c")
		assert.True(t, l.Delete(1, false))
		assert.Equal(t, 3, l.Len())
		assert.False(t, l.Has(1))
		assert.True(t, l.HasValue(2, "c"))
	})

	t.Run("missing index", func(t *testing.T) {
		l := NewOrderedList("a")
		assert.False(t, l.Delete(7, true))
	})
}

func TestOrderedListMatchers(t *testing.T) {
	l := NewOrderedList("thumb", "200px", "the caption")

	assert.True(t, l.HasMatch(1, regexp.MustCompile(`^\d+px$`)))
	assert.False(t, l.HasMatch(0, regexp.MustCompile(`^\d+px$`)))
	assert.True(t, l.HasMatch(2, nil))
	assert.False(t, l.HasMatch(9, nil))

	assert.True(t, l.HasFunc(func(i int, v string) bool { return i == 2 && v == "the caption" }))
	assert.False(t, l.HasFunc(func(i int, v string) bool { return v == "absent" }))
}

func TestOrderedListClone(t *testing.T) {
	l := NewOrderedList("a", "b")
	l.Delete(0, false)

	c := l.Clone()
	c.Set(0, "z", nil)
	c.Set(1, "y", nil)

	assert.False(t, l.Has(0))
	v, _ := l.Get(1)
	assert.Equal(t, "b", v)
}
