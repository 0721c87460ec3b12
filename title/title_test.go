package title

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dr4goniez/mwbot-ts-sub003/wikitext"
)

func TestParseNormalization(t *testing.T) {
	c := DefaultCodec()

	cases := []struct {
		name  string
		in    string
		ns    int
		want  string
		wantS string
	}{
		{"ucfirst", "foo", wikitext.NSMain, "Foo", "Foo"},
		{"underscores become spaces", "foo_bar_baz", wikitext.NSMain, "Foo bar baz", "Foo bar baz"},
		{"whitespace collapses", "  foo \t bar  ", wikitext.NSMain, "Foo bar", "Foo bar"},
		{"namespace prefix", "Talk:foo", wikitext.NSMain, "Foo", "Talk:Foo"},
		{"prefix is case-insensitive", "tAlK:foo", wikitext.NSMain, "Foo", "Talk:Foo"},
		{"alias resolves", "Image:x.png", wikitext.NSMain, "X.png", "File:X.png"},
		{"prefix with underscores", "project_talk:foo", wikitext.NSMain, "Foo", "Project talk:Foo"},
		{"default namespace applies", "foo", wikitext.NSTemplate, "Foo", "Template:Foo"},
		{"explicit prefix beats default", "Help:foo", wikitext.NSTemplate, "Foo", "Help:Foo"},
		{"colon pins to main", ":foo", wikitext.NSTemplate, "Foo", "Foo"},
		{"subpage slash is plain text", "Foo/bar", wikitext.NSMain, "Foo/bar", "Foo/bar"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := c.Parse(tc.in, tc.ns)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.Text())
			assert.Equal(t, tc.wantS, got.String())
		})
	}
}

func TestParseFragment(t *testing.T) {
	c := DefaultCodec()

	got, err := c.Parse("Foo#History of bar", wikitext.NSMain)
	require.NoError(t, err)
	assert.Equal(t, "Foo", got.Text())
	assert.Equal(t, "History of bar", got.Fragment())
	assert.Equal(t, "Foo#History of bar", got.String())
}

func TestParseLeadingColon(t *testing.T) {
	c := DefaultCodec()

	got, err := c.Parse(":Category:Books", wikitext.NSMain)
	require.NoError(t, err)
	assert.True(t, got.HadLeadingColon())
	assert.Equal(t, wikitext.NSCategory, got.NamespaceID())
	assert.Equal(t, "Category:Books", got.PrefixedText())
}

func TestParseInterwiki(t *testing.T) {
	c, err := NewCodec(defaultNamespaces, []string{"wikt", "commons"})
	require.NoError(t, err)

	got, err := c.Parse("wikt:dictionary", wikitext.NSTemplate)
	require.NoError(t, err)
	assert.True(t, got.IsExternal())
	assert.Equal(t, "wikt", got.Interwiki())
	assert.Equal(t, wikitext.NSMain, got.NamespaceID())
	// Foreign titles are passed through without first-letter folding.
	assert.Equal(t, "dictionary", got.Text())
	assert.Equal(t, "wikt:dictionary", got.PrefixedText())
}

func TestParseCaseSensitiveNamespace(t *testing.T) {
	c, err := NewCodec([]Namespace{
		{ID: wikitext.NSMain},
		{ID: 828, Name: "Module", CaseSensitive: true},
	}, nil)
	require.NoError(t, err)

	got, err := c.Parse("Module:string", wikitext.NSMain)
	require.NoError(t, err)
	assert.Equal(t, "string", got.Text())

	got, err = c.Parse("bare page", wikitext.NSMain)
	require.NoError(t, err)
	assert.Equal(t, "Bare page", got.Text())
}

func TestParseErrors(t *testing.T) {
	c := DefaultCodec()

	cases := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
		{"bare colon", ":"},
		{"prefix only", "Talk:"},
		{"fragment only", "#History"},
		{"angle bracket", "a<b"},
		{"pipe", "a|b"},
		{"braces", "a{b}"},
		{"percent escape", "a%20b"},
		{"html entity", "a&amp;b"},
		{"control char", "a\x07b"},
		{"relative segment", "Foo/../Bar"},
		{"dot segment", "./Foo"},
		{"signature", "Foo~~~"},
		{"overlong", strings.Repeat("a", 256)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := c.Parse(tc.in, wikitext.NSMain)
			require.Error(t, err)
			var perr *ParseError
			assert.ErrorAs(t, err, &perr)
		})
	}
}

func TestParseUnknownDefaultNamespace(t *testing.T) {
	c := DefaultCodec()
	_, err := c.Parse("Foo", 9999)
	require.Error(t, err)
}

func TestParseLengthBoundary(t *testing.T) {
	c := DefaultCodec()
	_, err := c.Parse(strings.Repeat("a", 255), wikitext.NSMain)
	assert.NoError(t, err)
}

func TestTitleEqual(t *testing.T) {
	c := DefaultCodec()

	a := c.MustParse("foo_bar", wikitext.NSMain)
	b := c.MustParse("Foo bar#Section", wikitext.NSMain)
	assert.True(t, a.Equal(b), "fragments do not participate in identity")

	other := c.MustParse("Talk:Foo bar", wikitext.NSMain)
	assert.False(t, a.Equal(other))
	assert.False(t, a.Equal(nil))
}

func TestNewCodecValidation(t *testing.T) {
	_, err := NewCodec(nil, nil)
	assert.Error(t, err)

	// A table without the main namespace is unusable.
	_, err = NewCodec([]Namespace{{ID: 10, Name: "Template"}}, nil)
	assert.Error(t, err)
}

func TestNamespaceName(t *testing.T) {
	c := DefaultCodec()

	name, ok := c.NamespaceName(wikitext.NSCategory)
	require.True(t, ok)
	assert.Equal(t, "Category", name)

	_, ok = c.NamespaceName(9999)
	assert.False(t, ok)
}

func TestParseErrorMessage(t *testing.T) {
	c := DefaultCodec()
	_, err := c.Parse("a|b", wikitext.NSMain)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"a|b"`)
}
