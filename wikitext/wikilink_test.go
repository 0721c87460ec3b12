package wikitext_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dr4goniez/mwbot-ts-sub003/title"
	"github.com/Dr4goniez/mwbot-ts-sub003/wikitext"
)

func TestWikilinkStringify(t *testing.T) {
	codec := testCodec(t)
	w, err := wikitext.NewWikilink(codec.MustParse("foo bar", wikitext.NSMain))
	require.NoError(t, err)

	assert.Equal(t, "[[Foo bar]]", w.String())

	w.SetDisplay("the foos")
	assert.Equal(t, "[[Foo bar|the foos]]", w.String())

	// An empty display is distinct from no display.
	w.SetDisplay("")
	assert.Equal(t, "[[Foo bar|]]", w.String())
	d, ok := w.Display()
	assert.True(t, ok)
	assert.Equal(t, "", d)

	w.ClearDisplay()
	assert.Equal(t, "[[Foo bar]]", w.String())
	_, ok = w.Display()
	assert.False(t, ok)
}

func TestWikilinkFragmentAndColon(t *testing.T) {
	codec := testCodec(t)

	w, err := wikitext.NewWikilink(codec.MustParse("Foo#History", wikitext.NSMain))
	require.NoError(t, err)
	assert.Equal(t, "[[Foo#History]]", w.String())

	w, err = wikitext.NewWikilink(codec.MustParse(":Category:Books", wikitext.NSMain))
	require.NoError(t, err)
	assert.Equal(t, "[[:Category:Books]]", w.String())
}

func TestFileWikilink(t *testing.T) {
	codec := testCodec(t)

	f, err := wikitext.NewFileWikilink(codec.MustParse("File:X.png", wikitext.NSMain), "thumb", "caption")
	require.NoError(t, err)
	assert.Equal(t, "[[File:X.png|thumb|caption]]", f.String())

	f.Params().Add("200px")
	assert.Equal(t, "[[File:X.png|thumb|caption|200px]]", f.String())

	// The Image alias resolves into the File namespace.
	f, err = wikitext.NewFileWikilink(codec.MustParse("image:x.png", wikitext.NSMain))
	require.NoError(t, err)
	assert.Equal(t, "[[File:X.png]]", f.String())
}

func TestNewFileWikilinkRejects(t *testing.T) {
	codec := testCodec(t)

	_, err := wikitext.NewFileWikilink(codec.MustParse("Foo", wikitext.NSMain))
	assert.ErrorIs(t, err, wikitext.ErrWrongNamespace)

	// A leading colon makes the construct a link, not an embed.
	_, err = wikitext.NewFileWikilink(codec.MustParse(":File:X.png", wikitext.NSMain))
	assert.ErrorIs(t, err, wikitext.ErrWrongNamespace)
}

func TestWikilinkFileConversions(t *testing.T) {
	codec := testCodec(t)

	w, err := wikitext.NewWikilink(codec.MustParse("File:X.png", wikitext.NSMain))
	require.NoError(t, err)
	w.SetDisplay("thumb|caption")

	f, err := w.ToFileWikilink()
	require.NoError(t, err)
	assert.Equal(t, []string{"thumb", "caption"}, f.Params().Values())
	assert.Equal(t, "[[File:X.png|thumb|caption]]", f.String())

	// The receiver is untouched.
	assert.Equal(t, "[[File:X.png|thumb|caption]]", w.String())

	back, err := f.ToWikilink()
	require.NoError(t, err)
	d, ok := back.Display()
	require.True(t, ok)
	assert.Equal(t, "thumb|caption", d)

	raw := f.ToRawWikilink()
	assert.Equal(t, "File:X.png", raw.Title())
	assert.Equal(t, "[[File:X.png|thumb|caption]]", raw.String())
}

func TestRawWikilinkPromotion(t *testing.T) {
	codec := testCodec(t)

	raw := wikitext.NewRawWikilink(" foo ")
	raw.SetDisplay("bar")
	assert.Equal(t, "[[ foo |bar]]", raw.String())

	w, err := raw.ToWikilink(codec)
	require.NoError(t, err)
	assert.Equal(t, "[[Foo|bar]]", w.String())

	f, err := wikitext.NewRawWikilink("image:x.png").ToFileWikilink(codec)
	require.NoError(t, err)
	assert.Equal(t, "[[File:X.png]]", f.String())

	_, err = wikitext.NewRawWikilink("<x>").ToWikilink(codec)
	require.ErrorIs(t, err, wikitext.ErrInvalidTitle)
	var perr *title.ParseError
	assert.ErrorAs(t, err, &perr)
}

func TestParsedWikilinkRoundTrip(t *testing.T) {
	codec := testCodec(t)
	src := "[[ foo |bar]]"
	init := &wikitext.WikilinkInitializer{
		Title:    " foo ",
		RawTitle: " " + wikitext.RawTitleMarker + " ",
		Text:     src,
		EndIndex: len(src),
		Params:   []string{"bar"},
	}

	pw, err := wikitext.NewParsedWikilink(init, codec)
	require.NoError(t, err)

	assert.Equal(t, "[[Foo|bar]]", pw.String())
	assert.Equal(t, src, pw.Stringify(&wikitext.WikilinkStringifyOptions{RawTitle: true}))
	assert.Equal(t, src, pw.Text())

	d, ok := pw.Display()
	require.True(t, ok)
	assert.Equal(t, "bar", d)
}

func TestParsedWikilinkNilParams(t *testing.T) {
	codec := testCodec(t)

	pw, err := wikitext.NewParsedWikilink(&wikitext.WikilinkInitializer{Title: "Foo"}, codec)
	require.NoError(t, err)
	_, ok := pw.Display()
	assert.False(t, ok)
	assert.Equal(t, "[[Foo]]", pw.String())

	// A trailing pipe parses as one empty segment, not as no display.
	pw, err = wikitext.NewParsedWikilink(&wikitext.WikilinkInitializer{
		Title:  "Foo",
		Params: []string{""},
	}, codec)
	require.NoError(t, err)
	assert.Equal(t, "[[Foo|]]", pw.String())
}

func TestParsedWikilinkToFileWikilink(t *testing.T) {
	codec := testCodec(t)
	init := &wikitext.WikilinkInitializer{
		Title:  "File:X.png",
		Params: []string{"thumb", "caption"},
	}

	pw, err := wikitext.NewParsedWikilink(init, codec)
	require.NoError(t, err)
	// As a plain link the segments join into one display string.
	assert.Equal(t, "[[File:X.png|thumb|caption]]", pw.String())
	d, _ := pw.Display()
	assert.Equal(t, "thumb|caption", d)

	// Conversion re-derives from the scanner record; mutations are discarded.
	pw.SetDisplay("changed")

	pf, err := pw.ToFileWikilink(codec)
	require.NoError(t, err)
	assert.Equal(t, []string{"thumb", "caption"}, pf.Params().Values())
}

func TestParsedFileWikilinkRoundTrip(t *testing.T) {
	codec := testCodec(t)
	src := "[[ File:X.png |thumb|caption]]"
	init := &wikitext.WikilinkInitializer{
		Title:    " File:X.png ",
		RawTitle: " " + wikitext.RawTitleMarker + " ",
		Text:     src,
		EndIndex: len(src),
		Params:   []string{"thumb", "caption"},
	}

	pf, err := wikitext.NewParsedFileWikilink(init, codec)
	require.NoError(t, err)
	assert.Equal(t, "[[File:X.png|thumb|caption]]", pf.String())
	assert.Equal(t, src, pf.Stringify(&wikitext.WikilinkStringifyOptions{RawTitle: true}))

	back, err := pf.ToWikilink(codec)
	require.NoError(t, err)
	d, ok := back.Display()
	require.True(t, ok)
	assert.Equal(t, "thumb|caption", d)
}

func TestParsedFileWikilinkRejects(t *testing.T) {
	codec := testCodec(t)

	_, err := wikitext.NewParsedFileWikilink(&wikitext.WikilinkInitializer{Title: "Foo"}, codec)
	assert.ErrorIs(t, err, wikitext.ErrWrongNamespace)

	_, err = wikitext.NewParsedFileWikilink(&wikitext.WikilinkInitializer{Title: ":File:X.png"}, codec)
	assert.ErrorIs(t, err, wikitext.ErrWrongNamespace)

	_, err = wikitext.NewParsedFileWikilink(nil, codec)
	assert.ErrorIs(t, err, wikitext.ErrBadInitializer)
}

func TestParsedRawWikilinkPromotion(t *testing.T) {
	codec := testCodec(t)
	init := &wikitext.WikilinkInitializer{
		Title:  "image:x.png",
		Params: []string{"thumb"},
	}

	pr, err := wikitext.NewParsedRawWikilink(init)
	require.NoError(t, err)
	assert.Equal(t, "[[image:x.png|thumb]]", pr.String())

	pw, err := pr.ToParsedWikilink(codec)
	require.NoError(t, err)
	assert.Equal(t, "[[File:X.png|thumb]]", pw.String())

	pf, err := pr.ToParsedFileWikilink(codec)
	require.NoError(t, err)
	assert.Equal(t, []string{"thumb"}, pf.Params().Values())

	bad, err := wikitext.NewParsedRawWikilink(&wikitext.WikilinkInitializer{Title: "<x>"})
	require.NoError(t, err)
	_, err = bad.ToParsedWikilink(codec)
	assert.ErrorIs(t, err, wikitext.ErrInvalidTitle)
}

func TestParsedWikilinkInitializerIsolation(t *testing.T) {
	codec := testCodec(t)
	init := &wikitext.WikilinkInitializer{Title: "Foo", Params: []string{"bar"}}

	pw, err := wikitext.NewParsedWikilink(init, codec)
	require.NoError(t, err)

	init.Params[0] = "changed"
	assert.Equal(t, "[[Foo|bar]]", pw.String())

	snap := pw.Initializer()
	snap.Params[0] = "other"
	assert.Equal(t, "bar", pw.Initializer().Params[0])
}
