package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `<?xml version="1.0" encoding="UTF-8" standalone="yes" ?>
<!-- written by hand -->
<movie xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">
  <title>Heat &amp; Dust</title>
  <plot>line one
line two</plot>
  <custom_field source="me">keep me</custom_field>
  <actor>
    <name>Al Pacino</name>
    <role>Vincent</role>
  </actor>
  <!-- inner -->
  <empty/>
</movie>
https://www.imdb.com/title/tt0113277/
`

func TestParse_Structure(t *testing.T) {
	doc, err := Parse([]byte(sample))
	require.NoError(t, err)
	require.NotNil(t, doc.Root)

	assert.Equal(t, "movie", doc.Root.Name)
	require.Len(t, doc.Prolog, 1)
	assert.Equal(t, " written by hand ", doc.Prolog[0].Text)

	v, ok := doc.Root.Attr("xmlns:xsi")
	assert.True(t, ok, "命名空间前缀必须原样保留")
	assert.Equal(t, "http://www.w3.org/2001/XMLSchema-instance", v)

	assert.Equal(t, "Heat & Dust", doc.Root.ChildText("title"))
	assert.Equal(t, "line one\nline two", doc.Root.Child("plot").Text)
	assert.Equal(t, "Vincent", doc.Root.Child("actor").ChildText("role"))
	assert.Equal(t, "https://www.imdb.com/title/tt0113277/", doc.Trailer)

	empty := doc.Root.Child("empty")
	require.NotNil(t, empty)
	assert.Equal(t, "", empty.Text)
}

func TestParse_EmptyInputIsEmptyDocument(t *testing.T) {
	for _, in := range []string{"", "  \n\t", "\xef\xbb\xbf"} {
		doc, err := Parse([]byte(in))
		require.NoError(t, err)
		assert.True(t, doc.Empty())
	}
}

func TestParse_Malformed(t *testing.T) {
	cases := map[string]string{
		"mismatch":    "<movie><title>x</plot></movie>",
		"unclosed":    "<movie><title>x</title>",
		"two-roots":   "<movie></movie><movie></movie>",
		"text-first":  "hello <movie></movie>",
		"no-root":     "just some text",
		"bad-entity":  "<movie><title>&bogus;</title></movie>",
		"stray-close": "</movie>",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(in))
			require.Error(t, err)
			var se *SyntaxError
			assert.ErrorAs(t, err, &se)
		})
	}
}

func TestParse_HTMLEntityAccepted(t *testing.T) {
	doc, err := Parse([]byte("<movie><title>a&nbsp;b</title></movie>"))
	require.NoError(t, err)
	assert.Equal(t, "a\u00a0b", doc.Root.ChildText("title"))
}

func TestParse_Latin1Declaration(t *testing.T) {
	in := append([]byte(`<?xml version="1.0" encoding="ISO-8859-1"?><movie><title>Am`), 0xe9, 'l', 'i', 'e')
	in = append(in, []byte("</title></movie>")...)
	doc, err := Parse(in)
	require.NoError(t, err)
	assert.Equal(t, "Amélie", doc.Root.ChildText("title"))
}

func TestMarshal_FixedPoint(t *testing.T) {
	doc, err := Parse([]byte(sample))
	require.NoError(t, err)
	first := Marshal(doc)

	again, err := Parse(first)
	require.NoError(t, err)
	second := Marshal(again)

	assert.Equal(t, string(first), string(second))
}

func TestMarshal_Format(t *testing.T) {
	doc := &Document{Root: NewContainer("movie",
		NewLeaf("title", `A <B> & "C"`),
		NewLeaf("plot", ""),
		&Element{Name: "uniqueid", Attrs: []Attr{{Name: "type", Value: `im"db`}}, Text: "tt1"},
		NewContainer("actor", NewLeaf("name", "X")),
	)}
	want := Header + "\n" +
		"<movie>\n" +
		"  <title>A &lt;B&gt; &amp; \"C\"</title>\n" +
		"  <plot />\n" +
		"  <uniqueid type=\"im&quot;db\">tt1</uniqueid>\n" +
		"  <actor>\n" +
		"    <name>X</name>\n" +
		"  </actor>\n" +
		"</movie>\n"
	assert.Equal(t, want, string(Marshal(doc)))
}

func TestMarshal_CarriageReturnSurvivesRoundTrip(t *testing.T) {
	doc := &Document{Root: NewContainer("movie", NewLeaf("plot", "a\r\nb"))}
	out := Marshal(doc)
	back, err := Parse(out)
	require.NoError(t, err)
	assert.Equal(t, "a\r\nb", back.Root.Child("plot").Text)
}

func TestClone_Deep(t *testing.T) {
	orig := NewContainer("actor", NewLeaf("name", "X"))
	cp := orig.Clone()
	cp.Children[0].Text = "Y"
	assert.Equal(t, "X", orig.Children[0].Text)
}
