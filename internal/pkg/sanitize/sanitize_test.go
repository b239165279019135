package sanitize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestText_StripsTags(t *testing.T) {
	c := New()
	assert.Equal(t, "Hello world", c.Text("  <b>Hello</b> <script>alert(1)</script>world "))
}

func TestText_KeepsPunctuation(t *testing.T) {
	c := New()
	assert.Equal(t, `Tom & Jerry's "kit"`, c.Text(`Tom & Jerry's "kit"`))
}

func TestText_EntityEncodedTags(t *testing.T) {
	c := New()
	cases := map[string]string{
		"encoded img":        `&lt;img src=x onerror=alert(1)&gt;hello`,
		"double encoded":     `&amp;lt;script&amp;gt;alert(1)&amp;lt;/script&amp;gt;hi`,
		"numeric references": `&#60;b onclick=x&#62;bold&#60;/b&#62;`,
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			out := c.Text(in)
			assert.NotContains(t, out, "<")
			assert.NotContains(t, out, "onerror")
			assert.NotContains(t, out, "onclick")
		})
	}
	assert.Equal(t, "hello", c.Text(`&lt;img src=x onerror=alert(1)&gt;hello`))
}

func TestText_DeeplyNestedEntitiesLoseBrackets(t *testing.T) {
	c := New()
	in := "<i>x</i>"
	for i := 0; i < maxTextPasses; i++ {
		in = strings.ReplaceAll(in, "&", "&amp;")
		in = strings.NewReplacer("<", "&lt;", ">", "&gt;").Replace(in)
	}
	assert.Equal(t, "ix/i", c.Text(in))
}

func TestText_PlainComparisonSurvives(t *testing.T) {
	c := New()
	assert.Equal(t, "a < b", c.Text("a < b"))
}

func TestMarkdown_RendersAndSanitizes(t *testing.T) {
	c := New()
	out, err := c.Markdown("**Yes**, conversion takes a day.\n\n<script>alert(1)</script>")
	require.NoError(t, err)
	assert.Contains(t, out, "<strong>Yes</strong>")
	assert.NotContains(t, out, "<script>")
}

func TestMarkdown_Empty(t *testing.T) {
	c := New()
	out, err := c.Markdown("   ")
	require.NoError(t, err)
	assert.Empty(t, out)
}
