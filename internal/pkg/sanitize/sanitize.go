package sanitize

import (
	"bytes"
	stdhtml "html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Cleaner strips markup from plain text and renders Markdown to sanitized HTML.
// It is safe for concurrent use.
type Cleaner struct {
	strip *bluemonday.Policy
	ugc   *bluemonday.Policy
	md    goldmark.Markdown
}

func New() *Cleaner {
	ugc := bluemonday.UGCPolicy()
	ugc.AllowElements("table", "thead", "tbody", "tr", "th", "td")
	return &Cleaner{
		strip: bluemonday.StripTagsPolicy(),
		ugc:   ugc,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Typographer),
			goldmark.WithRendererOptions(
				html.WithHardWraps(),
				html.WithUnsafe(), // raw HTML is passed through and then cleaned by the UGC policy
			),
		),
	}
}

// maxTextPasses bounds how many entity layers Text peels off.
const maxTextPasses = 8

var angleBrackets = strings.NewReplacer("<", "", ">", "")

// Text removes every HTML tag and surrounding whitespace.
// bluemonday escapes the remaining text, so entities are unescaped back for JSON storage.
// Unescaping can reveal entity-encoded tags, so stripping repeats until the output is stable.
func (c *Cleaner) Text(s string) string {
	out := strings.TrimSpace(s)
	for i := 0; i < maxTextPasses; i++ {
		next := strings.TrimSpace(stdhtml.UnescapeString(c.strip.Sanitize(out)))
		if next == out {
			return out
		}
		out = next
	}
	return angleBrackets.Replace(out)
}

// Markdown converts s to HTML and applies the UGC policy. Empty input renders to "".
func (c *Cleaner) Markdown(s string) (string, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := c.md.Convert([]byte(s), &buf); err != nil {
		return "", err
	}
	return strings.TrimSpace(c.ugc.Sanitize(buf.String())), nil
}
