// Package richtext handles the HTML produced by the admin rich-text editor:
// sanitizing it for display, rendering it as a templ component, and deriving
// plain text, excerpts and reading-time estimates from it.
package richtext

import (
	"context"
	"fmt"
	"io"
	"math"
	"regexp"
	"strings"
	"sync"

	"github.com/a-h/templ"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

// WordsPerMinute is the reading speed used by ReadingTime.
const WordsPerMinute = 200

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy

	// color: #5eeae3 / rgb(94, 234, 227) as emitted by the editor's colour tool
	reColor = regexp.MustCompile(`^(#[0-9a-fA-F]{3,8}|rgba?\(\s*\d{1,3}\s*,\s*\d{1,3}\s*,\s*\d{1,3}\s*(,\s*[0-9.]+\s*)?\))$`)
)

func sanitizer() *bluemonday.Policy {
	policyOnce.Do(func() {
		p := bluemonday.UGCPolicy()
		p.AllowElements("span", "mark", "s", "u", "figure", "figcaption")
		p.AllowAttrs("src", "alt", "title", "width", "height").OnElements("img")
		p.AllowStyles("color").Matching(reColor).OnElements("span", "mark", "p")
		p.AllowStyles("text-align").MatchingEnum("left", "right", "center", "justify").OnElements("p", "h1", "h2", "h3", "h4")
		p.RequireNoReferrerOnLinks(true)
		p.AddTargetBlankToFullyQualifiedLinks(true)
		policy = p
	})
	return policy
}

// Sanitize strips anything outside the editor's allow-list from content.
func Sanitize(content string) string {
	return sanitizer().Sanitize(content)
}

// HTML returns a templ.Component that renders sanitized content.
func HTML(content string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, Sanitize(content))
		return err
	})
}

// PlainText returns the text nodes of content joined by single spaces.
func PlainText(content string) string {
	z := html.NewTokenizer(strings.NewReader(content))
	var b strings.Builder
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.StartTagToken:
			if name, _ := z.TagName(); isRawText(string(name)) {
				skip++
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); isRawText(string(name)) && skip > 0 {
				skip--
			}
			b.WriteByte(' ')
		case html.SelfClosingTagToken:
			b.WriteByte(' ')
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}
}

func isRawText(tag string) bool {
	return tag == "script" || tag == "style"
}

// WordCount counts whitespace-separated words in the plain text of content.
func WordCount(content string) int {
	return len(strings.Fields(PlainText(content)))
}

// ReadingMinutes is round(words / WordsPerMinute), never less than one.
func ReadingMinutes(content string) int {
	n := int(math.Round(float64(WordCount(content)) / WordsPerMinute))
	if n < 1 {
		return 1
	}
	return n
}

// ReadingTime formats ReadingMinutes as "N min read".
func ReadingTime(content string) string {
	return fmt.Sprintf("%d min read", ReadingMinutes(content))
}

// Excerpt returns at most max runes of plain text, cut at a word boundary
// and suffixed with an ellipsis when truncated.
func Excerpt(content string, max int) string {
	text := PlainText(content)
	r := []rune(text)
	if len(r) <= max {
		return text
	}
	cut := string(r[:max])
	if i := strings.LastIndexByte(cut, ' '); i > max/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}

// IsEmpty reports whether content has no text and no embedded media, which
// is what an untouched editor submits ("<p></p>", "<p><br></p>", "").
func IsEmpty(content string) bool {
	if strings.TrimSpace(PlainText(content)) != "" {
		return false
	}
	z := html.NewTokenizer(strings.NewReader(content))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return true
		}
		if tt == html.StartTagToken || tt == html.SelfClosingTagToken {
			name, _ := z.TagName()
			switch string(name) {
			case "img", "video", "iframe", "hr":
				return false
			}
		}
	}
}
