package cms

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"
)

const wordsPerMinute = 200

var (
	markdown = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
	)
	contentPolicy = newContentHTMLPolicy()
)

func newContentHTMLPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("figure", "figcaption")
	policy.AllowAttrs("class").OnElements("figure", "figcaption", "p", "span", "div", "table")
	policy.AllowAttrs("loading").OnElements("img")
	// internal links keep their link equity
	policy.RequireNoFollowOnLinks(false)
	policy.RequireNoFollowOnFullyQualifiedLinks(true)
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	return policy
}

type renderedMarkdown struct {
	html     template.HTML
	headings []Heading
	words    int
}

func renderMarkdown(body string) (renderedMarkdown, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(body), &buf); err != nil {
		return renderedMarkdown{}, err
	}
	clean := contentPolicy.SanitizeBytes(buf.Bytes())

	doc, err := html.Parse(bytes.NewReader(clean))
	if err != nil {
		return renderedMarkdown{}, err
	}
	out := renderedMarkdown{html: template.HTML(clean)}
	walkRendered(doc, &out)
	return out, nil
}

func walkRendered(n *html.Node, out *renderedMarkdown) {
	switch n.Type {
	case html.TextNode:
		out.words += len(strings.Fields(n.Data))
		return
	case html.ElementNode:
		switch n.Data {
		case "script", "style":
			return
		case "h2", "h3":
			if id := attr(n, "id"); id != "" {
				out.headings = append(out.headings, Heading{
					Level: int(n.Data[1] - '0'),
					ID:    id,
					Text:  strings.Join(strings.Fields(textContent(n)), " "),
				})
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkRendered(c, out)
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textContent(c))
	}
	return sb.String()
}

// readingMinutes rounds up at 200 words per minute, never below one.
func readingMinutes(words int) int {
	if words <= 0 {
		return 1
	}
	return (words + wordsPerMinute - 1) / wordsPerMinute
}
