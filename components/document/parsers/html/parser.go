// Package html converts HTML documents to markdown. Page chrome such as scripts, navigation,
// headers and footers is dropped so only the main content reaches the index.
package html

import (
	"context"
	"io"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/PuerkitoBio/goquery"

	"github.com/bububa/purecheck/components/document"
)

var (
	// DefaultStrip lists the elements removed before conversion
	DefaultStrip = []string{"script", "style", "noscript", "nav", "header", "footer", "aside", "form"}
	// DefaultContent lists the selectors tried in order to find the main content
	DefaultContent = []string{"main", "#content, #main", ".content, .main", "article", "body"}
)

var blankLines = regexp.MustCompile(`\r?\n(\s*\r?\n)+`)

// Parser is a parser which parse html content to markdown
type Parser struct {
	opts    []converter.ConvertOptionFunc
	strip   []string
	content []string
	title   bool
}

var _ document.Parser = (*Parser)(nil)

type Option func(*Parser)

// WithConvertOptions passes options to the markdown converter
func WithConvertOptions(opts ...converter.ConvertOptionFunc) Option {
	return func(p *Parser) {
		p.opts = opts
	}
}

func WithStrip(selectors ...string) Option {
	return func(p *Parser) {
		p.strip = selectors
	}
}

func WithContentSelectors(selectors ...string) Option {
	return func(p *Parser) {
		p.content = selectors
	}
}

// WithTitle prepends the page title as a heading when the content has none
func WithTitle(on bool) Option {
	return func(p *Parser) {
		p.title = on
	}
}

func NewParser(opts ...Option) *Parser {
	ret := &Parser{
		strip:   DefaultStrip,
		content: DefaultContent,
		title:   true,
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Parse converts the main content of an html page into markdown and writes it to writer
func (h *Parser) Parse(ctx context.Context, reader document.ParserReader, writer io.Writer) error {
	doc, err := goquery.NewDocumentFromReader(io.NewSectionReader(reader, 0, reader.Size()))
	if err != nil {
		return err
	}
	title := strings.TrimSpace(doc.Find("head title").First().Text())
	main, err := h.mainContent(doc)
	if err != nil {
		return err
	}
	bs, err := htmltomarkdown.ConvertString(main, h.opts...)
	if err != nil {
		return err
	}
	content := clean(bs)
	if h.title && title != "" && !strings.HasPrefix(content, "# ") {
		content = "# " + title + "\n\n" + content
	}
	_, err = io.WriteString(writer, content)
	return err
}

func (h *Parser) mainContent(doc *goquery.Document) (string, error) {
	for _, tag := range h.strip {
		doc.Find(tag).Remove()
	}
	for _, selector := range h.content {
		sel := doc.Find(selector)
		if sel.Length() == 0 {
			continue
		}
		parts := make([]string, 0, sel.Length())
		var err error
		sel.EachWithBreak(func(_ int, s *goquery.Selection) bool {
			var txt string
			if txt, err = s.Html(); err != nil {
				return false
			}
			parts = append(parts, txt)
			return true
		})
		if err != nil {
			return "", err
		}
		return strings.Join(parts, "\n"), nil
	}
	return doc.Html()
}

// clean collapses blank lines and trailing whitespace
func clean(content string) string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t\r")
	}
	content = blankLines.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	content = strings.TrimSpace(content)
	if content == "" {
		return ""
	}
	return content + "\n"
}
