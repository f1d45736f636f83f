// Package pptx extracts the text and tables of PowerPoint decks slide by slide
package pptx

import (
	"archive/zip"
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	qxml "github.com/dgrr/quickxml"

	"github.com/bububa/purecheck/components/document"
)

// ErrNoSlides is returned for archives without slide parts
var ErrNoSlides = errors.New("pptx: no slides found")

var (
	reSlide = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)
	reNotes = regexp.MustCompile(`^ppt/notesSlides/notesSlide(\d+)\.xml$`)
)

// Parser writes every slide under a "## Slide N" heading in slide number order.
// Tables become markdown tables.
type Parser struct {
	notes bool
}

var _ document.Parser = (*Parser)(nil)

type Option func(*Parser)

// WithNotes appends the speaker notes of each slide
func WithNotes() Option {
	return func(p *Parser) {
		p.notes = true
	}
}

func NewParser(opts ...Option) *Parser {
	ret := new(Parser)
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

func (p *Parser) Parse(ctx context.Context, reader document.ParserReader, writer io.Writer) error {
	zr, err := zip.NewReader(reader, reader.Size())
	if err != nil {
		return err
	}
	slides := make(map[int]*zip.File)
	notes := make(map[int]*zip.File)
	for _, f := range zr.File {
		if m := reSlide.FindStringSubmatch(f.Name); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				slides[n] = f
			}
		} else if m := reNotes.FindStringSubmatch(f.Name); m != nil && p.notes {
			if n, err := strconv.Atoi(m[1]); err == nil {
				notes[n] = f
			}
		}
	}
	if len(slides) == 0 {
		return ErrNoSlides
	}
	w := bufio.NewWriter(writer)
	var written int
	for _, n := range slices.Sorted(maps.Keys(slides)) {
		if err := ctx.Err(); err != nil {
			return err
		}
		text, err := extract(slides[n])
		if err != nil {
			return fmt.Errorf("slide %d: %w", n, err)
		}
		if f, ok := notes[n]; ok {
			note, err := extract(f)
			if err != nil {
				return fmt.Errorf("notes %d: %w", n, err)
			}
			if note != "" {
				text = strings.TrimSpace(text + "\n\nNotes: " + note)
			}
		}
		if text == "" {
			continue
		}
		if written > 0 {
			w.WriteString("\n\n")
		}
		fmt.Fprintf(w, "## Slide %d\n\n%s", n, text)
		written++
	}
	return w.Flush()
}

// extract reads the a:t runs of a slide part. Paragraphs end with a newline, table cells
// collect their paragraphs and rows are written once complete.
func extract(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	var (
		out    strings.Builder
		para   strings.Builder
		cell   []string
		row    []string
		rows   int
		inTbl  bool
		phrase string
	)
	r := qxml.NewReader(rc)
NEXT:
	for r.Next() {
		switch e := r.Element().(type) {
		case *qxml.StartElement:
			switch e.Name() {
			case "a:t":
				r.AssignNext(&phrase)
				if !r.Next() {
					break NEXT
				}
				para.WriteString(phrase)
				phrase = ""
			case "a:tbl":
				inTbl = true
				rows = 0
			}
		case *qxml.EndElement:
			switch e.Name() {
			case "a:p":
				text := strings.TrimSpace(para.String())
				para.Reset()
				if text == "" {
					continue
				}
				if inTbl {
					cell = append(cell, text)
				} else {
					out.WriteString(text)
					out.WriteByte('\n')
				}
			case "a:tc":
				row = append(row, strings.ReplaceAll(strings.Join(cell, " "), "|", `\|`))
				cell = cell[:0]
			case "a:tr":
				out.WriteString("| " + strings.Join(row, " | ") + " |\n")
				if rows == 0 {
					out.WriteString(strings.Repeat("| --- ", len(row)) + "|\n")
				}
				rows++
				row = row[:0]
			case "a:tbl":
				inTbl = false
			}
		}
	}
	return strings.TrimSpace(out.String()), nil
}
