// Package docx extracts paragraphs and tables of Word documents
package docx

import (
	"context"
	"io"

	"github.com/fumiama/go-docx"

	"github.com/bububa/purecheck/components/document"
)

// Parser is a parser which parse docx to text
type Parser struct{}

var _ document.Parser = (*Parser)(nil)

// Parse writes every paragraph and table, separated by blank lines
func (p *Parser) Parse(ctx context.Context, reader document.ParserReader, writer io.Writer) error {
	doc, err := docx.Parse(reader, reader.Size())
	if err != nil {
		return err
	}
	var written int
	for _, it := range doc.Document.Body.Items {
		var content string
		switch t := it.(type) {
		case *docx.Paragraph:
			content = t.String()
		case *docx.Table:
			content = t.String()
		}
		if content == "" {
			continue
		}
		if written > 0 {
			if _, err := io.WriteString(writer, "\n\n"); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(writer, content); err != nil {
			return err
		}
		written++
	}
	return nil
}
