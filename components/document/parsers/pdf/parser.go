// Package pdf extracts the text of PDF documents row by row
package pdf

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"

	"github.com/bububa/purecheck/components/document"
)

// Parser extracts the text layer of a PDF, optionally decrypting it first
type Parser struct {
	password string
}

var _ document.Parser = (*Parser)(nil)

type Option func(*Parser)

func WithPassword(password string) Option {
	return func(p *Parser) {
		p.password = password
	}
}

func NewParser(opts ...Option) *Parser {
	ret := new(Parser)
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Parse writes the text of every page, one line per row and a blank line between pages
func (p *Parser) Parse(ctx context.Context, reader document.ParserReader, writer io.Writer) error {
	r, err := p.open(reader)
	if err != nil {
		return err
	}
	// bufio keeps the first write error and reports it on Flush
	w := bufio.NewWriter(writer)
	var pages int
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			return fmt.Errorf("page %d: %w", i, err)
		}
		if pages > 0 {
			w.WriteString("\n\n")
		}
		pages++
		for j, row := range rows {
			if j > 0 {
				w.WriteByte('\n')
			}
			for _, word := range row.Content {
				w.WriteString(word.S)
			}
		}
	}
	return w.Flush()
}

func (p *Parser) open(reader document.ParserReader) (*pdf.Reader, error) {
	if p.password == "" {
		return pdf.NewReader(reader, reader.Size())
	}
	return pdf.NewReaderEncrypted(reader, reader.Size(), func() string {
		return p.password
	})
}
