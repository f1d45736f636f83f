// Package xlsx renders the sheets of Excel workbooks as markdown tables
package xlsx

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/bububa/purecheck/components/document"
)

// Parser writes one markdown table per non-empty sheet. The first non-empty row is the header.
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

func (p *Parser) Parse(ctx context.Context, reader document.ParserReader, writer io.Writer) error {
	opts := make([]excelize.Options, 0, 1)
	if p.password != "" {
		opts = append(opts, excelize.Options{Password: p.password})
	}
	doc, err := excelize.OpenReader(io.NewSectionReader(reader, 0, reader.Size()), opts...)
	if err != nil {
		return err
	}
	defer doc.Close()
	var written int
	for _, sheet := range doc.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return err
		}
		rows, err := doc.GetRows(sheet)
		if err != nil {
			return fmt.Errorf("sheet %s: %w", sheet, err)
		}
		table := render(rows)
		if table == "" {
			continue
		}
		if written > 0 {
			if _, err := io.WriteString(writer, "\n\n"); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(writer, "## %s\n\n%s", sheet, table); err != nil {
			return err
		}
		written++
	}
	return nil
}

// render pads rows to the widest one and drops blank rows
func render(rows [][]string) string {
	var (
		cells [][]string
		width int
	)
	for _, row := range rows {
		clean := make([]string, len(row))
		blank := true
		for i, v := range row {
			clean[i] = cell(v)
			if clean[i] != "" {
				blank = false
			}
		}
		if blank {
			continue
		}
		cells = append(cells, clean)
		width = max(width, len(clean))
	}
	if len(cells) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, row := range cells {
		for len(row) < width {
			row = append(row, "")
		}
		sb.WriteString("| " + strings.Join(row, " | ") + " |\n")
		if i == 0 {
			sb.WriteString(strings.Repeat("| --- ", width) + "|\n")
		}
	}
	return sb.String()
}

func cell(v string) string {
	v = strings.Join(strings.Fields(v), " ")
	return strings.ReplaceAll(v, "|", `\|`)
}
