package document

import (
	"context"
	"io"
)

type Parser interface {
	Parse(context.Context, ParserReader, io.Writer) error
}

// TextParser copies plain text and markdown as is
type TextParser struct{}

var _ Parser = (*TextParser)(nil)

func (p *TextParser) Parse(ctx context.Context, reader ParserReader, writer io.Writer) error {
	_, err := io.Copy(writer, io.NewSectionReader(reader, 0, reader.Size()))
	return err
}
