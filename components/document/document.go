// Package document loads guideline documents from files, URLs and S3 and parses them to text.
package document

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path"
	"strings"
)

var ErrReading = errors.New("document is reading")

type ReadStatus = int32

const (
	Unread ReadStatus = iota
	Reading
	ReadCompleted
)

// MetaSource is the metadata key holding where a document was loaded from
const MetaSource = "source"

// ParserReader is what parsers read from
type ParserReader interface {
	io.Reader
	io.ReaderAt
	Size() int64
}

// Source is a loadable document location
type Source interface {
	ParserReader
	// Name returns the file name, object key or URL path, used to choose a parser
	Name() string
	Meta() map[string]string
	Close() error
}

// Fetcher is implemented by sources that must be downloaded before reading
type Fetcher interface {
	ReadAll(ctx context.Context) error
}

// Content holds document metadata
type Content struct {
	meta map[string]string
}

// Meta returns a copy of the metadata
func (c Content) Meta() map[string]string {
	ret := make(map[string]string, len(c.meta))
	for k, v := range c.meta {
		ret[k] = v
	}
	return ret
}

// Document is parsed text with metadata
type Document struct {
	buffer *bytes.Buffer
	Content
}

// New returns an empty Document, parsers write into it
func New(meta map[string]string) *Document {
	return &Document{
		buffer:  new(bytes.Buffer),
		Content: Content{meta: meta},
	}
}

// NewText returns a Document holding text
func NewText(text string, meta map[string]string) *Document {
	doc := New(meta)
	doc.buffer.WriteString(text)
	return doc
}

func (d *Document) Write(p []byte) (int, error) {
	return d.buffer.Write(p)
}

func (d *Document) String() string {
	return d.buffer.String()
}

func (d *Document) Reader() *bytes.Reader {
	return bytes.NewReader(d.buffer.Bytes())
}

// Load fetches src when needed and parses it into a Document carrying only the source metadata
func Load(ctx context.Context, src Source, parser Parser) (*Document, error) {
	if f, ok := src.(Fetcher); ok {
		if err := f.ReadAll(ctx); err != nil {
			return nil, err
		}
	}
	meta := map[string]string{MetaSource: src.Meta()[MetaSource]}
	doc := New(meta)
	if err := parser.Parse(ctx, src, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Ext returns the lowercased extension of name without the dot
func Ext(name string) string {
	if idx := strings.IndexAny(name, "?#"); idx >= 0 {
		name = name[:idx]
	}
	return strings.TrimPrefix(strings.ToLower(path.Ext(name)), ".")
}
