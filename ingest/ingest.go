// Package ingest builds the guideline index from local files, S3 prefixes and web pages.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"

	"github.com/bububa/purecheck/components"
	"github.com/bububa/purecheck/components/document"
	"github.com/bububa/purecheck/components/document/parsers/docx"
	"github.com/bububa/purecheck/components/document/parsers/html"
	"github.com/bububa/purecheck/components/document/parsers/pdf"
	"github.com/bububa/purecheck/components/document/parsers/pptx"
	"github.com/bububa/purecheck/components/document/parsers/xlsx"
)

var (
	ErrNoSources   = errors.New("ingest: no sources given")
	ErrNoDocuments = errors.New("ingest: no document could be indexed")
	ErrNoS3Client  = errors.New("ingest: s3 source requires an s3 client")
)

// Indexer stores parsed documents, rag.Index implements it
type Indexer interface {
	AddDocuments(ctx context.Context, docs ...*document.Document) (int, *components.LLMUsage, error)
}

type Options struct {
	// Sources are local files or directories, s3://bucket/prefix URIs or http(s) URLs
	Sources []string
	Index   Indexer
	// Parsers maps a lowercased extension to its parser, DefaultParsers when nil
	Parsers    map[string]document.Parser
	S3         *s3.Client
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Report summarizes a run
type Report struct {
	Documents int                 `json:"documents"`
	Chunks    int                 `json:"chunks"`
	Skipped   map[string]string   `json:"skipped,omitempty"`
	Usage     components.LLMUsage `json:"usage"`
}

// DefaultParsers handles pdf, html, office documents, markdown and plain text
func DefaultParsers() map[string]document.Parser {
	htmlParser := html.NewParser()
	text := new(document.TextParser)
	return map[string]document.Parser{
		"pdf":      pdf.NewParser(),
		"html":     htmlParser,
		"htm":      htmlParser,
		"docx":     new(docx.Parser),
		"xlsx":     xlsx.NewParser(),
		"pptx":     pptx.NewParser(),
		"md":       text,
		"markdown": text,
		"txt":      text,
	}
}

// opener defers opening a source until it is indexed
type opener struct {
	name string
	open func(ctx context.Context) (document.Source, error)
}

// Run loads, parses and indexes every source. A document that fails to load or parse is
// skipped and reported; an indexing failure stops the run.
func Run(ctx context.Context, opts Options) (*Report, error) {
	if len(opts.Sources) == 0 {
		return nil, ErrNoSources
	}
	if opts.Index == nil {
		return nil, errors.New("ingest: index not configured")
	}
	if opts.Parsers == nil {
		opts.Parsers = DefaultParsers()
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	report := &Report{Skipped: make(map[string]string)}
	for _, src := range opts.Sources {
		openers, err := expand(ctx, src, &opts)
		if err != nil {
			return report, fmt.Errorf("listing %s: %w", src, err)
		}
		for _, o := range openers {
			doc, err := load(ctx, o, &opts)
			if err != nil {
				logger.WarnContext(ctx, "skipping document", slog.String("source", o.name), slog.Any("error", err))
				report.Skipped[o.name] = err.Error()
				continue
			}
			if strings.TrimSpace(doc.String()) == "" {
				logger.WarnContext(ctx, "skipping empty document", slog.String("source", o.name))
				report.Skipped[o.name] = "no text"
				continue
			}
			chunks, usage, err := opts.Index.AddDocuments(ctx, doc)
			report.Usage.Merge(usage)
			if err != nil {
				return report, err
			}
			report.Documents++
			report.Chunks += chunks
			logger.InfoContext(ctx, "document indexed", slog.String("source", o.name), slog.Int("chunks", chunks))
		}
	}
	if report.Documents == 0 {
		return report, ErrNoDocuments
	}
	return report, nil
}

func expand(ctx context.Context, src string, opts *Options) ([]opener, error) {
	switch {
	case strings.HasPrefix(src, "s3://"):
		return expandS3(ctx, src, opts)
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		return []opener{{
			name: src,
			open: func(ctx context.Context) (document.Source, error) {
				return document.NewHttp(document.WithHttpURL(src), document.WithHttpClient(opts.HTTPClient))
			},
		}}, nil
	}
	return expandLocal(src, opts)
}

func expandLocal(root string, opts *Options) ([]opener, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	var ret []opener
	add := func(fname string) {
		ret = append(ret, opener{
			name: filepath.ToSlash(fname),
			open: func(context.Context) (document.Source, error) {
				return document.NewFile(fname)
			},
		})
	}
	if !info.IsDir() {
		add(root)
		return ret, nil
	}
	err = filepath.WalkDir(root, func(fname string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if fname != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ok := opts.Parsers[document.Ext(fname)]; ok {
			add(fname)
		}
		return nil
	})
	return ret, err
}

// expandS3 lists every object under the prefix with a known extension
func expandS3(ctx context.Context, uri string, opts *Options) ([]opener, error) {
	if opts.S3 == nil {
		return nil, ErrNoS3Client
	}
	bucket, prefix, _ := strings.Cut(strings.TrimPrefix(uri, "s3://"), "/")
	if bucket == "" {
		return nil, fmt.Errorf("invalid s3 uri %q", uri)
	}
	var ret []opener
	paginator := s3.NewListObjectsV2Paginator(opts.S3, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if _, ok := opts.Parsers[document.Ext(key)]; !ok {
				continue
			}
			ret = append(ret, opener{
				name: fmt.Sprintf("s3://%s/%s", bucket, key),
				open: func(ctx context.Context) (document.Source, error) {
					return document.NewS3(ctx,
						document.WithS3Client(opts.S3),
						document.WithS3Bucket(bucket),
						document.WithS3Key(key))
				},
			})
		}
	}
	return ret, nil
}

func load(ctx context.Context, o opener, opts *Options) (*document.Document, error) {
	src, err := o.open(ctx)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	if f, ok := src.(document.Fetcher); ok {
		if err := f.ReadAll(ctx); err != nil {
			return nil, err
		}
	}
	parser, err := parserFor(src, opts.Parsers)
	if err != nil {
		return nil, err
	}
	return document.Load(ctx, src, parser)
}

// parserFor picks a parser by extension, then by the response content type, then by sniffing
func parserFor(src document.Source, parsers map[string]document.Parser) (document.Parser, error) {
	if p, ok := parsers[document.Ext(src.Name())]; ok {
		return p, nil
	}
	var mediaType string
	if h, ok := src.(interface{ ContentType() string }); ok {
		mediaType, _, _ = mime.ParseMediaType(h.ContentType())
	}
	if mediaType == "" {
		mt, err := mimetype.DetectReader(io.NewSectionReader(src, 0, src.Size()))
		if err == nil {
			mediaType, _, _ = mime.ParseMediaType(mt.String())
		}
	}
	if exts, _ := mime.ExtensionsByType(mediaType); len(exts) > 0 {
		for _, ext := range exts {
			if p, ok := parsers[strings.TrimPrefix(ext, ".")]; ok {
				return p, nil
			}
		}
	}
	switch mediaType {
	case "text/html":
		if p, ok := parsers["html"]; ok {
			return p, nil
		}
	case "application/pdf":
		if p, ok := parsers["pdf"]; ok {
			return p, nil
		}
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		if p, ok := parsers["docx"]; ok {
			return p, nil
		}
	case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		if p, ok := parsers["xlsx"]; ok {
			return p, nil
		}
	case "application/vnd.openxmlformats-officedocument.presentationml.presentation":
		if p, ok := parsers["pptx"]; ok {
			return p, nil
		}
	case "text/plain", "text/markdown":
		if p, ok := parsers["txt"]; ok {
			return p, nil
		}
	}
	return nil, fmt.Errorf("unsupported document type %q", mediaType)
}
