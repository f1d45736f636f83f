package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bububa/purecheck/ingest"
)

var ingestJSON bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [source...]",
	Short: "Index guideline documents",
	Long: `Loads guideline documents, splits them into chunks, embeds them and stores them in
the guideline index. A source is a file, a directory walked recursively, an
s3://bucket/prefix URI or an http(s) URL. Without arguments index.sources is used.
Supported formats: pdf, html, docx, md and txt.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "print the report as JSON")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	sources := args
	if len(sources) == 0 {
		sources = cfg.Index.Sources
	}

	a := newApp(cfg, logger)
	defer a.Close()

	idx, err := a.index(ctx)
	if err != nil {
		return err
	}
	opts := ingest.Options{
		Sources: sources,
		Index:   idx,
		Logger:  logger,
	}
	for _, src := range sources {
		if strings.HasPrefix(src, "s3://") {
			if opts.S3, err = a.s3Client(ctx); err != nil {
				return err
			}
			break
		}
	}
	report, err := ingest.Run(ctx, opts)
	if report != nil {
		if ingestJSON {
			bs, _ := json.MarshalIndent(report, "", "  ")
			cmd.Println(string(bs))
		} else {
			cmd.Printf("Indexed %d documents into %d chunks (%d embedding tokens).\n",
				report.Documents, report.Chunks, report.Usage.InputTokens)
			for name, reason := range report.Skipped {
				cmd.Printf("  skipped %s: %s\n", name, reason)
			}
		}
	}
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}
	return nil
}
