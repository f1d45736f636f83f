package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bububa/purecheck/nutrition"
	"github.com/bububa/purecheck/pipeline"
)

var analyzeJSON bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze <image>",
	Short: "Analyze a food label photo",
	Long:  `Extracts the nutrition facts of a label photo and prints its INR score and grade.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the full result as JSON")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	fname := args[0]
	data, err := os.ReadFile(fname)
	if err != nil {
		return err
	}
	a := newApp(cfg, logger)
	defer a.Close()

	img, err := a.validator().Validate(filepath.Base(fname), data)
	if err != nil {
		return err
	}
	analyzer, err := a.analyzer()
	if err != nil {
		return err
	}
	res, err := analyzer.Analyze(cmd.Context(), img)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	if analyzeJSON {
		bs, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return err
		}
		cmd.Println(string(bs))
		return nil
	}
	printResult(cmd, res)
	return nil
}

func printResult(cmd *cobra.Command, res *pipeline.Result) {
	p := res.Product
	cmd.Printf("%s (%s, %s)\n", p.DisplayName(), p.DisplayBrand(), p.DisplayType())
	cmd.Printf("INR score: %.1f/100  grade %s\n", res.Score.Score, res.Score.Grade)
	if res.Score.Interpretation != "" {
		cmd.Println(res.Score.Interpretation)
	}
	cmd.Println()
	for _, n := range nutrition.Nutrients {
		na, ok := res.Analysis[n]
		if !ok {
			continue
		}
		pct := "undefined"
		if na.Percent != nil {
			pct = fmt.Sprintf("%.1f%%", *na.Percent)
		}
		cmd.Printf("  %-14s %10s %-4s %s\n", n.Label(), na.PerHundred, n.Unit(), pct)
	}
	cmd.Println()
	cmd.Printf("Warnings: %s\n", orNone(res.Score.Warnings))
	cmd.Printf("Positive claims: %s\n", orNone(res.Score.PositiveClaims))
}

func orNone(list []string) string {
	if len(list) == 0 {
		return "None"
	}
	return strings.Join(list, ", ")
}
