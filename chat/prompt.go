package chat

import (
	"fmt"
	"strings"

	"github.com/bububa/purecheck/agents/rag"
	"github.com/bububa/purecheck/components/systemprompt"
	"github.com/bububa/purecheck/components/systemprompt/cot"
	"github.com/bububa/purecheck/nutrition"
	"github.com/bububa/purecheck/session"
)

// NoPassages is the guideline context used when retrieval matched nothing
const NoPassages = "No guideline passages matched the question."

var productBackground = []string{
	"- You are the CPG (Compliance and Product Guidance) assistant for FSSAI regulations and nutrition guidelines.",
	"- Pin-point your answers based on the product data provided below.",
	"- Tell where the product fails the guidelines and which clause is violated.",
}

var productFormat = []string{
	"- Use **bold** for important terms.",
	`- Use bullet points with "- " for lists.`,
	"- Be concise and friendly.",
}

var guidelineBackground = []string{
	"- You are a helpful assistant that answers questions about FSSAI food safety regulations and nutrition guidelines.",
	"- Use the following context to answer the user's question. If you don't know the answer, say so.",
}

func productGenerator(c *session.Context) *cot.Generator {
	return cot.New(
		cot.WithBackground(productBackground...),
		cot.WithOutputInstructions(productFormat...),
		cot.WithPlainText(),
		cot.WithContext(systemprompt.NewStaticContext("Current Product Analysis", ProductSummary(c))),
	)
}

func guidelineGenerator(passages []rag.Passage) *cot.Generator {
	return cot.New(
		cot.WithBackground(guidelineBackground...),
		cot.WithPlainText(),
		cot.WithContext(systemprompt.NewContextFunc("Context", func() string {
			if info := rag.FormatPassages(passages); info != "" {
				return info
			}
			return NoPassages
		})),
	)
}

// ProductSummary renders the product context the assistant answers from
func ProductSummary(c *session.Context) string {
	var (
		product nutrition.Product
		result  nutrition.ScoreResult
	)
	if c.Product != nil {
		product = *c.Product
	}
	if c.Result != nil {
		result = *c.Result
	}
	lines := []string{
		fmt.Sprintf("- Product: %s", product.DisplayName()),
		fmt.Sprintf("- Brand: %s", product.DisplayBrand()),
		fmt.Sprintf("- Type: %s", product.DisplayType()),
		fmt.Sprintf("- INR Score: %.1f/100", result.Score),
		fmt.Sprintf("- Grade: %s", result.Grade),
	}
	for _, n := range nutrition.Nutrients {
		amount := product.Nutrition.Record.Get(n)
		value := amount.String()
		if amount.IsKnown() {
			value = fmt.Sprintf("%s %s/100g", amount, n.Unit())
		}
		lines = append(lines, fmt.Sprintf("- %s: %s", n.Label(), value))
	}
	lines = append(lines,
		"",
		"Health Warnings: "+joinOrNone(result.Warnings),
		"Positive Claims: "+joinOrNone(result.PositiveClaims),
	)
	return strings.Join(lines, "\n")
}

func joinOrNone(list []string) string {
	if len(list) == 0 {
		return "None"
	}
	return strings.Join(list, ", ")
}
