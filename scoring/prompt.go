package scoring

import (
	"fmt"
	"strings"

	"github.com/bububa/purecheck/components/systemprompt"
	"github.com/bububa/purecheck/components/systemprompt/cot"
	"github.com/bububa/purecheck/nutrition"
)

// task is the user message sent with the scoring system prompt
const task = "Calculate the Indian Nutrition Rating (INR) of this product. Answer with the JSON object only."

var background = []string{
	"- You are an expert food nutrition analyst.",
	"- You calculate the Indian Nutrition Rating (INR) score of packaged food products based on FSSAI guidelines.",
}

var methodology = []string{
	"1. Negative points, 0 to 10 each, 40 at most: Energy, Sugars, Saturated Fat, Sodium. More of the baseline means more points.",
	"2. Positive points, 0 to 5 each, 10 at most: Protein, Fiber.",
	"3. Raw score = (total positive - total negative) + 40.",
	"4. INR score = raw score x 2, within 0 to 100.",
	"5. Grade: A (80-100), B (60-79), C (40-59), D (20-39), E (0-19).",
	"6. A nutrient marked Not Available scores 0 points and must not be mentioned in warnings or claims.",
}

var outputContract = []string{
	`- Answer in this JSON shape: {"negative_points": {"energy": <number>, "sugars": <number>, "saturated_fat": <number>, "sodium": <number>, "total": <number>}, "positive_points": {"protein": <number>, "fiber": <number>, "total": <number>}, "inr_score": <0-100>, "grade": "<A/B/C/D/E>", "interpretation": "<brief text>", "health_warnings": [<strings>], "positive_claims": [<strings>]}`,
	"- inr_score is required and must be a number between 0 and 100.",
}

// BuildPrompt renders the scoring prompt. Equal inputs always give equal prompts.
func BuildPrompt(in Input) string {
	return promptGenerator(in).Generate()
}

func promptGenerator(in Input) *cot.Generator {
	return cot.New(
		cot.WithBackground(background...),
		cot.WithSteps(methodology...),
		cot.WithOutputInstructions(outputContract...),
		cot.WithContext(
			systemprompt.NewStaticContext("Product Information", productInfo(in)),
			systemprompt.NewStaticContext("Baseline Values (2000 kcal diet)", baselineInfo(in.Baseline)),
			systemprompt.NewStaticContext("Nutrient Analysis (% of baseline per 100g)", analysisInfo(in.Analysis)),
		),
	)
}

func productInfo(in Input) string {
	productType := "Solid"
	var record nutrition.Record
	if in.Product != nil {
		productType = in.Product.DisplayType()
		record = in.Product.Nutrition.Record
	}
	lines := []string{
		fmt.Sprintf("- Product Type: %s", productType),
		"- Nutritional Information (per 100g):",
	}
	for _, n := range nutrition.Nutrients {
		amount := record.Get(n)
		if na, ok := in.Analysis[n]; ok {
			amount = na.PerHundred
		}
		lines = append(lines, fmt.Sprintf("  - %s: %s", n.Label(), withUnit(amount, n)))
	}
	return strings.Join(lines, "\n")
}

func baselineInfo(b *nutrition.Baseline) string {
	if b == nil {
		return ""
	}
	lines := make([]string, 0, len(nutrition.Nutrients))
	for _, n := range nutrition.Nutrients {
		v, ok := b.Get(n)
		if !ok {
			continue
		}
		lines = append(lines, fmt.Sprintf("- %s: %s %s", n.Label(), nutrition.Known(v), n.Unit()))
	}
	return strings.Join(lines, "\n")
}

func analysisInfo(a nutrition.Analysis) string {
	lines := make([]string, 0, len(nutrition.Nutrients))
	for _, n := range nutrition.Nutrients {
		if _, ok := a[n]; !ok {
			continue
		}
		pct := "undefined"
		if v, ok := a.Percent(n); ok {
			pct = fmt.Sprintf("%.1f%%", v)
		}
		lines = append(lines, fmt.Sprintf("- %s: %s", n.Label(), pct))
	}
	return strings.Join(lines, "\n")
}

func withUnit(a nutrition.Amount, n nutrition.Nutrient) string {
	if !a.IsKnown() {
		return a.String()
	}
	return a.String() + " " + n.Unit()
}
