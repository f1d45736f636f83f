// Package calculator evaluates arithmetic expressions with named parameters
package calculator

import (
	"context"
	"fmt"
	"math"

	"github.com/Knetic/govaluate"

	"github.com/bububa/purecheck/schema"
	"github.com/bububa/purecheck/tools"
)

// Input Tool for performing calculations. Supports basic arithmetic operations
// like addition, subtraction, multiplication, and division, as well as the
// functions min, max, abs, floor, ceil, round and clamp.
type Input struct {
	schema.Base
	// Expression Mathematical expression to evaluate. For example, '2 + 2'.
	Expression string `json:"expression" jsonschema:"title=expression,description=Mathematical expression to evaluate. For example, '2 + 2'."`
	// Params represents expressions's parameters
	Params map[string]any `json:"params,omitempty" jsonschema:"title=params,description=Parameters for the expression."`
}

func NewInput(exp string, params map[string]any) *Input {
	return &Input{
		Expression: exp,
		Params:     params,
	}
}

// Output Schema for the output of the CalculatorTool
type Output struct {
	schema.Base
	// Result Result of the calculation
	Result any `json:"result,omitempty" jsonschema:"title=result,description=Result of the calculation."`
}

// Tool evaluates expressions with govaluate
type Tool struct {
	tools.Info
}

var _ tools.Tool[Input, Output] = (*Tool)(nil)

func New(opts ...tools.Option) *Tool {
	return &Tool{
		Info: tools.NewInfo("calculator", "Evaluates arithmetic expressions with named parameters.", opts...),
	}
}

// Run evaluates the expression of input
func (t *Tool) Run(ctx context.Context, input *Input, output *Output) error {
	f, err := t.Compile(input.Expression)
	if err != nil {
		return err
	}
	result, err := f.Evaluate(input.Params)
	if err != nil {
		return err
	}
	output.Result = result
	return nil
}

// Compile parses expr once so it can be evaluated many times
func (t *Tool) Compile(expr string) (*Formula, error) {
	exp, err := govaluate.NewEvaluableExpressionWithFunctions(expr, functions)
	if err != nil {
		return nil, fmt.Errorf("%s: compile %q: %w", t.Title(), expr, err)
	}
	return &Formula{expr: expr, exp: exp}, nil
}

// Formula is a compiled expression. It is safe for concurrent use.
type Formula struct {
	expr string
	exp  *govaluate.EvaluableExpression
}

func (f *Formula) String() string {
	return f.expr
}

// Vars returns the parameter names the formula refers to
func (f *Formula) Vars() []string {
	return f.exp.Vars()
}

// Evaluate evaluates the formula, the constants pi and e are available unless shadowed by params
func (f *Formula) Evaluate(params map[string]any) (any, error) {
	merged := make(map[string]any, len(params)+len(constParams))
	for k, v := range constParams {
		merged[k] = v
	}
	for k, v := range params {
		merged[k] = v
	}
	return f.exp.Evaluate(merged)
}

// Float evaluates the formula and requires a finite numeric result
func (f *Formula) Float(params map[string]any) (float64, error) {
	ret, err := f.Evaluate(params)
	if err != nil {
		return 0, err
	}
	v, ok := ret.(float64)
	if !ok {
		return 0, fmt.Errorf("%s: result %v is not a number", f.expr, ret)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s: result is not finite", f.expr)
	}
	return v, nil
}
