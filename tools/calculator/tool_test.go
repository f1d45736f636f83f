package calculator

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bububa/purecheck/tools"
)

func TestRun(t *testing.T) {
	ctx := context.Background()
	tool := New()
	tests := []struct {
		expr    string
		params  map[string]any
		want    any
		wantErr bool
	}{
		{expr: "2+2", want: 4.0},
		{expr: "clamp(pct / 10, 0, 10)", params: map[string]any{"pct": 125.0}, want: 10.0},
		{expr: "clamp(pct / 10, 0, 10)", params: map[string]any{"pct": 42.0}, want: 4.2},
		{expr: "max(a, b, 3)", params: map[string]any{"a": 1.0, "b": 2.0}, want: 3.0},
		{expr: "min(a, 0)", params: map[string]any{"a": -1.5}, want: -1.5},
		{expr: "abs(x) > 1", params: map[string]any{"x": -2.0}, want: true},
		{expr: "clamp(1, 2)", wantErr: true},
		{expr: "2 +", wantErr: true},
		{expr: "missing * 2", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			var out Output
			err := tool.Run(ctx, NewInput(tt.expr, tt.params), &out)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if f, ok := tt.want.(float64); ok {
				assert.InDelta(t, f, out.Result, 1e-9)
				return
			}
			assert.Equal(t, tt.want, out.Result)
		})
	}
}

func TestFormulaFloat(t *testing.T) {
	f, err := New().Compile("(positive - negative + 40) * 2")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"positive", "negative"}, f.Vars())

	v, err := f.Float(map[string]any{"positive": 5.0, "negative": 12.0})
	require.NoError(t, err)
	assert.Equal(t, 66.0, v)

	f, err = New().Compile("x > 1")
	require.NoError(t, err)
	_, err = f.Float(map[string]any{"x": 2.0})
	assert.Error(t, err)

	f, err = New().Compile("x / 0")
	require.NoError(t, err)
	_, err = f.Float(map[string]any{"x": 2.0})
	assert.Error(t, err)
}

func ExampleTool() {
	ctx := context.Background()
	tool := New()
	var out Output
	_ = tool.Run(ctx, NewInput("2+2", nil), &out)
	fmt.Println(out.Result)
	// Output:
	// 4
}

func TestInfo(t *testing.T) {
	tool := New()
	assert.Equal(t, "calculator", tool.Title())
	assert.NotEmpty(t, tool.Description())

	tool = New(tools.WithTitle("rule formulas"), tools.WithDescription("INR points"))
	assert.Equal(t, "INR points", tool.Description())
	_, err := tool.Compile("2 +")
	assert.ErrorContains(t, err, "rule formulas: compile")
}
