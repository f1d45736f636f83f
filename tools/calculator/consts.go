package calculator

import (
	"errors"
	"fmt"
	"math"

	"github.com/Knetic/govaluate"
)

var constParams = map[string]any{
	"pi": math.Pi,
	"e":  math.E,
}

// functions available to every expression
var functions = map[string]govaluate.ExpressionFunction{
	"min":   minFn,
	"max":   maxFn,
	"abs":   unary(math.Abs),
	"floor": unary(math.Floor),
	"ceil":  unary(math.Ceil),
	"round": unary(math.Round),
	"clamp": clampFn,
}

func floats(name string, args []any) ([]float64, error) {
	ret := make([]float64, 0, len(args))
	for _, arg := range args {
		v, ok := arg.(float64)
		if !ok {
			return nil, fmt.Errorf("%s: argument %v is not a number", name, arg)
		}
		ret = append(ret, v)
	}
	return ret, nil
}

func unary(fn func(float64) float64) govaluate.ExpressionFunction {
	return func(args ...any) (any, error) {
		vs, err := floats("unary", args)
		if err != nil {
			return nil, err
		}
		if len(vs) != 1 {
			return nil, errors.New("expects exactly one argument")
		}
		return fn(vs[0]), nil
	}
}

func minFn(args ...any) (any, error) {
	vs, err := floats("min", args)
	if err != nil {
		return nil, err
	}
	if len(vs) == 0 {
		return nil, errors.New("min: no arguments")
	}
	ret := vs[0]
	for _, v := range vs[1:] {
		ret = math.Min(ret, v)
	}
	return ret, nil
}

func maxFn(args ...any) (any, error) {
	vs, err := floats("max", args)
	if err != nil {
		return nil, err
	}
	if len(vs) == 0 {
		return nil, errors.New("max: no arguments")
	}
	ret := vs[0]
	for _, v := range vs[1:] {
		ret = math.Max(ret, v)
	}
	return ret, nil
}

// clampFn is clamp(x, lo, hi)
func clampFn(args ...any) (any, error) {
	vs, err := floats("clamp", args)
	if err != nil {
		return nil, err
	}
	if len(vs) != 3 {
		return nil, errors.New("clamp: expects x, lo, hi")
	}
	return math.Min(math.Max(vs[0], vs[1]), vs[2]), nil
}
