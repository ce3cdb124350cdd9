// 指示: miu200521358
package io_rule

import (
	"fmt"
	"math"
	"strings"

	"gopkg.in/Knetic/govaluate.v3"
)

// expressionParameters は数式内で使える定数。
var expressionParameters = map[string]interface{}{
	"pi":  math.Pi,
	"tau": 2 * math.Pi,
}

// expressionFunctions は数式内で使える関数。
var expressionFunctions = map[string]govaluate.ExpressionFunction{
	"rad": unaryFunction("rad", func(v float64) float64 { return v * math.Pi / 180 }),
	"deg": unaryFunction("deg", func(v float64) float64 { return v * 180 / math.Pi }),
	"sin": unaryFunction("sin", math.Sin),
	"cos": unaryFunction("cos", math.Cos),
	"sqrt": unaryFunction("sqrt", func(v float64) float64 {
		return math.Sqrt(v)
	}),
}

// EvaluateNumber は "pi/2" や "rad(90)" のような数式文字列を数値へ評価する。
func EvaluateNumber(expression string) (float64, error) {
	trimmed := strings.TrimSpace(expression)
	if trimmed == "" {
		return 0, fmt.Errorf("数式が空です")
	}
	evaluable, err := govaluate.NewEvaluableExpressionWithFunctions(trimmed, expressionFunctions)
	if err != nil {
		return 0, fmt.Errorf("数式を解析できません: %q: %w", trimmed, err)
	}
	result, err := evaluable.Evaluate(expressionParameters)
	if err != nil {
		return 0, fmt.Errorf("数式を評価できません: %q: %w", trimmed, err)
	}
	value, ok := result.(float64)
	if !ok {
		return 0, fmt.Errorf("数式の結果が数値ではありません: %q", trimmed)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("数式の結果が有限の数値ではありません: %q", trimmed)
	}
	return value, nil
}

// unaryFunction は1引数の数値関数を govaluate 関数へ変換する。
func unaryFunction(name string, fn func(float64) float64) govaluate.ExpressionFunction {
	return func(arguments ...interface{}) (interface{}, error) {
		if len(arguments) != 1 {
			return nil, fmt.Errorf("%s の引数は1つです", name)
		}
		value, ok := arguments[0].(float64)
		if !ok {
			return nil, fmt.Errorf("%s の引数が数値ではありません", name)
		}
		return fn(value), nil
	}
}
