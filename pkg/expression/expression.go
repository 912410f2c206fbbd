// Package expression is a thin wrapper over expr-lang used for response
// assertions.
package expression

import (
	"context"
	"strings"

	"curldeck/pkg/errmap"
	"curldeck/pkg/varsystem"

	"github.com/expr-lang/expr"
)

type Env struct {
	varMap map[string]any
}

func NewEnv(varMap map[string]any) Env {
	return Env{varMap: varMap}
}

// GetVarMap returns the internal varMap for debugging purposes.
func (e Env) GetVarMap() map[string]any {
	return e.varMap
}

// NormalizeExpression replaces {{var}} wrappers in an expression before
// compilation.
func NormalizeExpression(ctx context.Context, expressionString string, varMap varsystem.VarMap) (string, error) {
	expressionString = strings.TrimSpace(expressionString)
	normalized, err := varMap.ReplaceVars(expressionString)
	if err != nil {
		return expressionString, err
	}
	return normalized, nil
}

// EvaluateAsBool compiles and runs an expression expected to yield a bool.
func EvaluateAsBool(ctx context.Context, env Env, code string) (bool, error) {
	program, err := expr.Compile(code, expr.Env(env.varMap), expr.AsBool(), expr.AllowUndefinedVariables())
	if err != nil {
		return false, errmap.New(errmap.CodeExpressionSyntax, "", err)
	}

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	default:
	}

	output, err := expr.Run(program, env.varMap)
	if err != nil {
		return false, errmap.New(errmap.CodeExpressionRuntime, "", err)
	}
	result, ok := output.(bool)
	if !ok {
		return false, errmap.New(errmap.CodeExpressionRuntime, "expression did not evaluate to a boolean", nil)
	}
	return result, nil
}
