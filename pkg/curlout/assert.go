package curlout

import (
	"context"
	"fmt"
	"strings"

	"curldeck/pkg/expression"
	"curldeck/pkg/idwrap"
	"curldeck/pkg/model/massert"
	"curldeck/pkg/model/mresponse"
	"curldeck/pkg/varsystem"
)

// EvaluateAsserts runs every enabled assertion against the decoded response.
// Expressions see a `response` binding with status, body, headers and
// duration; {{var}} wrappers are normalized against varMap before
// compilation.
func EvaluateAsserts(ctx context.Context, resp mresponse.Response, varMap varsystem.VarMap, asserts []massert.Assert) ([]massert.AssertResult, error) {
	if len(asserts) == 0 {
		return nil, nil
	}

	responseEnv := resp.ToEnv()
	mergedVarMap := varsystem.MergeVarMap(varMap, varsystem.NewVarMapFromAnyMap(responseEnv))
	exprEnv := expression.NewEnv(responseEnv)

	results := make([]massert.AssertResult, 0, len(asserts))
	for _, assertion := range asserts {
		if !assertion.Enabled {
			continue
		}
		code := assertion.Expression
		if strings.Contains(code, "{{") && strings.Contains(code, "}}") {
			normalized, err := expression.NormalizeExpression(ctx, code, mergedVarMap)
			if err != nil {
				return nil, err
			}
			code = normalized
		}

		ok, err := expression.EvaluateAsBool(ctx, exprEnv, code)
		if err != nil {
			return nil, fmt.Errorf("expression %q failed: %w", code, err)
		}
		results = append(results, massert.AssertResult{
			ID:       idwrap.NewNow(),
			AssertID: assertion.ID,
			Success:  ok,
		})
	}
	return results, nil
}
