package expression_test

import (
	"context"
	"errors"
	"testing"

	"curldeck/pkg/errmap"
	"curldeck/pkg/expression"
	"curldeck/pkg/varsystem"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateAsBool(t *testing.T) {
	env := expression.NewEnv(map[string]any{
		"response": map[string]any{
			"status": 200,
		},
	})

	ok, err := expression.EvaluateAsBool(context.Background(), env, "response.status == 200")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = expression.EvaluateAsBool(context.Background(), env, "response.status >= 400")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEvaluateAsBoolSyntaxError(t *testing.T) {
	env := expression.NewEnv(map[string]any{})

	_, err := expression.EvaluateAsBool(context.Background(), env, "((")
	require.Error(t, err)

	var me *errmap.Error
	require.True(t, errors.As(err, &me))
	assert.Equal(t, errmap.CodeExpressionSyntax, me.Code)
}

func TestNormalizeExpression(t *testing.T) {
	varMap := varsystem.NewVarMapFromStringMap(map[string]string{
		"threshold": "500",
	})

	normalized, err := expression.NormalizeExpression(context.Background(), "response.duration < {{threshold}}", varMap)
	require.NoError(t, err)
	assert.Equal(t, "response.duration < 500", normalized)
}
