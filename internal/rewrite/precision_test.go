package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReducePrecision_WithinBudgetPassesThrough(t *testing.T) {
	out, err := ReducePrecision("G1 X1", 50)
	require.NoError(t, err)
	assert.Equal(t, "G1 X1", out)
}

func TestReducePrecision_ShavesWorstDecimalFirst(t *testing.T) {
	out, err := ReducePrecision("G1 X1.123456 Y1.1", 15)
	require.NoError(t, err)
	assert.Equal(t, "G1 X1.1235 Y1.1", out)
	assert.LessOrEqual(t, len(out), 15)
}

func TestReducePrecision_TruncatesWhenNoNumericParameters(t *testing.T) {
	out, err := ReducePrecision("M117 Hello World Test", 10)
	require.Error(t, err)
	var dropErr *FilterDropError
	assert.ErrorAs(t, err, &dropErr)
	assert.Equal(t, "M117 Hello", out)
}

func TestReducePrecision_TruncatesWhenAlreadyAtOneDecimal(t *testing.T) {
	out, err := ReducePrecision("G1 X1.1 Y1.1", 5)
	require.Error(t, err)
	var dropErr *FilterDropError
	assert.ErrorAs(t, err, &dropErr)
	assert.Equal(t, "G1 X1", out)
}
