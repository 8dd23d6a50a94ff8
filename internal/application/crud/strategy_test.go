package crud

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseErrorStrategy(t *testing.T) {
	tests := map[string]ErrorStrategy{
		"":            StrategyThrow,
		"throw":       StrategyThrow,
		"return-null": StrategyReturnNull,
		"null":        StrategyReturnNull,
		" Ignore ":    StrategyIgnore,
	}
	for in, want := range tests {
		got, err := ParseErrorStrategy(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseErrorStrategy("retry")
	assert.Error(t, err)
}
