package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndex(t *testing.T) {
	{ // Ranges are inclusive
		assert.Equal(t, Index{2, 3, 4}, NewRange(2, 4))
		assert.Equal(t, Index{4, 3, 2}, NewReverseRange(2, 4))
		assert.Equal(t, 0, len(NewRange(3, 2)))
	}
	{
		I := Index{5, 1, 9}
		assert.Equal(t, Index{4, 0, 8}, I.AddInPlace(-1))
		assert.Equal(t, Index{4, 0, 8}, I, "AddInPlace modifies the receiver")
	}
	{
		I := Index{7, 6, 5, 4}
		require.NoError(t, I.SwapPairs())
		assert.Equal(t, Index{6, 7, 4, 5}, I)
		assert.Error(t, Index{1, 2, 3}.SwapPairs())
	}
	{
		assert.NoError(t, Index{0, 3, 2}.CheckBounds(4))
		assert.Error(t, Index{0, 4}.CheckBounds(4))
		assert.Error(t, Index{-1}.CheckBounds(4))
	}
}
