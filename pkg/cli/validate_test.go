package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anthrogo/growthz/pkg/reference"
	"github.com/anthrogo/growthz/pkg/zscore"
)

func TestRunValidation(t *testing.T) {
	table, err := reference.Load()
	require.NoError(t, err)

	results, ok := runValidation(zscore.New(table))
	assert.True(t, ok)
	require.Len(t, results, len(validationFixtures))
	for _, r := range results {
		assert.True(t, r.Pass, r.Name)
		assert.InDelta(t, r.Want, r.Got, 0.02, r.Name)
	}
}
