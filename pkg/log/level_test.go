package log_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mosaic-build/mosaic/pkg/log"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	for _, level := range log.AllLevels {
		parsed, err := log.ParseLevel(level.String())
		require.NoError(t, err)
		assert.Equal(t, level, parsed)
	}

	parsed, err := log.ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, log.DebugLevel, parsed)

	_, err = log.ParseLevel("loud")
	require.Error(t, err)
}
