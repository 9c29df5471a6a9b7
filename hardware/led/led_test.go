package led

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSim(t *testing.T) {
	t.Parallel()

	l := NewSim()
	assert.False(t, l.Get())
	require.NoError(t, l.Set(true))
	assert.True(t, l.Get())
	require.NoError(t, l.Set(false))
	assert.False(t, l.Get())
}
