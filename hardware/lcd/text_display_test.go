package lcd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentBorder(t *testing.T) {
	t.Parallel()

	d, _ := NewMockTextDisplay(Config{Width: 10, Height: 3})
	d.DrawText("hi", 0, 0, ColorWhite)
	content := d.Content()
	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "╔══════════╗", lines[0])
	assert.Equal(t, "║hi        ║", lines[1])
	assert.Equal(t, "║          ║", lines[2])
	assert.Equal(t, "╚══════════╝", lines[4])
}

func TestDrawTextClamp(t *testing.T) {
	t.Parallel()

	d, _ := NewMockTextDisplay(Config{Width: 8, Height: 2})
	// out-of-bounds rows are ignored
	d.DrawText("nope", 0, -1, ColorWhite)
	d.DrawText("nope", 0, 2, ColorWhite)
	// overlong text clips at the right edge
	d.DrawText("0123456789", 0, 0, ColorWhite)
	// negative x clips at the left edge
	d.DrawText("abcdef", -2, 1, ColorWhite)
	// entirely off-screen
	d.DrawText("x", 8, 0, ColorWhite)
	d.DrawText("ab", -5, 0, ColorWhite)

	lines := strings.Split(strings.TrimRight(d.Content(), "\n"), "\n")
	assert.Equal(t, "║01234567║", lines[1])
	assert.Equal(t, "║cdef    ║", lines[2])
}

func TestClear(t *testing.T) {
	t.Parallel()

	d, _ := NewMockTextDisplay(Config{Width: 6, Height: 2})
	d.DrawText("junk", 0, 0, ColorWhite)
	d.Clear()
	lines := strings.Split(strings.TrimRight(d.Content(), "\n"), "\n")
	assert.Equal(t, "║      ║", lines[1])
	assert.Equal(t, "║      ║", lines[2])
}

func TestFlushReplaysSegments(t *testing.T) {
	t.Parallel()

	d, dev := NewMockTextDisplay(Config{Width: 16, Height: 4})
	d.DrawText("one", 0, 0, ColorWhite)
	d.DrawText("two", 2, 3, ColorRed)
	require.NoError(t, d.Flush())
	assert.Equal(t, []string{"1,1:one", "4,3:two"}, dev.Writes())
	assert.Equal(t, 1, dev.Presents())
}

func TestMode(t *testing.T) {
	t.Parallel()

	d, _ := NewMockTextDisplay(Config{Width: 4, Height: 2})
	assert.Equal(t, ModeSimulation, d.Mode())
}

func TestSizeValidation(t *testing.T) {
	t.Parallel()

	_, err := NewTextDisplay(new(MockDevicer), Config{Width: 0, Height: 2})
	assert.Error(t, err)
	_, err = NewTextDisplay(new(MockDevicer), Config{Width: MaxWidth + 1, Height: 2})
	assert.Error(t, err)
}
