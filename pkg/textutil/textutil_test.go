package textutil

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsBinary(t *testing.T) {
	t.Parallel()

	assert.False(t, IsBinary(nil))
	assert.False(t, IsBinary([]byte("usr_id = 1\n")))
	assert.True(t, IsBinary([]byte{0x00, 0x01}))

	// Null bytes past the sniff window are not scanned.
	data := append(bytes.Repeat([]byte{'a'}, BinarySniffLength), 0x00)
	assert.False(t, IsBinary(data))
}

func TestCountLines(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, CountLines(nil))
	assert.Equal(t, 1, CountLines([]byte("x = 1\n")))
	assert.Equal(t, 2, CountLines([]byte("x = 1\ny = 2\n")))
	assert.Equal(t, 2, CountLines([]byte("x = 1\ny = 2")))
}
