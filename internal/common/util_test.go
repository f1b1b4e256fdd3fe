package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRandByteArray_Length(t *testing.T) {
	a := GenerateRandByteArray(16)
	b := GenerateRandByteArray(16)

	require.Len(t, a, 16)
	require.Len(t, b, 16)
	assert.NotEqual(t, a, b)
}

func TestWipeByteArray(t *testing.T) {
	buf := []byte("password")
	WipeByteArray(buf)
	assert.Equal(t, make([]byte, len("password")), buf)

	assert.NotPanics(t, func() { WipeByteArray(nil) })
}
