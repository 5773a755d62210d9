package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// ---- tail tests -------------------------------------------------------------

func TestTail(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short", tail("short", 10))
	assert.Equal(t, "cde", tail("abcde", 3))
	assert.Equal(t, "", tail("", 5))
}
