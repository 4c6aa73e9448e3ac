package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAllowedExtension(t *testing.T) {
	assert.True(t, isAllowedExtension(".jpg", "image"))
	assert.True(t, isAllowedExtension(".jpeg", "image"))
	assert.True(t, isAllowedExtension(".webp", "image"))
	assert.True(t, isAllowedExtension(".pdf", "file"))

	// Partial extensions must not match inside an allowed one
	assert.False(t, isAllowedExtension(".jpe", "image"))
	assert.False(t, isAllowedExtension(".pn", "image"))
	assert.False(t, isAllowedExtension(".do", "file"))

	// Wrong category or unknown type
	assert.False(t, isAllowedExtension(".pdf", "image"))
	assert.False(t, isAllowedExtension(".jpg", "file"))
	assert.False(t, isAllowedExtension(".jpg", "video"))
	assert.False(t, isAllowedExtension("", "image"))
}
