package utils

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewShortIDShape(t *testing.T) {
	id, err := NewShortID()
	assert.NoError(t, err)
	assert.Len(t, id, 10)
	for _, r := range id {
		assert.True(t, strings.ContainsRune(shortIDAlphabet, r), "unexpected character %q", r)
	}
}

func TestNewShortIDVaries(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := NewShortID()
		assert.NoError(t, err)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestNewShortIDRandError(t *testing.T) {
	originalRandRead := randRead
	randRead = func([]byte) (int, error) {
		return 0, errors.New("rand error")
	}
	defer func() { randRead = originalRandRead }()

	_, err := NewShortID()
	assert.Error(t, err)
}
