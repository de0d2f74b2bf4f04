package xid

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCarriesPrefix(t *testing.T) {
	id := New("ord")
	assert.True(t, strings.HasPrefix(id, "ord-"))
}

func TestNewDoesNotRepeat(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := New("x")
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}
