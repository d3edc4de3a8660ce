package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewID(t *testing.T) {
	id := NewID(PrefixReport)
	assert.True(t, strings.HasPrefix(id, "rep_"))
	assert.NotEqual(t, id, NewID(PrefixReport))
}

func TestIsTempID(t *testing.T) {
	assert.True(t, IsTempID(NewID(PrefixTemp)))
	assert.False(t, IsTempID(NewID(PrefixMessage)))
	assert.False(t, IsTempID(""))
}
