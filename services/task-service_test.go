package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToggleEmailAddsWhenAbsent(t *testing.T) {
	got := toggleEmail([]string{}, "u@x.com")
	assert.Equal(t, []string{"u@x.com"}, got)
}

func TestToggleEmailRemovesWhenPresent(t *testing.T) {
	got := toggleEmail([]string{"a@x.com", "u@x.com", "b@x.com"}, "u@x.com")
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, got)
}

func TestToggleEmailPairIsIdempotent(t *testing.T) {
	original := []string{"a@x.com"}

	once := toggleEmail(append([]string{}, original...), "u@x.com")
	twice := toggleEmail(once, "u@x.com")

	assert.Equal(t, original, twice)
}
