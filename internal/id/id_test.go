package id

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	a := New()
	b := New()
	assert.NotEqual(t, a, b)

	_, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.NoError(t, Check(a))
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  17 ", "17"},
		{"cash", "cash"},
		{"6BA7B810-9DAD-11D1-80B4-00C04FD430C8", "6ba7b810-9dad-11d1-80b4-00c04fd430c8"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.input), "input %q", tt.input)
	}
}

func TestCheck(t *testing.T) {
	for _, good := range []string{"1", "acc-1000", New()} {
		assert.NoError(t, Check(good), "id %q", good)
	}
	for _, bad := range []string{"", "a/b", "a?b", "line\nbreak"} {
		assert.Error(t, Check(bad), "id %q", bad)
	}
}
