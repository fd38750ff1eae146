package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAccessCode(t *testing.T) {
	lengths := map[int]int{}

	for range 2000 {
		code, err := GenerateAccessCode()
		require.NoError(t, err)

		assert.True(t, IsAccessCode(code), "unexpected code %q", code)
		lengths[len(code)]++
	}

	// With 2000 draws every length shows up, anything else would be astronomically unlikely
	assert.Len(t, lengths, 3)
	for n := AccessCodeMinLength; n <= AccessCodeMaxLength; n++ {
		assert.Positive(t, lengths[n], "length %d never generated", n)
	}
}

func TestIsAccessCode(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"abcDEF", true},
		{"Ab3dE9x", true},
		{"12345678", true},
		{"abcde", false},
		{"abcdefghi", false},
		{"abc-ef", false},
		{"abc ef", false},
		{"ábcdef", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAccessCode(tt.code))
		})
	}
}
