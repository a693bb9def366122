package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{name: "plain number", input: "42", want: 42},
		{name: "prefixed with zeros", input: "EMP001", want: 1},
		{name: "surrounding whitespace", input: "  7 ", want: 7},
		{name: "no digits", input: "EMP", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeID(tc.input)
			if tc.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidID)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSameID(t *testing.T) {
	assert.True(t, SameID("EMP001", "1"))
	assert.True(t, SameID("12", "12"))
	assert.False(t, SameID("2", "3"))
	assert.False(t, SameID("", ""))
	assert.False(t, SameID("1", ""))
	assert.True(t, SameID("abc", "abc"))
	assert.False(t, SameID("abc", "1"))
}

func TestCanonicalID(t *testing.T) {
	assert.Equal(t, "1", CanonicalID("EMP001"))
	assert.Equal(t, "abc", CanonicalID("abc"))
}
