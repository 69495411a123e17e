package trinary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidTrytes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "empty string is valid", input: "", wantErr: false},
		{name: "all nines", input: "999999999", wantErr: false},
		{name: "uppercase letters", input: "HELLOTANGLE", wantErr: false},
		{name: "mixed letters and nines", input: "A9B9C9", wantErr: false},
		{name: "full alphabet", input: Alphabet, wantErr: false},
		{name: "lowercase rejected", input: "hello", wantErr: true},
		{name: "digits other than nine rejected", input: "ABC123", wantErr: true},
		{name: "punctuation rejected", input: "NOT VALID; SEEDS", wantErr: true},
		{name: "unicode rejected", input: "ÅBC", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidTrytes(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidTrytes)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewSeed(t *testing.T) {
	t.Parallel()

	t.Run("valid seed", func(t *testing.T) {
		t.Parallel()

		seed, err := NewSeed("HELLOTANGLE9")
		require.NoError(t, err)
		assert.Equal(t, Seed("HELLOTANGLE9"), seed)
	})

	t.Run("invalid characters", func(t *testing.T) {
		t.Parallel()

		_, err := NewSeed("not a seed")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidTrytes)
	})
}

func TestSeedFromBytes(t *testing.T) {
	t.Parallel()

	t.Run("raw bytes equal typed seed with identical content", func(t *testing.T) {
		t.Parallel()

		fromBytes, err := SeedFromBytes([]byte("HELLOTANGLE"))
		require.NoError(t, err)

		typed, err := NewSeed("HELLOTANGLE")
		require.NoError(t, err)

		assert.Equal(t, typed, fromBytes)
	})

	t.Run("bytes outside the alphabet rejected", func(t *testing.T) {
		t.Parallel()

		_, err := SeedFromBytes([]byte{0x00, 0x41})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidTrytes)
	})
}

func TestValidateMethods(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Seed("ABC9").Validate())
	assert.NoError(t, Address("XYZ").Validate())
	assert.NoError(t, Hash("999").Validate())
	assert.Error(t, Seed("abc").Validate())
	assert.Error(t, Address("a").Validate())
	assert.Error(t, Hash("-").Validate())
}
