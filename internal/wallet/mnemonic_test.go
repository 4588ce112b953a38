package wallet

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateMnemonic(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		mnemonic string
		wantErr  bool
	}{
		{"12 words", derivationTestMnemonic, false},
		{"24 words", "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon art", false},
		{"numbered list", "1. abandon\n2. abandon\n3. abandon\n4. abandon\n5. abandon\n6. abandon\n7. abandon\n8. abandon\n9. abandon\n10. abandon\n11. abandon\n12. about", false},
		{"invalid word", "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon xyz", true},
		{"wrong word count", "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon", true},
		{"invalid checksum", "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon", true},
		{"empty", "", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateMnemonic(tc.mnemonic)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrInvalidMnemonic)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestNormalizeMnemonicInput(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"already normalized", "abandon abandon about", "abandon abandon about"},
		{"mixed whitespace", "  abandon  \t abandon \n about  ", "abandon abandon about"},
		{"uppercase", "ABANDON Abandon ABOUT", "abandon abandon about"},
		{"commas", "abandon,abandon, about", "abandon abandon about"},
		{"bullets", "- abandon\n* abandon\n- about", "abandon abandon about"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, NormalizeMnemonicInput(tc.input))
		})
	}
}

func TestMnemonicToSeed(t *testing.T) {
	t.Parallel()
	seed, err := MnemonicToSeed(derivationTestMnemonic, "TREZOR")
	require.NoError(t, err)
	assert.Equal(t,
		"c55257c360c07c72029aebc1b53c05ed0362ada38ead3e3e9efa3708e53495531f09a6987599d18264c1e1c92f2cf141630c7a3c4ab7c81b2f001698e7463b04",
		hex.EncodeToString(seed))

	plain, err := MnemonicToSeed(derivationTestMnemonic, "")
	require.NoError(t, err)
	assert.Len(t, plain, 64)
	assert.NotEqual(t, seed, plain)

	_, err = MnemonicToSeed("invalid mnemonic words here", "")
	require.ErrorIs(t, err, ErrInvalidMnemonic)
}

//nolint:misspell // Intentional typos for testing
func TestSuggestWord(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"off by one char", "abondon", "abandon"},
		{"missing letter", "abadon", "abandon"},
		{"typo in word", "abouut", "about"},
		{"exact match", "abandon", "abandon"},
		{"uppercase typo", "ABONDON", "abandon"},
		{"completely different", "xyzqwerty", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, SuggestWord(tc.input))
		})
	}
}

//nolint:misspell // Intentional typos for testing
func TestDescribeTypos(t *testing.T) {
	t.Parallel()
	assert.Empty(t, DescribeTypos(derivationTestMnemonic))
	assert.Empty(t, DescribeTypos(""))

	lines := DescribeTypos("abondon abandon xyzqwerty")
	require.Len(t, lines, 2)
	assert.Equal(t, "word 1: 'abondon' - did you mean 'abandon'?", lines[0])
	assert.Equal(t, "word 3: 'xyzqwerty' is not a valid BIP39 word", lines[1])
}
