package wallet

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/cosmos/go-bip39"

	stationerr "github.com/mrz1836/stationkey/pkg/errors"
)

// MaxTypoDistance is the maximum Levenshtein distance to consider a suggestion.
const MaxTypoDistance = 2

var (
	// ErrInvalidMnemonic indicates the mnemonic is not valid.
	ErrInvalidMnemonic = stationerr.ErrInvalidMnemonic

	whitespaceRegex   = regexp.MustCompile(`\s+`)
	numberedListRegex = regexp.MustCompile(`(?m)^\s*\d+[\.\)\:]\s*`)
	bulletListRegex   = regexp.MustCompile(`(?m)^\s*[-*•]\s*`)
)

// NormalizeMnemonicInput lowercases the input, strips list numbering and
// bullets, turns commas into spaces and collapses whitespace.
func NormalizeMnemonicInput(input string) string {
	input = strings.ToLower(input)
	input = numberedListRegex.ReplaceAllString(input, " ")
	input = bulletListRegex.ReplaceAllString(input, " ")
	input = strings.ReplaceAll(input, ",", " ")
	input = whitespaceRegex.ReplaceAllString(input, " ")
	return strings.TrimSpace(input)
}

// ValidateMnemonic checks word count, word validity, and checksum.
func ValidateMnemonic(mnemonic string) error {
	normalized := NormalizeMnemonicInput(mnemonic)

	switch len(strings.Fields(normalized)) {
	case 12, 24:
	default:
		return ErrInvalidMnemonic
	}

	if _, err := bip39.MnemonicToByteArray(normalized); err != nil {
		return ErrInvalidMnemonic
	}
	return nil
}

// MnemonicToSeed converts a BIP39 mnemonic phrase to a 64-byte seed.
// The returned seed should be zeroed after use.
func MnemonicToSeed(mnemonic, passphrase string) ([]byte, error) {
	if err := ValidateMnemonic(mnemonic); err != nil {
		return nil, err
	}
	return bip39.NewSeed(NormalizeMnemonicInput(mnemonic), passphrase), nil
}

// SuggestWord finds the closest BIP39 word to the input.
// Returns empty string if no word is within MaxTypoDistance.
func SuggestWord(input string) string {
	input = strings.ToLower(input)

	minDist := math.MaxInt
	var suggestion string
	for _, word := range bip39.WordList {
		dist := levenshtein.ComputeDistance(input, word)
		if dist == 0 {
			return word
		}
		if dist < minDist {
			minDist = dist
			suggestion = word
		}
	}

	if minDist <= MaxTypoDistance {
		return suggestion
	}
	return ""
}

// DescribeTypos returns one line per word that is not in the BIP39 list,
// with a suggestion where one is close enough.
func DescribeTypos(mnemonic string) []string {
	valid := make(map[string]struct{}, len(bip39.WordList))
	for _, w := range bip39.WordList {
		valid[w] = struct{}{}
	}

	var lines []string
	for i, word := range strings.Fields(NormalizeMnemonicInput(mnemonic)) {
		if _, ok := valid[word]; ok {
			continue
		}
		if s := SuggestWord(word); s != "" {
			lines = append(lines, fmt.Sprintf("word %d: '%s' - did you mean '%s'?", i+1, word, s))
		} else {
			lines = append(lines, fmt.Sprintf("word %d: '%s' is not a valid BIP39 word", i+1, word))
		}
	}
	return lines
}
