// Package mnemonic generates and validates BIP39 mnemonics and stretches them into seeds.
package mnemonic

import (
	"crypto/sha512"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/klingon-exchange/keyderive/pkg/helpers"
	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/text/unicode/norm"
)

var (
	// ErrInvalidMnemonic covers wrong word count, unknown words and checksum mismatch.
	ErrInvalidMnemonic = errors.New("invalid mnemonic")

	// ErrInvalidStrength is returned for entropy sizes other than 128 or 256 bits.
	ErrInvalidStrength = errors.New("invalid entropy strength")
)

// Supported entropy sizes in bits.
const (
	Strength128 = 128 // 12 words
	Strength256 = 256 // 24 words
)

// BIP39 seed parameters.
const (
	SeedLen        = 64
	seedIterations = 2048
	seedSaltPrefix = "mnemonic"
)

// Generate draws entropy from crypto/rand and returns the matching mnemonic.
func Generate(strength int) (string, error) {
	if strength != Strength128 && strength != Strength256 {
		return "", fmt.Errorf("%w: %d bits (want 128 or 256)", ErrInvalidStrength, strength)
	}

	entropy, err := bip39.NewEntropy(strength)
	if err != nil {
		return "", fmt.Errorf("failed to generate entropy: %w", err)
	}
	defer helpers.SecureClear(entropy)

	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("failed to generate mnemonic: %w", err)
	}

	return mnemonic, nil
}

var (
	wordsOnce sync.Once
	words     map[string]struct{}
)

// wordIndex returns the English wordlist as a set.
func wordIndex() map[string]struct{} {
	wordsOnce.Do(func() {
		list := bip39.GetWordList()
		words = make(map[string]struct{}, len(list))
		for _, w := range list {
			words[w] = struct{}{}
		}
	})
	return words
}

// Normalize collapses runs of whitespace into single spaces.
func Normalize(mnemonic string) string {
	return strings.Join(strings.Fields(mnemonic), " ")
}

// Check returns nil for a well-formed 12 or 24 word mnemonic and a wrapped
// ErrInvalidMnemonic describing the first problem otherwise.
func Check(mnemonic string) error {
	fields := strings.Fields(mnemonic)
	if len(fields) != 12 && len(fields) != 24 {
		return fmt.Errorf("%w: %d words (want 12 or 24)", ErrInvalidMnemonic, len(fields))
	}

	for i, w := range fields {
		if _, ok := wordIndex()[w]; !ok {
			return fmt.Errorf("%w: word %d is not in the wordlist", ErrInvalidMnemonic, i+1)
		}
	}

	entropy, err := bip39.EntropyFromMnemonic(strings.Join(fields, " "))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMnemonic, err)
	}
	helpers.SecureClear(entropy)

	return nil
}

// Validate reports whether mnemonic is a valid 12 or 24 word BIP39 phrase.
// Any malformed input yields false.
func Validate(mnemonic string) bool {
	return Check(mnemonic) == nil
}

// ToSeed validates mnemonic and derives the 64-byte BIP39 seed with
// PBKDF2-HMAC-SHA512 (2048 rounds, salt "mnemonic"+passphrase, both NFKD normalized).
// The caller owns the returned slice and should zero it when done.
func ToSeed(mnemonic, passphrase string) ([]byte, error) {
	if err := Check(mnemonic); err != nil {
		return nil, err
	}

	password := []byte(norm.NFKD.String(Normalize(mnemonic)))
	defer helpers.SecureClear(password)

	salt := []byte(seedSaltPrefix + norm.NFKD.String(passphrase))
	defer helpers.SecureClear(salt)

	return pbkdf2.Key(password, salt, seedIterations, SeedLen, sha512.New), nil
}
