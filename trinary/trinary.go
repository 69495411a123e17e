package trinary

import (
	"errors"
	"fmt"
)

// Alphabet is the full tryte character set. The digit 9 encodes the zero
// tryte, which is why it leads the set.
const Alphabet = "9ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// AddressLength is the number of trytes in a derived address, excluding
// any checksum.
const AddressLength = 81

// ErrInvalidTrytes is returned when a value contains characters outside
// the tryte alphabet.
var ErrInvalidTrytes = errors.New("trinary: not valid trytes")

// Trytes is a string of characters from the tryte alphabet.
type Trytes string

// Seed is the deterministic root secret from which addresses are derived.
// The client never persists it.
type Seed Trytes

// Address is a tryte-encoded account address.
type Address Trytes

// Hash is a tryte-encoded transaction or bundle hash.
type Hash Trytes

// validTryte reports whether b is in the tryte alphabet.
func validTryte(b byte) bool {
	return b == '9' || (b >= 'A' && b <= 'Z')
}

// ValidTrytes checks that every character of s belongs to the tryte
// alphabet. The empty string is valid.
func ValidTrytes(s string) error {
	for i := 0; i < len(s); i++ {
		if !validTryte(s[i]) {
			return fmt.Errorf("%w: invalid character %q at position %d", ErrInvalidTrytes, s[i], i)
		}
	}

	return nil
}

// NewTrytes validates s and returns it as a Trytes value.
func NewTrytes(s string) (Trytes, error) {
	if err := ValidTrytes(s); err != nil {
		return "", err
	}

	return Trytes(s), nil
}

// TrytesFromBytes coerces raw byte data into Trytes. Each byte must itself
// be a valid tryte character, so a seed built from raw bytes compares equal
// to one built from the identical typed value.
func TrytesFromBytes(raw []byte) (Trytes, error) {
	return NewTrytes(string(raw))
}

// NewSeed validates s and returns it as a Seed.
func NewSeed(s string) (Seed, error) {
	t, err := NewTrytes(s)
	if err != nil {
		return "", err
	}

	return Seed(t), nil
}

// SeedFromBytes coerces raw byte data into a Seed.
func SeedFromBytes(raw []byte) (Seed, error) {
	t, err := TrytesFromBytes(raw)
	if err != nil {
		return "", err
	}

	return Seed(t), nil
}

// Validate checks alphabet membership of the seed.
func (s Seed) Validate() error { return ValidTrytes(string(s)) }

// Validate checks alphabet membership of the address.
func (a Address) Validate() error { return ValidTrytes(string(a)) }

// Validate checks alphabet membership of the hash.
func (h Hash) Validate() error { return ValidTrytes(string(h)) }
