// Package trinary provides the typed tryte-string values used across the
// client: seeds, addresses, and transaction/bundle hashes.
//
// A tryte string is drawn from the fixed 27-character alphabet (uppercase
// A-Z plus the digit 9). The package validates alphabet membership and
// nothing else; trit/byte codecs are deliberately out of scope.
package trinary
