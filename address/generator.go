package address

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/sha3"

	"github.com/LerianStudio/lib-tangle/trinary"
)

// Generator derives addresses from a seed. The zero value is ready to use.
type Generator struct{}

// NewGenerator creates an address generator.
func NewGenerator() Generator {
	return Generator{}
}

// AddressAt derives the address at the given index. The seed must be valid
// trytes; real key derivation and signing live outside this client, so the
// address is produced by a SHAKE-256 sponge over the seed and index, mapped
// onto the tryte alphabet.
func (Generator) AddressAt(seed trinary.Seed, index int) (trinary.Address, error) {
	if err := seed.Validate(); err != nil {
		return "", fmt.Errorf("address: invalid seed: %w", err)
	}

	if index < 0 {
		return "", fmt.Errorf("address: negative index %d", index)
	}

	sponge := sha3.NewShake256()
	sponge.Write([]byte(seed))

	var idx [8]byte

	binary.BigEndian.PutUint64(idx[:], uint64(index))
	sponge.Write(idx[:])

	// One output byte per tryte. The modulo bias against a 27-character
	// alphabet is irrelevant here: the mapping only needs determinism.
	out := make([]byte, trinary.AddressLength)
	if _, err := sponge.Read(out); err != nil {
		return "", fmt.Errorf("address: sponge read: %w", err)
	}

	for i, b := range out {
		out[i] = trinary.Alphabet[int(b)%len(trinary.Alphabet)]
	}

	return trinary.Address(out), nil
}

// Range derives count consecutive addresses starting at start, in
// derivation order.
func (g Generator) Range(seed trinary.Seed, start, count int) ([]trinary.Address, error) {
	if count < 0 {
		return nil, fmt.Errorf("address: negative count %d", count)
	}

	addresses := make([]trinary.Address, 0, count)

	for i := 0; i < count; i++ {
		addr, err := g.AddressAt(seed, start+i)
		if err != nil {
			return nil, err
		}

		addresses = append(addresses, addr)
	}

	return addresses, nil
}
