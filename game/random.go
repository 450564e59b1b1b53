/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	crand "crypto/rand"
	"fmt"
	"math/rand/v2"
)

// Source is the randomness used for word selection, impostor counts and
// shuffling. *rand.Rand satisfies it.
type Source interface {
	// IntN returns a uniform integer in [0, n). n must be positive.
	IntN(n int) int
}

// NewSource returns a ChaCha8 generator seeded from crypto/rand.
func NewSource() (Source, error) {
	var seed [32]byte
	if _, err := crand.Read(seed[:]); err != nil {
		return nil, fmt.Errorf("read random seed: %w", err)
	}

	return rand.New(rand.NewChaCha8(seed)), nil
}

// NewSeededSource returns a deterministic generator.
func NewSeededSource(seed uint64) Source {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
