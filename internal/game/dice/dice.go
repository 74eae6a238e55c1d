// Package dice provides the randomness abstraction used by the world core:
// penny grants on room entry and tie-breaking between equally good name matches.
package dice

// Source is the randomness provider.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
	// Uint32 returns a uniformly distributed 32-bit value.
	Uint32() uint32
}

// OneIn reports whether a draw from src hits a 1-in-rate chance, using the
// modulus test draw % rate == 0.
//
// Precondition: rate > 0.
func OneIn(src Source, rate int) bool {
	if rate <= 0 {
		panic("dice: OneIn called with rate <= 0")
	}
	return src.Uint32()%uint32(rate) == 0
}
