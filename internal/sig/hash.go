package sig

import (
	"fmt"
	"strings"

	"github.com/funvibe/funcall/internal/config"
)

// HashString folds a name into a 64-bit hash using the FNV-1a scheme with a
// signature-specific seed and prime. The same (seed, prime) pair is reused
// for overload-key hashing so that keyword slots and key hashes agree.
func HashString(s string, seed, prime uint64) uint64 {
	h := seed
	for i := 0; i < len(s); i++ {
		h = (h ^ uint64(s[i])) * prime
	}
	return h
}

// nextPowerOfTwo rounds n up to a power of two (minimum 1).
func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// keywordTable is a perfect-hash map from keyword names to parameter
// callbacks. The table is sized to the next power of two above twice the
// keyword count; the seed search guarantees zero collisions over the fixed
// name set.
type keywordTable struct {
	seed  uint64
	prime uint64
	mask  uint64 // size - 1
	slots []keywordSlot

	// fallback is the variadic-keyword callback used on a miss, if the
	// signature declares one.
	fallback *Callback
}

type keywordSlot struct {
	name     string
	callback *Callback
}

// HashExhaustedError is raised when no (seed, prime) pair yields a
// collision-free table within the search budget.
type HashExhaustedError struct {
	Names []string
}

func (e *HashExhaustedError) Error() string {
	return fmt.Sprintf(
		"perfect hash search budget exhausted for keyword set {%s}",
		strings.Join(e.Names, ", "),
	)
}

// buildKeywordTable finds a hash seed that maps every keyword name to a
// unique slot. The search walks seeds from a fixed start; if no seed within
// the budget succeeds, it retries with successive fallback primes.
func buildKeywordTable(names []string, callbacks []*Callback) (*keywordTable, error) {
	size := nextPowerOfTwo(2 * len(names))
	if size < 1 {
		size = 1
	}
	mask := uint64(size - 1)

	for _, prime := range config.HashPrimes {
		seed := config.HashSeedStart
		for attempt := 0; attempt < config.HashSeedBudget; attempt++ {
			slots := make([]keywordSlot, size)
			ok := true
			for i, name := range names {
				idx := HashString(name, seed, prime) & mask
				if slots[idx].callback != nil {
					ok = false
					break
				}
				slots[idx] = keywordSlot{name: name, callback: callbacks[i]}
			}
			if ok {
				return &keywordTable{
					seed:  seed,
					prime: prime,
					mask:  mask,
					slots: slots,
				}, nil
			}
			seed++
		}
	}
	return nil, &HashExhaustedError{Names: append([]string(nil), names...)}
}

// lookup resolves a keyword name to its parameter callback. A miss falls
// back to the variadic-keyword callback when the signature declares one.
func (t *keywordTable) lookup(name string) (*Callback, bool) {
	slot := &t.slots[HashString(name, t.seed, t.prime)&t.mask]
	if slot.callback != nil && slot.name == name {
		return slot.callback, true
	}
	if t.fallback != nil {
		return t.fallback, false
	}
	return nil, false
}

// exact resolves a keyword name without the variadic fallback.
func (t *keywordTable) exact(name string) *Callback {
	slot := &t.slots[HashString(name, t.seed, t.prime)&t.mask]
	if slot.callback != nil && slot.name == name {
		return slot.callback
	}
	return nil
}
