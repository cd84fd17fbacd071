package config

// MaxArgs is the maximum number of formal parameters a signature may declare.
// Required formals are tracked in a one-hot uint64 mask, so the limit is the
// mask width.
const MaxArgs = 64

// Perfect-hash search parameters. The search starts at HashSeedStart and
// tries up to HashSeedBudget consecutive seeds per prime before falling back
// to the next prime in HashPrimes.
const (
	HashSeedStart  uint64 = 0x811c9dc5
	HashSeedBudget        = 1 << 16
)

// HashPrimes are the multipliers tried during the perfect-hash search, in
// order. The first entry is the canonical 64-bit FNV prime; the rest are
// fallbacks for pathological keyword sets.
var HashPrimes = []uint64{
	1099511628211,
	1099511628323,
	1099511628367,
	1099511628373,
	1099511628427,
	1099511628493,
	1099511628613,
	1099511628763,
}

// FNVOffsetBasis seeds the fold of overload-key hashes.
const FNVOffsetBasis uint64 = 14695981039346656037

// Built-in kind names used when rendering signatures and diagnostics.
const (
	PosOnlyMarker  = "/"
	VarPosPrefix   = "*"
	VarKwPrefix    = "**"
	DefaultEllipse = "..."
)
