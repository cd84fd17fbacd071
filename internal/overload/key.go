// Package overload implements the dynamic overload resolver: an
// insertion-ordered, topologically-sorted decision trie keyed on observed
// argument types, with a positive/negative lookup cache.
package overload

import (
	"strings"

	"github.com/funvibe/funcall/internal/call"
	"github.com/funvibe/funcall/internal/config"
	"github.com/funvibe/funcall/internal/kind"
	"github.com/funvibe/funcall/internal/sig"
	"github.com/funvibe/funcall/internal/types"
)

// Record describes one observed argument: positional records carry empty
// names, keyword records carry the argument's name.
type Record struct {
	Name string
	Type types.Witness
	Kind kind.Kind
}

// Key is the runtime description of a call site: the partial prefix records
// followed by the call-site records, plus a combined hash. The hash
// incorporates the partial prefix so that two differently-bound partials
// never collide.
type Key struct {
	Records []Record
	Hash    uint64
}

// NewKey reifies the overload key for a call against a base signature. The
// partial prefix contributes fixed records; each non-partial call-site
// argument appends one record with the value's runtime type.
func NewKey(s *sig.Signature, partials *call.Partials, args ...call.Arg) (*Key, error) {
	shape, err := call.Flatten(args)
	if err != nil {
		return nil, err
	}
	contract := s.Contract()
	k := &Key{}

	// Positional records first, keyword records after, regardless of which
	// side (partial or call site) contributed them. Positional partials
	// always bind a prefix of the positional formals, so this preserves
	// positional order; keyword match order is immaterial.
	var kws []Record
	if partials != nil {
		for _, r := range partials.Records() {
			if r.Name == "" {
				k.Records = append(k.Records, Record{Type: contract.TypeOf(r.Value), Kind: kind.Pos})
			} else {
				kws = append(kws, Record{Name: r.Name, Type: contract.TypeOf(r.Value), Kind: kind.Kw})
			}
		}
	}
	for _, v := range shape.Positional {
		k.Records = append(k.Records, Record{Type: contract.TypeOf(v), Kind: kind.Pos})
	}
	for _, kv := range shape.Keywords {
		kws = append(kws, Record{
			Name: kv.Name, Type: contract.TypeOf(kv.Value), Kind: kind.Kw,
		})
	}
	k.Records = append(k.Records, kws...)

	k.Hash = foldHash(s, k.Records)
	return k, nil
}

// foldHash folds FNV-1a over (name, type identity, kind) for every record.
// The fold starts from the canonical offset basis; the signature's
// perfect-hash seed and prime enter through the per-name hashes, so keys for
// different signatures stay apart.
func foldHash(s *sig.Signature, records []Record) uint64 {
	seed, prime := s.Seed(), s.Prime()
	h := config.FNVOffsetBasis
	for _, r := range records {
		h = (h ^ sig.HashString(r.Name, seed, prime)) * prime
		h = (h ^ s.WitnessID(r.Type)) * prime
		h = (h ^ uint64(r.Kind)) * prime
	}
	return h
}

// signatureKey derives the insertion key for an overload candidate: one
// record per formal, in declaration order.
func signatureKey(base, candidate *sig.Signature) *Key {
	k := &Key{}
	for i := 0; i < candidate.Len(); i++ {
		p := candidate.At(i)
		k.Records = append(k.Records, Record{Name: p.Name, Type: p.Type, Kind: p.Kind})
	}
	k.Hash = foldHash(base, k.Records)
	return k
}

func (k *Key) String() string {
	parts := make([]string, len(k.Records))
	for i, r := range k.Records {
		name := r.Name
		if name == "" {
			name = "_"
		}
		t := "<any>"
		if r.Type != nil {
			t = r.Type.TypeName()
		}
		parts[i] = name + ": " + t
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
