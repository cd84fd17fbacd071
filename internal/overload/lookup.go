package overload

import (
	"go.uber.org/zap"

	"github.com/funvibe/funcall/internal/types"
)

// Resolve finds the overload matching a runtime key, or nil when no
// registered overload accepts it. Results, including misses, are cached
// until the next mutation. Keys that could never be valid for the base
// signature raise BadArgumentsError and are not cached.
func (t *Trie) Resolve(key *Key) (*Entry, error) {
	if err := t.validateKey(key); err != nil {
		return nil, err
	}

	t.mu.RLock()
	if res, ok := t.cache[key.Hash]; ok {
		t.mu.RUnlock()
		return res.entry, nil
	}
	entry := t.search(t.root, key.Records, 0, 0, 0)
	t.mu.RUnlock()

	t.mu.Lock()
	t.cache[key.Hash] = cacheResult{entry: entry}
	t.mu.Unlock()

	if entry == nil {
		Logger().Debug("overload miss", zap.String("key", key.String()))
	}
	return entry, nil
}

// Lookup is Resolve with a miss promoted to MissingError.
func (t *Trie) Lookup(key *Key) (*Entry, error) {
	entry, err := t.Resolve(key)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, &MissingError{What: "no overload matches " + key.String()}
	}
	return entry, nil
}

// validateKey rejects keys the base signature could never satisfy:
// duplicate names, unknown keywords without a variadic-keyword formal, or
// more positional records than the base can absorb.
func (t *Trie) validateKey(key *Key) error {
	positional := 0
	seen := make(map[string]struct{}, len(key.Records))
	for _, r := range key.Records {
		if r.Name == "" {
			positional++
			continue
		}
		if _, dup := seen[r.Name]; dup {
			return &BadArgumentsError{Reason: "duplicate keyword " + r.Name}
		}
		seen[r.Name] = struct{}{}
		if t.base.LookupExact(r.Name) == nil && !t.base.HasVarKw() {
			return &BadArgumentsError{Reason: "unexpected keyword " + r.Name}
		}
	}
	if positional > t.base.PosCount() && !t.base.HasVarPos() {
		return &BadArgumentsError{Reason: "too many positional arguments"}
	}
	return nil
}

// search walks the trie by consuming key records in order. The first edge
// taken pins the candidate entry's hash; because positional edges are kept
// in subtype-before-supertype order, the first complete descent is the most
// specific match.
func (t *Trie) search(n *node, records []Record, i int, mask, pinned uint64) *Entry {
	if i == len(records) {
		for _, term := range n.terminals {
			if pinned != 0 && term.entry.hash != pinned {
				continue
			}
			if mask&term.entry.required == term.entry.required {
				return term.entry
			}
		}
		return nil
	}

	r := records[i]
	if r.Name == "" {
		for _, e := range n.positional {
			if pinned != 0 && e.hash != pinned {
				continue
			}
			if !t.accepts(r.Type, e.typ) {
				continue
			}
			if e.kind.VarPos() {
				// A variadic edge absorbs one or more consecutive
				// type-matching positional records; prefer the longest run.
				run := 1
				for i+run < len(records) &&
					records[i+run].Name == "" &&
					t.accepts(records[i+run].Type, e.typ) {
					run++
				}
				for j := run; j >= 1; j-- {
					if hit := t.search(e.node, records, i+j, mask|e.mask, e.hash); hit != nil {
						return hit
					}
				}
				continue
			}
			if hit := t.search(e.node, records, i+1, mask|e.mask, e.hash); hit != nil {
				return hit
			}
		}
		return nil
	}

	for _, e := range n.keywords[r.Name] {
		if pinned != 0 && e.hash != pinned {
			continue
		}
		if !t.accepts(r.Type, e.typ) {
			continue
		}
		if hit := t.search(e.node, records, i+1, mask|e.mask, e.hash); hit != nil {
			return hit
		}
	}
	// Variadic-keyword edges live under the empty name and absorb any
	// keyword the candidate does not name.
	for _, e := range n.keywords[""] {
		if pinned != 0 && e.hash != pinned {
			continue
		}
		if !t.accepts(r.Type, e.typ) {
			continue
		}
		if hit := t.search(e.node, records, i+1, mask|e.mask, e.hash); hit != nil {
			return hit
		}
	}
	return nil
}

// accepts reports whether a runtime witness satisfies a formal's annotation.
// An unannotated formal accepts anything.
func (t *Trie) accepts(got, want types.Witness) bool {
	if want == nil {
		return true
	}
	if got == nil {
		return false
	}
	return t.base.Contract().IsSubtype(got, want)
}
