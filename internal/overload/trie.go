package overload

import (
	"sync"

	"go.uber.org/zap"

	"github.com/funvibe/funcall/internal/kind"
	"github.com/funvibe/funcall/internal/sig"
	"github.com/funvibe/funcall/internal/types"
)

// Edge is one trie transition. Edges are owned by their metadata entry;
// node handles are shared.
type Edge struct {
	hash uint64 // key-hash of the owning entry
	mask uint64 // one-hot position of the formal within its signature
	name string // "" for positional and variadic-keyword edges
	typ  types.Witness
	kind kind.Kind
	node *node

	owner *node // the node whose list or map holds this edge (for removal)

	// keyword records which of the owner's containers holds the edge. A
	// positional-or-keyword formal produces one edge of each role, and both
	// carry the same kind, so the role cannot be inferred from the kind.
	keyword bool
}

// terminal marks a node where an entry's callee becomes reachable, guarded
// by the entry's required mask.
type terminal struct {
	entry *Entry
}

// node is a trie vertex: an optional set of terminal callees, an edge list
// for positional descent (topologically sorted so subtypes precede
// supertypes), and per-name keyword edge lists (empty name means
// variadic-keyword).
type node struct {
	terminals  []terminal
	positional []*Edge
	keywords   map[string][]*Edge
}

func newNode() *node {
	return &node{keywords: make(map[string][]*Edge)}
}

// Entry is the metadata record for one registered overload.
type Entry struct {
	hash      uint64
	required  uint64
	callee    any
	signature *sig.Signature
	path      []*Edge
	nodes     []*node // nodes carrying this entry's terminals
}

// Callee returns the registered callee.
func (e *Entry) Callee() any { return e.callee }

// Signature returns the overload's formal list.
func (e *Entry) Signature() *sig.Signature { return e.signature }

// cacheResult is a memoized lookup outcome; entry is nil for a negative
// result.
type cacheResult struct {
	entry *Entry
}

// Trie is the dynamic overload resolver for one function value. Mutation
// and lookup are guarded by a read-write lock; every mutation flushes the
// cache.
type Trie struct {
	mu      sync.RWMutex
	base    *sig.Signature
	root    *node
	entries map[uint64]*Entry
	order   []*Entry
	cache   map[uint64]cacheResult
}

// NewTrie creates an empty resolver over a base signature.
func NewTrie(base *sig.Signature) *Trie {
	return &Trie{
		base:    base,
		root:    newNode(),
		entries: make(map[uint64]*Entry),
		cache:   make(map[uint64]cacheResult),
	}
}

// Len reports the number of registered overloads.
func (t *Trie) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.order)
}

// Insert registers a callee under a candidate signature. The candidate must
// be able to stand in for the base signature; colliding exactly with an
// existing path raises ExistsError and leaves the trie unchanged.
func (t *Trie) Insert(candidate *sig.Signature, callee any) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.base.Compatible(candidate); err != nil {
		return &InvalidKeyError{Reason: err.Error()}
	}

	key := signatureKey(t.base, candidate)
	if _, dup := t.entries[key.Hash]; dup {
		return &ExistsError{Signature: candidate.String()}
	}

	entry := &Entry{
		hash:      key.Hash,
		required:  candidate.Required(),
		callee:    callee,
		signature: candidate,
	}
	t.grow(entry, candidate)
	t.entries[key.Hash] = entry
	t.order = append(t.order, entry)
	t.flushLocked()

	Logger().Debug("overload registered",
		zap.String("signature", candidate.String()),
		zap.Uint64("hash", entry.hash),
	)
	return nil
}

// grow extends the trie with the candidate's edges: a positional chain for
// the positional section, and a keyword closure node whose self-loop edges
// accept the keyword-capable formals in any order. Terminals are installed
// on every node of the path; the required-mask check at lookup time makes
// premature terminals unreachable.
func (t *Trie) grow(entry *Entry, candidate *sig.Signature) {
	// Keyword closure node: self-loop edges for every keyword-capable
	// formal, so out-of-order keyword arrivals still find the callee.
	kwNode := newNode()
	hasKw := false
	addKw := func(owner *node) {
		for i := 0; i < candidate.Len(); i++ {
			p := candidate.At(i)
			if !p.Kind.Kw() && !p.Kind.VarKw() {
				continue
			}
			name := p.Name
			if p.Kind.VarKw() {
				name = ""
			}
			e := &Edge{
				hash:    entry.hash,
				mask:    p.OneHot(),
				name:    name,
				typ:     p.Type,
				kind:    p.Kind,
				node:    kwNode,
				owner:   owner,
				keyword: true,
			}
			owner.keywords[name] = append(owner.keywords[name], e)
			entry.path = append(entry.path, e)
			hasKw = true
		}
	}

	attachTerminal := func(n *node) {
		n.terminals = append(n.terminals, terminal{entry: entry})
		entry.nodes = append(entry.nodes, n)
	}

	cur := t.root
	attachTerminal(cur)
	addKw(cur)

	for i := 0; i < candidate.Len(); i++ {
		p := candidate.At(i)
		if !p.Kind.Pos() && !p.Kind.VarPos() {
			continue
		}
		next := newNode()
		e := &Edge{
			hash:  entry.hash,
			mask:  p.OneHot(),
			name:  p.Name,
			typ:   p.Type,
			kind:  p.Kind,
			node:  next,
			owner: cur,
		}
		insertTopological(&cur.positional, e, t.base.Contract())
		entry.path = append(entry.path, e)
		cur = next
		attachTerminal(cur)
		addKw(cur)
	}

	if hasKw {
		attachTerminal(kwNode)
		addKw(kwNode)
	}
}

// insertTopological keeps an edge list sorted subtype-before-supertype,
// with ties broken by insertion order.
func insertTopological(edges *[]*Edge, e *Edge, c types.Contract) {
	pos := len(*edges)
	for i, other := range *edges {
		if e.typ == nil || other.typ == nil {
			continue
		}
		// e strictly below other: e goes first.
		if c.IsSubtype(e.typ, other.typ) && !c.IsSubtype(other.typ, e.typ) {
			pos = i
			break
		}
	}
	*edges = append(*edges, nil)
	copy((*edges)[pos+1:], (*edges)[pos:])
	(*edges)[pos] = e
}

// Remove unregisters the first overload whose callee identity matches. For
// every edge on its path the owning map entry is dropped; nodes that become
// empty are garbage collected once unreferenced.
func (t *Trie) Remove(callee any) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var entry *Entry
	idx := -1
	for i, e := range t.order {
		if e.callee == callee {
			entry = e
			idx = i
			break
		}
	}
	if entry == nil {
		return &MissingError{What: "callee is not registered"}
	}

	for _, e := range entry.path {
		if e.keyword {
			e.owner.keywords[e.name] = dropEdge(e.owner.keywords[e.name], e)
			if len(e.owner.keywords[e.name]) == 0 {
				delete(e.owner.keywords, e.name)
			}
		} else {
			e.owner.positional = dropEdge(e.owner.positional, e)
		}
	}
	for _, n := range entry.nodes {
		for i, term := range n.terminals {
			if term.entry == entry {
				n.terminals = append(n.terminals[:i], n.terminals[i+1:]...)
				break
			}
		}
	}

	delete(t.entries, entry.hash)
	t.order = append(t.order[:idx], t.order[idx+1:]...)
	t.flushLocked()

	Logger().Debug("overload removed", zap.Uint64("hash", entry.hash))
	return nil
}

func dropEdge(edges []*Edge, e *Edge) []*Edge {
	for i, other := range edges {
		if other == e {
			return append(edges[:i], edges[i+1:]...)
		}
	}
	return edges
}

// Clear unregisters every overload and flushes the cache.
func (t *Trie) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.root = newNode()
	t.entries = make(map[uint64]*Entry)
	t.order = nil
	t.flushLocked()
}

// Flush empties the lookup cache.
func (t *Trie) Flush() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.flushLocked()
}

func (t *Trie) flushLocked() {
	t.cache = make(map[uint64]cacheResult)
}

// CacheContains reports whether a result (positive or negative) is cached
// for the given key hash.
func (t *Trie) CacheContains(hash uint64) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.cache[hash]
	return ok
}

// Entries returns the registered overloads in insertion order.
func (t *Trie) Entries() []*Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]*Entry(nil), t.order...)
}
