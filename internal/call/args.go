package call

import (
	"github.com/funvibe/funcall/internal/types"
)

type argMode uint8

const (
	modePos argMode = iota
	modeKw
	modeUnpackSeq
	modeUnpackMap
)

// KV is one entry of a keyword mapping. Keyword containers are ordered so
// that duplicate detection and packing stay deterministic.
type KV struct {
	Name  string
	Value types.Value
}

// Arg is a single call-site argument: positional, keyword, a positional
// unpack (*seq) or a keyword unpack (**map).
type Arg struct {
	mode  argMode
	name  string
	value types.Value
	seq   []types.Value
	pairs []KV
}

// Pos supplies a positional argument.
func Pos(v types.Value) Arg { return Arg{mode: modePos, value: v} }

// Kw supplies a keyword argument.
func Kw(name string, v types.Value) Arg { return Arg{mode: modeKw, name: name, value: v} }

// Star unpacks a sequence into the positional category. At most one per
// call, after all direct positionals.
func Star(seq ...types.Value) Arg {
	return Arg{mode: modeUnpackSeq, seq: seq}
}

// DoubleStar unpacks a mapping into the keyword category. At most one per
// call, last overall.
func DoubleStar(pairs ...KV) Arg {
	return Arg{mode: modeUnpackMap, pairs: pairs}
}

// IsKeyword reports whether the argument binds by name.
func (a Arg) IsKeyword() bool { return a.mode == modeKw }

// Name returns the keyword name ("" for positional arguments).
func (a Arg) Name() string { return a.name }

// Value returns the supplied value (nil for unpacks).
func (a Arg) Value() types.Value { return a.value }

// Shape is the flattened call-site view used by overload-key construction:
// the positional stream (direct positionals followed by the unpacked
// sequence) and the ordered keyword list.
type Shape struct {
	Positional []types.Value
	Keywords   []KV
}

// Flatten validates argument ordering and returns the flattened view.
func Flatten(args []Arg) (*Shape, error) {
	list, err := normalize(args)
	if err != nil {
		return nil, err
	}
	shape := &Shape{Positional: list.positional}
	for _, e := range list.keywords {
		shape.Keywords = append(shape.Keywords, KV{Name: e.name, Value: e.value})
	}
	return shape, nil
}

// kwEntry tracks one keyword in the normalized view.
type kwEntry struct {
	name       string
	value      types.Value
	fromUnpack bool
	consumed   bool
}

// argList is the normalized call-site view the merge operates on: a single
// positional stream (direct positionals followed by the unpacked sequence)
// and an ordered keyword list (direct keywords followed by the unpacked
// mapping entries).
type argList struct {
	positional []types.Value
	seqStart   int // index in positional where the unpack began, or len
	keywords   []kwEntry
	hasSeq     bool
	hasMap     bool
}

// normalize validates argument ordering and flattens the unpacks.
//
// Rules: keywords may not precede positionals within their own category is
// irrelevant (mixed order is legal in the foreign runtime), but each unpack
// appears at most once and must be the last of its category; direct keyword
// duplicates are conflicting values; a mapping entry whose name was already
// seen is a duplicate argument.
func normalize(args []Arg) (*argList, error) {
	out := &argList{}
	seen := make(map[string]bool)

	for _, a := range args {
		switch a.mode {
		case modePos:
			if out.hasSeq {
				return nil, &BadPackError{Reason: "positional argument after *-unpack"}
			}
			out.positional = append(out.positional, a.value)
		case modeKw:
			if a.name == "" {
				return nil, &BadPackError{Reason: "keyword argument with empty name"}
			}
			if out.hasMap {
				return nil, &BadPackError{Reason: "keyword argument after **-unpack"}
			}
			if seen[a.name] {
				return nil, &ConflictingValueError{Name: a.name}
			}
			seen[a.name] = true
			out.keywords = append(out.keywords, kwEntry{name: a.name, value: a.value})
		case modeUnpackSeq:
			if out.hasSeq {
				return nil, &BadPackError{Reason: "more than one *-unpack"}
			}
			out.hasSeq = true
			out.seqStart = len(out.positional)
			out.positional = append(out.positional, a.seq...)
		case modeUnpackMap:
			if out.hasMap {
				return nil, &BadPackError{Reason: "more than one **-unpack"}
			}
			out.hasMap = true
			for _, kv := range a.pairs {
				if kv.Name == "" {
					return nil, &BadPackError{Reason: "mapping entry with empty name"}
				}
				if seen[kv.Name] {
					return nil, &DuplicateArgumentError{Name: kv.Name}
				}
				seen[kv.Name] = true
				out.keywords = append(out.keywords, kwEntry{
					name: kv.Name, value: kv.Value, fromUnpack: true,
				})
			}
		}
	}
	if !out.hasSeq {
		out.seqStart = len(out.positional)
	}
	return out, nil
}

// findKeyword locates an unconsumed keyword by name.
func (l *argList) findKeyword(name string) *kwEntry {
	for i := range l.keywords {
		e := &l.keywords[i]
		if !e.consumed && e.name == name {
			return e
		}
	}
	return nil
}

// remainingKeywords returns the unconsumed keywords in call-site order.
func (l *argList) remainingKeywords() []*kwEntry {
	var out []*kwEntry
	for i := range l.keywords {
		if !l.keywords[i].consumed {
			out = append(out, &l.keywords[i])
		}
	}
	return out
}
