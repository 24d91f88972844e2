package model

import (
	"fmt"
	"reflect"
	"strconv"
)

// Store is the insertion-ordered, structurally-deduplicating collection
// of all definitions and operations produced during one compilation. Its
// lifetime is exactly one Merge call.
type Store struct {
	defs     []Definition
	defIndex map[string]int

	ops     []namedOperation
	opIndex map[string]int
}

type namedOperation struct {
	name string
	op   Operation
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		defIndex: make(map[string]int),
		opIndex:  make(map[string]int),
	}
}

// Push registers data under name and returns the assigned name.
// Structurally identical definitions collapse to the earliest entry; a
// name collision with different data is renamed with a major-version
// suffix ("_v2" for transparent categories, "V2" otherwise).
//
// The scan is O(n) per push, acceptable for the document sizes this
// compiler sees.
func (s *Store) Push(name string, version int, data DefinitionData) (string, error) {
	for _, def := range s.defs {
		if reflect.DeepEqual(def.Data, data) {
			return def.Name, nil
		}
	}

	resolved := name
	if _, taken := s.defIndex[resolved]; taken {
		if data.transparent() {
			resolved = name + "_v" + strconv.Itoa(version)
		} else {
			resolved = name + "V" + strconv.Itoa(version)
		}
	}
	if _, taken := s.defIndex[resolved]; taken {
		return "", newError(NamingError, fmt.Sprintf("duplicate definition name %q", resolved))
	}

	s.defIndex[resolved] = len(s.defs)
	s.defs = append(s.defs, Definition{Name: resolved, Data: data})
	return resolved, nil
}

// PushOperation mirrors Push for operations, suffixing "_v<version>" on
// name collisions.
func (s *Store) PushOperation(name string, version int, op Operation) (string, error) {
	for _, existing := range s.ops {
		if reflect.DeepEqual(existing.op, op) {
			return existing.name, nil
		}
	}

	resolved := name
	if _, taken := s.opIndex[resolved]; taken {
		resolved = name + "_v" + strconv.Itoa(version)
	}
	if _, taken := s.opIndex[resolved]; taken {
		return "", newError(NamingError, fmt.Sprintf("duplicate operation name %q", resolved))
	}

	s.opIndex[resolved] = len(s.ops)
	s.ops = append(s.ops, namedOperation{name: resolved, op: op})
	return resolved, nil
}

// Definitions returns all definitions in insertion order.
func (s *Store) Definitions() []Definition {
	return s.defs
}

// Operations returns all operations in insertion order.
func (s *Store) Operations() []NamedOperation {
	out := make([]NamedOperation, 0, len(s.ops))
	for _, entry := range s.ops {
		out = append(out, NamedOperation{Name: entry.name, Operation: entry.op})
	}
	return out
}

// Lookup reports whether a definition name exists in the store.
func (s *Store) Lookup(name string) (Definition, bool) {
	i, ok := s.defIndex[name]
	if !ok {
		return Definition{}, false
	}
	return s.defs[i], true
}
