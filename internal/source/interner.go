package source

import "strings"

// StringID is a compact handle for an interned role name.
type StringID uint32

// NoStringID is the id of the empty string.
const NoStringID StringID = 0

// Interner hands out one StringID per distinct string. Writes need external
// synchronization; once a tree is built its interner is only read.
type Interner struct {
	strs []string
	ids  map[string]StringID
}

func NewInterner() *Interner {
	return &Interner{strs: []string{""}, ids: map[string]StringID{"": NoStringID}}
}

// Intern returns the id of s, adding a private copy of s when it is new.
func (in *Interner) Intern(s string) StringID {
	if id, ok := in.ids[s]; ok {
		return id
	}
	s = strings.Clone(s)
	id := StringID(len(in.strs))
	in.strs = append(in.strs, s)
	in.ids[s] = id
	return id
}

// InternBytes is Intern for a byte slice.
func (in *Interner) InternBytes(b []byte) StringID {
	if id, ok := in.ids[string(b)]; ok {
		return id
	}
	return in.Intern(string(b))
}

// Find looks s up without adding it.
func (in *Interner) Find(s string) (StringID, bool) {
	id, ok := in.ids[s]
	return id, ok
}

func (in *Interner) Lookup(id StringID) (string, bool) {
	if int(id) >= len(in.strs) {
		return "", false
	}
	return in.strs[id], true
}

// MustLookup panics on an id this interner never issued.
func (in *Interner) MustLookup(id StringID) string {
	s, ok := in.Lookup(id)
	if !ok {
		panic("source: unknown string id")
	}
	return s
}

// Len counts interned strings including the empty one.
func (in *Interner) Len() int { return len(in.strs) }
