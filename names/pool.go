// Package names implements the process-wide name interner.
//
// Every identifier that appears in a kong source file (struct names,
// member names, function and parameter names, global names, attribute
// names) passes through a single Pool so that two occurrences of the
// same string share a stable ID for the rest of compilation.
package names

// ID identifies an interned string. The zero value is the reserved
// NoName sentinel; it is never returned by Pool.Intern.
type ID uint32

// NoName is the reserved sentinel meaning "no identifier".
const NoName ID = 0

// Pool interns strings to stable IDs. Insertion order is preserved:
// the Nth unique string interned receives ID N (offset so that NoName
// stays reserved).
type Pool struct {
	strings []string
	index   map[string]ID
}

// NewPool creates an empty pool with the NoName sentinel pre-registered.
func NewPool() *Pool {
	p := &Pool{
		strings: make([]string, 1, 64),
		index:   make(map[string]ID, 64),
	}
	p.strings[0] = "" // slot 0 backs NoName, never looked up by string
	return p
}

// Intern returns the stable ID for s, allocating a new one if s has not
// been seen before. The empty string is never interned as a real name;
// it always resolves to NoName.
func (p *Pool) Intern(s string) ID {
	if s == "" {
		return NoName
	}
	if id, ok := p.index[s]; ok {
		return id
	}
	id := ID(len(p.strings))
	p.strings = append(p.strings, s)
	p.index[s] = id
	return id
}

// Lookup returns the ID already assigned to s, if any.
func (p *Pool) Lookup(s string) (ID, bool) {
	if s == "" {
		return NoName, false
	}
	id, ok := p.index[s]
	return id, ok
}

// String returns the string an ID was interned from. NoName resolves to "".
func (p *Pool) String(id ID) string {
	if int(id) >= len(p.strings) {
		return ""
	}
	return p.strings[id]
}

// Count returns the number of distinct non-NoName strings interned.
func (p *Pool) Count() int {
	return len(p.strings) - 1
}
