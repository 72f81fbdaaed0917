// Package resource interns tokens, strings and paths into dense integer
// handles, the way text in a long-running compiler never gets re-copied.
package resource

import "sync"

// StrId is a dense handle for an interned string.
type StrId uint32

// PathId is a dense handle for an interned filesystem path.
type PathId uint32

// TokenId is a dense handle for an interned source token.
type TokenId uint32

// Table interns strings and paths for the lifetime of one compilation;
// each compilation owns its own Table. The mutex guards against
// incidental concurrent callers rather than enabling a parallel
// interning scheme.
type Table struct {
	mu sync.Mutex

	strs   []string
	strIdx map[string]StrId

	paths   []string
	pathIdx map[string]PathId

	tokens   []TokenId
	nextTok  TokenId
}

// New returns an empty interning table.
func New() *Table {
	return &Table{
		strIdx:  make(map[string]StrId),
		pathIdx: make(map[string]PathId),
	}
}

// InternStr returns the dense id for s, allocating one if this is the
// first time s has been seen.
func (t *Table) InternStr(s string) StrId {
	t.mu.Lock()
	defer t.mu.Unlock()
	if id, ok := t.strIdx[s]; ok {
		return id
	}
	id := StrId(len(t.strs))
	t.strs = append(t.strs, s)
	t.strIdx[s] = id
	return id
}

// Str resolves a previously-interned string id. Total on ids returned by
// InternStr during the lifetime of this table.
func (t *Table) Str(id StrId) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.strs[id]
}

// InternPath returns the dense id for a filesystem path.
func (t *Table) InternPath(p string) PathId {
	t.mu.Lock()
	defer t.mu.Unlock()
	if id, ok := t.pathIdx[p]; ok {
		return id
	}
	id := PathId(len(t.paths))
	t.paths = append(t.paths, p)
	t.pathIdx[p] = id
	return id
}

// Path resolves a previously-interned path id.
func (t *Table) Path(id PathId) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.paths[id]
}

// NewToken allocates the next dense token id. Token identity is used as
// the key of the MSB (most-significant-bit) expression table and similar
// per-token side tables in the analyzer.
func (t *Table) NewToken() TokenId {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.nextTok
	t.nextTok++
	t.tokens = append(t.tokens, id)
	return id
}

// Clear resets the table for reuse at the start of a new compilation;
// tables never outlive the compilation that created them.
func (t *Table) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.strs = t.strs[:0]
	t.paths = t.paths[:0]
	t.tokens = t.tokens[:0]
	t.nextTok = 0
	for k := range t.strIdx {
		delete(t.strIdx, k)
	}
	for k := range t.pathIdx {
		delete(t.pathIdx, k)
	}
}
