package symbol

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/veryl-lang/veryl/internal/diagnostics"
	"github.com/veryl-lang/veryl/internal/token"
)

// Table is the global map of symbol id to symbol record, scoped by
// namespace. Like resource.Table, one Table exists
// per compilation and is cleared at the next compilation's start;
// every method takes the table's mutex, so incidental concurrent
// callers are serialized.
type Table struct {
	mu sync.Mutex

	symbols map[Id]*Symbol
	nextID  Id

	// byScope indexes (namespace path, name) -> Id for O(1) same-scope
	// lookups; namespace path is the slice joined with "/".
	byScope map[string]Id

	// exported tracks which (namespace, name) pairs were declared
	// exported from a package scope.
	exported map[string]bool
}

// New returns an empty symbol table.
func New() *Table {
	return &Table{
		symbols:  make(map[Id]*Symbol),
		byScope:  make(map[string]Id),
		exported: make(map[string]bool),
	}
}

func scopeKey(namespace []string, name string) string {
	return strings.Join(namespace, "/") + "#" + name
}

// ErrDuplicateSymbol is returned by Insert when a symbol with the same
// (namespace, name) already exists at that scope.
type ErrDuplicateSymbol struct {
	Namespace []string
	Name      string
}

func (e *ErrDuplicateSymbol) Error() string {
	return fmt.Sprintf("symbol %q already declared in %v", e.Name, e.Namespace)
}

// Insert assigns a fresh id and records sym, failing if a symbol with
// the same (namespace, name) already exists at that scope.
func (t *Table) Insert(sym Symbol) (Id, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := scopeKey(sym.Namespace, sym.Name)
	if _, exists := t.byScope[key]; exists {
		return 0, &ErrDuplicateSymbol{Namespace: sym.Namespace, Name: sym.Name}
	}

	id := t.nextID
	t.nextID++
	sym.Id = id
	stored := sym
	t.symbols[id] = &stored
	t.byScope[key] = id
	return id, nil
}

// MarkExported records that (namespace, name) is visible from outside
// its enclosing package.
func (t *Table) MarkExported(namespace []string, name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.exported[scopeKey(namespace, name)] = true
}

// Get is total on ids that are currently live in the table.
func (t *Table) Get(id Id) (Symbol, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	sym, ok := t.symbols[id]
	if !ok {
		return Symbol{}, false
	}
	return *sym, true
}

// AddGenericMap appends a concrete binding set to a generic symbol,
// mutated during post-pass-1.
func (t *Table) AddGenericMap(id Id, m GenericMap) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if sym, ok := t.symbols[id]; ok {
		sym.GenericMaps = append(sym.GenericMaps, m)
	}
}

// Clear empties the table. Called once per compilation start.
func (t *Table) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.symbols = make(map[Id]*Symbol)
	t.byScope = make(map[string]Id)
	t.exported = make(map[string]bool)
	t.nextID = 0
}

// Dump produces a stable textual serialization for golden tests
//.
func (t *Table) Dump() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	ids := make([]Id, 0, len(t.symbols))
	for id := range t.symbols {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var b strings.Builder
	for _, id := range ids {
		sym := t.symbols[id]
		fmt.Fprintf(&b, "%d\t%s\t%s\t%s\n", id, strings.Join(sym.Namespace, "::"), sym.Name, sym.Kind.KindName())
	}
	return b.String()
}

// ExpressionIdentifier is a dotted name path, optionally prefixed with a
// package qualifier ("$" or an explicit crate root) or "super"
//.
type ExpressionIdentifier struct {
	Absolute bool
	Super    bool
	Path     []string // dotted segments, e.g. ["pkg", "CONST"]
	Range    token.Range
}

// Resolution is the result of a successful scoped-name lookup
//.
type Resolution struct {
	Found      Id
	FullPath   []Id // the chain of symbols traversed
	GenericMap GenericMap
}

// Resolve performs the scoped resolution walk: absolute paths walk from
// the root; relative paths try each
// enclosing scope from innermost to outermost; generic parameters of
// the current scope shadow outer names (they live directly in that
// scope, so the innermost-first search already prefers them); and a
// package scope only exposes explicitly-exported names to outside
// callers.
func (t *Table) Resolve(expr ExpressionIdentifier, callerNamespace []string) (Resolution, *diagnostics.Error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(expr.Path) == 0 {
		return Resolution{}, diagnostics.NotFound("", expr.Range)
	}

	var scopes [][]string
	if expr.Absolute {
		scopes = [][]string{{}}
	} else {
		ns := callerNamespace
		if expr.Super {
			if len(ns) > 0 {
				ns = ns[:len(ns)-1]
			}
		}
		for i := len(ns); i >= 0; i-- {
			scopes = append(scopes, ns[:i])
		}
	}

	for _, scope := range scopes {
		if res, ok := t.resolveFrom(scope, expr.Path, callerNamespace); ok {
			return res, nil
		}
	}

	return Resolution{}, diagnostics.NotFound(strings.Join(expr.Path, "."), expr.Range)
}

// resolveFrom walks expr.Path starting at scope, descending through
// member/package namespaces for each remaining segment.
func (t *Table) resolveFrom(scope []string, path []string, callerNamespace []string) (Resolution, bool) {
	cur := scope
	var chain []Id
	gm := GenericMap{}

	for i, seg := range path {
		key := scopeKey(cur, seg)
		id, ok := t.byScope[key]
		if !ok {
			return Resolution{}, false
		}
		sym := t.symbols[id]

		// Package visibility: a package scope only exposes exported
		// names to a caller outside that package.
		if i > 0 && !inNamespace(callerNamespace, cur) {
			if parentIsPackage(t, cur) && !t.exported[key] {
				return Resolution{}, false
			}
		}

		chain = append(chain, id)
		if sym.GenericParameter != nil && len(sym.GenericMaps) > 0 {
			last := sym.GenericMaps[len(sym.GenericMaps)-1]
			for k, v := range last {
				gm[k] = v
			}
		}

		cur = append(append([]string{}, cur...), seg)
	}

	found := chain[len(chain)-1]
	return Resolution{Found: found, FullPath: chain, GenericMap: gm}, true
}

func inNamespace(caller, scope []string) bool {
	if len(caller) < len(scope) {
		return false
	}
	for i, s := range scope {
		if caller[i] != s {
			return false
		}
	}
	return true
}

func parentIsPackage(t *Table, namespace []string) bool {
	if len(namespace) == 0 {
		return false
	}
	parentNs := namespace[:len(namespace)-1]
	name := namespace[len(namespace)-1]
	id, ok := t.byScope[scopeKey(parentNs, name)]
	if !ok {
		return false
	}
	return t.symbols[id].Kind == KindPackage
}

// GetParent returns the live parent symbol of sym, if any.
func (t *Table) GetParent(sym Symbol) (Symbol, bool) {
	if sym.Parent == nil {
		return Symbol{}, false
	}
	return t.Get(*sym.Parent)
}

// IsDefinedInPackage walks fullPath (and then the parent chain of its
// last element) looking for a Package ancestor — the Go analogue of
// check_expression.rs's is_defined_in_package, used by the port
// default-value purity checker.
func (t *Table) IsDefinedInPackage(fullPath []Id) bool {
	for _, id := range fullPath {
		sym, ok := t.Get(id)
		if ok && sym.Kind == KindPackage {
			return true
		}
	}
	if len(fullPath) == 0 {
		return false
	}
	last, ok := t.Get(fullPath[len(fullPath)-1])
	if !ok {
		return false
	}
	parent, ok := t.GetParent(last)
	if !ok {
		return false
	}
	if parent.Kind == KindPackage {
		return true
	}
	return t.IsDefinedInPackage([]Id{parent.Id})
}
