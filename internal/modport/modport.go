// Package modport implements the modport expansion table: the
// flattening of an interface connection at an instance's port into
// individual scalar signal connections, including the cartesian-product
// enumeration needed for arrayed interface instances of arbitrary rank.
package modport

import (
	"fmt"
	"strings"

	"github.com/veryl-lang/veryl/internal/symbol"
)

// Connection is one flattened signal produced by expanding a modport
// member across an (possibly zero-rank) array shape.
type Connection struct {
	// Member is the modport member this connection flattens.
	Member symbol.Id
	// Indices is the array index tuple for this connection, empty for a
	// scalar interface instance.
	Indices []int
	// MangledName is the flat port name the module body sees (the
	// connection's port_target half).
	MangledName string
	Direction   symbol.Direction
	// Type is the connected member's declared type, carried alongside
	// MangledName so the expanded port declaration has both direction
	// and inferred type.
	Type string
	// InterfaceTarget is the dotted interface-side path this port
	// target binds to: "<iface>[<i0>]....<var>", with one bracketed
	// index per array dimension and no brackets for a scalar instance.
	InterfaceTarget string
}

// Table holds every connection produced by expanding one instance's
// modport port, plus the consume-once bookkeeping the elaborator needs
// when wiring each flattened signal exactly once.
type Table struct {
	entries   []Connection
	byName    map[string]int // MangledName -> index into entries
	consumed  map[string]bool
}

// Expand builds the full connection set for one instance port bound to
// modport, whose interface instance has the given arraySize (outermost
// dimension first; empty for a scalar instance). portName is the
// instance-side port name used to build MangledName (the port_target
// half of each connection); ifaceName is the interface instance's own
// name, used to build InterfaceTarget (the interface_target half).
//
// Enumeration is row-major, outermost index slowest: for
// arraySize [2,3] the index tuples are produced in the order
// (0,0) (0,1) (0,2) (1,0) (1,1) (1,2).
func Expand(ifaceName, portName string, mp symbol.Modport, members []symbol.Symbol, arraySize []int) *Table {
	t := &Table{byName: make(map[string]int), consumed: make(map[string]bool)}

	indexTuples := enumerateIndices(arraySize)
	for _, idx := range indexTuples {
		for i, memberID := range mp.Members {
			var member symbol.Symbol
			if i < len(members) {
				member = members[i]
			}
			name := mangle(portName, idx, member.Name)
			dir := symbol.DirectionInput
			if member.ModportMember != nil {
				dir = member.ModportMember.Direction
			}
			t.entries = append(t.entries, Connection{
				Member:          memberID,
				Indices:         idx,
				MangledName:     name,
				Direction:       dir,
				Type:            member.Type,
				InterfaceTarget: interfaceTarget(ifaceName, idx, member.Name),
			})
			t.byName[name] = len(t.entries) - 1
		}
	}

	return t
}

// interfaceTarget builds the dotted interface-side path a connection
// binds to: "<iface>[<i0>][<i1>]....<var>", one bracketed index per
// array dimension, no brackets at all for a scalar instance.
func interfaceTarget(ifaceName string, indices []int, varName string) string {
	var b strings.Builder
	b.WriteString(ifaceName)
	for _, i := range indices {
		fmt.Fprintf(&b, "[%d]", i)
	}
	b.WriteString(".")
	b.WriteString(varName)
	return b.String()
}

// enumerateIndices produces every index tuple over shape in row-major
// order, outermost dimension slowest. A nil/empty shape yields exactly
// one empty tuple (the scalar case).
func enumerateIndices(shape []int) [][]int {
	if len(shape) == 0 {
		return [][]int{{}}
	}

	total := 1
	for _, d := range shape {
		total *= d
	}
	out := make([][]int, 0, total)

	idx := make([]int, len(shape))
	for {
		out = append(out, append([]int{}, idx...))

		pos := len(shape) - 1
		for pos >= 0 {
			idx[pos]++
			if idx[pos] < shape[pos] {
				break
			}
			idx[pos] = 0
			pos--
		}
		if pos < 0 {
			break
		}
	}

	return out
}

// mangle builds the flat signal name for one (port, indices, variable)
// triple.
func mangle(portName string, indices []int, varName string) string {
	var b strings.Builder
	b.WriteString("__")
	b.WriteString(portName)
	for _, i := range indices {
		fmt.Fprintf(&b, "_%d", i)
	}
	b.WriteString("_")
	b.WriteString(varName)
	return b.String()
}

// Len returns the number of connections this table holds.
func (t *Table) Len() int { return len(t.entries) }

// All returns every connection, in enumeration order.
func (t *Table) All() []Connection { return t.entries }

// Remove consumes the connection with the given mangled name, the Go
// analogue of expaneded_modport.rs's remove-on-use bookkeeping: a
// signal may only be wired once per elaboration.
func (t *Table) Remove(name string) (Connection, error) {
	i, ok := t.byName[name]
	if !ok {
		return Connection{}, fmt.Errorf("modport connection %q not found", name)
	}
	if t.consumed[name] {
		return Connection{}, fmt.Errorf("modport connection %q already consumed", name)
	}
	t.consumed[name] = true
	return t.entries[i], nil
}

// Remaining reports the mangled names of every connection not yet
// consumed via Remove, used to detect under-connected instances.
func (t *Table) Remaining() []string {
	var out []string
	for _, e := range t.entries {
		if !t.consumed[e.MangledName] {
			out = append(out, e.MangledName)
		}
	}
	return out
}
