// Package symbol implements the global symbol table: a dense map of
// symbol id to symbol record with namespace-scoped resolution. The
// insert/get/resolve shape mirrors a SymbolTable.Find / ResolveType
// split; namespace-tree traversal and generic-parameter shadowing are
// implemented as innermost-scope-first lookups.
package symbol

import (
	"fmt"
	"math/big"
)

// Id is an opaque, dense identifier for a live symbol.
type Id uint32

// Direction of a port or modport member.
type Direction int

const (
	DirectionInput Direction = iota
	DirectionOutput
	DirectionInout
)

func (d Direction) String() string {
	switch d {
	case DirectionInput:
		return "input"
	case DirectionOutput:
		return "output"
	case DirectionInout:
		return "inout"
	default:
		return "unknown"
	}
}

// GenericBoundKind constrains what a generic parameter may be bound to.
type GenericBoundKind int

const (
	GenericBoundConst GenericBoundKind = iota
	GenericBoundType
)

// Kind is the tagged-variant symbol classification.
type Kind int

const (
	KindModule Kind = iota
	KindInterface
	KindPackage
	KindModport
	KindModportVariableMember
	KindPort
	KindVariable
	KindParameter
	KindConst
	KindFunction
	KindSystemFunction
	KindGenericParameter
	KindProtoModule
	KindEnum
	KindEnumMember
	KindStruct
	KindUnion
	KindTypeDef
)

var kindNames = map[Kind]string{
	KindModule:                "module",
	KindInterface:             "interface",
	KindPackage:               "package",
	KindModport:               "modport",
	KindModportVariableMember: "modport_variable_member",
	KindPort:                  "port",
	KindVariable:              "variable",
	KindParameter:             "parameter",
	KindConst:                 "const",
	KindFunction:              "function",
	KindSystemFunction:        "system_function",
	KindGenericParameter:      "generic_parameter",
	KindProtoModule:           "proto_module",
	KindEnum:                  "enum",
	KindEnumMember:            "enum_member",
	KindStruct:                "struct",
	KindUnion:                 "union",
	KindTypeDef:               "typedef",
}

// KindName returns the stable lowercase kind name used in diagnostics,
// the Go analogue of Rust's SymbolKind::to_kind_name.
func (k Kind) KindName() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unknown"
}

// ModportMember describes a ModportVariableMember: it
// always references a live Variable symbol and carries a direction.
type ModportMember struct {
	Variable  Id
	Direction Direction
}

// GenericParameter records the bound kind of a GenericParameter{bound}
// symbol variant.
type GenericParameter struct {
	Bound GenericBoundKind
}

// Modport groups the member ids of an interface modport, in declaration
// order (needed by the modport expander's row-major enumeration).
type Modport struct {
	Members []Id
}

// Port carries the direction and declared type name of a Port symbol.
// Type is left as a string handle here: full type-system modeling is
// out of scope, and ports are no exception.
type Port struct {
	Direction Direction
	Type      string
	HasDefault bool
}

// ProtoModule is the signature a prototype-conformant module is checked
// against.
type ProtoModule struct {
	Parameters []string
	Ports      map[string]Port
}

// Module is the concrete module signature compared against a
// ProtoModule during conformance checking.
type Module struct {
	Parameters []string
	Ports      map[string]Port
}

// GenericMap binds a generic parameter name to a concrete value,
// produced at each template instantiation site.
type GenericMap map[string]string

// Symbol is one entity discovered during parsing.
type Symbol struct {
	Id          Id
	Name        string
	Namespace   []string // ordered, outermost first
	Kind        Kind
	Parent      *Id // nil for root symbols

	// Type is the declared type of a Variable or ModportVariableMember
	// symbol, the same string-handle simplification Port.Type uses.
	Type string

	Modport          *Modport
	ModportMember    *ModportMember
	GenericParameter *GenericParameter
	ProtoModule      *ProtoModule
	Module           *Module
	Port             *Port

	// GenericMaps holds the concrete bindings produced by each
	// instantiation, populated during post-pass-1.
	GenericMaps []GenericMap

	// Value holds the folded constant value for Const, Parameter and
	// EnumMember symbols (populated once their initializer has been
	// evaluated). nil means "not yet known" — referencing it yields
	// Unknown, not an error, matching the evaluator's partial-evaluation
	// contract.
	Value *big.Int
}

func (s Symbol) String() string {
	return fmt.Sprintf("%s:%s@%v", s.Kind.KindName(), s.Name, s.Namespace)
}
