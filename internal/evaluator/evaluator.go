// Package evaluator implements the elaboration-time constant evaluator:
// partial evaluation of expressions over symbol values and generic
// bindings. Node-kind dispatch is one method per AST expression kind,
// each folding to a big.Int-backed value; arithmetic is two's-complement
// at the operand's declared width, && / || short-circuit, and a shift by
// a negative amount is a hard error rather than a silently wrapped one.
package evaluator

import (
	"math/big"

	"github.com/veryl-lang/veryl/internal/ast"
	"github.com/veryl-lang/veryl/internal/diagnostics"
	"github.com/veryl-lang/veryl/internal/symbol"
	"github.com/veryl-lang/veryl/internal/token"
)

// State is the three-way outcome of evaluating an expression
//.
type State int

const (
	Known State = iota
	Unknown
	Errored
)

// Value is an arbitrary-precision, explicitly-widthed integer.
type Value struct {
	Int    *big.Int
	Signed bool
	Width  int
}

// Result is the outcome of evaluating one expression.
type Result struct {
	State  State
	Value  Value
	Errors []diagnostics.EvaluatedError
}

// IsKnownStatic returns true iff the result is Known. Consumers such as
// case-condition checking use this to enforce elaboration-time
// constants.
func (r Result) IsKnownStatic() bool { return r.State == Known }

// GetValue extracts an int, used by array-size evaluation
// where only Known results are usable.
func (r Result) GetValue() (int, bool) {
	if r.State != Known || r.Value.Int == nil {
		return 0, false
	}
	return int(r.Value.Int.Int64()), true
}

func known(v int64) Result {
	return Result{State: Known, Value: Value{Int: big.NewInt(v), Signed: true, Width: 32}}
}

func unknown() Result {
	return Result{State: Unknown}
}

func errored(errs ...diagnostics.EvaluatedError) Result {
	return Result{State: Errored, Errors: errs}
}

// Resolver is the subset of the symbol table the evaluator needs:
// scoped name resolution and id lookup. Declared here (rather than
// importing *symbol.Table directly) so tests can substitute a fake.
type Resolver interface {
	Resolve(expr symbol.ExpressionIdentifier, callerNamespace []string) (symbol.Resolution, *diagnostics.Error)
	Get(id symbol.Id) (symbol.Symbol, bool)
}

// Evaluator folds expressions against a symbol table and a stack of
// generic-parameter bindings. evaluate(expr) is pure with respect to
// both: repeated calls with the same table
// state and generic stack yield identical results.
type Evaluator struct {
	resolver  Resolver
	namespace []string
	// genericStack is ordered outermost-first; identifier lookup
	// consults the innermost (last) frame first, the correct behavior
	// during nested template expansion.
	genericStack []symbol.GenericMap
}

// New returns an Evaluator bound to resolver, resolving bare identifiers
// within namespace.
func New(resolver Resolver, namespace []string) *Evaluator {
	return &Evaluator{resolver: resolver, namespace: namespace}
}

// PushGenericMap pushes a new innermost generic-binding frame, entered
// at a template instantiation site.
func (e *Evaluator) PushGenericMap(m symbol.GenericMap) {
	e.genericStack = append(e.genericStack, m)
}

// PopGenericMap pops the innermost generic-binding frame.
func (e *Evaluator) PopGenericMap() {
	if len(e.genericStack) > 0 {
		e.genericStack = e.genericStack[:len(e.genericStack)-1]
	}
}

func (e *Evaluator) lookupGeneric(name string) (string, bool) {
	for i := len(e.genericStack) - 1; i >= 0; i-- {
		if v, ok := e.genericStack[i][name]; ok {
			return v, true
		}
	}
	return "", false
}

// Expression folds expr to a Result.
func (e *Evaluator) Expression(expr ast.Expression) Result {
	switch x := expr.(type) {
	case nil:
		return unknown()
	case *ast.IntLiteral:
		return e.intLiteral(x)
	case *ast.IdentifierFactor:
		return e.identifierFactor(x)
	case *ast.UnaryExpr:
		return e.unary(x)
	case *ast.BinaryExpr:
		return e.binary(x)
	default:
		return unknown()
	}
}

func (e *Evaluator) intLiteral(lit *ast.IntLiteral) Result {
	v := new(big.Int)
	if _, ok := v.SetString(lit.Text, 0); !ok {
		return errored(diagnostics.NewEvaluatedError(
			diagnostics.EvalOverflow, lit.Range(), "invalid integer literal "+lit.Text))
	}
	width := lit.Width
	if width == 0 {
		width = v.BitLen()
		if width == 0 {
			width = 1
		}
	}
	return Result{State: Known, Value: Value{Int: v, Signed: lit.Signed, Width: width}}
}

func (e *Evaluator) identifierFactor(f *ast.IdentifierFactor) Result {
	id := f.ExpressionIdentifier
	if id == nil || len(id.Path) == 0 {
		return unknown()
	}

	// A bare (single-segment, relative) path may name a generic
	// parameter bound in the current expansion frame; those shadow
	// outer symbol-table names.
	if !id.Absolute && len(id.Path) == 1 {
		if v, ok := e.lookupGeneric(id.Path[0]); ok {
			n := new(big.Int)
			if _, ok := n.SetString(v, 0); ok {
				return Result{State: Known, Value: Value{Int: n, Signed: true, Width: n.BitLen()}}
			}
			return errored(diagnostics.NewEvaluatedError(
				diagnostics.EvalGenericUnbound, f.Range(), "unresolved generic "+id.Path[0]))
		}
	}

	expr := symbol.ExpressionIdentifier{
		Absolute: id.Absolute,
		Super:    id.Super,
		Path:     id.Path,
		Range:    f.Range(),
	}
	res, derr := e.resolver.Resolve(expr, e.namespace)
	if derr != nil {
		return errored(diagnostics.NewEvaluatedError(
			diagnostics.EvalNonConstInConstCtx, f.Range(), derr.Message))
	}

	sym, ok := e.resolver.Get(res.Found)
	if !ok {
		return unknown()
	}

	switch sym.Kind {
	case symbol.KindConst, symbol.KindParameter, symbol.KindEnumMember:
		if sym.Value == nil {
			return unknown()
		}
		return Result{State: Known, Value: Value{Int: new(big.Int).Set(sym.Value), Signed: true, Width: sym.Value.BitLen()}}
	case symbol.KindGenericParameter:
		if sym.GenericParameter != nil && sym.GenericParameter.Bound == symbol.GenericBoundConst {
			if sym.Value != nil {
				return Result{State: Known, Value: Value{Int: new(big.Int).Set(sym.Value), Signed: true, Width: sym.Value.BitLen()}}
			}
			return unknown()
		}
		return errored(diagnostics.NewEvaluatedError(
			diagnostics.EvalGenericUnbound, f.Range(), "generic type parameter has no constant value"))
	case symbol.KindSystemFunction:
		return unknown()
	case symbol.KindVariable, symbol.KindPort:
		return errored(diagnostics.NewEvaluatedError(
			diagnostics.EvalNonConstInConstCtx, f.Range(),
			"reference to non-const symbol "+sym.Name+" in const context"))
	default:
		return unknown()
	}
}

func combine(results ...Result) ([]diagnostics.EvaluatedError, bool) {
	var errs []diagnostics.EvaluatedError
	allKnown := true
	for _, r := range results {
		errs = append(errs, r.Errors...)
		if r.State != Known {
			allKnown = false
		}
	}
	return errs, allKnown
}

func (e *Evaluator) unary(u *ast.UnaryExpr) Result {
	operand := e.Expression(u.Operand)
	if errs, ok := combine(operand); len(errs) > 0 {
		return errored(errs...)
	} else if !ok {
		return unknown()
	}

	v := operand.Value
	switch u.Op {
	case ast.OpNeg:
		return Result{State: Known, Value: Value{Int: new(big.Int).Neg(v.Int), Signed: true, Width: v.Width}}
	case ast.OpInv:
		return Result{State: Known, Value: Value{Int: new(big.Int).Not(v.Int), Signed: v.Signed, Width: v.Width}}
	case ast.OpNot:
		if v.Int.Sign() == 0 {
			return known(1)
		}
		return known(0)
	default:
		return unknown()
	}
}

func (e *Evaluator) binary(b *ast.BinaryExpr) Result {
	// && and || short-circuit: only evaluate the right
	// side when the left side cannot already decide the result.
	if b.Op == ast.OpLAnd || b.Op == ast.OpLOr {
		left := e.Expression(b.Left)
		if left.State == Errored {
			return left
		}
		if left.State == Known {
			leftTrue := left.Value.Int.Sign() != 0
			if b.Op == ast.OpLAnd && !leftTrue {
				return known(0)
			}
			if b.Op == ast.OpLOr && leftTrue {
				return known(1)
			}
		}
		right := e.Expression(b.Right)
		if right.State == Errored {
			return right
		}
		if left.State != Known || right.State != Known {
			return unknown()
		}
		rightTrue := right.Value.Int.Sign() != 0
		if b.Op == ast.OpLAnd {
			return boolResult(rightTrue)
		}
		return boolResult(rightTrue)
	}

	left := e.Expression(b.Left)
	right := e.Expression(b.Right)
	errs, allKnown := combine(left, right)
	if len(errs) > 0 {
		return errored(errs...)
	}
	if !allKnown {
		return unknown()
	}

	lv, rv := left.Value, right.Value
	width := lv.Width
	if rv.Width > width {
		width = rv.Width
	}
	signed := lv.Signed || rv.Signed

	switch b.Op {
	case ast.OpAdd:
		return wrapped(new(big.Int).Add(lv.Int, rv.Int), signed, width)
	case ast.OpSub:
		return wrapped(new(big.Int).Sub(lv.Int, rv.Int), signed, width)
	case ast.OpMul:
		return wrapped(new(big.Int).Mul(lv.Int, rv.Int), signed, width)
	case ast.OpDiv:
		if rv.Int.Sign() == 0 {
			return errored(diagnostics.NewEvaluatedError(
				diagnostics.EvalDivisionByZero, b.Range(), "division by zero"))
		}
		return wrapped(new(big.Int).Quo(lv.Int, rv.Int), signed, width)
	case ast.OpMod:
		if rv.Int.Sign() == 0 {
			return errored(diagnostics.NewEvaluatedError(
				diagnostics.EvalDivisionByZero, b.Range(), "division by zero"))
		}
		return wrapped(new(big.Int).Rem(lv.Int, rv.Int), signed, width)
	case ast.OpAnd:
		return wrapped(new(big.Int).And(lv.Int, rv.Int), signed, width)
	case ast.OpOr:
		return wrapped(new(big.Int).Or(lv.Int, rv.Int), signed, width)
	case ast.OpXor:
		return wrapped(new(big.Int).Xor(lv.Int, rv.Int), signed, width)
	case ast.OpShl:
		return e.shift(lv, rv, width, signed, true, b.Range())
	case ast.OpShr:
		return e.shift(lv, rv, width, signed, false, b.Range())
	case ast.OpEq:
		return boolResult(lv.Int.Cmp(rv.Int) == 0)
	case ast.OpNeq:
		return boolResult(lv.Int.Cmp(rv.Int) != 0)
	case ast.OpLt:
		return boolResult(lv.Int.Cmp(rv.Int) < 0)
	case ast.OpLe:
		return boolResult(lv.Int.Cmp(rv.Int) <= 0)
	case ast.OpGt:
		return boolResult(lv.Int.Cmp(rv.Int) > 0)
	case ast.OpGe:
		return boolResult(lv.Int.Cmp(rv.Int) >= 0)
	default:
		return unknown()
	}
}

func (e *Evaluator) shift(lv, rv Value, width int, signed bool, left bool, rng token.Range) Result {
	if rv.Int.Sign() < 0 {
		return errored(diagnostics.NewEvaluatedError(
			diagnostics.EvalShiftOverflow, rng, "shift by negative amount"))
	}
	n := uint(rv.Int.Uint64())
	var result *big.Int
	if left {
		result = new(big.Int).Lsh(lv.Int, n)
	} else {
		result = new(big.Int).Rsh(lv.Int, n)
	}
	return wrapped(result, signed, width)
}

func boolResult(b bool) Result {
	if b {
		return known(1)
	}
	return known(0)
}

// wrapped applies 2's-complement truncation to width bits, the explicit
// bit-width arithmetic every operator's result must carry.
func wrapped(v *big.Int, signed bool, width int) Result {
	if width <= 0 {
		return Result{State: Known, Value: Value{Int: v, Signed: signed, Width: width}}
	}
	mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(width)), big.NewInt(1))
	truncated := new(big.Int).And(v, mask)
	if signed {
		signBit := new(big.Int).Lsh(big.NewInt(1), uint(width-1))
		if truncated.Cmp(signBit) >= 0 {
			truncated.Sub(truncated, new(big.Int).Lsh(big.NewInt(1), uint(width)))
		}
	}
	return Result{State: Known, Value: Value{Int: truncated, Signed: signed, Width: width}}
}
