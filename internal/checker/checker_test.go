package checker

import (
	"testing"

	"github.com/veryl-lang/veryl/internal/ast"
	"github.com/veryl-lang/veryl/internal/diagnostics"
	"github.com/veryl-lang/veryl/internal/evaluator"
	"github.com/veryl-lang/veryl/internal/symbol"
	"github.com/veryl-lang/veryl/internal/walker"
)

// fakeResolver implements checker.Resolver over an in-memory symbol set,
// mirroring the fake used in the evaluator package's own tests.
type fakeResolver struct {
	symbols   map[symbol.Id]symbol.Symbol
	inPackage map[symbol.Id]bool
}

func (f *fakeResolver) Resolve(expr symbol.ExpressionIdentifier, _ []string) (symbol.Resolution, *diagnostics.Error) {
	for id, sym := range f.symbols {
		if len(expr.Path) >= 1 && sym.Name == expr.Path[len(expr.Path)-1] {
			return symbol.Resolution{Found: id, FullPath: []symbol.Id{id}}, nil
		}
	}
	return symbol.Resolution{}, diagnostics.NotFound(expr.Path[0], expr.Range)
}

func (f *fakeResolver) Get(id symbol.Id) (symbol.Symbol, bool) {
	sym, ok := f.symbols[id]
	return sym, ok
}

func (f *fakeResolver) IsDefinedInPackage(fullPath []symbol.Id) bool {
	if len(fullPath) == 0 {
		return false
	}
	return f.inPackage[fullPath[len(fullPath)-1]]
}

func identFactor(name string) *ast.IdentifierFactor {
	return &ast.IdentifierFactor{ExpressionIdentifier: &ast.ExpressionIdentifier{Path: []string{name}}}
}

func TestPortDefaultPurityRejectsVariableReference(t *testing.T) {
	r := &fakeResolver{symbols: map[symbol.Id]symbol.Symbol{
		1: {Id: 1, Name: "v", Kind: symbol.KindVariable},
	}}
	checkerUnderTest := NewPortDefaultPurity(r, nil)
	w := walker.New(checkerUnderTest)

	port := &ast.PortDeclaration{Name: "p", Direction: ast.DirInput, Default: identFactor("v")}
	if err := w.Walk(port); err != nil {
		t.Fatalf("Walk returned error: %v", err)
	}
	if len(checkerUnderTest.Errors) != 1 {
		t.Fatalf("expected exactly one diagnostic, got %d: %v", len(checkerUnderTest.Errors), checkerUnderTest.Errors)
	}
	if checkerUnderTest.Errors[0].Kind != diagnostics.KindInvalidFactor {
		t.Errorf("expected KindInvalidFactor, got %v", checkerUnderTest.Errors[0].Kind)
	}
}

func TestPortDefaultPurityAllowsSystemFunction(t *testing.T) {
	r := &fakeResolver{symbols: map[symbol.Id]symbol.Symbol{
		1: {Id: 1, Name: "clog2", Kind: symbol.KindSystemFunction},
	}}
	checkerUnderTest := NewPortDefaultPurity(r, nil)
	w := walker.New(checkerUnderTest)

	port := &ast.PortDeclaration{Name: "p", Direction: ast.DirInput, Default: identFactor("clog2")}
	if err := w.Walk(port); err != nil {
		t.Fatalf("Walk returned error: %v", err)
	}
	if len(checkerUnderTest.Errors) != 0 {
		t.Errorf("system function reference should be allowed, got %v", checkerUnderTest.Errors)
	}
}

func TestPortDefaultPurityAllowsPackageScopedConst(t *testing.T) {
	r := &fakeResolver{
		symbols:   map[symbol.Id]symbol.Symbol{1: {Id: 1, Name: "WIDTH", Kind: symbol.KindConst}},
		inPackage: map[symbol.Id]bool{1: true},
	}
	checkerUnderTest := NewPortDefaultPurity(r, nil)
	w := walker.New(checkerUnderTest)

	port := &ast.PortDeclaration{Name: "p", Direction: ast.DirInput, Default: identFactor("WIDTH")}
	if err := w.Walk(port); err != nil {
		t.Fatalf("Walk returned error: %v", err)
	}
	if len(checkerUnderTest.Errors) != 0 {
		t.Errorf("package-scoped const reference should be allowed, got %v", checkerUnderTest.Errors)
	}
}

func TestPortDefaultPurityIgnoresOutputPorts(t *testing.T) {
	r := &fakeResolver{symbols: map[symbol.Id]symbol.Symbol{
		1: {Id: 1, Name: "v", Kind: symbol.KindVariable},
	}}
	checkerUnderTest := NewPortDefaultPurity(r, nil)
	w := walker.New(checkerUnderTest)

	// Default is only meaningful on input ports; an output port's Default
	// (however unusual) must not trip inDefault at all.
	port := &ast.PortDeclaration{Name: "p", Direction: ast.DirOutput, Default: identFactor("v")}
	if err := w.Walk(port); err != nil {
		t.Fatalf("Walk returned error: %v", err)
	}
	if len(checkerUnderTest.Errors) != 0 {
		t.Errorf("output port defaults are not checked for purity, got %v", checkerUnderTest.Errors)
	}
}

func TestCaseElaborativityRejectsNonConstantBound(t *testing.T) {
	r := &fakeResolver{symbols: map[symbol.Id]symbol.Symbol{
		1: {Id: 1, Name: "v", Kind: symbol.KindVariable},
	}}
	eval := evaluator.New(r, nil)
	checkerUnderTest := NewCaseElaborativity(eval)
	w := walker.New(checkerUnderTest)

	cc := &ast.CaseCondition{Items: []ast.RangeItem{{Range: ast.Range{Expression: identFactor("v")}}}}
	if err := w.Walk(cc); err != nil {
		t.Fatalf("Walk returned error: %v", err)
	}
	if len(checkerUnderTest.Errors) == 0 {
		t.Fatalf("non-constant case bound should produce at least one diagnostic")
	}
}

func TestCaseElaborativityAcceptsConstantBound(t *testing.T) {
	checkerUnderTest := NewCaseElaborativity(evaluator.New(&fakeResolver{}, nil))
	w := walker.New(checkerUnderTest)

	cc := &ast.CaseCondition{Items: []ast.RangeItem{{Range: ast.Range{Expression: &ast.IntLiteral{Text: "1", Signed: true}}}}}
	if err := w.Walk(cc); err != nil {
		t.Fatalf("Walk returned error: %v", err)
	}
	if len(checkerUnderTest.Errors) != 0 {
		t.Errorf("a literal case bound should not raise a diagnostic, got %v", checkerUnderTest.Errors)
	}
}

func TestProtoConformanceDetectsMismatches(t *testing.T) {
	proto := &symbol.ProtoModule{
		Parameters: []string{"WIDTH"},
		Ports: map[string]symbol.Port{
			"clk": {Direction: symbol.DirectionInput, Type: "logic"},
			"dat": {Direction: symbol.DirectionInput, Type: "logic"},
		},
	}
	module := &symbol.Module{
		Parameters: []string{"DEPTH"},
		Ports: map[string]symbol.Port{
			"clk":   {Direction: symbol.DirectionOutput, Type: "logic"},
			"extra": {Direction: symbol.DirectionInput, Type: "logic"},
		},
	}

	r := &fakeResolver{symbols: map[symbol.Id]symbol.Symbol{
		1: {Id: 1, Name: "IFaceProto", Kind: symbol.KindProtoModule, ProtoModule: proto},
		2: {Id: 2, Name: "Impl", Kind: symbol.KindModule, Module: module},
	}}
	checkerUnderTest := NewProtoConformance(r, nil)
	w := walker.New(checkerUnderTest)

	m := &ast.ModuleDeclaration{Name: "Impl", Proto: "IFaceProto"}
	if err := w.Walk(m); err != nil {
		t.Fatalf("Walk returned error: %v", err)
	}

	if len(checkerUnderTest.Errors) == 0 {
		t.Fatalf("expected conformance diagnostics for mismatched params/ports")
	}
	kinds := map[diagnostics.Kind]bool{}
	for _, e := range checkerUnderTest.Errors {
		kinds[e.Kind] = true
	}
	if !kinds[diagnostics.KindIncompatProto] {
		t.Errorf("expected at least one IncompatProto diagnostic, got %v", checkerUnderTest.Errors)
	}
}

func TestProtoConformanceAcceptsMatchingModule(t *testing.T) {
	proto := &symbol.ProtoModule{
		Parameters: []string{"WIDTH"},
		Ports:      map[string]symbol.Port{"clk": {Direction: symbol.DirectionInput, Type: "logic"}},
	}
	module := &symbol.Module{
		Parameters: []string{"WIDTH"},
		Ports:      map[string]symbol.Port{"clk": {Direction: symbol.DirectionInput, Type: "logic"}},
	}
	r := &fakeResolver{symbols: map[symbol.Id]symbol.Symbol{
		1: {Id: 1, Name: "IFaceProto", Kind: symbol.KindProtoModule, ProtoModule: proto},
		2: {Id: 2, Name: "Impl", Kind: symbol.KindModule, Module: module},
	}}
	checkerUnderTest := NewProtoConformance(r, nil)
	w := walker.New(checkerUnderTest)

	m := &ast.ModuleDeclaration{Name: "Impl", Proto: "IFaceProto"}
	if err := w.Walk(m); err != nil {
		t.Fatalf("Walk returned error: %v", err)
	}
	if len(checkerUnderTest.Errors) != 0 {
		t.Errorf("matching module/prototype should not raise diagnostics, got %v", checkerUnderTest.Errors)
	}
}

func TestExpressionEvaluationSurfacesDivisionByZero(t *testing.T) {
	eval := evaluator.New(&fakeResolver{}, nil)
	checkerUnderTest := NewExpressionEvaluation(eval)
	w := walker.New(checkerUnderTest)

	stmt := &ast.LetStatement{Expression: &ast.BinaryExpr{
		Op:    ast.OpDiv,
		Left:  &ast.IntLiteral{Text: "1", Signed: true},
		Right: &ast.IntLiteral{Text: "0", Signed: true},
	}}
	if err := w.Walk(stmt); err != nil {
		t.Fatalf("Walk returned error: %v", err)
	}
	if len(checkerUnderTest.Errors) != 1 || checkerUnderTest.Errors[0].Kind != diagnostics.KindDivisionByZero {
		t.Errorf("expected a single KindDivisionByZero diagnostic, got %v", checkerUnderTest.Errors)
	}
}

func TestAllErrorsPreservesRegistrationOrder(t *testing.T) {
	c1 := &PortDefaultPurity{}
	c1.Errors = []*diagnostics.Error{{Kind: diagnostics.KindInvalidFactor, Message: "first"}}
	c2 := &CaseElaborativity{}
	c2.Errors = []*diagnostics.Error{{Kind: diagnostics.KindInvalidCaseConditionNonElaborative, Message: "second"}}

	all := AllErrors(c1, c2)
	if len(all) != 2 || all[0].Message != "first" || all[1].Message != "second" {
		t.Errorf("AllErrors should preserve registration order, got %v", all)
	}
}
