// Package checker implements the semantic checkers: handlers that
// enforce port-default purity, case-condition elaborativity, prototype
// conformance and expression-evaluation error surfacing. Each checker
// is a handler registered with the walker package's optional-interface
// dispatch rather than a monolithic visitor.
package checker

import (
	"github.com/veryl-lang/veryl/internal/ast"
	"github.com/veryl-lang/veryl/internal/diagnostics"
	"github.com/veryl-lang/veryl/internal/evaluator"
	"github.com/veryl-lang/veryl/internal/symbol"
	"github.com/veryl-lang/veryl/internal/walker"
)

// Resolver is the symbol-table surface every checker needs: expression
// evaluation, resolution and package-scope detection.
type Resolver interface {
	evaluator.Resolver
	IsDefinedInPackage(fullPath []symbol.Id) bool
}

// PortDefaultPurity enforces that an input port's default-value
// expression only references a SystemFunction, a const-bound generic
// parameter, or a package-scoped symbol.
type PortDefaultPurity struct {
	walker.BaseHandler
	Errors []*diagnostics.Error

	resolver  Resolver
	namespace []string

	inDefault bool
}

// NewPortDefaultPurity returns a checker resolving names in namespace.
func NewPortDefaultPurity(resolver Resolver, namespace []string) *PortDefaultPurity {
	return &PortDefaultPurity{resolver: resolver, namespace: namespace}
}

func (c *PortDefaultPurity) PortDeclaration(p *ast.PortDeclaration) error {
	if c.Point == walker.Before {
		c.inDefault = p.Direction == ast.DirInput && p.Default != nil
	} else {
		c.inDefault = false
	}
	return nil
}

func (c *PortDefaultPurity) IdentifierFactor(f *ast.IdentifierFactor) error {
	if c.Point != walker.Before || !c.inDefault {
		return nil
	}
	id := f.ExpressionIdentifier
	if id == nil {
		return nil
	}

	expr := symbol.ExpressionIdentifier{Absolute: id.Absolute, Super: id.Super, Path: id.Path, Range: f.Range()}
	res, derr := c.resolver.Resolve(expr, c.namespace)
	if derr != nil {
		// Unresolvable identifiers are a separate resolution diagnostic,
		// not this checker's concern.
		return nil
	}

	sym, ok := c.resolver.Get(res.Found)
	if !ok {
		return nil
	}

	available := false
	switch sym.Kind {
	case symbol.KindSystemFunction:
		available = true
	case symbol.KindGenericParameter:
		available = sym.GenericParameter != nil && sym.GenericParameter.Bound == symbol.GenericBoundConst
	default:
		available = c.resolver.IsDefinedInPackage(res.FullPath)
	}

	if !available {
		c.Errors = append(c.Errors, diagnostics.InvalidFactor(sym.Name, sym.Kind.KindName(), f.Range()))
	}
	return nil
}

// CaseElaborativity enforces that every case-label bound evaluates to
// Known.
type CaseElaborativity struct {
	walker.BaseHandler
	Errors []*diagnostics.Error

	eval *evaluator.Evaluator
}

// NewCaseElaborativity returns a checker using eval to fold range bounds.
func NewCaseElaborativity(eval *evaluator.Evaluator) *CaseElaborativity {
	return &CaseElaborativity{eval: eval}
}

func (c *CaseElaborativity) CaseCondition(cc *ast.CaseCondition) error {
	if c.Point != walker.Before {
		return nil
	}
	for _, item := range cc.Items {
		c.checkBound(item.Range.Expression)
		if item.Range.UpperBound != nil {
			c.checkBound(item.Range.UpperBound)
		}
	}
	return nil
}

func (c *CaseElaborativity) checkBound(expr ast.Expression) {
	res := c.eval.Expression(expr)
	for _, e := range res.Errors {
		c.Errors = append(c.Errors, diagnostics.FromEvaluated(e))
	}
	if !res.IsKnownStatic() {
		c.Errors = append(c.Errors, diagnostics.InvalidCaseConditionNonElaborative(expr.Range()))
	}
}

// ProtoConformance checks a module declaring prototype conformance
// against the target prototype's parameters and ports, emitting IncompatProto for each mismatch.
type ProtoConformance struct {
	walker.BaseHandler
	Errors []*diagnostics.Error

	resolver  Resolver
	namespace []string
}

// NewProtoConformance returns a checker resolving both the module and
// its prototype by name within namespace.
func NewProtoConformance(resolver Resolver, namespace []string) *ProtoConformance {
	return &ProtoConformance{resolver: resolver, namespace: namespace}
}

func (c *ProtoConformance) ModuleDeclaration(m *ast.ModuleDeclaration) error {
	if c.Point != walker.Before || m.Proto == "" {
		return nil
	}

	protoExpr := symbol.ExpressionIdentifier{Path: []string{m.Proto}, Range: m.Range()}
	protoRes, derr := c.resolver.Resolve(protoExpr, c.namespace)
	if derr != nil {
		return nil
	}
	protoSym, ok := c.resolver.Get(protoRes.Found)
	if !ok {
		return nil
	}
	if protoSym.Kind != symbol.KindProtoModule || protoSym.ProtoModule == nil {
		c.Errors = append(c.Errors, diagnostics.MismatchType(m.Proto, "module prototype", protoSym.Kind.KindName(), m.Range()))
		return nil
	}

	moduleExpr := symbol.ExpressionIdentifier{Path: []string{m.Name}, Range: m.Range()}
	moduleRes, derr := c.resolver.Resolve(moduleExpr, c.namespace)
	if derr != nil {
		return nil
	}
	moduleSym, ok := c.resolver.Get(moduleRes.Found)
	if !ok || moduleSym.Kind != symbol.KindModule || moduleSym.Module == nil {
		return nil
	}

	for _, cause := range checkCompat(protoSym.ProtoModule, moduleSym.Module) {
		c.Errors = append(c.Errors, diagnostics.IncompatProto(m.Name, m.Proto, cause.cause, cause.name, m.Range()))
	}
	return nil
}

type protoCause struct {
	cause diagnostics.ProtoIncompatibleCause
	name  string
}

// checkCompat is the Go analogue of ProtoModule::check_compat: it
// collects every missing/unnecessary/incompatible parameter and port on
// either side of the conformance check.
func checkCompat(proto *symbol.ProtoModule, module *symbol.Module) []protoCause {
	var out []protoCause

	protoParams := toSet(proto.Parameters)
	moduleParams := toSet(module.Parameters)
	for _, p := range proto.Parameters {
		if !moduleParams[p] {
			out = append(out, protoCause{diagnostics.CauseMissingParam, p})
		}
	}
	for _, p := range module.Parameters {
		if !protoParams[p] {
			out = append(out, protoCause{diagnostics.CauseUnnecessaryParam, p})
		}
	}

	for name, protoPort := range proto.Ports {
		modulePort, ok := module.Ports[name]
		if !ok {
			out = append(out, protoCause{diagnostics.CauseMissingPort, name})
			continue
		}
		if modulePort.Direction != protoPort.Direction || modulePort.Type != protoPort.Type {
			out = append(out, protoCause{diagnostics.CauseIncompatiblePort, name})
		}
	}
	for name := range module.Ports {
		if _, ok := proto.Ports[name]; !ok {
			out = append(out, protoCause{diagnostics.CauseUnnecessaryPort, name})
		}
	}

	return out
}

func toSet(items []string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, i := range items {
		m[i] = true
	}
	return m
}

// ExpressionEvaluation evaluates every expression appearing in a `let`,
// `assign`, `if`, `for`, `case`, `return`, `const`, `enum-item`,
// `with-parameter`, `generate-if` or `generate-for` position and
// surfaces any accumulated EvaluatedErrors. Unlike
// CaseElaborativity, it does not require the result to be Known — only
// that evaluation itself raised no error.
type ExpressionEvaluation struct {
	walker.BaseHandler
	Errors []*diagnostics.Error

	eval *evaluator.Evaluator
}

// NewExpressionEvaluation returns a checker folding expressions with eval.
func NewExpressionEvaluation(eval *evaluator.Evaluator) *ExpressionEvaluation {
	return &ExpressionEvaluation{eval: eval}
}

func (c *ExpressionEvaluation) record(expr ast.Expression) {
	if expr == nil {
		return
	}
	res := c.eval.Expression(expr)
	for _, e := range res.Errors {
		c.Errors = append(c.Errors, diagnostics.FromEvaluated(e))
	}
}

func (c *ExpressionEvaluation) LetStatement(n *ast.LetStatement) error {
	if c.Point == walker.Before {
		c.record(n.Expression)
	}
	return nil
}

func (c *ExpressionEvaluation) IdentifierStatement(n *ast.IdentifierStatement) error {
	if c.Point == walker.Before && n.Assignment != nil {
		c.record(n.Assignment.Expression)
	}
	return nil
}

func (c *ExpressionEvaluation) IfStatement(n *ast.IfStatement) error {
	if c.Point != walker.Before {
		return nil
	}
	c.record(n.If.Expression)
	for _, b := range n.ElseIfs {
		c.record(b.Expression)
	}
	return nil
}

func (c *ExpressionEvaluation) IfResetStatement(n *ast.IfResetStatement) error {
	if c.Point != walker.Before {
		return nil
	}
	for _, b := range n.Branches {
		c.record(b.Expression)
	}
	return nil
}

func (c *ExpressionEvaluation) ReturnStatement(n *ast.ReturnStatement) error {
	if c.Point == walker.Before {
		c.record(n.Expression)
	}
	return nil
}

func (c *ExpressionEvaluation) ForStatement(n *ast.ForStatement) error {
	if c.Point != walker.Before {
		return nil
	}
	c.record(n.Bounds.Expression)
	c.record(n.Bounds.UpperBound)
	c.record(n.Step)
	return nil
}

func (c *ExpressionEvaluation) CaseStatement(n *ast.CaseStatement) error {
	if c.Point == walker.Before {
		c.record(n.Expression)
	}
	return nil
}

func (c *ExpressionEvaluation) SwitchCondition(n *ast.SwitchCondition) error {
	if c.Point != walker.Before {
		return nil
	}
	for _, e := range n.Expressions {
		c.record(e)
	}
	return nil
}

func (c *ExpressionEvaluation) LetDeclaration(n *ast.LetDeclaration) error {
	if c.Point == walker.Before {
		c.record(n.Expression)
	}
	return nil
}

func (c *ExpressionEvaluation) ConstDeclaration(n *ast.ConstDeclaration) error {
	if c.Point == walker.Before {
		c.record(n.Expression)
	}
	return nil
}

func (c *ExpressionEvaluation) AssignDeclaration(n *ast.AssignDeclaration) error {
	if c.Point == walker.Before {
		c.record(n.Expression)
	}
	return nil
}

func (c *ExpressionEvaluation) EnumItem(n *ast.EnumItem) error {
	if c.Point == walker.Before && n.Expression != nil {
		c.record(n.Expression)
	}
	return nil
}

func (c *ExpressionEvaluation) WithParameterItem(n *ast.WithParameterItem) error {
	if c.Point == walker.Before {
		c.record(n.Expression)
	}
	return nil
}

func (c *ExpressionEvaluation) GenerateIfDeclaration(n *ast.GenerateIfDeclaration) error {
	if c.Point != walker.Before {
		return nil
	}
	c.record(n.If.Expression)
	for _, b := range n.ElseIfs {
		c.record(b.Expression)
	}
	return nil
}

func (c *ExpressionEvaluation) GenerateForDeclaration(n *ast.GenerateForDeclaration) error {
	if c.Point != walker.Before {
		return nil
	}
	c.record(n.Bounds.Expression)
	c.record(n.Bounds.UpperBound)
	c.record(n.Step)
	return nil
}

// PortDeclaration surfaces evaluation errors in a port's default value,
// matching port_type_concrete's evaluator call in check_expression.rs.
func (c *ExpressionEvaluation) PortDeclaration(n *ast.PortDeclaration) error {
	if c.Point == walker.Before && n.Default != nil {
		c.record(n.Default)
	}
	return nil
}

// AllErrors collects diagnostics from any set of checkers, preserving
// registration order — the walker's dispatch order is an observable
// contract and diagnostics are printed in source order
// per checker.
func AllErrors(checkers ...interface{ errs() []*diagnostics.Error }) []*diagnostics.Error {
	var out []*diagnostics.Error
	for _, c := range checkers {
		out = append(out, c.errs()...)
	}
	return out
}

func (c *PortDefaultPurity) errs() []*diagnostics.Error    { return c.Errors }
func (c *CaseElaborativity) errs() []*diagnostics.Error    { return c.Errors }
func (c *ProtoConformance) errs() []*diagnostics.Error     { return c.Errors }
func (c *ExpressionEvaluation) errs() []*diagnostics.Error { return c.Errors }
