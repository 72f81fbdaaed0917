// Package walker implements the generic AST traversal and handler
// dispatch protocol: multiple independently registered handlers, each
// observing every node at both a Before and an After point, in
// registration order. A single-Visitor/Accept pattern generalizes here
// into Go's optional-interface idiom — the same shape as http
// middleware or io.Writer's optional ReaderFrom/WriterTo — instead of
// one monolithic Visitor interface, since not every handler cares about
// every node kind.
package walker

import "github.com/veryl-lang/veryl/internal/ast"

// HandlerPoint marks whether a handler callback fires before or after a
// node's children have been visited.
type HandlerPoint int

const (
	Before HandlerPoint = iota
	After
)

// Handler is any object a Walker can drive. SetPoint is the only
// mandatory method; node callbacks are optional and discovered via
// type assertion in dispatch.
type Handler interface {
	SetPoint(HandlerPoint)
}

// Per-node callback interfaces. A Handler implements only the ones it
// needs; the walker calls whichever is present, at both Before and
// After (the handler itself distinguishes the two via the point it was
// last told about, exactly like check_expression.rs's identifier_factor
// checking `if let HandlerPoint::Before = self.point`).
type (
	ModuleDeclarationHandler interface {
		ModuleDeclaration(*ast.ModuleDeclaration) error
	}
	PortDeclarationHandler interface {
		PortDeclaration(*ast.PortDeclaration) error
	}
	PortDefaultValueHandler interface {
		PortDefaultValue(*ast.PortDeclaration) error
	}
	IdentifierFactorHandler interface {
		IdentifierFactor(*ast.IdentifierFactor) error
	}
	LetStatementHandler interface {
		LetStatement(*ast.LetStatement) error
	}
	IdentifierStatementHandler interface {
		IdentifierStatement(*ast.IdentifierStatement) error
	}
	IfStatementHandler interface {
		IfStatement(*ast.IfStatement) error
	}
	IfResetStatementHandler interface {
		IfResetStatement(*ast.IfResetStatement) error
	}
	ReturnStatementHandler interface {
		ReturnStatement(*ast.ReturnStatement) error
	}
	ForStatementHandler interface {
		ForStatement(*ast.ForStatement) error
	}
	CaseStatementHandler interface {
		CaseStatement(*ast.CaseStatement) error
	}
	CaseConditionHandler interface {
		CaseCondition(*ast.CaseCondition) error
	}
	SwitchConditionHandler interface {
		SwitchCondition(*ast.SwitchCondition) error
	}
	LetDeclarationHandler interface {
		LetDeclaration(*ast.LetDeclaration) error
	}
	ConstDeclarationHandler interface {
		ConstDeclaration(*ast.ConstDeclaration) error
	}
	AssignDeclarationHandler interface {
		AssignDeclaration(*ast.AssignDeclaration) error
	}
	EnumItemHandler interface {
		EnumItem(*ast.EnumItem) error
	}
	InstDeclarationHandler interface {
		InstDeclaration(*ast.InstDeclaration) error
	}
	WithParameterItemHandler interface {
		WithParameterItem(*ast.WithParameterItem) error
	}
	GenerateIfDeclarationHandler interface {
		GenerateIfDeclaration(*ast.GenerateIfDeclaration) error
	}
	GenerateForDeclarationHandler interface {
		GenerateForDeclaration(*ast.GenerateForDeclaration) error
	}
)

// Walker drives a depth-first traversal over an AST, invoking every
// registered handler at each node's Before and After points, in
// registration order. That order is an observable contract: handlers
// that depend on each other's side effects rely on it.
type Walker struct {
	handlers []Handler
}

// New returns a Walker with the given handlers registered in the given
// order.
func New(handlers ...Handler) *Walker {
	return &Walker{handlers: handlers}
}

// Walk traverses root depth-first. An error from any handler callback
// halts traversal immediately and is returned to the caller.
func (w *Walker) Walk(root ast.Node) error {
	return w.visit(root)
}

func (w *Walker) visit(n ast.Node) error {
	if n == nil {
		return nil
	}

	for _, h := range w.handlers {
		h.SetPoint(Before)
		if err := dispatch(h, n); err != nil {
			return err
		}
	}

	for _, c := range n.Children() {
		if err := w.visit(c); err != nil {
			return err
		}
	}

	for _, h := range w.handlers {
		h.SetPoint(After)
		if err := dispatch(h, n); err != nil {
			return err
		}
	}

	return nil
}

// dispatch calls the handler callback matching n's concrete type, if the
// handler implements it. Handlers share no state with each other: all
// cross-handler communication flows through the symbol table, never
// through this function.
func dispatch(h Handler, n ast.Node) error {
	switch x := n.(type) {
	case *ast.ModuleDeclaration:
		if hh, ok := h.(ModuleDeclarationHandler); ok {
			return hh.ModuleDeclaration(x)
		}
	case *ast.PortDeclaration:
		if hh, ok := h.(PortDeclarationHandler); ok {
			if err := hh.PortDeclaration(x); err != nil {
				return err
			}
		}
		if x.Default != nil {
			if hh, ok := h.(PortDefaultValueHandler); ok {
				return hh.PortDefaultValue(x)
			}
		}
	case *ast.IdentifierFactor:
		if hh, ok := h.(IdentifierFactorHandler); ok {
			return hh.IdentifierFactor(x)
		}
	case *ast.LetStatement:
		if hh, ok := h.(LetStatementHandler); ok {
			return hh.LetStatement(x)
		}
	case *ast.IdentifierStatement:
		if hh, ok := h.(IdentifierStatementHandler); ok {
			return hh.IdentifierStatement(x)
		}
	case *ast.IfStatement:
		if hh, ok := h.(IfStatementHandler); ok {
			return hh.IfStatement(x)
		}
	case *ast.IfResetStatement:
		if hh, ok := h.(IfResetStatementHandler); ok {
			return hh.IfResetStatement(x)
		}
	case *ast.ReturnStatement:
		if hh, ok := h.(ReturnStatementHandler); ok {
			return hh.ReturnStatement(x)
		}
	case *ast.ForStatement:
		if hh, ok := h.(ForStatementHandler); ok {
			return hh.ForStatement(x)
		}
	case *ast.CaseStatement:
		if hh, ok := h.(CaseStatementHandler); ok {
			return hh.CaseStatement(x)
		}
	case *ast.CaseCondition:
		if hh, ok := h.(CaseConditionHandler); ok {
			return hh.CaseCondition(x)
		}
	case *ast.SwitchCondition:
		if hh, ok := h.(SwitchConditionHandler); ok {
			return hh.SwitchCondition(x)
		}
	case *ast.LetDeclaration:
		if hh, ok := h.(LetDeclarationHandler); ok {
			return hh.LetDeclaration(x)
		}
	case *ast.ConstDeclaration:
		if hh, ok := h.(ConstDeclarationHandler); ok {
			return hh.ConstDeclaration(x)
		}
	case *ast.AssignDeclaration:
		if hh, ok := h.(AssignDeclarationHandler); ok {
			return hh.AssignDeclaration(x)
		}
	case *ast.EnumItem:
		if hh, ok := h.(EnumItemHandler); ok {
			return hh.EnumItem(x)
		}
	case *ast.InstDeclaration:
		if hh, ok := h.(InstDeclarationHandler); ok {
			return hh.InstDeclaration(x)
		}
	case *ast.WithParameterItem:
		if hh, ok := h.(WithParameterItemHandler); ok {
			return hh.WithParameterItem(x)
		}
	case *ast.GenerateIfDeclaration:
		if hh, ok := h.(GenerateIfDeclarationHandler); ok {
			return hh.GenerateIfDeclaration(x)
		}
	case *ast.GenerateForDeclaration:
		if hh, ok := h.(GenerateForDeclarationHandler); ok {
			return hh.GenerateForDeclaration(x)
		}
	}
	return nil
}

// BaseHandler is an embeddable no-op Handler; concrete checkers embed it
// and only override the node callbacks they care about.
type BaseHandler struct {
	Point HandlerPoint
}

func (b *BaseHandler) SetPoint(p HandlerPoint) { b.Point = p }
