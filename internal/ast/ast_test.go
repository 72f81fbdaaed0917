package ast

import (
	"testing"

	"github.com/veryl-lang/veryl/internal/token"
)

func TestBaseRangeReturnsStoredRange(t *testing.T) {
	m := &ModuleDeclaration{base: base{Rng: token.Range{Line: 5, Column: 1}}, Name: "m"}
	if got := m.Range(); got != (token.Range{Line: 5, Column: 1}) {
		t.Errorf("Range() = %+v, want %+v", got, token.Range{Line: 5, Column: 1})
	}
}

func TestPortDeclarationChildrenOmitsNilDefault(t *testing.T) {
	p := &PortDeclaration{Name: "clk"}
	if got := p.Children(); got != nil {
		t.Errorf("Children() = %v, want nil for a port with no default", got)
	}
}

func TestPortDeclarationChildrenIncludesDefault(t *testing.T) {
	lit := &IntLiteral{Text: "1"}
	p := &PortDeclaration{Name: "width", Default: lit}
	got := p.Children()
	if len(got) != 1 || got[0] != Node(lit) {
		t.Errorf("Children() = %v, want [%v]", got, lit)
	}
}

func TestModuleDeclarationChildrenOrdersGenericsThenPortsThenBody(t *testing.T) {
	g := &GenericParamDecl{Name: "W"}
	port := &PortDeclaration{Name: "clk"}
	stmt := &ReturnStatement{}

	m := &ModuleDeclaration{
		Name:     "m",
		Generics: []*GenericParamDecl{g},
		Ports:    []*PortDeclaration{port},
		Body:     []Statement{stmt},
	}

	got := m.Children()
	want := []Node{g, port, stmt}
	if len(got) != len(want) {
		t.Fatalf("Children() length = %d, want %d (%v)", len(got), len(want), got)
	}
	for i, w := range want {
		if got[i] != w {
			t.Errorf("Children()[%d] = %v, want %v", i, got[i], w)
		}
	}
}

func TestModuleDeclarationChildrenEmptyWhenNothingDeclared(t *testing.T) {
	m := &ModuleDeclaration{Name: "m"}
	if got := m.Children(); len(got) != 0 {
		t.Errorf("Children() = %v, want empty", got)
	}
}

func TestBinaryExprChildrenIsLeftThenRight(t *testing.T) {
	left := &IntLiteral{Text: "1"}
	right := &IntLiteral{Text: "2"}
	b := &BinaryExpr{Left: left, Right: right, Op: "+"}

	got := b.Children()
	if len(got) != 2 || got[0] != Node(left) || got[1] != Node(right) {
		t.Errorf("Children() = %v, want [%v %v]", got, left, right)
	}
}

func TestInterfaceDeclarationChildrenOrdering(t *testing.T) {
	g := &GenericParamDecl{Name: "N"}
	v := &InterfaceVariable{Name: "data"}
	mp := &ModportDeclaration{Name: "master"}
	size := &IntLiteral{Text: "4"}

	i := &InterfaceDeclaration{
		Generics:  []*GenericParamDecl{g},
		Variables: []*InterfaceVariable{v},
		Modports:  []*ModportDeclaration{mp},
		ArraySize: []Expression{size},
	}

	got := i.Children()
	want := []Node{g, v, mp, size}
	if len(got) != len(want) {
		t.Fatalf("Children() length = %d, want %d", len(got), len(want))
	}
	for idx, w := range want {
		if got[idx] != w {
			t.Errorf("Children()[%d] = %v, want %v", idx, got[idx], w)
		}
	}
}

func TestLeafNodesHaveNoChildren(t *testing.T) {
	leaves := []Node{
		&GenericParamDecl{Name: "W"},
		&ModportItem{VariableName: "clk"},
		&InterfaceVariable{Name: "data"},
		&ExpressionIdentifier{},
		&IntLiteral{Text: "0"},
	}
	for _, n := range leaves {
		if got := n.Children(); got != nil {
			t.Errorf("%T.Children() = %v, want nil", n, got)
		}
	}
}
