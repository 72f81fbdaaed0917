package walker

import (
	"testing"

	"github.com/veryl-lang/veryl/internal/ast"
)

// recordingHandler records the order in which it is visited, as both
// Before and After, to assert the walker's traversal contract.
type recordingHandler struct {
	BaseHandler
	events []string
}

func (h *recordingHandler) ModuleDeclaration(m *ast.ModuleDeclaration) error {
	if h.Point == Before {
		h.events = append(h.events, "before:"+m.Name)
	} else {
		h.events = append(h.events, "after:"+m.Name)
	}
	return nil
}

func (h *recordingHandler) PortDeclaration(p *ast.PortDeclaration) error {
	point := "before"
	if h.Point == After {
		point = "after"
	}
	h.events = append(h.events, point+":port:"+p.Name)
	return nil
}

func TestWalkVisitsBeforeChildrenAfter(t *testing.T) {
	m := &ast.ModuleDeclaration{
		Name: "top",
		Ports: []*ast.PortDeclaration{
			{Name: "clk"},
		},
	}

	h := &recordingHandler{}
	w := New(h)
	if err := w.Walk(m); err != nil {
		t.Fatalf("Walk returned error: %v", err)
	}

	want := []string{"before:top", "before:port:clk", "after:port:clk", "after:top"}
	if len(h.events) != len(want) {
		t.Fatalf("events = %v, want %v", h.events, want)
	}
	for i, e := range want {
		if h.events[i] != e {
			t.Errorf("events[%d] = %q, want %q (full: %v)", i, h.events[i], e, h.events)
		}
	}
}

func TestMultipleHandlersAllObserveNode(t *testing.T) {
	h1 := &recordingHandler{}
	h2 := &recordingHandler{}
	w := New(h1, h2)

	m := &ast.ModuleDeclaration{Name: "m"}
	if err := w.Walk(m); err != nil {
		t.Fatalf("Walk returned error: %v", err)
	}
	if len(h1.events) == 0 || len(h2.events) == 0 {
		t.Fatalf("both registered handlers should have observed the node: h1=%v h2=%v", h1.events, h2.events)
	}
}

// portDefaultOnlyHandler implements only PortDefaultValueHandler, to
// confirm the walker's optional-interface dispatch skips handlers that
// don't implement a given node's callback without erroring.
type portDefaultOnlyHandler struct {
	BaseHandler
	calls int
}

func (h *portDefaultOnlyHandler) PortDefaultValue(p *ast.PortDeclaration) error {
	h.calls++
	return nil
}

func TestOptionalHandlerInterfaceIsSkippedWhenAbsent(t *testing.T) {
	h := &portDefaultOnlyHandler{}
	w := New(h)

	withDefault := &ast.PortDeclaration{Name: "p", Default: &ast.IntLiteral{Text: "1"}}
	if err := w.Walk(withDefault); err != nil {
		t.Fatalf("Walk returned error: %v", err)
	}
	if h.calls != 2 {
		t.Errorf("PortDefaultValue should fire once at Before and once at After for a port with a default, got %d calls", h.calls)
	}

	h2 := &portDefaultOnlyHandler{}
	w2 := New(h2)
	withoutDefault := &ast.PortDeclaration{Name: "q"}
	if err := w2.Walk(withoutDefault); err != nil {
		t.Fatalf("Walk returned error: %v", err)
	}
	if h2.calls != 0 {
		t.Errorf("PortDefaultValue should not fire for a port with no default, got %d calls", h2.calls)
	}
}

// errHandler returns an error from ModuleDeclaration to test early exit.
type errHandler struct {
	BaseHandler
}

func (errHandler) ModuleDeclaration(*ast.ModuleDeclaration) error {
	return errStop
}

var errStop = &walkError{"stop"}

type walkError struct{ msg string }

func (e *walkError) Error() string { return e.msg }

func TestWalkStopsOnHandlerError(t *testing.T) {
	w := New(&errHandler{})
	m := &ast.ModuleDeclaration{
		Name:  "m",
		Ports: []*ast.PortDeclaration{{Name: "p"}},
	}
	err := w.Walk(m)
	if err != errStop {
		t.Fatalf("Walk should propagate the handler's error, got %v", err)
	}
}
