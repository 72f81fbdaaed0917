package resource

import "testing"

func TestInternStrDedups(t *testing.T) {
	tbl := New()

	a := tbl.InternStr("foo")
	b := tbl.InternStr("bar")
	c := tbl.InternStr("foo")

	if a != c {
		t.Errorf("InternStr(\"foo\") = %d, then %d; want identical ids", a, c)
	}
	if a == b {
		t.Errorf("InternStr(\"foo\") and InternStr(\"bar\") collided: %d", a)
	}
	if got := tbl.Str(a); got != "foo" {
		t.Errorf("Str(%d) = %q, want foo", a, got)
	}
	if got := tbl.Str(b); got != "bar" {
		t.Errorf("Str(%d) = %q, want bar", b, got)
	}
}

func TestInternPathDedups(t *testing.T) {
	tbl := New()

	p1 := tbl.InternPath("/a/b.vl")
	p2 := tbl.InternPath("/a/b.vl")
	p3 := tbl.InternPath("/a/c.vl")

	if p1 != p2 {
		t.Errorf("InternPath should dedup identical paths: %d != %d", p1, p2)
	}
	if p1 == p3 {
		t.Errorf("InternPath should not collide distinct paths")
	}
}

func TestNewTokenMonotonic(t *testing.T) {
	tbl := New()

	var ids []TokenId
	for i := 0; i < 5; i++ {
		ids = append(ids, tbl.NewToken())
	}
	for i, id := range ids {
		if int(id) != i {
			t.Errorf("NewToken()[%d] = %d, want %d", i, id, i)
		}
	}
}

func TestClearResetsTables(t *testing.T) {
	tbl := New()
	tbl.InternStr("foo")
	tbl.InternPath("/a")
	tbl.NewToken()

	tbl.Clear()

	if got := tbl.InternStr("foo"); got != 0 {
		t.Errorf("after Clear, InternStr(\"foo\") = %d, want 0 (fresh table)", got)
	}
	if got := tbl.NewToken(); got != 0 {
		t.Errorf("after Clear, NewToken() = %d, want 0", got)
	}
}
