// Package token holds source locations and lexical tokens shared by the
// analyzer, the walker and the diagnostics package. The concrete grammar
// and lexer live outside this repository's scope; this
// package only defines the contract they produce.
package token

import "fmt"

// Range is a byte-offset span into the original source text, plus the
// human-facing line/column used when rendering diagnostics.
type Range struct {
	Start  int
	End    int
	Line   int
	Column int
}

// Token is a single interned lexical token: its literal text and its
// location in the source it was read from.
type Token struct {
	Text  string
	Range Range
	File  string
}

func (t Token) String() string {
	return t.Text
}

// GoString renders a Token the way %#v would, used by golden dumps.
func (t Token) GoString() string {
	return fmt.Sprintf("%s@%s:%d:%d", t.Text, t.File, t.Range.Line, t.Range.Column)
}
