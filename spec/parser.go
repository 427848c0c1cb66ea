// Package spec parses compact protocol header specifications of the form
// "field1:bits1,field2:bits2,...[?opt1=val1,...]" into an ordered field
// list plus raw formatting options.
package spec

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// ErrMalformedSpec reports a spec string that does not match the spec
// grammar: bad field syntax, a missing or repeated separator, or a bit
// width that is not a positive integer.
var ErrMalformedSpec = errors.New("malformed spec")

var (
	specLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "WS", Pattern: `[ \t]+`},
		{Name: "Quest", Pattern: `\?`},
		{Name: "Comma", Pattern: `,`},
		{Name: "Colon", Pattern: `:`},
		{Name: "Eq", Pattern: `=`},
		{Name: "Number", Pattern: `\d+`},
		{Name: "Text", Pattern: `[^:,?=]+`},
	})

	specParser = participle.MustBuild[rawSpec](
		participle.Lexer(specLexer),
	)
)

// FieldSpec is one named bit-field, in spec order.
type FieldSpec struct {
	Text string
	Bits int
}

// Option is one raw key=value formatting option. Keys and values are
// kept verbatim here; interpretation happens when they are applied to a
// render configuration.
type Option struct {
	Key   string
	Value string
}

// Spec is the parsed form of one spec string.
type Spec struct {
	Fields  []FieldSpec
	Options []Option
}

// rawSpec is the grammar root. Field labels keep their spacing verbatim;
// bit counts tolerate surrounding blanks.
type rawSpec struct {
	Fields  []*rawField  `parser:"@@ ( Comma @@ )*"`
	Options []*rawOption `parser:"( Quest @@ ( Comma @@ )* )?"`
}

type rawField struct {
	Label joined `parser:"@( Text | Number | WS | Eq )*"`
	Bits  string `parser:"Colon WS? @Number WS?"`
}

type rawOption struct {
	Key   joined `parser:"@( Text | Number | WS )*"`
	Value joined `parser:"Eq @( Text | Number | WS | Colon )*"`
}

// joined concatenates every captured token back into one string, so a
// label like "Source Port" or "4over6" survives tokenization intact.
type joined string

// Capture implements participle.Capture.
func (j *joined) Capture(values []string) error {
	*j += joined(strings.Join(values, ""))
	return nil
}

// Parse parses a single spec string. The returned fields are in spec
// order; options are returned raw for the caller to apply.
func Parse(s string) (*Spec, error) {
	if strings.Count(s, "?") > 1 {
		return nil, fmt.Errorf("%w: %q: '?' used as option separator more than once", ErrMalformedSpec, s)
	}

	raw, err := specParser.ParseString("", s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrMalformedSpec, s, err)
	}

	out := &Spec{Fields: make([]FieldSpec, 0, len(raw.Fields))}
	for _, f := range raw.Fields {
		bits, err := strconv.Atoi(f.Bits)
		if err != nil || bits <= 0 {
			return nil, fmt.Errorf("%w: %q: field %q: bit width %q must be a positive integer",
				ErrMalformedSpec, s, string(f.Label), f.Bits)
		}
		out.Fields = append(out.Fields, FieldSpec{Text: string(f.Label), Bits: bits})
	}
	for _, o := range raw.Options {
		out.Options = append(out.Options, Option{Key: string(o.Key), Value: string(o.Value)})
	}
	return out, nil
}

// Valid reports whether s is a syntactically valid raw spec, independent
// of any protocol-name table. Option values are not interpreted here;
// an unknown or ill-valued option still makes a syntactically valid spec.
func Valid(s string) bool {
	_, err := Parse(s)
	return err == nil
}
