// Package ascii renders a segmented field sequence as an RFC-style
// plain-text bit-field diagram.
package ascii

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/sanecz/protocol/layout"
)

// Renderer draws layout results as ASCII diagrams. It is stateless and
// safe to reuse across runs.
type Renderer struct{}

// NewRenderer returns a text diagram renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render produces the diagram text for result. Lines are joined with
// "\n" and carry no trailing newline.
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("ascii: nil layout result")
	}
	d := &drawer{cfg: result.Config, fields: result.Fields}
	return []byte(d.draw()), nil
}

// drawer accumulates output lines for one diagram.
type drawer struct {
	cfg    layout.Config
	fields []layout.ProtoField
	lines  []string
}

func (d *drawer) draw() string {
	bpl := d.cfg.BitsPerLine

	if d.cfg.ShowBitNumbers {
		d.lines = append(d.lines, d.tensRuler(), d.unitsRuler())
	}
	d.lines = append(d.lines, d.horizontal(bpl))

	var row strings.Builder
	rowBits := 0
	for i, f := range d.fields {
		if f.LenBits > bpl {
			// Exact multiple of the line width starting on a row
			// boundary: stacked block spanning several rows.
			d.stackedBlock(f)
			continue
		}

		if rowBits == 0 {
			row.WriteRune(d.cfg.SepChar)
		}
		row.WriteString(d.cell(f.Text, f.LenBits))
		row.WriteRune(d.cfg.SepChar)
		rowBits += f.LenBits

		switch {
		case rowBits == bpl:
			d.lines = append(d.lines, row.String())
			row.Reset()
			rowBits = 0
			if f.MoreFragments && i+1 < len(d.fields) {
				d.lines = append(d.lines, d.fragmentBorder(f.LenBits, d.fields[i+1].LenBits))
			} else {
				d.lines = append(d.lines, d.horizontal(bpl))
			}
		case i == len(d.fields)-1:
			// Final field leaves the last row partially filled; close
			// it with a border covering only the used width.
			d.lines = append(d.lines, row.String())
			d.lines = append(d.lines, d.horizontal(rowBits))
		}
	}

	return strings.Join(d.lines, "\n")
}

// stackedBlock renders a field spanning n whole rows as 2n-1 stacked
// lines: sepChar-delimited rows alternating with startChar/endChar
// connector rows, the label centered on the middle line, and a full
// border after the last one.
func (d *drawer) stackedBlock(f layout.ProtoField) {
	bpl := d.cfg.BitsPerLine
	n := f.LenBits / bpl
	mid := n - 1
	for j := 0; j < 2*n-1; j++ {
		text := ""
		if j == mid {
			text = f.Text
		}
		left, right := d.cfg.SepChar, d.cfg.SepChar
		if j%2 == 1 {
			left, right = d.cfg.StartChar, d.cfg.EndChar
		}
		d.lines = append(d.lines, string(left)+d.cell(text, bpl)+string(right))
	}
	d.lines = append(d.lines, d.horizontal(bpl))
}

// fragmentBorder draws the row border after a row whose last field
// continues below. The border is suppressed over the columns the two
// fragments share, so their separator visually disappears; columns
// belonging to earlier fields (left) or past the end of the next
// fragment (right) still get border drawing.
func (d *drawer) fragmentBorder(justFilled, next int) string {
	bpl := d.cfg.BitsPerLine
	unshared := bpl - justFilled
	overlap := min(next, bpl) - unshared
	if overlap < 1 {
		// The continuation is too short to reach the columns the head
		// occupies; nothing to join.
		return d.horizontal(bpl)
	}
	rest := bpl - unshared - overlap

	var b strings.Builder
	if unshared > 0 {
		b.WriteString(d.horizontal(unshared))
	} else {
		b.WriteRune(d.cfg.StartChar)
	}
	b.WriteString(strings.Repeat(" ", 2*overlap-1))
	if rest > 0 {
		b.WriteString(d.horizontal(rest))
	} else {
		b.WriteRune(d.cfg.EndChar)
	}
	return b.String()
}

// horizontal returns a border line covering bits columns; zero or
// negative widths render as the empty string.
func (d *drawer) horizontal(bits int) string {
	if bits <= 0 {
		return ""
	}
	var b strings.Builder
	b.WriteRune(d.cfg.StartChar)
	for i := 0; i < bits-1; i++ {
		b.WriteRune(d.cfg.FillEven)
		b.WriteRune(d.cfg.FillOdd)
	}
	b.WriteRune(d.cfg.FillEven)
	b.WriteRune(d.cfg.EndChar)
	return b.String()
}

// tensRuler is the first numbering line: the tens digit above every
// tenth bit, two columns per bit, trailing blanks trimmed.
func (d *drawer) tensRuler() string {
	var b strings.Builder
	for bit := 0; bit < d.cfg.BitsPerLine; bit++ {
		b.WriteByte(' ')
		if bit%10 == 0 {
			b.WriteByte(byte('0' + bit/10%10))
		} else {
			b.WriteByte(' ')
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// unitsRuler is the second numbering line: the last digit of every bit
// index, each preceded by one space.
func (d *drawer) unitsRuler() string {
	var b strings.Builder
	for bit := 0; bit < d.cfg.BitsPerLine; bit++ {
		b.WriteByte(' ')
		b.WriteByte(byte('0' + bit%10))
	}
	return b.String()
}

// cell centers the label in a field of width 2*bits-1 display columns,
// extra padding to the right of center. Over-long labels are truncated
// to the cell width, with the last kept character replaced by '.' when
// more than one character survives.
func (d *drawer) cell(text string, bits int) string {
	width := bits*2 - 1
	label := fitLabel(text, width)
	pad := width - runewidth.StringWidth(label)
	left := pad / 2
	return strings.Repeat(" ", left) + label + strings.Repeat(" ", pad-left)
}

func fitLabel(text string, width int) string {
	if runewidth.StringWidth(text) <= width {
		return text
	}
	trunc := runewidth.Truncate(text, width, "")
	if r := []rune(trunc); len(r) > 1 {
		r[len(r)-1] = '.'
		trunc = string(r)
	}
	return trunc
}
