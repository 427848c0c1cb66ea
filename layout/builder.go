package layout

import (
	"fmt"

	"github.com/sanecz/protocol/spec"
)

// Build walks the field list left to right and segments it into
// renderer-ready pieces under cfg. Fields that do not fit the space
// left on the current row are split; a field starting a fresh row whose
// width is an exact multiple of the line width passes through unsplit
// and renders as a stacked block.
func Build(fields []spec.FieldSpec, cfg Config) (*Result, error) {
	if cfg.BitsPerLine <= 0 {
		return nil, fmt.Errorf("layout: bits per line must be positive, got %d", cfg.BitsPerLine)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("layout: no fields to place")
	}

	out := make([]ProtoField, 0, len(fields))
	used := 0 // bits consumed on the current row
	for _, f := range fields {
		if f.Bits <= 0 {
			return nil, fmt.Errorf("layout: field %q has non-positive width %d", f.Text, f.Bits)
		}
		pending := ProtoField{Text: f.Text, LenBits: f.Bits}
		for {
			placed, rest, split := place(pending, cfg.BitsPerLine-used, cfg.BitsPerLine)
			out = append(out, placed)
			if split {
				// The head filled the row; the tail starts a fresh one
				// and may itself need further splitting.
				used = 0
				pending = rest
				continue
			}
			used = (used + placed.LenBits) % cfg.BitsPerLine
			break
		}
	}

	return &Result{Fields: out, Config: cfg}, nil
}

// place fits field into the remaining space on the current row. When
// the field has to be split it returns the head piece sized to fill the
// row exactly, flagged MoreFragments, plus the remainder to re-place;
// the label stays with the larger of the two pieces, the head on ties.
func place(field ProtoField, remaining, bitsPerLine int) (placed, rest ProtoField, split bool) {
	if field.LenBits <= remaining {
		return field, ProtoField{}, false
	}
	if remaining == bitsPerLine && field.LenBits%bitsPerLine == 0 {
		// Starts on a row boundary and spans whole rows: rendered as a
		// single stacked block, no split needed.
		return field, ProtoField{}, false
	}

	placed = ProtoField{LenBits: remaining, MoreFragments: true}
	rest = ProtoField{LenBits: field.LenBits - remaining}
	if placed.LenBits >= rest.LenBits {
		placed.Text = field.Text
	} else {
		rest.Text = field.Text
	}
	return placed, rest, true
}
