package layout

// ProtoField is one renderer-ready piece of a field after segmentation.
// A source field that did not fit the space left on its starting row is
// split into several ProtoFields whose LenBits sum to the original
// width; only one of them carries the label.
type ProtoField struct {
	Text    string
	LenBits int

	// MoreFragments marks a piece that continues into the next diagram
	// row: the border between the two rows is partially suppressed so
	// the fragments visually connect.
	MoreFragments bool
}

// Result is the segmented field sequence together with the
// configuration it was segmented under. It carries everything a
// renderer needs; rendering it is a pure transformation.
type Result struct {
	Fields []ProtoField
	Config Config
}
