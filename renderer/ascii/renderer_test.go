package ascii_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanecz/protocol/layout"
	"github.com/sanecz/protocol/renderer/ascii"
	"github.com/sanecz/protocol/spec"
)

// draw renders a raw spec end to end with the default configuration
// plus its inline options.
func draw(t *testing.T, raw string) string {
	t.Helper()
	parsed, err := spec.Parse(raw)
	require.NoError(t, err)
	cfg, err := layout.Default().Apply(parsed.Options)
	require.NoError(t, err)
	res, err := layout.Build(parsed.Fields, cfg)
	require.NoError(t, err)
	out, err := ascii.NewRenderer().Render(res)
	require.NoError(t, err)
	return string(out)
}

func TestRenderSingleRow(t *testing.T) {
	want := strings.Join([]string{
		" 0                   1                   2                   3",
		" 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1",
		"+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+",
		"|          Source Port          |       Destination Port        |",
		"+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+",
	}, "\n")
	assert.Equal(t, want, draw(t, "Source Port:16,Destination Port:16"))
}

func TestRenderFragmentedField(t *testing.T) {
	// 40 bits on a 16-bit line: the first border between fragments is
	// fully suppressed, the second keeps a partial border where the
	// 8-bit remainder ends.
	want := strings.Join([]string{
		" 0                   1",
		" 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5",
		"+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+",
		"|                               |",
		"+                               +",
		"|             Data              |",
		"+               +-+-+-+-+-+-+-+-+",
		"|               |",
		"+-+-+-+-+-+-+-+-+",
	}, "\n")
	assert.Equal(t, want, draw(t, "Data:40?bits=16"))
}

func TestRenderSplitMidLine(t *testing.T) {
	want := strings.Join([]string{
		" 0                   1                   2                   3",
		" 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1",
		"+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+",
		"|            Source             |      TTL      |               |",
		"+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+               +",
		"|                           Reserved                            |",
		"+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+",
	}, "\n")
	assert.Equal(t, want, draw(t, "Source:16,TTL:8,Reserved:40"))
}

func TestRenderStackedBlock(t *testing.T) {
	// 64 bits on a 32-bit line: 2*(64/32)-1 = 3 body rows, label only
	// on the middle one, then one closing border.
	want := strings.Join([]string{
		" 0                   1                   2                   3",
		" 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1",
		"+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+",
		"|                                                               |",
		"+                             Data                              +",
		"|                                                               |",
		"+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+",
	}, "\n")
	assert.Equal(t, want, draw(t, "Data:64"))
}

func TestRenderFragmentIntoStackedBlock(t *testing.T) {
	// The 40-bit field sheds 8 bits into the open row; its 32-bit tail
	// spans two full rows below, joined through a suppressed border.
	want := strings.Join([]string{
		" 0                   1",
		" 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5",
		"+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+",
		"|       A       |               |",
		"+-+-+-+-+-+-+-+-+               +",
		"|                               |",
		"+             Data              +",
		"|                               |",
		"+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+",
	}, "\n")
	assert.Equal(t, want, draw(t, "A:8,Data:40?bits=16"))
}

func TestRenderSingleBitCell(t *testing.T) {
	// One-bit cell: the label truncates to a single character and the
	// '.' marker is not applied.
	want := strings.Join([]string{
		"+-+",
		"|A|",
		"+-+",
	}, "\n")
	assert.Equal(t, want, draw(t, "AB:1?bits=1,numbers=0"))
}

func TestRenderTruncationMarker(t *testing.T) {
	want := strings.Join([]string{
		"+-+-+-+-+-+-+-+-+",
		"|Checks.| Flags |",
		"+-+-+-+-+-+-+-+-+",
	}, "\n")
	assert.Equal(t, want, draw(t, "Checksum:4,Flags:4?bits=8,numbers=0"))
}

func TestRenderNumbersOff(t *testing.T) {
	want := strings.Join([]string{
		"+-+-+-+-+-+-+-+-+",
		"|       A       |",
		"+-+-+-+-+-+-+-+-+",
	}, "\n")
	assert.Equal(t, want, draw(t, "A:8?bits=8,numbers=0"))
}

func TestRenderCustomGlyphs(t *testing.T) {
	want := strings.Join([]string{
		"<~*~*~*~*~*~*~*~>",
		"!       A       !",
		"<~*~*~*~*~*~*~*~>",
	}, "\n")
	assert.Equal(t, want, draw(t, "A:8?bits=8,numbers=0,oddchar=*,evenchar=~,startchar=<,endchar=>,sepchar=!"))
}

func TestRenderNoJoinWhenFragmentsDoNotTouch(t *testing.T) {
	// The 4-bit remainder never reaches the columns its 8-bit head
	// occupies at the end of the first row, so the full border stays.
	got := draw(t, "Start:24,End:12?numbers=0")
	lines := strings.Split(got, "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, strings.Repeat("+-", 32)+"+", lines[2])
}

func TestRenderRowGeometry(t *testing.T) {
	// Every complete field row starts with the separator and is exactly
	// 2*bitsPerLine+1 characters wide.
	got := draw(t, "Version:4,IHL:4,Type of Service:8,Total Length:16,Identification:16,Flags:3,Fragment Offset:13")
	rows := 0
	for _, line := range strings.Split(got, "\n") {
		if strings.HasPrefix(line, "|") {
			rows++
			assert.Len(t, line, 2*32+1)
		}
	}
	assert.Equal(t, 2, rows)
}

func TestRenderIdempotent(t *testing.T) {
	const raw = "Source:16,TTL:8,Reserved:40?bits=16"
	assert.Equal(t, draw(t, raw), draw(t, raw))
}

func TestRenderNilResult(t *testing.T) {
	_, err := ascii.NewRenderer().Render(nil)
	require.Error(t, err)
}
