package ascii

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sanecz/protocol/layout"
)

func TestHorizontalWidths(t *testing.T) {
	d := &drawer{cfg: layout.Default()}

	// Zero or negative widths render as the empty string.
	assert.Equal(t, "", d.horizontal(0))
	assert.Equal(t, "", d.horizontal(-3))

	assert.Equal(t, "+-+", d.horizontal(1))
	assert.Equal(t, "+-+-+", d.horizontal(2))
}
