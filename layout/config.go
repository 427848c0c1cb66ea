package layout

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sanecz/protocol/spec"
)

var (
	// ErrInvalidOption reports a recognized option key with an
	// unusable value.
	ErrInvalidOption = errors.New("invalid option")
	// ErrUnknownOption reports an option key that is not recognized.
	ErrUnknownOption = errors.New("unknown option")
)

// Config is the resolved rendering configuration for one run: border
// glyphs, line width in bits, and the numbering toggle. It is a value;
// applying options returns an updated copy, so one accumulated Config
// can be threaded through a multi-spec run explicitly.
type Config struct {
	StartChar rune
	EndChar   rune
	FillOdd   rune
	FillEven  rune
	SepChar   rune

	BitsPerLine    int
	ShowBitNumbers bool
}

// Default returns the stock RFC-style configuration: "+ + + - |",
// 32 bits per line, bit numbering on.
func Default() Config {
	return Config{
		StartChar:      '+',
		EndChar:        '+',
		FillOdd:        '+',
		FillEven:       '-',
		SepChar:        '|',
		BitsPerLine:    32,
		ShowBitNumbers: true,
	}
}

// Apply interprets raw spec options on top of c and returns the updated
// configuration. Options apply in order; a later option silently
// overrides an earlier one on the same key. Keys and values are
// lower-cased before interpretation.
func (c Config) Apply(opts []spec.Option) (Config, error) {
	for _, opt := range opts {
		key := strings.ToLower(opt.Key)
		value := strings.ToLower(opt.Value)
		switch key {
		case "numbers":
			b, ok := parseBoolToken(value)
			if !ok {
				return c, fmt.Errorf("%w: numbers=%q: want one of 0/n/no/none/false or 1/y/yes/true",
					ErrInvalidOption, opt.Value)
			}
			c.ShowBitNumbers = b
		case "bits":
			n, err := strconv.Atoi(value)
			if err != nil || n <= 0 {
				return c, fmt.Errorf("%w: bits=%q: want a positive integer", ErrInvalidOption, opt.Value)
			}
			c.BitsPerLine = n
		case "oddchar", "evenchar", "startchar", "endchar", "sepchar":
			r := []rune(value)
			if len(r) != 1 {
				return c, fmt.Errorf("%w: %s=%q: want exactly one character", ErrInvalidOption, key, opt.Value)
			}
			switch key {
			case "oddchar":
				c.FillOdd = r[0]
			case "evenchar":
				c.FillEven = r[0]
			case "startchar":
				c.StartChar = r[0]
			case "endchar":
				c.EndChar = r[0]
			case "sepchar":
				c.SepChar = r[0]
			}
		default:
			return c, fmt.Errorf("%w: %q", ErrUnknownOption, opt.Key)
		}
	}
	return c, nil
}

func parseBoolToken(v string) (value, ok bool) {
	switch v {
	case "0", "n", "no", "none", "false":
		return false, true
	case "1", "y", "yes", "true":
		return true, true
	}
	return false, false
}
