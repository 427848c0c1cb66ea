// Package protocols provides the named protocol library: a built-in
// table of canonical header specs shipped with the binary, optionally
// extended by user TOML files that can also override render defaults.
package protocols

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/sanecz/protocol/spec"
)

//go:embed builtin.toml
var builtinTOML []byte

// ErrUnknownProtocol reports a name that is neither in the table nor a
// valid raw spec.
var ErrUnknownProtocol = errors.New("unknown protocol")

// File mirrors the TOML layout shared by the embedded table and user
// configuration files.
type File struct {
	Defaults  Defaults          `toml:"defaults"`
	Protocols map[string]string `toml:"protocols"`
}

// Defaults carries optional render settings from a configuration file.
// Pointer fields distinguish "unset" from zero values.
type Defaults struct {
	Bits      *int    `toml:"bits"`
	Numbers   *bool   `toml:"numbers"`
	OddChar   *string `toml:"oddchar"`
	EvenChar  *string `toml:"evenchar"`
	StartChar *string `toml:"startchar"`
	EndChar   *string `toml:"endchar"`
	SepChar   *string `toml:"sepchar"`
}

// Options converts the set defaults into raw spec options, ready to be
// applied to a render configuration ahead of any inline spec options.
func (d Defaults) Options() []spec.Option {
	var opts []spec.Option
	if d.Bits != nil {
		opts = append(opts, spec.Option{Key: "bits", Value: strconv.Itoa(*d.Bits)})
	}
	if d.Numbers != nil {
		v := "0"
		if *d.Numbers {
			v = "1"
		}
		opts = append(opts, spec.Option{Key: "numbers", Value: v})
	}
	for key, val := range map[string]*string{
		"oddchar":   d.OddChar,
		"evenchar":  d.EvenChar,
		"startchar": d.StartChar,
		"endchar":   d.EndChar,
		"sepchar":   d.SepChar,
	} {
		if val != nil {
			opts = append(opts, spec.Option{Key: key, Value: *val})
		}
	}
	// Map iteration order is random; keep option application stable.
	sort.Slice(opts, func(i, j int) bool { return opts[i].Key < opts[j].Key })
	return opts
}

// Table maps protocol names to canonical spec strings. Lookups are
// case-insensitive.
type Table struct {
	specs map[string]string
}

// Builtin returns the protocol table bundled with the binary.
func Builtin() (*Table, error) {
	f, err := decode(builtinTOML)
	if err != nil {
		return nil, fmt.Errorf("protocols: built-in table: %w", err)
	}
	t := &Table{specs: map[string]string{}}
	t.Merge(f.Protocols)
	return t, nil
}

// LoadFile reads a user configuration file.
func LoadFile(path string) (*File, error) {
	var f File
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("protocols: reading %s: %w", path, err)
	}
	return &f, nil
}

// Merge adds entries to the table, overriding same-named ones.
func (t *Table) Merge(specs map[string]string) {
	for name, s := range specs {
		t.specs[strings.ToLower(name)] = s
	}
}

// Lookup resolves a protocol name to its canonical spec string.
func (t *Table) Lookup(name string) (string, error) {
	s, ok := t.specs[strings.ToLower(name)]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownProtocol, name)
	}
	return s, nil
}

// Names returns every known protocol name, sorted.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.specs))
	for name := range t.specs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func decode(data []byte) (*File, error) {
	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}
