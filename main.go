package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/sanecz/protocol/layout"
	"github.com/sanecz/protocol/protocols"
	"github.com/sanecz/protocol/renderer"
	"github.com/sanecz/protocol/renderer/ascii"
	"github.com/sanecz/protocol/spec"
)

var (
	bitsPerLine int
	noNumbers   bool
	oddChar     string
	evenChar    string
	startChar   string
	endChar     string
	sepChar     string
	specFile    string
	configFile  string
	listNames   bool
	mergeSpecs  bool
	verbose     bool

	logger = slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelWarn}))
)

var rootCmd = &cobra.Command{
	Use:   "protocol [spec|name]...",
	Short: "Render RFC-style ASCII diagrams of protocol headers",
	Long: `protocol renders ASCII bit-field diagrams of network protocol headers.

Each argument is either a known protocol name (see --list) or a raw
field spec of the form "field1:bits1,field2:bits2[?opt1=val1,...]":

  protocol tcp
  protocol "Source Port:16,Destination Port:16"
  protocol "Data:40?bits=16,numbers=0"`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	f := rootCmd.Flags()
	f.IntVarP(&bitsPerLine, "bits", "b", 32, "bits per diagram row")
	f.BoolVarP(&noNumbers, "no-numbers", "n", false, "omit the bit numbering rulers")
	f.StringVar(&oddChar, "oddchar", "+", "odd border fill character")
	f.StringVar(&evenChar, "evenchar", "-", "even border fill character")
	f.StringVar(&startChar, "startchar", "+", "border start character")
	f.StringVar(&endChar, "endchar", "+", "border end character")
	f.StringVar(&sepChar, "sepchar", "|", "field separator character")
	f.StringVarP(&specFile, "file", "f", "", "read specs or protocol names from a file, one per line")
	f.StringVarP(&configFile, "config", "c", "", "TOML file with extra protocols and render defaults")
	f.BoolVarP(&listNames, "list", "l", false, "list known protocol names and exit")
	f.BoolVarP(&mergeSpecs, "merge", "m", false, "concatenate all field lists into one diagram")
	f.BoolVarP(&verbose, "verbose", "V", false, "enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if verbose {
		logger = slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelDebug}))
	}

	table, err := protocols.Builtin()
	if err != nil {
		return err
	}

	cfg := layout.Default()
	if configFile != "" {
		file, err := protocols.LoadFile(configFile)
		if err != nil {
			return err
		}
		table.Merge(file.Protocols)
		if cfg, err = cfg.Apply(file.Defaults.Options()); err != nil {
			return fmt.Errorf("%s: %w", configFile, err)
		}
		logger.Debug("loaded user config", "path", configFile, "protocols", len(file.Protocols))
	}

	if listNames {
		for _, name := range table.Names() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	}

	inputs := args
	if specFile != "" {
		fromFile, err := readSpecFile(specFile)
		if err != nil {
			return err
		}
		inputs = append(inputs, fromFile...)
	}
	if len(inputs) == 0 {
		return fmt.Errorf("no specs or protocol names given (try --list, or --help for usage)")
	}

	rawSpecs, err := resolveInputs(table, inputs)
	if err != nil {
		return err
	}

	flagOpts := flagOptions(cmd)
	var r renderer.Renderer = ascii.NewRenderer()

	out := cmd.OutOrStdout()
	var merged []spec.FieldSpec
	for i, raw := range rawSpecs {
		parsed, err := spec.Parse(raw)
		if err != nil {
			return err
		}
		// Inline options accumulate across specs; later specs override
		// earlier ones on the same key.
		if cfg, err = cfg.Apply(parsed.Options); err != nil {
			return fmt.Errorf("%q: %w", raw, err)
		}
		logger.Debug("parsed spec", "spec", raw, "fields", len(parsed.Fields))

		if mergeSpecs {
			merged = append(merged, parsed.Fields...)
			continue
		}

		diagram, err := render(r, parsed.Fields, cfg, flagOpts)
		if err != nil {
			return err
		}
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintln(out, diagram)
	}

	if mergeSpecs {
		diagram, err := render(r, merged, cfg, flagOpts)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, diagram)
	}
	return nil
}

// render applies the command-line overrides on top of the accumulated
// configuration and draws one diagram.
func render(r renderer.Renderer, fields []spec.FieldSpec, cfg layout.Config, flagOpts []spec.Option) (string, error) {
	cfg, err := cfg.Apply(flagOpts)
	if err != nil {
		return "", err
	}
	result, err := layout.Build(fields, cfg)
	if err != nil {
		return "", err
	}
	logger.Debug("rendering diagram", "pieces", len(result.Fields), "bits_per_line", cfg.BitsPerLine)
	data, err := r.Render(result)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// resolveInputs turns each input into a raw spec string: known protocol
// names resolve through the table, anything else must be a valid spec.
func resolveInputs(table *protocols.Table, inputs []string) ([]string, error) {
	specs := make([]string, 0, len(inputs))
	for _, in := range inputs {
		if raw, err := table.Lookup(in); err == nil {
			logger.Debug("resolved protocol name", "name", in)
			specs = append(specs, raw)
			continue
		}
		if !spec.Valid(in) {
			return nil, fmt.Errorf("%w: %q is neither a known protocol name nor a valid spec",
				protocols.ErrUnknownProtocol, in)
		}
		specs = append(specs, in)
	}
	return specs, nil
}

// readSpecFile reads one spec or protocol name per line, skipping blank
// lines and '#' comments.
func readSpecFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading spec file: %w", err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading spec file: %w", err)
	}
	return lines, nil
}

// flagOptions converts explicitly set command-line flags into raw spec
// options, applied last so they win over file defaults and inline
// options.
func flagOptions(cmd *cobra.Command) []spec.Option {
	var opts []spec.Option
	if cmd.Flags().Changed("bits") {
		opts = append(opts, spec.Option{Key: "bits", Value: strconv.Itoa(bitsPerLine)})
	}
	if cmd.Flags().Changed("no-numbers") && noNumbers {
		opts = append(opts, spec.Option{Key: "numbers", Value: "0"})
	}
	for key, val := range map[string]string{
		"oddchar":   oddChar,
		"evenchar":  evenChar,
		"startchar": startChar,
		"endchar":   endChar,
		"sepchar":   sepChar,
	} {
		if cmd.Flags().Changed(key) {
			opts = append(opts, spec.Option{Key: key, Value: val})
		}
	}
	return opts
}
