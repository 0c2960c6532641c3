// Command computec expands a compute shader template offline.
//
// Usage:
//
//	computec [options] <template>
//
// Examples:
//
//	computec blur.any_wgsl                             # Expand to stdout
//	computec -D kernel_radius=8 -o blur.wgsl blur.any_wgsl
//	computec -piece common.any_wgsl -validate blur.any_wgsl
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/gogpu/naga"

	"github.com/gogpu/compute/property"
	"github.com/gogpu/compute/template"
)

// listFlag collects a repeatable string flag.
type listFlag []string

func (f *listFlag) String() string { return strings.Join(*f, ",") }

func (f *listFlag) Set(v string) error {
	*f = append(*f, v)
	return nil
}

var (
	output   = flag.String("o", "", "output file (default: stdout)")
	validate = flag.Bool("validate", false, "compile the expanded WGSL with naga to check it")
	verbose  = flag.Bool("v", false, "log template diagnostics to stderr")
	version  = flag.Bool("version", false, "print version")

	defines listFlag
	pieces  listFlag
)

const computecVersion = "0.1.0-dev"

func main() {
	flag.Var(&defines, "D", "set a property, name or name=value (repeatable)")
	flag.Var(&pieces, "piece", "piece file expanded before the template (repeatable)")
	flag.Usage = usage
	flag.Parse()

	if *version {
		fmt.Printf("computec version %s\n", computecVersion)
		return
	}

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Error: no template file specified")
		usage()
		os.Exit(1)
	}

	table := property.NewTable()
	for _, d := range defines {
		name, value, err := parseDefine(d)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		table.Set(name, value)
	}

	proc := template.NewProcessor(table)
	if *verbose {
		proc.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	for _, pf := range pieces {
		data, err := os.ReadFile(pf)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading piece file: %v\n", err)
			os.Exit(1)
		}
		if err := proc.ProcessFragment(string(data)); err != nil {
			fmt.Fprintf(os.Stderr, "Syntax error in %s: %v\n", pf, err)
			os.Exit(1)
		}
	}

	source, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		os.Exit(1)
	}

	out, err := proc.Process(string(source))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Syntax error in %s: %v\n", args[0], err)
		os.Exit(1)
	}

	if *validate {
		if _, err := naga.Compile(out); err != nil {
			fmt.Fprintf(os.Stderr, "Validation error: %v\n", err)
			os.Exit(1)
		}
	}

	if *output != "" {
		if err := os.WriteFile(*output, []byte(out), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
			os.Exit(1)
		}
		return
	}
	fmt.Print(out)
}

// parseDefine splits "name=value" into a property assignment. A bare name
// means 1, matching how capability toggles are usually set.
func parseDefine(d string) (string, int32, error) {
	name, value, ok := strings.Cut(d, "=")
	if name == "" {
		return "", 0, fmt.Errorf("empty property name in -D %q", d)
	}
	if !ok {
		return name, 1, nil
	}
	n, err := strconv.ParseInt(value, 10, 32)
	if err != nil {
		return "", 0, fmt.Errorf("invalid value in -D %q: %v", d, err)
	}
	return name, int32(n), nil
}

func usage() {
	fmt.Fprintf(os.Stderr, `computec - offline compute shader template expander

Usage:
  computec [options] <template>

Options:
`)
	flag.PrintDefaults()
}
