// Command wasmforge transpiles a WebAssembly binary to Go source (§6).
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/wasmforge/wasmforge/internal/diag"
	"github.com/wasmforge/wasmforge/internal/driver"
)

func main() {
	os.Exit(doMain(os.Stdout, os.Stderr))
}

// doMain is separated from main for unit testing, mirroring the teacher CLI.
func doMain(stdOut io.Writer, stdErr io.Writer) int {
	flags := flag.NewFlagSet("wasmforge", flag.ContinueOnError)
	flags.SetOutput(stdErr)

	output := flags.String("output", "", "target-file path; defaults to stdout")
	maxPages := flags.Uint("max-pages", 0, "memory page maximum override, only applied to modules with no declared maximum")
	mode := flags.String("mode", string(driver.ModeSafe), "transpile mode: safe, hybrid, or verified")
	pkg := flags.String("package", "wasmforgeout", "package name of the generated source")

	if err := flags.Parse(os.Args[1:]); err != nil {
		return 1
	}

	if flags.NArg() < 1 {
		fmt.Fprintln(stdErr, "missing path to wasm file")
		printUsage(stdErr, flags)
		return 1
	}

	input, err := os.ReadFile(flags.Arg(0))
	if err != nil {
		fmt.Fprintln(stdErr, diag.Wrap(err, "reading input").Error())
		return 1
	}

	opts := driver.NewOptions().WithMode(driver.Mode(*mode)).WithPackageName(*pkg)
	if *maxPages > 0 {
		opts = opts.WithMaxPages(uint32(*maxPages))
	}

	result, err := driver.Transpile(input, opts)
	if err != nil {
		fmt.Fprintln(stdErr, err.Error())
		return 1
	}

	if *output == "" {
		if _, err := stdOut.Write(result.Source); err != nil {
			fmt.Fprintln(stdErr, diag.Wrap(err, "writing output").Error())
			return 1
		}
		return 0
	}

	if err := os.WriteFile(*output, result.Source, 0o644); err != nil {
		fmt.Fprintln(stdErr, diag.Wrap(err, "writing output").Error())
		return 1
	}
	return 0
}

func printUsage(stdErr io.Writer, flags *flag.FlagSet) {
	fmt.Fprintln(stdErr, "wasmforge CLI")
	fmt.Fprintln(stdErr)
	fmt.Fprintln(stdErr, "Usage:\n  wasmforge <options> <path to wasm file>")
	fmt.Fprintln(stdErr)
	fmt.Fprintln(stdErr, "Options:")
	flags.PrintDefaults()
}
