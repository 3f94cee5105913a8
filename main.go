package main

import (
	"flag"
	"fmt"
	"os"

	"jackc/pkg/driver"
)

func main() {
	inPath := flag.String("in", "", "input .jack file or directory of .jack files")
	outDir := flag.String("out", "", "output directory (default: next to each source file)")
	tokens := flag.Bool("tokens", false, "write <Name>T.xml token dumps instead of VM code")
	parse := flag.Bool("parse", false, "write <Name>.xml parse trees instead of VM code")
	quiet := flag.Bool("q", false, "only report failures")
	flag.Parse()

	path := *inPath
	if path == "" && flag.NArg() > 0 {
		path = flag.Arg(0)
	}
	if *tokens && *parse {
		fmt.Fprintln(os.Stderr, "use either -tokens or -parse, not both")
		os.Exit(2)
	}
	if path == "" || flag.NArg() > 1 || (*inPath != "" && flag.NArg() > 0) {
		fmt.Fprintln(os.Stderr, "usage: jackc [-out dir] [-tokens | -parse] [-q] <file.jack | dir>")
		flag.Usage()
		os.Exit(2)
	}

	if *outDir != "" {
		if err := os.MkdirAll(*outDir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "failed to create output directory %q: %v\n", *outDir, err)
			os.Exit(1)
		}
	}

	sources, err := driver.Discover(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "no input: %v\n", err)
		os.Exit(1)
	}

	rep := driver.Run(sources, driver.Options{OutDir: *outDir, Tokens: *tokens, Parse: *parse})
	for _, res := range rep.Results {
		if res.Err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", res.Source, res.Err)
			continue
		}
		if !*quiet {
			fmt.Printf("compiled %s -> %s\n", res.Source, res.Output)
		}
	}

	if n := rep.Failed(); n > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d files failed\n", n, len(rep.Results))
		os.Exit(1)
	}
}
