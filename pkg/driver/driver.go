// Package driver compiles Jack source files to VM files, one unit at a time.
package driver

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"jackc/pkg/compiler"
)

const sourceExt = ".jack"

// Options control where output goes and what is produced.
type Options struct {
	OutDir string // empty: write next to each source file
	Tokens bool   // write <Name>T.xml token dumps instead of VM code
	Parse  bool   // write <Name>.xml parse trees instead of VM code
}

// Result is the outcome for one source unit.
type Result struct {
	Source string
	Output string // path written; empty on failure
	Err    error
}

// Report collects the results of a Run in input order.
type Report struct {
	Results []Result
}

// Failed returns the number of units that did not compile.
func (r Report) Failed() int {
	n := 0
	for _, res := range r.Results {
		if res.Err != nil {
			n++
		}
	}
	return n
}

// Err joins the failures, each prefixed with its source path.
func (r Report) Err() error {
	var errs []error
	for _, res := range r.Results {
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", res.Source, res.Err))
		}
	}
	return errors.Join(errs...)
}

// Discover returns path itself if it is a source file, or the sorted
// source files directly inside it if it is a directory.
func Discover(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		if filepath.Ext(path) != sourceExt {
			return nil, fmt.Errorf("%s: not a %s file", path, sourceExt)
		}
		return []string{path}, nil
	}
	matches, err := filepath.Glob(filepath.Join(path, "*"+sourceExt))
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%s: no %s files", path, sourceExt)
	}
	sort.Strings(matches)
	return matches, nil
}

// Run compiles each source in order. A failing unit does not stop the
// others.
func Run(sources []string, opts Options) Report {
	var rep Report
	for _, src := range sources {
		out, err := runOne(src, opts)
		rep.Results = append(rep.Results, Result{Source: src, Output: out, Err: err})
	}
	return rep
}

func runOne(src string, opts Options) (string, error) {
	dst := outputPath(src, opts)
	if err := compileTo(src, dst, opts); err != nil {
		removeStale(dst)
		return "", err
	}
	return dst, nil
}

func compileTo(src, dst string, opts Options) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	var produce func(w io.Writer) error
	switch {
	case opts.Tokens:
		lx, err := compiler.NewLexer(in)
		if err != nil {
			return err
		}
		produce = func(w io.Writer) error { return compiler.WriteTokensXML(w, lx) }
	case opts.Parse:
		var tree bytes.Buffer
		if err := compiler.WriteParseXML(&tree, in); err != nil {
			return err
		}
		produce = func(w io.Writer) error {
			_, err := tree.WriteTo(w)
			return err
		}
	default:
		u, err := compiler.CompileUnit(in)
		if err != nil {
			return err
		}
		produce = func(w io.Writer) error {
			_, err := io.WriteString(w, u.Code)
			return err
		}
	}

	return writeAtomic(dst, produce)
}

// outputPath maps dir/Name.jack to dir/Name.vm (NameT.xml for token
// dumps, Name.xml for parse trees), inside opts.OutDir when set.
func outputPath(src string, opts Options) string {
	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	switch {
	case opts.Tokens:
		base += "T.xml"
	case opts.Parse:
		base += ".xml"
	default:
		base += ".vm"
	}
	dir := filepath.Dir(src)
	if opts.OutDir != "" {
		dir = opts.OutDir
	}
	return filepath.Join(dir, base)
}

// writeAtomic writes through a temp file in the destination directory and
// renames it into place only when produce succeeds.
func writeAtomic(dst string, produce func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := produce(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dst)
}

// removeStale deletes output left by an earlier successful run so a failed
// unit never looks compiled.
func removeStale(dst string) {
	_ = os.Remove(dst)
}
