package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/example/boxannotator/internal/persist"
)

// exportCmd bundles a directory of annotation files into an archive.
type exportCmd struct {
	*root
	fs     *flag.FlagSet
	output string
	dir    string
}

func (e *exportCmd) FlagSet() *flag.FlagSet {
	return e.fs
}

func parseExportCmd(args []string, r *root) (*exportCmd, error) {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	e := &exportCmd{root: r, fs: fs}
	fs.StringVar(&e.output, "o", "", "output archive (default: timestamped name in the save directory)")
	fs.Usage = usageFunc(e)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		return nil, &UsageError{of: e}
	}
	e.dir = fs.Arg(0)
	return e, nil
}

func (e *exportCmd) Run() error {
	out := e.output
	if out == "" {
		dir, err := e.config.SaveDirectory()
		if err != nil {
			return fmt.Errorf("save directory: %w", err)
		}
		out = filepath.Join(dir, persist.ArchiveName(time.Now()))
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create archive %s: %w", out, err)
	}
	n, err := persist.BundleDir(f, e.dir)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(out)
		return fmt.Errorf("failed to export %s: %w", e.dir, err)
	}
	st, err := os.Stat(out)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "%s: %s, %s\n", out, plural(n, "image"), humanize.Bytes(uint64(st.Size())))
	if e.notifier != nil {
		e.notifier.Export(out, st.Size())
	}
	return nil
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%s %s", humanize.Comma(int64(n)), word)
	}
	return fmt.Sprintf("%s %ss", humanize.Comma(int64(n)), word)
}
