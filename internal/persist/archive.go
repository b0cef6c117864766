package persist

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/example/boxannotator/internal/boxes"
	"github.com/example/boxannotator/internal/geom"
)

// Ext is the suffix of every annotation entry.
const Ext = ".json"

// ArchiveName returns the export file name for t: an ISO 8601 UTC timestamp
// with millisecond precision followed by .zip.
func ArchiveName(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z") + ".zip"
}

// Entry is one image's annotations keyed by its base name.
type Entry struct {
	Base  string
	Boxes []geom.Box
}

// Entries collects every image of s in image order.
func Entries(s *boxes.Store) []Entry {
	names := s.BaseNames()
	out := make([]Entry, len(names))
	for i, n := range names {
		out[i] = Entry{Base: n, Boxes: s.BoxesAt(i)}
	}
	return out
}

// WriteArchive writes one <base>.json entry per element of es.
func WriteArchive(w io.Writer, es []Entry) error {
	zw := zip.NewWriter(w)
	for _, e := range es {
		f, err := zw.Create(e.Base + Ext)
		if err != nil {
			return fmt.Errorf("archive %s: %w", e.Base, err)
		}
		if err := EncodeBoxes(f, e.Boxes); err != nil {
			return fmt.Errorf("archive %s: %w", e.Base, err)
		}
	}
	return zw.Close()
}

// ReadArchive decodes every .json entry of the zip in r. Entries that fail
// to decode are left out of the result and reported in the joined error.
func ReadArchive(r io.ReaderAt, size int64) ([]Entry, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	var (
		out  []Entry
		errs []error
	)
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !strings.HasSuffix(f.Name, Ext) {
			continue
		}
		bs, err := readZipFile(f)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", f.Name, err))
			continue
		}
		out = append(out, Entry{Base: strings.TrimSuffix(path.Base(f.Name), Ext), Boxes: bs})
	}
	return out, errors.Join(errs...)
}

func readZipFile(f *zip.File) ([]geom.Box, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return DecodeBoxes(rc)
}

// ReadFiles decodes loose <base>.json files. Failures are reported like
// ReadArchive.
func ReadFiles(paths []string) ([]Entry, error) {
	var (
		out  []Entry
		errs []error
	)
	for _, p := range paths {
		bs, err := readFile(p)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p, err))
			continue
		}
		out = append(out, Entry{Base: boxes.BaseName(p), Boxes: bs})
	}
	return out, errors.Join(errs...)
}

func readFile(p string) ([]geom.Box, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeBoxes(f)
}

// Apply stores each entry on the image with the same base name. It returns
// the base names that matched no image and the joined errors of entries
// that could not be stored.
func Apply(s *boxes.Store, es []Entry) (unmatched []string, err error) {
	var errs []error
	for _, e := range es {
		i := s.IndexOfBase(e.Base)
		if i < 0 {
			unmatched = append(unmatched, e.Base)
			continue
		}
		if err := s.SetBoxes(i, e.Boxes); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", e.Base, err))
		}
	}
	return unmatched, errors.Join(errs...)
}

// OpenArchive reads the archive at name.
func OpenArchive(name string) ([]Entry, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	return ReadArchive(f, st.Size())
}

// ExportFile writes the archive for s into dir and returns its path and
// size in bytes.
func ExportFile(dir string, s *boxes.Store, now time.Time) (string, int64, error) {
	name := filepath.Join(dir, ArchiveName(now))
	f, err := os.Create(name)
	if err != nil {
		return "", 0, err
	}
	if err := WriteArchive(f, Entries(s)); err != nil {
		f.Close()
		os.Remove(name)
		return "", 0, err
	}
	if err := f.Close(); err != nil {
		os.Remove(name)
		return "", 0, err
	}
	st, err := os.Stat(name)
	if err != nil {
		return "", 0, err
	}
	return name, st.Size(), nil
}

// BundleDir writes every *.json file in dir into an archive on w. Files are
// validated and added in name order; the first malformed file aborts.
func BundleDir(w io.Writer, dir string) (int, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*"+Ext))
	if err != nil {
		return 0, err
	}
	sort.Strings(paths)
	es := make([]Entry, 0, len(paths))
	for _, p := range paths {
		bs, err := readFile(p)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", p, err)
		}
		es = append(es, Entry{Base: boxes.BaseName(p), Boxes: bs})
	}
	return len(es), WriteArchive(w, es)
}
