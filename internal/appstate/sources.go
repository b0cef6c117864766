package appstate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/example/boxannotator/internal/persist"
)

// ImageExts are the file extensions picked up from directories.
var ImageExts = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp"}

func isImage(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range ImageExts {
		if ext == e {
			return true
		}
	}
	return false
}

// ScanImages expands sources into an image list. Files are kept as given;
// directories contribute their image files in name order.
func ScanImages(sources []string) ([]string, error) {
	var out []string
	for _, src := range sources {
		st, err := os.Stat(src)
		if err != nil {
			return nil, err
		}
		if !st.IsDir() {
			out = append(out, src)
			continue
		}
		entries, err := os.ReadDir(src)
		if err != nil {
			return nil, err
		}
		var names []string
		for _, e := range entries {
			if !e.IsDir() && isImage(e.Name()) {
				names = append(names, filepath.Join(src, e.Name()))
			}
		}
		sort.Strings(names)
		out = append(out, names...)
	}
	return out, nil
}

// LatestArchive returns the newest export in dir. Archive names are
// timestamps, so the greatest name is the newest.
func LatestArchive(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.zip"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no archives in %s: %w", dir, os.ErrNotExist)
	}
	sort.Strings(matches)
	return matches[len(matches)-1], nil
}

// ReadAnnotations gathers entries from archives, loose JSON files and
// directories of JSON files. Unreadable entries are skipped and reported in
// the joined error.
func ReadAnnotations(paths []string) ([]persist.Entry, error) {
	var (
		out  []persist.Entry
		errs []error
	)
	var loose []string
	for _, p := range paths {
		st, err := os.Stat(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		switch {
		case st.IsDir():
			m, err := filepath.Glob(filepath.Join(p, "*"+persist.Ext))
			if err != nil {
				errs = append(errs, err)
				continue
			}
			sort.Strings(m)
			loose = append(loose, m...)
		case strings.EqualFold(filepath.Ext(p), ".zip"):
			es, err := persist.OpenArchive(p)
			out = append(out, es...)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", p, err))
			}
		default:
			loose = append(loose, p)
		}
	}
	es, err := persist.ReadFiles(loose)
	out = append(out, es...)
	if err != nil {
		errs = append(errs, err)
	}
	return out, errors.Join(errs...)
}
