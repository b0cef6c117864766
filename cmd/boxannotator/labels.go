package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"text/tabwriter"

	"github.com/example/boxannotator/internal/labels"
)

// labelsCmd prints the effective label map with the key that picks each
// label.
type labelsCmd struct {
	*root
	fs      *flag.FlagSet
	asJSON  bool
	mapPath string
}

func (l *labelsCmd) FlagSet() *flag.FlagSet {
	return l.fs
}

func parseLabelsCmd(args []string, r *root) (*labelsCmd, error) {
	fs := flag.NewFlagSet("labels", flag.ContinueOnError)
	l := &labelsCmd{root: r, fs: fs}
	fs.BoolVar(&l.asJSON, "json", false, "print the map as a JSON object")
	fs.StringVar(&l.mapPath, "map", "", "label map file to read instead of the configured one")
	fs.Usage = usageFunc(l)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: l}
	}
	return l, nil
}

func (l *labelsCmd) load() (*labels.Map, error) {
	if l.mapPath != "" {
		return labels.Load(l.mapPath)
	}
	return l.config.LabelMapFor()
}

func (l *labelsCmd) Run() error {
	m, err := l.load()
	if err != nil {
		return err
	}
	if l.asJSON {
		enc := json.NewEncoder(l.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(m)
	}
	tw := tabwriter.NewWriter(l.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tLABEL\tCOLOR")
	for i, e := range m.Entries() {
		k := "-"
		if i < len(labels.OrdinalKeys) {
			k = string(labels.OrdinalKeys[i])
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", k, e.Key, e.Color)
	}
	return tw.Flush()
}
