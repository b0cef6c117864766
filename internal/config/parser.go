package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/example/boxannotator/internal/labels"
	"github.com/example/boxannotator/internal/theme"
)

// Parse reads configuration from an io.Reader.
func Parse(r io.Reader) (*Config, error) {
	cfg := New()
	scanner := bufio.NewScanner(r)

	var section string
	var current *theme.Theme

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = strings.TrimSuffix(strings.TrimPrefix(line, "["), "]")
			current = nil
			if name, ok := strings.CutPrefix(section, "theme."); ok {
				current = theme.Default()
				current.Name = name
				cfg.Themes[name] = current
			}
			continue
		}

		key, value, ok := split(line)
		if !ok {
			continue
		}

		var err error
		switch {
		case current != nil:
			err = current.Set(key, value)
		case section == "notify":
			err = setNotifyField(&cfg.Notify, key, value)
		case section == "labels":
			cfg.Labels = append(cfg.Labels, labels.Entry{Key: key, Color: value})
		case section == "":
			err = setRootField(cfg, key, value)
		}
		if err != nil {
			if section == "" {
				return nil, fmt.Errorf("error in root section: %w", err)
			}
			return nil, fmt.Errorf("error in section [%s]: %w", section, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(cfg.Labels) > 0 {
		if _, err := labels.New(cfg.Labels); err != nil {
			return nil, fmt.Errorf("error in section [labels]: %w", err)
		}
	}
	return cfg, nil
}

// split accepts "key = value" and "key: value", preferring '='.
func split(line string) (string, string, bool) {
	i := strings.Index(line, "=")
	if i <= 0 {
		i = strings.Index(line, ":")
	}
	if i <= 0 {
		return "", "", false
	}
	key := strings.TrimSpace(line[:i])
	value := strings.TrimSpace(line[i+1:])
	if len(value) >= 2 && strings.HasPrefix(value, "\"") && strings.HasSuffix(value, "\"") {
		value = value[1 : len(value)-1]
	}
	return key, value, true
}

func setRootField(cfg *Config, key, value string) error {
	switch strings.ToLower(key) {
	case "theme":
		cfg.Theme = value
	case "save_dir":
		cfg.SaveDir = value
	case "label_map":
		cfg.LabelMap = value
	case "workspace":
		cfg.Workspace = value
	case "zoom_step":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f <= 1 {
			return fmt.Errorf("zoom_step %q must be a number above 1", value)
		}
		cfg.ZoomStep = f
	case "wheel_step":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f <= 0 {
			return fmt.Errorf("wheel_step %q must be a positive number", value)
		}
		cfg.WheelStep = f
	case "double_click_ms":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("double_click_ms %q must be a positive integer", value)
		}
		cfg.DoubleClick = time.Duration(n) * time.Millisecond
	}
	return nil
}

func setNotifyField(n *Notify, key, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid boolean for key %s: %w", key, err)
	}
	switch strings.ToLower(key) {
	case "export":
		n.Export = b
	case "import":
		n.Import = b
	case "load":
		n.Load = b
	}
	return nil
}
