// Package export persists run results to disk for downstream consumers
// (dashboards, cron mail, ad-hoc inspection).
package export

import (
	"fmt"
	"os"
	"path/filepath"

	"stock-signals/internal/model"
)

const bundleFileName = "signals.json"

// WriteBundle writes the indented JSON bundle to <dir>/signals.json,
// creating the directory if needed. The write goes through a temp file and
// rename so a concurrent reader never sees a partial bundle.
func WriteBundle(dir string, bundle *model.ResultBundle) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("export: create dir: %w", err)
	}

	data, err := bundle.JSON()
	if err != nil {
		return "", fmt.Errorf("export: encode bundle: %w", err)
	}

	path := filepath.Join(dir, bundleFileName)
	tmp, err := os.CreateTemp(dir, bundleFileName+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("export: create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("export: write bundle: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("export: close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("export: rename into place: %w", err)
	}
	return path, nil
}
