package engine

import (
	"bytes"
	"os"
	"path/filepath"

	ecserrors "github.com/aledsdavies/ecsgen/pkgs/errors"
)

// WriteUnits writes every generated unit of b into dir and returns the paths
// written. Files whose content is unchanged are left alone. Failed units are
// skipped so a broken system never clobbers its last good output.
func WriteUnits(dir string, b Batch) ([]string, error) {
	var written []string
	for i := range b {
		unit := b[i].Unit
		if b[i].Err != nil || unit == nil {
			continue
		}
		path := filepath.Join(dir, unit.FileName)
		if old, err := os.ReadFile(path); err == nil && bytes.Equal(old, unit.Source) {
			continue
		}
		if err := writeFile(path, unit.Source); err != nil {
			return written, ecserrors.Wrap(ecserrors.ErrOutputWrite, "cannot write "+path, err).
				WithContext("path", path)
		}
		written = append(written, path)
	}
	return written, nil
}

// writeFile replaces path through a temporary file in the same directory.
func writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".ecsgen-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Stale compares the units of b with the files in dir and returns an error
// for each unit that is missing or differs.
func Stale(dir string, b Batch) []error {
	var stale []error
	for i := range b {
		unit := b[i].Unit
		if unit == nil {
			continue
		}
		path := filepath.Join(dir, unit.FileName)
		old, err := os.ReadFile(path)
		if err != nil || !bytes.Equal(old, unit.Source) {
			stale = append(stale, ecserrors.NewStaleOutputError(path))
		}
	}
	return stale
}
