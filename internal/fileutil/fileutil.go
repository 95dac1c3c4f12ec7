// Package fileutil holds small file helpers shared by the cache and the
// output writer.
package fileutil

import (
	"fmt"
	"os"
)

// WriteFileAtomic writes data to a temp file beside path and renames it over
// path, so readers see either the old file or the new one.
func WriteFileAtomic(path string, data []byte, mode os.FileMode) error {
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, mode); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
