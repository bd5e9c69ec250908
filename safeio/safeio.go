// CLAUDE:SUMMARY Filesystem and I/O guards — path confinement for user-supplied document paths and bounded reads.
// Package safeio provides the I/O guards shared across the extraction
// services: path traversal prevention for user-supplied document paths and
// bounded reads for untrusted payloads.
package safeio

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// ErrPathTraversal is returned when a user-supplied path escapes its base.
var ErrPathTraversal = errors.New("safeio: path traversal detected")

// ResolvePath validates that joining base and userInput does not escape
// base. Returns the cleaned absolute path or ErrPathTraversal.
func ResolvePath(base, userInput string) (string, error) {
	if strings.Contains(userInput, "..") {
		return "", ErrPathTraversal
	}
	// Clean both and verify the result stays under base.
	cleaned := filepath.Join(base, filepath.Clean("/"+userInput))
	if !strings.HasPrefix(cleaned, filepath.Clean(base)+string(filepath.Separator)) &&
		cleaned != filepath.Clean(base) {
		return "", ErrPathTraversal
	}
	return cleaned, nil
}

// LimitedReadAll reads at most maxBytes from r and fails when the limit is
// exceeded, protecting callers from unbounded remote payloads.
func LimitedReadAll(r io.Reader, maxBytes int64) ([]byte, error) {
	lr := io.LimitReader(r, maxBytes+1)
	data, err := io.ReadAll(lr)
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("safeio: payload exceeds %d bytes", maxBytes)
	}
	return data, nil
}
