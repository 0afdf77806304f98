//go:build !unix

package csvengine

import (
	"bytes"
	"fmt"
	"os"
)

// mapFile reads filename into memory on platforms without mmap support.
// Adapted from the teacher's internal/fastparser/mmap_other.go; keeps the
// same (data, cleanup, err) shape as the unix variant for API parity.
func mapFile(filename string) ([]byte, func(), error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, nil, fmt.Errorf("csvengine: read %s: %w", filename, err)
	}
	return data, func() {}, nil
}

// OpenFile reads filename and returns a Reader over its contents plus a
// no-op cleanup function, kept for API parity with the unix build.
func OpenFile(filename string) (*bytes.Reader, func(), error) {
	data, cleanup, err := mapFile(filename)
	if err != nil {
		return nil, nil, err
	}
	return bytes.NewReader(data), cleanup, nil
}
