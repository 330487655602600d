package main

import (
	"fmt"
	"io"
	"os"
)

// writeFile creates path and fills it with write, reporting close errors.
func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("while creating %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); err == nil && closeErr != nil {
			err = fmt.Errorf("while closing %s: %w", path, closeErr)
		}
	}()
	return write(f)
}
