package dataset

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// Leading magic bytes of the supported containers.
const (
	magicCDF  = 'C'
	magicHDF5 = 0x89
)

// Open sniffs the container format of the file at path and returns a handle
// bound to it. Classic files (CDF-1/2/5) are parsed natively; an HDF5
// signature is delegated to the netCDF-4 backend.
func Open(path string) (Handle, error) {
	kind, err := sniff(path)
	if err != nil {
		return nil, err
	}
	switch kind {
	case magicCDF:
		return openClassic(path)
	case magicHDF5:
		return openNetCDF4(path)
	}
	return nil, fmt.Errorf("%s: %w", path, ErrUnknownFormat)
}

// sniff reads the first byte. The backends reopen the file themselves, so
// the descriptor is released before dispatching.
func sniff(path string) (byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	var b [1]byte
	n, err := f.Read(b[:])
	if n == 0 {
		if err != nil && !errors.Is(err, io.EOF) {
			return 0, fmt.Errorf("read %s: %w", path, err)
		}
		return 0, fmt.Errorf("%s: empty file: %w", path, ErrUnknownFormat)
	}
	return b[0], nil
}
