// Package dataset provides read-only handles over self-describing array
// containers of the netCDF family. A handle exposes the container format
// and its dimension listing; variable data stays untouched.
package dataset

import "errors"

// ErrUnknownFormat is returned by Open when the file's magic number matches
// no supported container.
var ErrUnknownFormat = errors.New("not a recognized netCDF container")

// Format identifies the container variant behind a handle.
type Format int

const (
	FormatUnknown Format = iota
	FormatClassic
	Format64BitOffset
	FormatCDF5
	FormatNetCDF4
)

func (f Format) String() string {
	switch f {
	case FormatClassic:
		return "Classic (CDF-1)"
	case Format64BitOffset:
		return "64-bit Offset (CDF-2)"
	case FormatCDF5:
		return "64-bit Data (CDF-5)"
	case FormatNetCDF4:
		return "netCDF-4 (HDF5)"
	}
	return "unknown"
}

// Dimension is a named axis of an array variable. Size is the current
// extent; for the unlimited dimension it reflects the record count at the
// time the handle was opened.
type Dimension struct {
	Name      string `json:"name"`
	Size      uint64 `json:"size"`
	Unlimited bool   `json:"unlimited,omitempty"`
}

// Handle is a read-only view of one open dataset. Dimension names are
// unique within a handle and Dimensions keeps the file's definition order,
// stable for the handle lifetime. Handles are not safe for concurrent use.
type Handle interface {
	// Format reports the container variant.
	Format() Format

	// Dimensions lists every dimension in native order. Callers must not
	// modify the returned slice.
	Dimensions() []Dimension

	// Dimension looks up one dimension by name.
	Dimension(name string) (Dimension, bool)

	// Close releases the backing file. Safe to call once per handle.
	Close() error
}

// lookup is the shared name search over an ordered dimension snapshot.
func lookup(dims []Dimension, name string) (Dimension, bool) {
	for _, d := range dims {
		if d.Name == name {
			return d, true
		}
	}
	return Dimension{}, false
}
