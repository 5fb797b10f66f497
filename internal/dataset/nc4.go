package dataset

import (
	"fmt"

	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/batchatco/go-native-netcdf/netcdf/hdf5"
)

// nc4Handle adapts an HDF5-backed netCDF-4 group. The HDF5 dimension API
// does not mark a dimension unlimited, so the record dimension is found by
// the convention-name lookup alone on this path.
type nc4Handle struct {
	g    api.Group
	dims []Dimension
}

func openNetCDF4(path string) (Handle, error) {
	g, err := hdf5.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return newNC4Handle(g), nil
}

// newNC4Handle snapshots the group's dimensions so enumeration order stays
// fixed for the handle lifetime.
func newNC4Handle(g api.Group) *nc4Handle {
	names := g.ListDimensions()
	dims := make([]Dimension, 0, len(names))
	for _, name := range names {
		size, ok := g.GetDimension(name)
		if !ok {
			continue
		}
		dims = append(dims, Dimension{Name: name, Size: size})
	}
	return &nc4Handle{g: g, dims: dims}
}

func (h *nc4Handle) Format() Format { return FormatNetCDF4 }

func (h *nc4Handle) Dimensions() []Dimension { return h.dims }

func (h *nc4Handle) Dimension(name string) (Dimension, bool) {
	return lookup(h.dims, name)
}

func (h *nc4Handle) Close() error {
	h.g.Close()
	return nil
}
