package dataset

import (
	"github.com/coriolabs/ncprobe/internal/cdf"
)

// classicHandle adapts a parsed classic header. The dimension snapshot is
// taken once at open so enumeration stays stable and repeatable.
type classicHandle struct {
	nc   *cdf.File
	dims []Dimension
}

func openClassic(path string) (Handle, error) {
	nc, err := cdf.Open(path)
	if err != nil {
		return nil, err
	}
	dims := make([]Dimension, len(nc.Dims))
	for i, d := range nc.Dims {
		dims[i] = Dimension{
			Name:      d.Name,
			Size:      nc.DimLen(d),
			Unlimited: d.Unlimited(),
		}
	}
	return &classicHandle{nc: nc, dims: dims}, nil
}

func (h *classicHandle) Format() Format {
	switch h.nc.Version {
	case cdf.Classic:
		return FormatClassic
	case cdf.Offset64:
		return Format64BitOffset
	case cdf.Data64:
		return FormatCDF5
	}
	return FormatUnknown
}

func (h *classicHandle) Dimensions() []Dimension { return h.dims }

func (h *classicHandle) Dimension(name string) (Dimension, bool) {
	return lookup(h.dims, name)
}

func (h *classicHandle) Close() error { return h.nc.Close() }
