// Package ncprobe inspects the dimensions of netCDF datasets.
//
// Example usage:
//
//	report, err := ncprobe.Inspect("argo_2019_01/nodc_D1900975_339.nc")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	report.WriteText(os.Stdout)
package ncprobe

import (
	"github.com/coriolabs/ncprobe/internal/cliconfig"
	"github.com/coriolabs/ncprobe/internal/dataset"
	"github.com/coriolabs/ncprobe/internal/inspect"
)

// Report is the result of one dimension inspection.
type Report = inspect.Report

// Dimension is a named axis with its current extent.
type Dimension = dataset.Dimension

// Format identifies the container variant behind a handle.
type Format = dataset.Format

// Handle is a read-only view of one open dataset.
type Handle = dataset.Handle

// ErrUnknownFormat is returned when a file's magic number matches no
// supported container.
var ErrUnknownFormat = dataset.ErrUnknownFormat

// DefaultRecordDim is the record dimension name used when no override is
// given. It follows the Argo profile convention; other producers differ.
const DefaultRecordDim = cliconfig.DefaultRecordDim

// Option configures optional behavior of Inspect.
type Option func(*options)

type options struct {
	recordDim string
}

func defaultOptions() options {
	return options{recordDim: DefaultRecordDim}
}

// WithRecordDim overrides the record dimension name looked up by Inspect.
// An empty name keeps the default.
func WithRecordDim(name string) Option {
	return func(o *options) {
		if name != "" {
			o.recordDim = name
		}
	}
}

// Open opens the dataset at path, sniffing the container format. The caller
// owns the returned handle and must close it.
func Open(path string) (Handle, error) {
	return dataset.Open(path)
}

// Describe reports the record count and dimension listing of an open handle.
// It is a pure read and cannot fail on a valid handle.
func Describe(h Handle, recordDim string) Report {
	return inspect.Describe(h, recordDim)
}

// Inspect opens path, describes it and closes the handle on all paths,
// including errors.
func Inspect(path string, opts ...Option) (Report, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	h, err := dataset.Open(path)
	if err != nil {
		return Report{}, err
	}
	defer h.Close()
	return inspect.Describe(h, o.recordDim), nil
}
