// Package inspect builds dimension reports over open dataset handles.
package inspect

import (
	"github.com/coriolabs/ncprobe/internal/dataset"
)

// Report is the result of one dimension inspection. HasRecordDim
// distinguishes a missing record dimension from a present-but-empty one:
// NumRecs is only meaningful when HasRecordDim is true.
type Report struct {
	Format       string              `json:"format"`
	RecordDim    string              `json:"record_dim"`
	NumRecs      uint64              `json:"num_recs"`
	HasRecordDim bool                `json:"has_record_dim"`
	Dimensions   []dataset.Dimension `json:"dimensions"`
}

// Describe queries h for the dimension named recordDim and the full ordered
// dimension listing. It is a pure read: it cannot fail on a valid open
// handle and repeated calls yield identical reports.
func Describe(h dataset.Handle, recordDim string) Report {
	r := Report{
		Format:     h.Format().String(),
		RecordDim:  recordDim,
		Dimensions: h.Dimensions(),
	}
	if d, ok := h.Dimension(recordDim); ok {
		r.NumRecs = d.Size
		r.HasRecordDim = true
	}
	return r
}
