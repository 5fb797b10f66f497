package inspect

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// WriteText renders the report in the classic ncdump-ish layout:
//
//	NumRecs: 1
//	Dimensions:
//	  N_REC = 1
//	  N_LEVELS = 850
//
// A missing record dimension renders as "NumRecs: No unlimited".
func (r Report) WriteText(w io.Writer) error {
	var b strings.Builder
	if r.HasRecordDim {
		fmt.Fprintf(&b, "NumRecs: %d\n", r.NumRecs)
	} else {
		b.WriteString("NumRecs: No unlimited\n")
	}
	b.WriteString("Dimensions:\n")
	for _, d := range r.Dimensions {
		fmt.Fprintf(&b, "  %s = %d\n", d.Name, d.Size)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteJSON renders the report as indented JSON for scripting.
func (r Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
