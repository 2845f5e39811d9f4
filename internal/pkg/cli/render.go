package cli

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/owi-lab/go-metadatabase/internal/pkg/frame"
)

// renderTable writes the frame as an aligned text table,
// missing values are rendered as a dash.
// The table is flushed to the writer in one piece, w may be
// a line based log writer.
func renderTable(w io.Writer, f *frame.Frame) error {
	if f == nil || f.Empty() {
		_, err := fmt.Fprintln(w, "No rows found.")
		return err
	}

	var out bytes.Buffer
	columns := f.Columns()
	tw := tabwriter.NewWriter(&out, 2, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, strings.Join(columns, "\t")); err != nil {
		return err
	}
	for i := 0; i < f.Len(); i++ {
		cells := make([]string, len(columns))
		for j, column := range columns {
			if f.IsNull(i, column) {
				cells[j] = "-"
			} else {
				cells[j] = f.String(i, column)
			}
		}
		if _, err := fmt.Fprintln(tw, strings.Join(cells, "\t")); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := w.Write(out.Bytes())
	return err
}
