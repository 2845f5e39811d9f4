package frame

import (
	"encoding/csv"
	"io"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cast"

	"github.com/owi-lab/go-metadatabase/internal/pkg/utils/errors"
)

// WriteCSV writes the frame with a header row, null cells are empty.
func (f *Frame) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(f.Columns()); err != nil {
		return errors.Errorf("cannot write CSV header: %w", err)
	}

	record := make([]string, len(f.columns))
	for i := range f.rows {
		for j, col := range f.columns {
			if f.IsNull(i, col) {
				record[j] = ""
				continue
			}
			value, _ := f.Value(i, col)
			record[j] = cast.ToString(value)
		}
		if err := writer.Write(record); err != nil {
			return errors.Errorf("cannot write CSV row %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// ExportCSV writes the frame to a file, parent directories are created.
func (f *Frame) ExportCSV(fs afero.Fs, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return errors.Errorf(`cannot create directory "%s": %w`, dir, err)
		}
	}

	file, err := fs.Create(path)
	if err != nil {
		return errors.Errorf(`cannot create file "%s": %w`, path, err)
	}
	defer file.Close()

	if err := f.WriteCSV(file); err != nil {
		return errors.Errorf(`cannot write file "%s": %w`, path, err)
	}
	return nil
}
