// Package export renders a scan Grouping as CSV, HTML, XLSX.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"mfdiff/internal/mfdiff"
)

// CSVHeader is the first row of every CSV report.
var CSVHeader = []string{"normalized_rel_path", "date", "actual_name", "size", "created", "modified", "rel_path"}

// Supported CSV encodings.
const (
	EncodingUTF8     = "utf8"
	EncodingShiftJIS = "shift_jis"
	EncodingUTF16LE  = "utf16le"
)

// NewEncodedWriter wraps w so UTF-8 text written to it is transcoded to the
// named encoding. Close flushes the transcoder; it does not close w.
// Characters Shift_JIS cannot represent are replaced rather than rejected.
func NewEncodedWriter(w io.Writer, label string) (io.WriteCloser, error) {
	var enc *encoding.Encoder
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "", EncodingUTF8, "utf-8":
		return nopCloser{w}, nil
	case EncodingShiftJIS, "sjis", "shift-jis":
		enc = encoding.ReplaceUnsupported(japanese.ShiftJIS.NewEncoder())
	case EncodingUTF16LE, "utf-16le":
		enc = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder()
	default:
		return nil, fmt.Errorf("unknown encoding %q (want utf8, shift_jis or utf16le)", label)
	}
	return transform.NewWriter(w, enc), nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// WriteCSV writes one row per record, identities in key order and records in
// period order.
func WriteCSV(w io.Writer, g *mfdiff.Grouping, label string) error {
	ew, err := NewEncodedWriter(w, label)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(ew)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for identity, records := range g.All() {
		for _, r := range records {
			row := []string{
				identity,
				r.PeriodLabel,
				r.ActualName,
				strconv.FormatInt(r.Size, 10),
				r.Created,
				r.Modified,
				r.RelativePath,
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("writing csv row for %s: %w", r.RelativePath, err)
			}
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	if err := ew.Close(); err != nil {
		return fmt.Errorf("flushing %s encoder: %w", label, err)
	}
	return nil
}
