package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/TonmoySahaNC/NC-MCE-Automation/internal/query"
	"github.com/TonmoySahaNC/NC-MCE-Automation/internal/types"
)

// Filename names the CSV for a scope ("ALL_CUSTOMERS" or a customer name).
func Filename(scope string, sel query.Selection, period types.ReportPeriod) string {
	switch sel.Variant {
	case types.VariantIncomingEvents:
		return fmt.Sprintf("%s_incoming_events_%d_%s.csv", scope, period.Year, period.MonthAbbr())
	case types.VariantPatchReport:
		return fmt.Sprintf("%s_events_%d_%s_patch.csv", scope, period.Year, period.MonthAbbr())
	default:
		return fmt.Sprintf("%s_connection_lost.csv", scope)
	}
}

// Encode renders rows as CSV with a header row.
func Encode(rows types.Rows) ([]byte, error) {
	var (
		out []byte
		err error
	)
	switch rows.Variant {
	case types.VariantConnectionLost:
		out, err = gocsv.MarshalBytes(rows.ConnectionLost)
	case types.VariantIncomingEvents:
		out, err = gocsv.MarshalBytes(rows.IncomingEvents)
	case types.VariantPatchReport:
		out, err = gocsv.MarshalBytes(rows.Patches)
	default:
		return nil, fmt.Errorf("unknown variant %q", rows.Variant)
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s csv: %w", rows.Variant, err)
	}
	return out, nil
}

// Decode parses CSV produced by Encode.
func Decode(variant types.Variant, data []byte) (types.Rows, error) {
	rows := types.NewRows(variant)
	var err error
	switch variant {
	case types.VariantConnectionLost:
		err = gocsv.UnmarshalBytes(data, &rows.ConnectionLost)
	case types.VariantIncomingEvents:
		err = gocsv.UnmarshalBytes(data, &rows.IncomingEvents)
	case types.VariantPatchReport:
		err = gocsv.UnmarshalBytes(data, &rows.Patches)
	default:
		return rows, fmt.Errorf("unknown variant %q", variant)
	}
	if err != nil {
		return rows, fmt.Errorf("decode %s csv: %w", variant, err)
	}
	return rows, nil
}

// Header returns the first line of an encoded report, without the newline.
func Header(data []byte) string {
	line, _, _ := bytes.Cut(data, []byte("\n"))
	return string(bytes.TrimRight(line, "\r"))
}

// WriteFile encodes rows into dir/name and returns the full path.
func WriteFile(dir, name string, rows types.Rows) (string, []byte, error) {
	data, err := Encode(rows)
	if err != nil {
		return "", nil, err
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", nil, fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", nil, fmt.Errorf("failed to write report file: %w", err)
	}
	return path, data, nil
}
