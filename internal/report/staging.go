package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/TonmoySahaNC/NC-MCE-Automation/internal/types"
)

const stagingDirName = ".staging"

// StagingDir is where the per-customer rows of one run are kept until the
// report is assembled.
func StagingDir(dir, runID string) string {
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, stagingDirName, safeName(runID))
}

// Stage writes one customer's rows as CSV under the run's staging dir and
// returns the file path.
func Stage(dir, runID, customerKey string, rows types.Rows) (string, error) {
	data, err := Encode(rows)
	if err != nil {
		return "", err
	}
	stageDir := StagingDir(dir, runID)
	if err := os.MkdirAll(stageDir, 0o755); err != nil {
		return "", fmt.Errorf("create staging dir: %w", err)
	}
	path := filepath.Join(stageDir, safeName(customerKey)+".csv")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write staged rows: %w", err)
	}
	return path, nil
}

// LoadStaged reads staged files in order and concatenates their rows.
func LoadStaged(variant types.Variant, paths []string) (types.Rows, error) {
	rows := types.NewRows(variant)
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return rows, fmt.Errorf("read staged rows: %w", err)
		}
		staged, err := Decode(variant, data)
		if err != nil {
			return rows, fmt.Errorf("%s: %w", path, err)
		}
		if err := rows.Append(staged); err != nil {
			return rows, err
		}
	}
	return rows, nil
}

// ClearStaging removes the run's staging dir, and the staging root once it
// is empty.
func ClearStaging(dir, runID string) error {
	stageDir := StagingDir(dir, runID)
	if err := os.RemoveAll(stageDir); err != nil {
		return fmt.Errorf("remove staging dir: %w", err)
	}
	// Fails while other runs still have staged files.
	_ = os.Remove(filepath.Dir(stageDir))
	return nil
}

func safeName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, s)
}
