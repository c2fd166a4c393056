package transform

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Writer produces timestamped CSV files in the output directory. Writes go
// through a temp file in the same directory and finish with a rename, so
// the label software polling that directory never reads a half-written
// file.
type Writer struct {
	dir    string
	logger *zap.Logger
}

func NewWriter(dir string, logger *zap.Logger) *Writer {
	return &Writer{dir: dir, logger: logger}
}

// Filename builds the output name for a source table: the upper-cased file
// stem plus a second-resolution timestamp, e.g. STOCK_20260823093015.csv.
func Filename(sourceName string, t time.Time) string {
	stem := strings.ToUpper(strings.TrimSuffix(sourceName, filepath.Ext(sourceName)))
	return fmt.Sprintf("%s_%s.csv", stem, t.Format("20060102150405"))
}

// Write emits the rows to fileName inside the output directory and returns
// the final path. An existing file of the same name is kept as a .bak
// sibling before the rename.
func (w *Writer) Write(rows []ESLRecord, fileName string) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	finalPath := filepath.Join(w.dir, fileName)

	tmp, err := os.CreateTemp(w.dir, "esl_*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	cw := csv.NewWriter(tmp)
	if err := cw.Write(Headers()); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(row.Row()); err != nil {
			tmp.Close()
			os.Remove(tmpPath)
			return "", fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("flush csv: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("sync csv: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("close csv: %w", err)
	}

	if _, err := os.Stat(finalPath); err == nil {
		backup := strings.TrimSuffix(finalPath, ".csv") + ".bak"
		if err := os.Rename(finalPath, backup); err != nil {
			os.Remove(tmpPath)
			return "", fmt.Errorf("back up previous csv: %w", err)
		}
		w.logger.Info("backed up previous csv", zap.String("path", backup))
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("publish csv: %w", err)
	}

	w.logger.Info("csv file created",
		zap.String("path", finalPath),
		zap.Int("rows", len(rows)))
	return finalPath, nil
}
