package csvio

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"companysift/internal/domain"
)

var outputColumns = []string{
	"CompanyNumber",
	"CompanyName",
	"Postcode",
	"SICCodes",
	"DiscoveredURL",
	"ConfidenceScore",
	"SearchPosition",
	"PageTitle",
	"PageSnippet",
	"DomainMatchScore",
	"TLDRelevanceScore",
	"PositionScore",
	"Status",
	"ErrorMessage",
	"ProcessingTimestamp",
}

// Writer appends enriched outcome rows to the output CSV. Appending keeps
// earlier rows intact across resumed runs; each row is flushed so a kill
// loses at most the row in flight.
type Writer struct {
	f *os.File
	w *csv.Writer
}

func NewWriter(path string) (*Writer, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
	}

	info, statErr := os.Stat(path)
	fresh := statErr != nil || info.Size() == 0

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open output csv: %w", err)
	}

	w := &Writer{f: f, w: csv.NewWriter(f)}
	if fresh {
		if err := w.w.Write(outputColumns); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("write csv header: %w", err)
		}
		w.w.Flush()
	}
	return w, w.w.Error()
}

func (w *Writer) Write(o domain.Outcome) error {
	row := []string{
		o.CompanyNumber,
		o.CompanyName,
		o.Postcode,
		o.SICCodes,
		o.URL,
		formatScore(o.Confidence),
		formatPosition(o.Position),
		o.Title,
		o.Snippet,
		formatScore(o.Details.DomainMatch),
		formatScore(o.Details.TLDRelevance),
		formatScore(o.Details.Position),
		o.Status,
		o.ErrorMessage,
		o.ProcessedAt.UTC().Format(time.RFC3339),
	}
	if err := w.w.Write(row); err != nil {
		return fmt.Errorf("write csv row: %w", err)
	}
	w.w.Flush()
	return w.w.Error()
}

func (w *Writer) Close() error {
	w.w.Flush()
	if err := w.w.Error(); err != nil {
		_ = w.f.Close()
		return err
	}
	return w.f.Close()
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatPosition(p int) string {
	if p <= 0 {
		return ""
	}
	return strconv.Itoa(p)
}
