// Package dataset reads CSV asset listings into validated assets.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/iwvelando/algoinvest/pkg/asset"
)

// ErrMissingColumn is returned when the header lacks a required column.
var ErrMissingColumn = errors.New("missing column")

var (
	idHeaders     = []string{"name", "id", "identifier", "action", "actions #"}
	costHeaders   = []string{"price", "cost", "coût par action (en euros)"}
	profitHeaders = []string{"profit", "rate", "profit_rate", "bénéfice (après 2 ans)"}
)

// MixedScaleWarning describes a load whose LoadStats.MixedScale is set.
const MixedScaleWarning = `profit values mix "%"-suffixed and bare numbers; all were read as percentages`

// LoadStats summarizes how many rows a load accepted and why the others
// were excluded.
type LoadStats struct {
	Total    int            `json:"total" yaml:"total"`
	Valid    int            `json:"valid" yaml:"valid"`
	Rejected int            `json:"rejected" yaml:"rejected"`
	Reasons  map[string]int `json:"reasons,omitempty" yaml:"reasons,omitempty"`

	// MixedScale is set when percent-scale profits mix "%"-suffixed and
	// bare values.
	MixedScale bool `json:"mixedScale,omitempty" yaml:"mixedScale,omitempty"`
}

// RejectedPercent returns the share of rejected rows as a percentage.
func (s LoadStats) RejectedPercent() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Rejected) / float64(s.Total) * 100
}

// Load opens path and reads it with Read.
func Load(path, scale string) ([]asset.Asset, LoadStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("failed to open dataset %s: %w", path, err)
	}
	defer f.Close()

	assets, stats, err := Read(f, scale)
	if err != nil {
		return nil, stats, fmt.Errorf("dataset %s: %w", path, err)
	}
	return assets, stats, nil
}

// Read parses a CSV stream with a header row. Rows that fail validation are
// excluded and counted in the returned stats; only an unreadable stream, a
// header without the required columns or an unknown scale return an error.
func Read(r io.Reader, scale string) ([]asset.Asset, LoadStats, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, LoadStats{}, fmt.Errorf("%w: empty file", ErrMissingColumn)
		}
		return nil, LoadStats{}, fmt.Errorf("failed to read header: %w", err)
	}

	cols, err := resolveColumns(header)
	if err != nil {
		return nil, LoadStats{}, err
	}

	var records []asset.Record
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				// Keep the row so it is counted as a rejection.
				records = append(records, asset.Record{})
				continue
			}
			return nil, LoadStats{}, fmt.Errorf("failed to read row: %w", err)
		}
		if blank(row) {
			continue
		}
		records = append(records, asset.Record{
			ID:     field(row, cols.id),
			Cost:   field(row, cols.cost),
			Profit: field(row, cols.profit),
		})
	}

	assets, rejected, err := asset.ParseAll(records, scale)
	if err != nil {
		return nil, LoadStats{}, err
	}

	stats := LoadStats{
		Total:      len(records),
		Valid:      len(assets),
		Rejected:   rejected.Total,
		Reasons:    rejected.Reasons,
		MixedScale: asset.MixedPercentShapes(records, scale),
	}
	return assets, stats, nil
}

type columns struct {
	id, cost, profit int
}

func resolveColumns(header []string) (columns, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, exists := index[key]; !exists {
			index[key] = i
		}
	}

	find := func(name string, aliases []string) (int, error) {
		for _, alias := range aliases {
			if i, ok := index[alias]; ok {
				return i, nil
			}
		}
		return 0, fmt.Errorf("%w: %s (expected one of %s)", ErrMissingColumn, name, strings.Join(aliases, ", "))
	}

	var cols columns
	var err error
	if cols.id, err = find("identifier", idHeaders); err != nil {
		return cols, err
	}
	if cols.cost, err = find("cost", costHeaders); err != nil {
		return cols, err
	}
	if cols.profit, err = find("profit", profitHeaders); err != nil {
		return cols, err
	}
	return cols, nil
}

func field(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
