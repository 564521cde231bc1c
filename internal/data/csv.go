// Package data loads per-instrument daily price series and writes
// simulation output files.
package data

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	apperrors "csp-backtester/internal/errors"
	"csp-backtester/internal/models"
)

const dateLayout = "2006-01-02"

// priceRow is the on-disk shape of one daily close.
type priceRow struct {
	Date  string  `csv:"date"`
	Close float64 `csv:"close"`
}

// LoadSeriesFile reads a single instrument's price history from a CSV
// file with date,close columns. Rows are sorted by date.
func LoadSeriesFile(instrument, path string) (*models.PriceSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewSeriesError(instrument, path, err)
	}
	defer f.Close()

	var rows []priceRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, apperrors.NewSeriesError(instrument, path, err)
	}
	if len(rows) == 0 {
		return nil, apperrors.NewSeriesError(instrument, path, apperrors.ErrNoPriceHistory)
	}

	points := make([]models.PricePoint, 0, len(rows))
	for _, r := range rows {
		d, err := time.ParseInLocation(dateLayout, r.Date, time.UTC)
		if err != nil {
			return nil, apperrors.NewSeriesError(instrument, path,
				fmt.Errorf("bad date %q: %w", r.Date, err))
		}
		points = append(points, models.PricePoint{Date: d, Close: r.Close})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })

	return &models.PriceSeries{Instrument: instrument, Points: points}, nil
}

// LoadSeriesDir loads every *.csv file in dir as one instrument each,
// named after the file's base name. Returns series sorted by
// instrument id.
func LoadSeriesDir(dir string) ([]*models.PriceSeries, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading price dir: %w", err)
	}

	var series []*models.PriceSeries
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".csv") {
			continue
		}
		instrument := strings.TrimSuffix(e.Name(), ".csv")
		s, err := LoadSeriesFile(instrument, filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		series = append(series, s)
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("%w: no csv files in %s", apperrors.ErrNoPriceHistory, dir)
	}

	sort.Slice(series, func(i, j int) bool { return series[i].Instrument < series[j].Instrument })
	return series, nil
}

// WriteSeriesFile writes a price series as a date,close CSV file.
func WriteSeriesFile(path string, s *models.PriceSeries) error {
	rows := make([]priceRow, 0, len(s.Points))
	for i := range s.Points {
		rows = append(rows, priceRow{
			Date:  s.Points[i].Date.Format(dateLayout),
			Close: s.Points[i].Close,
		})
	}
	return writeCSV(path, &rows)
}

// WriteTrades writes the trade list as CSV.
func WriteTrades(path string, trades []models.TradeRecord) error {
	return writeCSV(path, &trades)
}

// WriteEquity writes the daily equity path as CSV.
func WriteEquity(path string, equity []models.EquityPoint) error {
	return writeCSV(path, &equity)
}

// WriteUtilization writes the daily collateral-utilization path as CSV.
func WriteUtilization(path string, utilization []models.UtilizationPoint) error {
	return writeCSV(path, &utilization)
}

// WriteJournal writes the full cash/collateral journal as CSV.
func WriteJournal(path string, journal []models.JournalEntry) error {
	return writeCSV(path, &journal)
}

func writeCSV(path string, rows interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if err := gocsv.MarshalFile(rows, f); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
