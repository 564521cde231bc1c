package data

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	apperrors "csp-backtester/internal/errors"
)

func TestGenerateSeriesDeterministic(t *testing.T) {
	cfg := SyntheticConfig{
		Instrument: "AAA",
		StartDate:  time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC),
		Days:       100,
		StartPrice: 100,
		AnnualVol:  0.25,
		Drift:      0.05,
		Seed:       42,
	}

	a, b := GenerateSeries(cfg), GenerateSeries(cfg)
	if !reflect.DeepEqual(a, b) {
		t.Error("same seed produced different series")
	}

	if len(a.Points) != cfg.Days {
		t.Fatalf("points = %d, want %d", len(a.Points), cfg.Days)
	}
	if a.Points[0].Close != cfg.StartPrice {
		t.Errorf("first close = %v, want start price", a.Points[0].Close)
	}
	for i, p := range a.Points {
		if wd := p.Date.Weekday(); wd == time.Saturday || wd == time.Sunday {
			t.Errorf("point %d falls on %s", i, wd)
		}
		if p.Close <= 0 {
			t.Errorf("point %d has non-positive close %v", i, p.Close)
		}
	}

	cfg.Seed = 43
	if c := GenerateSeries(cfg); reflect.DeepEqual(a, c) {
		t.Error("different seeds produced identical series")
	}
}

func TestSeriesRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "AAA.csv")

	orig := GenerateSeries(SyntheticConfig{
		Instrument: "AAA",
		StartDate:  time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC),
		Days:       50,
		StartPrice: 80,
		AnnualVol:  0.2,
		Drift:      0.05,
		Seed:       1,
	})
	if err := WriteSeriesFile(path, orig); err != nil {
		t.Fatalf("WriteSeriesFile: %v", err)
	}

	got, err := LoadSeriesFile("AAA", path)
	if err != nil {
		t.Fatalf("LoadSeriesFile: %v", err)
	}
	if got.Instrument != "AAA" {
		t.Errorf("instrument = %q", got.Instrument)
	}
	if len(got.Points) != len(orig.Points) {
		t.Fatalf("points = %d, want %d", len(got.Points), len(orig.Points))
	}
	for i := range got.Points {
		if !got.Points[i].Date.Equal(orig.Points[i].Date) {
			t.Errorf("point %d date = %s, want %s", i, got.Points[i].Date, orig.Points[i].Date)
		}
		if math.Abs(got.Points[i].Close-orig.Points[i].Close) > 1e-9 {
			t.Errorf("point %d close = %v, want %v", i, got.Points[i].Close, orig.Points[i].Close)
		}
	}
}

func TestLoadSeriesFileSortsRows(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ZZZ.csv")
	csv := "date,close\n2020-01-03,101\n2020-01-01,99\n2020-01-02,100\n"
	if err := os.WriteFile(path, []byte(csv), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadSeriesFile("ZZZ", path)
	if err != nil {
		t.Fatalf("LoadSeriesFile: %v", err)
	}
	for i := 1; i < len(s.Points); i++ {
		if !s.Points[i-1].Date.Before(s.Points[i].Date) {
			t.Fatalf("points not sorted at %d", i)
		}
	}
	if s.Points[0].Close != 99 {
		t.Errorf("first close = %v, want 99", s.Points[0].Close)
	}
}

func TestLoadSeriesFileBadDate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "BAD.csv")
	if err := os.WriteFile(path, []byte("date,close\nnot-a-date,1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadSeriesFile("BAD", path)
	if err == nil {
		t.Fatal("expected error for malformed date")
	}
	var serr *apperrors.SeriesError
	if !errors.As(err, &serr) {
		t.Errorf("error %T does not unwrap to SeriesError", err)
	}
}

func TestLoadSeriesDir(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"BBB", "AAA"} {
		s := GenerateSeries(SyntheticConfig{
			Instrument: name,
			StartDate:  time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC),
			Days:       10,
			StartPrice: 100,
			AnnualVol:  0.2,
			Seed:       5,
		})
		if err := WriteSeriesFile(filepath.Join(dir, name+".csv"), s); err != nil {
			t.Fatal(err)
		}
	}
	// Non-CSV files are ignored.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	series, err := LoadSeriesDir(dir)
	if err != nil {
		t.Fatalf("LoadSeriesDir: %v", err)
	}
	if len(series) != 2 {
		t.Fatalf("series = %d, want 2", len(series))
	}
	if series[0].Instrument != "AAA" || series[1].Instrument != "BBB" {
		t.Errorf("series not sorted by instrument: %s, %s", series[0].Instrument, series[1].Instrument)
	}
}

func TestLoadSeriesDirEmpty(t *testing.T) {
	if _, err := LoadSeriesDir(t.TempDir()); !errors.Is(err, apperrors.ErrNoPriceHistory) {
		t.Errorf("error = %v, want ErrNoPriceHistory", err)
	}
}
