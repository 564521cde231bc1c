package volatility

import (
	"math"
	"testing"
	"time"

	"csp-backtester/internal/models"
)

func seriesFromCloses(instrument string, closes []float64) *models.PriceSeries {
	start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	pts := make([]models.PricePoint, len(closes))
	for i, c := range closes {
		pts[i] = models.PricePoint{Date: start.AddDate(0, 0, i), Close: c}
	}
	return &models.PriceSeries{Instrument: instrument, Points: pts}
}

func TestAnnotateFlatSeriesFlooredProxyZeroRank(t *testing.T) {
	closes := make([]float64, 100)
	for i := range closes {
		closes[i] = 100
	}
	s := seriesFromCloses("FLAT", closes)
	Annotate(s, 21, 30)

	p := s.Points[len(s.Points)-1]
	if !p.Tradable {
		t.Fatal("late flat point should be tradable")
	}
	if p.VolProxy != 0.05 {
		t.Errorf("flat series proxy = %v, want floor 0.05", p.VolProxy)
	}
	if p.VolRank != 0 {
		t.Errorf("flat series rank = %v, want 0 (max == min)", p.VolRank)
	}
}

func TestAnnotateInsufficientHistoryNotTradable(t *testing.T) {
	closes := make([]float64, 100)
	for i := range closes {
		closes[i] = 100 + math.Sin(float64(i))
	}
	s := seriesFromCloses("X", closes)

	trailing, lookback := 21, 30
	Annotate(s, trailing, lookback)

	// First date with a defined proxy is index trailing; first date whose
	// rank window is fully populated is trailing+lookback-1.
	firstTradable := trailing + lookback - 1
	for i := 0; i < firstTradable; i++ {
		if s.Points[i].Tradable {
			t.Fatalf("point %d tradable before full lookback", i)
		}
	}
	if !s.Points[firstTradable].Tradable {
		t.Errorf("point %d should be the first tradable date", firstTradable)
	}
}

func TestAnnotateVolSpikeRanksHigh(t *testing.T) {
	closes := make([]float64, 120)
	for i := range closes {
		closes[i] = 100 + 0.5*math.Sin(float64(i)*1.3)
	}
	// Violent swings at the tail push trailing vol to its window maximum.
	for i := 110; i < 120; i++ {
		if i%2 == 0 {
			closes[i] = 120
		} else {
			closes[i] = 85
		}
	}
	s := seriesFromCloses("SPIKE", closes)
	Annotate(s, 21, 60)

	last := s.Points[len(s.Points)-1]
	if !last.Tradable {
		t.Fatal("tail point should be tradable")
	}
	if last.VolRank < 0.9 {
		t.Errorf("rank after vol spike = %v, want near 1", last.VolRank)
	}
}

func TestAnnotateAllMatchesSequential(t *testing.T) {
	mk := func() []*models.PriceSeries {
		var out []*models.PriceSeries
		for _, name := range []string{"A", "B", "C", "D"} {
			closes := make([]float64, 90)
			for i := range closes {
				closes[i] = 50 + 3*math.Sin(float64(i)*0.7) + float64(len(name))
			}
			out = append(out, seriesFromCloses(name, closes))
		}
		return out
	}

	parallel := mk()
	sequential := mk()

	AnnotateAll(parallel, 21, 30)
	for _, s := range sequential {
		Annotate(s, 21, 30)
	}

	for i := range parallel {
		for j := range parallel[i].Points {
			got, want := parallel[i].Points[j], sequential[i].Points[j]
			if got.VolProxy != want.VolProxy || got.VolRank != want.VolRank || got.Tradable != want.Tradable {
				t.Fatalf("series %s point %d: parallel %+v != sequential %+v",
					parallel[i].Instrument, j, got, want)
			}
		}
	}
}
