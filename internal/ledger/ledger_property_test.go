package ledger

import (
	"math"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Property: for any sequence of operations, the live balances equal the
// fold of the journal from the starting cash, and the journal length
// equals the number of operations (append-only, nothing rewritten).
func TestProperty_FoldReproducesBalances(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	opGen := gen.IntRange(0, 3)
	amountGen := gen.Float64Range(0, 10000)

	properties.Property("fold(journal) == live balances", prop.ForAll(
		func(ops []int, amounts []float64, startingCash float64) bool {
			l := New(startingCash)
			date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

			n := len(ops)
			if len(amounts) < n {
				n = len(amounts)
			}
			for i := 0; i < n; i++ {
				switch ops[i] {
				case 0:
					l.Reserve(amounts[i], date, "r")
				case 1:
					l.Release(amounts[i], date, "l")
				case 2:
					l.Credit(amounts[i], date, "c")
				case 3:
					l.Debit(amounts[i], date, "d")
				}
				date = date.AddDate(0, 0, 1)
			}

			cash, reserved := FoldBalances(l.StartingCash(), l.Journal())
			if len(l.Journal()) != n {
				return false
			}
			return math.Abs(cash-l.Cash()) < 1e-9 && math.Abs(reserved-l.Reserved()) < 1e-9
		},
		gen.SliceOf(opGen),
		gen.SliceOf(amountGen),
		gen.Float64Range(0, 1e6),
	))

	properties.TestingRun(t)
}
