package dataset

import (
	"math"

	"debtlens/pkg/contracts/domain"
)

// YearRange is an inclusive [From, To] year bound.
type YearRange struct {
	From int
	To   int
}

// DebtRange is an inclusive [Min, Max] debt bound.
type DebtRange struct {
	Min float64
	Max float64
}

// UnboundedDebtRange places no constraint on debt values.
func UnboundedDebtRange() DebtRange {
	return DebtRange{Min: math.Inf(-1), Max: math.Inf(1)}
}

// Contains reports whether year lies within the range.
func (r YearRange) Contains(year int) bool {
	return year >= r.From && year <= r.To
}

// Contains reports whether debt lies within the range.
func (r DebtRange) Contains(debt float64) bool {
	return debt >= r.Min && debt <= r.Max
}

// Filter returns the order-preserving subsequence of points whose year and
// debt both fall within the inclusive ranges. An empty result is a soft
// condition for the caller to surface ("widen your filters"), never an
// error. The result is always non-nil so it marshals as an empty list.
func Filter(points []domain.DebtPoint, years YearRange, debts DebtRange) []domain.DebtPoint {
	out := make([]domain.DebtPoint, 0, len(points))
	for _, p := range points {
		if years.Contains(p.Year) && debts.Contains(p.Debt) {
			out = append(out, p)
		}
	}
	return out
}
