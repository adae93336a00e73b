package share

import (
	"math"

	"github.com/shopspring/decimal"
)

// Normalize converts a list of payer weights into fractions that sum to 1.
// Non-finite and non-positive weights are treated as zero. When every weight
// ends up zero the split falls back to equal parts; an empty list normalizes
// to a single full share.
func Normalize(weights []float64) []float64 {
	n := len(weights)
	if n == 0 {
		return []float64{1}
	}

	cleaned := make([]float64, n)
	var sum float64
	for i, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) || w <= 0 {
			continue
		}
		cleaned[i] = w
		sum += w
	}

	if sum == 0 {
		for i := range cleaned {
			cleaned[i] = 1 / float64(n)
		}
		return cleaned
	}

	for i := range cleaned {
		cleaned[i] /= sum
	}
	return cleaned
}

// HasPositive reports whether at least one weight would survive normalization.
// Callers validating user-entered shares reject the list before Normalize
// silently falls back to an equal split.
func HasPositive(weights []float64) bool {
	for _, w := range weights {
		if !math.IsNaN(w) && !math.IsInf(w, 0) && w > 0 {
			return true
		}
	}
	return false
}

// SplitAmount distributes amount across normalized shares. Every part is
// rounded to 2 decimals independently and the rounding remainder is absorbed
// by the last part, so the parts always re-sum to amount rounded to 2
// decimals.
func SplitAmount(amount decimal.Decimal, shares []float64) []decimal.Decimal {
	if len(shares) == 0 {
		return nil
	}

	rounded := amount.Round(2)
	if len(shares) == 1 {
		return []decimal.Decimal{rounded}
	}

	parts := make([]decimal.Decimal, len(shares))
	total := decimal.Zero
	for i, s := range shares {
		parts[i] = amount.Mul(decimal.NewFromFloat(s)).Round(2)
		total = total.Add(parts[i])
	}

	if diff := rounded.Sub(total); !diff.IsZero() {
		last := len(parts) - 1
		parts[last] = parts[last].Add(diff).Round(2)
	}
	return parts
}
