package share

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sumShares(shares []float64) float64 {
	var s float64
	for _, v := range shares {
		s += v
	}
	return s
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		weights []float64
		want    []float64
	}{
		{
			name:    "proportional weights",
			weights: []float64{1, 3},
			want:    []float64{0.25, 0.75},
		},
		{
			name:    "equal weights",
			weights: []float64{50, 50},
			want:    []float64{0.5, 0.5},
		},
		{
			name:    "negative weight excluded",
			weights: []float64{-5, 1, 1},
			want:    []float64{0, 0.5, 0.5},
		},
		{
			name:    "all zero falls back to equal split",
			weights: []float64{0, 0, 0},
			want:    []float64{1.0 / 3, 1.0 / 3, 1.0 / 3},
		},
		{
			name:    "all negative falls back to equal split",
			weights: []float64{-1, -2},
			want:    []float64{0.5, 0.5},
		},
		{
			name:    "empty list is a single payer",
			weights: nil,
			want:    []float64{1},
		},
		{
			name:    "NaN and Inf treated as zero",
			weights: []float64{math.NaN(), math.Inf(1), 2},
			want:    []float64{0, 0, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.weights)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.InDelta(t, tt.want[i], got[i], 1e-9)
			}
			assert.InDelta(t, 1.0, sumShares(got), 1e-9)
		})
	}
}

func TestHasPositive(t *testing.T) {
	assert.True(t, HasPositive([]float64{0, 0.1}))
	assert.False(t, HasPositive([]float64{0, -1}))
	assert.False(t, HasPositive([]float64{math.NaN(), math.Inf(1)}))
	assert.False(t, HasPositive(nil))
}

func TestSplitAmount(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		shares []float64
		want   []string
	}{
		{
			name:   "remainder goes to the last share",
			amount: "100.00",
			shares: Normalize([]float64{1, 1, 1}),
			want:   []string{"33.33", "33.33", "33.34"},
		},
		{
			name:   "single payer is a no-op",
			amount: "123.456",
			shares: []float64{1},
			want:   []string{"123.46"},
		},
		{
			name:   "uneven shares",
			amount: "200.00",
			shares: Normalize([]float64{2, 1}),
			want:   []string{"133.33", "66.67"},
		},
		{
			name:   "zero amount",
			amount: "0",
			shares: Normalize([]float64{1, 1}),
			want:   []string{"0", "0"},
		},
		{
			name:   "cent-sized amount",
			amount: "0.01",
			shares: Normalize([]float64{1, 1, 1}),
			want:   []string{"0", "0", "0.01"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount := decimal.RequireFromString(tt.amount)
			got := SplitAmount(amount, tt.shares)
			require.Len(t, got, len(tt.want))

			total := decimal.Zero
			for i, w := range tt.want {
				assert.True(t, decimal.RequireFromString(w).Equal(got[i]),
					"part %d: want %s got %s", i, w, got[i])
				total = total.Add(got[i])
			}
			assert.True(t, amount.Round(2).Equal(total),
				"parts must re-sum to the rounded amount, got %s", total)
		})
	}
}

func TestSplitAmountReconstructsOriginal(t *testing.T) {
	amounts := []string{"250.00", "99.99", "1000.01", "0.05", "333.33"}
	weightLists := [][]float64{
		{1, 1},
		{1, 1, 1},
		{7, 2, 1},
		{0.6, 0.4},
		{5, 5, 5, 5, 5, 5, 5},
	}

	for _, a := range amounts {
		for _, w := range weightLists {
			amount := decimal.RequireFromString(a)
			parts := SplitAmount(amount, Normalize(w))

			total := decimal.Zero
			for _, p := range parts {
				total = total.Add(p)
			}
			assert.True(t, amount.Round(2).Equal(total),
				"amount %s weights %v: parts sum to %s", a, w, total)
		}
	}
}
