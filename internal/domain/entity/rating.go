package entity

import "github.com/shopspring/decimal"

const (
	MinRating = 1
	MaxRating = 5
)

// IsValidRating reports whether r is on the 1..5 scale.
func IsValidRating(r int) bool {
	return r >= MinRating && r <= MaxRating
}

// AggregateRatings returns the mean of ratings rounded half up to one decimal and
// the number of ratings. An empty input yields 0 and 0.
func AggregateRatings(ratings []int) (mean float64, count int) {
	if len(ratings) == 0 {
		return 0, 0
	}

	var sum int64
	for _, r := range ratings {
		sum += int64(r)
	}

	avg := decimal.NewFromInt(sum).
		Div(decimal.NewFromInt(int64(len(ratings)))).
		Round(1)

	return avg.InexactFloat64(), len(ratings)
}
