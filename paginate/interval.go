package paginate

import (
	"math/big"

	"github.com/google/uuid"
)

// uuidSpaceSize is 2^128, the number of values in the UUID space. UUIDs
// are 128-bit identifiers, so the minimum value as a natural number is 0
// and the maximum is 2^128-1.
var uuidSpaceSize = new(big.Int).Lsh(big.NewInt(1), 128)

// uuidSplitPoints returns k-1 cut points splitting the full UUID space
// into k equal-width intervals, smallest first, rendered in the canonical
// textual form. Uniformly distributed UUID keys make each interval hold
// roughly the same number of rows.
func uuidSplitPoints(k int) []string {
	points := make([]string, 0, k-1)
	for i := 1; i < k; i++ {
		v := new(big.Int).Mul(uuidSpaceSize, big.NewInt(int64(i)))
		v.Div(v, big.NewInt(int64(k)))
		var u uuid.UUID
		v.FillBytes(u[:])
		points = append(points, u.String())
	}
	return points
}

// intSplitPoints returns up to k-1 strictly increasing cut points chosen
// from a property's quantile list, splitting its domain into intervals of
// approximately equal cardinality. Duplicate quantile values collapse, so
// fewer than k-1 points may come back; none come back when the quantiles
// carry no positional information at all.
func intSplitPoints(quantiles []int64, k int) []int64 {
	n := len(quantiles) - 1
	if n < 1 {
		return nil
	}
	points := make([]int64, 0, k-1)
	for i := 1; i < k; i++ {
		p := quantiles[i*n/k]
		// Skip the domain minimum and repeats: both would make a chunk
		// provably empty.
		if p == quantiles[0] {
			continue
		}
		if len(points) > 0 && p <= points[len(points)-1] {
			continue
		}
		points = append(points, p)
	}
	return points
}
