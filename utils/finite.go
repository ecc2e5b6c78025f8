package utils

import "math"

// Finite は全ての値が NaN/Inf でない場合に true を返します。
func Finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
