// Package respond renders stat_requests answers into the output
// document: a JSON array, one element per request, each typed by which
// query it answers.
package respond

import (
	"math"
	"strconv"
)

// Number marshals as a bare integer when its value is whole, and as a
// 9-significant-digit decimal otherwise. This is presentation only and
// must never feed back into routing arithmetic, which always uses plain
// float64.
type Number float64

// MarshalJSON implements json.Marshaler.
func (n Number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if !math.IsInf(f, 0) && !math.IsNaN(f) && f == math.Trunc(f) {
		return []byte(strconv.FormatFloat(f, 'f', 0, 64)), nil
	}
	return []byte(strconv.FormatFloat(f, 'g', 9, 64)), nil
}
