// api/schemas/common.go
package schemas

import (
	"fmt"
	"math"
	"strconv"
)

// Stringify converts a decoded JSON scalar into its wire-ish string form.
// Integral floats render without a decimal point, matching how analytics
// payloads usually carry numeric IDs.
func Stringify(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1e15 {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'g', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}

// IsScalar reports whether a decoded JSON value is a directly capturable
// scalar (string, number, or boolean).
func IsScalar(v interface{}) bool {
	switch v.(type) {
	case string, bool, float64, int, int64:
		return true
	}
	return false
}
