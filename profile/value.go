package profile

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Stringify converts a primitive profile value to the string form used for
// comparison. nil becomes "", numbers use their shortest decimal form so that
// 100, 100.0 and "100" compare equal. Magnitudes of 1e21 and above, or below
// 1e-6, switch to exponent notation (1e+21, 1e-7).
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		if err != nil {
			return t.String()
		}
		return formatDecimal(d)
	case decimal.Decimal:
		return formatDecimal(t)
	case float64:
		return formatDecimal(decimal.NewFromFloat(t))
	case float32:
		return formatDecimal(decimal.NewFromFloat32(t))
	case int:
		return strconv.Itoa(t)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint:
		return strconv.FormatUint(uint64(t), 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case fmt.Stringer:
		return t.String()
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

// Plain notation is used while the decimal point sits within 21 digits of
// the leading digit, and no more than six places in front of it.
const (
	maxPlainPoint = 21
	minPlainPoint = -6
)

// formatDecimal never expands the exponent, so the output stays proportional
// to the digits that were submitted.
func formatDecimal(d decimal.Decimal) string {
	if d.IsZero() {
		return "0"
	}
	// point is n in 10^(n-1) <= |d| < 10^n
	point := d.NumDigits() + int(d.Exponent())
	if point > minPlainPoint && point <= maxPlainPoint {
		return d.String()
	}

	digits := strings.TrimRight(d.Coefficient().String(), "0")
	var b strings.Builder
	if digits[0] == '-' {
		b.WriteByte('-')
		digits = digits[1:]
	}
	b.WriteByte(digits[0])
	if len(digits) > 1 {
		b.WriteByte('.')
		b.WriteString(digits[1:])
	}
	b.WriteByte('e')
	if point-1 > 0 {
		b.WriteByte('+')
	}
	b.WriteString(strconv.Itoa(point - 1))
	return b.String()
}

// IsBlank reports whether a proposed value counts as "not provided".
func IsBlank(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return s == ""
	}
	return false
}
