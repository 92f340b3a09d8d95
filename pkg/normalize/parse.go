package normalize

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// MaxCount is the largest room count the form accepts. Larger values are
// clamped so they survive the float64 round trip in the calculator.
const MaxCount = 1 << 53

// MaxAmount caps revenue so a pasted exponent cannot blow up the rendered
// text.
var MaxAmount = decimal.New(1, 15)

const (
	maxAmountFloat = 1e15
	// minAmount is far below anything that survives two-place rounding.
	minAmount = 1e-12
)

// ParseNumber reads the longest numeric prefix of s after leading
// whitespace, the way a browser's parseFloat does: "12abc" is 12, "1e3" is
// 1000, ".5" is 0.5. It returns NaN when s has no numeric prefix.
func ParseNumber(s string) float64 {
	lit := numericPrefix(s)
	if lit == "" {
		return math.NaN()
	}
	// ParseFloat still yields ±Inf for out-of-range literals.
	v, _ := strconv.ParseFloat(lit, 64)
	return v
}

// ParseCount reads s as a room count. The fractional part is discarded
// (truncation, not rounding); malformed, negative and non-finite text reads
// as 0, and values above MaxCount are capped.
func ParseCount(s string) int64 {
	v := ParseNumber(s)
	switch {
	case math.IsNaN(v), math.IsInf(v, 0), v <= 0:
		return 0
	case v >= MaxCount:
		return MaxCount
	}
	return int64(math.Trunc(v))
}

// ParseAmount reads s as a revenue amount without rounding it. Malformed,
// negative and non-finite text reads as zero; amounts above MaxAmount are
// capped.
func ParseAmount(s string) decimal.Decimal {
	lit := numericPrefix(s)
	if lit == "" {
		return decimal.Zero
	}
	// Gate on the float reading first so extreme exponents never reach the
	// arbitrary-precision parser.
	v, _ := strconv.ParseFloat(lit, 64)
	switch {
	case math.IsNaN(v), math.IsInf(v, 0), v <= minAmount:
		return decimal.Zero
	case v >= maxAmountFloat:
		return MaxAmount
	}
	d, err := decimal.NewFromString(canonicalDecimal(lit))
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	if d.GreaterThan(MaxAmount) {
		return MaxAmount
	}
	return d
}

// numericPrefix returns the longest prefix of s (after leading whitespace)
// that forms a decimal literal, or "".
func numericPrefix(s string) string {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)

	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	if strings.HasPrefix(s[i:], "Infinity") {
		return s[:i+len("Infinity")]
	}

	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		j := i + 1
		frac := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			frac++
		}
		if digits+frac > 0 {
			i = j
			digits += frac
		}
	}
	if digits == 0 {
		return ""
	}

	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && isDigit(s[k]) {
			k++
		}
		if k > j {
			i = k
		}
	}
	return s[:i]
}

// canonicalDecimal rewrites the literal forms parseFloat accepts but a
// strict decimal parser may not: "+5", ".5", "5.".
func canonicalDecimal(lit string) string {
	sign := ""
	switch {
	case strings.HasPrefix(lit, "+"):
		lit = lit[1:]
	case strings.HasPrefix(lit, "-"):
		sign, lit = "-", lit[1:]
	}
	if strings.HasPrefix(lit, ".") {
		lit = "0" + lit
	}
	if i := strings.IndexAny(lit, "eE"); i >= 0 {
		lit = strings.TrimSuffix(lit[:i], ".") + lit[i:]
	} else {
		lit = strings.TrimSuffix(lit, ".")
	}
	return sign + lit
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
