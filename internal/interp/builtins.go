package interp

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// currencySymbols maps ISO currency codes to display symbols. Unknown codes
// fall back to the code itself, unseparated, so nothing is ever dropped.
var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"CNY": "¥",
	"KRW": "₩",
	"INR": "₹",
	"RUB": "₽",
	"BRL": "R$",
	"CAD": "CA$",
	"AUD": "A$",
	"MXN": "MX$",
	"CHF": "CHF ",
	"SEK": "kr ",
	"NOK": "kr ",
	"DKK": "kr ",
	"PLN": "zł ",
}

// dateTokens translate the template-facing date format into a Go layout.
// Longest tokens first so MM never matches inside MMM.
var dateTokens = []struct{ token, layout string }{
	{"YYYY", "2006"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"dddd", "Monday"},
	{"ddd", "Mon"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"HH", "15"},
	{"hh", "03"},
	{"mm", "04"},
	{"ss", "05"},
	{"D", "2"},
	{"A", "PM"},
	{"a", "pm"},
}

func registerBuiltins(r *Registry) {
	r.Register("formatDate", helperFormatDate)
	r.Register("formatCurrency", helperFormatCurrency)
	r.Register("upper", func(args []interface{}) interface{} {
		return strings.ToUpper(Stringify(arg(args, 0)))
	})
	r.Register("lower", func(args []interface{}) interface{} {
		return strings.ToLower(Stringify(arg(args, 0)))
	})
	r.Register("capitalize", func(args []interface{}) interface{} {
		s := Stringify(arg(args, 0))
		if s == "" {
			return ""
		}
		runes := []rune(strings.ToLower(s))
		runes[0] = unicode.ToUpper(runes[0])
		return string(runes)
	})
	r.Register("truncate", helperTruncate)
	r.Register("default", func(args []interface{}) interface{} {
		v := arg(args, 0)
		if v == nil || Stringify(v) == "" {
			return arg(args, 1)
		}
		return v
	})
	r.Register("join", helperJoin)
	r.Register("length", helperLength)
	r.Register("add", arith(func(a, b float64) float64 { return a + b }))
	r.Register("subtract", arith(func(a, b float64) float64 { return a - b }))
	r.Register("multiply", arith(func(a, b float64) float64 { return a * b }))
	r.Register("divide", func(args []interface{}) interface{} {
		b := ToFloat(arg(args, 1))
		if b == 0 {
			// Division by zero degrades to 0, never an error or infinity.
			return float64(0)
		}
		return ToFloat(arg(args, 0)) / b
	})
	r.Register("eq", func(args []interface{}) interface{} { return looseEqual(arg(args, 0), arg(args, 1)) })
	r.Register("ne", func(args []interface{}) interface{} { return !looseEqual(arg(args, 0), arg(args, 1)) })
	r.Register("gt", compare(func(a, b float64) bool { return a > b }))
	r.Register("lt", compare(func(a, b float64) bool { return a < b }))
	r.Register("gte", compare(func(a, b float64) bool { return a >= b }))
	r.Register("lte", compare(func(a, b float64) bool { return a <= b }))
	r.Register("and", func(args []interface{}) interface{} {
		for _, a := range args {
			if !Truthy(a) {
				return false
			}
		}
		return true
	})
	r.Register("or", func(args []interface{}) interface{} {
		for _, a := range args {
			if Truthy(a) {
				return true
			}
		}
		return false
	})
	r.Register("not", func(args []interface{}) interface{} { return !Truthy(arg(args, 0)) })
}

func arg(args []interface{}, i int) interface{} {
	if i < len(args) {
		return args[i]
	}
	return nil
}

func arith(op func(a, b float64) float64) Helper {
	return func(args []interface{}) interface{} {
		return op(ToFloat(arg(args, 0)), ToFloat(arg(args, 1)))
	}
}

func compare(op func(a, b float64) bool) Helper {
	return func(args []interface{}) interface{} {
		return op(ToFloat(arg(args, 0)), ToFloat(arg(args, 1)))
	}
}

func looseEqual(a, b interface{}) bool {
	af, aok := toFloatStrict(a)
	bf, bok := toFloatStrict(b)
	if aok && bok {
		return af == bf
	}
	return Stringify(a) == Stringify(b)
}

func helperFormatDate(args []interface{}) interface{} {
	t, ok := toTime(arg(args, 0))
	if !ok {
		return Stringify(arg(args, 0))
	}
	format := "YYYY-MM-DD"
	if f := Stringify(arg(args, 1)); f != "" {
		format = f
	}
	return t.Format(dateLayout(format))
}

func dateLayout(format string) string {
	var b strings.Builder
	for i := 0; i < len(format); {
		matched := false
		for _, dt := range dateTokens {
			if strings.HasPrefix(format[i:], dt.token) {
				b.WriteString(dt.layout)
				i += len(dt.token)
				matched = true
				break
			}
		}
		if !matched {
			b.WriteByte(format[i])
			i++
		}
	}
	return b.String()
}

func toTime(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed, true
			}
		}
		return time.Time{}, false
	case float64, int, int64:
		epoch := int64(ToFloat(v))
		if epoch > 1e12 { // treat as milliseconds
			return time.UnixMilli(epoch).UTC(), true
		}
		return time.Unix(epoch, 0).UTC(), true
	default:
		return time.Time{}, false
	}
}

func helperFormatCurrency(args []interface{}) interface{} {
	value := ToFloat(arg(args, 0))
	code := Stringify(arg(args, 1))
	if code == "" {
		code = "USD"
	}
	sign := ""
	if value < 0 {
		sign = "-"
		value = -value
	}
	symbol, known := currencySymbols[code]
	if !known {
		return sign + code + strconv.FormatFloat(value, 'f', 2, 64)
	}
	return sign + symbol + groupThousands(strconv.FormatFloat(value, 'f', 2, 64))
}

// groupThousands inserts comma separators into the integer part of a plain
// two-decimal number string.
func groupThousands(s string) string {
	intPart, fracPart, _ := strings.Cut(s, ".")
	if len(intPart) <= 3 {
		return intPart + "." + fracPart
	}
	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	return b.String() + "." + fracPart
}

func helperTruncate(args []interface{}) interface{} {
	s := Stringify(arg(args, 0))
	length := 100
	if n, ok := toFloatStrict(arg(args, 1)); ok && n > 0 {
		length = int(n)
	}
	runes := []rune(s)
	if len(runes) <= length {
		return s
	}
	return string(runes[:length]) + "..."
}

func helperJoin(args []interface{}) interface{} {
	sep := ", "
	if len(args) > 1 {
		sep = Stringify(args[1])
	}
	switch list := arg(args, 0).(type) {
	case []interface{}:
		parts := make([]string, len(list))
		for i, e := range list {
			parts[i] = Stringify(e)
		}
		return strings.Join(parts, sep)
	case []string:
		return strings.Join(list, sep)
	default:
		return Stringify(list)
	}
}

func helperLength(args []interface{}) interface{} {
	switch v := arg(args, 0).(type) {
	case string:
		return float64(len([]rune(v)))
	case []interface{}:
		return float64(len(v))
	case []string:
		return float64(len(v))
	case map[string]interface{}:
		return float64(len(v))
	default:
		return float64(0)
	}
}

// Truthy follows loose truthiness: nil, false, zero and the empty string
// are false, everything else is true.
func Truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	case int:
		return t != 0
	case int64:
		return t != 0
	case []interface{}:
		return len(t) > 0
	default:
		return true
	}
}

// ToFloat coerces v to a float64, yielding 0 for anything non-numeric.
func ToFloat(v interface{}) float64 {
	f, _ := toFloatStrict(v)
	return f
}

func toFloatStrict(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return f, true
		}
		return 0, false
	default:
		return 0, false
	}
}

// Stringify renders an evaluated value as template output text.
func Stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case []interface{}:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = Stringify(e)
		}
		return strings.Join(parts, ", ")
	case time.Time:
		return t.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", t)
	}
}
