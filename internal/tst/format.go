package tst

import (
	"fmt"
	"strconv"
	"strings"
)

// Format renders args into a boost::format style format string.
//
// Supported items:
//
//	%N%        argument N (1-based), printed with %v
//	%N$spec    argument N with a printf spec, e.g. %2$5.1f
//	%spec      the next argument with a printf spec, e.g. %s, %-8d, %.3f
//	%%         a literal percent sign
//
// The conversion letter is advisory, as in boost: %s prints anything and
// integer or float letters fall back to %v for arguments of other kinds.
// Missing arguments render as %!N(MISSING); arguments past the highest
// referenced position are appended as %!(EXTRA type=value, ...).
func Format(format string, args ...any) string {
	var out strings.Builder
	next := 0    // next sequential argument, 0-based
	highest := 0 // highest referenced position, 1-based

	for i := 0; i < len(format); {
		ch := format[i]
		if ch != '%' {
			out.WriteByte(ch)
			i++
			continue
		}
		if i+1 < len(format) && format[i+1] == '%' {
			out.WriteByte('%')
			i += 2
			continue
		}

		item, n := parseItem(format[i+1:])
		if n == 0 {
			// Not an item; keep the text as written.
			out.WriteByte('%')
			i++
			continue
		}
		i += 1 + n

		pos := item.position
		if pos == 0 {
			next++
			pos = next
		}
		if pos > highest {
			highest = pos
		}
		if pos > len(args) {
			fmt.Fprintf(&out, "%%!%d(MISSING)", pos)
			continue
		}
		out.WriteString(item.render(args[pos-1]))
	}

	if highest < len(args) {
		extra := make([]string, 0, len(args)-highest)
		for _, a := range args[highest:] {
			if a == nil {
				extra = append(extra, "<nil>")
				continue
			}
			extra = append(extra, fmt.Sprintf("%T=%v", a, a))
		}
		fmt.Fprintf(&out, "%%!(EXTRA %s)", strings.Join(extra, ", "))
	}
	return out.String()
}

// formatItem is one parsed directive.
type formatItem struct {
	position int    // 1-based explicit position, 0 for sequential
	spec     string // flags, width and precision, without the leading %
	verb     byte   // 0 for %N%
}

// parseItem parses the directive following a '%'. It returns the number of
// bytes consumed, 0 when s does not start with a directive.
func parseItem(s string) (formatItem, int) {
	var item formatItem
	i := 0

	digits := 0
	for i+digits < len(s) && isDigit(s[i+digits]) {
		digits++
	}
	if digits > 0 && i+digits < len(s) {
		switch s[i+digits] {
		case '%':
			n, _ := strconv.Atoi(s[:digits])
			if n == 0 {
				return item, 0
			}
			item.position = n
			return item, digits + 1
		case '$':
			n, _ := strconv.Atoi(s[:digits])
			if n == 0 {
				return item, 0
			}
			item.position = n
			i = digits + 1
		}
	}

	start := i
	for i < len(s) && strings.IndexByte("-+ #0", s[i]) >= 0 {
		i++
	}
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
		}
	}
	if i >= len(s) || strings.IndexByte("sSdiuxXoeEfgGcv", s[i]) < 0 {
		return formatItem{}, 0
	}
	item.spec = s[start:i]
	item.verb = s[i]
	return item, i + 1
}

func (it formatItem) render(arg any) string {
	if it.verb == 0 {
		return fmt.Sprint(arg)
	}
	verb := it.verb
	switch verb {
	case 's', 'S':
		verb = 'v'
	case 'i', 'u':
		verb = 'd'
	}
	switch verb {
	case 'd', 'x', 'X', 'o', 'c':
		if !isInteger(arg) {
			verb = 'v'
		}
	case 'e', 'E', 'f', 'g', 'G':
		if !isFloat(arg) {
			verb = 'v'
		}
	}
	return fmt.Sprintf("%"+it.spec+string(verb), arg)
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isInteger(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, uintptr:
		return true
	}
	return false
}

func isFloat(v any) bool {
	switch v.(type) {
	case float32, float64:
		return true
	}
	return false
}
