package field

import (
	"fmt"
	"strconv"
	"strings"
)

// Format renders a field's value for diagnostics. When escapeCtrl is
// set, control characters below 0x20 and 0x7f are mapped to their
// short escapes (\f \t \n \r) or \uXXXX. When quote is set, the result
// is wrapped in ASCII double-quotes with embedded quotes escaped.
func (f *Field) Format(quote, escapeCtrl bool) (printed string, typeName string, err error) {
	v, err := f.Value()
	if err != nil {
		return "", f.typ.String(), err
	}

	raw := formatValue(v)
	if escapeCtrl {
		raw = escapeControl(raw)
	}
	if quote {
		raw = `"` + strings.ReplaceAll(raw, `"`, `\"`) + `"`
	}
	return raw, f.typ.String(), nil
}

func formatValue(v interface{}) string {
	switch x := v.(type) {
	case int64:
		return strconv.FormatInt(x, 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case string:
		return x
	case []byte:
		return string(x)
	case []*Field:
		parts := make([]string, len(x))
		for i, sub := range x {
			printed, _, _ := sub.Format(false, false)
			parts[i] = printed
		}
		return "[" + strings.Join(parts, ",") + "]"
	default:
		return fmt.Sprintf("%v", x)
	}
}

func escapeControl(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\f':
			b.WriteString(`\f`)
		case '\t':
			b.WriteString(`\t`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\u%04x`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}
