package dpi

import (
	"strconv"
	"strings"

	"github.com/sentrywaf/engine/pkg/field"
	"github.com/sentrywaf/engine/pkg/types"
)

// ExpandStr scans template left to right, replacing each %{NAME} or
// %{NAME:subfield} reference with the referenced field's rendered
// value. A literal '%' not followed by '{' is copied verbatim. A
// reference to an absent name expands to empty string; absence is not
// an error. Templates with no references are returned unchanged.
func (d *DPI) ExpandStr(template string) (string, error) {
	var out strings.Builder
	i := 0
	for i < len(template) {
		c := template[i]
		if c != '%' {
			out.WriteByte(c)
			i++
			continue
		}
		if i+1 >= len(template) || template[i+1] != '{' {
			out.WriteByte(c)
			i++
			continue
		}
		end := strings.IndexByte(template[i+2:], '}')
		if end < 0 {
			// Unterminated reference: copy the rest verbatim, as a
			// literal '%' would be.
			out.WriteString(template[i:])
			break
		}
		ref := template[i+2 : i+2+end]
		rendered, err := d.renderRef(ref)
		if err != nil {
			return "", err
		}
		out.WriteString(rendered)
		i = i + 2 + end + 1
	}
	return out.String(), nil
}

func (d *DPI) renderRef(ref string) (string, error) {
	name := ref
	subfield := ""
	if idx := strings.IndexByte(ref, ':'); idx >= 0 {
		name = ref[:idx]
		subfield = ref[idx+1:]
	}

	f, err := d.Get(name)
	if err != nil {
		return "", err
	}
	if f == nil {
		return "", nil
	}

	switch f.Type() {
	case types.FieldTypeNum:
		v, err := f.ValueEx(subfield)
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(v.(int64), 10), nil
	case types.FieldTypeUnum:
		v, err := f.ValueEx(subfield)
		if err != nil {
			return "", err
		}
		return strconv.FormatUint(v.(uint64), 10), nil
	case types.FieldTypeFloat:
		v, err := f.ValueEx(subfield)
		if err != nil {
			return "", err
		}
		return strconv.FormatFloat(v.(float64), 'g', -1, 64), nil
	case types.FieldTypeByteStr:
		v, err := f.ValueEx(subfield)
		if err != nil {
			return "", err
		}
		if b, ok := v.([]byte); ok {
			return string(b), nil
		}
		return v.(string), nil
	case types.FieldTypeNulStr:
		v, err := f.ValueEx(subfield)
		if err != nil {
			return "", err
		}
		return v.(string), nil
	case types.FieldTypeList:
		if subfield != "" {
			v, err := f.ValueEx(subfield)
			if err != nil {
				return "", err
			}
			return renderScalar(v), nil
		}
		// No qualifier: implementation-defined compact diagnostic form.
		v, err := f.Value()
		if err != nil {
			return "", err
		}
		list, _ := v.([]*field.Field)
		parts := make([]string, len(list))
		for i, sub := range list {
			printed, _, _ := sub.Format(false, false)
			parts[i] = printed
		}
		return "[" + strings.Join(parts, ",") + "]", nil
	default:
		v, err := f.ValueEx(subfield)
		if err != nil {
			return "", err
		}
		return renderScalar(v), nil
	}
}

func renderScalar(v interface{}) string {
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
	default:
		return ""
	}
}

// ExpandTestStr reports whether template contains at least one
// syntactically well-formed %{...} reference. Used at rule-load time
// to precompute expansion flags instead of re-scanning on every
// execution.
func ExpandTestStr(template string) bool {
	i := 0
	for i < len(template) {
		if template[i] == '%' && i+1 < len(template) && template[i+1] == '{' {
			if strings.IndexByte(template[i+2:], '}') >= 0 {
				return true
			}
		}
		i++
	}
	return false
}
