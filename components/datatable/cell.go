package datatable

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Value evaluates the accessor. A panicking accessor yields (nil, false).
func (c Column[R]) Value(row R) (value any, ok bool) {
	if c.Accessor == nil {
		return nil, false
	}
	defer func() {
		if recover() != nil {
			value, ok = nil, false
		}
	}()
	return c.Accessor(row), true
}

// Render returns the display string of the cell, or "" when the accessor fails.
func (c Column[R]) Render(row R) string {
	value, ok := c.Value(row)
	if !ok {
		return ""
	}
	if c.Format != nil {
		return safeFormat(c.Format, value)
	}
	return Stringify(value)
}

func safeFormat(format func(any) string, value any) (out string) {
	defer func() {
		if recover() != nil {
			out = ""
		}
	}()
	return format(value)
}

// Stringify renders a cell value the way filters, exports and plain views see it.
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case time.Time:
		if val.IsZero() {
			return ""
		}
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 && val.Nanosecond() == 0 {
			return val.Format(time.DateOnly)
		}
		return val.Format(time.RFC3339)
	case *time.Time:
		if val == nil {
			return ""
		}
		return Stringify(*val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(val)
	case error:
		return val.Error()
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

func numeric(v any) (float64, bool) {
	switch val := v.(type) {
	case int:
		return float64(val), true
	case int8:
		return float64(val), true
	case int16:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint8:
		return float64(val), true
	case uint16:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint64:
		return float64(val), true
	case float32:
		return float64(val), true
	case float64:
		return val, true
	default:
		return 0, false
	}
}

// Value kinds in sort order. Values of different kinds never compare by content.
const (
	kindNil = iota
	kindNumber
	kindTime
	kindBool
	kindText
)

func valueKind(v any) int {
	if v == nil {
		return kindNil
	}
	if _, ok := numeric(v); ok {
		return kindNumber
	}
	switch v.(type) {
	case time.Time:
		return kindTime
	case bool:
		return kindBool
	default:
		return kindText
	}
}

// compareValues orders two cell values: missing first, then numbers, times, bools and
// text. Within a kind numbers and times compare by value and text case-insensitively.
func compareValues(a, b any) int {
	ka, kb := valueKind(a), valueKind(b)
	if ka != kb {
		return cmp.Compare(ka, kb)
	}
	switch ka {
	case kindNil:
		return 0
	case kindNumber:
		an, _ := numeric(a)
		bn, _ := numeric(b)
		return cmp.Compare(an, bn)
	case kindTime:
		return a.(time.Time).Compare(b.(time.Time))
	case kindBool:
		ab, bb := a.(bool), b.(bool)
		switch {
		case ab == bb:
			return 0
		case !ab:
			return -1
		default:
			return 1
		}
	}
	return strings.Compare(strings.ToLower(Stringify(a)), strings.ToLower(Stringify(b)))
}
