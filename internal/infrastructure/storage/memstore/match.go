package memstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"millerp/internal/domain/filter"
)

func decodeTree(raw []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// lookup resolves a dotted path through nested objects.
// Returns nil when any step is missing or not an object.
func lookup(doc map[string]any, path string) any {
	var cur any = doc
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		if cur, ok = m[part]; !ok {
			return nil
		}
	}
	return cur
}

// Match evaluates where against a decoded document. A nil Expr matches everything.
func Match(doc map[string]any, where filter.Expr) (bool, error) {
	switch e := where.(type) {
	case nil:
		return true, nil
	case filter.And:
		for _, child := range e {
			ok, err := Match(doc, child)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	case filter.Or:
		for _, child := range e {
			ok, err := Match(doc, child)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	case filter.ElemMatch:
		elems, _ := lookup(doc, e.Field).([]any)
		for _, elem := range elems {
			m, ok := elem.(map[string]any)
			if !ok {
				continue
			}
			matched, err := Match(m, e.Cond)
			if err != nil {
				return false, err
			}
			if matched {
				return true, nil
			}
		}
		return false, nil
	case filter.Item:
		return matchItem(lookup(doc, e.Field), e)
	default:
		return false, fmt.Errorf("unsupported filter expression %T", where)
	}
}

func matchItem(actual any, item filter.Item) (bool, error) {
	switch item.Operator {
	case filter.Equal:
		return equalValues(actual, item.Value), nil
	case filter.NotEqual:
		return !equalValues(actual, item.Value), nil
	case filter.InList:
		values, ok := item.Value.([]any)
		if !ok {
			return false, fmt.Errorf("filter %s: in expects a list, got %T", item.Field, item.Value)
		}
		for _, v := range values {
			if equalValues(actual, v) {
				return true, nil
			}
		}
		return false, nil
	case filter.ContainsText:
		s, ok := actual.(string)
		if !ok {
			return false, nil
		}
		return strings.Contains(strings.ToLower(s), strings.ToLower(fmt.Sprint(item.Value))), nil
	case filter.Less, filter.Greater, filter.LessOrEqual, filter.GreaterOrEqual:
		cmp, ok := compareTo(actual, item.Value)
		if !ok {
			return false, nil
		}
		switch item.Operator {
		case filter.Less:
			return cmp < 0, nil
		case filter.Greater:
			return cmp > 0, nil
		case filter.LessOrEqual:
			return cmp <= 0, nil
		default:
			return cmp >= 0, nil
		}
	default:
		return false, fmt.Errorf("filter %s: unsupported operator %q", item.Field, item.Operator)
	}
}

func equalValues(actual, expected any) bool {
	if expected == nil {
		return actual == nil
	}
	cmp, ok := compareTo(actual, expected)
	return ok && cmp == 0
}

// compareTo compares a decoded JSON value with a Go filter value.
// The Go type of expected decides how actual is interpreted.
func compareTo(actual, expected any) (int, bool) {
	if actual == nil {
		return 0, false
	}
	switch v := expected.(type) {
	case time.Time:
		t, ok := asTime(actual)
		if !ok {
			return 0, false
		}
		return t.Compare(v), true
	case bool:
		b, ok := actual.(bool)
		if !ok {
			return 0, false
		}
		switch {
		case b == v:
			return 0, true
		case !b:
			return -1, true
		default:
			return 1, true
		}
	case uuid.UUID:
		s, ok := actual.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(strings.ToLower(s), v.String()), true
	case string:
		s, ok := actual.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(s, v), true
	case fmt.Stringer:
		if d, ok := expected.(decimal.Decimal); ok {
			a, ok := asDecimal(actual)
			if !ok {
				return 0, false
			}
			return a.Cmp(d), true
		}
		s, ok := actual.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(s, v.String()), true
	default:
		d, ok := asDecimal(expected)
		if !ok {
			return 0, false
		}
		a, ok := asDecimal(actual)
		if !ok {
			return 0, false
		}
		return a.Cmp(d), true
	}
}

// compareValues orders two decoded JSON values for sorting. Missing values sort first.
func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	if ta, ok := asTime(a); ok {
		if tb, ok := asTime(b); ok {
			return ta.Compare(tb)
		}
	}
	if da, ok := asDecimal(a); ok {
		if db, ok := asDecimal(b); ok {
			return da.Cmp(db)
		}
	}
	if ba, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			cmp, _ := compareTo(ba, bb)
			return cmp
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		return parsed, err == nil
	}
	return time.Time{}, false
}

func asDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		return d, err == nil
	case string:
		d, err := decimal.NewFromString(n)
		return d, err == nil
	case decimal.Decimal:
		return n, true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int32:
		return decimal.NewFromInt32(n), true
	case int64:
		return decimal.NewFromInt(n), true
	case float64:
		return decimal.NewFromFloat(n), true
	case float32:
		return decimal.NewFromFloat32(n), true
	}
	return decimal.Decimal{}, false
}
