package docstore

import (
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"millerp/internal/domain"
	"millerp/internal/domain/filter"
)

// columns maps reserved document fields to table columns.
var columns = map[string]string{
	filter.FieldID:          "id",
	filter.FieldDeleted:     "deletion_mark",
	filter.FieldCreatedDate: "created_at",
	filter.FieldUpdatedDate: "updated_at",
}

// scope is the JSON source paths are resolved against: the row body or an
// array element alias inside ElemMatch.
type scope struct {
	source string
	root   bool
	depth  int
}

var rootScope = scope{source: "body", root: true}

// Compile translates a filter expression into a squirrel predicate over the body column.
// A nil Expr compiles to nil.
func Compile(where filter.Expr) (squirrel.Sqlizer, error) {
	if where == nil {
		return nil, nil
	}
	return compile(rootScope, where)
}

func compile(sc scope, where filter.Expr) (squirrel.Sqlizer, error) {
	switch e := where.(type) {
	case filter.And:
		out := make(squirrel.And, 0, len(e))
		for _, child := range e {
			part, err := compile(sc, child)
			if err != nil {
				return nil, err
			}
			out = append(out, part)
		}
		return out, nil
	case filter.Or:
		out := make(squirrel.Or, 0, len(e))
		for _, child := range e {
			part, err := compile(sc, child)
			if err != nil {
				return nil, err
			}
			out = append(out, part)
		}
		return out, nil
	case filter.ElemMatch:
		return compileElemMatch(sc, e)
	case filter.Item:
		return compileItem(sc, e)
	default:
		return nil, fmt.Errorf("unsupported filter expression %T", where)
	}
}

func compileElemMatch(sc scope, e filter.ElemMatch) (squirrel.Sqlizer, error) {
	array, err := jsonPath(sc, e.Field, "#>")
	if err != nil {
		return nil, err
	}

	inner := scope{depth: sc.depth + 1}
	alias := fmt.Sprintf("e%d", inner.depth)
	inner.source = alias + ".value"

	cond, err := compile(inner, e.Cond)
	if err != nil {
		return nil, err
	}
	condSQL, args, err := cond.ToSql()
	if err != nil {
		return nil, err
	}

	sql := fmt.Sprintf(
		"EXISTS (SELECT 1 FROM jsonb_array_elements(CASE WHEN jsonb_typeof(%[1]s) = 'array' THEN %[1]s ELSE '[]'::jsonb END) AS %[2]s WHERE %[3]s)",
		array, alias, condSQL,
	)
	return squirrel.Expr(sql, args...), nil
}

func compileItem(sc scope, item filter.Item) (squirrel.Sqlizer, error) {
	switch item.Operator {
	case filter.ContainsText:
		lhs, err := jsonPath(sc, item.Field, "#>>")
		if err != nil {
			return nil, err
		}
		return squirrel.Expr(lhs+" ILIKE ?", "%"+escapeLike(fmt.Sprint(item.Value))+"%"), nil
	case filter.InList:
		values, ok := item.Value.([]any)
		if !ok {
			return nil, fmt.Errorf("filter %s: in expects a list, got %T", item.Field, item.Value)
		}
		if len(values) == 0 {
			return squirrel.Expr("1=0"), nil
		}
		lhs, cast, err := operand(sc, item.Field, values[0])
		if err != nil {
			return nil, err
		}
		placeholders := make([]string, len(values))
		args := make([]any, len(values))
		for i, v := range values {
			placeholders[i] = "?" + cast
			args[i] = argument(sc, item.Field, v)
		}
		return squirrel.Expr(lhs+" IN ("+strings.Join(placeholders, ", ")+")", args...), nil
	}

	if item.Value == nil {
		lhs, err := jsonPath(sc, item.Field, "#>>")
		if err != nil {
			return nil, err
		}
		switch item.Operator {
		case filter.Equal:
			return squirrel.Expr(lhs + " IS NULL"), nil
		case filter.NotEqual:
			return squirrel.Expr(lhs + " IS NOT NULL"), nil
		default:
			return nil, fmt.Errorf("filter %s: operator %q needs a value", item.Field, item.Operator)
		}
	}

	op, ok := sqlOperators[item.Operator]
	if !ok {
		return nil, fmt.Errorf("filter %s: unsupported operator %q", item.Field, item.Operator)
	}
	lhs, cast, err := operand(sc, item.Field, item.Value)
	if err != nil {
		return nil, err
	}
	arg := argument(sc, item.Field, item.Value)
	if item.Operator == filter.NotEqual {
		// missing fields count as not equal
		return squirrel.Expr(lhs+" IS DISTINCT FROM ?"+cast, arg), nil
	}
	return squirrel.Expr(lhs+" "+op+" ?"+cast, arg), nil
}

var sqlOperators = map[filter.ComparisonType]string{
	filter.Equal:          "=",
	filter.NotEqual:       "<>",
	filter.Less:           "<",
	filter.Greater:        ">",
	filter.LessOrEqual:    "<=",
	filter.GreaterOrEqual: ">=",
}

// operand returns the left-hand side for comparing field with value and the
// cast applied to the placeholder. The Go type of value selects the cast.
func operand(sc scope, field string, value any) (string, string, error) {
	if col, ok := column(sc, field); ok {
		if _, isText := value.(string); isText && col == "id" {
			return col + "::text", "", nil
		}
		return col, "", nil
	}

	text, err := jsonPath(sc, field, "#>>")
	if err != nil {
		return "", "", err
	}
	switch value.(type) {
	case time.Time:
		return "(" + text + ")::timestamptz", "::timestamptz", nil
	case bool:
		return "(" + text + ")::boolean", "::boolean", nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64, decimal.Decimal:
		return "(" + text + ")::numeric", "::numeric", nil
	default:
		return text, "", nil
	}
}

// argument converts value to what pgx binds for the operand built by operand.
func argument(sc scope, field string, value any) any {
	switch v := value.(type) {
	case uuid.UUID:
		if _, ok := column(sc, field); ok {
			return v
		}
		return v.String()
	case decimal.Decimal:
		return v.String()
	case time.Time:
		return v.UTC()
	default:
		return v
	}
}

func column(sc scope, field string) (string, bool) {
	if !sc.root {
		return "", false
	}
	col, ok := columns[field]
	return col, ok
}

// jsonPath renders field as a path expression over the scope's JSON source.
// op is "#>" (jsonb) or "#>>" (text).
func jsonPath(sc scope, field, op string) (string, error) {
	parts := strings.Split(field, ".")
	for _, p := range parts {
		if !validKey(p) {
			return "", fmt.Errorf("invalid field path %q", field)
		}
	}
	return fmt.Sprintf("%s %s '{%s}'", sc.source, op, strings.Join(parts, ",")), nil
}

func validKey(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// sortPath renders a body field for ORDER BY. Typed fields are cast from
// text, others order as jsonb values.
func sortPath(s domain.SortField) (string, error) {
	op := "#>"
	if s.Type != domain.SortAuto {
		op = "#>>"
	}
	path, err := jsonPath(rootScope, s.Field, op)
	if err != nil {
		return "", err
	}
	switch s.Type {
	case domain.SortTime:
		return "(" + path + ")::timestamptz", nil
	case domain.SortNumeric:
		return "(" + path + ")::numeric", nil
	}
	return path, nil
}

// orderBy renders sort fields as ORDER BY terms.
func orderBy(sort []domain.SortField) ([]string, error) {
	out := make([]string, 0, len(sort))
	for _, s := range sort {
		expr, ok := columns[s.Field]
		if !ok {
			var err error
			if expr, err = sortPath(s); err != nil {
				return nil, err
			}
		}
		if s.Desc {
			expr += " DESC"
		} else {
			expr += " ASC"
		}
		out = append(out, expr)
	}
	return out, nil
}
