package filter

func Eq(field string, value any) Item  { return Item{Field: field, Operator: Equal, Value: value} }
func Ne(field string, value any) Item  { return Item{Field: field, Operator: NotEqual, Value: value} }
func Lt(field string, value any) Item  { return Item{Field: field, Operator: Less, Value: value} }
func Gt(field string, value any) Item  { return Item{Field: field, Operator: Greater, Value: value} }
func Lte(field string, value any) Item { return Item{Field: field, Operator: LessOrEqual, Value: value} }
func Gte(field string, value any) Item { return Item{Field: field, Operator: GreaterOrEqual, Value: value} }

// In matches when the field equals one of values.
func In(field string, values ...any) Item {
	return Item{Field: field, Operator: InList, Value: values}
}

// Contains matches a case-insensitive substring.
func Contains(field, substr string) Item {
	return Item{Field: field, Operator: ContainsText, Value: substr}
}

// NotDeleted excludes soft-deleted documents.
func NotDeleted() Item {
	return Eq(FieldDeleted, false)
}

// AllOf ANDs the non-nil expressions.
func AllOf(exprs ...Expr) And {
	out := make(And, 0, len(exprs))
	for _, e := range exprs {
		if e != nil {
			out = append(out, e)
		}
	}
	return out
}

// Keyword ORs a case-insensitive substring match of keyword over fields.
// Returns nil when keyword is empty.
func Keyword(keyword string, fields ...string) Expr {
	if keyword == "" {
		return nil
	}
	out := make(Or, 0, len(fields))
	for _, f := range fields {
		out = append(out, Contains(f, keyword))
	}
	return out
}
