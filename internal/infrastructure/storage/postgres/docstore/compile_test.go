package docstore

import (
	"testing"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"millerp/internal/core/id"
	"millerp/internal/core/types"
	"millerp/internal/domain"
	"millerp/internal/domain/filter"
)

func toSQL(t *testing.T, where filter.Expr) (string, []any) {
	t.Helper()
	pred, err := Compile(where)
	require.NoError(t, err)

	sql, args, err := squirrel.StatementBuilder.
		PlaceholderFormat(squirrel.Dollar).
		Select("body").From("docs").Where(pred).ToSql()
	require.NoError(t, err)
	return sql, args
}

func TestCompile_ReservedColumns(t *testing.T) {
	docID := id.New()
	sql, args := toSQL(t, filter.AllOf(filter.NotDeleted(), filter.Ne(filter.FieldID, docID)))

	assert.Equal(t, "SELECT body FROM docs WHERE (deletion_mark = $1 AND id IS DISTINCT FROM $2)", sql)
	assert.Equal(t, []any{false, docID}, args)
}

func TestCompile_KeywordOr(t *testing.T) {
	sql, args := toSQL(t, filter.AllOf(filter.NotDeleted(), filter.Keyword("50%", "code", "supplier.name")))

	assert.Equal(t,
		"SELECT body FROM docs WHERE (deletion_mark = $1 AND (body #>> '{code}' ILIKE $2 OR body #>> '{supplier,name}' ILIKE $3))",
		sql)
	assert.Equal(t, []any{false, `%50\%%`, `%50\%%`}, args)
}

func TestCompile_TypedCasts(t *testing.T) {
	day := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	supplier := id.New()

	sql, args := toSQL(t, filter.AllOf(
		filter.Gte("date", day),
		filter.Eq("supplierId", supplier),
		filter.Lt("tempo", 30),
		filter.Eq("isPosted", true),
		filter.Gt("qty", types.NewQuantity(4)),
	))

	assert.Equal(t, "SELECT body FROM docs WHERE ("+
		"(body #>> '{date}')::timestamptz >= $1::timestamptz AND "+
		"body #>> '{supplierId}' = $2 AND "+
		"(body #>> '{tempo}')::numeric < $3::numeric AND "+
		"(body #>> '{isPosted}')::boolean = $4::boolean AND "+
		"(body #>> '{qty}')::numeric > $5::numeric)", sql)
	assert.Equal(t, []any{day, supplier.String(), 30, true, "4"}, args)
}

func TestCompile_NestedElemMatch(t *testing.T) {
	unit := id.New()
	where := filter.ElemMatch{
		Field: "items",
		Cond: filter.ElemMatch{
			Field: "fulfillments",
			Cond:  filter.Eq("purchaseOrder.unitId", unit),
		},
	}

	sql, args := toSQL(t, where)
	assert.Equal(t, "SELECT body FROM docs WHERE "+
		"EXISTS (SELECT 1 FROM jsonb_array_elements(CASE WHEN jsonb_typeof(body #> '{items}') = 'array' THEN body #> '{items}' ELSE '[]'::jsonb END) AS e1 WHERE "+
		"EXISTS (SELECT 1 FROM jsonb_array_elements(CASE WHEN jsonb_typeof(e1.value #> '{fulfillments}') = 'array' THEN e1.value #> '{fulfillments}' ELSE '[]'::jsonb END) AS e2 WHERE "+
		"e2.value #>> '{purchaseOrder,unitId}' = $1))", sql)
	assert.Equal(t, []any{unit.String()}, args)
}

func TestCompile_InAndNull(t *testing.T) {
	sql, args := toSQL(t, filter.AllOf(filter.In("no", "A", "B"), filter.Eq("refNo", nil)))
	assert.Equal(t, "SELECT body FROM docs WHERE (body #>> '{no}' IN ($1, $2) AND body #>> '{refNo}' IS NULL)", sql)
	assert.Equal(t, []any{"A", "B"}, args)
}

func TestCompile_RejectsUnsafePaths(t *testing.T) {
	_, err := Compile(filter.Eq("name'; DROP TABLE docs; --", "x"))
	assert.Error(t, err)

	_, err = Compile(filter.Item{Field: "code", Operator: "regex", Value: "x"})
	assert.Error(t, err)
}

func TestOrderByAndIndexes(t *testing.T) {
	terms, err := orderBy([]domain.SortField{{Field: "date", Desc: true}, {Field: filter.FieldID}})
	require.NoError(t, err)
	assert.Equal(t, []string{"body #> '{date}' DESC", "id ASC"}, terms)

	terms, err = orderBy([]domain.SortField{
		{Field: "date", Desc: true, Type: domain.SortTime},
		{Field: "items.qty", Type: domain.SortNumeric},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"(body #>> '{date}')::timestamptz DESC",
		"(body #>> '{items,qty}')::numeric ASC",
	}, terms)

	sql, err := createIndexSQL("inspection_lot_colors", domain.IndexSpec{
		Name: "ix_inspection_lot_colors__updatedDate",
		Keys: []domain.SortField{{Field: filter.FieldUpdatedDate, Desc: true}},
	})
	require.NoError(t, err)
	assert.Equal(t, "CREATE INDEX IF NOT EXISTS ix_inspection_lot_colors__updatedDate ON inspection_lot_colors (updated_at DESC)", sql)

	sql, err = createIndexSQL("buyers", domain.IndexSpec{Name: "ux_buyers__code", Keys: []domain.SortField{{Field: "code"}}, Unique: true})
	require.NoError(t, err)
	assert.Equal(t, "CREATE UNIQUE INDEX IF NOT EXISTS ux_buyers__code ON buyers ((body #>> '{code}'))", sql)
}

func TestSchemaStatements(t *testing.T) {
	stmts, err := SchemaStatements("delivery_orders")
	require.NoError(t, err)
	require.Len(t, stmts, 3)
	assert.Contains(t, stmts[0], "CREATE TABLE IF NOT EXISTS delivery_orders")

	_, err = SchemaStatements("delivery-orders")
	assert.Error(t, err)
}
