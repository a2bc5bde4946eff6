package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"millerp/internal/core/apperror"
	"millerp/internal/core/entity"
	"millerp/internal/core/id"
	"millerp/internal/core/types"
	"millerp/internal/domain"
	"millerp/internal/domain/filter"
)

type line struct {
	Product string         `json:"product"`
	Qty     types.Quantity `json:"qty"`
	Lots    []lot          `json:"lots"`
}

type lot struct {
	UnitID id.ID `json:"unitId"`
}

type testDoc struct {
	entity.BaseDocument
	No       string    `json:"no"`
	Date     time.Time `json:"date"`
	Supplier struct {
		Name string `json:"name"`
	} `json:"supplier"`
	Lines []line `json:"lines"`
}

func newTestDoc() *testDoc { return &testDoc{} }

func seed(t *testing.T, c *Collection[*testDoc], no, supplier string, date time.Time, unitID id.ID) *testDoc {
	t.Helper()
	doc := &testDoc{BaseDocument: entity.NewBaseDocument(), No: no, Date: date}
	doc.Supplier.Name = supplier
	doc.Lines = []line{{Product: "yarn", Qty: types.NewQuantity(5), Lots: []lot{{UnitID: unitID}}}}
	_, err := c.Insert(context.Background(), doc)
	require.NoError(t, err)
	return doc
}

func TestCollection_InsertGet(t *testing.T) {
	ctx := context.Background()
	c := New("tests", newTestDoc)

	doc := &testDoc{No: "DO-1"}
	docID, err := c.Insert(ctx, doc)
	require.NoError(t, err)
	assert.False(t, id.IsNil(docID))
	assert.Equal(t, 1, doc.Version)

	got, err := c.GetByID(ctx, docID)
	require.NoError(t, err)
	assert.Equal(t, "DO-1", got.No)

	// returned documents are copies
	got.No = "changed"
	again, err := c.GetByID(ctx, docID)
	require.NoError(t, err)
	assert.Equal(t, "DO-1", again.No)

	_, err = c.GetByID(ctx, id.New())
	assert.True(t, apperror.IsNotFound(err))
}

func TestCollection_UpdateOptimisticLock(t *testing.T) {
	ctx := context.Background()
	c := New("tests", newTestDoc)
	doc := seed(t, c, "DO-1", "PT Benang", time.Now(), id.New())

	first, err := c.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	second, err := c.GetByID(ctx, doc.ID)
	require.NoError(t, err)

	first.No = "DO-1A"
	_, err = c.Update(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Version)

	second.No = "DO-1B"
	_, err = c.Update(ctx, second)
	assert.True(t, apperror.IsConcurrentModification(err))

	stored, err := c.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "DO-1A", stored.No)
}

func TestCollection_Find(t *testing.T) {
	ctx := context.Background()
	c := New("tests", newTestDoc)
	unitA, unitB := id.New(), id.New()
	day := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)

	seed(t, c, "DO-1", "PT Benang Raya", day, unitA)
	seed(t, c, "DO-2", "CV Kapas", day.AddDate(0, 0, 1), unitB)
	deleted := seed(t, c, "DO-3", "PT Benang Jaya", day.AddDate(0, 0, 2), unitA)
	deleted.MarkDeleted()
	_, err := c.Update(ctx, deleted)
	require.NoError(t, err)

	t.Run("keyword is case-insensitive and excludes deleted", func(t *testing.T) {
		where := filter.AllOf(filter.NotDeleted(), filter.Keyword("benang", "no", "supplier.name"))
		got, err := c.Find(ctx, where, domain.FindOptions{})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "DO-1", got[0].No)
	})

	t.Run("nested elem match", func(t *testing.T) {
		where := filter.ElemMatch{Field: "lines", Cond: filter.ElemMatch{Field: "lots", Cond: filter.Eq("unitId", unitA)}}
		n, err := c.Count(ctx, where)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})

	t.Run("date range and sort desc", func(t *testing.T) {
		where := filter.AllOf(filter.Gte("date", day), filter.Lte("date", day.AddDate(0, 0, 2)))
		got, err := c.Find(ctx, where, domain.FindOptions{Sort: []domain.SortField{{Field: "date", Desc: true}}})
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, []string{"DO-3", "DO-2", "DO-1"}, []string{got[0].No, got[1].No, got[2].No})
	})

	t.Run("decimal comparison", func(t *testing.T) {
		where := filter.ElemMatch{Field: "lines", Cond: filter.Gt("qty", types.NewQuantity(4))}
		n, err := c.Count(ctx, where)
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
	})

	t.Run("paging window", func(t *testing.T) {
		got, err := c.Find(ctx, nil, domain.FindOptions{Sort: []domain.SortField{{Field: "no"}}, Limit: 1, Offset: 1})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "DO-2", got[0].No)
	})

	t.Run("single or default", func(t *testing.T) {
		_, found, err := c.SingleOrDefault(ctx, filter.Eq("no", "DO-404"))
		require.NoError(t, err)
		assert.False(t, found)

		doc, found, err := c.SingleOrDefault(ctx, filter.In("no", "DO-404", "DO-2"))
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "DO-2", doc.No)
	})
}

func TestCollection_CreateIndexes(t *testing.T) {
	c := New("tests", newTestDoc)

	spec := domain.IndexSpec{Name: "ix_tests__updatedDate", Keys: []domain.SortField{{Field: filter.FieldUpdatedDate, Desc: true}}}
	require.NoError(t, c.CreateIndexes(context.Background(), spec))
	require.NoError(t, c.CreateIndexes(context.Background(), spec))
	assert.Equal(t, []string{"ix_tests__updatedDate"}, c.Indexes())

	assert.Error(t, c.CreateIndexes(context.Background(), domain.IndexSpec{}))
}
