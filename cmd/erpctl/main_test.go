package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"millerp/internal/core/id"
	"millerp/internal/infrastructure/storage/postgres/docstore"
)

func TestCollections_ValidSchemaNames(t *testing.T) {
	for _, name := range collections {
		_, err := docstore.SchemaStatements(name)
		assert.NoError(t, err, name)
	}
}

func TestParseReportFlags(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*3600)
	kanbanID := id.New()

	rf, err := parseReportFlags([]string{
		"-from", "2026-01-01",
		"-to", "2026-01-31",
		"-kanban", kanbanID.String(),
		"-out", "x.xlsx",
	}, loc)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, loc), rf.query.DateFrom)
	assert.Equal(t, time.Date(2026, 1, 31, 0, 0, 0, 0, loc), rf.query.DateTo)
	assert.Equal(t, kanbanID, rf.query.KanbanID)
	assert.True(t, id.IsNil(rf.query.ProductionOrderID))
	assert.Equal(t, "x.xlsx", rf.out)
}

func TestParseReportFlags_Invalid(t *testing.T) {
	_, err := parseReportFlags([]string{"-from", "01/02/2026"}, time.UTC)
	assert.ErrorContains(t, err, "-from")

	_, err = parseReportFlags([]string{"-kanban", "nope"}, time.UTC)
	assert.ErrorContains(t, err, "-kanban")
}

func TestParseDeliveryFlags(t *testing.T) {
	supplierID := id.New()

	q, err := parseDeliveryFlags([]string{"-no", "DO-1", "-supplier", supplierID.String()}, time.UTC)
	require.NoError(t, err)

	assert.Equal(t, "DO-1", q.No)
	assert.Equal(t, supplierID, q.SupplierID)
	assert.True(t, q.DateFrom.IsZero())
	assert.True(t, q.DateTo.IsZero())
}
