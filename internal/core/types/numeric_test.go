package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumericText_Int(t *testing.T) {
	tests := []struct {
		in   NumericText
		want int
		ok   bool
	}{
		{"30", 30, true},
		{" 45", 45, true},
		{"30 days", 30, true},
		{"-7", -7, true},
		{"3.9", 3, true},
		{"abc", 0, false},
		{"", 0, false},
		{"-", 0, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.in), func(t *testing.T) {
			got, ok := tt.in.Int()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNumericText_JSON(t *testing.T) {
	var v struct {
		A NumericText `json:"a"`
		B NumericText `json:"b"`
		C NumericText `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":30,"b":"x1","c":null}`), &v))
	assert.Equal(t, NumericText("30"), v.A)
	assert.Equal(t, NumericText("x1"), v.B)
	assert.True(t, v.C.IsEmpty())

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":30,"b":"x1","c":null}`, string(out))
}

func TestSum(t *testing.T) {
	assert.True(t, Sum().IsZero())
	assert.True(t, Sum(MustQuantity("40"), MustQuantity("60")).Equal(NewQuantity(100)))
}

func TestDayBounds(t *testing.T) {
	loc := time.FixedZone("WIB", 7*3600)
	at := time.Date(2026, 3, 9, 15, 4, 5, 0, loc)

	assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, loc), StartOfDay(at))
	assert.Equal(t, time.Date(2026, 3, 9, 23, 59, 59, 999999999, loc), EndOfDay(at))
}
