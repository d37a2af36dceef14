package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantityParse(t *testing.T) {
	cases := []struct {
		in   string
		want int64 // scaled
	}{
		{"0", 0},
		{"1", 10_000},
		{"2.5", 25_000},
		{"0.0001", 1},
		{"-3.25", -32_500},
		{"+7", 70_000},
		{".5", 5_000},
		{"1.23456", 12_345}, // extra digits truncated, not rounded
		{"1e2", 1_000_000},
	}

	for _, tc := range cases {
		q, err := NewQuantityFromString(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, q.Int64Scaled(), tc.in)
	}
}

func TestQuantityParse_Invalid(t *testing.T) {
	for _, in := range []string{"", "  ", "abc", "1.2.3", "1,5"} {
		_, err := NewQuantityFromString(in)
		assert.Error(t, err, in)
	}
}

func TestQuantityString(t *testing.T) {
	mustQuantity := func(s string) Quantity {
		q, err := NewQuantityFromString(s)
		require.NoError(t, err)
		return q
	}

	assert.Equal(t, "2.5000", mustQuantity("2.5").String())
	assert.Equal(t, "-0.2500", mustQuantity("-0.25").String())
	assert.Equal(t, "0.0000", Quantity(0).String())
}

func TestQuantityJSONRoundTrip(t *testing.T) {
	type payload struct {
		Qty Quantity `json:"qty"`
	}

	data, err := json.Marshal(payload{Qty: NewQuantityFromFloat64(12.5)})
	require.NoError(t, err)
	// JSON number, not a string
	assert.Equal(t, `{"qty":12.5000}`, string(data))

	var got payload
	require.NoError(t, json.Unmarshal([]byte(`{"qty":"3.75"}`), &got))
	assert.Equal(t, NewQuantityFromFloat64(3.75), got.Qty)

	require.NoError(t, json.Unmarshal([]byte(`{"qty":null}`), &got))
	assert.True(t, got.Qty.IsZero())
}

func TestQuantityArithmetic(t *testing.T) {
	a := NewQuantityFromInt(10)
	b := NewQuantityFromFloat64(2.5)

	assert.Equal(t, "12.5000", a.Add(b).String())
	assert.Equal(t, "7.5000", a.Sub(b).String())
	assert.Equal(t, "-2.5000", b.Neg().String())
	assert.Equal(t, b, b.Neg().Abs())
	assert.True(t, b.Sub(a).IsNegative())
}

func TestQuantityDecimal(t *testing.T) {
	q := NewQuantityFromFloat64(3.5)
	total := q.Decimal().Mul(MustMoney("2.40"))
	assert.True(t, total.Equal(MustMoney("8.40")))
}
