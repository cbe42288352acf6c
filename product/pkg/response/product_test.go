package response

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductOriginalPrice(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected string
	}{
		{
			name:     "given price and discount should compute original price",
			body:     `{"id":1,"price":90,"discount":10}`,
			expected: "100.00",
		},
		{
			name:     "given fractional result should round to 2 decimals",
			body:     `{"id":1,"price":150.99,"discount":15}`,
			expected: "177.64",
		},
		{
			name:     "given zero discount should be empty",
			body:     `{"id":1,"price":90,"discount":0}`,
			expected: "",
		},
		{
			name:     "given missing discount should be empty",
			body:     `{"id":1,"price":90}`,
			expected: "",
		},
		{
			name:     "given null price should be empty",
			body:     `{"id":1,"price":null,"discount":10}`,
			expected: "",
		},
		{
			name:     "given full discount should be empty",
			body:     `{"id":1,"price":90,"discount":100}`,
			expected: "",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			p := Product{}
			require.NoError(t, json.Unmarshal([]byte(test.body), &p))
			assert.Equal(t, test.expected, p.OriginalPrice())
		})
	}
}

func TestProductPriceOrZero(t *testing.T) {
	var missing *Product
	assert.True(t, missing.PriceOrZero().IsZero())

	p := Product{}
	require.NoError(t, json.Unmarshal([]byte(`{"id":2,"name":"Air","price":null}`), &p))
	assert.False(t, p.Price.Valid)
	assert.True(t, p.PriceOrZero().IsZero())
	assert.False(t, p.HasDiscount())

	p = Product{Price: decimal.NewNullDecimal(decimal.RequireFromString("10.5"))}
	assert.Equal(t, "10.50", p.PriceOrZeroString())
}

func TestProductUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name             string
		body             string
		expectedPrice    string
		expectedValid    bool
		expectedDiscount bool
	}{
		{
			name:          "given number price should be set",
			body:          `{"id":1,"name":"Air","price":10,"discount":5}`,
			expectedPrice: "10.00", expectedValid: true, expectedDiscount: true,
		},
		{
			name:          "given numeric string price should be set",
			body:          `{"id":1,"name":"Air","price":"12.5"}`,
			expectedPrice: "12.50", expectedValid: true,
		},
		{
			name:          "given empty string price should not be set",
			body:          `{"id":1,"name":"Air","price":""}`,
			expectedPrice: "0.00",
		},
		{
			name:          "given non numeric price should not be set",
			body:          `{"id":1,"name":"Air","price":"abc","discount":"x"}`,
			expectedPrice: "0.00",
		},
		{
			name:          "given missing price should not be set",
			body:          `{"id":1,"name":"Air"}`,
			expectedPrice: "0.00",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			p := Product{}
			require.NoError(t, json.Unmarshal([]byte(test.body), &p))
			assert.Equal(t, 1, p.ID)
			assert.Equal(t, "Air", p.Name)
			assert.Equal(t, test.expectedValid, p.Price.Valid)
			assert.Equal(t, test.expectedPrice, p.PriceOrZeroString())
			assert.Equal(t, test.expectedDiscount, p.HasDiscount())
		})
	}

	p := Product{}
	assert.Error(t, json.Unmarshal([]byte(`{"id":"one"}`), &p))
}

func TestProductImage(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com/air.jpg", Product{ImageURL: "https://cdn.example.com/air.jpg"}.Image())
	assert.Equal(t, DefaultImage, Product{ImageURL: "air.jpg"}.Image())
	assert.Equal(t, DefaultImage, Product{}.Image())
}
