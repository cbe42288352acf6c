package response

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartItemsTotal(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected string
	}{
		{
			name:     "given empty cart should be zero",
			body:     `[]`,
			expected: "0.00",
		},
		{
			name:     "given null product should count as zero",
			body:     `[{"id":1,"quantity":2,"product":{"price":10}},{"id":2,"quantity":1,"product":null}]`,
			expected: "20.00",
		},
		{
			name:     "given missing price should count as zero",
			body:     `[{"id":1,"quantity":3,"product":{"name":"Air"}}]`,
			expected: "0.00",
		},
		{
			name:     "given decimal prices should not lose precision",
			body:     `[{"id":1,"quantity":3,"product":{"price":0.1}},{"id":2,"quantity":1,"product":{"price":"19.99"}}]`,
			expected: "20.29",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			items := CartItems{}
			require.NoError(t, json.Unmarshal([]byte(test.body), &items))
			assert.Equal(t, test.expected, items.Total().StringFixed(2))

			reversed := make(CartItems, 0, len(items))
			for i := len(items) - 1; i >= 0; i-- {
				reversed = append(reversed, items[i])
			}
			assert.Equal(t, test.expected, reversed.Total().StringFixed(2))
		})
	}
}

func TestCartItemsWithout(t *testing.T) {
	items := CartItems{{ID: 1}, {ID: 2}, {ID: 3}}

	assert.Equal(t, CartItems{{ID: 1}, {ID: 3}}, items.Without(2))
	assert.Equal(t, items, items.Without(9))
	assert.Len(t, items, 3)
}
