package response

import (
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	productResponse "github.com/Alturino/kickshopping/product/pkg/response"
)

type CartItem struct {
	ID        int                      `json:"id"`
	UserID    int                      `json:"user_id"`
	ProductID int                      `json:"product_id"`
	Quantity  int                      `json:"quantity"`
	Product   *productResponse.Product `json:"product"`
}

// Subtotal is quantity times the product price. A missing product or price
// counts as zero.
func (i CartItem) Subtotal() decimal.Decimal {
	return i.Product.PriceOrZero().Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (i CartItem) MarshalZerologObject(e *zerolog.Event) {
	e.Int("id", i.ID).Int("product_id", i.ProductID).Int("quantity", i.Quantity)
}

type CartItems []CartItem

func (items CartItems) MarshalZerologArray(a *zerolog.Array) {
	for _, item := range items {
		a.Object(item)
	}
}

func (items CartItems) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// Without returns a copy of items without the entry with the given id.
func (items CartItems) Without(id int) CartItems {
	filtered := make(CartItems, 0, len(items))
	for _, item := range items {
		if item.ID != id {
			filtered = append(filtered, item)
		}
	}
	return filtered
}
