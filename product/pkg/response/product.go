package response

import (
	"encoding/json"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// DefaultImage is shown for products without an absolute image url.
const DefaultImage = "/buzo.jpeg"

var hundred = decimal.NewFromInt(100)

// Product is a catalog entry. Price and Discount are null when the backend omits
// them or sends something that is not a number; Discount is a percentage between
// 0 and 100.
type Product struct {
	ID          int                 `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Price       decimal.NullDecimal `json:"price"`
	Discount    decimal.NullDecimal `json:"discount"`
	ImageURL    string              `json:"image_url"`
}

func (p *Product) UnmarshalJSON(b []byte) error {
	type alias Product
	raw := struct {
		alias
		Price    json.RawMessage `json:"price"`
		Discount json.RawMessage `json:"discount"`
	}{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*p = Product(raw.alias)
	p.Price = lenientDecimal(raw.Price)
	p.Discount = lenientDecimal(raw.Discount)
	return nil
}

// lenientDecimal reads a number or a numeric string. Anything else is not set.
func lenientDecimal(b json.RawMessage) decimal.NullDecimal {
	d := decimal.NullDecimal{}
	if len(b) == 0 || d.UnmarshalJSON(b) != nil {
		return decimal.NullDecimal{}
	}
	return d
}

// PriceOrZero returns the price, or zero when it is missing.
func (p *Product) PriceOrZero() decimal.Decimal {
	if p == nil || !p.Price.Valid {
		return decimal.Zero
	}
	return p.Price.Decimal
}

func (p Product) HasDiscount() bool {
	return p.Discount.Valid && p.Discount.Decimal.IsPositive()
}

// OriginalPrice is the price before the discount was applied, with 2 decimals.
// It is empty unless both price and discount are set and non-zero and the
// discount is below 100.
func (p Product) OriginalPrice() string {
	if !p.Price.Valid || !p.Discount.Valid {
		return ""
	}
	price, discount := p.Price.Decimal, p.Discount.Decimal
	if price.IsZero() || discount.IsZero() || discount.GreaterThanOrEqual(hundred) {
		return ""
	}
	factor := decimal.NewFromInt(1).Sub(discount.Div(hundred))
	return price.Div(factor).StringFixed(2)
}

func (p Product) MarshalZerologObject(e *zerolog.Event) {
	e.Int("id", p.ID).Str("name", p.Name).Str("price", p.PriceOrZeroString())
}

func (p Product) PriceOrZeroString() string {
	return p.PriceOrZero().StringFixed(2)
}

func (p Product) Image() string {
	if strings.HasPrefix(p.ImageURL, "http") {
		return p.ImageURL
	}
	return DefaultImage
}
