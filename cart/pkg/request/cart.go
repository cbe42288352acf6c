package request

import "github.com/rs/zerolog"

type AddCartItem struct {
	UserID    int `validate:"required,gte=1" json:"user_id"`
	ProductID int `validate:"required,gte=1" json:"product_id"`
	Quantity  int `validate:"required,gte=1" json:"quantity"`
}

func (r AddCartItem) MarshalZerologObject(e *zerolog.Event) {
	e.Int("user_id", r.UserID).Int("product_id", r.ProductID).Int("quantity", r.Quantity)
}

type RemoveCartItem struct {
	ID int `validate:"required,gte=1" json:"id"`
}
