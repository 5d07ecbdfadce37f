package models

import "github.com/shopspring/decimal"

// CartLine is one orderable unit in a browser's cart. There is at most one
// line per (DishID, Size) pair.
type CartLine struct {
	DishID    ID              `json:"dish_id"`
	DishName  string          `json:"dish_name"`
	Size      string          `json:"size"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"price"`
	ImageURL  string          `json:"dish_image_url,omitempty"`
}

func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type AddCartItemRequest struct {
	DishID   ID     `json:"dish_id" binding:"required"`
	Size     string `json:"size" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,gt=0,lte=99"`
}

type ChangeCartItemRequest struct {
	DishID ID     `json:"dish_id" binding:"required"`
	Size   string `json:"size" binding:"required"`
	Delta  int    `json:"delta" binding:"required"`
}
