package models

import "github.com/shopspring/decimal"

type DishPrice struct {
	Size  string          `json:"size" validate:"required"`
	Price decimal.Decimal `json:"price" validate:"gte=0"`
}

type Dish struct {
	DishID      ID          `json:"dish_id" validate:"required"`
	Name        string      `json:"dish_name" validate:"required"`
	Description string      `json:"dish_description"`
	ImageURL    string      `json:"dish_image_url"`
	CategoryID  ID          `json:"category_id"`
	IsAvailable *bool       `json:"isAvailable,omitempty"`
	Prices      []DishPrice `json:"dishPrices" validate:"required,min=1,dive"`
}

// PriceFor returns the price of the given size. Sizes are matched exactly.
func (d Dish) PriceFor(size string) (decimal.Decimal, bool) {
	for _, p := range d.Prices {
		if p.Size == size {
			return p.Price, true
		}
	}
	return decimal.Zero, false
}

// Available reports false only when the backend explicitly marked the dish
// as unavailable.
func (d Dish) Available() bool {
	return d.IsAvailable == nil || *d.IsAvailable
}

type Category struct {
	CategoryID  ID     `json:"category_id" validate:"required"`
	Name        string `json:"category_name" validate:"required"`
	Description string `json:"category_description"`
	ImageURL    string `json:"category_image_url"`
}

type DishInput struct {
	Name        string      `json:"dish_name" binding:"required"`
	Description string      `json:"dish_description"`
	ImageURL    string      `json:"dish_image_url"`
	CategoryID  ID          `json:"category_id" binding:"required"`
	Prices      []DishPrice `json:"dishPrices" binding:"required,min=1,dive"`
}

type CategoryInput struct {
	Name        string `json:"category_name" binding:"required"`
	Description string `json:"category_description"`
	ImageURL    string `json:"category_image_url"`
}
