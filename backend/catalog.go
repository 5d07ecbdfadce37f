package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/Kariqs/tableside/models"
)

func (c *Client) GetCategories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	if _, err := c.do(ctx, http.MethodGet, "/category", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetCategory(ctx context.Context, id models.ID) (models.Category, error) {
	var out models.Category
	if _, err := c.do(ctx, http.MethodGet, "/category/"+url.PathEscape(id.String()), nil, &out); err != nil {
		return models.Category{}, err
	}
	return out, nil
}

func (c *Client) GetDishes(ctx context.Context) ([]models.Dish, error) {
	var out []models.Dish
	if _, err := c.do(ctx, http.MethodGet, "/dish", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetDish(ctx context.Context, id models.ID) (models.Dish, error) {
	var out models.Dish
	if _, err := c.do(ctx, http.MethodGet, "/dish/"+url.PathEscape(id.String()), nil, &out); err != nil {
		return models.Dish{}, err
	}
	return out, nil
}

func (c *Client) GetDishesByCategory(ctx context.Context, categoryID models.ID) ([]models.Dish, error) {
	var out []models.Dish
	if _, err := c.do(ctx, http.MethodGet, "/dish/category/"+url.PathEscape(categoryID.String()), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetTables(ctx context.Context) ([]models.Table, error) {
	var out []models.Table
	if _, err := c.do(ctx, http.MethodGet, "/table", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
