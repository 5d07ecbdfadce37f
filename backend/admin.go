package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/Kariqs/tableside/models"
	"github.com/shopspring/decimal"
)

type meResponse struct {
	Success bool             `json:"success"`
	User    models.AdminUser `json:"user"`
}

// Login signs in with the backend and returns the Cookie header value that
// later admin calls must present.
func (c *Client) Login(ctx context.Context, creds models.LoginData) (string, error) {
	resp, err := c.do(ctx, http.MethodPost, "/user/login", creds, nil)
	if err != nil {
		return "", err
	}

	var parts []string
	for _, ck := range resp.Cookies() {
		if ck.Value == "" {
			continue
		}
		parts = append(parts, ck.Name+"="+ck.Value)
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("%w: POST /user/login: no session cookie", ErrMalformedResponse)
	}
	return strings.Join(parts, "; "), nil
}

// Me returns the signed-in user. The backend answers an expired session with
// 200 and success=false, which is reported as a 401 APIError.
func (c *Client) Me(ctx context.Context) (models.AdminUser, error) {
	resp, err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil)
	if err != nil {
		return models.AdminUser{}, err
	}
	var out meResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return models.AdminUser{}, fmt.Errorf("%w: GET /auth/me: %v", ErrMalformedResponse, err)
	}
	if !out.Success {
		return models.AdminUser{}, &APIError{Method: http.MethodGet, Path: "/auth/me", Status: http.StatusUnauthorized, Message: "not signed in"}
	}
	if err := c.validate.Struct(out.User); err != nil {
		return models.AdminUser{}, fmt.Errorf("%w: GET /auth/me: %v", ErrMalformedResponse, err)
	}
	return out.User, nil
}

func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/user/logout", nil, nil)
	return err
}

func (c *Client) CreateDish(ctx context.Context, in models.DishInput) (models.Dish, error) {
	var out models.Dish
	if _, err := c.do(ctx, http.MethodPost, "/dish", in, &out); err != nil {
		return models.Dish{}, err
	}
	return out, nil
}

func (c *Client) UpdateDish(ctx context.Context, id models.ID, in models.DishInput) (models.Dish, error) {
	var out models.Dish
	if _, err := c.do(ctx, http.MethodPatch, "/dish/"+url.PathEscape(id.String()), in, &out); err != nil {
		return models.Dish{}, err
	}
	return out, nil
}

func (c *Client) DeleteDish(ctx context.Context, id models.ID) error {
	_, err := c.do(ctx, http.MethodDelete, "/dish/"+url.PathEscape(id.String()), nil, nil)
	return err
}

func (c *Client) ToggleDishAvailability(ctx context.Context, id models.ID, available bool) error {
	body := map[string]bool{"isAvailable": available}
	_, err := c.do(ctx, http.MethodPost, "/dish/toggle-availability/"+url.PathEscape(id.String()), body, nil)
	return err
}

func (c *Client) CreateCategory(ctx context.Context, in models.CategoryInput) (models.Category, error) {
	var out models.Category
	if _, err := c.do(ctx, http.MethodPost, "/category", in, &out); err != nil {
		return models.Category{}, err
	}
	return out, nil
}

func (c *Client) UpdateCategory(ctx context.Context, id models.ID, in models.CategoryInput) (models.Category, error) {
	var out models.Category
	if _, err := c.do(ctx, http.MethodPatch, "/category/"+url.PathEscape(id.String()), in, &out); err != nil {
		return models.Category{}, err
	}
	return out, nil
}

func (c *Client) DeleteCategory(ctx context.Context, id models.ID) error {
	_, err := c.do(ctx, http.MethodDelete, "/category/"+url.PathEscape(id.String()), nil, nil)
	return err
}

// CreateTable registers a table. The backend answers with the QR code that
// encodes the table's session entry link.
func (c *Client) CreateTable(ctx context.Context, in models.TableInput) (models.Table, error) {
	var out models.Table
	if _, err := c.do(ctx, http.MethodPost, "/table", in, &out); err != nil {
		return models.Table{}, err
	}
	return out, nil
}

func (c *Client) UpdateTable(ctx context.Context, id models.ID, in models.TableInput) (models.Table, error) {
	var out models.Table
	if _, err := c.do(ctx, http.MethodPatch, "/table/"+url.PathEscape(id.String()), in, &out); err != nil {
		return models.Table{}, err
	}
	return out, nil
}

func (c *Client) DeleteTable(ctx context.Context, id models.ID) error {
	_, err := c.do(ctx, http.MethodDelete, "/table/"+url.PathEscape(id.String()), nil, nil)
	return err
}

func (c *Client) GetOrders(ctx context.Context) ([]models.Order, error) {
	var out []models.Order
	if _, err := c.do(ctx, http.MethodGet, "/order", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetOrder(ctx context.Context, id models.ID) (models.Order, error) {
	var out models.Order
	if _, err := c.do(ctx, http.MethodGet, "/order/"+url.PathEscape(id.String()), nil, &out); err != nil {
		return models.Order{}, err
	}
	return out, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id models.ID, status string) error {
	body := map[string]string{"order_status": status}
	_, err := c.do(ctx, http.MethodPatch, "/order/state/"+url.PathEscape(id.String()), body, nil)
	return err
}

// DashboardStats gathers the four dashboard counters.
func (c *Client) DashboardStats(ctx context.Context) (models.DashboardStats, error) {
	var stats models.DashboardStats

	if _, err := c.do(ctx, http.MethodGet, "/order/dailycompletedorderscount/count", nil, &stats.DailyCompletedOrders); err != nil {
		return models.DashboardStats{}, err
	}
	if _, err := c.do(ctx, http.MethodGet, "/order/pendingcount/count", nil, &stats.PendingOrders); err != nil {
		return models.DashboardStats{}, err
	}
	var income decimal.Decimal
	if _, err := c.do(ctx, http.MethodGet, "/order/dailyincome/income", nil, &income); err != nil {
		return models.DashboardStats{}, err
	}
	stats.DailyIncome = income
	if _, err := c.do(ctx, http.MethodGet, "/order/weeklyincome/byDays", nil, &stats.WeeklyIncome); err != nil {
		return models.DashboardStats{}, err
	}
	return stats, nil
}
