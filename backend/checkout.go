package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Kariqs/tableside/models"
	"github.com/Kariqs/tableside/session"
)

type createCartRequest struct {
	CartStatus string `json:"cart_status"`
	IsActive   bool   `json:"is_active"`
}

type createCartResponse struct {
	EncryptedCartID string `json:"encryptedCartId" validate:"required"`
}

type cartItemRequest struct {
	CartID    string    `json:"cart_id"`
	Quantity  int       `json:"quantity"`
	DishID    models.ID `json:"dish_id"`
	IsDeleted bool      `json:"is_deleted"`
}

type paymentIntentRequest struct {
	CartID   string `json:"cartId"`
	Currency string `json:"currency"`
}

type paymentIntentResponse struct {
	ClientSecret string `json:"clientSecret" validate:"required"`
}

// CreateCart opens a server-side cart for the table session and returns its handle.
func (c *Client) CreateCart(ctx context.Context, sessionToken string) (string, error) {
	var out createCartResponse
	path := "/carts/table/" + url.PathEscape(sessionToken)
	body := createCartRequest{CartStatus: "active", IsActive: true}
	if _, err := c.do(ctx, http.MethodPost, path, body, &out); err != nil {
		return "", err
	}
	return out.EncryptedCartID, nil
}

// AddCartLine uploads one line to the server cart.
func (c *Client) AddCartLine(ctx context.Context, cartHandle string, line models.CartLine) error {
	body := cartItemRequest{
		CartID:   cartHandle,
		Quantity: line.Quantity,
		DishID:   line.DishID,
	}
	_, err := c.do(ctx, http.MethodPost, "/cart-items", body, nil)
	return err
}

func (c *Client) CreatePaymentIntent(ctx context.Context, cartHandle, currency string) (string, error) {
	var out paymentIntentResponse
	body := paymentIntentRequest{CartID: cartHandle, Currency: currency}
	if _, err := c.do(ctx, http.MethodPost, "/payments/create-payment-intent", body, &out); err != nil {
		return "", err
	}
	return out.ClientSecret, nil
}

func (c *Client) PlaceOrder(ctx context.Context, req models.OrderRequest) (models.OrderAck, error) {
	var out models.OrderAck
	if _, err := c.do(ctx, http.MethodPost, "/order", req, &out); err != nil {
		return models.OrderAck{}, err
	}
	return out, nil
}

// ValidateSession asks the backend whether the table token is known. A 4xx
// answer is reported as session.ErrInvalidSession.
func (c *Client) ValidateSession(ctx context.Context, sessionToken string) error {
	_, err := c.do(ctx, http.MethodGet, "/carts/table/"+url.PathEscape(sessionToken), nil, nil)
	if err != nil && IsClientError(err) {
		return fmt.Errorf("%w: %v", session.ErrInvalidSession, err)
	}
	return err
}
