package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type upstreamAuthKey struct{}

// WithUpstreamAuth attaches the backend credentials (a Cookie header value)
// that admin calls must carry.
func WithUpstreamAuth(ctx context.Context, cookie string) context.Context {
	return context.WithValue(ctx, upstreamAuthKey{}, cookie)
}

func upstreamAuth(ctx context.Context) string {
	v, _ := ctx.Value(upstreamAuthKey{}).(string)
	return v
}

// Client talks to the restaurant backend. Every response is decoded into an
// explicit schema and validated before it is returned.
type Client struct {
	http     *resty.Client
	validate *validator.Validate
}

// New builds a client. The client keeps no cookie jar: admin credentials are
// passed per call through WithUpstreamAuth.
func New(baseURL string, timeout time.Duration) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetTransport(otelhttp.NewTransport(http.DefaultTransport)).
		SetCookieJar(nil).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")

	return &Client{http: httpClient, validate: newValidator()}
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) (*resty.Response, error) {
	req := c.http.R().SetContext(ctx)
	if cookie := upstreamAuth(ctx); cookie != "" {
		req.SetHeader("Cookie", cookie)
	}
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, fmt.Errorf("backend %s %s: %w", method, path, err)
	}
	if resp.IsError() {
		return resp, newAPIError(method, path, resp)
	}
	if out == nil {
		return resp, nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return resp, fmt.Errorf("%w: %s %s: %v", ErrMalformedResponse, method, path, err)
	}
	if err := c.check(out); err != nil {
		return resp, fmt.Errorf("%w: %s %s: %v", ErrMalformedResponse, method, path, err)
	}
	return resp, nil
}

// check validates a decoded struct or every struct of a decoded slice.
func (c *Client) check(out any) error {
	v := reflect.Indirect(reflect.ValueOf(out))
	switch v.Kind() {
	case reflect.Struct:
		if _, ok := v.Interface().(decimal.Decimal); ok {
			return nil
		}
		return c.validate.Struct(v.Interface())
	case reflect.Slice:
		for i := 0; i < v.Len(); i++ {
			item := reflect.Indirect(v.Index(i))
			if item.Kind() != reflect.Struct {
				continue
			}
			if err := c.validate.Struct(item.Interface()); err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
		}
	}
	return nil
}
