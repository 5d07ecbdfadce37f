package menu

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Kariqs/tableside/backend"
	"github.com/Kariqs/tableside/models"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/singleflight"
)

var (
	ErrUnavailable     = errors.New("menu: catalog temporarily unavailable")
	ErrUnknownSize     = errors.New("menu: size not offered for dish")
	ErrDishUnavailable = errors.New("menu: dish is not available")
)

type Source interface {
	GetCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, id models.ID) (models.Category, error)
	GetDishes(ctx context.Context) ([]models.Dish, error)
	GetDish(ctx context.Context, id models.ID) (models.Dish, error)
	GetDishesByCategory(ctx context.Context, categoryID models.ID) ([]models.Dish, error)
}

type Settings struct {
	// FailureThreshold is the number of consecutive upstream failures that
	// opens the breaker.
	FailureThreshold uint32
	// OpenTimeout is how long the breaker stays open before probing again.
	OpenTimeout time.Duration
}

// Service reads the catalog. Identical concurrent reads share one upstream
// call and repeated upstream failures short-circuit for OpenTimeout.
type Service struct {
	src     Source
	breaker *gobreaker.CircuitBreaker[any]
	group   singleflight.Group
}

func NewService(src Source, cfg Settings) *Service {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.OpenTimeout == 0 {
		cfg.OpenTimeout = 30 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "catalog",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		// a 4xx (unknown dish, bad id) says nothing about upstream health
		IsSuccessful: func(err error) bool {
			return err == nil || backend.IsClientError(err)
		},
	})

	return &Service{src: src, breaker: breaker}
}

func (s *Service) Categories(ctx context.Context) ([]models.Category, error) {
	return read(ctx, s, "categories", s.src.GetCategories)
}

func (s *Service) Category(ctx context.Context, id models.ID) (models.Category, error) {
	return read(ctx, s, "category:"+id.String(), func(ctx context.Context) (models.Category, error) {
		return s.src.GetCategory(ctx, id)
	})
}

func (s *Service) Dishes(ctx context.Context) ([]models.Dish, error) {
	return read(ctx, s, "dishes", s.src.GetDishes)
}

func (s *Service) Dish(ctx context.Context, id models.ID) (models.Dish, error) {
	return read(ctx, s, "dish:"+id.String(), func(ctx context.Context) (models.Dish, error) {
		return s.src.GetDish(ctx, id)
	})
}

func (s *Service) DishesByCategory(ctx context.Context, categoryID models.ID) ([]models.Dish, error) {
	return read(ctx, s, "dishes:category:"+categoryID.String(), func(ctx context.Context) ([]models.Dish, error) {
		return s.src.GetDishesByCategory(ctx, categoryID)
	})
}

// PriceFor resolves the dish and the unit price of the requested size.
func (s *Service) PriceFor(ctx context.Context, dishID models.ID, size string) (models.Dish, decimal.Decimal, error) {
	dish, err := s.Dish(ctx, dishID)
	if err != nil {
		return models.Dish{}, decimal.Zero, err
	}
	if !dish.Available() {
		return dish, decimal.Zero, ErrDishUnavailable
	}
	price, ok := dish.PriceFor(size)
	if !ok {
		return dish, decimal.Zero, fmt.Errorf("%w: %s/%s", ErrUnknownSize, dishID, size)
	}
	return dish, price, nil
}

func read[T any](ctx context.Context, s *Service, key string, fetch func(context.Context) (T, error)) (T, error) {
	v, err, _ := s.group.Do(key, func() (any, error) {
		return s.breaker.Execute(func() (any, error) {
			return fetch(ctx)
		})
	})
	if err != nil {
		var zero T
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return zero, err
	}
	return v.(T), nil
}
