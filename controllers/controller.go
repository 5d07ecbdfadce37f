package controllers

import (
	"context"
	"time"

	"github.com/Kariqs/tableside/backend"
	"github.com/Kariqs/tableside/cart"
	"github.com/Kariqs/tableside/checkout"
	"github.com/Kariqs/tableside/logger"
	"github.com/Kariqs/tableside/menu"
	"github.com/Kariqs/tableside/models"
	"github.com/Kariqs/tableside/payment"
	"github.com/Kariqs/tableside/session"
	"github.com/Kariqs/tableside/storage"
	"golang.org/x/sync/singleflight"
)

// Ledger is the durable record of checkout attempts behind the staff
// follow-up queue.
type Ledger interface {
	checkout.Recorder
	ListByReason(ctx context.Context, reason string, unresolved bool, page, limit int) ([]models.CheckoutAttempt, int64, error)
	MarkResolved(ctx context.Context, attemptID string, at time.Time) (models.CheckoutAttempt, error)
}

// Options wires the controller. Ledger, Notifier and Uploader are optional.
type Options struct {
	Backend      *backend.Client
	Menu         *menu.Service
	Sessions     *session.Binder
	Carts        *cart.Service
	Attempts     *checkout.AttemptStore
	Verifier     payment.Verifier
	Ledger       Ledger
	Notifier     checkout.Notifier
	Uploader     storage.Uploader
	Log          *logger.Logger
	Currency     string
	JWTSecret    []byte
	TokenTTL     time.Duration
	CookieSecure bool
}

type Controller struct {
	backend      *backend.Client
	menu         *menu.Service
	sessions     *session.Binder
	carts        *cart.Service
	attempts     *checkout.AttemptStore
	verifier     payment.Verifier
	ledger       Ledger
	notifier     checkout.Notifier
	uploader     storage.Uploader
	log          *logger.Logger
	currency     string
	jwtSecret    []byte
	tokenTTL     time.Duration
	cookieSecure bool

	// collapses double-submitted checkout requests of one browser
	checkouts singleflight.Group
}

func New(opts Options) *Controller {
	if opts.Log == nil {
		opts.Log = logger.Discard()
	}
	if opts.Verifier == nil {
		opts.Verifier = payment.Unconfigured{}
	}
	if opts.Currency == "" {
		opts.Currency = "usd"
	}
	if opts.TokenTTL == 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	return &Controller{
		backend:      opts.Backend,
		menu:         opts.Menu,
		sessions:     opts.Sessions,
		carts:        opts.Carts,
		attempts:     opts.Attempts,
		verifier:     opts.Verifier,
		ledger:       opts.Ledger,
		notifier:     opts.Notifier,
		uploader:     opts.Uploader,
		log:          opts.Log,
		currency:     opts.Currency,
		jwtSecret:    opts.JWTSecret,
		tokenTTL:     opts.TokenTTL,
		cookieSecure: opts.CookieSecure,
	}
}

func (c *Controller) checkoutDeps(browserID string) checkout.Deps {
	deps := checkout.Deps{
		Backend:  c.backend,
		Sessions: c.sessions,
		Cart:     c.carts.For(browserID),
		Notifier: c.notifier,
		Claims:   c.attempts,
		Log:      c.log,
	}
	if c.ledger != nil {
		deps.Recorder = c.ledger
	}
	return deps
}
