package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Kariqs/tableside/checkout"
	"github.com/Kariqs/tableside/utils"
	"github.com/shopspring/decimal"
)

const (
	RoutingOrderPlaced = "order.placed"
	RoutingFollowUp    = "checkout.follow_up"
	followUpTemplate   = "follow_up.html"
)

type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

type Mailer interface {
	SendEmail(emailTo string, emailSubject string, data utils.EmailData, templateName string) error
}

// OrderPlacedMessage announces a completed checkout to the kitchen.
type OrderPlacedMessage struct {
	AttemptID    string          `json:"attempt_id"`
	OrderID      string          `json:"order_id"`
	CartID       string          `json:"cart_id"`
	CustomerName string          `json:"customer_name"`
	LineCount    int             `json:"line_count"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	Currency     string          `json:"currency"`
	Timestamp    time.Time       `json:"timestamp"`
}

// FollowUpMessage flags a payment that has no order behind it.
type FollowUpMessage struct {
	AttemptID       string          `json:"attempt_id"`
	CartID          string          `json:"cart_id"`
	PaymentIntentID string          `json:"payment_intent_id"`
	CustomerName    string          `json:"customer_name"`
	CustomerEmail   string          `json:"customer_email"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Currency        string          `json:"currency"`
	Detail          string          `json:"detail"`
	Timestamp       time.Time       `json:"timestamp"`
}

// Notifier implements checkout.Notifier. Either collaborator may be nil.
type Notifier struct {
	events     EventPublisher
	mailer     Mailer
	staffEmail string
	adminURL   string
}

func NewNotifier(events EventPublisher, mailer Mailer, staffEmail, adminURL string) *Notifier {
	return &Notifier{events: events, mailer: mailer, staffEmail: staffEmail, adminURL: adminURL}
}

func (n *Notifier) Notify(ctx context.Context, a checkout.Attempt) error {
	switch {
	case a.State == checkout.StateCompleted:
		return n.orderPlaced(ctx, a)
	case a.Reason == checkout.ReasonOrderFinalizationFailed:
		return n.followUp(ctx, a)
	}
	return nil
}

func (n *Notifier) orderPlaced(ctx context.Context, a checkout.Attempt) error {
	if n.events == nil {
		return nil
	}
	return n.events.Publish(ctx, RoutingOrderPlaced, OrderPlacedMessage{
		AttemptID:    a.ID,
		OrderID:      a.OrderID.String(),
		CartID:       a.Handle,
		CustomerName: a.Payer.CustomerName,
		LineCount:    len(a.Lines),
		TotalAmount:  a.Total,
		Currency:     a.Currency,
		Timestamp:    a.UpdatedAt,
	})
}

func (n *Notifier) followUp(ctx context.Context, a checkout.Attempt) error {
	var errs []error
	if n.events != nil {
		err := n.events.Publish(ctx, RoutingFollowUp, FollowUpMessage{
			AttemptID:       a.ID,
			CartID:          a.Handle,
			PaymentIntentID: a.PaymentIntentID,
			CustomerName:    a.Payer.CustomerName,
			CustomerEmail:   a.Payer.CustomerEmail,
			TotalAmount:     a.Total,
			Currency:        a.Currency,
			Detail:          a.Detail,
			Timestamp:       a.UpdatedAt,
		})
		errs = append(errs, err)
	}

	if n.mailer != nil && n.staffEmail != "" {
		err := n.mailer.SendEmail(n.staffEmail, "Payment received without an order", utils.EmailData{
			Name:    "team",
			Message: "A customer paid but the order could not be created. Please create it by hand or refund the payment.",
			Details: map[string]string{
				"Attempt":        a.ID,
				"Cart":           a.Handle,
				"Payment intent": a.PaymentIntentID,
				"Customer":       fmt.Sprintf("%s <%s>", a.Payer.CustomerName, a.Payer.CustomerEmail),
				"Total":          a.Total.StringFixed(2) + " " + a.Currency,
			},
			ActionURL: n.adminURL,
		}, followUpTemplate)
		if err != nil {
			errs = append(errs, fmt.Errorf("follow-up email: %w", err))
		}
	}
	return errors.Join(errs...)
}
