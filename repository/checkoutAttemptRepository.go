package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Kariqs/tableside/checkout"
	"github.com/Kariqs/tableside/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrAttemptNotFound = errors.New("checkout attempt not found")

// CheckoutAttemptRepository keeps one ledger row per checkout attempt and
// rewrites it on every state change.
type CheckoutAttemptRepository struct {
	db *gorm.DB
}

func NewCheckoutAttemptRepository(db *gorm.DB) *CheckoutAttemptRepository {
	return &CheckoutAttemptRepository{db: db}
}

// Record implements checkout.Recorder.
func (r *CheckoutAttemptRepository) Record(ctx context.Context, a checkout.Attempt) error {
	lines, err := json.Marshal(a.Lines)
	if err != nil {
		return fmt.Errorf("encode attempt lines: %w", err)
	}

	row := models.CheckoutAttempt{
		AttemptID:       a.ID,
		BrowserID:       a.BrowserID,
		CartHandle:      a.Handle,
		State:           string(a.State),
		Reason:          string(a.Reason),
		Detail:          a.Detail,
		Uploaded:        a.Uploaded,
		LineCount:       len(a.Lines),
		Total:           a.Total,
		Currency:        a.Currency,
		PaymentIntentID: a.PaymentIntentID,
		PayerName:       a.Payer.CustomerName,
		PayerEmail:      a.Payer.CustomerEmail,
		OrderID:         a.OrderID.String(),
		Lines:           datatypes.JSON(lines),
	}

	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "attempt_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"updated_at", "cart_handle", "state", "reason", "detail", "uploaded", "line_count",
			"total", "currency", "payment_intent_id", "payer_name", "payer_email", "order_id", "lines",
		}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("record checkout attempt %s: %w", a.ID, err)
	}
	return nil
}

func (r *CheckoutAttemptRepository) FindByAttemptID(ctx context.Context, attemptID string) (models.CheckoutAttempt, error) {
	var row models.CheckoutAttempt
	err := r.db.WithContext(ctx).Where("attempt_id = ?", attemptID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return row, ErrAttemptNotFound
	}
	return row, err
}

// ListByReason pages through attempts, newest first. An empty reason lists
// every attempt. Only unresolved rows are returned when unresolved is set.
func (r *CheckoutAttemptRepository) ListByReason(ctx context.Context, reason string, unresolved bool, page, limit int) ([]models.CheckoutAttempt, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	query := r.db.WithContext(ctx).Model(&models.CheckoutAttempt{})
	if reason != "" {
		query = query.Where("reason = ?", reason)
	}
	if unresolved {
		query = query.Where("resolved_at IS NULL")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.CheckoutAttempt
	err := query.Order("id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// MarkResolved stamps the follow-up as handled. Resolving twice keeps the
// first timestamp.
func (r *CheckoutAttemptRepository) MarkResolved(ctx context.Context, attemptID string, at time.Time) (models.CheckoutAttempt, error) {
	row, err := r.FindByAttemptID(ctx, attemptID)
	if err != nil {
		return row, err
	}
	if row.ResolvedAt != nil {
		return row, nil
	}
	at = at.UTC()
	if err := r.db.WithContext(ctx).Model(&row).Update("resolved_at", at).Error; err != nil {
		return row, fmt.Errorf("resolve checkout attempt %s: %w", attemptID, err)
	}
	row.ResolvedAt = &at
	return row, nil
}
