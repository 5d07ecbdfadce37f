package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CheckoutAttempt is the ledger row kept for every checkout attempt. Rows with
// reason "order_finalization_failed" form the staff follow-up queue.
type CheckoutAttempt struct {
	gorm.Model
	AttemptID       string          `json:"attemptId" gorm:"uniqueIndex;size:36"`
	BrowserID       string          `json:"browserId" gorm:"index;size:36"`
	CartHandle      string          `json:"cartHandle"`
	State           string          `json:"state" gorm:"index;size:32"`
	Reason          string          `json:"reason" gorm:"index;size:48"`
	Detail          string          `json:"detail"`
	Uploaded        int             `json:"uploaded"`
	LineCount       int             `json:"lineCount"`
	Total           decimal.Decimal `json:"total" gorm:"type:decimal(12,2)"`
	Currency        string          `json:"currency" gorm:"size:8"`
	PaymentIntentID string          `json:"paymentIntentId" gorm:"index;size:255"`
	PayerName       string          `json:"payerName"`
	PayerEmail      string          `json:"payerEmail"`
	OrderID         string          `json:"orderId"`
	Lines           datatypes.JSON  `json:"lines"`
	ResolvedAt      *time.Time      `json:"resolvedAt"`
}
