package payment

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Processor currencies without a minor unit.
var zeroDecimal = map[string]bool{
	"bif": true, "clp": true, "djf": true, "gnf": true, "jpy": true, "kmf": true,
	"krw": true, "mga": true, "pyg": true, "rwf": true, "ugx": true, "vnd": true,
	"vuv": true, "xaf": true, "xof": true, "xpf": true,
}

// IntentIDFromSecret returns the payment intent id embedded in a client
// secret of the form "<intent id>_secret_<suffix>", or "" for any other form.
func IntentIDFromSecret(secret string) string {
	id, _, ok := strings.Cut(secret, "_secret_")
	if !ok || id == "" {
		return ""
	}
	return id
}

// MinorUnits converts an amount into the integer the processor charges,
// e.g. 202.50 usd is 20250.
func MinorUnits(amount decimal.Decimal, currency string) int64 {
	if zeroDecimal[strings.ToLower(currency)] {
		return amount.Round(0).IntPart()
	}
	return amount.Shift(2).Round(0).IntPart()
}

// Matches reports whether the confirmation charged exactly amount in
// currency.
func (c Confirmation) Matches(amount decimal.Decimal, currency string) bool {
	return strings.EqualFold(c.Currency, currency) && c.Amount == MinorUnits(amount, currency)
}
