package payment

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestIntentIDFromSecret(t *testing.T) {
	assert.Equal(t, "pi_3Nabc", IntentIDFromSecret("pi_3Nabc_secret_XYZ"))
	assert.Empty(t, IntentIDFromSecret("opaque-secret"))
	assert.Empty(t, IntentIDFromSecret("_secret_XYZ"))
	assert.Empty(t, IntentIDFromSecret(""))
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(20250), MinorUnits(decimal.RequireFromString("202.5"), "usd"))
	assert.Equal(t, int64(100), MinorUnits(decimal.NewFromInt(1), "EUR"))
	assert.Equal(t, int64(1500), MinorUnits(decimal.NewFromInt(1500), "jpy"))
}

func TestConfirmationMatches(t *testing.T) {
	total := decimal.RequireFromString("202.5")
	conf := Confirmation{Succeeded: true, Amount: 20250, Currency: "USD"}
	assert.True(t, conf.Matches(total, "usd"))

	assert.False(t, Confirmation{Succeeded: true, Amount: 1, Currency: "usd"}.Matches(total, "usd"))
	assert.False(t, Confirmation{Succeeded: true, Amount: 20250, Currency: "eur"}.Matches(total, "usd"))
}
