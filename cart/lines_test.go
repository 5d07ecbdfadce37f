package cart

import (
	"math"
	"math/rand"
	"testing"

	"github.com/Kariqs/tableside/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func line(dish, size string, qty int, price int64) models.CartLine {
	return models.CartLine{
		DishID:    models.ID(dish),
		DishName:  "Dish " + dish,
		Size:      size,
		Quantity:  qty,
		UnitPrice: decimal.NewFromInt(price),
	}
}

func TestAddOrIncrementMergesSamePair(t *testing.T) {
	ls, err := Lines{}.AddOrIncrement(line("D1", "medium", 2, 100))
	require.NoError(t, err)
	ls, err = ls.AddOrIncrement(line("D1", "medium", 1, 100))
	require.NoError(t, err)

	require.Len(t, ls, 1)
	assert.Equal(t, models.ID("D1"), ls[0].DishID)
	assert.Equal(t, "medium", ls[0].Size)
	assert.Equal(t, 3, ls[0].Quantity)
	assert.True(t, decimal.NewFromInt(300).Equal(ls.Total()))
}

func TestAddOrIncrementKeepsSizesApart(t *testing.T) {
	ls, _ := Lines{}.AddOrIncrement(line("D1", "small", 1, 80))
	ls, _ = ls.AddOrIncrement(line("D1", "large", 1, 120))
	ls, _ = ls.AddOrIncrement(line("D1", "Large", 1, 120))

	assert.Len(t, ls, 3)
	assert.True(t, decimal.NewFromInt(320).Equal(ls.Total()))
}

func TestAddOrIncrementRejections(t *testing.T) {
	base, _ := Lines{}.AddOrIncrement(line("D1", "medium", 1, 100))

	tests := []struct {
		name string
		line models.CartLine
		want error
	}{
		{"zero quantity", line("D2", "small", 0, 50), ErrRejectedQuantity},
		{"negative quantity", line("D1", "medium", -2, 100), ErrRejectedQuantity},
		{"negative price", line("D3", "small", 1, -5), ErrRejectedPrice},
		{"missing dish", line("", "small", 1, 5), ErrMissingDish},
		{"missing size", line("D3", "", 1, 5), ErrMissingDish},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := base.AddOrIncrement(tt.line)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, base, got)
		})
	}
}

func TestChangeQuantity(t *testing.T) {
	ls, _ := Lines{}.AddOrIncrement(line("D1", "medium", 3, 100))

	up := ls.ChangeQuantity("D1", "medium", 2)
	assert.Equal(t, 5, up[0].Quantity)
	assert.Equal(t, 3, ls[0].Quantity, "receiver must not change")

	down := ls.ChangeQuantity("D1", "medium", -1)
	assert.Equal(t, 2, down[0].Quantity)

	gone := ls.ChangeQuantity("D1", "medium", -3)
	assert.Empty(t, gone)
	assert.True(t, gone.Total().IsZero())

	clamped := ls.ChangeQuantity("D1", "medium", -50)
	assert.Empty(t, clamped)

	missing := ls.ChangeQuantity("D9", "medium", 4)
	assert.Equal(t, ls, missing)
}

func TestRemove(t *testing.T) {
	ls, _ := Lines{}.AddOrIncrement(line("D1", "small", 1, 10))
	ls, _ = ls.AddOrIncrement(line("D2", "small", 1, 20))
	ls, _ = ls.AddOrIncrement(line("D3", "small", 1, 30))

	out := ls.Remove("D2", "small")
	require.Len(t, out, 2)
	assert.Equal(t, models.ID("D1"), out[0].DishID)
	assert.Equal(t, models.ID("D3"), out[1].DishID)
	assert.Len(t, ls, 3)

	assert.Equal(t, out, out.Remove("D2", "small"))
}

func TestNormalizeMergesLegacyDuplicates(t *testing.T) {
	raw := []models.CartLine{
		line("D1", "medium", 1, 100),
		line("D2", "small", 0, 50),
		line("D1", "medium", 2, 100),
		line("D3", "large", 1, 70),
	}

	ls := Normalize(raw)
	require.Len(t, ls, 2)
	assert.Equal(t, 3, ls[0].Quantity)
	assert.Equal(t, models.ID("D3"), ls[1].DishID)
}

// Random operation sequences must keep one line per (dish, size), every
// quantity positive and the total equal to the sum of subtotals.
func TestRandomSequencesKeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	dishes := []string{"D1", "D2", "D3"}
	sizes := []string{"small", "medium", "large"}

	for run := 0; run < 200; run++ {
		ls := Lines{}
		for step := 0; step < 40; step++ {
			d := dishes[rng.Intn(len(dishes))]
			s := sizes[rng.Intn(len(sizes))]
			switch rng.Intn(3) {
			case 0:
				ls, _ = ls.AddOrIncrement(line(d, s, rng.Intn(60)-1, int64(10+rng.Intn(90))))
			case 1:
				before := ls.Total()
				next := ls.ChangeQuantity(models.ID(d), s, rng.Intn(7)-3)
				if ls.index(models.ID(d), s) < 0 {
					assert.True(t, before.Equal(next.Total()))
				}
				ls = next
			case 2:
				ls = ls.Remove(models.ID(d), s)
			}

			seen := map[string]bool{}
			sum := decimal.Zero
			for _, l := range ls {
				key := string(l.DishID) + "|" + l.Size
				require.False(t, seen[key], "duplicate line %s", key)
				seen[key] = true
				require.GreaterOrEqual(t, l.Quantity, 1)
				require.LessOrEqual(t, l.Quantity, MaxQuantity)
				sum = sum.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
			}
			require.True(t, sum.Equal(ls.Total()))
		}
	}
}

func TestQuantityIsCappedPerLine(t *testing.T) {
	ls, err := Lines{}.AddOrIncrement(line("D1", "medium", 98, 100))
	require.NoError(t, err)

	_, err = ls.AddOrIncrement(line("D1", "medium", math.MaxInt, 100))
	assert.ErrorIs(t, err, ErrQuantityLimit)

	next, err := ls.AddOrIncrement(line("D1", "medium", 2, 100))
	assert.ErrorIs(t, err, ErrQuantityLimit)
	assert.Equal(t, 98, next[0].Quantity, "a rejected add leaves the line unchanged")

	ls, err = ls.AddOrIncrement(line("D1", "medium", 1, 100))
	require.NoError(t, err)
	assert.Equal(t, MaxQuantity, ls[0].Quantity)
}

func TestChangeQuantitySaturates(t *testing.T) {
	ls, err := Lines{}.AddOrIncrement(line("D1", "medium", 5, 100))
	require.NoError(t, err)

	up := ls.ChangeQuantity("D1", "medium", math.MaxInt)
	require.Len(t, up, 1)
	assert.Equal(t, MaxQuantity, up[0].Quantity)
	assert.True(t, decimal.NewFromInt(9900).Equal(up.Total()))

	assert.Empty(t, ls.ChangeQuantity("D1", "medium", math.MinInt))
}

func TestNormalizeCapsRestoredQuantities(t *testing.T) {
	raw := []models.CartLine{
		line("D1", "medium", 80, 100),
		line("D1", "medium", 80, 100),
		line("D2", "small", math.MaxInt, 10),
	}

	ls := Normalize(raw)
	require.Len(t, ls, 2)
	assert.Equal(t, MaxQuantity, ls[0].Quantity)
	assert.Equal(t, MaxQuantity, ls[1].Quantity)
}

func TestSubtract(t *testing.T) {
	ls := Lines{line("D1", "medium", 3, 100), line("D2", "small", 1, 50)}
	paid := Lines{line("D1", "medium", 2, 100), line("D2", "small", 1, 50), line("D3", "large", 4, 10)}

	left := ls.Subtract(paid)
	require.Len(t, left, 1)
	assert.Equal(t, 1, left[0].Quantity)
	assert.Equal(t, 3, ls[0].Quantity, "the receiver is not modified")
}
