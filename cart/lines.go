package cart

import (
	"errors"

	"github.com/Kariqs/tableside/models"
	"github.com/shopspring/decimal"
)

// MaxQuantity is the most units one line may hold.
const MaxQuantity = 99

var (
	ErrRejectedQuantity = errors.New("cart: quantity must be positive")
	ErrQuantityLimit    = errors.New("cart: quantity exceeds the per-line limit")
	ErrRejectedPrice    = errors.New("cart: unit price must not be negative")
	ErrMissingDish      = errors.New("cart: dish id and size are required")
)

// Lines is the ordered cart collection. Methods never modify the receiver;
// they return the resulting collection.
type Lines []models.CartLine

func (ls Lines) index(dishID models.ID, size string) int {
	for i, l := range ls {
		if l.DishID == dishID && l.Size == size {
			return i
		}
	}
	return -1
}

// AddOrIncrement merges line into the matching (dish, size) entry or appends
// it. A merge keeps the stored name and price and sums the quantities.
func (ls Lines) AddOrIncrement(line models.CartLine) (Lines, error) {
	if line.DishID == "" || line.Size == "" {
		return ls, ErrMissingDish
	}
	if line.Quantity <= 0 {
		return ls, ErrRejectedQuantity
	}
	if line.Quantity > MaxQuantity {
		return ls, ErrQuantityLimit
	}
	if line.UnitPrice.IsNegative() {
		return ls, ErrRejectedPrice
	}

	out := ls.Clone()
	if i := out.index(line.DishID, line.Size); i >= 0 {
		if out[i].Quantity > MaxQuantity-line.Quantity {
			return ls, ErrQuantityLimit
		}
		out[i].Quantity += line.Quantity
		return out, nil
	}
	return append(out, line), nil
}

// ChangeQuantity applies delta to the matching line. The quantity floors at
// zero and a line that reaches zero is dropped. It saturates at MaxQuantity.
// Missing lines are ignored.
func (ls Lines) ChangeQuantity(dishID models.ID, size string, delta int) Lines {
	i := ls.index(dishID, size)
	if i < 0 || delta == 0 {
		return ls
	}
	var qty int
	switch {
	case delta > 0 && ls[i].Quantity > MaxQuantity-delta:
		qty = MaxQuantity
	case delta < 0 && delta <= -ls[i].Quantity:
		return ls.Remove(dishID, size)
	default:
		qty = ls[i].Quantity + delta
	}
	out := ls.Clone()
	out[i].Quantity = qty
	return out
}

func (ls Lines) Remove(dishID models.ID, size string) Lines {
	i := ls.index(dishID, size)
	if i < 0 {
		return ls
	}
	out := make(Lines, 0, len(ls)-1)
	out = append(out, ls[:i]...)
	return append(out, ls[i+1:]...)
}

// Subtract takes paid's quantities out of the matching lines. Lines missing
// from paid are kept as they are.
func (ls Lines) Subtract(paid Lines) Lines {
	out := ls.Clone()
	for _, p := range paid {
		if p.Quantity > 0 {
			out = out.ChangeQuantity(p.DishID, p.Size, -p.Quantity)
		}
	}
	return out
}

func (ls Lines) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range ls {
		total = total.Add(l.Subtotal())
	}
	return total
}

func (ls Lines) Count() int {
	n := 0
	for _, l := range ls {
		n += l.Quantity
	}
	return n
}

func (ls Lines) Clone() Lines {
	if ls == nil {
		return Lines{}
	}
	out := make(Lines, len(ls))
	copy(out, ls)
	return out
}

// Normalize rebuilds a collection read back from storage. Entries sharing a
// (dish, size) pair are merged in first-seen order, entries without a
// positive quantity are dropped and quantities are capped at MaxQuantity.
func Normalize(raw []models.CartLine) Lines {
	out := Lines{}
	for _, l := range raw {
		if l.Quantity <= 0 || l.DishID == "" || l.Size == "" {
			continue
		}
		l.Quantity = min(l.Quantity, MaxQuantity)
		if i := out.index(l.DishID, l.Size); i >= 0 {
			out[i].Quantity = min(out[i].Quantity+l.Quantity, MaxQuantity)
			continue
		}
		out = append(out, l)
	}
	return out
}
