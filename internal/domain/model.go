package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is one customer transaction moving through the kitchen. Line items
// and the total are fixed at creation; only the status changes afterwards.
type Order struct {
	ID           string
	CustomerName string
	Items        []LineItem
	Total        decimal.NullDecimal
	Status       Status
	PickupCode   *string
	CreatedAt    time.Time
}

// LineItem references a menu item by value: the price is the unit price
// snapshot taken when the order was placed, not the current menu price.
type LineItem struct {
	MenuItemID string
	Name       string
	Quantity   int
	Price      decimal.Decimal
}

// LineTotal is price x quantity for this line.
func (li LineItem) LineTotal() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// ItemsTotal sums the line totals. Orders are created with Total equal to
// this value; it is never recomputed over the order's life.
func (o Order) ItemsTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, li := range o.Items {
		sum = sum.Add(li.LineTotal())
	}
	return sum
}

type MenuItem struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	Category    string
	ImageURL    string
	IsAvailable bool
	CreatedAt   time.Time
}
