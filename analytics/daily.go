package analytics

import (
	"sort"
	"time"
)

type DailyOptions struct {
	Date       *Date
	CategoryID *uint
}

// OrderRow is one order placed on the selected date.
type OrderRow struct {
	ID        uint      `json:"id"`
	UserID    string    `json:"user_id"`
	Amount    float64   `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

type DailyInsight struct {
	Empty      bool           `json:"empty"`
	Dates      []Date         `json:"dates"`
	Date       Date           `json:"date"`
	Label      string         `json:"label"`
	OrderCount int            `json:"order_count"`
	Revenue    float64        `json:"revenue"`
	Orders     []OrderRow     `json:"orders"`
	Category   *CategoryRef   `json:"category,omitempty"`
	Items      []ItemQuantity `json:"items"`
	AddOns     []AddOnCount   `json:"addons"`
}

// DailyInsight builds the report for one date. The add-on counts cover every
// item of the day regardless of the category filter.
func (p *Pipeline) DailyInsight(ds *Dataset, opts DailyOptions) DailyInsight {
	if ds.Empty() {
		return DailyInsight{Empty: true, Dates: []Date{}}
	}
	lk := newLookup(ds)
	dates := p.Dates(ds)
	date := dates[0]
	if opts.Date != nil {
		date = *opts.Date
	}

	out := DailyInsight{
		Dates:  dates,
		Date:   date,
		Label:  date.Label(),
		Orders: []OrderRow{},
	}
	for _, o := range ds.Orders {
		t := p.local(o.CreatedAt)
		if DateOf(t) != date {
			continue
		}
		out.OrderCount++
		out.Revenue += o.Amount
		out.Orders = append(out.Orders, OrderRow{ID: o.ID, UserID: o.UserID, Amount: o.Amount, CreatedAt: t})
	}
	sort.SliceStable(out.Orders, func(i, j int) bool {
		return out.Orders[i].CreatedAt.Before(out.Orders[j].CreatedAt)
	})

	if opts.CategoryID != nil {
		ref := CategoryRef{ID: *opts.CategoryID}
		if c, ok := lk.categories[*opts.CategoryID]; ok {
			ref.Name = c.Name
		}
		out.Category = &ref
	}

	dayItems := make(map[uint]struct{})
	totals := make(map[string]int)
	for _, it := range ds.OrderItems {
		if DateOf(p.local(it.CreatedAt)) != date {
			continue
		}
		dayItems[it.ID] = struct{}{}
		food, ok := lk.foods[it.FoodItemID]
		if !ok {
			continue
		}
		if opts.CategoryID != nil && food.CategoryID != *opts.CategoryID {
			continue
		}
		totals[food.Name] += it.Quantity
	}
	out.Items = rankQuantities(totals, 0)
	out.AddOns = addOnUsage(ds, lk, dayItems)
	return out
}
