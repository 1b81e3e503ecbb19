package analytics

import (
	"sort"
	"time"
)

const (
	mvpLimit   = 5
	addOnLimit = 10
)

type MonthlyOptions struct {
	Month      *Month
	CategoryID *uint
}

// PeriodShare is the revenue of a Day or Night bucket.
type PeriodShare struct {
	Period  string  `json:"period"`
	Revenue float64 `json:"revenue"`
	Percent float64 `json:"percent"`
}

// CategoryShare is the quantity sold in one category.
type CategoryShare struct {
	CategoryID uint    `json:"category_id"`
	Category   string  `json:"category"`
	Quantity   int     `json:"quantity"`
	Percent    float64 `json:"percent"`
}

type MonthlySummary struct {
	Empty       bool            `json:"empty"`
	Months      []Month         `json:"months"`
	Month       Month           `json:"month"`
	Label       string          `json:"label"`
	Revenue     float64         `json:"revenue"`
	OrderCount  int             `json:"order_count"`
	TopItem     *ItemQuantity   `json:"top_item"`
	DayNight    []PeriodShare   `json:"day_night"`
	Categories  []CategoryShare `json:"categories"`
	MVPCategory *CategoryRef    `json:"mvp_category"`
	MVPItems    []ItemQuantity  `json:"mvp_items"`
	AddOnUsage  []AddOnCount    `json:"addon_usage"`
}

type CategoryRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// MonthlySummary builds the report for one month. A month without orders
// yields zero values; an empty order table yields Empty.
func (p *Pipeline) MonthlySummary(ds *Dataset, opts MonthlyOptions) MonthlySummary {
	if ds.Empty() {
		return MonthlySummary{Empty: true, Months: []Month{}}
	}
	lk := newLookup(ds)
	months := p.Months(ds)
	month := months[0]
	if opts.Month != nil {
		month = *opts.Month
	}

	out := MonthlySummary{
		Months:     months,
		Month:      month,
		Label:      month.Label(),
		Categories: []CategoryShare{},
		MVPItems:   []ItemQuantity{},
	}

	var dayRevenue, nightRevenue float64
	for _, o := range ds.Orders {
		t := p.local(o.CreatedAt)
		if MonthOf(t) != month {
			continue
		}
		out.Revenue += o.Amount
		out.OrderCount++
		if periodOf(t.Hour()) == PeriodDay {
			dayRevenue += o.Amount
		} else {
			nightRevenue += o.Amount
		}
	}
	total := dayRevenue + nightRevenue
	out.DayNight = []PeriodShare{
		{Period: PeriodDay, Revenue: dayRevenue, Percent: percentOf(dayRevenue, total)},
		{Period: PeriodNight, Revenue: nightRevenue, Percent: percentOf(nightRevenue, total)},
	}

	byName := make(map[string]int)
	byCategory := make(map[uint]int)
	for _, it := range ds.OrderItems {
		if MonthOf(p.local(it.CreatedAt)) != month {
			continue
		}
		food, ok := lk.foods[it.FoodItemID]
		if !ok {
			continue
		}
		byName[food.Name] += it.Quantity
		if _, ok := lk.categories[food.CategoryID]; ok {
			byCategory[food.CategoryID] += it.Quantity
		}
	}
	if ranked := rankQuantities(byName, 1); len(ranked) > 0 {
		out.TopItem = &ranked[0]
	}

	var categoryTotal int
	for _, qty := range byCategory {
		categoryTotal += qty
	}
	for id, qty := range byCategory {
		out.Categories = append(out.Categories, CategoryShare{
			CategoryID: id,
			Category:   lk.categories[id].Name,
			Quantity:   qty,
			Percent:    percentOf(float64(qty), float64(categoryTotal)),
		})
	}
	sort.Slice(out.Categories, func(i, j int) bool {
		a, b := out.Categories[i], out.Categories[j]
		if a.Quantity != b.Quantity {
			return a.Quantity > b.Quantity
		}
		return a.Category < b.Category
	})

	if mvp := p.mvpCategory(ds, opts.CategoryID); mvp != nil {
		out.MVPCategory = mvp
		out.MVPItems = p.categoryItems(ds, lk, mvp.ID, func(t time.Time) bool { return MonthOf(t) == month })
	}

	out.AddOnUsage = addOnUsage(ds, lk, nil)
	return out
}

// mvpCategory resolves the requested category, falling back to the one with
// the lowest id.
func (p *Pipeline) mvpCategory(ds *Dataset, requested *uint) *CategoryRef {
	if len(ds.Categories) == 0 {
		return nil
	}
	if requested != nil {
		for _, c := range ds.Categories {
			if c.ID == *requested {
				return &CategoryRef{ID: c.ID, Name: c.Name}
			}
		}
	}
	first := ds.Categories[0]
	for _, c := range ds.Categories[1:] {
		if c.ID < first.ID {
			first = c
		}
	}
	return &CategoryRef{ID: first.ID, Name: first.Name}
}

// categoryItems ranks food names of one category by quantity over the items
// whose local timestamp is accepted by keep.
func (p *Pipeline) categoryItems(ds *Dataset, lk lookup, categoryID uint, keep func(time.Time) bool) []ItemQuantity {
	totals := make(map[string]int)
	for _, it := range ds.OrderItems {
		if !keep(p.local(it.CreatedAt)) {
			continue
		}
		food, ok := lk.foods[it.FoodItemID]
		if !ok || food.CategoryID != categoryID {
			continue
		}
		totals[food.Name] += it.Quantity
	}
	return rankQuantities(totals, mvpLimit)
}

// addOnUsage counts add-on links by add-on name. When items is nil every
// link counts; otherwise only links whose order item is in the set.
func addOnUsage(ds *Dataset, lk lookup, items map[uint]struct{}) []AddOnCount {
	counts := make(map[string]int)
	for _, link := range ds.OrderItemAddOns {
		if items != nil {
			if _, ok := items[link.OrderItemID]; !ok {
				continue
			}
		}
		addOn, ok := lk.addOns[link.AddOnID]
		if !ok {
			continue
		}
		counts[addOn.Name]++
	}
	limit := 0
	if items == nil {
		limit = addOnLimit
	}
	return rankCounts(counts, limit)
}
