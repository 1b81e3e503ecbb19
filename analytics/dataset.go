// Package analytics turns fully loaded order and catalog tables into the
// dashboard reports. Every function here is pure: callers load the rows,
// the pipeline joins and buckets them in memory.
package analytics

import (
	"time"

	"github.com/flavorfleet/admin-dashboard/models"
)

// Dataset holds the complete row sets a report is computed from.
type Dataset struct {
	Orders          []models.Order
	OrderItems      []models.OrderItem
	OrderItemAddOns []models.OrderItemAddOn
	Foods           []models.Food
	Categories      []models.Category
	AddOns          []models.AddOn
}

// Empty reports whether there is no order history at all.
func (d *Dataset) Empty() bool {
	return d == nil || len(d.Orders) == 0
}

// Pipeline buckets timestamps in a single location so every row falls into
// exactly one month, day and hour.
type Pipeline struct {
	loc *time.Location
}

func New(loc *time.Location) *Pipeline {
	if loc == nil {
		loc = time.UTC
	}
	return &Pipeline{loc: loc}
}

func (p *Pipeline) Location() *time.Location {
	return p.loc
}

func (p *Pipeline) local(t time.Time) time.Time {
	return t.In(p.loc)
}

// lookup indexes the catalog tables by id for inner joins. A missing key is
// an orphaned reference and the row is skipped.
type lookup struct {
	foods      map[uint]models.Food
	categories map[uint]models.Category
	addOns     map[uint]models.AddOn
}

func newLookup(ds *Dataset) lookup {
	l := lookup{
		foods:      make(map[uint]models.Food, len(ds.Foods)),
		categories: make(map[uint]models.Category, len(ds.Categories)),
		addOns:     make(map[uint]models.AddOn, len(ds.AddOns)),
	}
	for _, f := range ds.Foods {
		l.foods[f.ID] = f
	}
	for _, c := range ds.Categories {
		l.categories[c.ID] = c
	}
	for _, a := range ds.AddOns {
		l.addOns[a.ID] = a
	}
	return l
}
