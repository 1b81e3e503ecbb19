package analytics

type Scope string

const (
	ScopeOverall Scope = "overall"
	ScopeMonthly Scope = "monthly"
)

// ParseScope defaults to overall for an empty value.
func ParseScope(s string) (Scope, bool) {
	switch Scope(s) {
	case "", ScopeOverall:
		return ScopeOverall, true
	case ScopeMonthly:
		return ScopeMonthly, true
	}
	return "", false
}

type WeekdayOptions struct {
	Scope Scope
	Month *Month
}

type WeekdayStat struct {
	Weekday       string  `json:"weekday"`
	Orders        int     `json:"orders"`
	Revenue       float64 `json:"revenue"`
	AvgOrderValue float64 `json:"avg_order_value"`
}

type HeatCell struct {
	Weekday string `json:"weekday"`
	Hour    int    `json:"hour"`
	Orders  int    `json:"orders"`
}

type WeekdayAnalysis struct {
	Empty        bool          `json:"empty"`
	Scope        Scope         `json:"scope"`
	Months       []Month       `json:"months"`
	Month        *Month        `json:"month,omitempty"`
	Label        string        `json:"label"`
	TotalOrders  int           `json:"total_orders"`
	TotalRevenue float64       `json:"total_revenue"`
	Weekdays     []WeekdayStat `json:"weekdays"`
	Heatmap      []HeatCell    `json:"heatmap"`
}

func (p *Pipeline) WeekdayAnalysis(ds *Dataset, opts WeekdayOptions) WeekdayAnalysis {
	scope := opts.Scope
	if scope == "" {
		scope = ScopeOverall
	}
	if ds.Empty() {
		return WeekdayAnalysis{Empty: true, Scope: scope, Months: []Month{}}
	}

	out := WeekdayAnalysis{Scope: scope, Months: p.Months(ds), Label: "All time"}
	var month Month
	if scope == ScopeMonthly {
		month = out.Months[0]
		if opts.Month != nil {
			month = *opts.Month
		}
		out.Month = &month
		out.Label = month.Label()
	}

	var counts [7]int
	var revenue [7]float64
	var heat [7][24]int
	for _, o := range ds.Orders {
		t := p.local(o.CreatedAt)
		if scope == ScopeMonthly && MonthOf(t) != month {
			continue
		}
		wd := weekdayIndex(t)
		counts[wd]++
		revenue[wd] += o.Amount
		heat[wd][t.Hour()]++
		out.TotalOrders++
		out.TotalRevenue += o.Amount
	}

	out.Weekdays = make([]WeekdayStat, 0, len(Weekdays))
	out.Heatmap = make([]HeatCell, 0, len(Weekdays)*24)
	for i, name := range Weekdays {
		stat := WeekdayStat{Weekday: name, Orders: counts[i], Revenue: revenue[i]}
		if counts[i] > 0 {
			stat.AvgOrderValue = revenue[i] / float64(counts[i])
		}
		out.Weekdays = append(out.Weekdays, stat)
		for h := 0; h < 24; h++ {
			out.Heatmap = append(out.Heatmap, HeatCell{Weekday: name, Hour: h, Orders: heat[i][h]})
		}
	}
	return out
}
