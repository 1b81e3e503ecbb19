package analytics

// Overview holds the headline metrics of the analytics page.
type Overview struct {
	Empty        bool    `json:"empty"`
	TotalOrders  int     `json:"total_orders"`
	TotalRevenue float64 `json:"total_revenue"`
	UniqueUsers  int     `json:"unique_users"`
	ItemsSold    int     `json:"items_sold"`
}

func (p *Pipeline) Overview(ds *Dataset) Overview {
	if ds.Empty() {
		return Overview{Empty: true}
	}
	users := make(map[string]struct{})
	var out Overview
	for _, o := range ds.Orders {
		out.TotalOrders++
		out.TotalRevenue += o.Amount
		users[o.UserID] = struct{}{}
	}
	for _, it := range ds.OrderItems {
		out.ItemsSold += it.Quantity
	}
	out.UniqueUsers = len(users)
	return out
}
