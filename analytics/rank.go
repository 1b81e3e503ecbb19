package analytics

import "sort"

// ItemQuantity is a food name with its summed ordered quantity.
type ItemQuantity struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// AddOnCount is an add-on name with the number of times it was attached.
type AddOnCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// rankQuantities sorts by quantity descending; equal quantities are ordered
// by name so the first entry is deterministic.
func rankQuantities(totals map[string]int, limit int) []ItemQuantity {
	out := make([]ItemQuantity, 0, len(totals))
	for name, qty := range totals {
		out = append(out, ItemQuantity{Name: name, Quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Quantity != out[j].Quantity {
			return out[i].Quantity > out[j].Quantity
		}
		return out[i].Name < out[j].Name
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func rankCounts(totals map[string]int, limit int) []AddOnCount {
	out := make([]AddOnCount, 0, len(totals))
	for name, n := range totals {
		out = append(out, AddOnCount{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func percentOf(part, total float64) float64 {
	if total == 0 {
		return 0
	}
	return part / total * 100
}
