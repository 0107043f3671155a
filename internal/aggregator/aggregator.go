package aggregator

import (
	"sort"

	"meeting-insights-go/internal/types"
)

type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

type CategorySummary struct {
	CategoryName string       `json:"category_name"`
	Extracted    int          `json:"extracted"` // items with at least one value
	Failed       int          `json:"failed"`
	Values       []ValueCount `json:"values"`
}

type Insight struct {
	TotalItems      int               `json:"total_items"`
	SuccessfulItems int               `json:"successful_items"`
	Categories      []CategorySummary `json:"categories"`
}

// Aggregate counts value frequency per schema category across the successful items of
// a batch. Values are sorted by count descending, then name.
func Aggregate(tmpl types.SchemaTemplate, items []types.BatchItemResult) Insight {
	in := Insight{TotalItems: len(items)}
	counts := make([]map[string]int, len(tmpl.Categories))
	in.Categories = make([]CategorySummary, len(tmpl.Categories))
	for i, c := range tmpl.Categories {
		counts[i] = map[string]int{}
		in.Categories[i].CategoryName = c.Name
	}

	for _, item := range items {
		if item.Error != "" {
			continue
		}
		in.SuccessfulItems++
		for i, c := range tmpl.Categories {
			r, ok := item.Categories.Get(c.Name)
			if !ok || r.Failed() {
				in.Categories[i].Failed++
				continue
			}
			if len(r.Values) > 0 {
				in.Categories[i].Extracted++
			}
			for _, v := range r.Values {
				counts[i][v]++
			}
		}
	}

	for i := range in.Categories {
		vals := make([]ValueCount, 0, len(counts[i]))
		for v, n := range counts[i] {
			vals = append(vals, ValueCount{Value: v, Count: n})
		}
		sort.Slice(vals, func(a, b int) bool {
			if vals[a].Count != vals[b].Count {
				return vals[a].Count > vals[b].Count
			}
			return vals[a].Value < vals[b].Value
		})
		in.Categories[i].Values = vals
	}
	return in
}
