package aggregator

import (
	"reflect"
	"testing"

	"meeting-insights-go/internal/types"
)

func TestAggregate(t *testing.T) {
	tmpl := types.SchemaTemplate{Categories: []types.CategoryDefinition{
		{Name: "Product", ValueType: types.Predefined, PossibleValues: []string{"Vector Search", "MLflow"}},
		{Name: "Industry", ValueType: types.Inferred},
	}}
	items := []types.BatchItemResult{
		{Categories: types.CategoryResults{
			{CategoryName: "Product", Values: []string{"Vector Search", "MLflow"}},
			{CategoryName: "Industry", Values: []string{"Retail"}},
		}},
		{Categories: types.CategoryResults{
			{CategoryName: "Product", Values: []string{"MLflow"}},
			{CategoryName: "Industry", Values: []string{}, Error: "LLM extraction failed"},
		}},
		{Categories: types.CategoryResults{
			{CategoryName: "Product", Values: []string{"Vector Search"}},
		}},
		{Error: "document is empty"},
	}

	got := Aggregate(tmpl, items)
	if got.TotalItems != 4 || got.SuccessfulItems != 3 {
		t.Fatalf("totals = %d/%d", got.SuccessfulItems, got.TotalItems)
	}
	want := []CategorySummary{
		{
			CategoryName: "Product",
			Extracted:    3,
			Values:       []ValueCount{{"MLflow", 2}, {"Vector Search", 2}},
		},
		{
			CategoryName: "Industry",
			Extracted:    1,
			Failed:       2,
			Values:       []ValueCount{{"Retail", 1}},
		},
	}
	if !reflect.DeepEqual(got.Categories, want) {
		t.Fatalf("categories = %+v\nwant %+v", got.Categories, want)
	}
}

func TestAggregateEmpty(t *testing.T) {
	got := Aggregate(types.SchemaTemplate{Categories: []types.CategoryDefinition{{Name: "A"}}}, nil)
	if len(got.Categories) != 1 || len(got.Categories[0].Values) != 0 || got.Categories[0].Values == nil {
		t.Fatalf("got %+v", got)
	}
}
