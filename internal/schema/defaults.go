package schema

import "meeting-insights-go/internal/types"

// Defaults returns fresh copies of the built-in templates.
func Defaults() []types.SchemaTemplate {
	return []types.SchemaTemplate{
		{
			TemplateID:   "default_product_feedback",
			TemplateName: "Product Feedback Template",
			IsDefault:    true,
			Categories: []types.CategoryDefinition{
				{
					Name:           "Product",
					Description:    "Databricks products mentioned in the feedback",
					ValueType:      types.Predefined,
					PossibleValues: []string{"Vector Search", "Embedding FT", "Keyword Search", "MLflow", "Delta Lake", "Unity Catalog"},
				},
				{Name: "Industry", Description: "Customer's industry vertical", ValueType: types.Inferred},
				{
					Name:           "Usage Pattern",
					Description:    "How the customer uses or plans to use the product",
					ValueType:      types.Predefined,
					PossibleValues: []string{"Batch", "Real-Time", "Interactive", "Scheduled"},
				},
				{Name: "Use Case", Description: "Specific use case or application area", ValueType: types.Inferred},
			},
		},
		{
			TemplateID:   "default_feature_requests",
			TemplateName: "Feature Requests Template",
			IsDefault:    true,
			Categories: []types.CategoryDefinition{
				{
					Name:           "Feature Category",
					Description:    "Type of feature being requested",
					ValueType:      types.Predefined,
					PossibleValues: []string{"UI/UX", "Performance", "Integration", "Analytics", "Security", "Compliance"},
				},
				{
					Name:           "Priority Level",
					Description:    "Customer's stated priority for the feature",
					ValueType:      types.Predefined,
					PossibleValues: []string{"Critical", "High", "Medium", "Low", "Nice to Have"},
				},
				{Name: "Business Impact", Description: "How the feature would impact the customer's business", ValueType: types.Inferred},
				{Name: "Timeline", Description: "When the customer needs this feature", ValueType: types.Inferred},
			},
		},
		{
			TemplateID:   "default_vector_search",
			TemplateName: "Vector Search Template",
			IsDefault:    true,
			Categories: []types.CategoryDefinition{
				{Name: "Industry", ValueType: types.Inferred},
				{Name: "Use Case", ValueType: types.Inferred},
				{
					Name:           "Product",
					ValueType:      types.Predefined,
					PossibleValues: []string{"Vector Search", "Embedding FT", "Unstructured", "MLflow", "Delta Lake", "Unity Catalog"},
				},
				{Name: "Usage Pattern", ValueType: types.Predefined, PossibleValues: []string{"Real Time", "Batch", "Interactive", "Scheduled"}},
				{Name: "Search Tags", ValueType: types.Predefined, PossibleValues: []string{"RAG", "Matching", "Search", "Similarity"}},
				{Name: "Unstructured Tags", ValueType: types.Predefined, PossibleValues: []string{"RAG", "Automation", "Document Processing", "Text Analysis"}},
				{Name: "End User Tags", ValueType: types.Predefined, PossibleValues: []string{"Internal", "External", "Customer-Facing", "Partner"}},
				{Name: "Production Status", ValueType: types.Predefined, PossibleValues: []string{"Production", "Development", "POC", "Planning"}},
			},
		},
	}
}
