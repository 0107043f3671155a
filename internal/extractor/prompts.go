package extractor

import (
	"fmt"
	"strings"

	"meeting-insights-go/internal/llm"
	"meeting-insights-go/internal/types"
)

var predefinedGuidance = map[string]string{
	"Usage Pattern":     "Select how they use the solution: Real Time (instant/live), Batch (scheduled/bulk), Interactive (on-demand queries), Scheduled (recurring/automated).",
	"Product":           "Identify mentioned Databricks products: Vector Search, Embedding FT, Unstructured, MLflow, Delta Lake, Unity Catalog.",
	"Search Tags":       "Select search capabilities: RAG (retrieval/contextual), Matching (similarity), Search (text/document), Similarity (semantic/vector).",
	"Unstructured Tags": "Select data processing: RAG (text retrieval), Automation (workflows), Document Processing (parsing), Text Analysis (NLP).",
	"End User Tags":     "Select user type: Internal (employees), External (customers), Customer-Facing (public), Partner (third-party).",
	"Production Status": "Select deployment stage: Production (live), Development (building), POC (pilot/trial), Planning (future).",
}

var inferredGuidance = map[string]string{
	"Industry": "Read the document and understand what type of business this customer operates. Focus on their core business purpose and industry sector.",
	"Use Case": "Read the document and understand what specific business problem or application they want to solve. Focus on the business value they're trying to create.",
}

// Guidance returns the instruction line used for a category.
func Guidance(cat types.CategoryDefinition) string {
	if cat.IsPredefined() {
		if g, ok := predefinedGuidance[cat.Name]; ok {
			return g
		}
		return fmt.Sprintf("Read the document and select options that best match what they describe for %s.", cat.Name)
	}
	if g, ok := inferredGuidance[cat.Name]; ok {
		return g
	}
	return fmt.Sprintf("Read the document and understand what they describe related to %s.", cat.Name)
}

// CategoryPrompt builds the single-category prompt. Predefined prompts open with the
// allowed options; inferred prompts ask for free values.
func CategoryPrompt(text string, cat types.CategoryDefinition) string {
	var b strings.Builder
	if cat.IsPredefined() {
		b.WriteString(llm.OptionsMarker)
		b.WriteString(strings.Join(cat.PossibleValues, ", "))
		b.WriteString("\n\n")
	} else {
		fmt.Fprintf(&b, "Extract values for %q from the text.\n\n", cat.Name)
	}
	b.WriteString(Guidance(cat))
	b.WriteString("\n")
	if d := strings.TrimSpace(cat.Description); d != "" {
		fmt.Fprintf(&b, "Category description: %s\n", d)
	}
	fmt.Fprintf(&b, "\nText: \"%s\"\n\n", text)
	if cat.IsPredefined() {
		b.WriteString(`JSON: {"values": ["option"], "evidence": ["text"], "confidence": 0.9}`)
	} else {
		b.WriteString(`Return JSON: {"values": ["value"], "evidence": ["supporting text"], "confidence": 0.9}`)
	}
	return b.String()
}

// CustomerPrompt asks for customer name and meeting date as one object.
func CustomerPrompt(text string) string {
	return `Extract the customer name and meeting date from this text.

Text: ` + text + `

Return a JSON object with these fields:
- customer_name: The company or customer name (e.g., "7-Eleven", "a16z", "ActiveFence")
- meeting_date: The date in format "MMM DD, YYYY" (e.g., "Nov 12, 2024", "Mar 11, 2025")

Always format dates as "MMM DD, YYYY": 3-letter month abbreviation, 2-digit day, 4-digit year.
If a field is not found, use empty string "".

Example: {"customer_name": "7-Eleven", "meeting_date": "Nov 12, 2024"}`
}
