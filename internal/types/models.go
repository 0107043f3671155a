package types

import (
	"bytes"
	"encoding/json"
)

// ValueType tells the extractor whether a category is a closed set or open-ended.
type ValueType string

const (
	Predefined ValueType = "predefined"
	Inferred   ValueType = "inferred"
)

type CategoryDefinition struct {
	Name           string    `json:"name" yaml:"name"`
	Description    string    `json:"description,omitempty" yaml:"description,omitempty"`
	ValueType      ValueType `json:"value_type" yaml:"value_type"`
	PossibleValues []string  `json:"possible_values,omitempty" yaml:"possible_values,omitempty"`
}

// IsPredefined reports whether the model must choose from PossibleValues.
func (c CategoryDefinition) IsPredefined() bool {
	return c.ValueType == Predefined
}

type SchemaTemplate struct {
	TemplateID   string               `json:"template_id" yaml:"template_id"`
	TemplateName string               `json:"template_name" yaml:"template_name"`
	Categories   []CategoryDefinition `json:"categories" yaml:"categories"`
	IsDefault    bool                 `json:"is_default" yaml:"is_default"`
}

// CategoryResult is built once per category per analysis and never mutated afterwards.
type CategoryResult struct {
	CategoryName string   `json:"category_name"`
	Values       []string `json:"values"`
	Confidence   float64  `json:"confidence"`
	EvidenceText []string `json:"evidence_text"`
	ModelUsed    string   `json:"model_used"`
	Error        string   `json:"error,omitempty"`
}

// Failed reports whether the extraction surfaced an error instead of values.
func (r CategoryResult) Failed() bool {
	return r.Error != ""
}

// CategoryResults keeps schema order; it marshals to a JSON object whose keys follow that order.
type CategoryResults []CategoryResult

// Get returns the result for a category name.
func (cr CategoryResults) Get(name string) (CategoryResult, bool) {
	for _, r := range cr {
		if r.CategoryName == name {
			return r, true
		}
	}
	return CategoryResult{}, false
}

func (cr CategoryResults) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, r := range cr {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(r.CategoryName)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

type AnalysisResult struct {
	CustomerName     string          `json:"customer_name,omitempty"`
	MeetingDate      string          `json:"meeting_date,omitempty"`
	Categories       CategoryResults `json:"categories"`
	ProcessingTimeMs int64           `json:"processing_time_ms"`
	WordCount        int             `json:"word_count"`
}
