// internal/types/batch_models.go
package types

// InputType records where a batch document came from.
type InputType string

const (
	InputText InputType = "text"
	InputFile InputType = "file"
	InputURL  InputType = "url"
)

type BatchInput struct {
	InputType InputType `json:"input_type"`
	Content   string    `json:"content"`
	Filename  string    `json:"filename,omitempty"`
}

// --------------------------------------------
// One row of a batch, in input order
// --------------------------------------------
type BatchItemResult struct {
	Index            int             `json:"index"`
	InputType        InputType       `json:"input_type"`
	Filename         string          `json:"filename,omitempty"`
	CustomerName     string          `json:"customer_name,omitempty"`
	MeetingDate      string          `json:"meeting_date,omitempty"`
	Categories       CategoryResults `json:"categories"`
	ProcessingTimeMs int64           `json:"processing_time_ms"`
	WordCount        int             `json:"word_count"`
	Error            string          `json:"error,omitempty"`
}

type BatchResult struct {
	BatchID             string            `json:"batch_id"`
	TotalItems          int               `json:"total_items"`
	SuccessfulItems     int               `json:"successful_items"`
	FailedItems         int               `json:"failed_items"`
	ProcessingTimeMs    int64             `json:"processing_time_ms"`
	Results             []BatchItemResult `json:"results"`
	SpreadsheetFilename string            `json:"spreadsheet_filename"`
}
