package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"meeting-insights-go/internal/analyzer"
	"meeting-insights-go/internal/dataset"
	"meeting-insights-go/internal/export"
	"meeting-insights-go/internal/llm"
	"meeting-insights-go/internal/logger"
	"meeting-insights-go/internal/processor"
	"meeting-insights-go/internal/schema"
	"meeting-insights-go/internal/types"
)

const (
	defaultTemplateID = "default_product_feedback"
	maxBodyBytes      = 20 << 20
)

type server struct {
	log      *logger.Logger
	gateway  llm.Gateway
	analyzer *analyzer.Analyzer
	batches  *processor.Processor
	schemas  *schema.Registry
}

func newServer(log *logger.Logger, gw llm.Gateway, a *analyzer.Analyzer, p *processor.Processor, reg *schema.Registry) *server {
	return &server{log: log, gateway: gw, analyzer: a, batches: p, schemas: reg}
}

func (s *server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.health)
	mux.HandleFunc("/analyze", s.analyze)
	mux.HandleFunc("/batch", s.batch)
	mux.HandleFunc("/batch/export", s.batchExport)
	mux.HandleFunc("/schemas", s.schemaList)
	return mux
}

// schemaRef picks a stored template or an inline category list.
type schemaRef struct {
	SchemaTemplateID string                     `json:"schema_template_id"`
	Categories       []types.CategoryDefinition `json:"categories,omitempty"`
}

type analyzeRequest struct {
	schemaRef
	Text             string `json:"text"`
	SkipCustomerInfo bool   `json:"skip_customer_info"`
}

type batchRequest struct {
	schemaRef
	Inputs           []types.BatchInput `json:"inputs"`
	SkipCustomerInfo bool               `json:"skip_customer_info"`
	ExportFormat     string             `json:"export_format"`
	SelectedColumns  []string           `json:"selected_columns"`
}

type healthResponse struct {
	Status string             `json:"status"`
	Mode   string             `json:"llm_mode"`
	LLM    *llm.StateSnapshot `json:"llm,omitempty"`
}

func (s *server) health(w http.ResponseWriter, r *http.Request) {
	s.log.WithRequest(r).Info("health check")
	res := healthResponse{Status: "ok", Mode: "mock"}
	if gw, ok := s.gateway.(*llm.EndpointGateway); ok {
		snap := gw.State().Snapshot()
		res.Mode = "endpoints"
		res.LLM = &snap
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *server) analyze(w http.ResponseWriter, r *http.Request) {
	reqLog := s.log.WithRequest(r).WithField("handler", "analyze")
	if !allow(w, r, http.MethodPost) {
		return
	}
	var req analyzeRequest
	if err := decode(w, r, &req); err != nil {
		reqLog.WithError(err).Warn("bad request body")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		http.Error(w, "text is required", http.StatusBadRequest)
		return
	}
	tmpl, ok := s.template(w, req.schemaRef)
	if !ok {
		return
	}
	reqLog = reqLog.WithField("template_id", tmpl.TemplateID).WithField("categories", len(tmpl.Categories))
	reqLog.Info("analyze request received")

	res := s.analyzer.Analyze(r.Context(), req.Text, tmpl, analyzer.Options{SkipCustomerInfo: req.SkipCustomerInfo})
	reqLog.WithField("duration_ms", res.ProcessingTimeMs).Info("analysis finished")
	writeJSON(w, http.StatusOK, res)
}

func (s *server) batch(w http.ResponseWriter, r *http.Request) {
	req, tmpl, ok := s.batchRequest(w, r, "batch")
	if !ok {
		return
	}
	res := s.batches.ProcessBatch(r.Context(), req.Inputs, tmpl, processor.Options{
		SkipCustomerInfo: req.SkipCustomerInfo,
		ExportFormat:     req.ExportFormat,
	})
	writeJSON(w, http.StatusOK, res)
}

// batchExport runs the batch and returns the spreadsheet instead of JSON.
func (s *server) batchExport(w http.ResponseWriter, r *http.Request) {
	req, tmpl, ok := s.batchRequest(w, r, "batch_export")
	if !ok {
		return
	}
	format := strings.ToLower(req.ExportFormat)
	if format == "" {
		format = export.FormatXLSX
	}
	if format != export.FormatXLSX && format != export.FormatCSV {
		http.Error(w, fmt.Sprintf("unsupported export format %q", req.ExportFormat), http.StatusBadRequest)
		return
	}
	res := s.batches.ProcessBatch(r.Context(), req.Inputs, tmpl, processor.Options{
		SkipCustomerInfo: req.SkipCustomerInfo,
		ExportFormat:     format,
	})

	var buf bytes.Buffer
	if err := export.Write(&buf, format, tmpl, res.Results, req.SelectedColumns); err != nil {
		s.log.WithRequest(r).WithError(err).Error("export failed")
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", export.ContentType(format))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.SpreadsheetFilename))
	w.Header().Set("X-Batch-ID", res.BatchID)
	_, _ = w.Write(buf.Bytes())
}

func (s *server) batchRequest(w http.ResponseWriter, r *http.Request, handler string) (batchRequest, types.SchemaTemplate, bool) {
	reqLog := s.log.WithRequest(r).WithField("handler", handler)
	var req batchRequest
	if !allow(w, r, http.MethodPost) {
		return req, types.SchemaTemplate{}, false
	}
	var err error
	if isMultipart(r) {
		req, err = readUpload(w, r)
	} else {
		err = decode(w, r, &req)
	}
	if err != nil {
		reqLog.WithError(err).Warn("bad request body")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return req, types.SchemaTemplate{}, false
	}
	if len(req.Inputs) == 0 {
		http.Error(w, "inputs are required", http.StatusBadRequest)
		return req, types.SchemaTemplate{}, false
	}
	tmpl, ok := s.template(w, req.schemaRef)
	if !ok {
		return req, types.SchemaTemplate{}, false
	}
	reqLog.WithField("inputs", len(req.Inputs)).WithField("template_id", tmpl.TemplateID).Info("batch request received")
	return req, tmpl, true
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// readUpload builds a batch from uploaded files: every row of an .xlsx workbook becomes a
// document, any other file is one text document. Options come from form fields.
func readUpload(w http.ResponseWriter, r *http.Request) (batchRequest, error) {
	var req batchRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
		return req, fmt.Errorf("invalid upload: %w", err)
	}
	req.SchemaTemplateID = r.FormValue("schema_template_id")
	req.SkipCustomerInfo, _ = strconv.ParseBool(r.FormValue("skip_customer_info"))
	req.ExportFormat = r.FormValue("export_format")
	for _, c := range strings.Split(r.FormValue("selected_columns"), ",") {
		if c = strings.TrimSpace(c); c != "" {
			req.SelectedColumns = append(req.SelectedColumns, c)
		}
	}

	for _, fh := range r.MultipartForm.File["file"] {
		inputs, err := uploadedInputs(fh)
		if err != nil {
			return req, fmt.Errorf("%s: %w", fh.Filename, err)
		}
		req.Inputs = append(req.Inputs, inputs...)
	}
	return req, nil
}

func uploadedInputs(fh *multipart.FileHeader) ([]types.BatchInput, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if strings.EqualFold(filepath.Ext(fh.Filename), ".xlsx") {
		return dataset.ReadSpreadsheet(f, fh.Filename)
	}
	b, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return []types.BatchInput{{InputType: types.InputFile, Content: string(b), Filename: fh.Filename}}, nil
}

func (s *server) schemaList(w http.ResponseWriter, r *http.Request) {
	reqLog := s.log.WithRequest(r).WithField("handler", "schemas")
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.schemas.List())
	case http.MethodPost:
		var t types.SchemaTemplate
		if err := decode(w, r, &t); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if errs := schema.Validate(t.Categories); len(errs) > 0 {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": errs})
			return
		}
		if err := s.schemas.Put(t); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		reqLog.WithField("template_id", t.TemplateID).Info("schema template stored")
		writeJSON(w, http.StatusCreated, t)
	default:
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// template resolves ref, writing the error response itself when it fails.
func (s *server) template(w http.ResponseWriter, ref schemaRef) (types.SchemaTemplate, bool) {
	if len(ref.Categories) > 0 {
		if errs := schema.Validate(ref.Categories); len(errs) > 0 {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": errs})
			return types.SchemaTemplate{}, false
		}
		return types.SchemaTemplate{TemplateID: "custom", TemplateName: "Custom", Categories: ref.Categories}, true
	}
	id := ref.SchemaTemplateID
	if id == "" {
		id = defaultTemplateID
	}
	t, ok := s.schemas.Get(id)
	if !ok {
		http.Error(w, fmt.Sprintf("schema template %q not found", id), http.StatusNotFound)
		return types.SchemaTemplate{}, false
	}
	return t, true
}

func allow(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	return false
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return fmt.Errorf("request body exceeds %d bytes", tooBig.Limit)
		}
		return fmt.Errorf("invalid json: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
