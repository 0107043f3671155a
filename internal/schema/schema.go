// Package schema holds schema templates: the built-in defaults, validation, YAML loading
// and a concurrency-safe in-memory registry.
package schema

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"meeting-insights-go/internal/types"
)

// ValidationError addresses one problem in a category list.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Validate checks names and value lists. An empty result means the categories are usable.
func Validate(categories []types.CategoryDefinition) []ValidationError {
	var errs []ValidationError
	seen := map[string]bool{}
	for i, c := range categories {
		field := fmt.Sprintf("categories[%d]", i)
		if seen[c.Name] {
			errs = append(errs, ValidationError{field + ".name", fmt.Sprintf("Duplicate category name: '%s'", c.Name)})
		}
		seen[c.Name] = true
		if strings.TrimSpace(c.Name) == "" {
			errs = append(errs, ValidationError{field + ".name", "Category name cannot be empty"})
		}

		switch c.ValueType {
		case types.Predefined:
			if len(c.PossibleValues) == 0 {
				errs = append(errs, ValidationError{field + ".possible_values", "Predefined categories must have at least one possible value"})
			} else if !unique(c.PossibleValues) {
				errs = append(errs, ValidationError{field + ".possible_values", "Possible values must be unique"})
			}
		case types.Inferred:
			if len(c.PossibleValues) > 0 {
				errs = append(errs, ValidationError{field + ".possible_values", "Inferred categories should not have predefined values"})
			}
		default:
			errs = append(errs, ValidationError{field + ".value_type", fmt.Sprintf("Unknown value type: '%s'", c.ValueType)})
		}
	}
	if len(categories) == 0 {
		errs = append(errs, ValidationError{"categories", "Schema must have at least one category"})
	}
	return errs
}

func unique(values []string) bool {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			return false
		}
		seen[v] = struct{}{}
	}
	return true
}

type templateFile struct {
	Templates []types.SchemaTemplate `yaml:"templates"`
}

// LoadFile reads templates from a YAML file of the form `templates: [...]`.
// Every template is validated; the first invalid one fails the load.
func LoadFile(path string) ([]types.SchemaTemplate, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema file: %w", err)
	}
	var f templateFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("decode schema file: %w", err)
	}
	for _, t := range f.Templates {
		if t.TemplateID == "" {
			return nil, fmt.Errorf("template %q: missing template_id", t.TemplateName)
		}
		if errs := Validate(t.Categories); len(errs) > 0 {
			return nil, fmt.Errorf("template %q: %w", t.TemplateID, errs[0])
		}
	}
	return f.Templates, nil
}

// Registry is an in-memory template store keyed by template id.
type Registry struct {
	mu        sync.RWMutex
	templates map[string]types.SchemaTemplate
}

// NewRegistry returns a registry seeded with the default templates.
func NewRegistry() *Registry {
	r := &Registry{templates: map[string]types.SchemaTemplate{}}
	for _, t := range Defaults() {
		r.templates[t.TemplateID] = t
	}
	return r
}

// Put adds or replaces a template after validating it.
func (r *Registry) Put(t types.SchemaTemplate) error {
	if t.TemplateID == "" {
		return fmt.Errorf("template_id is required")
	}
	if errs := Validate(t.Categories); len(errs) > 0 {
		return errs[0]
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates[t.TemplateID] = t
	return nil
}

func (r *Registry) Get(id string) (types.SchemaTemplate, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.templates[id]
	return t, ok
}

// List returns templates sorted by id.
func (r *Registry) List() []types.SchemaTemplate {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]types.SchemaTemplate, 0, len(r.templates))
	for _, t := range r.templates {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TemplateID < out[j].TemplateID })
	return out
}
