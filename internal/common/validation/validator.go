package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Error joins every violation into one line for logs and error details.
func (r *ValidationResult) Error() string {
	parts := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return strings.Join(parts, "; ")
}

// Validator holds compiled JSON schemas keyed by name.
type Validator struct {
	schemas map[string]*gojsonschema.Schema
}

// NewValidator compiles the built-in request and job schemas.
func NewValidator() (*Validator, error) {
	v := &Validator{schemas: make(map[string]*gojsonschema.Schema, len(builtinSchemas))}
	for name, src := range builtinSchemas {
		if err := v.Register(name, src); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// Register compiles and stores an additional schema.
func (v *Validator) Register(name, schemaJSON string) error {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		return fmt.Errorf("compile schema %q: %w", name, err)
	}
	v.schemas[name] = schema
	return nil
}

// ValidateBytes validates a raw JSON document.
func (v *Validator) ValidateBytes(name string, raw []byte) *ValidationResult {
	return v.validate(name, gojsonschema.NewBytesLoader(raw))
}

// Validate validates an already decoded document (maps, slices, scalars).
func (v *Validator) Validate(name string, document interface{}) *ValidationResult {
	return v.validate(name, gojsonschema.NewGoLoader(document))
}

func (v *Validator) validate(name string, doc gojsonschema.JSONLoader) *ValidationResult {
	schema, ok := v.schemas[name]
	if !ok {
		return invalid(ValidationError{Field: "(schema)", Message: fmt.Sprintf("unknown schema %q", name), Code: "UNKNOWN_SCHEMA"})
	}

	result, err := schema.Validate(doc)
	if err != nil {
		return invalid(ValidationError{Field: "(root)", Message: err.Error(), Code: "INVALID_JSON"})
	}
	if result.Valid() {
		return &ValidationResult{Valid: true}
	}

	errs := make([]ValidationError, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		errs = append(errs, ValidationError{
			Field:   re.Field(),
			Message: re.Description(),
			Code:    strings.ToUpper(re.Type()),
		})
	}
	sort.SliceStable(errs, func(i, j int) bool { return errs[i].Field < errs[j].Field })

	return &ValidationResult{Valid: false, Errors: errs}
}

func invalid(e ValidationError) *ValidationResult {
	return &ValidationResult{Valid: false, Errors: []ValidationError{e}}
}
