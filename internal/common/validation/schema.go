// Package validation checks JSON documents (job variables, stored records)
// against JSON Schemas.
package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Schema is a compiled JSON Schema.
type Schema struct {
	schema *gojsonschema.Schema
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func (e ValidationError) String() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func Compile(src string) (*Schema, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Schema{schema: s}, nil
}

// MustCompile is Compile for package-level schemas.
func MustCompile(src string) *Schema {
	s, err := Compile(src)
	if err != nil {
		panic(err)
	}
	return s
}

// Validate returns every violation in doc. Unparseable input yields a single
// INVALID_JSON error.
func (s *Schema) Validate(doc []byte) []ValidationError {
	result, err := s.schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return []ValidationError{{Field: "(root)", Message: err.Error(), Code: "INVALID_JSON"}}
	}
	if result.Valid() {
		return nil
	}

	errs := make([]ValidationError, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		errs = append(errs, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		})
	}
	return errs
}

// Check is Validate folded into a single error.
func (s *Schema) Check(doc []byte) error {
	errs := s.Validate(doc)
	if len(errs) == 0 {
		return nil
	}
	parts := make([]string, len(errs))
	for i, e := range errs {
		parts[i] = e.String()
	}
	return fmt.Errorf("validation failed: %s", strings.Join(parts, "; "))
}
