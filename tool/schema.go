package tool

import (
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// ValidationError lists every schema violation found in a set of arguments.
type ValidationError struct {
	Fields   []string `json:"fields"`
	Problems []string `json:"problems"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return strings.Join(e.Problems, "; ")
}

// schemaValidator compiles a parameter schema once and validates arguments
// against it.
type schemaValidator struct {
	raw map[string]any

	once   sync.Once
	schema *gojsonschema.Schema
	err    error
}

func newSchemaValidator(raw map[string]any) *schemaValidator {
	return &schemaValidator{raw: raw}
}

func (v *schemaValidator) compile() (*gojsonschema.Schema, error) {
	v.once.Do(func() {
		if len(v.raw) == 0 {
			return
		}
		v.schema, v.err = gojsonschema.NewSchema(gojsonschema.NewGoLoader(v.raw))
		if v.err != nil {
			v.err = fmt.Errorf("invalid parameter schema: %w", v.err)
		}
	})
	return v.schema, v.err
}

// Validate checks args against the compiled schema. A nil schema accepts
// everything.
func (v *schemaValidator) Validate(args map[string]any) error {
	schema, err := v.compile()
	if err != nil {
		return err
	}
	if schema == nil {
		return nil
	}

	if args == nil {
		args = map[string]any{}
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(args))
	if err != nil {
		return err
	}

	if result.Valid() {
		return nil
	}

	verr := &ValidationError{}
	for _, re := range result.Errors() {
		verr.Fields = append(verr.Fields, re.Field())
		verr.Problems = append(verr.Problems, re.String())
	}
	return verr
}
