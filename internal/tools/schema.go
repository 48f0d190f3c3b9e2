// ABOUTME: JSON Schema validation of tool call arguments.
// ABOUTME: Compiles schemas at registration time and reports structured violations.

package tools

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// Violation is one schema check failure, addressable enough for a
// client to fix the offending property.
type Violation struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Reason)
}

// compiledSchema wraps a parsed JSON Schema ready for validation.
type compiledSchema struct {
	schema *gojsonschema.Schema
}

// compileSchema parses and compiles a JSON Schema document. A nil or
// empty schema compiles to the permissive empty schema, matching tools
// that accept any object.
func compileSchema(raw []byte) (*compiledSchema, error) {
	if len(raw) == 0 {
		raw = []byte(`{}`)
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("compiling input schema: %w", err)
	}

	return &compiledSchema{schema: schema}, nil
}

// validate checks an arguments document against the schema. Returns nil
// when valid, otherwise one Violation per failed check. Unparsable
// arguments yield a single root violation.
func (c *compiledSchema) validate(args []byte) []Violation {
	if len(args) == 0 {
		args = []byte(`{}`)
	}

	result, err := c.schema.Validate(gojsonschema.NewBytesLoader(args))
	if err != nil {
		return []Violation{{Path: "(root)", Reason: fmt.Sprintf("arguments are not valid JSON: %v", err)}}
	}

	if result.Valid() {
		return nil
	}

	violations := make([]Violation, 0, len(result.Errors()))
	for _, resultErr := range result.Errors() {
		violations = append(violations, Violation{
			Path:   resultErr.Field(),
			Reason: resultErr.Description(),
		})
	}
	return violations
}
