package cases

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// caseSchema is the JSON Schema a JSON case file must conform to. The
// severity/keywords requirement for finding cases is expressed as a
// conditional so malformed descriptors are rejected before decoding.
const caseSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["fixture", "expect_clean"],
    "properties": {
      "fixture": {"type": "string", "minLength": 1},
      "expect_clean": {"type": "boolean"},
      "severity": {"type": "string"},
      "keywords": {"type": "array", "items": {"type": "string"}}
    },
    "if": {"properties": {"expect_clean": {"const": false}}},
    "then": {"required": ["severity", "keywords"]}
  }
}`

// ValidateSchema checks that data is valid JSON conforming to the case
// schema. It does not decode into Case values.
func ValidateSchema(data []byte) error {
	var schemaDoc interface{}
	if err := json.Unmarshal([]byte(caseSchema), &schemaDoc); err != nil {
		return fmt.Errorf("invalid case schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource("cases.schema.json", schemaDoc); err != nil {
		return fmt.Errorf("invalid case schema: %w", err)
	}
	sch, err := c.Compile("cases.schema.json")
	if err != nil {
		return fmt.Errorf("compiling case schema: %w", err)
	}

	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("not valid JSON: %w", err)
	}

	if err := sch.Validate(v); err != nil {
		return fmt.Errorf("does not match case schema: %w", err)
	}

	return nil
}
