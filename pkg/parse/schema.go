package parse

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const responseSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "scope": { "type": ["object", "null"] },
    "spec": { "type": ["object", "null"] },
    "drawing": {
      "oneOf": [
        { "type": "null" },
        { "$ref": "#/definitions/drawingFile" },
        { "type": "array", "items": { "$ref": "#/definitions/drawingFile" } }
      ]
    },
    "assembly": { "type": ["object", "array", "null"] }
  },
  "definitions": {
    "drawingFile": {
      "type": "object",
      "properties": {
        "filename": { "type": "string" },
        "roof_plans": {
          "type": ["array", "null"],
          "items": { "type": "object" }
        }
      }
    }
  }
}`

var responseSchemaLoader = gojsonschema.NewStringLoader(responseSchemaJSON)

// ValidatePayload checks a parse response against the expected shape.
func ValidatePayload(data []byte) error {
	result, err := gojsonschema.Validate(responseSchemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("invalid response: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return fmt.Errorf("response does not match schema: %s", strings.Join(msgs, "; "))
	}
	return nil
}
