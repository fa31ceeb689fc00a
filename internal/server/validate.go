package server

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// recordPayloadSchema constrains record create/replace bodies before they are
// decoded into typed requests. Derived fields (itemId, totalAmount) may be
// echoed back by clients and are tolerated but recomputed server-side.
const recordPayloadSchema = `{
	"type": "object",
	"required": ["date", "vendor", "items"],
	"properties": {
		"date": {"type": "string", "minLength": 1},
		"vendor": {"type": "string", "minLength": 1},
		"receiptImage": {"type": "string"},
		"items": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["name"],
				"properties": {
					"itemId": {"type": "string"},
					"name": {"type": "string", "minLength": 1},
					"category": {"type": "string"},
					"color": {"type": "string"},
					"size": {"type": "string"},
					"options": {"type": "string"},
					"unitPrice": {"type": "number", "minimum": 0},
					"quantity": {"type": "integer", "minimum": 0},
					"totalAmount": {"type": "number"},
					"missingQuantity": {"type": "integer", "minimum": 0}
				},
				"additionalProperties": false
			}
		}
	},
	"additionalProperties": false
}`

var recordSchema = jsonschema.MustCompileString("record.json", recordPayloadSchema)

// validateRecordPayload checks raw JSON against the record schema.
func validateRecordPayload(raw []byte) error {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := recordSchema.Validate(doc); err != nil {
		return fmt.Errorf("body does not match record schema: %w", err)
	}
	return nil
}
