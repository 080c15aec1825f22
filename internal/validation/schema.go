// Package validation checks inbound photometry payloads against the request
// schema before they are decoded.
package validation

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"stellar-backend/internal/models"
)

//go:embed magnitudes.schema.json
var magnitudesSchemaJSON []byte

// magnitudesSchema is the compiled schema for prediction requests
var magnitudesSchema *jsonschema.Schema

// ErrMalformed is returned for payloads that are not JSON
var ErrMalformed = errors.New("malformed request body")

// ErrSchema is returned for JSON payloads that do not satisfy the schema
var ErrSchema = errors.New("request does not match schema")

func init() {
	magnitudesSchema = mustCompileSchema(magnitudesSchemaJSON, "magnitudes.schema.json")
}

func mustCompileSchema(raw []byte, name string) *jsonschema.Schema {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		panic(fmt.Sprintf("failed to parse embedded %s: %v", name, err))
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, doc); err != nil {
		panic(fmt.Sprintf("failed to add %s resource: %v", name, err))
	}

	sch, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("failed to compile %s: %v", name, err))
	}
	return sch
}

// DecodeRequest validates data against the request schema and decodes it
func DecodeRequest(data []byte) (*models.PhotometryRequest, error) {
	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if err := magnitudesSchema.Validate(instance); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchema, err)
	}

	var req models.PhotometryRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return &req, nil
}
