package datatable

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrInvalidRequest wraps payloads rejected by the request schemas.
var ErrInvalidRequest = errors.New("datatable: invalid request")

const (
	viewRequestSchema   = "view_request.json"
	exportRequestSchema = "export_request.json"
)

var requestSchemas = map[string]string{
	viewRequestSchema: `{
		"type": "object",
		"additionalProperties": false,
		"properties": {
			"filter": {"type": "string", "maxLength": 256},
			"sort": {
				"type": "object",
				"additionalProperties": false,
				"properties": {
					"column_id": {"type": "string"},
					"direction": {"enum": ["", "asc", "desc"]}
				}
			},
			"page_index": {"type": "integer", "minimum": 0},
			"page_size": {"enum": [10, 20, 30, 40, 50]}
		}
	}`,
	exportRequestSchema: `{
		"type": "object",
		"additionalProperties": false,
		"properties": {
			"scope": {"enum": ["", "filtered", "selected"]},
			"format": {"enum": ["", "csv", "parquet"]},
			"title": {"type": "string", "maxLength": 128}
		}
	}`,
}

// RequestValidator checks transport payloads against JSON schemas before decoding.
type RequestValidator struct {
	mu       sync.RWMutex
	compiled map[string]*jsonschema.Schema
}

// NewRequestValidator builds a validator backed by jsonschema v5.
func NewRequestValidator() *RequestValidator {
	return &RequestValidator{
		compiled: make(map[string]*jsonschema.Schema),
	}
}

// DecodeViewRequest validates and decodes a view update payload.
func (v *RequestValidator) DecodeViewRequest(data []byte) (ViewRequest, error) {
	var req ViewRequest
	if err := v.decode(viewRequestSchema, data, &req); err != nil {
		return ViewRequest{}, err
	}
	return req, nil
}

// DecodeExportRequest validates and decodes an export payload.
func (v *RequestValidator) DecodeExportRequest(data []byte) (ExportRequest, error) {
	var req ExportRequest
	if err := v.decode(exportRequestSchema, data, &req); err != nil {
		return ExportRequest{}, err
	}
	return req, nil
}

func (v *RequestValidator) decode(name string, data []byte, target any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		data = []byte("{}")
	}
	schema, err := v.schemaFor(name)
	if err != nil {
		return err
	}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var payload any
	if err := decoder.Decode(&payload); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return nil
}

func (v *RequestValidator) schemaFor(name string) (*jsonschema.Schema, error) {
	v.mu.RLock()
	schema, ok := v.compiled[name]
	v.mu.RUnlock()
	if ok {
		return schema, nil
	}
	source, ok := requestSchemas[name]
	if !ok {
		return nil, fmt.Errorf("datatable: unknown request schema %s", name)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader([]byte(source))); err != nil {
		return nil, fmt.Errorf("datatable: load schema %s: %w", name, err)
	}
	compiled, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("datatable: compile schema %s: %w", name, err)
	}
	v.mu.Lock()
	v.compiled[name] = compiled
	v.mu.Unlock()
	return compiled, nil
}
