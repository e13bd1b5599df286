package guide

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"horse.fit/guia/internal/service"
	"horse.fit/guia/internal/textref"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var (
	compileOnce        sync.Once
	compiledSchemas    map[string]*jsonschema.Schema
	compiledSchemasErr error
)

func loadSchemas() (map[string]*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020

		entries, err := schemaFS.ReadDir("schemas")
		if err != nil {
			compiledSchemasErr = fmt.Errorf("read embedded schemas: %w", err)
			return
		}

		schemas := make(map[string]*jsonschema.Schema, len(entries))
		for _, entry := range entries {
			name := entry.Name()
			raw, err := schemaFS.ReadFile("schemas/" + name)
			if err != nil {
				compiledSchemasErr = fmt.Errorf("read schema %s: %w", name, err)
				return
			}
			if err := compiler.AddResource(name, bytes.NewReader(raw)); err != nil {
				compiledSchemasErr = fmt.Errorf("add schema %s: %w", name, err)
				return
			}
			schema, err := compiler.Compile(name)
			if err != nil {
				compiledSchemasErr = fmt.Errorf("compile schema %s: %w", name, err)
				return
			}
			schemas[strings.TrimSuffix(name, ".json")] = schema
		}
		compiledSchemas = schemas
	})
	return compiledSchemas, compiledSchemasErr
}

// validatePayload checks a create/update payload against the entity's
// JSON schema. Schema failures surface as the service layer's
// ValidationError so the boundary maps them uniformly.
func validatePayload(entityName string, payload map[string]any) error {
	schemas, err := loadSchemas()
	if err != nil {
		return err
	}
	schema, ok := schemas[entityName]
	if !ok {
		return fmt.Errorf("no payload schema for entity %q", entityName)
	}

	value, err := normalizeJSONValue(payload)
	if err != nil {
		return err
	}

	if err := schema.Validate(value); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return &service.ValidationError{Entity: entityName, Issues: flattenCauses(verr)}
		}
		return fmt.Errorf("validate %s payload: %w", entityName, err)
	}
	return nil
}

// requireTextRefs enforces, on create, that every required text-reference
// field of the model arrives as either a plain string or a resolved
// reference ID.
func requireTextRefs(entityName string, model any, payload map[string]any) error {
	var issues []string
	for _, fd := range textref.FieldsOf(model) {
		if fd.Optional {
			continue
		}
		if _, ok := payload[fd.DTOName]; ok {
			continue
		}
		if _, ok := payload[fd.PropertyName]; ok {
			continue
		}
		issues = append(issues, fmt.Sprintf("%s (or %s) is required", fd.DTOName, fd.PropertyName))
	}
	if len(issues) > 0 {
		return &service.ValidationError{Entity: entityName, Issues: issues}
	}
	return nil
}

// normalizeJSONValue re-decodes the payload so plain Go integers become
// json.Number, the representation the schema validator understands.
func normalizeJSONValue(payload map[string]any) (any, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return value, nil
}

func flattenCauses(verr *jsonschema.ValidationError) []string {
	if len(verr.Causes) == 0 {
		location := strings.TrimPrefix(verr.InstanceLocation, "/")
		if location == "" {
			return []string{verr.Message}
		}
		return []string{location + ": " + verr.Message}
	}
	var issues []string
	for _, cause := range verr.Causes {
		issues = append(issues, flattenCauses(cause)...)
	}
	return issues
}
