package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mcpcontext/docsearch/internal/indexing"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

const fieldsSchemaURL = "https://mcpcontext.dev/schema/docsearch/fields.json"

//go:embed fields.schema.json
var fieldsSchema []byte

// LoadSchema reads the field schema from a YAML file. An empty path yields the
// default schema.
func LoadSchema(path string) (indexing.Schema, error) {
	if path == "" {
		return indexing.DefaultSchema(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return indexing.Schema{}, fmt.Errorf("%w: cannot read fields file: %v", indexing.ErrConfiguration, err)
	}

	schema, err := ParseSchema(data)
	if err != nil {
		return indexing.Schema{}, fmt.Errorf("%s: %w", path, err)
	}
	return schema, nil
}

// ParseSchema decodes and validates a YAML field schema.
func ParseSchema(data []byte) (indexing.Schema, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return indexing.Schema{}, fmt.Errorf("%w: invalid YAML: %v", indexing.ErrConfiguration, err)
	}

	// Round-trip through JSON so the validator sees plain JSON values.
	raw, err := json.Marshal(doc)
	if err != nil {
		return indexing.Schema{}, fmt.Errorf("%w: fields file is not a mapping: %v", indexing.ErrConfiguration, err)
	}
	var instance interface{}
	if err := json.Unmarshal(raw, &instance); err != nil {
		return indexing.Schema{}, fmt.Errorf("%w: %v", indexing.ErrConfiguration, err)
	}

	validator, err := compileFieldsSchema()
	if err != nil {
		return indexing.Schema{}, err
	}
	if err := validator.Validate(instance); err != nil {
		return indexing.Schema{}, fmt.Errorf("%w: invalid fields file: %v", indexing.ErrConfiguration, err)
	}

	var schema indexing.Schema
	if err := json.Unmarshal(raw, &schema); err != nil {
		return indexing.Schema{}, fmt.Errorf("%w: %v", indexing.ErrConfiguration, err)
	}
	return schema, nil
}

func compileFieldsSchema() (*jsonschema.Schema, error) {
	var schemaDoc interface{}
	if err := json.Unmarshal(fieldsSchema, &schemaDoc); err != nil {
		return nil, fmt.Errorf("embedded fields schema is invalid: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(fieldsSchemaURL, schemaDoc); err != nil {
		return nil, fmt.Errorf("failed to add fields schema: %w", err)
	}
	return compiler.Compile(fieldsSchemaURL)
}
