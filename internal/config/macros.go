package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// macroSchema constrains an external macro file to a flat object of
// non-empty string triggers to string replacements.
const macroSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "macros": {
      "type": "object",
      "propertyNames": {
        "minLength": 1,
        "pattern": "^\\S+$"
      },
      "additionalProperties": {
        "type": "string"
      }
    }
  },
  "required": ["macros"],
  "additionalProperties": false
}`

// MacroFile is the on-disk shape of an external macro table.
type MacroFile struct {
	Macros map[string]string `json:"macros"`
}

// LoadMacroFile reads a JSON macro file and validates it against the
// macro schema before decoding.
func LoadMacroFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read macro file: %w", err)
	}

	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return nil, fmt.Errorf("parse macro file: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("macros.schema.json", bytes.NewReader([]byte(macroSchema))); err != nil {
		return nil, fmt.Errorf("add macro schema: %w", err)
	}
	schema, err := compiler.Compile("macros.schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile macro schema: %w", err)
	}
	if err := schema.Validate(instance); err != nil {
		return nil, fmt.Errorf("macro file invalid: %w", err)
	}

	var mf MacroFile
	if err := json.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("decode macro file: %w", err)
	}
	return mf.Macros, nil
}

// mergeMacros overlays src onto dst without mutating either.
func mergeMacros(dst, src map[string]string) map[string]string {
	out := make(map[string]string, len(dst)+len(src))
	for k, v := range dst {
		out[k] = v
	}
	for k, v := range src {
		out[k] = v
	}
	return out
}
