package secrets

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// secretMapSchema accepts a flat object whose values are scalars.
const secretMapSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": {
    "type": ["string", "number", "boolean"]
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(secretMapSchema)

// Secret is one vault entry.
type Secret struct {
	Name  string
	Value string
}

// SecretMap is the decrypted vault in document order.
type SecretMap []Secret

// Parse decodes the vault export document. Numbers and booleans keep their
// JSON spelling. A repeated name keeps its first position and its last
// value.
func Parse(data []byte) (SecretMap, error) {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	if !result.Valid() {
		var details []string
		for _, e := range result.Errors() {
			details = append(details, e.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrMalformedOutput, strings.Join(details, "; "))
	}

	return decodeOrdered(data)
}

func decodeOrdered(data []byte) (SecretMap, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil, fmt.Errorf("%w: expected object", ErrMalformedOutput)
	}

	var secrets SecretMap
	index := map[string]int{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: expected name", ErrMalformedOutput)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
		}
		value, err := scalarString(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedOutput, name, err)
		}

		if i, seen := index[name]; seen {
			secrets[i].Value = value
			continue
		}
		index[name] = len(secrets)
		secrets = append(secrets, Secret{Name: name, Value: value})
	}
	return secrets, nil
}

func scalarString(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	return string(trimmed), nil
}
