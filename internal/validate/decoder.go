// Package validate decodes JSON request bodies after checking them against a
// JSON Schema reflected from the target struct.
package validate

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/invopop/jsonschema"
	"github.com/samber/oops"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/glowupgrow/terrarium-api/internal/apperr"
)

// MaxBodyBytes bounds the request bodies a Decoder accepts.
const MaxBodyBytes = 1 << 20

// Decoder validates and decodes JSON into T. Required fields and bounds come
// from `jsonschema` struct tags on T.
type Decoder[T any] struct {
	schema *jschema.Schema
}

// NewDecoder reflects and compiles the schema for T.
func NewDecoder[T any]() (*Decoder[T], error) {
	r := jsonschema.Reflector{
		DoNotReference:             true,
		Anonymous:                  true,
		AllowAdditionalProperties:  true,
		RequiredFromJSONSchemaTags: true,
	}
	var zero T
	doc, err := json.Marshal(r.Reflect(&zero))
	if err != nil {
		return nil, oops.With("operation", "marshal schema").Wrap(err)
	}

	schemaData, err := jschema.UnmarshalJSON(bytes.NewReader(doc))
	if err != nil {
		return nil, oops.With("operation", "parse schema").Wrap(err)
	}

	c := jschema.NewCompiler()
	if err := c.AddResource("schema.json", schemaData); err != nil {
		return nil, oops.With("operation", "add schema resource").Wrap(err)
	}
	sch, err := c.Compile("schema.json")
	if err != nil {
		return nil, oops.With("operation", "compile schema").Wrap(err)
	}

	return &Decoder[T]{schema: sch}, nil
}

// MustDecoder is NewDecoder for package-level decoders; it panics when the
// schema for T cannot be built.
func MustDecoder[T any]() *Decoder[T] {
	d, err := NewDecoder[T]()
	if err != nil {
		panic(err)
	}
	return d
}

// Decode reads one JSON document from r. An empty body is treated as {} so
// missing fields are reported by the schema like any other omission. Failures
// carry the VALIDATION code.
func (d *Decoder[T]) Decode(r io.Reader) (*T, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxBodyBytes+1))
	if err != nil {
		return nil, oops.Code(apperr.CodeValidation).With("operation", "read body").Wrap(err)
	}
	if len(data) > MaxBodyBytes {
		return nil, oops.Code(apperr.CodeValidation).Errorf("request body exceeds %d bytes", MaxBodyBytes)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		data = []byte("{}")
	}

	inst, err := jschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, oops.Code(apperr.CodeValidation).With("operation", "parse body").Wrap(err)
	}
	if err := d.schema.Validate(inst); err != nil {
		return nil, oops.Code(apperr.CodeValidation).With("operation", "validate body").Wrap(err)
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, oops.Code(apperr.CodeValidation).With("operation", "decode body").Wrap(err)
	}
	return &v, nil
}
