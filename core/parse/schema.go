package parse

import (
	"fmt"

	"github.com/leofalp/itinera/internal/jsonschema"
)

// Schema returns the JSON Schema of T, for embedding in a generator prompt.
func Schema[T any]() (*jsonschema.Schema, error) {
	schema, err := jsonschema.Generate[T]()
	if err != nil {
		return nil, fmt.Errorf("schema of %T: %w", *new(T), err)
	}
	return schema, nil
}

// RequiredFields lists the top-level keys a document must carry to decode
// into T, in field order, so validation and decoding share one definition:
//
//	required, err := parse.RequiredFields[Itinerary]()
//	result := extract.Extract(raw, required...)
//
// T must be a struct (or a pointer to one). Fields are required unless they
// are pointers or tagged omitempty; jsonschema:"required" forces them.
func RequiredFields[T any]() ([]string, error) {
	schema, err := Schema[T]()
	if err != nil {
		return nil, err
	}
	if schema.Type != "object" || schema.Properties == nil {
		return nil, fmt.Errorf("required fields of %T: not a struct", *new(T))
	}
	return schema.Required, nil
}
