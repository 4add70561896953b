// Package structured provides schema-constrained output support for
// model completions: declarative output schemas, deterministic format
// instructions, and validating parsers for raw model text.
package structured

import (
	"fmt"
)

// FieldType represents the type of a schema node.
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeInteger FieldType = "integer"
	TypeNumber  FieldType = "number"
	TypeBoolean FieldType = "boolean"
	TypeObject  FieldType = "object"
	TypeArray   FieldType = "array"
)

// Schema is a declarative description of an expected output shape.
// Schemas are built by explicit construction and treated as immutable
// once handed to a Completer. Object fields are ordered so that
// everything derived from a schema (format instructions in particular)
// is deterministic.
type Schema struct {
	Type        FieldType
	Description string

	// Fields holds the ordered properties of an object schema.
	Fields []Field

	// Items holds the element schema of an array schema.
	Items *Schema
}

// Field is a named property of an object schema. Fields are required
// unless marked Optional.
type Field struct {
	Name     string
	Schema   *Schema
	Optional bool
}

// NewObjectSchema creates a new object schema with no fields.
func NewObjectSchema() *Schema {
	return &Schema{Type: TypeObject}
}

// NewArraySchema creates a new array schema with the given items schema.
func NewArraySchema(items *Schema) *Schema {
	return &Schema{Type: TypeArray, Items: items}
}

// NewStringSchema creates a new string schema.
func NewStringSchema() *Schema {
	return &Schema{Type: TypeString}
}

// NewIntegerSchema creates a new integer schema.
func NewIntegerSchema() *Schema {
	return &Schema{Type: TypeInteger}
}

// NewNumberSchema creates a new number schema.
func NewNumberSchema() *Schema {
	return &Schema{Type: TypeNumber}
}

// NewBooleanSchema creates a new boolean schema.
func NewBooleanSchema() *Schema {
	return &Schema{Type: TypeBoolean}
}

// WithDescription sets the description and returns the schema for chaining.
func (s *Schema) WithDescription(desc string) *Schema {
	s.Description = desc
	return s
}

// AddField appends a required field to an object schema.
func (s *Schema) AddField(name string, field *Schema) *Schema {
	s.Fields = append(s.Fields, Field{Name: name, Schema: field})
	return s
}

// AddOptionalField appends an optional field to an object schema.
func (s *Schema) AddOptionalField(name string, field *Schema) *Schema {
	s.Fields = append(s.Fields, Field{Name: name, Schema: field, Optional: true})
	return s
}

// HasField reports whether an object schema declares the named field.
func (s *Schema) HasField(name string) bool {
	for _, f := range s.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

// Validate checks that the schema is well formed: object schemas must
// declare at least one field, field names must be unique and non-empty,
// and array schemas must declare an items schema.
func (s *Schema) Validate() error {
	return s.validate("")
}

func (s *Schema) validate(path string) error {
	if s == nil {
		return fmt.Errorf("%s: schema is nil", pathOrRoot(path))
	}
	switch s.Type {
	case TypeString, TypeInteger, TypeNumber, TypeBoolean:
		return nil
	case TypeObject:
		if len(s.Fields) == 0 {
			return fmt.Errorf("%s: object schema must declare at least one field", pathOrRoot(path))
		}
		seen := make(map[string]bool, len(s.Fields))
		for _, f := range s.Fields {
			if f.Name == "" {
				return fmt.Errorf("%s: field name cannot be empty", pathOrRoot(path))
			}
			if seen[f.Name] {
				return fmt.Errorf("%s: duplicate field %q", pathOrRoot(path), f.Name)
			}
			seen[f.Name] = true
			if err := f.Schema.validate(joinPath(path, f.Name)); err != nil {
				return err
			}
		}
		return nil
	case TypeArray:
		if s.Items == nil {
			return fmt.Errorf("%s: array schema must declare an items schema", pathOrRoot(path))
		}
		return s.Items.validate(path + "[]")
	default:
		return fmt.Errorf("%s: unsupported schema type %q", pathOrRoot(path), s.Type)
	}
}

func pathOrRoot(path string) string {
	if path == "" {
		return "schema"
	}
	return path
}

func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}
