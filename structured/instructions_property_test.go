package structured

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// genFieldName generates plausible JSON field names.
func genFieldName() *rapid.Generator[string] {
	return rapid.StringMatching(`[a-z][a-z0-9_]{0,11}`)
}

// genLeafSchema generates a primitive schema, optionally described.
func genLeafSchema(t *rapid.T) *Schema {
	s := &Schema{Type: rapid.SampledFrom([]FieldType{TypeString, TypeInteger, TypeNumber, TypeBoolean}).Draw(t, "type")}
	if rapid.Bool().Draw(t, "described") {
		s.Description = rapid.StringMatching(`[A-Za-z ]{1,24}`).Draw(t, "description")
	}
	return s
}

// genSchema generates an object schema with nesting bounded by depth.
func genSchema(t *rapid.T, depth int) *Schema {
	obj := NewObjectSchema()
	names := rapid.SliceOfNDistinct(genFieldName(), 1, 5, rapid.ID[string]).Draw(t, "fields")
	for _, name := range names {
		var field *Schema
		switch {
		case depth > 0 && rapid.Bool().Draw(t, "nest"):
			field = genSchema(t, depth-1)
		case rapid.Bool().Draw(t, "array"):
			field = NewArraySchema(genLeafSchema(t))
		default:
			field = genLeafSchema(t)
		}
		if rapid.Bool().Draw(t, "optional") {
			obj.AddOptionalField(name, field)
		} else {
			obj.AddField(name, field)
		}
	}
	return obj
}

func TestFormatInstructions_DeterministicProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		schema := genSchema(t, 2)

		first, err := FormatInstructions(schema)
		require.NoError(t, err)
		second, err := FormatInstructions(schema)
		require.NoError(t, err)

		require.Equal(t, first, second)

		// Every declared field name must appear in the instructions.
		for _, f := range schema.Fields {
			require.True(t, strings.Contains(first, `"`+f.Name+`"`),
				"instructions missing field %q", f.Name)
		}
	})
}
