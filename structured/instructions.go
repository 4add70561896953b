package structured

import (
	"encoding/json"
	"fmt"
	"strings"
)

const instructionsHeader = "The output must be a JSON instance that conforms to the JSON schema below.\n" +
	"\n" +
	"As an example, for the schema {\"type\": \"object\", \"properties\": {\"foo\": {\"type\": \"array\", \"items\": {\"type\": \"string\"}}}, \"required\": [\"foo\"]}\n" +
	"the object {\"foo\": [\"bar\", \"baz\"]} conforms to the schema.\n" +
	"\n" +
	"Respond only with the JSON instance, no additional text. Here is the output schema:\n"

// FormatInstructions renders a schema into an instruction block suitable
// for appending to a system prompt. The result is a pure function of the
// schema: equal schemas produce byte-identical instructions, because
// object fields carry an explicit order.
func FormatInstructions(s *Schema) (string, error) {
	if s == nil {
		return "", fmt.Errorf("schema is nil")
	}
	if err := s.Validate(); err != nil {
		return "", fmt.Errorf("invalid schema: %w", err)
	}

	var b strings.Builder
	b.WriteString(instructionsHeader)
	b.WriteString("```json\n")
	writeSchemaJSON(&b, s)
	b.WriteString("\n```")
	return b.String(), nil
}

// writeSchemaJSON renders the schema as JSON Schema text. It writes the
// JSON by hand rather than through a map so that property order follows
// field declaration order.
func writeSchemaJSON(b *strings.Builder, s *Schema) {
	b.WriteByte('{')
	b.WriteString(`"type": `)
	writeJSONString(b, string(s.Type))

	if s.Description != "" {
		b.WriteString(`, "description": `)
		writeJSONString(b, s.Description)
	}

	switch s.Type {
	case TypeObject:
		b.WriteString(`, "properties": {`)
		for i, f := range s.Fields {
			if i > 0 {
				b.WriteString(", ")
			}
			writeJSONString(b, f.Name)
			b.WriteString(": ")
			writeSchemaJSON(b, f.Schema)
		}
		b.WriteByte('}')

		var required []string
		for _, f := range s.Fields {
			if !f.Optional {
				required = append(required, f.Name)
			}
		}
		if len(required) > 0 {
			b.WriteString(`, "required": [`)
			for i, name := range required {
				if i > 0 {
					b.WriteString(", ")
				}
				writeJSONString(b, name)
			}
			b.WriteByte(']')
		}
	case TypeArray:
		b.WriteString(`, "items": `)
		writeSchemaJSON(b, s.Items)
	}

	b.WriteByte('}')
}

func writeJSONString(b *strings.Builder, s string) {
	data, _ := json.Marshal(s)
	b.Write(data)
}
